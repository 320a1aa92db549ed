package video

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the container types accepted by FindVideoFile.
var DefaultExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv"}

var (
	ErrNoVideo        = errors.New("video: no video file found")
	ErrMultipleVideos = errors.New("video: more than one video file found")
)

// FindVideoFile returns the single video in dir. Extensions match
// case-insensitively; subdirectories are not searched.
func FindVideoFile(dir string, exts []string) (string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read input dir: %w", err)
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == strings.ToLower(want) {
				found = append(found, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(found)

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w in %s (extensions %s)", ErrNoVideo, dir, strings.Join(exts, ", "))
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w in %s: %s", ErrMultipleVideos, dir, strings.Join(found, ", "))
	}
}
