package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/trajectory.report/internal/security"
)

// Output file suffixes, appended to the clip's base name.
const (
	SuffixCSV   = "_trajectory.csv"
	SuffixVideo = "_annotated.mp4"
	SuffixPlot  = "_kinematics.png"
	SuffixChart = "_kinematics.html"
)

// Outputs names the files a run writes into one directory.
type Outputs struct {
	Dir  string
	Stem string
}

// NewOutputs creates dir if needed and derives the file stem from the
// input clip name.
func NewOutputs(dir, videoPath string) (Outputs, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Outputs{}, fmt.Errorf("create output directory: %w", err)
	}
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return Outputs{Dir: dir, Stem: security.SanitizeFilename(stem)}, nil
}

// Path returns the output path for suffix.
func (o Outputs) Path(suffix string) (string, error) {
	return security.OutputPath(o.Dir, o.Stem, suffix)
}
