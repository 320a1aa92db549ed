package video

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestFindVideoFile(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		subdirs []string
		want    string
		wantErr error
	}{
		{"single mp4", []string{"throw.mp4", "notes.txt"}, nil, "throw.mp4", nil},
		{"upper-case extension", []string{"THROW.MOV"}, nil, "THROW.MOV", nil},
		{"none", []string{"readme.md"}, nil, "", ErrNoVideo},
		{"empty dir", nil, nil, "", ErrNoVideo},
		{"two videos", []string{"a.mp4", "b.avi"}, nil, "", ErrMultipleVideos},
		{"directory named like a video is ignored", []string{"clip.mkv"}, []string{"old.mp4"}, "clip.mkv", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.files...)
			for _, d := range tt.subdirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0o755))
			}

			got, err := FindVideoFile(dir, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), got)
		})
	}
}

func TestFindVideoFileCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4", "b.webm")

	got, err := FindVideoFile(dir, []string{".WEBM"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.webm"), got)
}

func TestFindVideoFileMissingDir(t *testing.T) {
	_, err := FindVideoFile(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestTimestampFor(t *testing.T) {
	assert.Equal(t, 0.0, timestampFor(0, 25))
	assert.InDelta(t, 2.0, timestampFor(50, 25), 1e-12)
	assert.InDelta(t, 1.0, timestampFor(30, 0), 1e-12, "falls back to DefaultFPS")
}
