package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	o, err := NewOutputs(dir, "/videos/Free Throw 03.MP4")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, "Free_Throw_03", o.Stem)

	tests := map[string]string{
		SuffixCSV:   "Free_Throw_03_trajectory.csv",
		SuffixVideo: "Free_Throw_03_annotated.mp4",
		SuffixPlot:  "Free_Throw_03_kinematics.png",
		SuffixChart: "Free_Throw_03_kinematics.html",
	}
	for suffix, want := range tests {
		p, err := o.Path(suffix)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, want), p)
	}
}
