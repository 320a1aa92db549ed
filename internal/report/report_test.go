package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/trajectory.report/internal/calibration"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// parabola builds a thrown-ball track with a two-frame dropout.
func parabola(t *testing.T, scale calibration.Scale) []trajectory.Row {
	t.Helper()
	var ps []kinematics.PositionSample
	for i := 0; i < 20; i++ {
		tt := float64(i) / 10
		if i == 7 || i == 8 {
			ps = append(ps, kinematics.Missing(i, tt))
			continue
		}
		ps = append(ps, kinematics.At(i, tt, 100*tt, 400-300*tt+250*tt*tt))
	}
	ks, err := kinematics.Estimate(ps, scale)
	require.NoError(t, err)
	rows, err := trajectory.Assemble(ps, ks)
	require.NoError(t, err)
	return rows
}

func TestSegments(t *testing.T) {
	ts := []float64{0, 1, 2, 3, 4, 5}
	vals := []kinematics.Value{
		kinematics.Some(1), kinematics.Some(2), kinematics.None(),
		kinematics.Some(4), kinematics.None(), kinematics.Some(6),
	}
	want := [][][2]float64{
		{{0, 1}, {1, 2}},
		{{3, 4}},
		{{5, 6}},
	}
	if diff := cmp.Diff(want, segments(ts, vals)); diff != "" {
		t.Errorf("segments mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, segments(nil, nil))
}

func TestPanelsUnits(t *testing.T) {
	pixel := Panels(parabola(t, calibration.Scale{}))
	require.Len(t, pixel, gridRows*gridCols)
	assert.Equal(t, "x (px)", pixel[0].YLabel)
	assert.Equal(t, "ay (px/s²)", pixel[5].YLabel)

	metric := Panels(parabola(t, calibration.ComputeScale(100, 1)))
	assert.Equal(t, "vx (m/s)", metric[2].YLabel)
	x, ok := metric[0].Values[1].Get()
	require.True(t, ok)
	assert.InDelta(t, 0.1, x, 1e-9)
}

func TestPanelsHeight(t *testing.T) {
	panels := Panels(parabola(t, calibration.Scale{}))
	var minH = 1e9
	for _, v := range panels[1].Values {
		if h, ok := v.Get(); ok && h < minH {
			minH = h
		}
	}
	assert.Equal(t, 0.0, minH, "lowest point has zero height")
	assert.False(t, panels[1].Values[7].Valid())
}

func TestSpeeds(t *testing.T) {
	rows := parabola(t, calibration.ComputeScale(1, 1))
	mps := Speeds(rows, units.MPS)
	kmph := Speeds(rows, units.KMPH)
	v, ok := mps[1].Get()
	require.True(t, ok)
	k, _ := kmph[1].Get()
	assert.InDelta(t, v*3.6, k, 1e-9)
	assert.False(t, mps[0].Valid())
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, parabola(t, calibration.Scale{}), 6*vg.Inch, 6*vg.Inch))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestWritePNGAllUndefined(t *testing.T) {
	ps := []kinematics.PositionSample{kinematics.Missing(0, 0), kinematics.Missing(1, 0.1)}
	ks, err := kinematics.Estimate(ps, calibration.Scale{})
	require.NoError(t, err)
	rows, err := trajectory.Assemble(ps, ks)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, WritePNG(&buf, rows, 4*vg.Inch, 4*vg.Inch))
}

func TestSaveArtifacts(t *testing.T) {
	dir := t.TempDir()
	rows := parabola(t, calibration.ComputeScale(200, 0.24))

	pngPath := filepath.Join(dir, "plots", "kinematics.png")
	require.NoError(t, SavePNG(pngPath, rows))
	info, err := os.Stat(pngPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	htmlPath := filepath.Join(dir, "plots", "kinematics.html")
	require.NoError(t, SaveHTML(htmlPath, "throw.mp4", rows, units.KMPH))
	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	html := string(data)
	for _, want := range []string{"Position", "Velocity", "Acceleration", "Speed"} {
		assert.True(t, strings.Contains(html, want), "chart page missing %q", want)
	}
}
