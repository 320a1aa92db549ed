package main

import (
	"bytes"
	"context"
	"image"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/pipeline"
	"github.com/banshee-data/trajectory.report/internal/store"
	"github.com/banshee-data/trajectory.report/internal/units"
	"github.com/banshee-data/trajectory.report/internal/vision"
)

func TestParseBBox(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{"10,20,30,40", image.Rect(10, 20, 40, 60), false},
		{" 1, 2, 3, 4 ", image.Rect(1, 2, 4, 6), false},
		{"1,2,3", image.Rectangle{}, true},
		{"a,2,3,4", image.Rectangle{}, true},
		{"1,2,0,4", image.Rectangle{}, true},
		{"1,2,3,-4", image.Rectangle{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBBox(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckSeed(t *testing.T) {
	frame := image.Pt(640, 480)
	outside, err := parseBBox("5000,5000,10,10")
	require.NoError(t, err)
	inside := image.Rect(100, 100, 140, 140)
	straddling := image.Rect(620, 460, 660, 500)

	tests := []struct {
		name     string
		strategy vision.Strategy
		seed     *image.Rectangle
		wantErr  bool
	}{
		{"correlation inside", vision.StrategyCorrelation, &inside, false},
		{"correlation outside", vision.StrategyCorrelation, &outside, true},
		{"correlation straddling edge", vision.StrategyCorrelation, &straddling, true},
		{"correlation without seed", vision.StrategyCorrelation, nil, false},
		{"segmentation ignores seed", vision.StrategySegmentation, &outside, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSeed(tt.strategy, tt.seed, frame)
			if tt.wantErr {
				assert.ErrorIs(t, err, vision.ErrInvalidSeed)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseRunFlagsDefaults(t *testing.T) {
	f, err := parseRunFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "video", f.inputDir)
	assert.Equal(t, "output", f.outDir)
	assert.False(t, f.hideVideo)
	assert.Empty(t, f.set)
}

func TestParseRunFlagsRejectsExtraArgs(t *testing.T) {
	_, err := parseRunFlags([]string{"-hide-video", "clip.mp4"}, io.Discard)
	assert.Error(t, err)
}

func TestApplyFlagsOverridesOnlyExplicitFlags(t *testing.T) {
	cfg := config.EmptyTrajectoryConfig()
	tracker := "kcf"
	cfg.Tracker = &tracker

	f, err := parseRunFlags([]string{
		"-strategy", "correlation",
		"-bbox", "5,6,10,12",
		"-ref-px", "24", "-ref-m", "0.24",
		"-no-save-video",
		"-speed-units", "KMPH",
		"-db", "runs.db",
	}, io.Discard)
	require.NoError(t, err)
	require.NoError(t, applyFlags(cfg, f))

	assert.Equal(t, vision.StrategyCorrelation, cfg.GetStrategy())
	assert.Equal(t, vision.TrackerKCF, cfg.GetTracker(), "unset -tracker keeps the file value")
	require.NotNil(t, cfg.SeedRegion())
	assert.Equal(t, image.Rect(5, 6, 15, 18), *cfg.SeedRegion())
	assert.InDelta(t, 0.01, cfg.Reference().Scale().MetersPerPixel(), 1e-12)
	assert.False(t, cfg.GetSaveVideo())
	assert.True(t, cfg.GetSaveCSV())
	assert.Equal(t, units.KMPH, cfg.GetSpeedUnits())
	assert.Equal(t, "runs.db", cfg.GetDBPath())
}

func TestApplyFlagsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-bbox", "1,2"},
		{"-speed-units", "knots"},
		{"-strategy", "psychic"},
	} {
		f, err := parseRunFlags(args, io.Discard)
		require.NoError(t, err)
		assert.Error(t, applyFlags(config.EmptyTrajectoryConfig(), f), "%v", args)
	}
}

func TestPromptMeters(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0.5, promptMeters(strings.NewReader("0.5\n"), &out, 40))
	assert.Contains(t, out.String(), "40.0 px")

	out.Reset()
	assert.Equal(t, defaultBallMeters, promptMeters(strings.NewReader("abc\n"), &out, 40))
	assert.Contains(t, out.String(), "Invalid value")

	assert.Equal(t, defaultBallMeters, promptMeters(strings.NewReader("-1\n"), io.Discard, 40))
	assert.Equal(t, defaultBallMeters, promptMeters(strings.NewReader(""), io.Discard, 40))
}

func TestWriteSummaryCalibrated(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, kinematics.Summary{
		Frames: 10, Detections: 8, DetectionRate: 0.8, Duration: 0.3,
		MetricValid: true,
		Metric: kinematics.MotionStats{
			SpeedSamples: 5, MeanSpeed: 10, MaxSpeed: 20, StdDevSpeed: 1,
			MaxAccel: 9.80665, PathLength: 3,
		},
	}, units.KMPH)

	out := buf.String()
	assert.Contains(t, out, "Detections: 8/10 (80.0%) over 0.30s")
	assert.Contains(t, out, "mean 36.00 km/h, max 72.00 km/h")
	assert.Contains(t, out, "(1.00 g)")
	assert.Contains(t, out, "Path length: 3.00 m")
}

func TestWriteSummaryUncalibrated(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, kinematics.Summary{
		Frames: 4, Detections: 4, DetectionRate: 1,
		Pixel: kinematics.MotionStats{SpeedSamples: 3, MeanSpeed: 120, MaxSpeed: 150, PathLength: 36},
	}, units.MPS)
	assert.Contains(t, buf.String(), "mean 120.0 px/s, max 150.0 px/s (uncalibrated)")

	buf.Reset()
	writeSummary(&buf, kinematics.Summary{Frames: 1, Detections: 1, DetectionRate: 1}, units.MPS)
	assert.Contains(t, buf.String(), "not enough consecutive detections")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &pipeline.Result{Elapsed: 1500 * time.Millisecond, Corrupt: 2}, units.MPS)
	assert.Contains(t, buf.String(), "Processed 0 frames in 1.5s (2 corrupt)")
}

func TestWriteRunTable(t *testing.T) {
	var buf bytes.Buffer
	writeRunTable(&buf, []store.Run{
		{
			ID: "run-a", CreatedAt: time.Unix(0, 0), Strategy: "segmentation", VideoPath: "a.mp4",
			Summary: kinematics.Summary{Frames: 3, Detections: 2, Pixel: kinematics.MotionStats{MaxSpeed: 12.34}},
		},
		{
			ID: "run-b", CreatedAt: time.Unix(0, 0), Strategy: "correlation", VideoPath: "b.mp4",
			Summary: kinematics.Summary{Frames: 5, Detections: 5, MetricValid: true, Metric: kinematics.MotionStats{MaxSpeed: 4.5}},
		},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "12.3 px/s")
	assert.Contains(t, lines[2], "4.50 m/s")
}

func TestSetupLogging(t *testing.T) {
	t.Cleanup(func() { monitoring.SetLogWriters(monitoring.LogWriters{}) })

	tests := []struct {
		name                 string
		verbose, veryVerbose bool
		want                 []string
		notWant              []string
	}{
		{"default", false, false, []string{"ops-line"}, []string{"diag-line", "trace-line"}},
		{"verbose", true, false, []string{"ops-line", "diag-line"}, []string{"trace-line"}},
		{"very verbose", false, true, []string{"ops-line", "diag-line", "trace-line"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			setupLogging(&buf, tt.verbose, tt.veryVerbose)
			monitoring.Opsf("ops-line")
			monitoring.Diagf("diag-line")
			monitoring.Tracef("trace-line")
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, buf.String(), w)
			}
		})
	}
}

func TestOpenHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := openHistory(path)
	require.NoError(t, err)
	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.NotZero(t, version)
	require.NoError(t, db.Close())

	_, err = openHistory(filepath.Join(t.TempDir(), "missing", "runs.db"))
	assert.Error(t, err)
}

func TestRemoveRuns(t *testing.T) {
	db, err := openHistory(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		_, err := db.SaveRun(ctx, store.Run{ID: id, VideoPath: "clip.mp4", Strategy: "segmentation", FPS: 30}, nil)
		require.NoError(t, err)
	}

	var out bytes.Buffer
	err = removeRuns(ctx, db, []string{"a", "missing", "b"}, &out)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
	assert.Equal(t, "removed a\nremoved b\n", out.String())

	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
