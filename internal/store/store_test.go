package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trajectory.report/internal/calibration"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

var epoch = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func openTestDB(t *testing.T) (*DB, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(epoch)
	db, err := OpenWithClock(filepath.Join(t.TempDir(), "runs.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, clock
}

func sampleRows(t *testing.T, scale calibration.Scale) []trajectory.Row {
	t.Helper()
	ps := []kinematics.PositionSample{
		kinematics.At(0, 0, 10, 50),
		kinematics.At(1, 0.1, 12, 48),
		kinematics.Missing(2, 0.2),
		kinematics.At(3, 0.3, 18, 47),
	}
	ks, err := kinematics.Estimate(ps, scale)
	require.NoError(t, err)
	rows, err := trajectory.Assemble(ps, ks)
	require.NoError(t, err)
	return rows
}

func TestMigrations(t *testing.T) {
	db, _ := openTestDB(t)
	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, db.MigrateUp())
}

func TestSaveAndGetRun(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	scale := calibration.ComputeScale(40, 0.2)
	rows := sampleRows(t, scale)
	summary := kinematics.Summarize(trajectory.Kinematics(rows))

	id, err := db.SaveRun(ctx, Run{
		VideoPath:      "clips/throw.mp4",
		Strategy:       "segmentation",
		FPS:            10,
		Width:          640,
		Height:         480,
		MetersPerPixel: scale.MetersPerPixel(),
		Summary:        summary,
		Elapsed:        1500 * time.Millisecond,
		ConfigJSON:     `{"strategy":"segmentation"}`,
	}, rows)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := db.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, epoch.Equal(got.CreatedAt), "created at %v", got.CreatedAt)
	assert.Equal(t, "clips/throw.mp4", got.VideoPath)
	assert.Equal(t, 640, got.Width)
	assert.InDelta(t, 0.005, got.MetersPerPixel, 1e-12)
	assert.Equal(t, 1500*time.Millisecond, got.Elapsed)
	assert.Equal(t, 4, got.Summary.Frames)
	assert.Equal(t, 3, got.Summary.Detections)
	assert.True(t, got.Summary.MetricValid)
	assert.InDelta(t, summary.Metric.MaxSpeed, got.Summary.Metric.MaxSpeed, 1e-12)
	assert.InDelta(t, summary.Pixel.PathLength, got.Summary.Pixel.PathLength, 1e-12)

	back, err := db.RunRows(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, back, cmp.AllowUnexported(kinematics.Value{})); diff != "" {
		t.Errorf("RunRows mismatch (-want +got):\n%s", diff)
	}
}

func TestUncalibratedRunStoresNulls(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	rows := sampleRows(t, calibration.Scale{})

	id, err := db.SaveRun(ctx, Run{
		VideoPath: "a.mp4",
		Strategy:  "correlation",
		FPS:       30,
		Summary:   kinematics.Summarize(trajectory.Kinematics(rows)),
	}, rows)
	require.NoError(t, err)

	got, err := db.GetRun(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Summary.MetricValid)
	assert.Zero(t, got.MetersPerPixel)

	var nulls int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM trajectory_rows WHERE run_id = ? AND x_m IS NULL", id,
	).Scan(&nulls))
	assert.Equal(t, len(rows), nulls)

	back, err := db.RunRows(ctx, id)
	require.NoError(t, err)
	require.Len(t, back, 4)
	assert.False(t, back[2].Detected)
	assert.False(t, back[3].Pixel.VX.Valid(), "velocity after a gap stays undefined")
}

func TestListRuns(t *testing.T) {
	db, clock := openTestDB(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := db.SaveRun(ctx, Run{VideoPath: "v.mp4", Strategy: "segmentation", FPS: 30}, nil)
		require.NoError(t, err)
		ids = append(ids, id)
		clock.Advance(time.Minute)
	}

	all, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := db.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetRunNotFound(t *testing.T) {
	db, _ := openTestDB(t)
	_, err := db.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestDeleteRunCascades(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	id, err := db.SaveRun(ctx, Run{ID: "fixed-id", VideoPath: "v.mp4", Strategy: "segmentation", FPS: 30},
		sampleRows(t, calibration.Scale{}))
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	require.NoError(t, db.DeleteRun(ctx, id))
	rows, err := db.RunRows(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, db.DeleteRun(ctx, id), ErrRunNotFound)
}

func TestSaveRunDuplicateFrameRollsBack(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	rows := sampleRows(t, calibration.Scale{})
	rows = append(rows, rows[0])

	_, err := db.SaveRun(ctx, Run{ID: "dup", VideoPath: "v.mp4", Strategy: "segmentation", FPS: 30}, rows)
	require.Error(t, err)

	_, err = db.GetRun(ctx, "dup")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
