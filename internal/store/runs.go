package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("store: run not found")

// Run is the metadata and summary of one processed clip.
type Run struct {
	ID             string
	CreatedAt      time.Time
	VideoPath      string
	Strategy       string
	FPS            float64
	Width, Height  int
	MetersPerPixel float64 // 0 when calibration was disabled
	Summary        kinematics.Summary
	Elapsed        time.Duration
	ConfigJSON     string
}

func nullFloat(v float64, valid bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: valid}
}

func nullValue(v kinematics.Value) sql.NullFloat64 {
	f, ok := v.Get()
	return nullFloat(f, ok)
}

func valueOf(n sql.NullFloat64) kinematics.Value {
	if !n.Valid {
		return kinematics.None()
	}
	return kinematics.Some(n.Float64)
}

// SaveRun stores run and its rows in one transaction and returns the run
// id. A new id is generated when run.ID is empty.
func (db *DB) SaveRun(ctx context.Context, run Run, rows []trajectory.Row) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = db.clock.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	s := run.Summary
	metric := s.MetricValid
	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		run_id, created_unix_nanos, video_path, strategy, fps, frame_width, frame_height,
		meters_per_pixel, frames, detections, duration_s,
		mean_speed_px, max_speed_px, max_accel_px, path_length_px,
		mean_speed_m, max_speed_m, max_accel_m, path_length_m,
		elapsed_ms, config_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixNano(), run.VideoPath, run.Strategy, run.FPS, run.Width, run.Height,
		nullFloat(run.MetersPerPixel, run.MetersPerPixel > 0), s.Frames, s.Detections, s.Duration,
		s.Pixel.MeanSpeed, s.Pixel.MaxSpeed, s.Pixel.MaxAccel, s.Pixel.PathLength,
		nullFloat(s.Metric.MeanSpeed, metric), nullFloat(s.Metric.MaxSpeed, metric),
		nullFloat(s.Metric.MaxAccel, metric), nullFloat(s.Metric.PathLength, metric),
		run.Elapsed.Milliseconds(), run.ConfigJSON,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	cols := trajectory.Columns()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO trajectory_rows (run_id, %s) VALUES (?%s)",
		strings.Join(cols, ", "), strings.Repeat(", ?", len(cols)),
	))
	if err != nil {
		return "", fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		vals := r.Values()
		args := make([]interface{}, 0, len(vals)+1)
		args = append(args, run.ID, r.Frame, r.Time)
		for _, v := range vals[2:] {
			args = append(args, nullValue(v))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return "", fmt.Errorf("insert row %d: %w", r.Frame, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	storeLog.Diagf("saved run %s (%d rows)", run.ID, len(rows))
	return run.ID, nil
}

const runColumns = `run_id, created_unix_nanos, video_path, strategy, fps, frame_width, frame_height,
	meters_per_pixel, frames, detections, duration_s,
	mean_speed_px, max_speed_px, max_accel_px, path_length_px,
	mean_speed_m, max_speed_m, max_accel_m, path_length_m,
	elapsed_ms, config_json`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                        Run
		created, elapsed           int64
		mpp                        sql.NullFloat64
		meanM, maxM, accelM, pathM sql.NullFloat64
		configJSON                 sql.NullString
	)
	s := &run.Summary
	err := sc.Scan(
		&run.ID, &created, &run.VideoPath, &run.Strategy, &run.FPS, &run.Width, &run.Height,
		&mpp, &s.Frames, &s.Detections, &s.Duration,
		&s.Pixel.MeanSpeed, &s.Pixel.MaxSpeed, &s.Pixel.MaxAccel, &s.Pixel.PathLength,
		&meanM, &maxM, &accelM, &pathM,
		&elapsed, &configJSON,
	)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	run.Elapsed = time.Duration(elapsed) * time.Millisecond
	run.MetersPerPixel = mpp.Float64
	run.ConfigJSON = configJSON.String
	if s.Frames > 0 {
		s.DetectionRate = float64(s.Detections) / float64(s.Frames)
	}
	if meanM.Valid {
		s.MetricValid = true
		s.Metric.MeanSpeed = meanM.Float64
		s.Metric.MaxSpeed = maxM.Float64
		s.Metric.MaxAccel = accelM.Float64
		s.Metric.PathLength = pathM.Float64
	}
	return run, nil
}

// GetRun returns the run with the given id.
func (db *DB) GetRun(ctx context.Context, id string) (Run, error) {
	row := db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := "SELECT " + runColumns + " FROM runs ORDER BY created_unix_nanos DESC"
	args := []interface{}{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// RunRows returns the stored trajectory of a run in frame order.
func (db *DB) RunRows(ctx context.Context, id string) ([]trajectory.Row, error) {
	cols := trajectory.Columns()
	rows, err := db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM trajectory_rows WHERE run_id = ? ORDER BY frame",
		strings.Join(cols, ", "),
	), id)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []trajectory.Row
	for rows.Next() {
		var (
			r    trajectory.Row
			vals [12]sql.NullFloat64
		)
		dest := []interface{}{&r.Frame, &r.Time}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Pixel = kinematics.Motion{
			X: valueOf(vals[0]), Y: valueOf(vals[1]),
			VX: valueOf(vals[2]), VY: valueOf(vals[3]),
			AX: valueOf(vals[4]), AY: valueOf(vals[5]),
		}
		r.Metric = kinematics.Motion{
			X: valueOf(vals[6]), Y: valueOf(vals[7]),
			VX: valueOf(vals[8]), VY: valueOf(vals[9]),
			AX: valueOf(vals[10]), AY: valueOf(vals[11]),
		}
		r.Detected = r.Pixel.X.Valid() && r.Pixel.Y.Valid()
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its rows.
func (db *DB) DeleteRun(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
