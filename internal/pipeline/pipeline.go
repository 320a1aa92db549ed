// Package pipeline drives a video source through localization, continuity,
// differentiation and the output sinks, one frame at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gocv.io/x/gocv"

	"github.com/banshee-data/trajectory.report/internal/calibration"
	"github.com/banshee-data/trajectory.report/internal/continuity"
	"github.com/banshee-data/trajectory.report/internal/export"
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/render"
	"github.com/banshee-data/trajectory.report/internal/timeutil"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
	"github.com/banshee-data/trajectory.report/internal/video"
	"github.com/banshee-data/trajectory.report/internal/vision"
)

var pipeLog = monitoring.For("pipeline")

// FrameWriter receives annotated frames.
type FrameWriter interface {
	Write(gocv.Mat) error
}

// Viewer shows annotated frames and reports a user cancel.
type Viewer interface {
	Show(gocv.Mat) (cancel bool)
}

// Config wires one run. Source and Localizer are required; every sink is
// optional.
type Config struct {
	Source     video.Source
	Localizer  vision.Localizer
	Continuity continuity.Options
	Scale      calibration.Scale

	CSV       *export.CSVWriter
	Annotator *render.Annotator
	Video     FrameWriter
	Viewer    Viewer

	// OnRow is called after each row is assembled.
	OnRow func(trajectory.Row)
	Clock timeutil.Clock
}

// Result is what a run produced. Rows holds one entry per frame consumed,
// including frames after which the run was cancelled.
type Result struct {
	Rows    []trajectory.Row
	Summary kinematics.Summary
	Elapsed time.Duration

	// ProcessingFPS is frames handled per second of wall time.
	ProcessingFPS float64
	Corrupt       int
	Cancelled     bool
}

// Run processes the source until EOF, cancellation, or a fatal error.
//
// ctx and the Viewer are polled once per frame boundary. A cancelled run
// returns the rows produced so far with Cancelled set and a nil error.
// Setup and ordering errors abort the run and are returned with the
// partial result.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Source == nil || cfg.Localizer == nil {
		return nil, errors.New("pipeline: source and localizer are required")
	}
	sw := timeutil.StartStopwatch(cfg.Clock)
	res := &Result{}
	mgr := continuity.NewManager(cfg.Localizer, cfg.Continuity)
	diff := kinematics.NewDifferentiator(cfg.Scale)

	pipeLog.Diagf("run started: strategy=%s fps=%.3f size=%v scale=%s",
		cfg.Localizer.Strategy(), cfg.Source.FPS(), cfg.Source.Size(), cfg.Scale)

	finish := func() (*Result, error) {
		res.Summary = kinematics.Summarize(trajectory.Kinematics(res.Rows))
		res.Elapsed = sw.Elapsed()
		res.ProcessingFPS = sw.Rate()
		if cfg.CSV != nil {
			if err := cfg.CSV.Flush(); err != nil {
				return res, fmt.Errorf("flush csv: %w", err)
			}
		}
		return res, nil
	}

	for {
		if err := ctx.Err(); err != nil {
			pipeLog.Opsf("cancelled after %d frames: %v", len(res.Rows), err)
			res.Cancelled = true
			return finish()
		}

		f, err := cfg.Source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		cancel, err := step(cfg, mgr, diff, res, f, err)
		f.Close()
		sw.Tick()
		if err != nil {
			r, _ := finish()
			return r, err
		}
		if cancel {
			pipeLog.Opsf("stopped by user at frame %d", f.Index)
			res.Cancelled = true
			return finish()
		}
	}

	r, err := finish()
	pipeLog.Diagf("run finished: %d frames, %d detections, %d corrupt, %.1f frames/s",
		len(res.Rows), mgr.TrackState().Accepted, res.Corrupt, res.ProcessingFPS)
	return r, err
}

// step handles one frame. readErr is the error Next returned with f.
func step(cfg Config, mgr *continuity.Manager, diff *kinematics.Differentiator, res *Result, f video.Frame, readErr error) (bool, error) {
	var (
		pos kinematics.PositionSample
		det *vision.Detection
		err error
	)
	switch {
	case errors.Is(readErr, video.ErrCorrupt):
		res.Corrupt++
		pipeLog.Opsf("frame %d: %v", f.Index, readErr)
		pos, err = mgr.Skip(f)
	case readErr != nil:
		return false, fmt.Errorf("read frame: %w", readErr)
	default:
		pos, det, err = mgr.Step(f)
	}
	if err != nil {
		return false, fmt.Errorf("frame %d: %w", f.Index, err)
	}

	k, err := diff.Push(pos)
	if err != nil {
		return false, fmt.Errorf("frame %d: %w", f.Index, err)
	}
	row, err := trajectory.AssembleRow(pos, k)
	if err != nil {
		return false, err
	}
	res.Rows = append(res.Rows, row)

	if cfg.CSV != nil {
		if err := cfg.CSV.WriteRow(row); err != nil {
			return false, fmt.Errorf("write csv row %d: %w", row.Frame, err)
		}
	}
	if cfg.OnRow != nil {
		cfg.OnRow(row)
	}

	if cfg.Video == nil && cfg.Viewer == nil {
		return false, nil
	}
	img := f.Mat
	if img.Empty() {
		// Corrupt frames still get a blank frame so the annotated video
		// stays one frame per row.
		size := cfg.Source.Size()
		if size.X <= 0 || size.Y <= 0 {
			return false, nil
		}
		img = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), size.Y, size.X, gocv.MatTypeCV8UC3)
		defer img.Close()
	}
	if cfg.Annotator != nil {
		cfg.Annotator.Annotate(&img, row, det, mgr.State().String())
	}
	if cfg.Video != nil {
		if err := cfg.Video.Write(img); err != nil {
			return false, fmt.Errorf("write video frame %d: %w", f.Index, err)
		}
	}
	if cfg.Viewer != nil && cfg.Viewer.Show(img) {
		return true, nil
	}
	return false, nil
}
