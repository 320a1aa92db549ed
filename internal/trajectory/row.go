// Package trajectory merges position and kinematic samples into the
// uniform output table, one row per frame.
package trajectory

import (
	"errors"
	"fmt"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// ErrMismatch is returned when position and kinematic series do not line up.
var ErrMismatch = errors.New("trajectory: series mismatch")

// Row is one output record. Metric fields are always present and are
// undefined when calibration is disabled.
type Row struct {
	Frame    int
	Time     float64
	Detected bool
	Pixel    kinematics.Motion
	Metric   kinematics.Motion
}

// AssembleRow merges a single frame's samples.
func AssembleRow(p kinematics.PositionSample, k kinematics.KinematicSample) (Row, error) {
	if p.Frame != k.Frame {
		return Row{}, fmt.Errorf("%w: position frame %d, kinematic frame %d", ErrMismatch, p.Frame, k.Frame)
	}
	return Row{
		Frame:    p.Frame,
		Time:     p.Time,
		Detected: p.Detected(),
		Pixel:    k.Pixel,
		Metric:   k.Metric,
	}, nil
}

// Assemble merges two equal-length series in order. Rows are never
// dropped or reordered.
func Assemble(positions []kinematics.PositionSample, ks []kinematics.KinematicSample) ([]Row, error) {
	if len(positions) != len(ks) {
		return nil, fmt.Errorf("%w: %d positions, %d kinematic samples", ErrMismatch, len(positions), len(ks))
	}
	rows := make([]Row, len(positions))
	for i := range positions {
		r, err := AssembleRow(positions[i], ks[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = r
	}
	return rows, nil
}

// Kinematics extracts the kinematic series back out of rows.
func Kinematics(rows []Row) []kinematics.KinematicSample {
	out := make([]kinematics.KinematicSample, len(rows))
	for i, r := range rows {
		out[i] = kinematics.KinematicSample{Frame: r.Frame, Time: r.Time, Pixel: r.Pixel, Metric: r.Metric}
	}
	return out
}
