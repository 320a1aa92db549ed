package kinematics

import (
	"errors"
	"fmt"

	"github.com/banshee-data/trajectory.report/internal/calibration"
)

// ErrOutOfOrder is returned when samples are not pushed in strictly
// increasing frame order.
var ErrOutOfOrder = errors.New("kinematics: sample out of frame order")

// Differentiator computes backward differences one sample at a time, so the
// live pipeline and the batch Estimate produce identical output.
type Differentiator struct {
	scale calibration.Scale

	started bool
	prev    PositionSample
	prevVX  Value
	prevVY  Value
}

// NewDifferentiator returns a Differentiator that also fills the metric
// motion through scale.
func NewDifferentiator(scale calibration.Scale) *Differentiator {
	return &Differentiator{scale: scale}
}

// Push consumes the next sample and returns its kinematic row.
//
// dt = t[i] - t[i-1]. A velocity needs both positions defined and dt > 0;
// an acceleration needs both velocities defined and dt > 0.
func (d *Differentiator) Push(s PositionSample) (KinematicSample, error) {
	out := KinematicSample{
		Frame: s.Frame,
		Time:  s.Time,
		Pixel: Motion{X: s.X, Y: s.Y},
	}

	if d.started {
		if s.Frame <= d.prev.Frame {
			return KinematicSample{}, fmt.Errorf("%w: frame %d after %d", ErrOutOfOrder, s.Frame, d.prev.Frame)
		}
		dt := s.Time - d.prev.Time
		out.Pixel.VX = s.X.Sub(d.prev.X).Div(dt)
		out.Pixel.VY = s.Y.Sub(d.prev.Y).Div(dt)
		out.Pixel.AX = out.Pixel.VX.Sub(d.prevVX).Div(dt)
		out.Pixel.AY = out.Pixel.VY.Sub(d.prevVY).Div(dt)
	}

	d.started = true
	d.prev = s
	d.prevVX = out.Pixel.VX
	d.prevVY = out.Pixel.VY

	out.Metric = out.Pixel.Scale(d.scale)
	return out, nil
}

// Reset forgets all history.
func (d *Differentiator) Reset() {
	*d = Differentiator{scale: d.scale}
}
