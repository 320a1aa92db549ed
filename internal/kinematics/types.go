package kinematics

import (
	"math"

	"github.com/banshee-data/trajectory.report/internal/calibration"
)

// PositionSample is one row of the raw series. X and Y are undefined when
// nothing was detected in the frame.
type PositionSample struct {
	Frame int
	Time  float64 // seconds
	X     Value   // pixels
	Y     Value   // pixels
}

// Missing returns an undefined sample for a frame.
func Missing(frame int, t float64) PositionSample {
	return PositionSample{Frame: frame, Time: t}
}

// At returns a sample with a defined position.
func At(frame int, t, x, y float64) PositionSample {
	return PositionSample{Frame: frame, Time: t, X: Some(x), Y: Some(y)}
}

// Detected reports whether both coordinates are defined.
func (p PositionSample) Detected() bool {
	return p.X.Valid() && p.Y.Valid()
}

// Motion is a position/velocity/acceleration set in one unit system.
type Motion struct {
	X, Y   Value
	VX, VY Value
	AX, AY Value
}

// Scale converts every field of a pixel Motion through s. The result is
// fully undefined when s is disabled.
func (m Motion) Scale(s calibration.Scale) Motion {
	conv := func(v Value) Value {
		px, ok := v.Get()
		if !ok {
			return Value{}
		}
		out, ok := s.ToPhysical(px)
		if !ok {
			return Value{}
		}
		return Some(out)
	}
	return Motion{
		X: conv(m.X), Y: conv(m.Y),
		VX: conv(m.VX), VY: conv(m.VY),
		AX: conv(m.AX), AY: conv(m.AY),
	}
}

// Speed returns the velocity magnitude.
func (m Motion) Speed() Value {
	vx, okx := m.VX.Get()
	vy, oky := m.VY.Get()
	if !okx || !oky {
		return Value{}
	}
	return Some(math.Hypot(vx, vy))
}

// AccelerationMagnitude returns |a|.
func (m Motion) AccelerationMagnitude() Value {
	ax, okx := m.AX.Get()
	ay, oky := m.AY.Get()
	if !okx || !oky {
		return Value{}
	}
	return Some(math.Hypot(ax, ay))
}

// KinematicSample is the derived row for one frame. Metric mirrors Pixel
// through the calibration scale and is undefined throughout when
// calibration is disabled.
type KinematicSample struct {
	Frame  int
	Time   float64
	Pixel  Motion
	Metric Motion
}
