// Package render draws detections and motion vectors onto frames and
// shows them in an interactive window.
package render

import (
	"image"
	"math"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// Trail is a bounded history of recent centre points, oldest first.
type Trail struct {
	max    int
	points []image.Point
}

// NewTrail keeps at most n points. n <= 0 disables the trail.
func NewTrail(n int) *Trail {
	return &Trail{max: n}
}

// Push appends p, dropping the oldest point when full.
func (t *Trail) Push(p image.Point) {
	if t.max <= 0 {
		return
	}
	if len(t.points) == t.max {
		copy(t.points, t.points[1:])
		t.points = t.points[:len(t.points)-1]
	}
	t.points = append(t.points, p)
}

// Points returns the trail, oldest first. The slice is shared.
func (t *Trail) Points() []image.Point { return t.points }

// Len returns the number of points held.
func (t *Trail) Len() int { return len(t.points) }

// ArrowEnd returns the tip of a vector arrow drawn from origin. The vector
// is multiplied by scale/divisor so per-second quantities map to a
// per-frame length on screen. ok is false when either component is
// undefined.
func ArrowEnd(origin image.Point, vx, vy kinematics.Value, scale, divisor float64) (image.Point, bool) {
	x, okx := vx.Get()
	y, oky := vy.Get()
	if !okx || !oky || divisor <= 0 {
		return image.Point{}, false
	}
	k := scale / divisor
	return image.Pt(
		origin.X+int(math.Round(x*k)),
		origin.Y+int(math.Round(y*k)),
	), true
}

// Round converts a sub-pixel coordinate to the nearest pixel.
func Round(x, y float64) image.Point {
	return image.Pt(int(math.Round(x)), int(math.Round(y)))
}
