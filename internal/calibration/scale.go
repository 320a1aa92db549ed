package calibration

import (
	"fmt"
	"image"
	"math"
)

// Scale is a metres-per-pixel factor. The zero value is disabled.
type Scale struct {
	metersPerPixel float64
}

// Reference describes an object of known size used to calibrate a Scale.
type Reference struct {
	Pixels float64 // size measured in the frame
	Meters float64 // real-world size
}

// ComputeScale returns the metres-per-pixel factor for a reference object.
// Either input being non-positive (or not finite) yields a disabled Scale.
func ComputeScale(referencePixels, referenceMeters float64) Scale {
	if !positive(referencePixels) || !positive(referenceMeters) {
		return Scale{}
	}
	return Scale{metersPerPixel: referenceMeters / referencePixels}
}

// Scale returns the Scale for r.
func (r Reference) Scale() Scale {
	return ComputeScale(r.Pixels, r.Meters)
}

// FromMetersPerPixel builds a Scale from a known factor, disabled when
// mpp is not strictly positive.
func FromMetersPerPixel(mpp float64) Scale {
	if !positive(mpp) {
		return Scale{}
	}
	return Scale{metersPerPixel: mpp}
}

// Enabled reports whether the scale can convert values.
func (s Scale) Enabled() bool {
	return s.metersPerPixel > 0
}

// MetersPerPixel returns the factor, or 0 when disabled.
func (s Scale) MetersPerPixel() float64 {
	return s.metersPerPixel
}

// ToPhysical converts a pixel-based quantity (position, px/s, px/s²) into
// the matching metric quantity. ok is false when the scale is disabled.
func (s Scale) ToPhysical(valuePx float64) (valueM float64, ok bool) {
	if !s.Enabled() {
		return 0, false
	}
	return valuePx * s.metersPerPixel, true
}

func (s Scale) String() string {
	if !s.Enabled() {
		return "disabled"
	}
	return fmt.Sprintf("%.6f m/px", s.metersPerPixel)
}

// ReferenceFromBox measures a reference size from a selected region as the
// mean of its width and height. Empty regions measure 0.
func ReferenceFromBox(r image.Rectangle) float64 {
	if r.Empty() {
		return 0
	}
	return float64(r.Dx()+r.Dy()) / 2
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
