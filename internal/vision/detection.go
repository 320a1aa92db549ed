package vision

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// ErrInvalidSeed is returned when a correlation seed region is empty or
// falls outside the frame.
var ErrInvalidSeed = errors.New("vision: invalid seed region")

// Point is a sub-pixel image coordinate. Y grows downward.
type Point struct {
	X, Y float64
}

// Detection is the located object in one frame.
type Detection struct {
	Center Point
	Radius float64
	Box    image.Rectangle
	Area   float64
	Source Strategy
}

// Localizer finds at most one object per frame.
//
// Seed is called once with the first frame before any Locate. For
// segmentation the region is ignored and may be empty.
type Localizer interface {
	Strategy() Strategy
	Seed(frame gocv.Mat, region image.Rectangle) error
	Locate(frame gocv.Mat) (Detection, bool)
	Close() error
}

// BoxCenter returns the centre of r in sub-pixel coordinates.
func BoxCenter(r image.Rectangle) Point {
	return Point{
		X: float64(r.Min.X) + float64(r.Dx())/2,
		Y: float64(r.Min.Y) + float64(r.Dy())/2,
	}
}

// ValidateSeed checks that region is non-empty and lies within bounds.
func ValidateSeed(region, bounds image.Rectangle) error {
	if region.Empty() {
		return ErrInvalidSeed
	}
	if !region.In(bounds) {
		return ErrInvalidSeed
	}
	return nil
}
