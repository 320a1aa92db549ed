// Package testutil builds synthetic frames for tests that exercise the
// vision and pipeline packages without a video file.
package testutil

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

// Ball is the fill colour used for synthetic balls. It falls inside the
// default segmentation HSV range.
var Ball = color.RGBA{R: 255, G: 255, B: 0, A: 0}

// Disc is a filled circle to draw on a frame.
type Disc struct {
	Center image.Point
	Radius int
	Color  color.RGBA
}

// BallAt returns a Ball-coloured disc.
func BallAt(x, y, r int) Disc {
	return Disc{Center: image.Pt(x, y), Radius: r, Color: Ball}
}

// Frame returns a dark w×h BGR frame with the given discs drawn on it.
// The Mat is closed when the test ends.
func Frame(t testing.TB, w, h int, discs ...Disc) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(20, 20, 20, 0), h, w, gocv.MatTypeCV8UC3)
	for _, d := range discs {
		gocv.Circle(&m, d.Center, d.Radius, d.Color, -1)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// Sequence returns one frame per centre, each with a single ball of
// radius r. A nil entry produces an empty background frame.
func Sequence(t testing.TB, w, h, r int, centers []*image.Point) []gocv.Mat {
	t.Helper()
	out := make([]gocv.Mat, len(centers))
	for i, c := range centers {
		if c == nil {
			out[i] = Frame(t, w, h)
			continue
		}
		out[i] = Frame(t, w, h, BallAt(c.X, c.Y, r))
	}
	return out
}

// Pt returns a pointer to image.Pt(x, y), for building Sequence input.
func Pt(x, y int) *image.Point {
	p := image.Pt(x, y)
	return &p
}
