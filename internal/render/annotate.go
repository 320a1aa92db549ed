package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"golang.org/x/image/colornames"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
	"github.com/banshee-data/trajectory.report/internal/vision"
)

// Options control what the Annotator draws.
type Options struct {
	TrailLength   int
	VelocityScale float64
	AccelScale    float64
	DrawBox       bool
	// FPS converts per-second vectors into per-frame arrow lengths.
	FPS float64
}

// Palette
var (
	colorDetection = colornames.Lime
	colorCenter    = colornames.Red
	colorTrail     = colornames.Yellow
	colorVelocity  = colornames.Deepskyblue
	colorAccel     = colornames.Orange
	colorText      = colornames.White
	colorMissing   = colornames.Crimson
)

// Annotator draws one frame at a time and carries the trail between frames.
type Annotator struct {
	opts  Options
	trail *Trail
}

// NewAnnotator creates an Annotator.
func NewAnnotator(opts Options) *Annotator {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	return &Annotator{opts: opts, trail: NewTrail(opts.TrailLength)}
}

// Annotate draws the detection, trail, motion vectors and status text for
// row onto img. det may be nil.
func (a *Annotator) Annotate(img *gocv.Mat, row trajectory.Row, det *vision.Detection, state string) {
	if det != nil {
		center := Round(det.Center.X, det.Center.Y)
		a.trail.Push(center)
		a.drawTrail(img)

		if a.opts.DrawBox && !det.Box.Empty() {
			gocv.Rectangle(img, det.Box, colorDetection, 2)
		} else if det.Radius > 0 {
			gocv.Circle(img, center, int(det.Radius+0.5), colorDetection, 2)
		}
		gocv.Circle(img, center, 3, colorCenter, -1)

		if tip, ok := ArrowEnd(center, row.Pixel.VX, row.Pixel.VY, a.opts.VelocityScale, a.opts.FPS); ok {
			gocv.ArrowedLine(img, center, tip, colorVelocity, 2)
		}
		if tip, ok := ArrowEnd(center, row.Pixel.AX, row.Pixel.AY, a.opts.AccelScale, a.opts.FPS*a.opts.FPS); ok {
			gocv.ArrowedLine(img, center, tip, colorAccel, 2)
		}
	} else {
		a.drawTrail(img)
	}

	for i, line := range a.statusLines(row, det, state) {
		c := colorText
		if i == 1 && det == nil {
			c = colorMissing
		}
		gocv.PutText(img, line, image.Pt(10, 25+22*i), gocv.FontHersheySimplex, 0.6, c, 2)
	}
}

func (a *Annotator) drawTrail(img *gocv.Mat) {
	pts := a.trail.Points()
	for i := 1; i < len(pts); i++ {
		// older segments are thinner
		thickness := 1 + (3*i)/len(pts)
		gocv.Line(img, pts[i-1], pts[i], fade(colorTrail, i, len(pts)), thickness)
	}
}

// fade dims c for older trail segments.
func fade(c color.RGBA, i, n int) color.RGBA {
	if n <= 1 {
		return c
	}
	k := (3*float64(n-1) + 7*float64(i)) / (10 * float64(n-1))
	return color.RGBA{R: uint8(float64(c.R) * k), G: uint8(float64(c.G) * k), B: uint8(float64(c.B) * k), A: c.A}
}

func (a *Annotator) statusLines(row trajectory.Row, det *vision.Detection, state string) []string {
	lines := []string{fmt.Sprintf("frame %d  t=%.3fs", row.Frame, row.Time)}
	if det == nil {
		lines = append(lines, "not detected ("+state+")")
		return lines
	}
	lines = append(lines, fmt.Sprintf("pos (%.1f, %.1f) px", det.Center.X, det.Center.Y))
	if v, ok := row.Metric.Speed().Get(); ok {
		lines = append(lines, fmt.Sprintf("|v| %.2f m/s", v))
	} else if v, ok := row.Pixel.Speed().Get(); ok {
		lines = append(lines, fmt.Sprintf("|v| %.1f px/s", v))
	}
	if acc, ok := row.Metric.AccelerationMagnitude().Get(); ok {
		lines = append(lines, fmt.Sprintf("|a| %.2f m/s²", acc))
	}
	return lines
}
