package vision

import (
	"image"
	"image/color"
	"math"
	"sort"

	"gocv.io/x/gocv"
)

// Candidate is one connected region from the segmentation mask, with the
// shape metrics used for filtering.
type Candidate struct {
	Index        int // contour scan order
	Area         float64
	Perimeter    float64
	Circularity  float64 // 4πA/P², 1 for a disc
	Convexity    float64 // A / hull area
	InertiaRatio float64 // minor/major second moment, 1 for a disc
	Center       Point   // centroid from moments
	Radius       float64
	Box          image.Rectangle
}

// HasCentroid reports whether the region has positive area. A zero-area
// region has no defined centroid and can never be selected.
func (c Candidate) HasCentroid() bool {
	return c.Area > 0
}

// Detection converts the candidate into a segmentation detection.
func (c Candidate) Detection() Detection {
	return Detection{
		Center: c.Center,
		Radius: c.Radius,
		Box:    c.Box,
		Area:   c.Area,
		Source: StrategySegmentation,
	}
}

// Shape is the raw measurement of one contour.
type Shape struct {
	Area      float64 // contour area
	Perimeter float64 // closed arc length
	HullArea  float64
	Moments   map[string]float64 // moments of the filled region, as from gocv.Moments
	Radius    float64            // minimum enclosing circle
	Box       image.Rectangle
}

// NewCandidate derives the filter metrics from a measured shape.
func NewCandidate(index int, s Shape) Candidate {
	c := Candidate{Index: index, Perimeter: s.Perimeter, Box: s.Box}
	m00 := s.Moments["m00"]
	if s.Area <= 0 || m00 <= 0 {
		return c
	}
	c.Area = s.Area
	c.Radius = s.Radius
	c.Center = Point{X: s.Moments["m10"] / m00, Y: s.Moments["m01"] / m00}
	c.InertiaRatio = inertiaRatio(s.Moments["mu20"], s.Moments["mu11"], s.Moments["mu02"])
	if c.Perimeter > 0 {
		c.Circularity = 4 * math.Pi * c.Area / (c.Perimeter * c.Perimeter)
	}
	if s.HullArea > 0 {
		c.Convexity = c.Area / s.HullArea
	}
	return c
}

var fill = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// measureContour measures contour i of contours. scratch is a single
// channel Mat the size of the mask; it is overwritten.
func measureContour(contours gocv.PointsVector, i int, scratch *gocv.Mat) Candidate {
	contour := contours.At(i)
	s := Shape{
		Area:      gocv.ContourArea(contour),
		Perimeter: gocv.ArcLength(contour, true),
		Box:       gocv.BoundingRect(contour),
	}
	if s.Area > 0 {
		hull := gocv.NewPointVectorFromPoints(ConvexHull(contour.ToPoints()))
		s.HullArea = gocv.ContourArea(hull)
		hull.Close()

		scratch.SetTo(gocv.NewScalar(0, 0, 0, 0))
		gocv.DrawContours(scratch, contours, i, fill, -1)
		s.Moments = gocv.Moments(*scratch, true)

		_, _, r := gocv.MinEnclosingCircle(contour)
		s.Radius = float64(r)
	}
	return NewCandidate(i, s)
}

// inertiaRatio is the ratio of the minor to the major principal second
// moment, computed the way OpenCV's blob detector does.
func inertiaRatio(mu20, mu11, mu02 float64) float64 {
	denom := math.Hypot(2*mu11, mu20-mu02)
	if denom < 1e-2 {
		return 1
	}
	cosmin := (mu20 - mu02) / denom
	sinmin := 2 * mu11 / denom
	imin := 0.5*(mu20+mu02) - 0.5*(mu20-mu02)*cosmin - mu11*sinmin
	imax := 0.5*(mu20+mu02) + 0.5*(mu20-mu02)*cosmin + mu11*sinmin
	if imax <= 0 {
		return 0
	}
	return imin / imax
}

// ConvexHull returns the hull of pts in counter-clockwise order using the
// monotone chain construction. Collinear points are dropped.
func ConvexHull(pts []image.Point) []image.Point {
	if len(pts) < 3 {
		return pts
	}
	sorted := make([]image.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]image.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func cross(o, a, b image.Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
