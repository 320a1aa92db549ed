package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/banshee-data/trajectory.report/internal/monitoring"
)

var visionLog = monitoring.For("vision")

// HSV is an OpenCV-scaled HSV triple: H in [0,179], S and V in [0,255].
type HSV struct {
	H, S, V float64
}

func (c HSV) scalar() gocv.Scalar {
	return gocv.NewScalar(c.H, c.S, c.V, 0)
}

// SegmentationParams configure the colour segmentation localizer.
type SegmentationParams struct {
	BlurKernel      int // odd, 0 or 1 disables blurring
	Lower, Upper    HSV
	MorphKernel     int // square structuring element size
	MorphIterations int // open then close, each this many times
	Filter          Filter
}

// DefaultSegmentationParams targets a saturated yellow ball.
func DefaultSegmentationParams() SegmentationParams {
	return SegmentationParams{
		BlurKernel:      11,
		Lower:           HSV{H: 20, S: 100, V: 100},
		Upper:           HSV{H: 40, S: 255, V: 255},
		MorphKernel:     5,
		MorphIterations: 2,
		Filter: Filter{
			Area: Range{Enabled: true, Min: 50},
		},
	}
}

// Validate checks parameter consistency.
func (p SegmentationParams) Validate() error {
	if p.BlurKernel > 1 && p.BlurKernel%2 == 0 {
		return fmt.Errorf("blur kernel must be odd, got %d", p.BlurKernel)
	}
	if p.MorphKernel < 1 {
		return fmt.Errorf("morph kernel must be positive, got %d", p.MorphKernel)
	}
	if p.MorphIterations < 0 {
		return fmt.Errorf("morph iterations must be non-negative, got %d", p.MorphIterations)
	}
	if p.Lower.H > p.Upper.H || p.Lower.S > p.Upper.S || p.Lower.V > p.Upper.V {
		return fmt.Errorf("hsv lower bound %v exceeds upper bound %v", p.Lower, p.Upper)
	}
	if p.Filter.Area.Min < 0 {
		return fmt.Errorf("min area must be non-negative, got %f", p.Filter.Area.Min)
	}
	return nil
}

// Segmenter locates the object by colour thresholding and contour shape.
// Every frame is evaluated independently.
type Segmenter struct {
	params SegmentationParams
	kernel gocv.Mat
}

// NewSegmenter validates p and allocates the morphology kernel.
func NewSegmenter(p SegmentationParams) (*Segmenter, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("segmentation params: %w", err)
	}
	return &Segmenter{
		params: p,
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(p.MorphKernel, p.MorphKernel)),
	}, nil
}

// Strategy returns StrategySegmentation.
func (s *Segmenter) Strategy() Strategy { return StrategySegmentation }

// Seed is a no-op; segmentation has no per-track state.
func (s *Segmenter) Seed(gocv.Mat, image.Rectangle) error { return nil }

// Mask returns the cleaned binary mask for frame. The caller closes it.
func (s *Segmenter) Mask(frame gocv.Mat) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	if k := s.params.BlurKernel; k > 1 {
		gocv.GaussianBlur(frame, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	} else {
		frame.CopyTo(&blurred)
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(blurred, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv, s.params.Lower.scalar(), s.params.Upper.scalar(), &mask)

	for i := 0; i < s.params.MorphIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, s.kernel)
	}
	for i := 0; i < s.params.MorphIterations; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, s.kernel)
	}
	return mask
}

// Candidates returns every external contour of the mask in scan order,
// measured but unfiltered.
func (s *Segmenter) Candidates(frame gocv.Mat) []Candidate {
	if frame.Empty() {
		return nil
	}
	mask := s.Mask(frame)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	scratch := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	defer scratch.Close()

	cands := make([]Candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		cands = append(cands, measureContour(contours, i, &scratch))
	}
	return cands
}

// Locate returns the largest candidate that passes the filter.
func (s *Segmenter) Locate(frame gocv.Mat) (Detection, bool) {
	cands := s.Candidates(frame)
	best, ok := SelectLargest(cands, s.params.Filter)
	visionLog.Tracef("segmentation: candidates=%d selected=%v area=%.1f", len(cands), ok, best.Area)
	if !ok {
		return Detection{}, false
	}
	return best.Detection(), true
}

// Close releases the morphology kernel.
func (s *Segmenter) Close() error {
	return s.kernel.Close()
}
