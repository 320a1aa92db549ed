package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// CorrelationParams configure the correlation tracking localizer.
type CorrelationParams struct {
	Tracker TrackerKind
}

// DefaultCorrelationParams uses CSRT, the most accurate of the supported
// trackers.
func DefaultCorrelationParams() CorrelationParams {
	return CorrelationParams{Tracker: TrackerCSRT}
}

func trackerFactory(kind TrackerKind) (func() gocv.Tracker, error) {
	switch kind {
	case TrackerCSRT, "":
		return contrib.NewTrackerCSRT, nil
	case TrackerKCF:
		return contrib.NewTrackerKCF, nil
	case TrackerMIL:
		return gocv.NewTrackerMIL, nil
	}
	return nil, fmt.Errorf("unknown tracker %q", kind)
}

// Correlator follows a seeded region with an appearance tracker.
type Correlator struct {
	kind       TrackerKind
	newTracker func() gocv.Tracker
	tracker    gocv.Tracker
}

// NewCorrelator resolves the tracker implementation. The tracker itself is
// created on Seed.
func NewCorrelator(p CorrelationParams) (*Correlator, error) {
	factory, err := trackerFactory(p.Tracker)
	if err != nil {
		return nil, err
	}
	return newCorrelatorWithFactory(p.Tracker, factory), nil
}

func newCorrelatorWithFactory(kind TrackerKind, factory func() gocv.Tracker) *Correlator {
	return &Correlator{kind: kind, newTracker: factory}
}

// Strategy returns StrategyCorrelation.
func (c *Correlator) Strategy() Strategy { return StrategyCorrelation }

// Seed validates region against the frame and initialises the tracker.
// Re-seeding replaces any previous tracker.
func (c *Correlator) Seed(frame gocv.Mat, region image.Rectangle) error {
	bounds := image.Rect(0, 0, frame.Cols(), frame.Rows())
	if err := ValidateSeed(region, bounds); err != nil {
		return fmt.Errorf("%w: %v not within %v", err, region, bounds)
	}
	c.release()
	t := c.newTracker()
	if !t.Init(frame, region) {
		t.Close()
		return fmt.Errorf("%w: %s tracker rejected %v", ErrInvalidSeed, c.kind, region)
	}
	c.tracker = t
	visionLog.Diagf("correlation: %s tracker seeded at %v", c.kind, region)
	return nil
}

// Locate advances the tracker by one frame. An unseeded tracker, an
// update failure or an empty box all yield no detection.
func (c *Correlator) Locate(frame gocv.Mat) (Detection, bool) {
	if c.tracker == nil || frame.Empty() {
		return Detection{}, false
	}
	box, ok := c.tracker.Update(frame)
	if !ok || box.Empty() {
		visionLog.Tracef("correlation: update failed ok=%v box=%v", ok, box)
		return Detection{}, false
	}
	return BoxDetection(box), true
}

// BoxDetection describes a tracked box as a detection.
func BoxDetection(box image.Rectangle) Detection {
	w, h := float64(box.Dx()), float64(box.Dy())
	return Detection{
		Center: BoxCenter(box),
		Radius: (w + h) / 4,
		Box:    box,
		Area:   w * h,
		Source: StrategyCorrelation,
	}
}

func (c *Correlator) release() {
	if c.tracker != nil {
		c.tracker.Close()
		c.tracker = nil
	}
}

// Close releases the underlying tracker.
func (c *Correlator) Close() error {
	c.release()
	return nil
}
