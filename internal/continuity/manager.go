// Package continuity sequences localizer calls across frames and turns
// each frame into exactly one position sample.
package continuity

import (
	"errors"
	"fmt"
	"image"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
	"github.com/banshee-data/trajectory.report/internal/video"
	"github.com/banshee-data/trajectory.report/internal/vision"
)

var (
	// ErrNoSeed is returned when a correlation localizer has no seed region.
	ErrNoSeed = errors.New("continuity: correlation tracking requires a seed region")
	// ErrOutOfOrder is returned when frame indices do not strictly increase.
	ErrOutOfOrder = errors.New("continuity: frame index not increasing")
)

var contLog = monitoring.For("continuity")

// State is the manager's track state.
type State int

const (
	SeekingSeed State = iota
	Tracking
	Lost
)

func (s State) String() string {
	switch s {
	case SeekingSeed:
		return "seeking_seed"
	case Tracking:
		return "tracking"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configure a Manager.
type Options struct {
	// Seed is the initial region for correlation tracking. Segmentation
	// ignores it.
	Seed *image.Rectangle
	// MaxFailures is the number of consecutive correlation failures after
	// which the track is abandoned for the rest of the stream. Values below
	// 1 mean 1.
	MaxFailures int
}

// TrackState is the manager's view of the current track.
type TrackState struct {
	Last     *vision.Detection // last accepted detection
	Failures int               // consecutive frames without a detection
	Accepted int               // detections emitted so far
	Frames   int               // samples emitted so far
}

// Manager owns the localizer and its track state for one stream.
type Manager struct {
	loc       vision.Localizer
	opts      Options
	state     State
	track     TrackState
	lastFrame int
	started   bool
	abandoned bool
}

// NewManager creates a manager in SeekingSeed.
func NewManager(loc vision.Localizer, opts Options) *Manager {
	if opts.MaxFailures < 1 {
		opts.MaxFailures = 1
	}
	return &Manager{loc: loc, opts: opts, state: SeekingSeed}
}

// State returns the current state.
func (m *Manager) State() State { return m.state }

// TrackState returns a copy of the current track state.
func (m *Manager) TrackState() TrackState {
	ts := m.track
	if ts.Last != nil {
		last := *ts.Last
		ts.Last = &last
	}
	return ts
}

func (m *Manager) checkOrder(index int) error {
	if m.started && index <= m.lastFrame {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, index, m.lastFrame)
	}
	m.started = true
	m.lastFrame = index
	return nil
}

// Step processes one decoded frame. It returns the sample for the frame,
// the accepted detection if any, and a non-nil error only for setup
// failures (seeding) or ordering violations; in that case no sample is
// produced.
func (m *Manager) Step(f video.Frame) (kinematics.PositionSample, *vision.Detection, error) {
	if err := m.checkOrder(f.Index); err != nil {
		return kinematics.PositionSample{}, nil, err
	}

	if m.state == SeekingSeed {
		det, err := m.seed(f)
		if err != nil {
			return kinematics.PositionSample{}, nil, err
		}
		if det != nil {
			return m.accept(f, *det), det, nil
		}
	}

	if m.abandoned {
		return m.miss(f), nil, nil
	}

	det, ok := m.loc.Locate(f.Mat)
	if !ok {
		return m.miss(f), nil, nil
	}
	return m.accept(f, det), &det, nil
}

// Skip emits an undefined sample for a frame that could not be decoded,
// without consulting the localizer.
func (m *Manager) Skip(f video.Frame) (kinematics.PositionSample, error) {
	if err := m.checkOrder(f.Index); err != nil {
		return kinematics.PositionSample{}, err
	}
	contLog.Tracef("frame %d: skipped (corrupt)", f.Index)
	m.track.Frames++
	return kinematics.Missing(f.Index, f.Timestamp), nil
}

// seed establishes the track. For correlation it returns the seed-box
// detection, which is emitted as the sample for the seed frame.
func (m *Manager) seed(f video.Frame) (*vision.Detection, error) {
	if m.loc.Strategy() != vision.StrategyCorrelation {
		if err := m.loc.Seed(f.Mat, image.Rectangle{}); err != nil {
			return nil, fmt.Errorf("seed frame %d: %w", f.Index, err)
		}
		m.state = Tracking
		contLog.Diagf("frame %d: segmentation needs no seed, tracking", f.Index)
		return nil, nil
	}

	if m.opts.Seed == nil {
		return nil, ErrNoSeed
	}
	region := *m.opts.Seed
	if err := m.loc.Seed(f.Mat, region); err != nil {
		return nil, fmt.Errorf("seed frame %d: %w", f.Index, err)
	}
	m.state = Tracking
	det := vision.BoxDetection(region)
	contLog.Diagf("frame %d: seeded at %v", f.Index, region)
	return &det, nil
}

func (m *Manager) accept(f video.Frame, det vision.Detection) kinematics.PositionSample {
	if m.state == Lost {
		contLog.Diagf("frame %d: reacquired after %d misses", f.Index, m.track.Failures)
	}
	m.state = Tracking
	m.track.Last = &det
	m.track.Failures = 0
	m.track.Accepted++
	m.track.Frames++
	contLog.Tracef("frame %d: detection at (%.1f, %.1f) r=%.1f", f.Index, det.Center.X, det.Center.Y, det.Radius)
	return kinematics.At(f.Index, f.Timestamp, det.Center.X, det.Center.Y)
}

func (m *Manager) miss(f video.Frame) kinematics.PositionSample {
	if m.state != Lost {
		contLog.Diagf("frame %d: track lost", f.Index)
	}
	m.state = Lost
	m.track.Failures++
	m.track.Frames++
	if m.loc.Strategy() == vision.StrategyCorrelation && !m.abandoned && m.track.Failures >= m.opts.MaxFailures {
		m.abandoned = true
		contLog.Opsf("frame %d: correlation track abandoned after %d consecutive failures", f.Index, m.track.Failures)
	}
	return kinematics.Missing(f.Index, f.Timestamp)
}
