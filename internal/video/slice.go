package video

import (
	"image"
	"io"

	"gocv.io/x/gocv"
)

// SliceSource replays in-memory frames. It is used by tests and by callers
// that already hold decoded images.
type SliceSource struct {
	Mats []gocv.Mat
	// Times overrides index/fps timestamps when non-nil.
	Times []float64
	// Corrupt marks indices that are returned as ErrCorrupt.
	Corrupt map[int]bool
	Rate    float64

	next int
}

// FPS returns Rate, or DefaultFPS when unset.
func (s *SliceSource) FPS() float64 {
	if s.Rate <= 0 {
		return DefaultFPS
	}
	return s.Rate
}

// Size returns the dimensions of the first frame.
func (s *SliceSource) Size() image.Point {
	if len(s.Mats) == 0 {
		return image.Point{}
	}
	return image.Pt(s.Mats[0].Cols(), s.Mats[0].Rows())
}

// Next returns a clone of the next frame so the caller may close it.
func (s *SliceSource) Next() (Frame, error) {
	if s.next >= len(s.Mats) {
		return Frame{}, io.EOF
	}
	i := s.next
	s.next++
	f := Frame{Index: i, Timestamp: timestampFor(i, s.FPS())}
	if s.Times != nil {
		f.Timestamp = s.Times[i]
	}
	if s.Corrupt[i] {
		f.Mat = gocv.NewMat()
		return f, ErrCorrupt
	}
	f.Mat = s.Mats[i].Clone()
	return f, nil
}

// Close is a no-op; the caller owns Mats.
func (s *SliceSource) Close() error { return nil }
