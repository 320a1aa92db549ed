// Package video reads frames from a recorded clip and writes the
// annotated copy.
package video

import (
	"errors"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// DefaultFPS is assumed when the container does not report a frame rate.
const DefaultFPS = 30.0

// ErrCorrupt marks a single frame that decoded to nothing. The stream
// continues after it; io.EOF is the only terminal error.
var ErrCorrupt = errors.New("video: corrupt frame")

// Frame is one decoded image. The pipeline owns it until Close.
type Frame struct {
	Index     int
	Timestamp float64 // seconds
	Mat       gocv.Mat
}

// Close releases the frame's pixel buffer.
func (f Frame) Close() error {
	return f.Mat.Close()
}

// Source yields frames in strictly increasing index order.
//
// Next returns io.EOF at the end of the stream. ErrCorrupt is returned
// with a Frame whose Index and Timestamp are set but whose Mat is empty.
type Source interface {
	Next() (Frame, error)
	FPS() float64
	Size() image.Point
	Close() error
}

// timestampFor converts a frame index to seconds at a fixed rate.
func timestampFor(index int, fps float64) float64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return float64(index) / fps
}

// nextTimestamp returns the time of frame index given the previous frame's
// time last. A decoder time is taken only when it advances past last. The
// index time is used otherwise, bumped to last plus one frame interval when
// it would not advance either.
func nextTimestamp(index int, fps, decoder, last float64, useDecoder bool) float64 {
	if useDecoder && decoder > last && !math.IsInf(decoder, 0) {
		return decoder
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	if t := timestampFor(index, fps); t > last {
		return t
	}
	return last + 1/fps
}
