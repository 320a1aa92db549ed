package video

import (
	"errors"
	"image"
	"io"
)

// PeekSource lets a caller inspect the next frame before the pipeline
// consumes it, for example to draw a seed region on the first frame.
type PeekSource struct {
	src     Source
	pending *Frame
	err     error
}

// NewPeekSource wraps src.
func NewPeekSource(src Source) *PeekSource {
	return &PeekSource{src: src}
}

// Peek returns the next frame without consuming it. The frame remains
// owned by the PeekSource until Next hands it out.
func (p *PeekSource) Peek() (Frame, error) {
	if p.pending == nil {
		f, err := p.src.Next()
		p.pending, p.err = &f, err
	}
	return *p.pending, p.err
}

// Next returns the peeked frame if there is one, otherwise reads on.
func (p *PeekSource) Next() (Frame, error) {
	if p.pending != nil {
		f, err := *p.pending, p.err
		p.pending, p.err = nil, nil
		return f, err
	}
	return p.src.Next()
}

func (p *PeekSource) FPS() float64      { return p.src.FPS() }
func (p *PeekSource) Size() image.Point { return p.src.Size() }

// Close releases a pending frame and the underlying source.
func (p *PeekSource) Close() error {
	if p.pending != nil && !errors.Is(p.err, io.EOF) {
		p.pending.Close()
		p.pending = nil
	}
	return p.src.Close()
}
