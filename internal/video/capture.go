package video

import (
	"fmt"
	"image"
	"io"
	"math"

	"gocv.io/x/gocv"

	"github.com/banshee-data/trajectory.report/internal/monitoring"
)

var videoLog = monitoring.For("video")

// Options control how a Capture assigns timestamps.
type Options struct {
	// UseDecoderTimestamps takes frame times from the container's
	// presentation timestamps instead of index/fps. A non-increasing
	// decoder time falls back to index/fps for that frame, or to the
	// previous time plus one frame interval if that is later.
	UseDecoderTimestamps bool
	// FallbackFPS is used when the container reports no frame rate.
	FallbackFPS float64
}

// Capture is a Source backed by an OpenCV video capture.
type Capture struct {
	path     string
	vc       *gocv.VideoCapture
	opts     Options
	fps      float64
	size     image.Point
	total    int
	next     int
	lastTime float64
}

// Open opens a video file. An unopenable file is a setup error.
func Open(path string, opts Options) (*Capture, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("open video %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("open video %s: capture not opened", path)
	}
	if opts.FallbackFPS <= 0 {
		opts.FallbackFPS = DefaultFPS
	}

	fps := vc.Get(gocv.VideoCaptureFPS)
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		videoLog.Opsf("%s reports no frame rate, assuming %.1f fps", path, opts.FallbackFPS)
		fps = opts.FallbackFPS
	}
	size := image.Pt(int(vc.Get(gocv.VideoCaptureFrameWidth)), int(vc.Get(gocv.VideoCaptureFrameHeight)))
	c := &Capture{
		path:     path,
		vc:       vc,
		opts:     opts,
		fps:      fps,
		size:     size,
		total:    int(vc.Get(gocv.VideoCaptureFrameCount)),
		lastTime: math.Inf(-1),
	}
	videoLog.Diagf("opened %s: %dx%d @ %.2f fps, %d frames", path, c.size.X, c.size.Y, c.fps, c.total)
	return c, nil
}

// FPS returns the nominal frame rate.
func (c *Capture) FPS() float64 { return c.fps }

// Size returns the frame dimensions.
func (c *Capture) Size() image.Point { return c.size }

// FrameCount returns the container's frame count estimate, 0 if unknown.
func (c *Capture) FrameCount() int { return c.total }

// Next decodes the next frame. A failed read ends the stream.
func (c *Capture) Next() (Frame, error) {
	mat := gocv.NewMat()
	if !c.vc.Read(&mat) {
		mat.Close()
		return Frame{}, io.EOF
	}
	f := Frame{Index: c.next, Mat: mat}
	f.Timestamp = c.timestamp(c.next)
	c.next++
	if mat.Empty() {
		return f, ErrCorrupt
	}
	return f, nil
}

func (c *Capture) timestamp(index int) float64 {
	var decoder float64
	if c.opts.UseDecoderTimestamps {
		decoder = c.vc.Get(gocv.VideoCapturePosMsec) / 1000
	}
	t := nextTimestamp(index, c.fps, decoder, c.lastTime, c.opts.UseDecoderTimestamps)
	if c.opts.UseDecoderTimestamps && t != decoder {
		videoLog.Tracef("frame %d: decoder time %.3fs not increasing, using %.3fs", index, decoder, t)
	}
	c.lastTime = t
	return t
}

// Skip discards the next n frames. Indices keep counting so rows stay
// aligned with the source clip.
func (c *Capture) Skip(n int) error {
	mat := gocv.NewMat()
	defer mat.Close()
	for i := 0; i < n; i++ {
		if !c.vc.Read(&mat) {
			return io.EOF
		}
		c.timestamp(c.next)
		c.next++
	}
	return nil
}

// SkipSeconds discards round(seconds*fps) frames.
func (c *Capture) SkipSeconds(seconds float64) error {
	if seconds <= 0 {
		return nil
	}
	n := int(math.Round(seconds * c.fps))
	videoLog.Diagf("skipping %d frames (%.2fs)", n, seconds)
	return c.Skip(n)
}

// Close releases the capture.
func (c *Capture) Close() error {
	return c.vc.Close()
}
