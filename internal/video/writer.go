package video

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// DefaultCodec is the FourCC used for annotated output.
const DefaultCodec = "mp4v"

// Writer encodes frames to a video file.
type Writer struct {
	path   string
	vw     *gocv.VideoWriter
	frames int
}

// NewWriter creates the output file, and its directory if needed.
func NewWriter(path, codec string, fps float64, size image.Point) (*Writer, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("video writer: invalid frame size %v", size)
	}
	if codec == "" {
		codec = DefaultCodec
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("video writer: %w", err)
	}
	vw, err := gocv.VideoWriterFile(path, codec, fps, size.X, size.Y, true)
	if err != nil {
		return nil, fmt.Errorf("video writer %s: %w", path, err)
	}
	if !vw.IsOpened() {
		vw.Close()
		return nil, fmt.Errorf("video writer %s: not opened", path)
	}
	videoLog.Diagf("writing annotated video to %s (%s, %.2f fps)", path, codec, fps)
	return &Writer{path: path, vw: vw}, nil
}

// Write appends one frame.
func (w *Writer) Write(mat gocv.Mat) error {
	if err := w.vw.Write(mat); err != nil {
		return fmt.Errorf("write frame %d to %s: %w", w.frames, w.path, err)
	}
	w.frames++
	return nil
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// Close finalises the file.
func (w *Writer) Close() error {
	videoLog.Diagf("closed %s after %d frames", w.path, w.frames)
	return w.vw.Close()
}
