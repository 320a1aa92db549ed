package render

import (
	"image"

	"gocv.io/x/gocv"
)

// Keys that cancel processing from the display window.
const (
	keyQuit   = 'q'
	keyEscape = 27
)

// Display shows frames in a window and polls the keyboard between frames.
type Display struct {
	win   *gocv.Window
	delay int
}

// NewDisplay opens a window. delayMs bounds the key poll after each frame.
func NewDisplay(title string, delayMs int) *Display {
	if delayMs < 1 {
		delayMs = 1
	}
	return &Display{win: gocv.NewWindow(title), delay: delayMs}
}

// Show displays img and reports whether the user asked to stop.
func (d *Display) Show(img gocv.Mat) (cancel bool) {
	d.win.IMShow(img)
	return IsCancelKey(d.win.WaitKey(d.delay))
}

// SelectROI lets the user drag a region on img. An empty rectangle means
// the selection was aborted.
func (d *Display) SelectROI(img gocv.Mat) image.Rectangle {
	return d.win.SelectROI(img)
}

// Close destroys the window.
func (d *Display) Close() error {
	return d.win.Close()
}

// IsCancelKey reports whether a WaitKey result is 'q' or ESC.
func IsCancelKey(key int) bool {
	return key&0xff == keyQuit || key&0xff == keyEscape
}
