package report

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/trajectory.report/internal/trajectory"
)

var lineColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// Grid layout of the kinematics figure.
const (
	gridRows = 3
	gridCols = 2
)

// buildPlot renders one panel. Each run of defined samples becomes its own
// line; isolated samples are drawn as points.
func buildPlot(p Panel, t []float64) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = "t (s)"
	pl.Y.Label.Text = p.YLabel
	pl.Add(plotter.NewGrid())

	for _, seg := range segments(t, p.Values) {
		pts := make(plotter.XYs, len(seg))
		for i, xy := range seg {
			pts[i] = plotter.XY{X: xy[0], Y: xy[1]}
		}
		if len(pts) == 1 {
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.Title, err)
			}
			sc.GlyphStyle.Color = lineColor
			sc.GlyphStyle.Radius = vg.Points(1.5)
			pl.Add(sc)
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Title, err)
		}
		line.Color = lineColor
		line.Width = vg.Points(1)
		pl.Add(line)
	}
	return pl, nil
}

// WritePNG renders the 3×2 kinematics grid as PNG.
func WritePNG(w io.Writer, rows []trajectory.Row, width, height vg.Length) error {
	panels := Panels(rows)
	t := Times(rows)

	plots := make([][]*plot.Plot, gridRows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, gridCols)
		for c := range plots[r] {
			pl, err := buildPlot(panels[r*gridCols+c], t)
			if err != nil {
				return err
			}
			plots[r][c] = pl
		}
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: gridRows, Cols: gridCols,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the kinematics grid to path.
func SavePNG(path string, rows []trajectory.Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return WritePNG(f, rows, 14*vg.Inch, 12*vg.Inch)
}
