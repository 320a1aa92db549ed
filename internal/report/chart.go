package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// missing is how echarts marks a gap in a line series.
const missing = "-"

func lineData(vals []kinematics.Value) []opts.LineData {
	out := make([]opts.LineData, len(vals))
	for i, v := range vals {
		if f, ok := v.Get(); ok {
			out[i] = opts.LineData{Value: f}
		} else {
			out[i] = opts.LineData{Value: missing}
		}
	}
	return out
}

func timeAxis(rows []trajectory.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = fmt.Sprintf("%.3f", r.Time)
	}
	return out
}

func newLine(title, yName string, xAxis []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(xAxis)
	return line
}

// WriteHTML renders an interactive page with position, velocity,
// acceleration and speed charts.
func WriteHTML(w io.Writer, title string, rows []trajectory.Row, speedUnit string) error {
	panels := Panels(rows)
	xAxis := timeAxis(rows)

	pos := newLine("Position", panels[0].YLabel, xAxis)
	pos.AddSeries("x", lineData(panels[0].Values)).
		AddSeries("height", lineData(panels[1].Values))

	vel := newLine("Velocity", panels[2].YLabel, xAxis)
	vel.AddSeries("vx", lineData(panels[2].Values)).
		AddSeries("vy", lineData(panels[3].Values))

	acc := newLine("Acceleration", panels[4].YLabel, xAxis)
	acc.AddSeries("ax", lineData(panels[4].Values)).
		AddSeries("ay", lineData(panels[5].Values))

	speedLabel := "px/s"
	if UseMetric(rows) {
		speedLabel = units.SpeedLabel(speedUnit)
	}
	speed := newLine("Speed", "|v| ("+speedLabel+")", xAxis)
	speed.AddSeries("speed", lineData(Speeds(rows, speedUnit)))

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(pos, vel, acc, speed)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return nil
}

// SaveHTML writes the chart page to path.
func SaveHTML(path, title string, rows []trajectory.Row, speedUnit string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return WriteHTML(f, title, rows, speedUnit)
}
