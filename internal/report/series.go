package report

import (
	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/trajectory"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// Panel is one time series of the report.
type Panel struct {
	Title  string
	YLabel string
	Values []kinematics.Value
}

// UseMetric reports whether any row carries metric values.
func UseMetric(rows []trajectory.Row) bool {
	for _, r := range rows {
		if r.Metric.X.Valid() {
			return true
		}
	}
	return false
}

// Times returns the row timestamps.
func Times(rows []trajectory.Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Time
	}
	return out
}

func pick(rows []trajectory.Row, metric bool, f func(kinematics.Motion) kinematics.Value) []kinematics.Value {
	out := make([]kinematics.Value, len(rows))
	for i, r := range rows {
		m := r.Pixel
		if metric {
			m = r.Metric
		}
		out[i] = f(m)
	}
	return out
}

// Panels returns the six report panels in grid order: x and height, vx
// and vy, ax and ay. Metric units are used when calibration was active.
func Panels(rows []trajectory.Row) []Panel {
	metric := UseMetric(rows)
	pos, vel, acc := "px", "px/s", "px/s²"
	if metric {
		pos, vel, acc = "m", "m/s", "m/s²"
	}
	heights := kinematics.Heights(trajectory.Kinematics(rows), metric)
	return []Panel{
		{"Horizontal position", "x (" + pos + ")", pick(rows, metric, func(m kinematics.Motion) kinematics.Value { return m.X })},
		{"Height above lowest point", "h (" + pos + ")", heights},
		{"Horizontal velocity", "vx (" + vel + ")", pick(rows, metric, func(m kinematics.Motion) kinematics.Value { return m.VX })},
		{"Vertical velocity", "vy (" + vel + ")", pick(rows, metric, func(m kinematics.Motion) kinematics.Value { return m.VY })},
		{"Horizontal acceleration", "ax (" + acc + ")", pick(rows, metric, func(m kinematics.Motion) kinematics.Value { return m.AX })},
		{"Vertical acceleration", "ay (" + acc + ")", pick(rows, metric, func(m kinematics.Motion) kinematics.Value { return m.AY })},
	}
}

// Speeds returns the speed series in the given display unit. Pixel speeds
// are returned unchanged when calibration was not active.
func Speeds(rows []trajectory.Row, unit string) []kinematics.Value {
	metric := UseMetric(rows)
	out := make([]kinematics.Value, len(rows))
	for i, r := range rows {
		if !metric {
			out[i] = r.Pixel.Speed()
			continue
		}
		if v, ok := r.Metric.Speed().Get(); ok {
			out[i] = kinematics.Some(units.ConvertSpeed(v, unit))
		}
	}
	return out
}

// segments splits a series into runs of consecutive defined values.
func segments(t []float64, vals []kinematics.Value) [][][2]float64 {
	var (
		out [][][2]float64
		cur [][2]float64
	)
	for i, v := range vals {
		y, ok := v.Get()
		if !ok {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, [2]float64{t[i], y})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
