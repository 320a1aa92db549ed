package kinematics

import (
	"github.com/banshee-data/trajectory.report/internal/calibration"
)

// Estimate differentiates a whole series. The output has the same length
// and order as samples.
func Estimate(samples []PositionSample, scale calibration.Scale) ([]KinematicSample, error) {
	d := NewDifferentiator(scale)
	out := make([]KinematicSample, 0, len(samples))
	for _, s := range samples {
		k, err := d.Push(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// Heights returns the height of each sample above the floor, where the
// floor is the lowest observed point (largest y, since image y grows
// downward). metric selects the metric or pixel y series.
func Heights(samples []KinematicSample, metric bool) []Value {
	pick := func(k KinematicSample) Value {
		if metric {
			return k.Metric.Y
		}
		return k.Pixel.Y
	}

	floor, found := 0.0, false
	for _, k := range samples {
		if y, ok := pick(k).Get(); ok && (!found || y > floor) {
			floor, found = y, true
		}
	}

	out := make([]Value, len(samples))
	if !found {
		return out
	}
	for i, k := range samples {
		if y, ok := pick(k).Get(); ok {
			out[i] = Some(floor - y)
		}
	}
	return out
}
