package main

import (
	"fmt"
	"io"
	"time"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/pipeline"
	"github.com/banshee-data/trajectory.report/internal/units"
)

func printSummary(w io.Writer, res *pipeline.Result, speedUnits string) {
	fmt.Fprintf(w, "\nProcessed %d frames in %s", len(res.Rows), res.Elapsed.Round(time.Millisecond))
	if res.Corrupt > 0 {
		fmt.Fprintf(w, " (%d corrupt)", res.Corrupt)
	}
	fmt.Fprintln(w)
	writeSummary(w, res.Summary, speedUnits)
}

// writeSummary prints run statistics. Speeds are in speedUnits when the run
// was calibrated, px/s otherwise.
func writeSummary(w io.Writer, s kinematics.Summary, speedUnits string) {
	fmt.Fprintf(w, "Detections: %d/%d (%.1f%%) over %.2fs\n",
		s.Detections, s.Frames, 100*s.DetectionRate, s.Duration)

	if !s.MetricValid {
		px := s.Pixel
		if px.SpeedSamples == 0 {
			fmt.Fprintln(w, "Speed: not enough consecutive detections")
			return
		}
		fmt.Fprintf(w, "Speed: mean %.1f px/s, max %.1f px/s (uncalibrated)\n", px.MeanSpeed, px.MaxSpeed)
		fmt.Fprintf(w, "Path length: %.1f px\n", px.PathLength)
		return
	}

	m := s.Metric
	if m.SpeedSamples == 0 {
		fmt.Fprintln(w, "Speed: not enough consecutive detections")
		return
	}
	label := units.SpeedLabel(speedUnits)
	fmt.Fprintf(w, "Speed: mean %.2f %s, max %.2f %s, stddev %.2f %s\n",
		units.ConvertSpeed(m.MeanSpeed, speedUnits), label,
		units.ConvertSpeed(m.MaxSpeed, speedUnits), label,
		units.ConvertSpeed(m.StdDevSpeed, speedUnits), label)
	fmt.Fprintf(w, "Max acceleration: %.2f m/s² (%.2f g)\n", m.MaxAccel, units.AccelerationInG(m.MaxAccel))
	fmt.Fprintf(w, "Path length: %.2f m\n", m.PathLength)
}
