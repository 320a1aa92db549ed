package kinematics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MotionStats aggregates one unit system of a trajectory.
type MotionStats struct {
	SpeedSamples int
	MeanSpeed    float64
	StdDevSpeed  float64
	MaxSpeed     float64
	MaxAccel     float64
	PathLength   float64 // summed distance between consecutive detections
}

// Summary describes a whole trajectory run.
type Summary struct {
	Frames        int
	Detections    int
	DetectionRate float64
	Duration      float64 // seconds from the first to the last frame

	Pixel  MotionStats
	Metric MotionStats
	// MetricValid is false when calibration was disabled.
	MetricValid bool
}

// Summarize computes run statistics over a kinematic series.
func Summarize(samples []KinematicSample) Summary {
	var s Summary
	s.Frames = len(samples)
	if s.Frames == 0 {
		return s
	}
	s.Duration = samples[len(samples)-1].Time - samples[0].Time

	for _, k := range samples {
		if k.Pixel.X.Valid() && k.Pixel.Y.Valid() {
			s.Detections++
		}
		if k.Metric.X.Valid() {
			s.MetricValid = true
		}
	}
	s.DetectionRate = float64(s.Detections) / float64(s.Frames)

	s.Pixel = motionStats(samples, func(k KinematicSample) Motion { return k.Pixel })
	if s.MetricValid {
		s.Metric = motionStats(samples, func(k KinematicSample) Motion { return k.Metric })
	}
	return s
}

func motionStats(samples []KinematicSample, pick func(KinematicSample) Motion) MotionStats {
	var ms MotionStats

	speeds := make([]float64, 0, len(samples))
	accels := make([]float64, 0, len(samples))
	var lastX, lastY float64
	var haveLast bool

	for _, k := range samples {
		m := pick(k)
		if v, ok := m.Speed().Get(); ok {
			speeds = append(speeds, v)
		}
		if a, ok := m.AccelerationMagnitude().Get(); ok {
			accels = append(accels, a)
		}
		x, okx := m.X.Get()
		y, oky := m.Y.Get()
		if okx && oky {
			if haveLast {
				ms.PathLength += math.Hypot(x-lastX, y-lastY)
			}
			lastX, lastY, haveLast = x, y, true
		}
	}

	ms.SpeedSamples = len(speeds)
	if len(speeds) > 0 {
		ms.MaxSpeed = floats.Max(speeds)
		if len(speeds) > 1 {
			ms.MeanSpeed, ms.StdDevSpeed = stat.MeanStdDev(speeds, nil)
		} else {
			ms.MeanSpeed = speeds[0]
		}
	}
	if len(accels) > 0 {
		ms.MaxAccel = floats.Max(accels)
	}
	return ms
}
