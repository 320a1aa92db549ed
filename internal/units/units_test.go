package units

import (
	"math"
	"testing"
)

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		units    string
		expected float64
	}{
		{"10 m/s to mph", 10.0, MPH, 22.3694},
		{"10 m/s to kmph", 10.0, KMPH, 36.0},
		{"10 m/s to kph", 10.0, KPH, 36.0},
		{"10 m/s to mps", 10.0, MPS, 10.0},
		{"unknown units default to mps", 10.0, "unknown", 10.0},
		{"0 m/s to mph", 0.0, MPH, 0.0},
		{"fastball 40 m/s to mph", 40.0, MPH, 89.477},
		{"free kick 30 m/s to kmph", 30.0, KMPH, 108.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertSpeed(tt.speedMPS, tt.units)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("ConvertSpeed(%f, %s) = %f, want %f", tt.speedMPS, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	for _, u := range ValidUnits {
		if !IsValid(u) {
			t.Errorf("IsValid(%q) = false", u)
		}
	}
	for _, u := range []string{"", "MPH", "knots", "m/s"} {
		if IsValid(u) {
			t.Errorf("IsValid(%q) = true", u)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"MPH", MPH, false},
		{" kmph ", KMPH, false},
		{"mps", MPS, false},
		{"furlongs", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSpeedLabel(t *testing.T) {
	if got := SpeedLabel(KPH); got != "km/h" {
		t.Errorf("SpeedLabel(kph) = %q", got)
	}
	if got := SpeedLabel(MPS); got != "m/s" {
		t.Errorf("SpeedLabel(mps) = %q", got)
	}
}

func TestAccelerationInG(t *testing.T) {
	if got := AccelerationInG(StandardGravity); math.Abs(got-1) > 1e-12 {
		t.Errorf("AccelerationInG(g) = %v, want 1", got)
	}
}
