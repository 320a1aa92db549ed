package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"segmentation", StrategySegmentation, false},
		{"Blob", StrategySegmentation, false},
		{"correlation", StrategyCorrelation, false},
		{" tracker ", StrategyCorrelation, false},
		{"optical-flow", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			// round trip through String
			again, err := ParseStrategy(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestParseTrackerKind(t *testing.T) {
	for _, s := range []string{"csrt", "KCF", "mil"} {
		_, err := ParseTrackerKind(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseTrackerKind("goturn")
	assert.Error(t, err)
}

func TestValidateSeed(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)
	tests := []struct {
		name   string
		region image.Rectangle
		ok     bool
	}{
		{"inside", image.Rect(10, 10, 30, 30), true},
		{"full frame", bounds, true},
		{"empty", image.Rect(10, 10, 10, 30), false},
		{"zero", image.Rectangle{}, false},
		{"overhangs right", image.Rect(90, 10, 110, 30), false},
		{"negative origin", image.Rect(-5, 0, 10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeed(tt.region, bounds)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSeed)
			}
		})
	}
}

func TestBoxCenter(t *testing.T) {
	assert.Equal(t, Point{X: 15, Y: 25}, BoxCenter(image.Rect(10, 20, 20, 30)))
	assert.Equal(t, Point{X: 10.5, Y: 0.5}, BoxCenter(image.Rect(10, 0, 11, 1)))
}
