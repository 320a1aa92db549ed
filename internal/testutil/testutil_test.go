package testutil

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestFrame(t *testing.T) {
	m := Frame(t, 64, 48, BallAt(32, 24, 5))
	require.False(t, m.Empty())
	assert.Equal(t, 64, m.Cols())
	assert.Equal(t, 48, m.Rows())
	assert.Equal(t, gocv.MatTypeCV8UC3, m.Type())

	// BGR order: yellow is (0, 255, 255).
	assert.Equal(t, uint8(0), m.GetVecbAt(24, 32)[0])
	assert.Equal(t, uint8(255), m.GetVecbAt(24, 32)[1])
	assert.Equal(t, uint8(255), m.GetVecbAt(24, 32)[2])
	assert.Equal(t, uint8(20), m.GetVecbAt(0, 0)[2])
}

func TestSequence(t *testing.T) {
	frames := Sequence(t, 32, 32, 3, []*image.Point{Pt(10, 10), nil, Pt(20, 20)})
	require.Len(t, frames, 3)
	assert.Equal(t, uint8(255), frames[0].GetVecbAt(10, 10)[2])
	assert.Equal(t, uint8(20), frames[1].GetVecbAt(10, 10)[2])
	assert.Equal(t, uint8(255), frames[2].GetVecbAt(20, 20)[2])
}
