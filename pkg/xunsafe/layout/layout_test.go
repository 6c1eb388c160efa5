package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gerald0057/small-mem/pkg/xunsafe/layout"
)

func TestRoundUp(t *testing.T) {
	assert.Equal(t, 16, layout.RoundUp(13, 4))
	assert.Equal(t, 8, layout.RoundUp(8, 8))
	assert.Equal(t, 0, layout.RoundUp(0, 8))
}

func TestRoundDown(t *testing.T) {
	assert.Equal(t, 12, layout.RoundDown(13, 4))
	assert.Equal(t, 8, layout.RoundDown(8, 8))
	assert.Equal(t, 0, layout.RoundDown(7, 8))
}

func TestPadding(t *testing.T) {
	assert.Equal(t, 3, layout.Padding(13, 4))
	assert.Equal(t, 0, layout.Padding(16, 8))
}

func TestSizeAlign(t *testing.T) {
	assert.Equal(t, 8, layout.Size[uint64]())
	assert.Equal(t, 1, layout.Size[byte]())
	assert.Equal(t, 1, layout.Align[byte]())

	l := layout.Of[uint64]()
	assert.Equal(t, l.Size, 8)
	assert.Equal(t, l.Align, layout.Align[uint64]())
}
