package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsZeroed(t *testing.T) {
	r := New[uint8](4, 3)
	assert.Equal(t, 4, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.Len(t, r.Data(), 12)
	assert.Equal(t, uint8(0), r.At(3, 2))
}

func TestSplat(t *testing.T) {
	r := Splat(2, 2, uint32(0xFF00FF00))
	for _, v := range r.Data() {
		assert.Equal(t, uint32(0xFF00FF00), v)
	}
}

func TestAtSetRowMajor(t *testing.T) {
	r := New[int](3, 2)
	r.Set(2, 1, 7)
	assert.Equal(t, 7, r.At(2, 1))
	assert.Equal(t, 7, r.Data()[5])
}

func TestNewWithRejectsBadLength(t *testing.T) {
	require.Panics(t, func() { NewWith(3, 3, make([]byte, 8)) })
}

func TestMap(t *testing.T) {
	r := NewWith(2, 2, []uint8{1, 2, 3, 4})
	m := Map(r, func(v uint8) uint16 { return uint16(v) * 256 })
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, []uint16{256, 512, 768, 1024}, m.Data())
}
