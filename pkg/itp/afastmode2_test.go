package itp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aureole-Suite/Cradle/pkg/raster"
)

// TestAFastMode2Roundtrip covers multi-color tiles, a single-color
// non-zero tile (whose local palette is padded to two entries) and an
// all-zero tile (stored as nothing at all).
func TestAFastMode2Roundtrip(t *testing.T) {
	w, h := 32, 16 // 2×2 tiles of 16×8
	pixels := make([]uint8, w*h)
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			pixels[y*w+x] = uint8((x + y) % 5) // multi-color tile
		}
		for x := 16; x < 32; x++ {
			pixels[y*w+x] = 9 // single-color tile
		}
	}
	for y := 8; y < 16; y++ {
		for x := 16; x < 32; x++ {
			pixels[y*w+x] = uint8(x % 3) // bottom-left tile stays zero
		}
	}

	r := raster.NewWith(w, h, pixels)
	encoded, err := writeAFastMode2(r, w, h)
	require.NoError(t, err)

	got, err := aFastMode2(newReader(encoded), w, h)
	require.NoError(t, err)
	assert.Equal(t, pixels, got)
}

func TestAFastMode2TooManyColors(t *testing.T) {
	w, h := 16, 8
	pixels := make([]uint8, w*h)
	for i := range pixels {
		pixels[i] = uint8(i % 17)
	}
	// Two tiles so the count array nibble-packs; only the first is bad.
	wide := make([]uint8, 2*w*h)
	copy(wide, pixels)
	r := raster.NewWith(2*w, h, wide)

	var ce *AFastMode2ColorsError
	_, err := writeAFastMode2(r, 2*w, h)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 17, ce.Colors)
}

func TestAFastMode2BadDimensions(t *testing.T) {
	var de *DimensionError
	_, err := writeAFastMode2(raster.New[uint8](10, 8), 10, 8)
	assert.ErrorAs(t, err, &de)

	// A 16×8 image is one tile; the nibble-packed count array cannot
	// hold an odd number of tiles.
	_, err = writeAFastMode2(raster.New[uint8](16, 8), 16, 8)
	assert.ErrorAs(t, err, &de)

	_, err = aFastMode2(newReader(nil), 10, 8)
	assert.ErrorAs(t, err, &de)
}

// TestAFastMode2ToggleRuns decodes a hand-built stream using the
// alternating skip/fill sub-format (mode byte != 0, sub-selector 1).
func TestAFastMode2ToggleRuns(t *testing.T) {
	f := newWriter()
	f.u8(0x10)        // tile 0 stores two local colors, tile 1 is skipped
	f.raw([]byte{7, 9}) // shared color pool
	f.u8(2)           // mode byte: anything past 1 selects a sub-format
	f.u8(1)           // sub-format 1, toggle runs
	// Lane 0 (color 7): skip 0, fill 4 cells at 0.
	f.raw([]byte{0, 3, 0xFF})
	// Lane 1 (color 9): skip 2, fill 1 cell at 2.
	f.raw([]byte{2, 0, 0xFF})
	// Lanes 2-15 are empty.
	for j := 2; j < 16; j++ {
		f.u8(0xFF)
	}

	got, err := aFastMode2(newReader(f.bytes()), 16, 16)
	require.NoError(t, err)

	want := make([]uint8, 256)
	want[0], want[1], want[3] = 7, 7, 7
	want[2] = 9
	assert.Equal(t, want, got)
}

func TestAFastMode2RejectsSubFormats(t *testing.T) {
	f := newWriter()
	f.u8(0x10)
	f.raw([]byte{1, 2})
	f.u8(1) // mode 1 is not implemented anywhere in the wild

	var ue *UnsupportedError
	_, err := aFastMode2(newReader(f.bytes()), 16, 16)
	assert.ErrorAs(t, err, &ue)
}
