package itp

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRejectsOtherFormats(t *testing.T) {
	_, err := Default.Read([]byte("\x89PNG\r\n\x1a\n"))
	assert.ErrorIs(t, err, ErrNotItp)

	_, err = Default.Read([]byte("DDS |124 bytes of header"))
	assert.ErrorIs(t, err, ErrNotItp)

	// Neither a fixed header value nor a flag word with the v2 bit.
	_, err = Default.Read([]byte{5, 0, 0, 0})
	assert.ErrorIs(t, err, ErrNotItp)
}

func TestReadTruncated(t *testing.T) {
	_, err := Default.Read([]byte{1})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	f := newWriter()
	f.u32(1000)
	f.u32(16) // width, then nothing
	_, err = Default.Read(f.bytes())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadBadChunk(t *testing.T) {
	f := newWriter()
	f.str(magicITP)
	f.str("IBAD")
	f.u32(0)

	var bc *BadChunkError
	_, err := Default.Read(f.bytes())
	require.ErrorAs(t, err, &bc)
	assert.Equal(t, "IBAD", bc.FourCC)
}

func TestReadDataBeforeHeader(t *testing.T) {
	f := newWriter()
	f.str(magicITP)
	f.str("IDAT")
	f.u32(8)
	f.u32(8)
	f.u16(0)
	f.u16(0)

	_, err := Default.Read(f.bytes())
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadMissingHeader(t *testing.T) {
	f := newWriter()
	f.str(magicITP)
	f.str("IEND")
	f.u32(0)

	_, err := Default.Read(f.bytes())
	assert.ErrorIs(t, err, ErrNoHeader)
}

// rev3Header emits magic plus an IHDR chunk for a width×height Argb32
// image declaring the given total file size.
func rev3Header(width, height, fileSize int) *writer {
	f := newWriter()
	f.str(magicITP)
	f.str("IHDR")
	f.u32(32)
	f.u32(32)
	f.u32(uint32(width))
	f.u32(uint32(height))
	f.u32(uint32(fileSize))
	f.u16(uint16(V3))
	f.u16(uint16(BFTArgb32))
	f.u16(uint16(PFTLinear))
	f.u16(uint16(PBFTArgb32))
	f.u16(uint16(CTNone))
	f.u16(uint16(MPTNone))
	f.u32(0)
	return f
}

// TestReadWrongMips feeds a file whose IMIP chunk promises more levels
// than its IDAT chunks deliver.
func TestReadWrongMips(t *testing.T) {
	// magic + IHDR + IMIP + one IDAT + IEND
	total := 4 + 40 + 20 + (8 + 8 + 4*4*4) + 8
	f := rev3Header(4, 4, total)
	f.str("IMIP")
	f.u32(12)
	f.u16(uint16(MTMipmap1))
	f.u16(1) // one extra level beyond the base
	f.u32(0)
	f.str("IDAT")
	f.u32(8)
	f.u32(8)
	f.u16(0)
	f.u16(0)
	for i := 0; i < 16; i++ {
		f.u32(uint32(i))
	}
	f.str("IEND")
	f.u32(0)

	var wm *WrongMipsError
	_, err := Default.Read(f.bytes())
	require.ErrorAs(t, err, &wm)
	assert.Equal(t, 2, wm.Expected)
	assert.Equal(t, 1, wm.Got)
}

// TestReadFileSizeMismatch checks the IHDR total-size field is enforced.
func TestReadFileSizeMismatch(t *testing.T) {
	f := rev3Header(4, 4, 9999)
	f.str("IDAT")
	f.u32(8)
	f.u32(8)
	f.u16(0)
	f.u16(0)
	for i := 0; i < 16; i++ {
		f.u32(uint32(i))
	}
	f.str("IEND")
	f.u32(0)

	var ws *WrongSizeError
	_, err := Default.Read(f.bytes())
	require.ErrorAs(t, err, &ws)
	assert.Equal(t, 9999, ws.Expected)
}

// TestReadIHASDiscarded checks the opaque hash chunk is accepted and
// thrown away.
func TestReadIHASDiscarded(t *testing.T) {
	total := 4 + 40 + 24 + (8 + 8 + 4*4*4) + 8
	f := rev3Header(4, 4, total)
	f.str("IHAS")
	f.u32(16)
	f.u32(16)
	f.u32(0)
	f.u32(0xDEADBEEF)
	f.u32(0xCAFEBABE)
	f.str("IDAT")
	f.u32(8)
	f.u32(8)
	f.u16(0)
	f.u16(0)
	for i := 0; i < 16; i++ {
		f.u32(uint32(i))
	}
	f.str("IEND")
	f.u32(0)

	img, err := Default.Read(f.bytes())
	require.NoError(t, err)
	assert.Equal(t, 4, img.Data.Width())
}

func TestReadIEXTUnsupported(t *testing.T) {
	f := rev3Header(4, 4, 0)
	f.str("IEXT")
	f.u32(0)

	var ue *UnsupportedError
	_, err := Default.Read(f.bytes())
	require.ErrorAs(t, err, &ue)
}

// TestReadIndexedWithoutPalette checks an indexed revision 3 stream must
// carry an IPAL chunk.
func TestReadIndexedWithoutPalette(t *testing.T) {
	total := 4 + 40 + (8 + 8 + 16*8) + 8
	f := newWriter()
	f.str(magicITP)
	f.str("IHDR")
	f.u32(32)
	f.u32(32)
	f.u32(16)
	f.u32(8)
	f.u32(uint32(total))
	f.u16(uint16(V3))
	f.u16(uint16(BFTIndexed1))
	f.u16(uint16(PFTLinear))
	f.u16(uint16(PBFTIndexed))
	f.u16(uint16(CTNone))
	f.u16(uint16(MPTNone))
	f.u32(0)
	f.str("IDAT")
	f.u32(8)
	f.u32(8)
	f.u16(0)
	f.u16(0)
	f.raw(make([]byte, 16*8))
	f.str("IEND")
	f.u32(0)

	_, err := Default.Read(f.bytes())
	assert.ErrorIs(t, err, ErrPaletteMissing)
}

// TestReadBadEnum checks out-of-range IHDR enum fields are rejected with
// the field name.
func TestReadBadEnum(t *testing.T) {
	f := newWriter()
	f.str(magicITP)
	f.str("IHDR")
	f.u32(32)
	f.u32(32)
	f.u32(4)
	f.u32(4)
	f.u32(0)
	f.u16(uint16(V3))
	f.u16(99) // base format
	f.u16(uint16(PFTLinear))
	f.u16(uint16(PBFTArgb32))
	f.u16(uint16(CTNone))
	f.u16(uint16(MPTNone))
	f.u32(0)

	var ie *InvalidError
	_, err := Default.Read(f.bytes())
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "IHDR.base_format", ie.Field)
}

// TestReadBadPixelFormatPairing checks an IHDR whose base and pixel bit
// formats do not pair up is rejected.
func TestReadBadPixelFormatPairing(t *testing.T) {
	f := newWriter()
	f.str(magicITP)
	f.str("IHDR")
	f.u32(32)
	f.u32(32)
	f.u32(4)
	f.u32(4)
	f.u32(0)
	f.u16(uint16(V3))
	f.u16(uint16(BFTArgb32))
	f.u16(uint16(PFTLinear))
	f.u16(uint16(PBFTIndexed))
	f.u16(uint16(CTNone))
	f.u16(uint16(MPTNone))
	f.u32(0)

	var pe *PixelFormatError
	_, err := Default.Read(f.bytes())
	require.ErrorAs(t, err, &pe)
}
