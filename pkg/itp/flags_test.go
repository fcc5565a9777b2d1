package itp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGen1Table checks both directions of the fixed-header table agree.
func TestGen1Table(t *testing.T) {
	for _, g := range gen1Codes {
		flags, ok := Gen1ToFlags(g.code)
		require.True(t, ok)
		code, ok := FlagsToGen1(flags)
		require.True(t, ok)
		assert.Equal(t, g.code, code)
	}

	_, ok := Gen1ToFlags(998)
	assert.False(t, ok)
	_, ok = FlagsToGen1(0)
	assert.False(t, ok)
}

func TestStatusFromFlagsIndexed(t *testing.T) {
	flags, _ := Gen1ToFlags(1000)
	st, err := StatusFromFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, V1, st.Revision)
	assert.Equal(t, BFTIndexed1, st.BaseFormat)
	assert.Equal(t, PBFTIndexed, st.PixelBitFormat)
	assert.Equal(t, CTNone, st.Compression)
	assert.Equal(t, PFTLinear, st.PixelFormat)
	assert.Nil(t, st.UseAlpha)
}

func TestStatusFromFlagsIndexed2(t *testing.T) {
	flags, _ := Gen1ToFlags(1005)
	st, err := StatusFromFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, BFTIndexed2, st.BaseFormat)
	assert.Equal(t, CTBz1, st.Compression)
	assert.Equal(t, PFTPfp1, st.PixelFormat)
}

// TestStatusFromFlagsNoCompressionBit checks that Indexed3 flag words,
// which carry no compression bit at all, decode with compression None;
// the CCPI body overrides it with its own flag.
func TestStatusFromFlagsNoCompressionBit(t *testing.T) {
	flags, _ := Gen1ToFlags(1006)
	st, err := StatusFromFlags(flags)
	require.NoError(t, err)
	assert.Equal(t, BFTIndexed3, st.BaseFormat)
	assert.Equal(t, CTNone, st.Compression)
}

func TestStatusFromFlagsAlpha(t *testing.T) {
	base := flagV2 | 1<<4 | 1<<20 | flagNoComp | 1<<11

	st, err := StatusFromFlags(base | flagAlphaOn)
	require.NoError(t, err)
	require.NotNil(t, st.UseAlpha)
	assert.True(t, *st.UseAlpha)

	st, err = StatusFromFlags(base | flagAlphaOff)
	require.NoError(t, err)
	require.NotNil(t, st.UseAlpha)
	assert.False(t, *st.UseAlpha)
}

func TestStatusFromFlagsMissing(t *testing.T) {
	// No base format bit at all.
	var mf *MissingFlagError
	_, err := StatusFromFlags(flagV2 | flagNoComp | 1<<11)
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "base format type", mf.What)

	// Indexed marker without a sub-format bit.
	_, err = StatusFromFlags(flagV2 | flagIndexed | flagNoComp | 1<<11)
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "indexed type", mf.What)

	// No pixel format bit.
	_, err = StatusFromFlags(flagV2 | 1<<1 | flagNoComp)
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "pixel format", mf.What)
}

func TestStatusFromFlagsExtra(t *testing.T) {
	var ef *ExtraFlagsError
	_, err := StatusFromFlags(flagV2 | 1<<1 | flagNoComp | 1<<11 | 1<<5)
	require.ErrorAs(t, err, &ef)
	assert.Equal(t, uint32(1<<5), ef.Flags)
}

// TestStatusToFlagsRoundtrip checks the encode side reproduces the flag
// words it decodes, for the fixed headers whose words it can express.
func TestStatusToFlagsRoundtrip(t *testing.T) {
	for _, code := range []uint32{1000, 1002, 1004, 1005, 1006} {
		flags, _ := Gen1ToFlags(code)
		st, err := StatusFromFlags(flags)
		require.NoError(t, err)
		got, ok := StatusToFlags(&st)
		require.True(t, ok, "code %d", code)
		assert.Equal(t, flags, got, "code %d", code)
	}
}

// TestStatusToFlagsArgb16Gen1 pins a known upstream asymmetry: the fixed
// Argb16 headers decorate their flag words with bit 20, which the encode
// side never sets, so those statuses have no fixed-header form.
func TestStatusToFlagsArgb16Gen1(t *testing.T) {
	for _, code := range []uint32{999, 1001, 1003} {
		flags, _ := Gen1ToFlags(code)
		st, err := StatusFromFlags(flags)
		require.NoError(t, err)
		got, ok := StatusToFlags(&st)
		require.True(t, ok)
		assert.Equal(t, flags&^(1<<20), got)
		_, ok = FlagsToGen1(got)
		assert.False(t, ok)
	}
}

func TestStatusToFlagsUnrepresentable(t *testing.T) {
	// Revision 3 has no flag word.
	st := Status{Revision: V3, BaseFormat: BFTArgb32, PixelBitFormat: PBFTArgb32}
	_, ok := StatusToFlags(&st)
	assert.False(t, ok)

	// Bc7 has no flag bit.
	st = Status{Revision: V2, BaseFormat: BFTBc7, PixelBitFormat: PBFTCompressed}
	_, ok = StatusToFlags(&st)
	assert.False(t, ok)

	// C77 has no flag bit either.
	st = Status{Revision: V2, BaseFormat: BFTArgb32, PixelBitFormat: PBFTArgb32, Compression: CTC77}
	_, ok = StatusToFlags(&st)
	assert.False(t, ok)

	// Mipmapped images need the revision 3 IMIP chunk.
	st = Status{Revision: V2, BaseFormat: BFTArgb32, PixelBitFormat: PBFTArgb32, Mipmap: MTMipmap1}
	_, ok = StatusToFlags(&st)
	assert.False(t, ok)
}
