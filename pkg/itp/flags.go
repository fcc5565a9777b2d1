package itp

// Legacy (revision 1–2) files describe their format with a 32-bit flag
// word. Both directions of the mapping share the ordered tables below;
// decoding checks each table top to bottom and takes the first set bit,
// encoding sets every bit the matching row lists.
//
// Bit layout: 0 indexed marker, 20/21/22 indexed sub-format, 3/1/2 the
// three Argb16 layouts, 4 Argb32, 24/25/26 Bc1-3, 15-17 compression,
// 10-14 pixel permutation, 28/29 alpha, 30 revision 2.

type formatBits struct {
	bits     uint32
	base     BaseFormatType
	pixelBit PixelBitFormatType
}

// indexedFormats is consulted only when bit 0 is set.
var indexedFormats = []formatBits{
	{bits: 1 << 20, base: BFTIndexed1, pixelBit: PBFTIndexed},
	{bits: 1 << 21, base: BFTIndexed2, pixelBit: PBFTIndexed},
	{bits: 1 << 22, base: BFTIndexed3, pixelBit: PBFTIndexed},
}

var directFormats = []formatBits{
	{bits: 1 << 3, base: BFTArgb16, pixelBit: PBFTArgb16_1},
	{bits: 1 << 1, base: BFTArgb16, pixelBit: PBFTArgb16_2},
	{bits: 1 << 2, base: BFTArgb16, pixelBit: PBFTArgb16_3},
	{bits: 1<<4 | 1<<20, base: BFTArgb32, pixelBit: PBFTArgb32},
	{bits: 1 << 24, base: BFTBc1, pixelBit: PBFTCompressed},
	{bits: 1 << 25, base: BFTBc2, pixelBit: PBFTCompressed},
	{bits: 1 << 26, base: BFTBc3, pixelBit: PBFTCompressed},
}

var pixelFormatBits = []struct {
	bits uint32
	pf   PixelFormatType
}{
	{1 << 10, PFTPfp1},
	{1 << 11, PFTLinear},
	{1 << 12, PFTPfp2},
	{1 << 13, PFTPfp3},
	{1 << 14, PFTPfp4},
}

// unusedFlagBits must all be clear or the word is rejected.
const unusedFlagBits uint32 = 1<<5 | 1<<6 | 1<<7 | 1<<8 | 1<<9 |
	1<<18 | 1<<19 | 1<<23 | 1<<27 | 1<<31

const (
	flagIndexed  uint32 = 1 << 0
	flagBzip     uint32 = 1 << 16
	flagBzipMode uint32 = 1 << 17
	flagNoComp   uint32 = 1 << 15
	flagAlphaOn  uint32 = 1 << 28
	flagAlphaOff uint32 = 1 << 29
	flagV2       uint32 = 1 << 30
)

// gen1Codes maps the six fixed pre-flag header values onto their implied
// flag words. The comments give base format, compression, permutation.
var gen1Codes = []struct {
	code  uint32
	flags uint32
}{
	{999, 0x108802},  // Argb16_2, None, Linear
	{1000, 0x108801}, // Indexed1, None, Linear
	{1001, 0x110802}, // Argb16_2, Bz_1, Linear
	{1002, 0x110801}, // Indexed1, Bz_1, Linear
	{1003, 0x110402}, // Argb16_2, Bz_1, Pfp_1
	{1004, 0x110401}, // Indexed1, Bz_1, Pfp_1
	{1005, 0x210401}, // Indexed2, Bz_1, Pfp_1
	{1006, 0x400401}, // Indexed3, Ccpi, Pfp_1
}

// Gen1ToFlags resolves a fixed pre-flag header value.
func Gen1ToFlags(code uint32) (uint32, bool) {
	for _, g := range gen1Codes {
		if g.code == code {
			return g.flags, true
		}
	}
	return 0, false
}

// FlagsToGen1 finds the fixed header value for a flag word, if one
// exists. Writers targeting revision 1 must use this before falling back
// to a raw flag word.
func FlagsToGen1(flags uint32) (uint32, bool) {
	for _, g := range gen1Codes {
		if g.flags == flags {
			return g.code, true
		}
	}
	return 0, false
}

// StatusFromFlags decodes a legacy flag word. It fails with a
// MissingFlagError when a required field has no bit set, and with an
// ExtraFlagsError when an unrecognized bit is set.
func StatusFromFlags(flags uint32) (Status, error) {
	var st Status

	st.Revision = V1
	if flags&flagV2 != 0 {
		st.Revision = V2
	}

	found := false
	if flags&flagIndexed != 0 {
		for _, f := range indexedFormats {
			if flags&f.bits == f.bits {
				st.BaseFormat, st.PixelBitFormat = f.base, f.pixelBit
				found = true
				break
			}
		}
		if !found {
			return Status{}, &MissingFlagError{What: "indexed type"}
		}
	} else {
		for _, f := range directFormats {
			// Argb32 carries a decorative extra bit; the low bit of
			// each row is what identifies it.
			if flags&(f.bits&^(1<<20)) != 0 {
				st.BaseFormat, st.PixelBitFormat = f.base, f.pixelBit
				found = true
				break
			}
		}
		if !found {
			return Status{}, &MissingFlagError{What: "base format type"}
		}
	}

	switch {
	case flags&flagNoComp != 0:
		st.Compression = CTNone
	case flags&flagBzip != 0:
		if flags&flagBzipMode != 0 {
			st.Compression = CTBz2
		} else {
			st.Compression = CTBz1
		}
	default:
		st.Compression = CTNone // ccpi carries its own compression flag
	}

	found = false
	for _, f := range pixelFormatBits {
		if flags&f.bits != 0 {
			st.PixelFormat = f.pf
			found = true
			break
		}
	}
	if !found {
		return Status{}, &MissingFlagError{What: "pixel format"}
	}

	st.MultiPlane = MPTNone
	st.Mipmap = MTNone

	switch {
	case flags&flagAlphaOn != 0:
		st.UseAlpha = boolPtr(true)
	case flags&flagAlphaOff != 0:
		st.UseAlpha = boolPtr(false)
	}

	if extra := flags & unusedFlagBits; extra != 0 {
		return Status{}, &ExtraFlagsError{Flags: extra}
	}

	return st, nil
}

// StatusToFlags encodes a status as a legacy flag word. ok is false when
// the status cannot be expressed in the flag scheme (revision 3, Bc7,
// C77 compression, mipmaps).
func StatusToFlags(st *Status) (flags uint32, ok bool) {
	switch st.Revision {
	case V1:
	case V2:
		flags |= flagV2
	default:
		return 0, false
	}

	found := false
	if st.BaseFormat.IsIndexed() {
		for _, f := range indexedFormats {
			if f.base == st.BaseFormat && f.pixelBit == st.PixelBitFormat {
				flags |= flagIndexed | f.bits
				found = true
				break
			}
		}
	} else {
		for _, f := range directFormats {
			if f.base == st.BaseFormat && f.pixelBit == st.PixelBitFormat {
				flags |= f.bits
				found = true
				break
			}
		}
	}
	if !found {
		return 0, false
	}

	if st.BaseFormat != BFTIndexed3 {
		switch st.Compression {
		case CTNone:
			flags |= flagNoComp
		case CTBz1:
			flags |= flagBzip
		case CTBz2:
			flags |= flagBzip | flagBzipMode
		default:
			return 0, false
		}
	}

	found = false
	for _, f := range pixelFormatBits {
		if f.pf == st.PixelFormat {
			flags |= f.bits
			found = true
			break
		}
	}
	if !found {
		return 0, false
	}

	if st.MultiPlane != MPTNone || st.Mipmap != MTNone {
		return 0, false
	}

	if st.UseAlpha != nil {
		if *st.UseAlpha {
			flags |= flagAlphaOn
		} else {
			flags |= flagAlphaOff
		}
	}

	return flags, true
}

func boolPtr(v bool) *bool { return &v }
