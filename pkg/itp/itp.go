// Package itp reads and writes the ITP tiled/compressed bitmap container
// used by the Falcom engine family, across its three on-disk revisions:
// fixed numeric headers (V1), a 32-bit flag word (V2), and a FourCC chunk
// stream (V3). Pixel payloads may additionally be stored under block
// swizzle or Z-order permutations and under a byte-stream compression
// scheme provided by a compress.Bridge collaborator.
package itp

import (
	"github.com/Aureole-Suite/Cradle/pkg/compress"
	"github.com/Aureole-Suite/Cradle/pkg/raster"
)

// Itp is one fully decoded image: its format status plus the pixel data
// for every mip level.
type Itp struct {
	Status Status
	Data   ImageData
}

// Status carries the format-selector fields shared by all revisions.
type Status struct {
	Revision       Revision
	BaseFormat     BaseFormatType
	Compression    CompressionType
	PixelFormat    PixelFormatType
	PixelBitFormat PixelBitFormatType
	MultiPlane     MultiPlaneType
	Mipmap         MipmapType

	// UseAlpha is a genuine tri-state: nil means unspecified. The legacy
	// flag encoding cannot always express "unspecified", so re-encoding
	// may be lossy for this field.
	UseAlpha *bool
}

type Revision uint16

const (
	V1 Revision = 1 // fixed numeric headers 999..1006
	V2 Revision = 2 // flag word
	V3 Revision = 3 // "ITP\xFF" chunk stream
)

func (t Revision) valid() bool { return t >= V1 && t <= V3 }

type BaseFormatType uint16

const (
	BFTIndexed1 BaseFormatType = 0 // 256 colors
	BFTIndexed2 BaseFormatType = 1 // AFastMode2
	BFTIndexed3 BaseFormatType = 2 // CCPI
	BFTArgb16   BaseFormatType = 4
	BFTArgb32   BaseFormatType = 5
	BFTBc1      BaseFormatType = 6
	BFTBc2      BaseFormatType = 7
	BFTBc3      BaseFormatType = 8
	BFTBcAuto13 BaseFormatType = 9 // legacy engine alias, never written
	BFTBc7      BaseFormatType = 10
)

func (t BaseFormatType) valid() bool {
	return t <= BFTBc7 && t != 3
}

// IsIndexed reports whether the format carries a palette.
func (t BaseFormatType) IsIndexed() bool {
	return t == BFTIndexed1 || t == BFTIndexed2 || t == BFTIndexed3
}

type PixelBitFormatType uint16

const (
	PBFTIndexed    PixelBitFormatType = 0
	PBFTArgb16_1   PixelBitFormatType = 1
	PBFTArgb16_2   PixelBitFormatType = 2
	PBFTArgb16_3   PixelBitFormatType = 3
	PBFTArgb16Auto PixelBitFormatType = 4 // legacy engine alias, never written
	PBFTArgb32     PixelBitFormatType = 5
	PBFTCompressed PixelBitFormatType = 6
)

func (t PixelBitFormatType) valid() bool { return t <= PBFTCompressed }

type PixelFormatType uint16

const (
	PFTLinear PixelFormatType = 0
	PFTPfp1   PixelFormatType = 1 // 8×16 tiles
	PFTPfp2   PixelFormatType = 2 // 32×32 tiles
	PFTPfp3   PixelFormatType = 3 // morton
	PFTPfp4   PixelFormatType = 4 // morton rows nested in 8-wide strips
)

func (t PixelFormatType) valid() bool { return t <= PFTPfp4 }

type CompressionType uint16

const (
	CTNone CompressionType = 0
	CTBz1  CompressionType = 1
	CTBz2  CompressionType = 2
	CTC77  CompressionType = 3
)

func (t CompressionType) valid() bool { return t <= CTC77 }

type MultiPlaneType uint16

const MPTNone MultiPlaneType = 0

func (t MultiPlaneType) valid() bool { return t == MPTNone }

type MipmapType uint16

const (
	MTNone    MipmapType = 0
	MTMipmap1 MipmapType = 1
	MTMipmap2 MipmapType = 2
)

func (t MipmapType) valid() bool { return t <= MTMipmap2 }

// Block128 is one packed 128-bit BC2/BC3/BC7 block, little-endian: Lo
// holds the first eight bytes on disk.
type Block128 struct {
	Lo, Hi uint64
}

// Argb16Mode distinguishes the three 16-bit channel layouts.
type Argb16Mode uint8

const (
	Argb16Mode1 Argb16Mode = 1
	Argb16Mode2 Argb16Mode = 2
	Argb16Mode3 Argb16Mode = 3
)

// ImageData is the pixel payload for every mip level, largest first.
// For the Bc* variants the rasters hold packed 4×4 blocks, so raster
// dimensions are pixel dimensions divided by four.
type ImageData interface {
	isImageData()

	// Width and Height are the pixel dimensions of level 0.
	Width() int
	Height() int

	// LevelCount is the number of mip levels.
	LevelCount() int
}

type Indexed struct {
	Palette Palette
	Levels  []raster.Raster[uint8]
}

type Argb16 struct {
	Mode   Argb16Mode
	Levels []raster.Raster[uint16]
}

type Argb32 struct {
	Levels []raster.Raster[uint32]
}

type Bc1 struct {
	Levels []raster.Raster[uint64]
}

type Bc2 struct {
	Levels []raster.Raster[Block128]
}

type Bc3 struct {
	Levels []raster.Raster[Block128]
}

type Bc7 struct {
	Levels []raster.Raster[Block128]
}

func (Indexed) isImageData() {}
func (Argb16) isImageData()  {}
func (Argb32) isImageData()  {}
func (Bc1) isImageData()     {}
func (Bc2) isImageData()     {}
func (Bc3) isImageData()     {}
func (Bc7) isImageData()     {}

func levelDims[T any](levels []raster.Raster[T], scale int) (int, int) {
	if len(levels) == 0 {
		return 0, 0
	}
	return levels[0].Width() * scale, levels[0].Height() * scale
}

func (d Indexed) Width() int  { w, _ := levelDims(d.Levels, 1); return w }
func (d Indexed) Height() int { _, h := levelDims(d.Levels, 1); return h }
func (d Argb16) Width() int   { w, _ := levelDims(d.Levels, 1); return w }
func (d Argb16) Height() int  { _, h := levelDims(d.Levels, 1); return h }
func (d Argb32) Width() int   { w, _ := levelDims(d.Levels, 1); return w }
func (d Argb32) Height() int  { _, h := levelDims(d.Levels, 1); return h }
func (d Bc1) Width() int      { w, _ := levelDims(d.Levels, 4); return w }
func (d Bc1) Height() int     { _, h := levelDims(d.Levels, 4); return h }
func (d Bc2) Width() int      { w, _ := levelDims(d.Levels, 4); return w }
func (d Bc2) Height() int     { _, h := levelDims(d.Levels, 4); return h }
func (d Bc3) Width() int      { w, _ := levelDims(d.Levels, 4); return w }
func (d Bc3) Height() int     { _, h := levelDims(d.Levels, 4); return h }
func (d Bc7) Width() int      { w, _ := levelDims(d.Levels, 4); return w }
func (d Bc7) Height() int     { _, h := levelDims(d.Levels, 4); return h }

func (d Indexed) LevelCount() int { return len(d.Levels) }
func (d Argb16) LevelCount() int  { return len(d.Levels) }
func (d Argb32) LevelCount() int  { return len(d.Levels) }
func (d Bc1) LevelCount() int     { return len(d.Levels) }
func (d Bc2) LevelCount() int     { return len(d.Levels) }
func (d Bc3) LevelCount() int     { return len(d.Levels) }
func (d Bc7) LevelCount() int     { return len(d.Levels) }

// Palette is either embedded in the file or a reference to an external
// palette file. The external path is an opaque byte string; the codec
// never touches the file system.
type Palette interface{ isPalette() }

// Embedded is an ordered sequence of up to 256 ARGB32 colors.
type Embedded []uint32

// External is the path of an external palette file.
type External string

func (Embedded) isPalette() {}
func (External) isPalette() {}

// New builds an Itp for the given revision, deriving a default Status
// from the shape of data. The result is ready to hand to a Codec.
func New(rev Revision, data ImageData) (*Itp, error) {
	st := Status{
		Revision:    rev,
		Compression: CTNone,
		PixelFormat: PFTLinear,
		MultiPlane:  MPTNone,
		Mipmap:      MTNone,
	}
	switch d := data.(type) {
	case Indexed:
		st.BaseFormat, st.PixelBitFormat = BFTIndexed1, PBFTIndexed
		if d.Palette == nil {
			return nil, ErrPaletteMissing
		}
	case Argb16:
		st.BaseFormat = BFTArgb16
		switch d.Mode {
		case Argb16Mode1:
			st.PixelBitFormat = PBFTArgb16_1
		case Argb16Mode2:
			st.PixelBitFormat = PBFTArgb16_2
		case Argb16Mode3:
			st.PixelBitFormat = PBFTArgb16_3
		default:
			return nil, &InvalidError{Field: "argb16 mode", Value: uint32(d.Mode)}
		}
	case Argb32:
		st.BaseFormat, st.PixelBitFormat = BFTArgb32, PBFTArgb32
	case Bc1:
		st.BaseFormat, st.PixelBitFormat = BFTBc1, PBFTCompressed
	case Bc2:
		st.BaseFormat, st.PixelBitFormat = BFTBc2, PBFTCompressed
	case Bc3:
		st.BaseFormat, st.PixelBitFormat = BFTBc3, PBFTCompressed
	case Bc7:
		st.BaseFormat, st.PixelBitFormat = BFTBc7, PBFTCompressed
	default:
		return nil, &InvalidError{Field: "image data", Value: 0}
	}
	if data.LevelCount() > 1 {
		st.Mipmap = MTMipmap1
	}
	return &Itp{Status: st, Data: data}, nil
}

// newImageData builds the empty ImageData variant for a status, or fails
// with a PixelFormatError for an illegal pairing.
func newImageData(st *Status) (ImageData, error) {
	switch {
	case st.BaseFormat.IsIndexed() && st.PixelBitFormat == PBFTIndexed:
		return Indexed{Palette: Embedded(nil)}, nil
	case st.BaseFormat == BFTArgb16 && st.PixelBitFormat == PBFTArgb16_1:
		return Argb16{Mode: Argb16Mode1}, nil
	case st.BaseFormat == BFTArgb16 && st.PixelBitFormat == PBFTArgb16_2:
		return Argb16{Mode: Argb16Mode2}, nil
	case st.BaseFormat == BFTArgb16 && st.PixelBitFormat == PBFTArgb16_3:
		return Argb16{Mode: Argb16Mode3}, nil
	case st.BaseFormat == BFTArgb32 && st.PixelBitFormat == PBFTArgb32:
		return Argb32{}, nil
	case st.BaseFormat == BFTBc1 && st.PixelBitFormat == PBFTCompressed:
		return Bc1{}, nil
	case st.BaseFormat == BFTBc2 && st.PixelBitFormat == PBFTCompressed:
		return Bc2{}, nil
	case st.BaseFormat == BFTBc3 && st.PixelBitFormat == PBFTCompressed:
		return Bc3{}, nil
	case st.BaseFormat == BFTBc7 && st.PixelBitFormat == PBFTCompressed:
		return Bc7{}, nil
	default:
		return nil, &PixelFormatError{Base: st.BaseFormat, PixelBit: st.PixelBitFormat}
	}
}

// Codec reads and writes ITP images. The zero value handles uncompressed
// files; files using a CompressionType other than None need a Bridge.
type Codec struct {
	Bridge compress.Bridge
}

// Default is a bridge-less codec for uncompressed files.
var Default = &Codec{}

// Read parses a complete ITP image using the default codec.
func Read(data []byte) (*Itp, error) { return Default.Read(data) }

// Write serializes an ITP image using the default codec.
func Write(itp *Itp) ([]byte, error) { return Default.Write(itp) }
