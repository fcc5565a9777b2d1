package itp

import (
	"encoding/binary"
	"fmt"

	"github.com/Aureole-Suite/Cradle/pkg/raster"
)

const magicITP = "ITP\xFF"

// Magics of formats we knowingly reject.
const (
	magicPNG uint32 = 0x474E5089 // "\x89PNG"
	magicDDS uint32 = 0x20534444 // "DDS "
)

// Read parses a complete ITP image. The revision is detected from the
// first four bytes: the "ITP\xFF" FourCC selects the revision-3 chunk
// stream, a fixed numeric code or a flag word selects the flat legacy
// layout.
func (c *Codec) Read(data []byte) (*Itp, error) {
	f := newReader(data)

	head, err := f.u32()
	if err != nil {
		return nil, err
	}

	var flags uint32
	switch {
	case head == magicPNG || head == magicDDS:
		return nil, ErrNotItp
	case head == binary.LittleEndian.Uint32([]byte(magicITP)):
		f.pos -= 4
		return c.readRevision3(f)
	default:
		if g, ok := Gen1ToFlags(head); ok {
			flags = g
		} else if head&flagV2 != 0 {
			flags = head
		} else {
			return nil, ErrNotItp
		}
	}

	st, err := StatusFromFlags(flags)
	if err != nil {
		return nil, err
	}

	if st.BaseFormat == BFTIndexed3 {
		return c.readCcpi(f, st)
	}

	data2, err := newImageData(&st)
	if err != nil {
		return nil, err
	}

	width, err := f.u32()
	if err != nil {
		return nil, err
	}
	height, err := f.u32()
	if err != nil {
		return nil, err
	}

	if indexed, ok := data2.(Indexed); ok {
		// Two of the fixed headers imply a full 256-entry palette with
		// no size field.
		palSize := 256
		if head != 1000 && head != 1002 {
			ps, err := f.u32()
			if err != nil {
				return nil, err
			}
			palSize = int(ps)
		}
		pal, err := c.readIpal(f, &st, false, palSize)
		if err != nil {
			return nil, err
		}
		indexed.Palette = pal
		data2 = indexed
	}

	// Legacy revisions hold exactly one mip level.
	data2, err = c.readIdat(f, &st, data2, int(width), int(height))
	if err != nil {
		return nil, err
	}

	return &Itp{Status: st, Data: data2}, nil
}

func (c *Codec) readRevision3(f *reader) (*Itp, error) {
	start := f.pos
	if cc, err := f.fourcc(); err != nil {
		return nil, err
	} else if cc != magicITP {
		return nil, ErrNotItp
	}

	var (
		width, height uint32
		fileSize      int
		nMip          int
		currentMip    int
		st            = Status{Revision: V3}
		pal           Palette
		data          ImageData
		sawHeader     bool
	)

chunks:
	for {
		fourcc, err := f.fourcc()
		if err != nil {
			return nil, err
		}
		// The declared chunk size is wrong on some IPAL-carrying files
		// in the wild, so it is read and ignored.
		if _, err := f.u32(); err != nil {
			return nil, err
		}

		switch fourcc {
		case "IHDR":
			if err := f.checkU32("IHDR.size", 32); err != nil {
				return nil, err
			}
			if width, err = f.u32(); err != nil {
				return nil, err
			}
			if height, err = f.u32(); err != nil {
				return nil, err
			}
			fs, err := f.u32()
			if err != nil {
				return nil, err
			}
			fileSize = int(fs)
			if st.Revision, err = enum16(f, "IHDR.itp_revision", Revision.valid); err != nil {
				return nil, err
			}
			if st.BaseFormat, err = enum16(f, "IHDR.base_format", BaseFormatType.valid); err != nil {
				return nil, err
			}
			if st.PixelFormat, err = enum16(f, "IHDR.pixel_format", PixelFormatType.valid); err != nil {
				return nil, err
			}
			if st.PixelBitFormat, err = enum16(f, "IHDR.pixel_bit_format", PixelBitFormatType.valid); err != nil {
				return nil, err
			}
			if st.Compression, err = enum16(f, "IHDR.compression", CompressionType.valid); err != nil {
				return nil, err
			}
			if st.MultiPlane, err = enum16(f, "IHDR.multi_plane", MultiPlaneType.valid); err != nil {
				return nil, err
			}
			if err := f.checkU32("IHDR.reserved", 0); err != nil {
				return nil, err
			}
			if data, err = newImageData(&st); err != nil {
				return nil, err
			}
			sawHeader = true

		case "IMIP":
			if err := f.checkU32("IMIP.size", 12); err != nil {
				return nil, err
			}
			if st.Mipmap, err = enum16(f, "IMIP.mipmap", MipmapType.valid); err != nil {
				return nil, err
			}
			n, err := f.u16()
			if err != nil {
				return nil, err
			}
			nMip = int(n)
			if err := f.checkU32("IMIP.reserved", 0); err != nil {
				return nil, err
			}

		case "IHAS":
			// Opaque content hash; parsed and discarded.
			if err := f.checkU32("IHAS.size", 16); err != nil {
				return nil, err
			}
			if err := f.checkU32("IHAS.reserved", 0); err != nil {
				return nil, err
			}
			if _, err := f.take(8); err != nil {
				return nil, err
			}

		case "IPAL":
			if err := f.checkU32("IPAL.size", 8); err != nil {
				return nil, err
			}
			isExternal, err := f.bool16("IPAL.is_external")
			if err != nil {
				return nil, err
			}
			palSize, err := f.u16()
			if err != nil {
				return nil, err
			}
			if pal, err = c.readIpal(f, &st, isExternal, int(palSize)); err != nil {
				return nil, err
			}

		case "IALP":
			if err := f.checkU32("IALP.size", 8); err != nil {
				return nil, err
			}
			useAlpha, err := f.bool16("IALP.use_alpha")
			if err != nil {
				return nil, err
			}
			st.UseAlpha = &useAlpha
			if err := f.checkU16("IALP.reserved", 0); err != nil {
				return nil, err
			}

		case "IDAT":
			if err := f.checkU32("IDAT.size", 8); err != nil {
				return nil, err
			}
			if err := f.checkU16("IDAT.reserved", 0); err != nil {
				return nil, err
			}
			if err := f.checkU16("IDAT.level", uint16(currentMip)); err != nil {
				return nil, err
			}
			if !sawHeader {
				return nil, ErrNoHeader
			}
			if data, err = c.readIdat(f, &st, data, int(width)>>currentMip, int(height)>>currentMip); err != nil {
				return nil, err
			}
			currentMip++

		case "IEXT":
			return nil, &UnsupportedError{What: "IEXT chunk"}

		case "IEND":
			break chunks

		default:
			return nil, &BadChunkError{FourCC: fourcc}
		}
	}

	if !sawHeader {
		return nil, ErrNoHeader
	}

	if pal != nil {
		indexed, ok := data.(Indexed)
		if !ok {
			return nil, ErrPalettePresent
		}
		indexed.Palette = pal
		data = indexed
	} else if _, ok := data.(Indexed); ok {
		return nil, ErrPaletteMissing
	}

	if err := ensureSize(f.pos-start, fileSize); err != nil {
		return nil, err
	}

	if nMip+1 != currentMip {
		return nil, &WrongMipsError{Expected: nMip + 1, Got: currentMip}
	}

	return &Itp{Status: st, Data: data}, nil
}

func (c *Codec) readIpal(f *reader, st *Status, isExternal bool, size int) (Palette, error) {
	if isExternal {
		path, err := f.cstr()
		if err != nil {
			return nil, err
		}
		return External(path), nil
	}

	data, err := c.readMaybeCompressed(f, st.Compression, size*4)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}

	colors := make([]uint32, size)
	for i := range colors {
		colors[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	// Indexed2 palettes are delta-coded on disk.
	if st.BaseFormat == BFTIndexed2 {
		for i := 1; i < size; i++ {
			colors[i] += colors[i-1]
		}
	}
	return Embedded(colors), nil
}

// readIdat decodes one mip level's pixel payload and appends it to data.
func (c *Codec) readIdat(f *reader, st *Status, data ImageData, width, height int) (ImageData, error) {
	switch d := data.(type) {
	case Indexed:
		switch st.BaseFormat {
		case BFTIndexed1:
			lvl, err := readLevelSimple(c, f, st, width, height, 1, fromU8)
			if err != nil {
				return nil, err
			}
			d.Levels = append(d.Levels, lvl)
			return d, nil
		case BFTIndexed2:
			size, err := f.u32()
			if err != nil {
				return nil, err
			}
			payload, err := c.readMaybeCompressed(f, st.Compression, int(size))
			if err != nil {
				return nil, err
			}
			g := newReader(payload)
			pixels, err := aFastMode2(g, width, height)
			if err != nil {
				return nil, err
			}
			if err := ensureEnd(g); err != nil {
				return nil, err
			}
			d.Levels = append(d.Levels, raster.NewWith(width, height, pixels))
			return d, nil
		case BFTIndexed3:
			return nil, &UnsupportedError{What: "CCPI in a revision 3 container"}
		default:
			return nil, &PixelFormatError{Base: st.BaseFormat, PixelBit: st.PixelBitFormat}
		}
	case Argb16:
		lvl, err := readLevelSimple(c, f, st, width, height, 2, fromU16)
		if err != nil {
			return nil, err
		}
		d.Levels = append(d.Levels, lvl)
		return d, nil
	case Argb32:
		lvl, err := readLevelSimple(c, f, st, width, height, 4, fromU32)
		if err != nil {
			return nil, err
		}
		d.Levels = append(d.Levels, lvl)
		return d, nil
	case Bc1:
		lvl, err := readLevelSimple(c, f, st, width/4, height/4, 8, fromU64)
		if err != nil {
			return nil, err
		}
		d.Levels = append(d.Levels, lvl)
		return d, nil
	case Bc2:
		lvl, err := readLevelSimple(c, f, st, width/4, height/4, 16, fromBlock128)
		if err != nil {
			return nil, err
		}
		d.Levels = append(d.Levels, lvl)
		return d, nil
	case Bc3:
		lvl, err := readLevelSimple(c, f, st, width/4, height/4, 16, fromBlock128)
		if err != nil {
			return nil, err
		}
		d.Levels = append(d.Levels, lvl)
		return d, nil
	case Bc7:
		lvl, err := readLevelSimple(c, f, st, width/4, height/4, 16, fromBlock128)
		if err != nil {
			return nil, err
		}
		d.Levels = append(d.Levels, lvl)
		return d, nil
	default:
		return nil, &PixelFormatError{Base: st.BaseFormat, PixelBit: st.PixelBitFormat}
	}
}

func fromU8(b []byte) uint8   { return b[0] }
func fromU16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func fromU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func fromU64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
func fromBlock128(b []byte) Block128 {
	return Block128{
		Lo: binary.LittleEndian.Uint64(b),
		Hi: binary.LittleEndian.Uint64(b[8:]),
	}
}

// readLevelSimple reads width*height elements of elemSize bytes,
// decompressing and de-permuting as the status dictates.
func readLevelSimple[T any](c *Codec, f *reader, st *Status, width, height, elemSize int, from func([]byte) T) (raster.Raster[T], error) {
	var zero raster.Raster[T]
	data, err := c.readMaybeCompressed(f, st.Compression, width*height*elemSize)
	if err != nil {
		return zero, err
	}
	elems := make([]T, width*height)
	for i := range elems {
		elems[i] = from(data[i*elemSize:])
	}
	if err := doUnswizzle(elems, width, height, st.PixelFormat); err != nil {
		return zero, err
	}
	return raster.NewWith(width, height, elems), nil
}

// readMaybeCompressed reads a payload whose decompressed size must be
// exactly n. Bz_1 and C77 are one bridge frame; Bz_2 concatenates frames
// until n bytes have accumulated.
func (c *Codec) readMaybeCompressed(f *reader, ct CompressionType, n int) ([]byte, error) {
	var data []byte
	switch ct {
	case CTNone:
		b, err := f.take(n)
		if err != nil {
			return nil, err
		}
		data = b
	case CTBz1, CTC77:
		b, err := c.decompress(f, n)
		if err != nil {
			return nil, err
		}
		data = b
	case CTBz2:
		for len(data) < n {
			b, err := c.decompress(f, n-len(data))
			if err != nil {
				return nil, err
			}
			data = append(data, b...)
		}
	default:
		return nil, &InvalidError{Field: "compression", Value: uint32(ct)}
	}
	if err := ensureSize(len(data), n); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Codec) decompress(f *reader, expected int) ([]byte, error) {
	if c.Bridge == nil {
		return nil, ErrNoBridge
	}
	return c.Bridge.Decompress(f, expected)
}
