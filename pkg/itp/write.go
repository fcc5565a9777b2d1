package itp

import (
	"encoding/binary"
	"slices"

	"github.com/Aureole-Suite/Cradle/pkg/raster"
)

// Write serializes an ITP image in the layout its status demands.
// Revision 1 requires a status expressible as one of the fixed numeric
// headers, revision 2 as a raw flag word; anything else fails with
// ErrUnrepresentable.
func (c *Codec) Write(itp *Itp) ([]byte, error) {
	st := &itp.Status

	if err := checkPalette(itp); err != nil {
		return nil, err
	}

	switch st.Revision {
	case V3:
		return c.writeRevision3(itp)
	case V1, V2:
	default:
		return nil, &InvalidError{Field: "itp_revision", Value: uint32(st.Revision)}
	}

	flags, ok := StatusToFlags(st)
	if !ok {
		return nil, ErrUnrepresentable
	}
	head := flags
	if st.Revision == V1 {
		if head, ok = FlagsToGen1(flags); !ok {
			return nil, ErrUnrepresentable
		}
	}

	f := newWriter()
	f.u32(head)

	if st.BaseFormat == BFTIndexed3 {
		if err := c.writeCcpi(f, itp); err != nil {
			return nil, err
		}
		return f.bytes(), nil
	}

	width, height := itp.Data.Width(), itp.Data.Height()
	f.u32(uint32(width))
	f.u32(uint32(height))

	if indexed, ok := itp.Data.(Indexed); ok {
		fixedSize := head == 1000 || head == 1002
		isExternal, palSize, body, err := c.writeIpal(st, indexed.Palette, fixedSize)
		if err != nil {
			return nil, err
		}
		if isExternal {
			return nil, ErrExternalPalette
		}
		if !fixedSize {
			f.u32(uint32(palSize))
		}
		f.raw(body)
	}

	for n := 0; n < itp.Data.LevelCount(); n++ {
		payload, err := c.writeIdat(st, itp.Data, n, width>>n, height>>n)
		if err != nil {
			return nil, err
		}
		f.raw(payload)
	}

	return f.bytes(), nil
}

func checkPalette(itp *Itp) error {
	indexed, ok := itp.Data.(Indexed)
	if itp.Status.BaseFormat.IsIndexed() != ok {
		if ok {
			return ErrPalettePresent
		}
		return ErrPaletteMissing
	}
	if ok && indexed.Palette == nil {
		return ErrPaletteMissing
	}
	return nil
}

type chunk struct {
	fourcc string
	body   []byte
}

// writeRevision3 builds the chunk stream in two passes: chunk bodies
// first, then assembly. The IHDR total-file-size field is a forward
// reference, patched once every chunk's size is known.
func (c *Codec) writeRevision3(itp *Itp) ([]byte, error) {
	st := &itp.Status

	if st.BaseFormat == BFTIndexed3 {
		return nil, &UnsupportedError{What: "CCPI in a revision 3 container"}
	}

	width, height := itp.Data.Width(), itp.Data.Height()
	nLevels := itp.Data.LevelCount()

	var chunks []chunk

	ihdr := newWriter()
	ihdr.u32(32)
	ihdr.u32(uint32(width))
	ihdr.u32(uint32(height))
	ihdr.u32(0) // total file size, patched below
	ihdr.u16(uint16(st.Revision))
	ihdr.u16(uint16(st.BaseFormat))
	ihdr.u16(uint16(st.PixelFormat))
	ihdr.u16(uint16(st.PixelBitFormat))
	ihdr.u16(uint16(st.Compression))
	ihdr.u16(uint16(st.MultiPlane))
	ihdr.u32(0)
	chunks = append(chunks, chunk{"IHDR", ihdr.bytes()})

	// Files without mipmaps commonly omit IMIP entirely; emitting it
	// only when it carries information keeps those files byte-stable
	// across a read/write cycle.
	if st.Mipmap != MTNone || nLevels > 1 {
		imip := newWriter()
		imip.u32(12)
		imip.u16(uint16(st.Mipmap))
		imip.u16(uint16(nLevels - 1))
		imip.u32(0)
		chunks = append(chunks, chunk{"IMIP", imip.bytes()})
	}

	if indexed, ok := itp.Data.(Indexed); ok {
		isExternal, palSize, body, err := c.writeIpal(st, indexed.Palette, false)
		if err != nil {
			return nil, err
		}
		ipal := newWriter()
		ipal.u32(8)
		if isExternal {
			ipal.u16(1)
		} else {
			ipal.u16(0)
		}
		ipal.u16(uint16(palSize))
		ipal.raw(body)
		chunks = append(chunks, chunk{"IPAL", ipal.bytes()})
	}

	if st.UseAlpha != nil {
		ialp := newWriter()
		ialp.u32(8)
		if *st.UseAlpha {
			ialp.u16(1)
		} else {
			ialp.u16(0)
		}
		ialp.u16(0)
		chunks = append(chunks, chunk{"IALP", ialp.bytes()})
	}

	for n := 0; n < nLevels; n++ {
		payload, err := c.writeIdat(st, itp.Data, n, width>>n, height>>n)
		if err != nil {
			return nil, err
		}
		idat := newWriter()
		idat.u32(8)
		idat.u16(0)
		idat.u16(uint16(n))
		idat.raw(payload)
		chunks = append(chunks, chunk{"IDAT", idat.bytes()})
	}

	chunks = append(chunks, chunk{"IEND", nil})

	total := 4
	for _, ch := range chunks {
		total += 8 + len(ch.body)
	}
	binary.LittleEndian.PutUint32(chunks[0].body[12:], uint32(total))

	f := newWriter()
	f.str(magicITP)
	for _, ch := range chunks {
		f.str(ch.fourcc)
		f.u32(uint32(len(ch.body)))
		f.raw(ch.body)
	}
	return f.bytes(), nil
}

func (c *Codec) writeIpal(st *Status, pal Palette, fixedSize bool) (isExternal bool, size int, body []byte, err error) {
	switch p := pal.(type) {
	case Embedded:
		colors := slices.Clone([]uint32(p))

		// Indexed2 palettes are delta-coded on disk.
		if st.BaseFormat == BFTIndexed2 {
			for i := len(colors) - 1; i >= 1; i-- {
				colors[i] -= colors[i-1]
			}
		}

		if fixedSize {
			for len(colors) < 256 {
				colors = append(colors, 0)
			}
		}

		f := newWriter()
		for _, color := range colors {
			f.u32(color)
		}
		body, err = c.maybeCompress(st.Compression, f.bytes())
		return false, len(p), body, err
	case External:
		return true, 0, append([]byte(p), 0), nil
	default:
		return false, 0, nil, ErrPaletteMissing
	}
}

// writeIdat encodes one mip level, the exact inverse of readIdat.
func (c *Codec) writeIdat(st *Status, data ImageData, n, width, height int) ([]byte, error) {
	switch d := data.(type) {
	case Indexed:
		switch st.BaseFormat {
		case BFTIndexed1:
			return writeLevelSimple(c, st, d.Levels[n], width, height, 1, toU8)
		case BFTIndexed2:
			raw, err := writeAFastMode2(d.Levels[n], width, height)
			if err != nil {
				return nil, err
			}
			comp, err := c.maybeCompress(st.Compression, raw)
			if err != nil {
				return nil, err
			}
			f := newWriter()
			f.u32(uint32(len(raw)))
			f.raw(comp)
			return f.bytes(), nil
		case BFTIndexed3:
			return nil, &UnsupportedError{What: "CCPI in a revision 3 container"}
		default:
			return nil, &PixelFormatError{Base: st.BaseFormat, PixelBit: st.PixelBitFormat}
		}
	case Argb16:
		return writeLevelSimple(c, st, d.Levels[n], width, height, 2, toU16)
	case Argb32:
		return writeLevelSimple(c, st, d.Levels[n], width, height, 4, toU32)
	case Bc1:
		return writeLevelSimple(c, st, d.Levels[n], width/4, height/4, 8, toU64)
	case Bc2:
		return writeLevelSimple(c, st, d.Levels[n], width/4, height/4, 16, toBlock128)
	case Bc3:
		return writeLevelSimple(c, st, d.Levels[n], width/4, height/4, 16, toBlock128)
	case Bc7:
		return writeLevelSimple(c, st, d.Levels[n], width/4, height/4, 16, toBlock128)
	default:
		return nil, &PixelFormatError{Base: st.BaseFormat, PixelBit: st.PixelBitFormat}
	}
}

func toU8(b []byte, v uint8)   { b[0] = v }
func toU16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func toU32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func toU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func toBlock128(b []byte, v Block128) {
	binary.LittleEndian.PutUint64(b, v.Lo)
	binary.LittleEndian.PutUint64(b[8:], v.Hi)
}

func writeLevelSimple[T any](c *Codec, st *Status, r raster.Raster[T], width, height, elemSize int, to func([]byte, T)) ([]byte, error) {
	if r.Width() != width || r.Height() != height {
		return nil, &WrongSizeError{Expected: width * height, Got: r.Width() * r.Height()}
	}
	elems := slices.Clone(r.Data())
	if err := doSwizzle(elems, width, height, st.PixelFormat); err != nil {
		return nil, err
	}
	out := make([]byte, len(elems)*elemSize)
	for i, v := range elems {
		to(out[i*elemSize:], v)
	}
	return c.maybeCompress(st.Compression, out)
}

func (c *Codec) maybeCompress(ct CompressionType, data []byte) ([]byte, error) {
	if ct == CTNone {
		return data, nil
	}
	if c.Bridge == nil {
		return nil, ErrNoBridge
	}
	return c.Bridge.Compress(data)
}
