package itp

import (
	"github.com/Aureole-Suite/Cradle/pkg/permute"
	"github.com/Aureole-Suite/Cradle/pkg/raster"
)

// CCPI is the Indexed3 sub-encoding: a self-contained body following the
// shared legacy header, with palette and pixel data behind its own
// compression flag. Pixels are covered by fixed-size tiles (clamped at
// the image edges); each tile carries a dictionary of 4-byte entries and
// a selector stream, and the decoded bytes sit under a 2×2 block swizzle.

const ccpiMagic = "CCPI"

func (c *Codec) readCcpi(f *reader, st Status) (*Itp, error) {
	dataSize, err := f.u32()
	if err != nil {
		return nil, err
	}
	cc, err := f.fourcc()
	if err != nil {
		return nil, err
	}
	if cc != ccpiMagic {
		return nil, &BadChunkError{FourCC: cc}
	}

	version, err := f.u16()
	if err != nil {
		return nil, err
	}
	palSize, err := f.u16()
	if err != nil {
		return nil, err
	}
	cwLog, err := f.u8()
	if err != nil {
		return nil, err
	}
	chLog, err := f.u8()
	if err != nil {
		return nil, err
	}
	w16, err := f.u16()
	if err != nil {
		return nil, err
	}
	h16, err := f.u16()
	if err != nil {
		return nil, err
	}
	flags, err := f.u16()
	if err != nil {
		return nil, err
	}

	if version != 6 && version != 7 {
		return nil, &CcpiVersionError{Version: version}
	}

	cw, ch := 1<<cwLog, 1<<chLog
	w, h := int(w16), int(h16)

	if flags&0x8000 != 0 {
		st.Compression = CTBz1
	} else {
		st.Compression = CTNone
	}

	if int(dataSize) < 16 {
		return nil, &WrongSizeError{Expected: 16, Got: int(dataSize)}
	}
	body, err := c.readMaybeCompressed(f, st.Compression, int(dataSize)-16)
	if err != nil {
		return nil, err
	}
	g := newReader(body)

	var pal Palette
	if flags&(1<<9) != 0 {
		path, err := g.cstr()
		if err != nil {
			return nil, err
		}
		pal = External(path)
	} else {
		colors := make([]uint32, palSize)
		for i := range colors {
			if colors[i], err = g.u32(); err != nil {
				return nil, err
			}
		}
		pal = Embedded(colors)
	}

	pixels := make([]uint8, w*h)
	for y := 0; y < h; y += ch {
		for x := 0; x < w; x += cw {
			tw := min(cw, w-x)
			th := min(ch, h-y)
			if tw%2 != 0 || th%2 != 0 {
				return nil, &DimensionError{Width: w, Height: h, What: "ccpi"}
			}
			tile, err := readCcpiChunk(g, tw*th)
			if err != nil {
				return nil, err
			}
			permute.Unswizzle(tile, th, tw, 2, 2)
			for ty := 0; ty < th; ty++ {
				copy(pixels[(y+ty)*w+x:], tile[ty*tw:(ty+1)*tw])
			}
		}
	}
	if err := ensureEnd(g); err != nil {
		return nil, err
	}

	return &Itp{
		Status: st,
		Data: Indexed{
			Palette: pal,
			Levels:  []raster.Raster[uint8]{raster.NewWith(w, h, pixels)},
		},
	}, nil
}

// readCcpiChunk reads one tile: an explicit dictionary of up to 255
// 4-byte entries, extended implicitly by the x-flips of those entries
// and then the y-flips of both, followed by a selector stream. Selector
// 0xFF replays the last-used entry a counted number of times.
func readCcpiChunk(f *reader, n int) ([]uint8, error) {
	var tiles [256][4]byte
	cnt8, err := f.u8()
	if err != nil {
		return nil, err
	}
	cnt := int(cnt8)
	for i := 0; i < cnt; i++ {
		b, err := f.take(4)
		if err != nil {
			return nil, err
		}
		copy(tiles[i][:], b)
	}
	for i := cnt; i < min(cnt*2, 256); i++ {
		t := tiles[i-cnt]
		tiles[i] = [4]byte{t[1], t[0], t[3], t[2]} // x-flip
	}
	for i := cnt * 2; i < min(cnt*4, 256); i++ {
		t := tiles[i-cnt*2]
		tiles[i] = [4]byte{t[2], t[3], t[0], t[1]} // y-flip
	}

	chunk := make([]uint8, 0, n)
	last := 0
	for len(chunk) < n {
		v, err := f.u8()
		if err != nil {
			return nil, err
		}
		if v == 0xFF {
			rep, err := f.u8()
			if err != nil {
				return nil, err
			}
			for j := 0; j < int(rep); j++ {
				chunk = append(chunk, tiles[last][:]...)
			}
		} else {
			last = int(v)
			chunk = append(chunk, tiles[last][:]...)
		}
	}
	if err := ensureSize(len(chunk), n); err != nil {
		return nil, err
	}
	return chunk, nil
}

// ccpiTile is the tile size the writer uses; readers accept any
// power-of-two size from the header.
const ccpiTile = 16

func (c *Codec) writeCcpi(f *writer, itp *Itp) error {
	st := &itp.Status
	indexed, ok := itp.Data.(Indexed)
	if !ok {
		return ErrPaletteMissing
	}
	if indexed.LevelCount() != 1 {
		return ErrUnrepresentable
	}
	lvl := indexed.Levels[0]
	w, h := lvl.Width(), lvl.Height()
	if w%2 != 0 || h%2 != 0 || w > 0xFFFF || h > 0xFFFF {
		return &DimensionError{Width: w, Height: h, What: "ccpi"}
	}

	var flags uint16
	palSize := 0
	body := newWriter()
	switch p := indexed.Palette.(type) {
	case External:
		flags |= 1 << 9
		body.str(string(p))
		body.u8(0)
	case Embedded:
		palSize = len(p)
		for _, color := range p {
			body.u32(color)
		}
	default:
		return ErrPaletteMissing
	}

	pixels := lvl.Data()
	for y := 0; y < h; y += ccpiTile {
		for x := 0; x < w; x += ccpiTile {
			tw := min(ccpiTile, w-x)
			th := min(ccpiTile, h-y)
			tile := make([]uint8, 0, tw*th)
			for ty := 0; ty < th; ty++ {
				tile = append(tile, pixels[(y+ty)*w+x:(y+ty)*w+x+tw]...)
			}
			permute.Swizzle(tile, th, tw, 2, 2)
			if err := writeCcpiChunk(body, tile); err != nil {
				return err
			}
		}
	}

	var payload []byte
	switch st.Compression {
	case CTNone:
		payload = body.bytes()
	case CTBz1:
		flags |= 0x8000
		var err error
		if payload, err = c.maybeCompress(CTBz1, body.bytes()); err != nil {
			return err
		}
	default:
		return ErrUnrepresentable
	}

	f.u32(uint32(16 + body.len()))
	f.str(ccpiMagic)
	f.u16(7) // version
	f.u16(uint16(palSize))
	f.u8(4) // log2 tile width
	f.u8(4) // log2 tile height
	f.u16(uint16(w))
	f.u16(uint16(h))
	f.u16(flags)
	f.raw(payload)
	return nil
}

// writeCcpiChunk emits one tile with an explicit dictionary in
// first-use order. Entry index 0xFF is reserved for the run-length
// selector, so at most 255 distinct entries fit.
func writeCcpiChunk(f *writer, tile []uint8) error {
	type entry [4]byte
	var entries []entry
	index := make(map[entry]int)

	n := len(tile) / 4
	groups := make([]int, n)
	for i := range groups {
		var e entry
		copy(e[:], tile[i*4:])
		idx, ok := index[e]
		if !ok {
			if len(entries) == 255 {
				return &CcpiEntriesError{Entries: len(entries) + 1}
			}
			idx = len(entries)
			entries = append(entries, e)
			index[e] = idx
		}
		groups[i] = idx
	}

	f.u8(uint8(len(entries)))
	for _, e := range entries {
		f.raw(e[:])
	}

	last := -1
	for i := 0; i < n; {
		if groups[i] == last {
			run := 0
			for i+run < n && groups[i+run] == last && run < 255 {
				run++
			}
			f.u8(0xFF)
			f.u8(uint8(run))
			i += run
		} else {
			last = groups[i]
			f.u8(uint8(last))
			i++
		}
	}
	return nil
}
