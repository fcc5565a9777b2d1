package itp

import (
	"fmt"
	"slices"

	"github.com/Aureole-Suite/Cradle/pkg/permute"
	"github.com/Aureole-Suite/Cradle/pkg/raster"
)

// AFastMode2 is the Indexed2 sub-encoding. The image is cut into 8×16
// tiles; each tile carries a local palette of up to 16 entries (indices
// into the image's shared palette) so its pixels fit in one nibble each.
// A nibble array up front gives every tile's local color count minus
// one, with zero meaning the tile is entirely index 0 and stores no
// pixel data at all.

const (
	afmTileW = 16
	afmTileH = 8
	afmTile  = afmTileW * afmTileH
)

func aFastMode2(f *reader, width, height int) ([]uint8, error) {
	if width%afmTileW != 0 || height%afmTileH != 0 {
		return nil, &DimensionError{Width: width, Height: height, What: "afastmode2"}
	}

	nibbles := func(out []uint8) error {
		for i := 0; i < len(out)/2; i++ {
			x, err := f.u8()
			if err != nil {
				return err
			}
			out[2*i] = x >> 4
			out[2*i+1] = x & 15
		}
		return nil
	}

	ncolors := make([]uint8, (height/afmTileH)*(width/afmTileW))
	if err := nibbles(ncolors); err != nil {
		return nil, err
	}
	// The stored nibble is count−1, freeing 0 to mean "skip".
	total := 0
	for i, a := range ncolors {
		if a != 0 {
			ncolors[i] = a + 1
		}
		total += int(ncolors[i])
	}

	pool, err := f.take(total)
	if err != nil {
		return nil, err
	}
	c := newReader(pool)

	mode, err := f.u8()
	if err != nil {
		return nil, err
	}

	data := make([]uint8, 0, width*height)
	for _, nc := range ncolors {
		var chunk [afmTile]uint8
		if nc != 0 {
			colors, err := c.take(int(nc))
			if err != nil {
				return nil, err
			}
			switch mode {
			case 0:
				if err := nibbles(chunk[:]); err != nil {
					return nil, err
				}
				for i, a := range chunk {
					if int(a) >= len(colors) {
						return nil, &InvalidError{Field: "afastmode2 color index", Value: uint32(a)}
					}
					chunk[i] = colors[a]
				}
			case 1:
				return nil, &UnsupportedError{What: "afastmode2 sub-format 1"}
			default:
				sub, err := f.u8()
				if err != nil {
					return nil, err
				}
				if sub != 1 {
					return nil, &UnsupportedError{What: fmt.Sprintf("afastmode2 sub-format %d", sub)}
				}
				// Sixteen local-color lanes of alternating skip/fill
				// runs; each qualifying run fills two cells. 0xFF ends
				// a lane. The toggle carries across lanes.
				toggle := false
				for j := 0; j < 16; j++ {
					pos := 0
					for {
						m, err := f.u8()
						if err != nil {
							return nil, err
						}
						if m == 0xFF {
							break
						}
						if toggle {
							if j >= len(colors) || pos+int(m)+1 > afmTile {
								return nil, &InvalidError{Field: "afastmode2 run", Value: uint32(m)}
							}
							for k := pos; k < pos+int(m)+1; k++ {
								chunk[k] = colors[j]
							}
							pos += 2
						}
						pos += int(m)
						toggle = !toggle
					}
				}
			}
		}
		data = append(data, chunk[:]...)
	}
	if err := ensureEnd(c); err != nil {
		return nil, err
	}

	permute.Unswizzle(data, height, width, afmTileH, afmTileW)
	return data, nil
}

// writeAFastMode2 encodes one level as mode-0 (raw nibble) tiles.
func writeAFastMode2(r raster.Raster[uint8], width, height int) ([]byte, error) {
	if r.Width() != width || r.Height() != height {
		return nil, &WrongSizeError{Expected: width * height, Got: r.Width() * r.Height()}
	}
	if width%afmTileW != 0 || height%afmTileH != 0 {
		return nil, &DimensionError{Width: width, Height: height, What: "afastmode2"}
	}
	ntiles := (height / afmTileH) * (width / afmTileW)
	if ntiles%2 != 0 {
		// The count array is nibble-packed, so an odd tile count cannot
		// round-trip.
		return nil, &DimensionError{Width: width, Height: height, What: "afastmode2"}
	}

	pix := slices.Clone(r.Data())
	permute.Swizzle(pix, height, width, afmTileH, afmTileW)

	ncolors := make([]uint8, ntiles)
	var pool []uint8
	var payload []uint8
	for t := 0; t < ntiles; t++ {
		cells := pix[t*afmTile : (t+1)*afmTile]

		var colors []uint8
		index := make(map[uint8]int)
		local := make([]uint8, afmTile)
		for i, v := range cells {
			idx, ok := index[v]
			if !ok {
				idx = len(colors)
				colors = append(colors, v)
				index[v] = idx
			}
			local[i] = uint8(idx)
		}
		if len(colors) > 16 {
			return nil, &AFastMode2ColorsError{Colors: len(colors)}
		}
		if len(colors) == 1 && colors[0] == 0 {
			continue // all-zero tile, count nibble stays 0
		}
		// A stored count of 1 is indistinguishable from "skip", so a
		// single-color tile pads its palette to two entries.
		if len(colors) == 1 {
			colors = append(colors, colors[0])
		}
		ncolors[t] = uint8(len(colors) - 1)
		pool = append(pool, colors...)
		for i := 0; i < afmTile; i += 2 {
			payload = append(payload, local[i]<<4|local[i+1])
		}
	}

	f := newWriter()
	for i := 0; i < ntiles; i += 2 {
		f.u8(ncolors[i]<<4 | ncolors[i+1])
	}
	f.raw(pool)
	f.u8(0) // mode
	f.raw(payload)
	return f.bytes(), nil
}
