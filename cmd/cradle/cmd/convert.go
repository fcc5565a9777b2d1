package cmd

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aureole-Suite/Cradle/pkg/compress/zbridge"
	"github.com/Aureole-Suite/Cradle/pkg/itp"
	"github.com/Aureole-Suite/Cradle/pkg/raster"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"
)

// NewConvertCmd creates the convert cobra command
func NewConvertCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert between ITP and PNG",
		Long:  "Converts an ITP file to PNG, or a PNG file to an ITP container. The direction is chosen by the input extension.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one input file is required")
			}
			in := args[0]
			out, _ := cmd.Flags().GetString("out")
			mips, _ := cmd.Flags().GetInt("mipmaps")
			comp, _ := cmd.Flags().GetString("compress")
			rev, _ := cmd.Flags().GetInt("revision")

			if strings.EqualFold(filepath.Ext(in), ".png") {
				if out == "" {
					out = strings.TrimSuffix(in, filepath.Ext(in)) + ".itp"
				}
				return pngToItp(in, out, mips, comp, rev)
			}
			if out == "" {
				out = strings.TrimSuffix(in, filepath.Ext(in)) + ".png"
			}
			return itpToPng(in, out)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("out", "o", "", "output path (defaults to input with swapped extension)")
	pf.Int("mipmaps", 0, "number of extra mip levels to generate for PNG inputs")
	pf.String("compress", "none", "payload compression for ITP output (none|bz1|bz2)")
	pf.Int("revision", 3, "ITP container revision for PNG inputs (1|2|3)")

	return cmd
}

func itpToPng(inPath, outPath string) error {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	codec := &itp.Codec{Bridge: zbridge.Bridge{}}
	img, err := codec.Read(raw)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	decoded, err := toImage(img.Data)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, decoded); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", outPath, img.Data.Width(), img.Data.Height())
	return nil
}

func pngToItp(inPath, outPath string, mips int, comp string, rev int) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("png decode: %w", err)
	}

	if rev < 1 || rev > 3 {
		return fmt.Errorf("unknown revision %d", rev)
	}
	data, err := fromImage(decoded, mips)
	if err != nil {
		return err
	}
	img, err := itp.New(itp.Revision(rev), data)
	if err != nil {
		return err
	}
	switch strings.ToLower(comp) {
	case "none":
	case "bz1":
		img.Status.Compression = itp.CTBz1
	case "bz2":
		img.Status.Compression = itp.CTBz2
	default:
		return fmt.Errorf("unknown compression %q", comp)
	}

	codec := &itp.Codec{Bridge: zbridge.Bridge{}}
	raw, err := codec.Write(img)
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	if err := os.WriteFile(outPath, raw, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Wrote %s (%d bytes, %d levels)\n", outPath, len(raw), data.LevelCount())
	return nil
}

// toImage renders the top mip level. Color cells are 0xAARRGGBB.
func toImage(d itp.ImageData) (image.Image, error) {
	switch d := d.(type) {
	case itp.Indexed:
		pal, ok := d.Palette.(itp.Embedded)
		if !ok {
			return nil, fmt.Errorf("cannot render: %w", itp.ErrExternalPalette)
		}
		lv := d.Levels[0]
		out := image.NewNRGBA(image.Rect(0, 0, lv.Width(), lv.Height()))
		for i, idx := range lv.Data() {
			if int(idx) >= len(pal) {
				return nil, &itp.InvalidError{Field: "palette index", Value: uint32(idx)}
			}
			putArgb(out, i, pal[idx])
		}
		return out, nil
	case itp.Argb32:
		lv := d.Levels[0]
		out := image.NewNRGBA(image.Rect(0, 0, lv.Width(), lv.Height()))
		for i, c := range lv.Data() {
			putArgb(out, i, c)
		}
		return out, nil
	default:
		return nil, &itp.UnsupportedError{What: "PNG conversion for this base format"}
	}
}

func putArgb(out *image.NRGBA, i int, c uint32) {
	out.Pix[i*4+0] = uint8(c >> 16)
	out.Pix[i*4+1] = uint8(c >> 8)
	out.Pix[i*4+2] = uint8(c)
	out.Pix[i*4+3] = uint8(c >> 24)
}

// fromImage builds ImageData from a decoded PNG. Paletted PNGs become
// Indexed with an embedded palette; everything else becomes Argb32.
func fromImage(img image.Image, mips int) (itp.ImageData, error) {
	if p, ok := img.(*image.Paletted); ok && mips == 0 {
		pal := make(itp.Embedded, len(p.Palette))
		for i, c := range p.Palette {
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			pal[i] = uint32(n.A)<<24 | uint32(n.R)<<16 | uint32(n.G)<<8 | uint32(n.B)
		}
		w, h := p.Rect.Dx(), p.Rect.Dy()
		cells := make([]uint8, 0, w*h)
		for y := 0; y < h; y++ {
			cells = append(cells, p.Pix[y*p.Stride:y*p.Stride+w]...)
		}
		return itp.Indexed{
			Palette: pal,
			Levels:  []raster.Raster[uint8]{raster.NewWith(w, h, cells)},
		}, nil
	}

	levels := []raster.Raster[uint32]{rasterFromImage(img)}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	src := img
	for i := 0; i < mips; i++ {
		if w%2 != 0 || h%2 != 0 {
			return nil, fmt.Errorf("cannot halve %dx%d for mip level %d", w, h, i+1)
		}
		w, h = w/2, h/2
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
		levels = append(levels, rasterFromImage(dst))
		src = dst
	}
	return itp.Argb32{Levels: levels}, nil
}

func rasterFromImage(img image.Image) raster.Raster[uint32] {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cells := make([]uint32, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			cells = append(cells, uint32(n.A)<<24|uint32(n.R)<<16|uint32(n.G)<<8|uint32(n.B))
		}
	}
	return raster.NewWith(w, h, cells)
}
