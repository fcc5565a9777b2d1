package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/Aureole-Suite/Cradle/pkg/compress/zbridge"
	"github.com/Aureole-Suite/Cradle/pkg/itp"
	"github.com/Aureole-Suite/Cradle/pkg/raster"
	"github.com/Aureole-Suite/Cradle/pkg/util"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze cobra command
func NewAnalyzeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze ITP file structure",
		Long:  "Parses and displays detailed information about an ITP file including container revision, pixel format and mip levels.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, _ := cmd.Flags().GetString("file")
			dumpLevel, _ := cmd.Flags().GetInt("dump-level")
			out, _ := cmd.Flags().GetString("out")

			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}

			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}

			return runAnalyze(filePath, dumpLevel, out)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "ITP file path to analyze")
	pf.Int("dump-level", -1, "Index of mip level to dump to disk")
	pf.String("out", "", "Output path for dumped level")

	return cmd
}

// runAnalyze parses an ITP file and prints its structure
func runAnalyze(filePath string, dumpLevel int, outPath string) error {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	codec := &itp.Codec{Bridge: zbridge.Bridge{}}
	img, err := codec.Read(raw)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	st := img.Status
	fmt.Println("=== Container ===")
	fmt.Printf("Revision: %s\n", st.Revision)
	fmt.Printf("BaseFormat: %s\n", st.BaseFormat)
	fmt.Printf("PixelBitFormat: %s\n", st.PixelBitFormat)
	fmt.Printf("PixelFormat: %s\n", st.PixelFormat)
	fmt.Printf("Compression: %s\n", st.Compression)
	fmt.Printf("Mipmap: %s\n", st.Mipmap)
	switch {
	case st.UseAlpha == nil:
		fmt.Println("UseAlpha: unset")
	default:
		fmt.Printf("UseAlpha: %v\n", *st.UseAlpha)
	}

	fmt.Println("\n=== Image ===")
	fmt.Printf("Size: %dx%d\n", img.Data.Width(), img.Data.Height())
	fmt.Printf("Levels: %d\n", img.Data.LevelCount())
	fmt.Printf("Content: %s\n", contentID(img.Data))

	if d, ok := img.Data.(itp.Indexed); ok {
		switch p := d.Palette.(type) {
		case itp.Embedded:
			fmt.Printf("Palette: %d embedded colors\n", len(p))
		case itp.External:
			fmt.Printf("Palette: external %q\n", string(p))
		}
	}

	levels := levelBytes(img.Data)
	for i, lv := range levels {
		fmt.Printf("\n--- Level %d ---\n", i)
		fmt.Printf("Bytes: %d\n", len(lv))
		fmt.Printf("Md5: %s\n", util.Md5ThenHex(lv))
	}

	if dumpLevel >= 0 {
		if dumpLevel >= len(levels) {
			return fmt.Errorf("level index %d out of bounds (0-%d)", dumpLevel, len(levels)-1)
		}
		if outPath == "" {
			outPath = fmt.Sprintf("level_%d.bin", dumpLevel)
		}
		fmt.Printf("\nDumping level %d (%d bytes) to %s\n", dumpLevel, len(levels[dumpLevel]), outPath)
		return os.WriteFile(outPath, levels[dumpLevel], 0644)
	}

	return nil
}

// contentID fingerprints the decoded pixel payload, independent of the
// container revision and compression it was stored with.
func contentID(d itp.ImageData) string {
	return util.HashUUID(map[string]any{
		"width":  d.Width(),
		"height": d.Height(),
		"levels": levelBytes(d),
	})
}

// levelBytes serializes each mip level to little-endian bytes.
func levelBytes(d itp.ImageData) [][]byte {
	switch d := d.(type) {
	case itp.Indexed:
		return eachLevel(d.Levels, func(b []byte, v uint8) []byte { return append(b, v) })
	case itp.Argb16:
		return eachLevel(d.Levels, binary.LittleEndian.AppendUint16)
	case itp.Argb32:
		return eachLevel(d.Levels, binary.LittleEndian.AppendUint32)
	case itp.Bc1:
		return eachLevel(d.Levels, binary.LittleEndian.AppendUint64)
	case itp.Bc2:
		return eachLevel(d.Levels, appendBlock128)
	case itp.Bc3:
		return eachLevel(d.Levels, appendBlock128)
	case itp.Bc7:
		return eachLevel(d.Levels, appendBlock128)
	default:
		return nil
	}
}

func eachLevel[T any](levels []raster.Raster[T], put func([]byte, T) []byte) [][]byte {
	out := make([][]byte, 0, len(levels))
	for _, lv := range levels {
		b := make([]byte, 0, len(lv.Data()))
		for _, v := range lv.Data() {
			b = put(b, v)
		}
		out = append(out, b)
	}
	return out
}

func appendBlock128(b []byte, v itp.Block128) []byte {
	b = binary.LittleEndian.AppendUint64(b, v.Lo)
	return binary.LittleEndian.AppendUint64(b, v.Hi)
}
