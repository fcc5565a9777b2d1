package itp

import (
	"errors"
	"fmt"
)

// All errors are terminal for the read or write call that raised them;
// the codec never returns a partially decoded Itp.
var (
	// ErrNotItp means the magic at offset 0 belongs to another format.
	ErrNotItp = errors.New("itp: this is not an itp file")

	// ErrRemainingData means trailing bytes were found after the
	// structurally expected end of a payload.
	ErrRemainingData = errors.New("itp: unexpected data after end")

	// ErrNoHeader means pixel data appeared before the IHDR chunk.
	ErrNoHeader = errors.New("itp: missing IHDR chunk")

	ErrPalettePresent = errors.New("itp: got a palette on a non-indexed format")
	ErrPaletteMissing = errors.New("itp: no palette is present for indexed format")

	// ErrUnrepresentable means the target revision cannot encode this
	// status (revision 3 fields under the flag scheme, C77 under gen1,
	// mipmaps in a legacy file, and so on).
	ErrUnrepresentable = errors.New("itp: status cannot be represented in this revision")

	// ErrExternalPalette means this format/revision combination cannot
	// carry an external palette reference.
	ErrExternalPalette = errors.New("itp: external palette not supported here")

	// ErrNoBridge means the file needs a compression bridge but the
	// codec was built without one.
	ErrNoBridge = errors.New("itp: compressed data, but no compression bridge configured")
)

// MissingFlagError: a legacy flag word has no bit set for a required field.
type MissingFlagError struct {
	What string
}

func (e *MissingFlagError) Error() string {
	return fmt.Sprintf("itp: flags missing for %s", e.What)
}

// ExtraFlagsError: a legacy flag word has bits set outside every
// recognized position.
type ExtraFlagsError struct {
	Flags uint32
}

func (e *ExtraFlagsError) Error() string {
	return fmt.Sprintf("itp: extra flags: %032b", e.Flags)
}

// BadChunkError: an unknown FourCC in a revision-3 stream.
type BadChunkError struct {
	FourCC string
}

func (e *BadChunkError) Error() string {
	return fmt.Sprintf("itp: bad chunk %q", e.FourCC)
}

// InvalidError: an enum field read from the file is out of range.
type InvalidError struct {
	Field string
	Value uint32
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("itp: invalid value for %s: %d", e.Field, e.Value)
}

type WrongSizeError struct {
	Expected, Got int
}

func (e *WrongSizeError) Error() string {
	return fmt.Sprintf("itp: unexpected size: expected %d, but got %d", e.Expected, e.Got)
}

type WrongMipsError struct {
	Expected, Got int
}

func (e *WrongMipsError) Error() string {
	return fmt.Sprintf("itp: wrong number of mipmaps: header says %d, but there are %d", e.Expected, e.Got)
}

type CcpiVersionError struct {
	Version uint16
}

func (e *CcpiVersionError) Error() string {
	return fmt.Sprintf("itp: ccpi only supports versions 6 and 7, got %d", e.Version)
}

// CcpiEntriesError: a tile needs more distinct 4-byte dictionary entries
// than a one-byte selector can address.
type CcpiEntriesError struct {
	Entries int
}

func (e *CcpiEntriesError) Error() string {
	return fmt.Sprintf("itp: ccpi tile has %d distinct entries, max 255", e.Entries)
}

// PixelFormatError: BaseFormat and PixelBitFormat do not pair up.
type PixelFormatError struct {
	Base     BaseFormatType
	PixelBit PixelBitFormatType
}

func (e *PixelFormatError) Error() string {
	return fmt.Sprintf("itp: base and pixel format mismatch: %v cannot use %v", e.Base, e.PixelBit)
}

// AFastMode2ColorsError: a tile uses more colors than a nibble index can
// address.
type AFastMode2ColorsError struct {
	Colors int
}

func (e *AFastMode2ColorsError) Error() string {
	return fmt.Sprintf("itp: afastmode2 tile has %d distinct colors, max 16", e.Colors)
}

// DimensionError: image dimensions are incompatible with the selected
// pixel encoding or permutation.
type DimensionError struct {
	Width, Height int
	What          string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("itp: %d×%d image cannot use %s", e.Width, e.Height, e.What)
}

// UnsupportedError: a structurally recognized but unimplemented corner of
// the format (IEXT chunks, obscure AFastMode2 sub-encodings).
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("itp: unsupported: %s", e.What)
}
