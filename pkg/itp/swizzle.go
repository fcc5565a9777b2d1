package itp

import "github.com/Aureole-Suite/Cradle/pkg/permute"

// The pixel format selects which index permutation sits between the
// on-disk and row-major orders. Pfp_4 nests a morton curve over 8-wide
// strips inside an outer swizzle.

func doUnswizzle[T any](data []T, width, height int, pf PixelFormatType) error {
	if err := checkPermutable(width, height, pf); err != nil {
		return err
	}
	switch pf {
	case PFTLinear:
	case PFTPfp1:
		permute.Unswizzle(data, height, width, 8, 16)
	case PFTPfp2:
		permute.Unswizzle(data, height, width, 32, 32)
	case PFTPfp3:
		permute.Unmorton(data, height, width)
	case PFTPfp4:
		permute.Unmorton(data, width*height/8, 8)
		permute.Unswizzle(data, height, width, 8, 1)
	}
	return nil
}

func doSwizzle[T any](data []T, width, height int, pf PixelFormatType) error {
	if err := checkPermutable(width, height, pf); err != nil {
		return err
	}
	switch pf {
	case PFTLinear:
	case PFTPfp1:
		permute.Swizzle(data, height, width, 8, 16)
	case PFTPfp2:
		permute.Swizzle(data, height, width, 32, 32)
	case PFTPfp3:
		permute.Morton(data, height, width)
	case PFTPfp4:
		permute.Swizzle(data, height, width, 8, 1)
		permute.Morton(data, width*height/8, 8)
	}
	return nil
}

// checkPermutable rejects dimensions the permutation math cannot take,
// so malformed files fail with an error instead of a panic.
func checkPermutable(width, height int, pf PixelFormatType) error {
	bad := func() error {
		return &DimensionError{Width: width, Height: height, What: pf.String()}
	}
	switch pf {
	case PFTLinear:
	case PFTPfp1:
		if width%16 != 0 || height%8 != 0 {
			return bad()
		}
	case PFTPfp2:
		if width%32 != 0 || height%32 != 0 {
			return bad()
		}
	case PFTPfp3:
		if !permute.IsPow2(width) || !permute.IsPow2(height) {
			return bad()
		}
	case PFTPfp4:
		if height%8 != 0 || width*height%8 != 0 || !permute.IsPow2(width*height/8) {
			return bad()
		}
	default:
		return &InvalidError{Field: "pixel_format", Value: uint32(pf)}
	}
	return nil
}
