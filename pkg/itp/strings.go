package itp

import "fmt"

func (t Revision) String() string {
	switch t {
	case V1:
		return "V1"
	case V2:
		return "V2"
	case V3:
		return "V3"
	}
	return fmt.Sprintf("Revision(%d)", uint16(t))
}

func (t BaseFormatType) String() string {
	switch t {
	case BFTIndexed1:
		return "Indexed1"
	case BFTIndexed2:
		return "Indexed2"
	case BFTIndexed3:
		return "Indexed3"
	case BFTArgb16:
		return "Argb16"
	case BFTArgb32:
		return "Argb32"
	case BFTBc1:
		return "Bc1"
	case BFTBc2:
		return "Bc2"
	case BFTBc3:
		return "Bc3"
	case BFTBcAuto13:
		return "BcAuto_1_3"
	case BFTBc7:
		return "Bc7"
	}
	return fmt.Sprintf("BaseFormatType(%d)", uint16(t))
}

func (t PixelBitFormatType) String() string {
	switch t {
	case PBFTIndexed:
		return "Indexed"
	case PBFTArgb16_1:
		return "Argb16_1"
	case PBFTArgb16_2:
		return "Argb16_2"
	case PBFTArgb16_3:
		return "Argb16_3"
	case PBFTArgb16Auto:
		return "Argb16_auto"
	case PBFTArgb32:
		return "Argb32"
	case PBFTCompressed:
		return "Compressed"
	}
	return fmt.Sprintf("PixelBitFormatType(%d)", uint16(t))
}

func (t PixelFormatType) String() string {
	switch t {
	case PFTLinear:
		return "Linear"
	case PFTPfp1:
		return "Pfp_1"
	case PFTPfp2:
		return "Pfp_2"
	case PFTPfp3:
		return "Pfp_3"
	case PFTPfp4:
		return "Pfp_4"
	}
	return fmt.Sprintf("PixelFormatType(%d)", uint16(t))
}

func (t CompressionType) String() string {
	switch t {
	case CTNone:
		return "None"
	case CTBz1:
		return "Bz_1"
	case CTBz2:
		return "Bz_2"
	case CTC77:
		return "C77"
	}
	return fmt.Sprintf("CompressionType(%d)", uint16(t))
}

func (t MipmapType) String() string {
	switch t {
	case MTNone:
		return "None"
	case MTMipmap1:
		return "Mipmap_1"
	case MTMipmap2:
		return "Mipmap_2"
	}
	return fmt.Sprintf("MipmapType(%d)", uint16(t))
}
