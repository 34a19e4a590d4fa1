package scene

// TextureKind discriminates the Texture sum type (spec.md §3).
type TextureKind int

const (
	TextureBitmap TextureKind = iota
	TextureCheckerboard
	TextureGrid
	TextureScale
)

func (k TextureKind) String() string {
	switch k {
	case TextureBitmap:
		return "bitmap"
	case TextureCheckerboard:
		return "checkerboard"
	case TextureGrid:
		return "gridtexture"
	case TextureScale:
		return "scale"
	default:
		return "unknown"
	}
}

// UVTransform is the shared offset/scale quartet every Texture variant
// reads before its variant-specific fields (spec.md §4.4).
type UVTransform struct {
	UOffset float64
	VOffset float64
	UScale  float64
	VScale  float64
}

type Texture struct {
	Kind TextureKind
	UV   UVTransform

	Bitmap        *BitmapTexture
	Checkerboard  *CheckerboardTexture
	Grid          *GridTexture
	Scale         *ScaleTexture
}

type BitmapTexture struct {
	Filename   string
	FilterType string  // default "trilinear"
	Gamma      float64 // 1.0 when not specified (spec.md §4.4): a no-op

	// Width/Height are best-effort dimension hints populated by probing
	// the referenced file with image.DecodeConfig (see parser/texture.go);
	// zero when the file could not be opened or its format not recognized.
	// This is metadata, not texture evaluation, and is never required.
	Width, Height int
}

type CheckerboardTexture struct {
	Color0 Spectrum
	Color1 Spectrum
}

type GridTexture struct {
	Color0    Spectrum
	Color1    Spectrum
	LineWidth float64
}

type ScaleTexture struct {
	Scale float64
	Inner *Texture
}
