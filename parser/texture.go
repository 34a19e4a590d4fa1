package parser

import (
	"encoding/xml"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/scenekit/mitsuba-go/scene"
)

// parseTexture decodes one <texture type="..."> element into a
// *scene.Texture (spec.md §3/§4.4). Unlike the teacher's texture.Texture2D,
// this never decodes pixel data: evaluating textures is out of scope
// (spec.md Non-goals), so a bitmap texture only records its filename and a
// best-effort Width/Height hint from image.DecodeConfig, following the
// same blank-import decoder registration texture2D.go uses (png/jpeg/gif
// from the standard library) extended with golang.org/x/image's bmp and
// tiff decoders for the additional formats physically-based renderer
// scenes reference.
func (c *Context) parseTexture(start xml.StartElement) (*scene.Texture, error) {
	variant, err := c.typeAttr(start)
	if err != nil {
		return nil, err
	}

	ch, err := c.collectChildren(start, nil)
	if err != nil {
		return nil, err
	}

	t := &scene.Texture{
		UV: scene.UVTransform{
			UOffset: ch.floatProp("uoffset", 0),
			VOffset: ch.floatProp("voffset", 0),
			UScale:  ch.floatProp("uscale", 1),
			VScale:  ch.floatProp("vscale", 1),
		},
	}

	switch variant {
	case "bitmap":
		filename := ch.stringProp("filename", "")
		if filename == "" {
			return nil, missingAttrf("<texture type=\"bitmap\"> missing \"filename\"")
		}
		w, h := probeImageDimensions(filename)
		t.Kind = scene.TextureBitmap
		t.Bitmap = &scene.BitmapTexture{
			Filename:   filename,
			FilterType: ch.stringProp("filterType", "trilinear"),
			// spec.md §4.4: an omitted gamma is a no-op, not black.
			Gamma: ch.floatProp("gamma", 1.0),
			Width: w,
			Height: h,
		}

	case "checkerboard":
		t.Kind = scene.TextureCheckerboard
		t.Checkerboard = &scene.CheckerboardTexture{
			Color0: ch.spectrumProp("color0", scene.NewSpectrum("0.4")),
			Color1: ch.spectrumProp("color1", scene.NewSpectrum("0.2")),
		}

	case "gridtexture":
		t.Kind = scene.TextureGrid
		t.Grid = &scene.GridTexture{
			Color0:    ch.spectrumProp("color0", scene.NewSpectrum("0.4")),
			Color1:    ch.spectrumProp("color1", scene.NewSpectrum("0.2")),
			LineWidth: ch.floatProp("lineWidth", 0.01),
		}

	case "scale":
		inner, ierr := c.singleNestedTexture(ch)
		if ierr != nil {
			return nil, ierr
		}
		t.Kind = scene.TextureScale
		t.Scale = &scene.ScaleTexture{
			Scale: ch.floatProp("scale", 1),
			Inner: inner,
		}

	default:
		return nil, unknownVariantf("texture", variant)
	}

	id, ok := idAttr(start)
	if !ok {
		id = nextAnonID("texture")
	}
	c.Scene.InsertTexture(id, t)
	return t, nil
}

// singleNestedTexture reads the one <texture> a <texture type="scale">
// wraps. collectChildren has already decoded every <texture> child into
// ch.textures under its "name" attribute (normally absent), so the
// unnamed entry is taken when present and otherwise any one entry.
func (c *Context) singleNestedTexture(ch children) (*scene.Texture, error) {
	if t, ok := ch.textures[""]; ok {
		return t, nil
	}
	for _, t := range ch.textures {
		return t, nil
	}
	return nil, missingAttrf("<texture type=\"scale\"> requires a nested <texture>")
}

// probeImageDimensions best-effort opens filename and reads its format
// header for Width/Height, returning zero when the file cannot be opened
// or its format isn't recognized by any registered decoder. This is
// metadata only (spec.md Non-goals excludes texture evaluation); a
// missing file is never a parse error.
func probeImageDimensions(filename string) (int, int) {
	f, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
