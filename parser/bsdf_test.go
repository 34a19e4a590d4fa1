package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scenekit/mitsuba-go/scene"
)

func TestParseBSDFRoughConductorAlwaysHasDistribution(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="roughconductor" id="metal">
			<string name="material" value="Au"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	b, ok := sc.LookupBSDF("metal")
	assert.True(t, ok)
	assert.Equal(t, scene.BSDFConductor, b.Kind)
	assert.NotNil(t, b.Conductor.Distribution)
	assert.Equal(t, "beckmann", b.Conductor.Distribution.Family)
}

func TestParseBSDFSmoothConductorHasNoDistribution(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="conductor" id="metal"/>
	</scene>`
	sc := mustParseString(t, doc)

	b, ok := sc.LookupBSDF("metal")
	assert.True(t, ok)
	assert.Nil(t, b.Conductor.Distribution)
}

func TestParseBSDFPhongFallsBackToLegacyReflectanceName(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="phong" id="p">
			<rgb name="reflectance" value="0.1,0.2,0.3"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	b, ok := sc.LookupBSDF("p")
	assert.True(t, ok)
	assert.False(t, b.Phong.DiffuseReflectance.IsTexture)
	rgb, err := b.Phong.DiffuseReflectance.Constant.ToRGB()
	assert.Nil(t, err)
	assert.InDelta(t, 0.1, rgb.R, 1e-6)
}

func TestParseBSDFPhongPrefersDiffuseReflectanceNameWhenBothPresent(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="phong" id="p">
			<rgb name="reflectance" value="0.9,0.9,0.9"/>
			<rgb name="diffuseReflectance" value="0.1,0.1,0.1"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	b, _ := sc.LookupBSDF("p")
	rgb, _ := b.Phong.DiffuseReflectance.Constant.ToRGB()
	assert.InDelta(t, 0.1, rgb.R, 1e-6)
}

func TestParseBSDFMixtureWeightsMixedSeparators(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="mixturebsdf" id="mix">
			<string name="weights" value="0.3, 0.7"/>
			<bsdf type="diffuse"/>
			<bsdf type="conductor"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	b, ok := sc.LookupBSDF("mix")
	assert.True(t, ok)
	assert.Equal(t, scene.BSDFMixture, b.Kind)
	assert.Equal(t, []float64{0.3, 0.7}, b.Mixture.Weights)
	assert.Equal(t, 2, len(b.Mixture.Children))
}

func TestParseBSDFTwoSidedAndMaskComposite(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="twosided" id="ts">
			<bsdf type="diffuse"/>
		</bsdf>
		<bsdf type="mask" id="m">
			<float name="opacity" value="0.5"/>
			<bsdf type="diffuse"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	ts, ok := sc.LookupBSDF("ts")
	assert.True(t, ok)
	assert.Equal(t, scene.BSDFDiffuse, ts.TwoSided.Inner.Kind)

	m, ok := sc.LookupBSDF("m")
	assert.True(t, ok)
	assert.Equal(t, scene.BSDFDiffuse, m.Mask.Inner.Kind)
}

func TestParseTextureCheckerboardAndScale(t *testing.T) {
	doc := `<scene version="2.1.0">
		<texture type="scale" id="scaled">
			<float name="scale" value="2.0"/>
			<texture type="checkerboard">
				<rgb name="color0" value="1,1,1"/>
				<rgb name="color1" value="0,0,0"/>
			</texture>
		</texture>
	</scene>`
	sc := mustParseString(t, doc)

	tex, ok := sc.LookupTexture("scaled")
	assert.True(t, ok)
	assert.Equal(t, scene.TextureScale, tex.Kind)
	assert.Equal(t, 2.0, tex.Scale.Scale)
	assert.Equal(t, scene.TextureCheckerboard, tex.Scale.Inner.Kind)
}

func TestParseBSDFWardDuerVariant(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="ward" id="w">
			<string name="variant" value="ward_duer"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	b, ok := sc.LookupBSDF("w")
	assert.True(t, ok)
	assert.Equal(t, scene.WardDuer, b.Ward.Variant)
}

func TestParseBSDFDiffuseReflectanceTextureRef(t *testing.T) {
	doc := `<scene version="2.1.0">
		<texture id="t" type="checkerboard"/>
		<bsdf type="diffuse" id="m">
			<ref name="reflectance" id="t"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	b, ok := sc.LookupBSDF("m")
	assert.True(t, ok)
	assert.True(t, b.Diffuse.Reflectance.IsTexture)
	tex, ok := sc.LookupTexture("t")
	assert.True(t, ok)
	assert.Same(t, tex, b.Diffuse.Reflectance.Texture)
}

func TestParseBSDFUnresolvedTextureRefIsFatal(t *testing.T) {
	dir := t.TempDir()
	doc := `<scene version="2.1.0">
		<bsdf type="diffuse" id="m">
			<ref name="reflectance" id="nosuchtexture"/>
		</bsdf>
	</scene>`
	path := filepath.Join(dir, "scene.xml")
	assert.Nil(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := ParseFile(path, false)
	assert.NotNil(t, err)
	serr, ok := err.(*scene.Error)
	assert.True(t, ok)
	assert.Equal(t, scene.UnresolvedReference, serr.Kind)
}

func TestParseBSDFMixtureFallsBackToMatRefs(t *testing.T) {
	doc := `<scene version="2.1.0">
		<bsdf type="diffuse" id="a"/>
		<bsdf type="conductor" id="b"/>
		<bsdf type="mixturebsdf" id="mix">
			<string name="weights" value="0.4, 0.6"/>
			<ref name="mat1" id="a"/>
			<ref name="mat2" id="b"/>
		</bsdf>
	</scene>`
	sc := mustParseString(t, doc)

	b, ok := sc.LookupBSDF("mix")
	assert.True(t, ok)
	assert.Equal(t, 2, len(b.Mixture.Children))
	assert.Equal(t, scene.BSDFDiffuse, b.Mixture.Children[0].Kind)
	assert.Equal(t, scene.BSDFConductor, b.Mixture.Children[1].Kind)
}

func TestParseBSDFMixtureMissingMatRefIsFatal(t *testing.T) {
	dir := t.TempDir()
	doc := `<scene version="2.1.0">
		<bsdf type="mixturebsdf" id="mix">
			<string name="weights" value="0.4, 0.6"/>
		</bsdf>
	</scene>`
	path := filepath.Join(dir, "scene.xml")
	assert.Nil(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := ParseFile(path, false)
	assert.NotNil(t, err)
	serr, ok := err.(*scene.Error)
	assert.True(t, ok)
	assert.Equal(t, scene.MissingAttribute, serr.Kind)
}

func TestParseBSDFUnknownVariantIsFatal(t *testing.T) {
	dir := t.TempDir()
	doc := `<scene version="2.1.0"><bsdf type="nonexistent" id="x"/></scene>`
	path := filepath.Join(dir, "scene.xml")
	assert.Nil(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := ParseFile(path, false)
	assert.NotNil(t, err)
	serr, ok := err.(*scene.Error)
	assert.True(t, ok)
	assert.Equal(t, scene.UnknownVariant, serr.Kind)
}
