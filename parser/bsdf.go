package parser

import (
	"encoding/xml"
	"fmt"

	"github.com/scenekit/mitsuba-go/scene"
)

// bsdfKeep lists the nested element tags a <bsdf> body may contain beyond
// plain property leaves and <texture> sub-definitions: other <bsdf>
// elements, for twosided/mask/mixture.
var bsdfKeep = map[string]bool{"bsdf": true}

// parseBSDF decodes one <bsdf type="..."> element into a *scene.BSDF
// (spec.md §3/§4.4). id, when non-empty, is recorded in the Scene's BSDF
// map; an id-less <bsdf> is logged and skipped, not fatal (spec.md §4.5),
// but the parsed value is still returned to and used by its caller.
func (c *Context) parseBSDF(start xml.StartElement) (*scene.BSDF, error) {
	variant, err := c.typeAttr(start)
	if err != nil {
		return nil, err
	}

	ch, err := c.collectChildren(start, bsdfKeep)
	if err != nil {
		return nil, err
	}

	b := &scene.BSDF{}
	switch variant {
	case "diffuse":
		// "diffuseReflectance" is read as an alias only when no
		// "reflectance" property or texture is present.
		key := "reflectance"
		_, hasProp := ch.props["reflectance"]
		_, hasTex := ch.textures["reflectance"]
		if !hasProp && !hasTex {
			key = "diffuseReflectance"
		}
		reflectance, rerr := c.colorSpectrum(ch, key, scene.NewSpectrum("0.5"))
		if rerr != nil {
			return nil, rerr
		}
		b.Kind = scene.BSDFDiffuse
		b.Diffuse = &scene.DiffuseBSDF{Reflectance: reflectance}

	case "roughdiffuse":
		reflectance, rerr := c.colorSpectrum(ch, "reflectance", scene.NewSpectrum("0.5"))
		if rerr != nil {
			return nil, rerr
		}
		alpha, aerr := c.colorFloat(ch, "alpha", 0.2)
		if aerr != nil {
			return nil, aerr
		}
		b.Kind = scene.BSDFRoughdiffuse
		b.Roughdiffuse = &scene.RoughdiffuseBSDF{
			Reflectance:   reflectance,
			Alpha:         alpha,
			UseFastApprox: ch.boolProp("useFastApprox", false),
		}

	case "phong":
		exponent, eerr := c.colorFloat(ch, "exponent", 30)
		if eerr != nil {
			return nil, eerr
		}
		specular, serr := c.colorSpectrum(ch, "specularReflectance", scene.NewSpectrum("0.2"))
		if serr != nil {
			return nil, serr
		}
		// Presence-based fallback (spec.md §9 decided): diffuseReflectance
		// only defaults when neither it nor "reflectance" is given.
		diffuse, derr := c.colorSpectrum(ch, diffuseReflectanceKey(ch), scene.NewSpectrum("0.5"))
		if derr != nil {
			return nil, derr
		}
		b.Kind = scene.BSDFPhong
		b.Phong = &scene.PhongBSDF{
			Exponent:            exponent,
			SpecularReflectance: specular,
			DiffuseReflectance:  diffuse,
		}

	case "ward":
		wv := wardVariantFromString(ch.stringProp("variant", "balanced"))
		specular, serr := c.colorSpectrum(ch, "specularReflectance", scene.NewSpectrum("0.2"))
		if serr != nil {
			return nil, serr
		}
		diffuse, derr := c.colorSpectrum(ch, "diffuseReflectance", scene.NewSpectrum("0.5"))
		if derr != nil {
			return nil, derr
		}
		b.Kind = scene.BSDFWard
		b.Ward = &scene.WardBSDF{
			Variant:             wv,
			Alpha:               *c.parseDistribution(ch, "beckmann", 0.1),
			SpecularReflectance: specular,
			DiffuseReflectance:  diffuse,
		}

	case "dielectric", "roughdielectric", "thindielectric":
		intIOR, extIOR := c.parseIORPair(ch, "bk7", "air")
		var dist *scene.Distribution
		if variant == "roughdielectric" {
			dist = c.parseDistribution(ch, "beckmann", 0.1)
		}
		specular, serr := c.colorSpectrum(ch, "specularReflectance", scene.NewSpectrum("1"))
		if serr != nil {
			return nil, serr
		}
		transmittance, terr := c.colorSpectrum(ch, "specularTransmittance", scene.NewSpectrum("1"))
		if terr != nil {
			return nil, terr
		}
		b.Kind = scene.BSDFDielectric
		b.Dielectric = &scene.DielectricBSDF{
			Distribution:          dist,
			IntIOR:                intIOR,
			ExtIOR:                extIOR,
			SpecularReflectance:   specular,
			SpecularTransmittance: transmittance,
			Thin:                  variant == "thindielectric",
		}

	case "conductor", "roughconductor":
		eta, k := c.parseConductorPair(ch)
		var dist *scene.Distribution
		if variant == "roughconductor" {
			dist = c.parseDistribution(ch, "beckmann", 0.1)
		}
		specular, serr := c.colorSpectrum(ch, "specularReflectance", scene.NewSpectrum("1"))
		if serr != nil {
			return nil, serr
		}
		b.Kind = scene.BSDFConductor
		b.Conductor = &scene.ConductorBSDF{
			Distribution:        dist,
			Eta:                 eta,
			K:                   k,
			ExtEta:              ch.floatProp("extEta", 1.0),
			SpecularReflectance: specular,
		}

	case "plastic", "roughplastic":
		intIOR, extIOR := c.parseIORPair(ch, "polypropylene", "air")
		var dist *scene.Distribution
		if variant == "roughplastic" {
			dist = c.parseDistribution(ch, "beckmann", 0.1)
		}
		specular, serr := c.colorSpectrum(ch, "specularReflectance", scene.NewSpectrum("1"))
		if serr != nil {
			return nil, serr
		}
		diffuse, derr := c.colorSpectrum(ch, "diffuseReflectance", scene.NewSpectrum("0.5"))
		if derr != nil {
			return nil, derr
		}
		b.Kind = scene.BSDFPlastic
		b.Plastic = &scene.PlasticBSDF{
			Distribution:        dist,
			IntIOR:              intIOR,
			ExtIOR:              extIOR,
			SpecularReflectance: specular,
			DiffuseReflectance:  diffuse,
			Nonlinear:           ch.boolProp("nonlinear", false),
		}

	case "twosided":
		inner, ierr := c.singleNestedBSDF(ch)
		if ierr != nil {
			return nil, ierr
		}
		b.Kind = scene.BSDFTwoSided
		b.TwoSided = &scene.TwoSidedBSDF{Inner: inner}

	case "mask":
		inner, ierr := c.singleNestedBSDF(ch)
		if ierr != nil {
			return nil, ierr
		}
		opacity, oerr := c.colorSpectrum(ch, "opacity", scene.NewSpectrum("0.5"))
		if oerr != nil {
			return nil, oerr
		}
		b.Kind = scene.BSDFMask
		b.Mask = &scene.MaskBSDF{
			Opacity: opacity,
			Inner:   inner,
		}

	case "mixturebsdf", "blendbsdf":
		weights, werr := c.parseMixtureWeights(ch.stringProp("weights", ""))
		if werr != nil {
			return nil, werr
		}
		kids, kerr := c.mixtureChildren(ch, variant, len(weights))
		if kerr != nil {
			return nil, kerr
		}
		b.Kind = scene.BSDFMixture
		b.Mixture = &scene.MixtureBSDF{Weights: weights, Children: kids}

	default:
		return nil, unknownVariantf("bsdf", variant)
	}

	c.registerBSDF(start, b)
	return b, nil
}

func (c *Context) singleNestedBSDF(ch children) (*scene.BSDF, error) {
	nested, ok := ch.firstNestedByTag("bsdf")
	if !ok {
		return nil, missingAttrf("<bsdf> composite requires a nested <bsdf>")
	}
	return c.parseBSDF(nested.start)
}

// mixtureChildren resolves a MixtureBSDF's children (spec.md §4.4):
// inline <bsdf> elements win when present; otherwise it consumes the
// per-weight mat1, mat2, ... refs from the property map, one per weight.
func (c *Context) mixtureChildren(ch children, variant string, numWeights int) ([]*scene.BSDF, error) {
	inline := ch.nestedByTag("bsdf")
	if len(inline) > 0 {
		var kids []*scene.BSDF
		for _, n := range inline {
			kid, kerr := c.parseBSDF(n.start)
			if kerr != nil {
				return nil, kerr
			}
			kids = append(kids, kid)
		}
		return kids, nil
	}

	kids := make([]*scene.BSDF, 0, numWeights)
	for i := 1; i <= numWeights; i++ {
		key := fmt.Sprintf("mat%d", i)
		v, ok := ch.props[key]
		if !ok || v.Kind != scene.KindRef {
			return nil, missingAttrf("<bsdf type=%q> has no inline <bsdf> children and no %q ref", variant, key)
		}
		id, _ := v.AsRef()
		kid, found := c.Scene.LookupBSDF(id)
		if !found {
			return nil, scene.Errf(scene.UnresolvedReference, "<bsdf type=%q> %s ref id=%q does not resolve to a known bsdf", variant, key, id)
		}
		kids = append(kids, kid)
	}
	return kids, nil
}

// registerBSDF records b under its id= attribute. A missing id is
// non-fatal but the bsdf is not retained in the Scene's id map (spec.md
// §4.5 "A missing id on a <bsdf> is non-fatal (skipped with warning)");
// the caller that parsed it inline (a shape's option set, a composite's
// wrapped bsdf) still holds and uses the value regardless.
func (c *Context) registerBSDF(start xml.StartElement, b *scene.BSDF) {
	id, ok := idAttr(start)
	if !ok {
		c.Log.Warn("id-less <bsdf type=%q>, skipping scene registration", bsdfVariantName(b))
		return
	}
	c.Scene.InsertBSDF(id, b)
}

func bsdfVariantName(b *scene.BSDF) string { return b.Kind.String() }

// diffuseReflectanceKey implements the presence-based fallback decided for
// Phong (spec.md §9): "diffuseReflectance" is preferred when present, the
// legacy "reflectance" name is accepted as a synonym otherwise.
func diffuseReflectanceKey(ch children) string {
	if _, ok := ch.props["diffuseReflectance"]; ok {
		return "diffuseReflectance"
	}
	if _, ok := ch.textures["diffuseReflectance"]; ok {
		return "diffuseReflectance"
	}
	return "reflectance"
}

func wardVariantFromString(s string) scene.WardVariant {
	switch s {
	case "ward":
		return scene.WardStandard
	case "ward_duer":
		return scene.WardDuer
	default:
		return scene.WardBalanced
	}
}
