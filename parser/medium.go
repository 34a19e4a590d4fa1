package parser

import (
	"encoding/xml"

	"github.com/scenekit/mitsuba-go/prop"
	"github.com/scenekit/mitsuba-go/scene"
)

var mediumKeep = map[string]bool{"phase": true}

// parseMedium decodes one <medium type="..."> element (spec.md §3). Only
// "homogeneous" is named by the spec; any other type name is a fatal
// UnknownVariant.
func (c *Context) parseMedium(start xml.StartElement) (*scene.Medium, error) {
	variant, err := c.typeAttr(start)
	if err != nil {
		return nil, err
	}
	if variant != "homogeneous" {
		return nil, unknownVariantf("medium", variant)
	}

	ch, err := c.collectChildren(start, mediumKeep)
	if err != nil {
		return nil, err
	}

	m := &scene.Medium{
		Kind:   scene.MediumHomogeneous,
		SigmaA: ch.spectrumProp("sigmaA", scene.NewSpectrum("1")),
		SigmaS: ch.spectrumProp("sigmaS", scene.NewSpectrum("1")),
		Scale:  ch.floatProp("scale", 1),
		Phase:  c.parsePhase(ch),
	}

	id, ok := idAttr(start)
	if !ok {
		id = nextAnonID("medium")
	}
	c.Scene.InsertMedium(id, m)
	return m, nil
}

func (c *Context) parsePhase(ch children) scene.Phase {
	nested, ok := ch.firstNestedByTag("phase")
	if !ok {
		return scene.Phase{Kind: scene.PhaseIsotropic}
	}
	variant, _ := prop.Attr(nested.start, "type")
	// A <phase> element's own children are only ever the "g" float for
	// hg, decoded by a plain collectChildren pass with no kept tags.
	inner, err := c.collectChildren(nested.start, nil)
	if err != nil {
		return scene.Phase{Kind: scene.PhaseIsotropic}
	}
	switch variant {
	case "hg":
		return scene.Phase{Kind: scene.PhaseHenyeyGreenstein, G: inner.floatProp("g", 0)}
	default:
		return scene.Phase{Kind: scene.PhaseIsotropic}
	}
}
