package parser

import (
	"encoding/xml"

	"github.com/scenekit/mitsuba-go/scene"
)

var sensorKeep = map[string]bool{"transform": true, "film": true, "sampler": true}

// parseSensor decodes one <sensor type="..."> element (spec.md §3/§4.4).
// Only the perspective variant is supported; any other type name is a
// fatal UnknownVariant, matching the Sensor type's own restriction.
func (c *Context) parseSensor(start xml.StartElement) (*scene.Sensor, error) {
	variant, err := c.typeAttr(start)
	if err != nil {
		return nil, err
	}
	if variant != "perspective" {
		return nil, unknownVariantf("sensor", variant)
	}

	ch, err := c.collectChildren(start, sensorKeep)
	if err != nil {
		return nil, err
	}

	s := &scene.Sensor{
		FOV:          ch.floatProp("fov", 53.13),
		FOVAxis:      ch.stringProp("fovAxis", "x"),
		ShutterOpen:  ch.floatProp("shutterOpen", 0),
		ShutterClose: ch.floatProp("shutterClose", 0),
		NearClip:     ch.floatProp("nearClip", 1e-2),
		FarClip:      ch.floatProp("farClip", 1e4),
		Film:         c.parseFilm(ch),
		ToWorld:      c.parseToWorld(ch, "toWorld"),
	}

	c.Scene.AddSensor(s)
	return s, nil
}

func (c *Context) parseFilm(ch children) scene.Film {
	nested, ok := ch.firstNestedByTag("film")
	if !ok {
		return scene.Film{Width: 768, Height: 576}
	}
	inner, err := c.collectChildren(nested.start, nil)
	if err != nil {
		return scene.Film{Width: 768, Height: 576}
	}
	return scene.Film{
		Width:  int(inner.floatProp("width", 768)),
		Height: int(inner.floatProp("height", 576)),
	}
}
