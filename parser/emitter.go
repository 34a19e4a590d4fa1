package parser

import (
	"encoding/xml"

	"github.com/scenekit/mitsuba-go/scene"
	"github.com/scenekit/mitsuba-go/xform"
)

// parseEmitter decodes a top-level <emitter type="..."> and records it in
// the Scene's ordered Emitter sequence (spec.md §3/§4.5). A <emitter>
// nested inside a <shape> (area emitters only) is built the same way but
// owned by the shape's ShapeOption instead; see buildEmitter.
func (c *Context) parseEmitter(start xml.StartElement) (*scene.Emitter, error) {
	e, err := c.buildEmitter(start)
	if err != nil {
		return nil, err
	}
	c.Scene.AddEmitter(e)
	return e, nil
}

// buildEmitter decodes one <emitter type="..."> element without recording
// it anywhere, so both the top-level driver and a <shape>'s nested area
// emitter can share the same construction logic. Its <transform
// name="toWorld"> child, when present, is captured before dispatching on
// the variant since every emitter kind carries the same Transform/
// SamplingWeight pair at the top level.
func (c *Context) buildEmitter(start xml.StartElement) (*scene.Emitter, error) {
	variant, err := c.typeAttr(start)
	if err != nil {
		return nil, err
	}

	keep := map[string]bool{"transform": true}
	ch, err := c.collectChildren(start, keep)
	if err != nil {
		return nil, err
	}

	e := &scene.Emitter{
		Transform:      c.parseToWorld(ch, "toWorld"),
		SamplingWeight: ch.floatProp("samplingWeight", 1.0),
	}

	switch variant {
	case "area":
		e.Kind = scene.EmitterArea
		e.Area = &scene.AreaEmitter{Radiance: ch.spectrumProp("radiance", scene.NewSpectrum("1"))}

	case "point":
		pos, _ := ch.point3Prop("position")
		e.Kind = scene.EmitterPoint
		e.Point = &scene.PointEmitter{
			Intensity: ch.spectrumProp("intensity", scene.NewSpectrum("1")),
			Position:  pos,
		}

	case "pointnormal":
		pos, _ := ch.point3Prop("position")
		norm, _ := ch.vector3Prop("normal")
		e.Kind = scene.EmitterPointNormal
		e.PointNormal = &scene.PointNormalEmitter{
			Intensity: ch.spectrumProp("intensity", scene.NewSpectrum("1")),
			Position:  pos,
			Normal:    norm,
		}

	case "spot":
		var tex *scene.Texture
		if t, ok := ch.textures[""]; ok {
			tex = t
		} else if t, ok := ch.textures["texture"]; ok {
			tex = t
		}
		e.Kind = scene.EmitterSpot
		e.Spot = &scene.SpotEmitter{
			Intensity:   ch.spectrumProp("intensity", scene.NewSpectrum("1")),
			CutoffAngle: ch.floatProp("cutoffAngle", 20),
			BeamWidth:   ch.floatProp("beamWidth", ch.floatProp("cutoffAngle", 20)*0.75),
			Texture:     tex,
		}

	case "directional":
		dir, _ := ch.vector3Prop("direction")
		e.Kind = scene.EmitterDirectional
		e.Directional = &scene.DirectionalEmitter{
			Irradiance: ch.spectrumProp("irradiance", scene.NewSpectrum("1")),
			Direction:  dir,
		}

	case "collimated":
		e.Kind = scene.EmitterCollimated
		e.Collimated = &scene.CollimatedEmitter{Power: ch.spectrumProp("power", scene.NewSpectrum("1"))}

	case "constant":
		e.Kind = scene.EmitterConstant
		e.Constant = &scene.ConstantEmitter{Radiance: ch.spectrumProp("radiance", scene.NewSpectrum("1"))}

	case "envmap":
		e.Kind = scene.EmitterEnvMap
		e.EnvMap = &scene.EnvMapEmitter{
			Filename: ch.stringProp("filename", ""),
			Scale:    ch.floatProp("scale", 1),
			Gamma:    ch.floatProp("gamma", 0),
			Cache:    ch.boolProp("cache", true),
		}

	case "sunsky", "sun", "sky":
		sunsky, serr := c.parseSunSky(ch)
		if serr != nil {
			return nil, serr
		}
		e.Kind = scene.EmitterSunSky
		e.SunSky = sunsky

	default:
		return nil, unknownVariantf("emitter", variant)
	}

	return e, nil
}

func (c *Context) parseSunSky(ch children) (*scene.SunSkyEmitter, error) {
	s := &scene.SunSkyEmitter{
		Turbidity:  ch.floatProp("turbidity", 3),
		Resolution: int(ch.floatProp("resolution", 512)),
		SunScale:   ch.floatProp("sunScale", 1),
		SkyScale:   ch.floatProp("skyScale", 1),
	}
	if dir, ok := ch.vector3Prop("sunDirection"); ok {
		s.DirectionKind = scene.SunDirectionExplicit
		s.SunDirection = dir
		return s, nil
	}
	s.DirectionKind = scene.SunDirectionEphemeris
	s.Ephemeris = &scene.SunEphemeris{
		Year:      int(ch.floatProp("year", 2010)),
		Month:     int(ch.floatProp("month", 7)),
		Day:       int(ch.floatProp("day", 10)),
		Hour:      int(ch.floatProp("hour", 15)),
		Minute:    int(ch.floatProp("minute", 0)),
		Second:    int(ch.floatProp("second", 0)),
		Latitude:  ch.floatProp("latitude", 35.6894),
		Longitude: ch.floatProp("longitude", 139.6917),
		Timezone:  ch.floatProp("timezone", 9),
	}
	return s, nil
}

// parseToWorld resolves a named <transform> child into a scene.Transform,
// defaulting to identity when absent (spec.md §4.3/§4.4).
func (c *Context) parseToWorld(ch children, name string) scene.Transform {
	for _, n := range ch.nested {
		if n.start.Name.Local == "transform" && n.name == name {
			built, err := c.buildTransform(n.start)
			if err != nil {
				return scene.IdentityTransform()
			}
			return built
		}
	}
	return scene.IdentityTransform()
}

// buildTransform walks a <transform> element's primitive children
// (translate/scale/rotate/matrix/lookat) through xform.Builder (spec.md
// §4.3).
func (c *Context) buildTransform(start xml.StartElement) (scene.Transform, error) {
	builder := xform.NewBuilder()
	for {
		child, ok, err := c.P.NextChild(start.Name)
		if err != nil {
			return scene.Transform{}, err
		}
		if !ok {
			break
		}
		if perr := c.applyTransformPrimitive(builder, child); perr != nil {
			return scene.Transform{}, perr
		}
	}
	return builder.Build(), nil
}

func (c *Context) applyTransformPrimitive(b *xform.Builder, start xml.StartElement) error {
	defer c.P.Skip(start)
	switch start.Name.Local {
	case "translate":
		x, y, z := c.xyzAttr(start)
		b.Translate(x, y, z)
	case "scale":
		if v, ok, _ := c.P.ResolvedAttr(start, "value"); ok {
			s := parseFloat32(v)
			b.Scale(s, s, s)
			return nil
		}
		x, y, z := c.xyzAttrDefault(start, 1)
		b.Scale(x, y, z)
	case "rotate":
		x, y, z := c.xyzAttr(start)
		angle := float32(0)
		if v, ok, _ := c.P.ResolvedAttr(start, "angle"); ok {
			angle = parseFloat32(v)
		}
		b.Rotate(x, y, z, angle)
	case "lookat":
		origin := c.point32Attr(start, "origin")
		target := c.point32Attr(start, "target")
		up := c.point32Attr(start, "up")
		b.LookAt(origin, target, up)
	case "matrix":
		if v, ok, _ := c.P.ResolvedAttr(start, "value"); ok {
			var m [16]float32
			fields := splitFields(v)
			for i := 0; i < 16 && i < len(fields); i++ {
				m[i] = parseFloat32(fields[i])
			}
			b.Matrix(m)
		}
	}
	return nil
}
