package prop

import (
	"encoding/xml"
	"strconv"

	"github.com/scenekit/mitsuba-go/math32"
	"github.com/scenekit/mitsuba-go/scene"
)

// leafTags enumerates the element names the property layer decodes
// directly into a scene.Value (spec.md §4.1/§4.2). Anything else is an
// entity element (<bsdf>, <texture>, ...) a parser-level Handler decodes
// itself.
var leafTags = map[string]bool{
	"float":    true,
	"integer":  true,
	"boolean":  true,
	"string":   true,
	"spectrum": true,
	"rgb":      true,
	"vector":   true,
	"point":    true,
	"ref":      true,
}

// IsLeaf reports whether name is one of the property leaf element types.
func IsLeaf(name string) bool {
	return leafTags[name]
}

// ReadLeaf decodes start - one of the leafTags element names - into a
// scene.Value, consuming and discarding its subtree (leaf elements never
// have meaningful children; the "value" comes entirely from attributes).
// The name= attribute, when present, is returned separately since its
// handling (binding into a property set vs. an anonymous slot) is a
// parser-level concern.
func (p *Parser) ReadLeaf(start xml.StartElement) (propName string, val scene.Value, err *scene.Error) {
	propName, _ = Attr(start, "name")
	defer func() {
		if skipErr := p.Skip(start); skipErr != nil && err == nil {
			err = scene.Wrap(scene.Io, start.Name.Local, skipErr)
		}
	}()

	switch start.Name.Local {
	case "float":
		raw, rerr := p.RequireAttr(start, "value")
		if rerr != nil {
			return propName, scene.Value{}, rerr
		}
		f, perr := strconv.ParseFloat(raw, 64)
		if perr != nil {
			return propName, scene.Value{}, scene.Wrap(scene.ValueMismatch, "float value", perr)
		}
		return propName, scene.FloatValue(f), nil

	case "integer":
		raw, rerr := p.RequireAttr(start, "value")
		if rerr != nil {
			return propName, scene.Value{}, rerr
		}
		i, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return propName, scene.Value{}, scene.Wrap(scene.ValueMismatch, "integer value", perr)
		}
		return propName, scene.IntValue(i), nil

	case "boolean":
		raw, rerr := p.RequireAttr(start, "value")
		if rerr != nil {
			return propName, scene.Value{}, rerr
		}
		b, berr := parseBool(raw)
		if berr != nil {
			return propName, scene.Value{}, berr
		}
		return propName, scene.BoolValue(b), nil

	case "string":
		raw, rerr := p.RequireAttr(start, "value")
		if rerr != nil {
			return propName, scene.Value{}, rerr
		}
		return propName, scene.StringValue(raw), nil

	case "spectrum":
		raw, rerr := p.RequireAttr(start, "value")
		if rerr != nil {
			return propName, scene.Value{}, rerr
		}
		return propName, scene.SpectrumValue(scene.NewSpectrum(raw)), nil

	case "rgb":
		raw, rerr := p.RequireAttr(start, "value")
		if rerr != nil {
			return propName, scene.Value{}, rerr
		}
		return propName, scene.SpectrumValue(scene.NewSpectrum(raw)), nil

	case "vector":
		v, verr := p.readXYZ(start)
		if verr != nil {
			return propName, scene.Value{}, verr
		}
		return propName, scene.Vector3Value(v), nil

	case "point":
		v, verr := p.readXYZ(start)
		if verr != nil {
			return propName, scene.Value{}, verr
		}
		return propName, scene.Point3Value(v), nil

	case "ref":
		id, _ := Attr(start, "id")
		return propName, scene.RefValue(id), nil
	}

	return propName, scene.Value{}, scene.Errf(scene.UnknownVariant, "<%s> is not a property leaf", start.Name.Local)
}

// readXYZ decodes the x/y/z attributes a <vector>/<point> carries,
// defaulting any omitted axis to 0 (spec.md §4.1 "vector/point default
// missing axes to zero").
func (p *Parser) readXYZ(start xml.StartElement) (math32.Vector3, *scene.Error) {
	var out math32.Vector3
	axes := []*float32{&out.X, &out.Y, &out.Z}
	for i, axis := range []string{"x", "y", "z"} {
		raw, ok, rerr := p.ResolvedAttr(start, axis)
		if rerr != nil {
			return out, rerr
		}
		if !ok {
			continue
		}
		f, perr := strconv.ParseFloat(raw, 32)
		if perr != nil {
			return out, scene.Wrap(scene.ValueMismatch, axis, perr)
		}
		*axes[i] = float32(f)
	}
	return out, nil
}

func parseBool(raw string) (bool, *scene.Error) {
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, scene.Errf(scene.ValueMismatch, "boolean value %q", raw)
	}
}
