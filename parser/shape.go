package parser

import (
	"encoding/xml"

	"github.com/scenekit/mitsuba-go/scene"
)

var shapeKeep = map[string]bool{
	"transform": true,
	"bsdf":      true,
	"emitter":   true,
}

// parseShape decodes one <shape type="..."> element (spec.md §3/§4.4).
// The common ShapeOption set (flipNormals, a nested or referenced BSDF,
// transform, emitter, interior/exterior media) is read before dispatching
// on the variant, except for shapegroup which populates only its children.
func (c *Context) parseShape(start xml.StartElement) (*scene.Shape, error) {
	variant, err := c.typeAttr(start)
	if err != nil {
		return nil, err
	}

	// shapegroup's only meaningful children are nested <shape> elements
	// (spec.md §3 invariant: a ShapeGroup never populates BSDF/Transform/
	// Emitter on itself), so it walks start's subtree directly instead of
	// through the shared collectChildren pass the other variants use.
	if variant == "shapegroup" {
		kids, cerr := c.parseShapeGroupChildren(start)
		if cerr != nil {
			return nil, cerr
		}
		sh := &scene.Shape{Kind: scene.ShapeGroup, GroupChildren: kids}
		c.registerShape(start, sh)
		return sh, nil
	}

	ch, err := c.collectChildren(start, shapeKeep)
	if err != nil {
		return nil, err
	}

	sh := &scene.Shape{}

	// An instance's nested <ref> names the target shape, not a bsdf id
	// (spec.md §3 invariant: Instance carries only its option set plus a
	// target id), so the shared option parser must not try to resolve it
	// as a material reference.
	opt, instanceTargetID, oerr := c.parseShapeOption(ch, variant == "instance")
	if oerr != nil {
		return nil, oerr
	}
	sh.Option = opt

	switch variant {
	case "serialized":
		sh.Kind = scene.ShapeSerialized
		sh.Serialized = &scene.SerializedShape{
			Filename:   ch.stringProp("filename", ""),
			ShapeIndex: int(ch.floatProp("shapeIndex", 0)),
		}

	case "obj":
		sh.Kind = scene.ShapeObj
		sh.Obj = &scene.ObjShape{Filename: ch.stringProp("filename", "")}

	case "ply":
		sh.Kind = scene.ShapePly
		sh.Ply = &scene.PlyShape{Filename: ch.stringProp("filename", "")}

	case "cube":
		sh.Kind = scene.ShapeCube
		sh.Cube = &scene.CubeShape{}

	case "sphere":
		center, _ := ch.point3Prop("center")
		sh.Kind = scene.ShapeSphere
		sh.Sphere = &scene.SphereShape{
			Center: center,
			Radius: ch.floatProp("radius", 1),
		}

	case "cylinder":
		p0, _ := ch.point3Prop("p0")
		p1, _ := ch.point3Prop("p1")
		sh.Kind = scene.ShapeCylinder
		sh.Cylinder = &scene.CylinderShape{
			P0:     p0,
			P1:     p1,
			Radius: ch.floatProp("radius", 1),
		}

	case "rectangle":
		sh.Kind = scene.ShapeRectangle
		sh.Rectangle = &scene.RectangleShape{}

	case "disk":
		sh.Kind = scene.ShapeDisk
		sh.Disk = &scene.DiskShape{}

	case "instance":
		sh.Kind = scene.ShapeInstance
		sh.Instance = &scene.InstanceShape{TargetID: instanceTargetID}

	default:
		return nil, unknownVariantf("shape", variant)
	}

	c.registerShape(start, sh)
	return sh, nil
}

// parseShapeGroupChildren walks a <shapegroup>'s direct <shape> children,
// recursing into parseShape for each.
func (c *Context) parseShapeGroupChildren(start xml.StartElement) ([]*scene.Shape, error) {
	var out []*scene.Shape
	for {
		child, ok, err := c.P.NextChild(start.Name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if child.Name.Local != "shape" {
			if serr := c.P.SkipOrError(child, "<shapegroup> child <"+child.Name.Local+">"); serr != nil {
				return nil, serr
			}
			continue
		}
		kid, kerr := c.parseShape(child)
		if kerr != nil {
			return nil, kerr
		}
		out = append(out, kid)
	}
}

// parseShapeOption reads the ShapeOption every concrete shape carries,
// plus - only for an instance - the target id its anonymous <ref>
// resolves to (spec.md §3/§4.4). isInstance suppresses BSDF resolution
// entirely, since an instance's own ShapeOption never carries a material.
func (c *Context) parseShapeOption(ch children, isInstance bool) (opt scene.ShapeOption, instanceTarget string, err error) {
	opt.FlipNormal = ch.boolProp("flipNormals", false)

	if nested, ok := ch.firstNestedByTag("transform"); ok {
		t, terr := c.buildTransform(nested.start)
		if terr != nil {
			return opt, "", terr
		}
		opt.Transform = &t
	}

	if !isInstance {
		if nested, ok := ch.firstNestedByTag("bsdf"); ok {
			b, berr := c.parseBSDF(nested.start)
			if berr != nil {
				return opt, "", berr
			}
			opt.BSDF = b
		} else if v, ok := ch.props["bsdf"]; ok && v.Kind == scene.KindRef {
			// A named <ref name="bsdf" id="…"/> binds the shape's BSDF
			// even when an inline <bsdf> is absent (spec.md §4.4 example).
			id, _ := v.AsRef()
			b, found := c.Scene.LookupBSDF(id)
			if !found {
				return opt, "", scene.Errf(scene.UnresolvedReference, "shape <ref name=\"bsdf\" id=%q> does not resolve to a known bsdf", id)
			}
			opt.BSDF = b
		}
	}

	// Anonymous <ref id="…"/> children resolve in order (spec.md §4.4): for
	// a plain shape, the first one matching a BSDF id binds opt.BSDF (if
	// not already bound above); for an instance, the first one matching a
	// named Shape id becomes the instance target. A ref matching neither
	// kind for its context is an unresolved reference.
	for _, id := range ch.anonymousRefs {
		if isInstance {
			if _, found := c.Scene.LookupShape(id); found {
				if instanceTarget == "" {
					instanceTarget = id
				}
				continue
			}
			return opt, "", scene.Errf(scene.UnresolvedReference, "<shape type=\"instance\"> <ref id=%q> does not resolve to a known shape id", id)
		}
		if b, found := c.Scene.LookupBSDF(id); found {
			if opt.BSDF == nil {
				opt.BSDF = b
			}
			continue
		}
		return opt, "", scene.Errf(scene.UnresolvedReference, "shape <ref id=%q> does not resolve to a known bsdf", id)
	}
	if isInstance && instanceTarget == "" {
		return opt, "", missingAttrf("<shape type=\"instance\"> requires a nested <ref> to a known shape id")
	}

	if nested, ok := ch.firstNestedByTag("emitter"); ok {
		e, eerr := c.buildEmitter(nested.start)
		if eerr != nil {
			return opt, "", eerr
		}
		if e.Kind == scene.EmitterArea {
			opt.Emitter = e.Area
		}
	}

	if name := ch.stringProp("interior", ""); name != "" {
		if m, ok := c.Scene.LookupMedium(name); ok {
			opt.Interior = m
		}
	}
	if name := ch.stringProp("exterior", ""); name != "" {
		if m, ok := c.Scene.LookupMedium(name); ok {
			opt.Exterior = m
		}
	}

	return opt, instanceTarget, nil
}

func (c *Context) registerShape(start xml.StartElement, sh *scene.Shape) {
	if id, ok := idAttr(start); ok {
		c.Scene.InsertNamedShape(id, sh)
		return
	}
	c.Scene.AddAnonymousShape(sh)
}
