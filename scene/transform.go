package scene

import "github.com/scenekit/mitsuba-go/math32"

// Transform is a 4x4 homogeneous matrix (spec.md §3), composed left to
// right by the order its XML sub-elements appear (xform.Builder does the
// composing; this package only names the resulting type so every entity
// that carries a transform can share it without an import cycle).
type Transform = math32.Matrix4

// IdentityTransform returns the identity matrix, the default for every
// optional <transform> sub-element spec.md names.
func IdentityTransform() Transform {
	var m Transform
	m.Identity()
	return m
}
