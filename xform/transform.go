// Package xform implements the transform builder (spec.md §4.3): it
// accumulates affine transforms from a sub-language of translate/scale/
// rotate/matrix/lookat primitives into a single 4x4 homogeneous matrix,
// reusing the teacher's math32.Matrix4 kernel rather than hand-rolling
// matrix arithmetic.
package xform

import (
	"github.com/scenekit/mitsuba-go/math32"
)

// Builder accumulates a sequence of transform primitives in document
// order, right-multiplying each into the running matrix (spec.md §4.3
// "Tie-breaks": repeated primitives compose by right-multiplication in
// source order).
//
// Convention (spec.md §9 "Transform transposition" asks every
// implementation to document its choice rather than carry the
// transposition as a runtime toggle): every primitive constructor below
// - math32.Matrix4's MakeTranslation/MakeScale/MakeRotationAxis, and the
// Matrix/LookAt constructors here - already produces a matrix meant to be
// applied as v' = M*v (column vectors, translation in the last column).
// Composing those matrices with Multiply and handing the accumulator back
// unchanged keeps every primitive correct on its own; Build performs no
// additional transpose.
type Builder struct {
	acc math32.Matrix4
}

// NewBuilder returns a Builder seeded with the identity matrix.
func NewBuilder() *Builder {
	b := &Builder{}
	b.acc.Identity()
	return b
}

func (b *Builder) compose(primitive *math32.Matrix4) {
	b.acc.Multiply(primitive)
}

// Translate right-multiplies a translation by (x, y, z).
func (b *Builder) Translate(x, y, z float32) {
	var m math32.Matrix4
	m.MakeTranslation(x, y, z)
	b.compose(&m)
}

// Scale right-multiplies a non-uniform scale by (x, y, z). A uniform
// `scale value="s"` is just Scale(s, s, s) at the call site.
func (b *Builder) Scale(x, y, z float32) {
	var m math32.Matrix4
	m.MakeScale(x, y, z)
	b.compose(&m)
}

// Rotate right-multiplies an axis-angle rotation. angleDeg follows the
// positive convention this spec adopts (spec.md §9 "rotate primitive's
// angle sign"): a positive angle is a counter-clockwise rotation about
// the given axis when viewed from the positive axis looking toward the
// origin, matching math32.Matrix4.MakeRotationAxis directly with no sign
// flip.
func (b *Builder) Rotate(axisX, axisY, axisZ, angleDeg float32) {
	axis := math32.Vector3{X: axisX, Y: axisY, Z: axisZ}
	axis.Normalize()
	var m math32.Matrix4
	m.MakeRotationAxis(&axis, math32.DegToRad(angleDeg))
	b.compose(&m)
}

// Matrix right-multiplies an explicit matrix given as 16 row-major
// values (spec.md §6 "Matrix value is 16 whitespace-separated floats,
// row-major"). Matrix4.Set takes its sixteen arguments in that same
// row-major order and stores them column-major internally, so the
// values pass straight through with no transposition.
func (b *Builder) Matrix(rowMajor [16]float32) {
	var m math32.Matrix4
	m.Set(
		rowMajor[0], rowMajor[1], rowMajor[2], rowMajor[3],
		rowMajor[4], rowMajor[5], rowMajor[6], rowMajor[7],
		rowMajor[8], rowMajor[9], rowMajor[10], rowMajor[11],
		rowMajor[12], rowMajor[13], rowMajor[14], rowMajor[15],
	)
	b.compose(&m)
}

// LookAt right-multiplies a view-style placement matrix (spec.md §4.3):
// forward = normalize(target-origin); right = -normalize(forward x up);
// newUp = forward x right; the resulting basis fills the matrix's first
// three columns with origin as the fourth, matching the v'=M*v
// convention every other primitive in this package uses.
func (b *Builder) LookAt(origin, target, up math32.Vector3) {
	forward := math32.Vector3{}
	forward.SubVectors(&target, &origin)
	forward.Normalize()

	upN := up
	upN.Normalize()

	right := math32.Vector3{}
	right.CrossVectors(&forward, &upN)
	right.Normalize()
	right.Negate()

	newUp := math32.Vector3{}
	newUp.CrossVectors(&forward, &right)

	var m math32.Matrix4
	m.Set(
		right.X, newUp.X, forward.X, origin.X,
		right.Y, newUp.Y, forward.Y, origin.Y,
		right.Z, newUp.Z, forward.Z, origin.Z,
		0, 0, 0, 1,
	)
	b.compose(&m)
}

// Build returns the accumulated transform (spec.md §9). An empty Builder
// (no primitives composed) yields the identity matrix.
func (b *Builder) Build() math32.Matrix4 {
	return b.acc
}
