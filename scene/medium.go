package scene

// PhaseKind discriminates the Phase sum type (spec.md §3).
type PhaseKind int

const (
	PhaseIsotropic PhaseKind = iota
	PhaseHenyeyGreenstein
)

type Phase struct {
	Kind PhaseKind
	G    float64 // valid when Kind == PhaseHenyeyGreenstein
}

// MediumKind discriminates the Medium sum type. spec.md §3 names only
// Homogeneous; the field is kept so a future medium variant has a home
// without breaking the type.
type MediumKind int

const (
	MediumHomogeneous MediumKind = iota
)

type Medium struct {
	Kind MediumKind

	SigmaA Spectrum
	SigmaS Spectrum
	Scale  float64
	Phase  Phase
}
