// Package scene is the data model spec.md §3 describes: the Value/
// Spectrum tagged union, the BSDF/Texture/Emitter/Medium/Phase/Shape/
// Sensor sum types, and the Scene graph that owns them all by id. Nothing
// in this package reads XML or bytes; that is the job of prop, parser,
// and serialized, which all import scene for its types.
package scene

// Scene owns, by unique string identifier, every entity a parse produced
// (spec.md §3). All entities are constructed during parsing and are
// immutable thereafter; Scene owns them until it is discarded.
type Scene struct {
	BSDFs    map[string]*BSDF
	Textures map[string]*Texture
	Media    map[string]*Medium

	// NamedShapes holds shapes with an id= attribute, referenceable as
	// instance targets or shape-groups. AnonymousShapes holds shapes
	// with no id, in the order they were parsed.
	NamedShapes     map[string]*Shape
	AnonymousShapes []*Shape

	// namedShapeOrder records the id of each named shape the first time
	// it is inserted, so a consumer that wants spec.md §6's "named
	// entities in insertion order, then anonymous shapes in appearance
	// order" traversal doesn't have to rely on map iteration. A later
	// <include> overwrite of the same id (last-writer-wins, spec.md
	// §4.5) keeps its original position.
	namedShapeOrder []string

	Sensors  []*Sensor
	Emitters []*Emitter
}

// New returns an empty Scene ready for incremental population by the
// scene driver.
func New() *Scene {
	return &Scene{
		BSDFs:       make(map[string]*BSDF),
		Textures:    make(map[string]*Texture),
		Media:       make(map[string]*Medium),
		NamedShapes: make(map[string]*Shape),
	}
}

// InsertBSDF inserts b under id, overwriting any prior entry. <include>
// composition is last-writer-wins on id collisions (spec.md §4.5), so
// this is a plain overwrite rather than a uniqueness check.
func (s *Scene) InsertBSDF(id string, b *BSDF) { s.BSDFs[id] = b }

// InsertTexture inserts t under id, overwriting any prior entry.
func (s *Scene) InsertTexture(id string, t *Texture) { s.Textures[id] = t }

// InsertMedium inserts m under id, overwriting any prior entry.
func (s *Scene) InsertMedium(id string, m *Medium) { s.Media[id] = m }

// InsertNamedShape inserts sh under id, overwriting any prior entry.
func (s *Scene) InsertNamedShape(id string, sh *Shape) {
	if _, exists := s.NamedShapes[id]; !exists {
		s.namedShapeOrder = append(s.namedShapeOrder, id)
	}
	s.NamedShapes[id] = sh
}

// OrderedNamedShapeIDs returns every named shape's id in first-insertion
// order (spec.md §6).
func (s *Scene) OrderedNamedShapeIDs() []string {
	return s.namedShapeOrder
}

// AddAnonymousShape appends sh to the anonymous shape sequence, preserving
// appearance order (spec.md §6 "OBJ/MTL output").
func (s *Scene) AddAnonymousShape(sh *Shape) {
	s.AnonymousShapes = append(s.AnonymousShapes, sh)
}

// AddSensor appends sn, preserving parse order.
func (s *Scene) AddSensor(sn *Sensor) { s.Sensors = append(s.Sensors, sn) }

// AddEmitter appends e, preserving parse order.
func (s *Scene) AddEmitter(e *Emitter) { s.Emitters = append(s.Emitters, e) }

// LookupBSDF resolves a by-id BSDF reference, the same eager-resolution
// policy spec.md §9 describes (cloned/shared at parse time, never a
// forward reference).
func (s *Scene) LookupBSDF(id string) (*BSDF, bool) {
	b, ok := s.BSDFs[id]
	return b, ok
}

// LookupTexture resolves a by-id Texture reference.
func (s *Scene) LookupTexture(id string) (*Texture, bool) {
	t, ok := s.Textures[id]
	return t, ok
}

// LookupMedium resolves a by-id Medium reference.
func (s *Scene) LookupMedium(id string) (*Medium, bool) {
	m, ok := s.Media[id]
	return m, ok
}

// LookupShape resolves a by-id named Shape reference (instance targets,
// shape-groups referenced by id).
func (s *Scene) LookupShape(id string) (*Shape, bool) {
	sh, ok := s.NamedShapes[id]
	return sh, ok
}
