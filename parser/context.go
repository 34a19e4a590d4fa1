package parser

import (
	"strconv"

	"github.com/scenekit/mitsuba-go/prop"
	"github.com/scenekit/mitsuba-go/scene"
	"github.com/scenekit/mitsuba-go/util/logger"
)

// Context threads the shared state every entity parse function needs: the
// property-layer cursor, the scene being built, the include stack for
// cycle detection, and the logger the three non-fatal logged cases
// (spec.md §4.8) report through rather than failing the parse.
type Context struct {
	// P is the property-layer cursor for the file currently being parsed.
	// It is nil before the first file is opened and is swapped out for the
	// duration of each <include> recursion.
	P      *prop.Parser
	Scene  *scene.Scene
	Log    *logger.Logger
	Strict bool

	// includeStack holds the absolute path of every file currently being
	// parsed, innermost last, so parseFileInto can reject a cycle (spec.md §4.5
	// "<include> cycle detection via path stack").
	includeStack []string
}

// NewContext returns a Context ready to parse a single top-level document,
// with no file open yet. Strict controls whether an unrecognized element
// is a fatal UnknownVariant or a silently-skipped subtree (spec.md §4.2/§4.8).
func NewContext(strict bool) *Context {
	return &Context{
		Scene:  scene.New(),
		Log:    logger.Default,
		Strict: strict,
	}
}

// anonIDCounter produces stable synthetic ids for anonymous <texture>/<medium>
// elements that are referenced only by nesting, never by id=, so they can
// still be recorded in the Scene's id maps without colliding with a real
// id (spec.md §4.5 "id-less top-level entities are logged, not fatal").
var anonIDCounter int

func nextAnonID(prefix string) string {
	anonIDCounter++
	return prefix + "#anon" + strconv.Itoa(anonIDCounter)
}
