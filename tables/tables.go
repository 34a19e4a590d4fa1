// Package tables holds the fixed material dictionaries consulted while
// parsing BSDF properties: the index-of-refraction lookup used by
// dielectric-family materials, and the precomputed conductor (eta, kappa)
// RGB triples used by conductor-family materials. Both are embedded YAML
// documents decoded once at package init, the same "declarative data as
// YAML" idiom the teacher uses to load a UI tree (gui.Builder).
package tables

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed tables_ior.yaml
var iorYAML []byte

//go:embed tables_conductor.yaml
var conductorYAML []byte

// RGB is a plain (r,g,b) triple, used here instead of math32.Color so
// this package stays independent from the render-facing vector kernel.
type RGB struct {
	R, G, B float64
}

// Conductor holds a conductor material's (eta, kappa) RGB reduction.
type Conductor struct {
	Eta RGB
	K   RGB
}

var (
	iorTable       map[string]float64
	conductorTable map[string]Conductor
)

func init() {
	raw := map[string]float64{}
	if err := yaml.Unmarshal(iorYAML, &raw); err != nil {
		panic(fmt.Sprintf("tables: malformed embedded IOR table: %v", err))
	}
	iorTable = make(map[string]float64, len(raw))
	for name, v := range raw {
		iorTable[strings.ToLower(name)] = v
	}

	type conductorEntry struct {
		Eta [3]float64 `yaml:"eta"`
		K   [3]float64 `yaml:"k"`
	}
	rawC := map[string]conductorEntry{}
	if err := yaml.Unmarshal(conductorYAML, &rawC); err != nil {
		panic(fmt.Sprintf("tables: malformed embedded conductor table: %v", err))
	}
	conductorTable = make(map[string]Conductor, len(rawC))
	for name, v := range rawC {
		conductorTable[name] = Conductor{
			Eta: RGB{v.Eta[0], v.Eta[1], v.Eta[2]},
			K:   RGB{v.K[0], v.K[1], v.K[2]},
		}
	}
}

// IOR looks up a named index of refraction. The lookup is case-insensitive
// since scene files use a mix of conventions ("air", "Air", "BK7").
func IOR(name string) (float64, bool) {
	v, ok := iorTable[strings.ToLower(name)]
	return v, ok
}

// ConductorByName looks up a conductor's (eta, kappa) by its exact,
// case-sensitive material key (the convention used by every scene this
// parser has been fed: "Cu", "Au", "Ag", ...).
func ConductorByName(name string) (Conductor, bool) {
	c, ok := conductorTable[name]
	return c, ok
}
