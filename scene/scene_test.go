package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedNamedShapeIDsPreservesFirstInsertionOrder(t *testing.T) {
	s := New()
	s.InsertNamedShape("b", &Shape{Kind: ShapeCube})
	s.InsertNamedShape("a", &Shape{Kind: ShapeCube})
	s.InsertNamedShape("b", &Shape{Kind: ShapeSphere}) // overwrite, spec.md §4.5 last-writer-wins

	assert.Equal(t, []string{"b", "a"}, s.OrderedNamedShapeIDs())
	assert.Equal(t, ShapeSphere, s.NamedShapes["b"].Kind)
}

func TestLookupMissesReturnFalse(t *testing.T) {
	s := New()
	_, ok := s.LookupBSDF("nope")
	assert.False(t, ok)
	_, ok = s.LookupShape("nope")
	assert.False(t, ok)
}
