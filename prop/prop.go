// Package prop implements the property layer (spec.md §4.2): walking the
// children of an entity element (<bsdf>, <texture>, <shape>, ...),
// resolving $default substitutions, and decoding the leaf property
// elements (float/integer/boolean/string/spectrum/rgb/vector/point/ref)
// into scene.Value. It knows nothing about any particular entity's
// semantics; parser builds BSDFs/Textures/Shapes/etc. on top of it.
//
// The walking style follows the teacher's loader/collada package
// (decNextChild/findAttrib: a manual token loop over xml.Decoder rather
// than struct-tag xml.Unmarshal), generalized for arbitrarily nested
// children since Mitsuba elements carry their value in attributes, not
// character data.
package prop

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/scenekit/mitsuba-go/scene"
)

// Defaults holds the top-level <default name="..." value="..."/> table a
// scene file declares before anything references $name (spec.md §4.2).
type Defaults map[string]string

// Resolve substitutes a single leading "$name" token in raw with its
// default value. Mitsuba only ever substitutes a whole attribute value,
// never a substring splice, so raw is matched in full against the "$"
// prefix (spec.md §4.2 "$default substitution").
func (d Defaults) Resolve(raw string) (string, *scene.Error) {
	if !strings.HasPrefix(raw, "$") {
		return raw, nil
	}
	name := raw[1:]
	val, ok := d[name]
	if !ok {
		return "", scene.Errf(scene.UnresolvedReference, "$%s", name)
	}
	return val, nil
}

// Parser walks one XML document's element tree. It is a thin adapter over
// xml.Decoder that buffers at most one lookahead token, the same scheme
// the teacher's collada decoder uses (lastToken).
type Parser struct {
	dec       *xml.Decoder
	lastToken xml.Token
	Strict    bool
	Defaults  Defaults
}

// New wraps r in a Parser with an empty defaults table.
func New(r io.Reader) *Parser {
	return &Parser{
		dec:      xml.NewDecoder(r),
		Defaults: make(Defaults),
	}
}

// RootElement advances past the XML prologue and returns the document's
// single root StartElement (always <scene> for a top-level file, but
// Include reuses this for nested documents too).
func (p *Parser) RootElement() (xml.StartElement, error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// NextChild returns the next direct child StartElement of parent, skipping
// CharData, Comment and ProcInst tokens (Mitsuba elements carry their
// value in attributes; character data between tags is formatting
// whitespace only). ok is false once parent's matching EndElement is
// reached, with err nil on the well-formed end of that subtree.
func (p *Parser) NextChild(parent xml.Name) (start xml.StartElement, ok bool, err error) {
	depth := 0
	for {
		tok, terr := p.next()
		if terr != nil {
			return xml.StartElement{}, false, terr
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if depth == 0 {
				return xml.StartElement{}, false, nil
			}
			depth--
		case xml.StartElement:
			if depth == 0 {
				return t, true, nil
			}
			// A StartElement seen while depth > 0 belongs to a deeper
			// subtree than the caller asked for; this only happens if a
			// caller reuses NextChild without consuming or skipping a
			// returned child, which is a programming error in this
			// package, not a malformed document. Treat it as skippable
			// to avoid an infinite loop.
			depth++
		}
	}
}

func (p *Parser) next() (xml.Token, error) {
	if p.lastToken != nil {
		t := p.lastToken
		p.lastToken = nil
		return t, nil
	}
	return p.dec.Token()
}

// Skip discards the entire subtree rooted at start, including its
// EndElement, by depth-counting nested Start/EndElements (spec.md §4.2
// "unknown elements are skipped as whole subtrees, not just their
// immediate tag").
func (p *Parser) Skip(start xml.StartElement) error {
	depth := 1
	for depth > 0 {
		tok, err := p.next()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// SkipOrError implements the strict-mode policy for an element a caller's
// Handler did not recognize (spec.md §4.2 "Non-goals" excludes schema
// validation, but unknown elements must still be accounted for): in
// strict mode it is a fatal UnknownVariant, otherwise the subtree is
// silently skipped.
func (p *Parser) SkipOrError(start xml.StartElement, context string) error {
	if p.Strict {
		_ = p.Skip(start)
		return scene.Errf(scene.UnknownVariant, "%s", context)
	}
	return p.Skip(start)
}

// Attr returns the named attribute's raw value and whether it was
// present, without defaults substitution.
func Attr(start xml.StartElement, name string) (string, bool) {
	for _, a := range start.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// ResolvedAttr returns the named attribute's value with $default
// substitution applied (spec.md §4.2).
func (p *Parser) ResolvedAttr(start xml.StartElement, name string) (string, bool, *scene.Error) {
	raw, ok := Attr(start, name)
	if !ok {
		return "", false, nil
	}
	resolved, err := p.Defaults.Resolve(raw)
	if err != nil {
		return "", true, err
	}
	return resolved, true, nil
}

// RequireAttr is ResolvedAttr for an attribute the caller's grammar
// requires; its absence is a fatal MissingAttribute.
func (p *Parser) RequireAttr(start xml.StartElement, name string) (string, *scene.Error) {
	val, ok, err := p.ResolvedAttr(start, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", scene.Errf(scene.MissingAttribute, "<%s> missing %q", start.Name.Local, name)
	}
	return val, nil
}

// CollectDefault reads one top-level <default name="..." value="..."/>
// element and records it in p.Defaults. Mitsuba resolves $default
// uses eagerly against whatever has been declared so far, so later
// <default> elements can shadow earlier ones but never retroactively
// change an already-resolved attribute (spec.md §4.2).
func (p *Parser) CollectDefault(start xml.StartElement) error {
	name, ok := Attr(start, "name")
	if !ok {
		return scene.Errf(scene.MissingAttribute, "<default> missing \"name\"")
	}
	val, _ := Attr(start, "value")
	p.Defaults[name] = val
	return p.Skip(start)
}
