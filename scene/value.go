package scene

import (
	"fmt"

	"github.com/scenekit/mitsuba-go/math32"
	"github.com/scenekit/mitsuba-go/tables"
)

// ValueKind discriminates the Value tagged union (spec.md §3).
type ValueKind int

const (
	KindFloat ValueKind = iota
	KindInteger
	KindBoolean
	KindString
	KindSpectrum
	KindVector3
	KindPoint3
	KindRef
)

func (k ValueKind) String() string {
	switch k {
	case KindFloat:
		return "Float"
	case KindInteger:
		return "Integer"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindSpectrum:
		return "Spectrum"
	case KindVector3:
		return "Vector3"
	case KindPoint3:
		return "Point3"
	case KindRef:
		return "Ref"
	default:
		return "Unknown"
	}
}

// Value is a tagged union of the leaf property types the property parser
// produces (spec.md §4.1/§4.2). Only the field matching Kind is valid.
type Value struct {
	Kind ValueKind

	Float    float64
	Integer  int64
	Bool     bool
	Str      string
	Spectrum Spectrum
	Vec3     math32.Vector3 // valid for KindVector3 and KindPoint3
	Ref      string
}

// FloatValue, IntValue, ... are the constructors used by the property
// parser when it recognizes a leaf element.
func FloatValue(v float64) Value    { return Value{Kind: KindFloat, Float: v} }
func IntValue(v int64) Value        { return Value{Kind: KindInteger, Integer: v} }
func BoolValue(v bool) Value        { return Value{Kind: KindBoolean, Bool: v} }
func StringValue(v string) Value    { return Value{Kind: KindString, Str: v} }
func SpectrumValue(s Spectrum) Value { return Value{Kind: KindSpectrum, Spectrum: s} }
func Vector3Value(v math32.Vector3) Value { return Value{Kind: KindVector3, Vec3: v} }
func Point3Value(v math32.Vector3) Value  { return Value{Kind: KindPoint3, Vec3: v} }
func RefValue(id string) Value      { return Value{Kind: KindRef, Ref: id} }

// mismatch builds the ValueMismatch error a typed accessor raises when the
// actual Value does not carry the attempted kind.
func (v Value) mismatch(attempted string) error {
	return Errf(ValueMismatch, "attempted %s on %s value %+v", attempted, v.Kind, v)
}

func (v Value) AsFloat() (float64, error) {
	if v.Kind != KindFloat {
		return 0, v.mismatch("Float")
	}
	return v.Float, nil
}

func (v Value) AsInt() (int64, error) {
	if v.Kind != KindInteger {
		return 0, v.mismatch("Integer")
	}
	return v.Integer, nil
}

func (v Value) AsBool() (bool, error) {
	if v.Kind != KindBoolean {
		return false, v.mismatch("Boolean")
	}
	return v.Bool, nil
}

func (v Value) AsString() (string, error) {
	if v.Kind != KindString {
		return "", v.mismatch("String")
	}
	return v.Str, nil
}

func (v Value) AsSpectrum() (Spectrum, error) {
	if v.Kind != KindSpectrum {
		return Spectrum{}, v.mismatch("Spectrum")
	}
	return v.Spectrum, nil
}

func (v Value) AsVector3() (math32.Vector3, error) {
	if v.Kind != KindVector3 {
		return math32.Vector3{}, v.mismatch("Vector3")
	}
	return v.Vec3, nil
}

func (v Value) AsPoint3() (math32.Vector3, error) {
	if v.Kind != KindPoint3 {
		return math32.Vector3{}, v.mismatch("Point3")
	}
	return v.Vec3, nil
}

func (v Value) AsRef() (string, error) {
	if v.Kind != KindRef {
		return "", v.mismatch("Ref")
	}
	return v.Ref, nil
}

// AsIOR accepts either a Float (returned as-is) or a String (looked up in
// the IOR table; unknown names are fatal), per spec.md §4.1.
func (v Value) AsIOR() (float64, error) {
	switch v.Kind {
	case KindFloat:
		return v.Float, nil
	case KindString:
		ior, ok := tables.IOR(v.Str)
		if !ok {
			return 0, Errf(UnresolvedReference, "unknown IOR material %q", v.Str)
		}
		return ior, nil
	default:
		return 0, v.mismatch("IOR (Float or String)")
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindFloat:
		return fmt.Sprintf("Float(%v)", v.Float)
	case KindInteger:
		return fmt.Sprintf("Integer(%v)", v.Integer)
	case KindBoolean:
		return fmt.Sprintf("Boolean(%v)", v.Bool)
	case KindString:
		return fmt.Sprintf("String(%q)", v.Str)
	case KindSpectrum:
		return fmt.Sprintf("Spectrum(%q)", v.Spectrum.Literal)
	case KindVector3, KindPoint3:
		return fmt.Sprintf("%s(%v)", v.Kind, v.Vec3)
	case KindRef:
		return fmt.Sprintf("Ref(%q)", v.Ref)
	default:
		return "Value(?)"
	}
}
