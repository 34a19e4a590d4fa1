package scene

import "fmt"

// Kind discriminates the fatal error categories a parse can raise. Every
// kind carries enough context in the wrapping Error to locate the fault
// without re-reading the whole document.
type Kind int

const (
	// UnsupportedSpectralSamples: a spectrum literal contained ':'.
	UnsupportedSpectralSamples Kind = iota
	// InvalidHex: a '#...' literal was not exactly six hex digits.
	InvalidHex
	// ValueMismatch: a typed accessor received the wrong Value variant.
	ValueMismatch
	// UnresolvedReference: a $default or ref id= did not resolve.
	UnresolvedReference
	// MissingAttribute: a required XML attribute was absent.
	MissingAttribute
	// UnknownVariant: an unrecognized type= value for some entity kind.
	UnknownVariant
	// MalformedBinary: trailer, magic, flags or precision bits violated.
	MalformedBinary
	// ChecksumOrFormat: id_file != 4, or zlib decompression failed.
	ChecksumOrFormat
	// Io: underlying read failure.
	Io
	// XmlTokenizer: the XML tokenizer raised an error.
	XmlTokenizer
)

func (k Kind) String() string {
	switch k {
	case UnsupportedSpectralSamples:
		return "UnsupportedSpectralSamples"
	case InvalidHex:
		return "InvalidHex"
	case ValueMismatch:
		return "ValueMismatch"
	case UnresolvedReference:
		return "UnresolvedReference"
	case MissingAttribute:
		return "MissingAttribute"
	case UnknownVariant:
		return "UnknownVariant"
	case MalformedBinary:
		return "MalformedBinary"
	case ChecksumOrFormat:
		return "ChecksumOrFormat"
	case Io:
		return "Io"
	case XmlTokenizer:
		return "XmlTokenizer"
	default:
		return "Unknown"
	}
}

// Error is the single error type raised by every package in this module.
// Context is a short human-readable locator (an element name, an
// attribute name, a file path) and Err, when non-nil, is the underlying
// cause (an os.PathError, a zlib error, an xml.SyntaxError, ...).
type Error struct {
	Kind    Kind
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Context)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errf builds a scene.Error with a formatted Context and no wrapped cause.
func Errf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Context: fmt.Sprintf(format, args...)}
}

// Wrap builds a scene.Error carrying an underlying cause.
func Wrap(kind Kind, context string, err error) *Error {
	return &Error{Kind: kind, Context: context, Err: err}
}
