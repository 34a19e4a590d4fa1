package scene

import (
	"strconv"
	"strings"

	"github.com/scenekit/mitsuba-go/math32"
)

// Spectrum wraps an un-interpreted color/spectral-power-distribution
// literal in one of four forms (spec.md §3): a single scalar, a
// comma-separated triple, a whitespace-separated triple, or a hex
// "#RRGGBB" code. Conversion to RGB is deferred until ToRGB is called.
type Spectrum struct {
	Literal string
}

// NewSpectrum wraps the raw literal exactly as read from the XML attribute.
func NewSpectrum(literal string) Spectrum {
	return Spectrum{Literal: literal}
}

// ToRGB converts the literal to RGB. Wavelength-indexed spectra
// (containing ':') are rejected here, at conversion time, not at parse
// time, matching spec.md §3.
func (s Spectrum) ToRGB() (math32.Color, error) {
	lit := strings.TrimSpace(s.Literal)

	if strings.Contains(lit, ":") {
		return math32.Color{}, Errf(UnsupportedSpectralSamples, "spectrum literal %q contains wavelength:value pairs", s.Literal)
	}

	if strings.HasPrefix(lit, "#") {
		return hexToRGB(lit)
	}

	if strings.Contains(lit, ",") {
		parts := strings.Split(lit, ",")
		return tripleToRGB(s.Literal, parts)
	}

	fields := strings.Fields(lit)
	if len(fields) == 3 {
		return tripleToRGB(s.Literal, fields)
	}
	if len(fields) == 1 {
		v, err := strconv.ParseFloat(fields[0], 32)
		if err != nil {
			return math32.Color{}, Wrap(ValueMismatch, "spectrum literal "+s.Literal, err)
		}
		f := float32(v)
		return math32.Color{R: f, G: f, B: f}, nil
	}

	return math32.Color{}, Errf(ValueMismatch, "spectrum literal %q is not scalar, triple, or hex", s.Literal)
}

func tripleToRGB(original string, parts []string) (math32.Color, error) {
	if len(parts) != 3 {
		return math32.Color{}, Errf(ValueMismatch, "spectrum literal %q is not a triple", original)
	}
	var out [3]float32
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return math32.Color{}, Wrap(ValueMismatch, "spectrum literal "+original, err)
		}
		out[i] = float32(v)
	}
	return math32.Color{R: out[0], G: out[1], B: out[2]}, nil
}

// hexToRGB decodes a "#RRGGBB" literal. An InvalidHex error is raised
// when the literal is not exactly six hex digits after the '#'.
func hexToRGB(lit string) (math32.Color, error) {
	digits := lit[1:]
	if len(digits) != 6 {
		return math32.Color{}, Errf(InvalidHex, "hex literal %q is not six hex digits", lit)
	}
	var channel [3]float32
	for i := 0; i < 3; i++ {
		b, err := strconv.ParseUint(digits[i*2:i*2+2], 16, 8)
		if err != nil {
			return math32.Color{}, Wrap(InvalidHex, "hex literal "+lit, err)
		}
		channel[i] = float32(b) / 255.0
	}
	return math32.Color{R: channel[0], G: channel[1], B: channel[2]}, nil
}
