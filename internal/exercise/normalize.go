package exercise

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps learner input and accepted answers to a comparable form.
type Normalizer interface {
	Normalize(s string) string
}

// NormalizerFunc adapts a plain function to the Normalizer interface.
type NormalizerFunc func(string) string

func (f NormalizerFunc) Normalize(s string) string { return f(s) }

// spanishLower builds a fresh Caser per call; Casers keep state and must not be
// shared between goroutines.
func spanishLower(s string) string {
	return cases.Lower(language.Spanish).String(s)
}

// Strict trims surrounding whitespace and lowercases. Accents stay significant:
// "lápiz" and "lapiz" are different answers. Input is brought to NFC first so
// that a decomposed "á" typed on some keyboards equals the composed one.
var Strict Normalizer = NormalizerFunc(func(s string) string {
	return spanishLower(norm.NFC.String(strings.TrimSpace(s)))
})

// AccentInsensitive behaves like Strict but also drops combining marks, so
// "bambú" and "bambu" compare equal. The tilde of "ñ" is dropped too.
var AccentInsensitive Normalizer = NormalizerFunc(func(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = strings.TrimSpace(s)
	}
	return spanishLower(folded)
})
