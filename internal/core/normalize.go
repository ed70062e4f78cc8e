package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds s for comparison: lowercase, canonical decomposition with
// combining marks dropped, surrounding whitespace trimmed. "Café" and
// "cafe" normalize to the same string.
func Normalize(s string) string {
	// Transformers are stateful; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}
