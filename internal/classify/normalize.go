package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

// removeDiacritics removes diacritical marks from a string (e.g., "café" -> "cafe").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// normalizeLabel normalizes a label for comparison (lowercase, no
// diacritics, trimmed, dashes and underscores as spaces).
func normalizeLabel(s string) string {
	s = removeDiacritics(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Trim(s, `."'`)
	return s
}

// matchCandidate maps a model's free-form answer onto the category's
// candidate set. Returns false when the answer matches no candidate.
func matchCandidate(answer string, category taxonomy.CategorySpec) (string, bool) {
	normalized := normalizeLabel(answer)
	for _, c := range category.Candidates {
		if normalized == normalizeLabel(c) {
			return c, true
		}
	}
	// Tolerate answers that embed the label in a longer phrase.
	for _, c := range category.Candidates {
		if strings.Contains(normalized, normalizeLabel(c)) {
			return c, true
		}
	}
	return "", false
}
