// Package similarity compares series names by normalized edit distance.
package similarity

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// firstSymbol is the start of Supplementary Private Use Area-A. Grapheme clusters
// are remapped into it so the rune based distance counts logical characters.
const firstSymbol = 0xF0000

// Difference returns the edit distance between a and b divided by the length of the
// longer string, measured in grapheme clusters after trimming, NFC normalization
// and case folding. The result is in [0,1] and is 0 only for identical inputs.
func Difference(a, b string) float64 {
	left, right := symbols(a, b)

	longest := max(len(left), len(right))
	if longest == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(string(left), string(right))
	diff := float64(distance) / float64(longest)
	switch {
	case diff < 0:
		return 0
	case diff > 1:
		return 1
	}
	return diff
}

// Similarity is the complement of Difference.
func Similarity(a, b string) float64 {
	return 1 - Difference(a, b)
}

// Length reports the number of logical characters Difference sees in s.
func Length(s string) int {
	return uniseg.GraphemeClusterCount(normalize(s))
}

func normalize(s string) string {
	folded := cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
	return norm.NFC.String(folded)
}

// symbols converts both strings to one rune per grapheme cluster using a shared
// alphabet, so equal clusters map to equal runes.
func symbols(a, b string) ([]rune, []rune) {
	alphabet := make(map[string]rune)
	encode := func(s string) []rune {
		var out []rune
		g := uniseg.NewGraphemes(normalize(s))
		for g.Next() {
			cluster := g.Str()
			r, ok := alphabet[cluster]
			if !ok {
				r = rune(firstSymbol + len(alphabet))
				alphabet[cluster] = r
			}
			out = append(out, r)
		}
		return out
	}
	return encode(a), encode(b)
}
