package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds text into the form used for term matching: Unicode case
// folding, NFKD decomposition with combining marks removed, every run of
// non-alphanumeric runes collapsed to a single space. The result is padded
// with one leading and one trailing space so that whole-word matches can be
// found with plain substring search.
func Normalize(s string) string {
	folded, _, err := transform.String(foldChain(), s)
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

// Transformers carry state, so each call builds its own chain.
func foldChain() transform.Transformer {
	return transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		cases.Fold(),
	)
}

// pattern is a compiled lexicon term ready for matching against normalised text.
type pattern struct {
	text   string
	weight int
}

// compilePattern turns a lexicon phrase into a padded search pattern. A
// trailing "*" makes the final word a prefix match.
func compilePattern(phrase string, weight int) (pattern, bool) {
	phrase = strings.TrimSpace(phrase)
	prefix := strings.HasSuffix(phrase, "*")
	core := strings.TrimSpace(Normalize(strings.TrimSuffix(phrase, "*")))
	if core == "" {
		return pattern{}, false
	}
	if weight <= 0 {
		weight = len(strings.Fields(core))
	}
	text := " " + core
	if !prefix {
		text += " "
	}
	return pattern{text: text, weight: weight}, true
}

// hits counts occurrences of p in normalised text. Adjacent matches share
// the separating space.
func (p pattern) hits(normalized string) int {
	n := 0
	for i := 0; i < len(normalized); {
		j := strings.Index(normalized[i:], p.text)
		if j < 0 {
			break
		}
		n++
		i += j + len(p.text) - 1
	}
	return n
}

// indexes returns the start of every occurrence of p in normalised text.
func (p pattern) indexes(normalized string) []int {
	var out []int
	for i := 0; i < len(normalized); {
		j := strings.Index(normalized[i:], p.text)
		if j < 0 {
			break
		}
		out = append(out, i+j)
		i += j + 1
	}
	return out
}

func (p pattern) matches(normalized string) bool {
	return strings.Contains(normalized, p.text)
}

// Words returns the words of normalised text in order.
func Words(normalized string) []string {
	return strings.Fields(normalized)
}
