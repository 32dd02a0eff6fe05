package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultMinClauseLength is the shortest span, in bytes, kept as a candidate.
	DefaultMinClauseLength = 30

	// DefaultMaxClauseLength is the block length above which a block is
	// split into sentence groups.
	DefaultMaxClauseLength = 1200
)

var headingPattern = regexp.MustCompile(
	`(?i)^\s*(?:\d+(?:\.\d+)*[.)]\s|\d+(?:\.\d+)+\s|\(\w{1,4}\)\s|(?:section|article|clause)\s+[0-9ivxlc]+\b)`,
)

// Span is a half-open byte range [Start, End) into a document's text.
type Span struct {
	Start int
	End   int
}

// Segmenter splits raw text into ordered, non-overlapping candidate spans.
type Segmenter struct {
	MinLength int
	MaxLength int
}

// NewSegmenter returns a Segmenter, substituting defaults for non-positive lengths.
func NewSegmenter(minLength, maxLength int) Segmenter {
	if minLength <= 0 {
		minLength = DefaultMinClauseLength
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxClauseLength
	}
	return Segmenter{MinLength: minLength, MaxLength: maxLength}
}

// Segment returns candidate spans ordered by start. Blocks are separated by
// blank lines, form feeds, and lines opening with a section heading. Blocks
// longer than MaxLength are cut into sentence groups. Spans are trimmed and
// those shorter than MinLength are discarded.
func (s Segmenter) Segment(text string) []Span {
	var out []Span
	for _, block := range blocks(text) {
		if block.End-block.Start <= s.MaxLength {
			out = s.keep(out, text, block)
			continue
		}
		for _, group := range sentenceGroups(text, block, s.MaxLength) {
			out = s.keep(out, text, group)
		}
	}
	return out
}

func (s Segmenter) keep(out []Span, text string, span Span) []Span {
	span = trimSpan(text, span)
	if span.End-span.Start < s.MinLength {
		return out
	}
	return append(out, span)
}

func blocks(text string) []Span {
	var out []Span
	start := -1

	closeAt := func(end int) {
		if start >= 0 {
			if span := trimSpan(text, Span{start, end}); span.End > span.Start {
				out = append(out, span)
			}
		}
		start = -1
	}

	for pos := 0; pos < len(text); {
		end := strings.IndexAny(text[pos:], "\n\f")
		if end < 0 {
			end = len(text)
		} else {
			end += pos
		}

		line := text[pos:end]
		switch {
		case strings.TrimSpace(line) == "":
			closeAt(pos)
		case headingPattern.MatchString(line):
			closeAt(pos)
			start = pos
		case start < 0:
			start = pos
		}

		if end < len(text) && text[end] == '\f' {
			closeAt(end)
		}
		pos = end + 1
	}
	closeAt(len(text))

	return out
}

// sentenceGroups packs consecutive sentences of a block into groups no
// longer than limit. A single sentence longer than limit forms its own group.
func sentenceGroups(text string, block Span, limit int) []Span {
	var out []Span
	groupStart := block.Start
	prevEnd := -1

	for _, end := range sentenceEnds(text, block) {
		if end-groupStart > limit && prevEnd > groupStart {
			out = append(out, Span{groupStart, prevEnd})
			groupStart = prevEnd
		}
		prevEnd = end
	}
	return append(out, Span{groupStart, block.End})
}

func sentenceEnds(text string, block Span) []int {
	var ends []int
	for i := block.Start; i < block.End; i++ {
		switch text[i] {
		case '.', ';', '!', '?':
			if i+1 == block.End || isSpace(text[i+1]) {
				ends = append(ends, i+1)
			}
		}
	}
	if len(ends) == 0 || ends[len(ends)-1] != block.End {
		ends = append(ends, block.End)
	}
	return ends
}

// Sentences splits text into trimmed sentences at terminal punctuation
// followed by whitespace.
func Sentences(text string) []string {
	var out []string
	start := 0
	for _, end := range sentenceEnds(text, Span{0, len(text)}) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
	}
	return out
}

func trimSpan(text string, span Span) Span {
	for span.Start < span.End && isSpace(text[span.Start]) {
		span.Start++
	}
	for span.End > span.Start && isSpace(text[span.End-1]) {
		span.End--
	}
	return span
}

func isSpace(b byte) bool {
	return b < 0x80 && unicode.IsSpace(rune(b))
}
