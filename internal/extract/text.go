package extract

import (
	"strings"
	"unicode"

	"github.com/JaimeStill/counsel/internal/analysis"
)

// Text is the result of extraction: raw text and the offsets at which each
// page begins.
type Text struct {
	Content   string
	Pages     []analysis.PageOffset
	PageCount int
}

// fromPlain cleans decoded text and derives page breakpoints from form feeds.
func fromPlain(s string) *Text {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimRightFunc(s, unicode.IsSpace)

	pages := []analysis.PageOffset{{Offset: 0, Page: 1}}
	for i := 0; i < len(s); i++ {
		if s[i] == '\f' && i+1 < len(s) {
			pages = append(pages, analysis.PageOffset{Offset: i + 1, Page: len(pages) + 1})
		}
	}

	return &Text{Content: s, Pages: pages, PageCount: len(pages)}
}
