// Package analysis implements the document analysis engine: segmentation of
// raw text into candidate spans, lexicon-driven clause classification, risk
// scoring, summary generation, and assembly of the immutable analysis report.
package analysis

import (
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// PageOffset marks the byte offset in a document's text at which a page begins.
type PageOffset struct {
	Offset int `json:"offset"`
	Page   int `json:"page"`
}

// Document is the extracted text of an uploaded file together with its
// page breakpoints. Text is never modified after construction.
type Document struct {
	ID    uuid.UUID    `json:"id"`
	Text  string       `json:"-"`
	Pages []PageOffset `json:"pages"`
}

// NewDocument builds a Document, ordering the page map by offset. Breakpoints
// outside the text are dropped and repeated offsets keep the last entry, so
// the resulting offsets are strictly increasing.
func NewDocument(id uuid.UUID, text string, pages []PageOffset) *Document {
	sorted := slices.Clone(pages)
	slices.SortStableFunc(sorted, func(a, b PageOffset) int {
		return a.Offset - b.Offset
	})

	cleaned := make([]PageOffset, 0, len(sorted))
	for _, p := range sorted {
		if p.Offset < 0 || p.Offset > len(text) || p.Page < 1 {
			continue
		}
		if n := len(cleaned); n > 0 && cleaned[n-1].Offset == p.Offset {
			cleaned[n-1] = p
			continue
		}
		cleaned = append(cleaned, p)
	}

	return &Document{ID: id, Text: text, Pages: cleaned}
}

// PageAt resolves the page containing offset. Offsets past the last
// breakpoint resolve to the last known page; documents without a page map
// are treated as a single page.
func (d *Document) PageAt(offset int) int {
	if len(d.Pages) == 0 {
		return 1
	}
	i := sort.Search(len(d.Pages), func(i int) bool {
		return d.Pages[i].Offset > offset
	})
	if i == 0 {
		return d.Pages[0].Page
	}
	return d.Pages[i-1].Page
}

// PageCount returns the highest page number in the page map, or 1.
func (d *Document) PageCount() int {
	count := 1
	for _, p := range d.Pages {
		count = max(count, p.Page)
	}
	return count
}

// WordCount returns the number of whitespace-separated words in the text.
func (d *Document) WordCount() int {
	return len(strings.Fields(d.Text))
}

// Empty reports whether the document has no non-whitespace text.
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}
