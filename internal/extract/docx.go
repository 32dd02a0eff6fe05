package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/JaimeStill/counsel/internal/analysis"
)

const documentPart = "word/document.xml"

// extractDOCX streams word/document.xml, emitting paragraphs separated by
// blank lines. Explicit page breaks and renderer page markers start a new
// page; a marker that follows another with no text between them is ignored.
// A document part larger than limit is rejected before and while decoding.
func extractDOCX(data []byte, limit int64) (*Text, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %w", ErrExtractionFailed, err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%w: docx: missing %s", ErrExtractionFailed, documentPart)
	}

	if part.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("%w: docx: %s expands to %d bytes", ErrPayloadTooLarge, documentPart, part.UncompressedSize64)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %w", ErrExtractionFailed, err)
	}
	defer rc.Close()

	lr := &io.LimitedReader{R: rc, N: limit + 1}
	w := &docxWriter{pages: []analysis.PageOffset{{Offset: 0, Page: 1}}}
	err = w.decode(xml.NewDecoder(lr))
	if lr.N <= 0 {
		return nil, fmt.Errorf("%w: docx: %w", ErrExtractionFailed, errTextLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: docx: %w", ErrExtractionFailed, err)
	}

	content := strings.TrimRightFunc(w.b.String(), unicode.IsSpace)
	pages := w.pages[:1]
	for _, p := range w.pages[1:] {
		if p.Offset < len(content) {
			pages = append(pages, p)
		}
	}

	return &Text{Content: content, Pages: pages, PageCount: len(pages)}, nil
}

type docxWriter struct {
	b      strings.Builder
	pages  []analysis.PageOffset
	inText bool
}

func (w *docxWriter) decode(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				w.inText = true
			case "tab":
				w.b.WriteByte('\t')
			case "cr":
				w.b.WriteByte('\n')
			case "br":
				if attr(t, "type") == "page" {
					w.pageBreak()
				} else {
					w.b.WriteByte('\n')
				}
			case "lastRenderedPageBreak":
				w.pageBreak()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				w.inText = false
			case "p":
				w.b.WriteString("\n\n")
			}
		case xml.CharData:
			if w.inText {
				w.b.Write(t)
			}
		}
	}
}

func (w *docxWriter) pageBreak() {
	last := w.pages[len(w.pages)-1]
	if strings.TrimSpace(w.b.String()[last.Offset:]) == "" {
		return
	}
	w.b.WriteString("\n\n")
	w.pages = append(w.pages, analysis.PageOffset{Offset: w.b.Len(), Page: last.Page + 1})
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
