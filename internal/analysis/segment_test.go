package analysis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/counsel/internal/analysis"
)

func TestSegmentEmpty(t *testing.T) {
	seg := analysis.NewSegmenter(0, 0)

	for _, text := range []string{"", "   ", "\n\n\t\f\n"} {
		assert.Empty(t, seg.Segment(text))
	}
}

func TestSegmentBlankLines(t *testing.T) {
	text := "  " + terminationText + "  \n\n\n" + paymentText + "\n"
	spans := analysis.NewSegmenter(0, 0).Segment(text)

	require.Len(t, spans, 2)
	assert.Equal(t, terminationText, text[spans[0].Start:spans[0].End])
	assert.Equal(t, paymentText, text[spans[1].Start:spans[1].End])
}

func TestSegmentHeadings(t *testing.T) {
	text := "1. TERM. This agreement begins on the effective date and runs for one year.\n" +
		"2. PAYMENT. Customer shall pay all invoices within thirty days of receipt.\n" +
		"(a) Late amounts accrue interest at the statutory rate until paid.\n" +
		"Section 4 Notices must be delivered in writing to the addresses above."

	spans := analysis.NewSegmenter(0, 0).Segment(text)

	require.Len(t, spans, 4)
	assert.True(t, strings.HasPrefix(text[spans[0].Start:], "1. TERM"))
	assert.True(t, strings.HasPrefix(text[spans[1].Start:], "2. PAYMENT"))
	assert.True(t, strings.HasPrefix(text[spans[2].Start:], "(a) Late"))
	assert.True(t, strings.HasPrefix(text[spans[3].Start:], "Section 4"))
}

func TestSegmentHeadingContinuation(t *testing.T) {
	text := "6. Governing Law\n" + governingLawText

	spans := analysis.NewSegmenter(0, 0).Segment(text)

	require.Len(t, spans, 1)
	assert.Equal(t, text, text[spans[0].Start:spans[0].End])
}

func TestSegmentDecimalIsNotHeading(t *testing.T) {
	text := "Late payments accrue interest at\n1.5% per month until the balance is paid in full."

	spans := analysis.NewSegmenter(0, 0).Segment(text)

	require.Len(t, spans, 1)
}

func TestSegmentFormFeed(t *testing.T) {
	text := terminationText + "\f" + paymentText

	spans := analysis.NewSegmenter(0, 0).Segment(text)

	require.Len(t, spans, 2)
	assert.Equal(t, terminationText, text[spans[0].Start:spans[0].End])
	assert.Equal(t, paymentText, text[spans[1].Start:spans[1].End])
}

func TestSegmentDropsShortSpans(t *testing.T) {
	text := "Page 1\n\n" + terminationText + "\n\nSigned:"

	spans := analysis.NewSegmenter(30, 0).Segment(text)

	require.Len(t, spans, 1)
	assert.Equal(t, terminationText, text[spans[0].Start:spans[0].End])
}

func TestSegmentSplitsLongBlocks(t *testing.T) {
	sentence := "The supplier shall deliver the goods to the premises on time. "
	text := strings.Repeat(sentence, 20)

	seg := analysis.NewSegmenter(30, 200)
	spans := seg.Segment(text)

	require.Greater(t, len(spans), 1)
	for _, s := range spans {
		assert.LessOrEqual(t, s.End-s.Start, 200)
		assert.True(t, strings.HasSuffix(text[s.Start:s.End], "."))
	}
}

func TestSegmentOrderedAndDisjoint(t *testing.T) {
	doc := buildDocument(contractPages...)

	spans := analysis.NewSegmenter(0, 0).Segment(doc.Text)

	require.NotEmpty(t, spans)
	for i, s := range spans {
		assert.Less(t, s.Start, s.End)
		if i > 0 {
			assert.GreaterOrEqual(t, s.Start, spans[i-1].End)
		}
	}
}

func TestSentences(t *testing.T) {
	got := analysis.Sentences("Interest is 1.5% per month. Payment is due; no set-off applies! Really?")

	assert.Equal(t, []string{
		"Interest is 1.5% per month.",
		"Payment is due;",
		"no set-off applies!",
		"Really?",
	}, got)
}
