package analysis_test

import (
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/analysis"
)

const (
	terminationText     = "Either party may terminate this agreement with 30 days written notice. In case of material breach, the non-breaching party may terminate immediately upon written notice."
	liabilityText       = "Liability shall not exceed the total amount paid under this agreement in the 12 months preceding the claim. Neither party shall be liable for any indirect, special, incidental or consequential damages."
	confidentialityText = "All confidential information shall remain proprietary and shall not be disclosed to any third party without prior written consent, except as required by law. This obligation survives termination for 5 years."
	paymentText         = "Payment terms are net 30 days from invoice date. Late payments shall accrue interest at 1.5% per month or the maximum rate allowed by law, whichever is lower."
	indemnificationText = "Party A shall indemnify Party B for all claims arising from Party A's breach of representations and warranties, negligence, or willful misconduct. This includes attorney fees and settlement amounts."
	governingLawText    = "This agreement shall be governed by and construed in accordance with the laws of the State of California, without regard to its conflict of laws principles."
)

// contractPages lays the sample clauses out over eight pages.
var contractPages = []string{
	"MASTER SERVICES AGREEMENT\n\nThis agreement is entered into by Party A and Party B as of the effective date.",
	"1. Confidentiality\n" + confidentialityText,
	"2. Termination\n" + terminationText,
	"3. Payment\n" + paymentText,
	"4. Limitation\n" + liabilityText,
	"5. Indemnity\n" + indemnificationText,
	"Each party represents that it has full power and authority to enter into this agreement.",
	"6. Governing Law\n" + governingLawText,
}

// buildDocument joins pages with form feeds and records a breakpoint at the
// start of each page.
func buildDocument(pages ...string) *analysis.Document {
	var b strings.Builder
	var offsets []analysis.PageOffset
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\f")
		}
		offsets = append(offsets, analysis.PageOffset{Offset: b.Len(), Page: i + 1})
		b.WriteString(p)
	}
	return analysis.NewDocument(uuid.New(), b.String(), offsets)
}
