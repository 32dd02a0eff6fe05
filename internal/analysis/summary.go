package analysis

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// documentKind infers the agreement type from the set of clause types present.
type documentKind struct {
	name    string
	matches func(present map[ClauseType]bool) bool
}

var documentKinds = []documentKind{
	{
		name: "an employment or restrictive covenant agreement",
		matches: func(p map[ClauseType]bool) bool {
			return p[TypeNonCompete]
		},
	},
	{
		name: "a licensing or development agreement",
		matches: func(p map[ClauseType]bool) bool {
			return p[TypeIntellectualProperty] && p[TypePayment]
		},
	},
	{
		name: "a commercial services agreement",
		matches: func(p map[ClauseType]bool) bool {
			return p[TypePayment] && (p[TypeTermination] || p[TypeLiability] || p[TypeIndemnification])
		},
	},
	{
		name: "a confidentiality (non-disclosure) agreement",
		matches: func(p map[ClauseType]bool) bool {
			if !p[TypeConfidentiality] {
				return false
			}
			for t := range p {
				switch t {
				case TypeConfidentiality, TypeTermination, TypeGoverningLaw:
				default:
					return false
				}
			}
			return true
		},
	},
}

const fallbackKind = "a contract"

// Summarizer renders the deterministic plain-language summary of a clause set.
type Summarizer struct {
	lexicon *Lexicon
}

// NewSummarizer creates a Summarizer over lex.
func NewSummarizer(lex *Lexicon) *Summarizer {
	return &Summarizer{lexicon: lex}
}

// Summarize describes the inferred document kind, the provisions present in
// lexicon order, the risk tally, and each high-risk clause type with its
// pages and rationale. Identical input always yields identical output.
func (s *Summarizer) Summarize(clauses []Clause) string {
	if len(clauses) == 0 {
		return "No standard provisions were identified in this document. " +
			"It may not be a contract, or its clauses may use wording outside the recognised taxonomy."
	}

	types := s.presentTypes(clauses)
	present := make(map[ClauseType]bool, len(types))
	for _, t := range types {
		present[t] = true
	}

	kind := fallbackKind
	for _, k := range documentKinds {
		if k.matches(present) {
			kind = k.name
			break
		}
	}

	labels := make([]string, len(types))
	for i, t := range types {
		labels[i] = s.lexicon.Label(t)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This document appears to be %s. ", kind)
	fmt.Fprintf(&b, "It contains %s covering %s. ",
		plural(len(clauses), "identified provision", "identified provisions"),
		JoinList(labels))

	tally := Tally(clauses)
	fmt.Fprintf(&b, "Risk profile: %d high, %d medium, %d low.", tally.High, tally.Medium, tally.Low)

	if tally.High == 0 {
		b.WriteString(" No high-risk provisions were detected.")
		return b.String()
	}

	for _, t := range types {
		pages := highRiskPages(clauses, t)
		if len(pages) == 0 {
			continue
		}
		noun, verb := "clause", "is"
		if countHigh(clauses, t) > 1 {
			noun, verb = "clauses", "are"
		}
		fmt.Fprintf(&b, " The %s %s on %s %s high risk", t, noun, PageList(pages), verb)
		if rule, ok := s.lexicon.Rule(t); ok && rule.Rationale != "" {
			fmt.Fprintf(&b, ": %s", sentence(rule.Rationale))
		} else {
			b.WriteString(".")
		}
	}

	return b.String()
}

// presentTypes returns the distinct types in clauses, in lexicon order.
func (s *Summarizer) presentTypes(clauses []Clause) []ClauseType {
	var types []ClauseType
	for _, c := range clauses {
		if !slices.Contains(types, c.Type) {
			types = append(types, c.Type)
		}
	}
	slices.SortStableFunc(types, func(a, b ClauseType) int {
		return s.lexicon.Order(a) - s.lexicon.Order(b)
	})
	return types
}

func highRiskPages(clauses []Clause, t ClauseType) []int {
	var pages []int
	for _, c := range clauses {
		if c.Type == t && c.Risk == RiskHigh && !slices.Contains(pages, c.Page) {
			pages = append(pages, c.Page)
		}
	}
	slices.Sort(pages)
	return pages
}

func countHigh(clauses []Clause, t ClauseType) int {
	n := 0
	for _, c := range clauses {
		if c.Type == t && c.Risk == RiskHigh {
			n++
		}
	}
	return n
}

// PageList renders "page 3" or "pages 2, 5 and 7".
func PageList(pages []int) string {
	if len(pages) == 1 {
		return "page " + strconv.Itoa(pages[0])
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return "pages " + JoinList(parts)
}

// JoinList joins items as "a", "a and b", or "a, b and c".
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}
