package analysis

import (
	"github.com/google/uuid"
)

// Report is the immutable result of analysing one document. A new upload
// produces a new Report; existing reports are never mutated.
type Report struct {
	DocumentID uuid.UUID   `json:"document_id"`
	Clauses    []Clause    `json:"clauses"`
	Risk       RiskSummary `json:"risk"`
	Summary    string      `json:"summary"`
}

// NewReport assembles a report, deriving the risk tally from clauses.
func NewReport(documentID uuid.UUID, clauses []Clause, summary string) *Report {
	if clauses == nil {
		clauses = []Clause{}
	}
	return &Report{
		DocumentID: documentID,
		Clauses:    clauses,
		Risk:       Tally(clauses),
		Summary:    summary,
	}
}

// ClausesOf returns the clauses of type t in document order.
func (r *Report) ClausesOf(t ClauseType) []Clause {
	var out []Clause
	for _, c := range r.Clauses {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
