package analysis

import (
	"fmt"
	"strings"
)

// ClauseType names a category in the clause taxonomy. Values are the
// display names used in reports and summaries.
type ClauseType string

// Clause types provided by the default lexicon.
const (
	TypeTermination          ClauseType = "Termination"
	TypeLiability            ClauseType = "Liability"
	TypeConfidentiality      ClauseType = "Confidentiality"
	TypePayment              ClauseType = "Payment"
	TypeIndemnification      ClauseType = "Indemnification"
	TypeGoverningLaw         ClauseType = "Governing Law"
	TypeNonCompete           ClauseType = "Non-Compete"
	TypeIntellectualProperty ClauseType = "Intellectual Property"

	// TypeUnclassified marks a candidate that scored below the lexicon threshold.
	TypeUnclassified ClauseType = ""
)

// RiskLevel is the ordered risk rating attached to a clause.
type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
)

var riskNames = map[RiskLevel]string{
	RiskLow:    "low",
	RiskMedium: "medium",
	RiskHigh:   "high",
}

// ParseRiskLevel parses "low", "medium" or "high" case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	}
	return 0, fmt.Errorf("unknown risk level %q", s)
}

// Valid reports whether r is one of the defined levels.
func (r RiskLevel) Valid() bool {
	return r >= RiskLow && r <= RiskHigh
}

func (r RiskLevel) String() string {
	if name, ok := riskNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RiskLevel(%d)", int(r))
}

// MarshalText encodes the level as its lowercase name.
func (r RiskLevel) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid risk level %d", int(r))
	}
	return []byte(riskNames[r]), nil
}

// UnmarshalText decodes a lowercase level name.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// shift moves the level by n steps, clamped to [RiskLow, RiskHigh].
func (r RiskLevel) shift(n int) RiskLevel {
	return max(RiskLow, min(RiskHigh, r+RiskLevel(n)))
}

// Clause is a classified, risk-scored span of a document.
// Content is always the verbatim text between Start and End.
type Clause struct {
	Type        ClauseType `json:"type"`
	Content     string     `json:"content"`
	Description string     `json:"description"`
	Risk        RiskLevel  `json:"risk"`
	Page        int        `json:"page"`
	Start       int        `json:"start"`
	End         int        `json:"end"`
	Score       int        `json:"score"`
}

// RiskSummary tallies clauses by risk level.
type RiskSummary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// Tally counts clauses by risk. Total always equals len(clauses); a clause
// without a valid level is counted in no level, so Total then exceeds the
// sum of the levels.
func Tally(clauses []Clause) RiskSummary {
	s := RiskSummary{Total: len(clauses)}
	for _, c := range clauses {
		switch c.Risk {
		case RiskHigh:
			s.High++
		case RiskMedium:
			s.Medium++
		case RiskLow:
			s.Low++
		}
	}
	return s
}
