package analysis

// Scorer rates the risk of classified clauses.
type Scorer struct {
	lexicon *Lexicon
}

// NewScorer creates a Scorer over lex.
func NewScorer(lex *Lexicon) *Scorer {
	return &Scorer{lexicon: lex}
}

// Score starts from the baseline of t and moves one level up when content
// carries an escalation signal and one level down for a de-escalation
// signal. Both present leave the baseline unchanged. A de-escalation phrase
// inside an exclusion such as "but not limited to" does not count. Types
// unknown to the lexicon start at medium.
func (s *Scorer) Score(t ClauseType, content string) RiskLevel {
	return s.score(t, Normalize(content))
}

func (s *Scorer) score(t ClauseType, normalized string) RiskLevel {
	level := RiskMedium
	if rule, ok := s.lexicon.Rule(t); ok {
		level = rule.Baseline
	}

	adjust := 0
	if s.lexicon.Escalates(normalized) {
		adjust++
	}
	if s.lexicon.Deescalates(normalized) {
		adjust--
	}
	return level.shift(adjust)
}
