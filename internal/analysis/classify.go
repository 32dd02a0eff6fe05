package analysis

// Classification is the outcome of classifying one candidate span.
type Classification struct {
	Type  ClauseType `json:"type"`
	Score int        `json:"score"`
}

// Classifier assigns a clause type to text using a lexicon's weighted triggers.
type Classifier struct {
	lexicon *Lexicon
}

// NewClassifier creates a Classifier over lex.
func NewClassifier(lex *Lexicon) *Classifier {
	return &Classifier{lexicon: lex}
}

// Classify returns the highest scoring type at or above the lexicon
// threshold, or TypeUnclassified. Ties resolve to the type declared first.
func (c *Classifier) Classify(text string) Classification {
	return c.classify(Normalize(text))
}

func (c *Classifier) classify(normalized string) Classification {
	best := Classification{Type: TypeUnclassified}
	for i := range c.lexicon.rules {
		rule := &c.lexicon.rules[i]
		score := rule.score(normalized)
		if score >= c.lexicon.def.Threshold && score > best.Score {
			best = Classification{Type: rule.Type, Score: score}
		}
	}
	return best
}
