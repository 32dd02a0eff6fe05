package analysis

func terms(phrases ...string) []Term {
	out := make([]Term, len(phrases))
	for i, p := range phrases {
		out[i] = Term{Phrase: p}
	}
	return out
}

func weighted(phrase string, weight int) Term {
	return Term{Phrase: phrase, Weight: weight}
}

// DefaultDefinition returns the built-in taxonomy. Callers may modify the
// returned value before passing it to NewLexicon.
func DefaultDefinition() Definition {
	return Definition{
		Threshold: DefaultThreshold,
		Escalation: []string{
			"any and all",
			"without limitation",
			"sole discretion",
			"unlimited",
			"irrevocabl*",
			"in perpetuity",
			"perpetual*",
			"for any reason",
			"without cause",
			"without notice",
			"unconditional*",
			"including but not limited to",
		},
		Deescalation: []string{
			"shall not exceed",
			"not to exceed",
			"limited to",
			"capped at",
			"in no event",
			"maximum aggregate",
			"aggregate liability",
			"cap on",
		},
		Exclusions: []string{
			"not limited to",
			"not be limited to",
			"without being limited to",
		},
		Types: []TypeDefinition{
			{
				Type:        TypeTermination,
				Description: "Conditions and notice required to end the agreement",
				Baseline:    RiskLow,
				Rationale:   "Broad or immediate termination rights can end the relationship without an opportunity to cure.",
				Label:       "termination",
				Triggers: append(terms("terminat*", "expir*", "renew*"),
					weighted("written notice", 2),
					weighted("notice period", 2),
					weighted("terminate this agreement", 3),
					weighted("right to terminate", 3),
					weighted("material breach", 2),
					weighted("for convenience", 2),
					weighted("cure period", 2),
				),
				Topics:      []string{"terminat*", "cancel*", "end the agreement", "notice period", "quit"},
				BroadTopics: []string{"exit"},
			},
			{
				Type:        TypeLiability,
				Description: "Limits or allocates responsibility for damages",
				Baseline:    RiskHigh,
				Rationale:   "Uncapped liability exposes a party to damages well beyond the value of the contract.",
				Label:       "liability",
				Triggers: append(terms("liabilit*", "liable", "damages", "incidental"),
					weighted("limitation of liability", 3),
					weighted("consequential damages", 2),
					weighted("lost profits", 2),
				),
				Topics: []string{"liabilit*", "liable", "damages", "limitation", "responsib*"},
			},
			{
				Type:        TypeConfidentiality,
				Description: "Restricts use and disclosure of non-public information",
				Baseline:    RiskLow,
				Rationale:   "Broad or perpetual confidentiality duties are costly to comply with and easy to breach.",
				Label:       "confidentiality",
				Triggers: append(terms("confidential*", "proprietary", "disclos*"),
					weighted("confidential information", 3),
					weighted("non disclosure", 3),
					weighted("trade secret*", 2),
				),
				Topics:      []string{"confidential*", "nda", "non disclosure", "secret*", "disclos*", "proprietary"},
				BroadTopics: []string{"private"},
			},
			{
				Type:        TypePayment,
				Description: "Amounts, timing and conditions of payment",
				Baseline:    RiskLow,
				Rationale:   "Aggressive late fees or acceleration terms can create significant financial exposure.",
				Label:       "payment terms",
				Triggers: append(terms("payment*", "pay", "fee*", "interest", "compensation", "price*"),
					weighted("payment terms", 3),
					weighted("invoic*", 2),
					weighted("late payment*", 2),
					weighted("due date", 2),
				),
				Topics: []string{"payment*", "pay", "paid", "fee*", "invoic*", "cost*", "price*", "interest", "compensation", "money"},
			},
			{
				Type:        TypeIndemnification,
				Description: "Obligation to compensate the other party for third-party claims and losses",
				Baseline:    RiskHigh,
				Rationale:   "Broad indemnities shift third-party claim costs, including legal fees, onto the indemnifying party.",
				Label:       "indemnification",
				Triggers: append(terms("defend", "negligence", "attorney*", "settlement*"),
					weighted("indemn*", 3),
					weighted("hold harmless", 3),
					weighted("claims arising", 2),
					weighted("willful misconduct", 2),
					weighted("legal fees", 2),
				),
				Topics: []string{"indemn*", "hold harmless", "defend", "compensate"},
			},
			{
				Type:        TypeGoverningLaw,
				Description: "Which jurisdiction's law governs the agreement and where disputes are heard",
				Baseline:    RiskLow,
				Rationale:   "An unfavourable governing law or forum can make disputes expensive to pursue.",
				Label:       "governing law",
				Triggers: []Term{
					weighted("governing law", 3),
					weighted("governed by", 2),
					weighted("laws of the state", 3),
					weighted("jurisdiction*", 2),
					weighted("venue", 2),
					weighted("construed in accordance", 2),
					weighted("conflict of laws", 2),
					weighted("courts of", 2),
				},
				Topics:      []string{"governing law", "govern*", "choice of law", "applicable law", "jurisdiction*", "venue", "court*"},
				BroadTopics: []string{"law", "laws", "state"},
			},
			{
				Type:        TypeNonCompete,
				Description: "Restricts a party from competing or soliciting after the relationship ends",
				Baseline:    RiskHigh,
				Rationale:   "Restrictive covenants can limit future business or employment and may be unenforceable if overbroad.",
				Label:       "non-compete",
				Triggers: append(terms("compet*", "solicit*"),
					weighted("non compete", 3),
					weighted("noncompet*", 3),
					weighted("non competition", 3),
					weighted("not compete", 3),
					weighted("restrictive covenant*", 3),
					weighted("non solicit*", 2),
				),
				Topics: []string{"non compete", "noncompet*", "compet*", "solicit*", "restrictive covenant*"},
			},
			{
				Type:        TypeIntellectualProperty,
				Description: "Ownership and licensing of intellectual property",
				Baseline:    RiskMedium,
				Rationale:   "Assignment or broad licences can transfer valuable intellectual property rights.",
				Label:       "intellectual property",
				Triggers: append(terms("patent*", "copyright*", "trademark*", "licen*", "ownership"),
					weighted("intellectual property", 3),
					weighted("work made for hire", 3),
					weighted("work for hire", 3),
				),
				Topics:      []string{"intellectual property", "ip", "patent*", "copyright*", "trademark*", "licen*", "ownership"},
				BroadTopics: []string{"own", "owns"},
			},
		},
	}
}

// DefaultLexicon compiles DefaultDefinition.
func DefaultLexicon() *Lexicon {
	return MustNewLexicon(DefaultDefinition())
}
