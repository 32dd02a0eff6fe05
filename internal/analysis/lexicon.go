package analysis

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultThreshold is the minimum classifier score for a candidate to be kept.
const DefaultThreshold = 2

// Term is a trigger or topic phrase. A trailing "*" makes the last word a
// prefix match. A zero Weight defaults to the phrase's word count.
type Term struct {
	Phrase string `toml:"phrase" json:"phrase"`
	Weight int    `toml:"weight,omitempty" json:"weight,omitempty"`
}

// TypeDefinition declares one clause type of the taxonomy. Topics route
// questions to the type. BroadTopics are generic words that only decide
// between types whose Topics match equally often.
type TypeDefinition struct {
	Type        ClauseType `toml:"type" json:"type"`
	Description string     `toml:"description" json:"description"`
	Baseline    RiskLevel  `toml:"baseline" json:"baseline"`
	Rationale   string     `toml:"rationale" json:"rationale"`
	Label       string     `toml:"label" json:"label"`
	Triggers    []Term     `toml:"triggers" json:"triggers"`
	Topics      []string   `toml:"topics" json:"topics"`
	BroadTopics []string   `toml:"broad_topics,omitempty" json:"broad_topics,omitempty"`
}

// Definition is the declarative form of a lexicon, as stored in a TOML file.
// Types are listed in priority order. A de-escalation match that lies inside
// an Exclusions match is ignored ("not limited to" contains "limited to").
type Definition struct {
	Threshold    int              `toml:"threshold" json:"threshold"`
	Escalation   []string         `toml:"escalation" json:"escalation"`
	Deescalation []string         `toml:"deescalation" json:"deescalation"`
	Exclusions   []string         `toml:"exclusions,omitempty" json:"exclusions,omitempty"`
	Types        []TypeDefinition `toml:"types" json:"types"`
}

// Rule is the compiled form of a TypeDefinition.
type Rule struct {
	Type        ClauseType `json:"type"`
	Description string     `json:"description"`
	Baseline    RiskLevel  `json:"baseline"`
	Rationale   string     `json:"rationale"`
	Label       string     `json:"label"`

	triggers []pattern
	topics   []pattern
	broad    []pattern
}

// score sums weight * min(hits, 3) over the rule's triggers.
func (r *Rule) score(normalized string) int {
	total := 0
	for _, t := range r.triggers {
		total += t.weight * min(t.hits(normalized), 3)
	}
	return total
}

func countHits(patterns []pattern, normalized string) int {
	total := 0
	for _, p := range patterns {
		total += p.hits(normalized)
	}
	return total
}

// Lexicon is a validated, immutable clause taxonomy shared by the classifier,
// risk scorer, summariser and question answering.
type Lexicon struct {
	def          Definition
	rules        []Rule
	index        map[ClauseType]int
	escalation   []pattern
	deescalation []pattern
	exclusions   []pattern
}

// NewLexicon validates and compiles a definition.
func NewLexicon(def Definition) (*Lexicon, error) {
	if def.Threshold == 0 {
		def.Threshold = DefaultThreshold
	}
	if err := def.validate(); err != nil {
		return nil, err
	}

	l := &Lexicon{
		def:   def,
		rules: make([]Rule, 0, len(def.Types)),
		index: make(map[ClauseType]int, len(def.Types)),
	}

	for i, td := range def.Types {
		rule := Rule{
			Type:        td.Type,
			Description: td.Description,
			Baseline:    td.Baseline,
			Rationale:   td.Rationale,
			Label:       td.Label,
		}
		if rule.Label == "" {
			rule.Label = strings.ToLower(string(td.Type))
		}
		for _, t := range td.Triggers {
			p, _ := compilePattern(t.Phrase, t.Weight)
			rule.triggers = append(rule.triggers, p)
		}
		rule.topics = compileSignals(td.Topics)
		rule.broad = compileSignals(td.BroadTopics)
		l.rules = append(l.rules, rule)
		l.index[td.Type] = i
	}

	l.escalation = compileSignals(def.Escalation)
	l.deescalation = compileSignals(def.Deescalation)
	l.exclusions = compileSignals(def.Exclusions)

	return l, nil
}

// MustNewLexicon is like NewLexicon but panics on an invalid definition.
func MustNewLexicon(def Definition) *Lexicon {
	l, err := NewLexicon(def)
	if err != nil {
		panic(err)
	}
	return l
}

// LoadLexicon reads and compiles a TOML lexicon file.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes and compiles a TOML lexicon definition.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var def Definition
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLexicon, err)
	}
	return NewLexicon(def)
}

// Definition returns a copy of the definition the lexicon was built from.
func (l *Lexicon) Definition() Definition {
	def := l.def
	def.Escalation = slices.Clone(l.def.Escalation)
	def.Deescalation = slices.Clone(l.def.Deescalation)
	def.Exclusions = slices.Clone(l.def.Exclusions)
	def.Types = make([]TypeDefinition, len(l.def.Types))
	for i, td := range l.def.Types {
		td.Triggers = slices.Clone(td.Triggers)
		td.Topics = slices.Clone(td.Topics)
		td.BroadTopics = slices.Clone(td.BroadTopics)
		def.Types[i] = td
	}
	return def
}

// MarshalTOML encodes the lexicon definition as TOML.
func (l *Lexicon) MarshalTOML() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(l.Definition()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Threshold returns the minimum classification score.
func (l *Lexicon) Threshold() int {
	return l.def.Threshold
}

// Rules returns the compiled rules in priority order.
func (l *Lexicon) Rules() []Rule {
	return slices.Clone(l.rules)
}

// Rule looks up the rule for a clause type.
func (l *Lexicon) Rule(t ClauseType) (Rule, bool) {
	i, ok := l.index[t]
	if !ok {
		return Rule{}, false
	}
	return l.rules[i], true
}

// Label returns the topic label for a type, falling back to its lowercase name.
func (l *Lexicon) Label(t ClauseType) string {
	if r, ok := l.Rule(t); ok {
		return r.Label
	}
	return strings.ToLower(string(t))
}

// Order returns the priority position of t; unknown types sort last.
func (l *Lexicon) Order(t ClauseType) int {
	if i, ok := l.index[t]; ok {
		return i
	}
	return len(l.rules)
}

// TopicHit is the number of topic-term matches found for a clause type.
// Broad counts matches of its generic topic words.
type TopicHit struct {
	Type  ClauseType
	Hits  int
	Broad int
}

// Outranks reports whether h is a stronger match than other: more topic
// hits, then more broad hits. Equal matches do not outrank each other.
func (h TopicHit) Outranks(other TopicHit) bool {
	if h.Hits != other.Hits {
		return h.Hits > other.Hits
	}
	return h.Broad > other.Broad
}

// TopicHits counts topic-term matches in normalised text for every type,
// returning only the types with at least one hit, in priority order.
func (l *Lexicon) TopicHits(normalized string) []TopicHit {
	var out []TopicHit
	for i := range l.rules {
		h := TopicHit{
			Type:  l.rules[i].Type,
			Hits:  countHits(l.rules[i].topics, normalized),
			Broad: countHits(l.rules[i].broad, normalized),
		}
		if h.Hits > 0 || h.Broad > 0 {
			out = append(out, h)
		}
	}
	return out
}

// MentionsTopic reports whether normalised text contains any topic term of t.
func (l *Lexicon) MentionsTopic(t ClauseType, normalized string) bool {
	r, ok := l.Rule(t)
	if !ok {
		return false
	}
	return countHits(r.topics, normalized) > 0
}

// Escalates reports whether normalised text carries an escalation signal.
func (l *Lexicon) Escalates(normalized string) bool {
	for _, p := range l.escalation {
		if p.matches(normalized) {
			return true
		}
	}
	return false
}

// Deescalates reports whether normalised text carries a de-escalation signal
// that no exclusion phrase covers.
func (l *Lexicon) Deescalates(normalized string) bool {
	for _, p := range l.deescalation {
		for _, at := range p.indexes(normalized) {
			if !l.excluded(at, at+len(p.text), normalized) {
				return true
			}
		}
	}
	return false
}

func (l *Lexicon) excluded(start, end int, normalized string) bool {
	for _, x := range l.exclusions {
		for _, at := range x.indexes(normalized) {
			if at <= start && end <= at+len(x.text) {
				return true
			}
		}
	}
	return false
}

func compileSignals(phrases []string) []pattern {
	out := make([]pattern, 0, len(phrases))
	for _, phrase := range phrases {
		if p, ok := compilePattern(phrase, 1); ok {
			out = append(out, p)
		}
	}
	return out
}

func (d *Definition) validate() error {
	if d.Threshold < 1 {
		return fmt.Errorf("%w: threshold must be positive, got %d", ErrInvalidLexicon, d.Threshold)
	}
	if len(d.Types) == 0 {
		return fmt.Errorf("%w: no clause types defined", ErrInvalidLexicon)
	}

	seen := make(map[ClauseType]bool, len(d.Types))
	for i, td := range d.Types {
		if strings.TrimSpace(string(td.Type)) == "" {
			return fmt.Errorf("%w: type %d has no name", ErrInvalidLexicon, i)
		}
		if seen[td.Type] {
			return fmt.Errorf("%w: duplicate type %q", ErrInvalidLexicon, td.Type)
		}
		seen[td.Type] = true

		if !td.Baseline.Valid() {
			return fmt.Errorf("%w: type %q has no valid baseline risk", ErrInvalidLexicon, td.Type)
		}
		if len(td.Triggers) == 0 {
			return fmt.Errorf("%w: type %q has no triggers", ErrInvalidLexicon, td.Type)
		}
		if len(compileSignals(td.Topics)) == 0 {
			return fmt.Errorf("%w: type %q has no topics", ErrInvalidLexicon, td.Type)
		}
		for _, t := range td.Triggers {
			if t.Weight < 0 {
				return fmt.Errorf("%w: type %q trigger %q has negative weight", ErrInvalidLexicon, td.Type, t.Phrase)
			}
			if _, ok := compilePattern(t.Phrase, t.Weight); !ok {
				return fmt.Errorf("%w: type %q has an empty trigger", ErrInvalidLexicon, td.Type)
			}
		}
	}
	return nil
}
