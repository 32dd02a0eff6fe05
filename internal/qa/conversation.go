package qa

import (
	"slices"
	"sync"

	"github.com/JaimeStill/counsel/internal/analysis"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is a single message in a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is an append-only, concurrency-safe log of turns scoped to
// one report. Replacing the report means starting a new Conversation.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
}

// Append adds turns to the end of the log.
func (c *Conversation) Append(turns ...Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, turns...)
}

// Turns returns a copy of the log.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.turns)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Ask answers question with e and records the question and answer as a
// pair. Nothing is recorded when the question is rejected.
func (c *Conversation) Ask(e *Engine, question string, report *analysis.Report, doc *analysis.Document) (Response, error) {
	resp, err := e.Respond(question, report.Clauses, doc)
	if err != nil {
		return Response{}, err
	}
	c.Append(
		Turn{Role: RoleUser, Text: question},
		Turn{Role: RoleAssistant, Text: resp.Text},
	)
	return resp, nil
}
