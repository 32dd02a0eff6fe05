package api

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/pkg/handlers"
	"github.com/JaimeStill/counsel/pkg/routes"
)

// LexiconEntry describes one clause type of the active taxonomy.
type LexiconEntry struct {
	Type        analysis.ClauseType `json:"type"`
	Description string              `json:"description"`
	Baseline    analysis.RiskLevel  `json:"baseline"`
	Label       string              `json:"label"`
}

// LexiconInfo is the public view of the active lexicon.
type LexiconInfo struct {
	Threshold int            `json:"threshold"`
	Types     []LexiconEntry `json:"types"`
}

type lexiconHandler struct {
	info   LexiconInfo
	logger *slog.Logger
}

func newLexiconHandler(lex *analysis.Lexicon, logger *slog.Logger) *lexiconHandler {
	rules := lex.Rules()
	info := LexiconInfo{
		Threshold: lex.Threshold(),
		Types:     make([]LexiconEntry, 0, len(rules)),
	}
	for _, r := range rules {
		info.Types = append(info.Types, LexiconEntry{
			Type:        r.Type,
			Description: r.Description,
			Baseline:    r.Baseline,
			Label:       lex.Label(r.Type),
		})
	}

	return &lexiconHandler{
		info:   info,
		logger: logger.With("handler", "lexicon"),
	}
}

func (h *lexiconHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/lexicon",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.get},
		},
	}
}

func (h *lexiconHandler) get(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.info)
}
