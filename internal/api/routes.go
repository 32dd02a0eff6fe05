package api

import (
	"net/http"

	"github.com/JaimeStill/counsel/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	patterns := routes.Register(
		mux,
		domain.Sessions.Handler().Routes(),
		newLexiconHandler(runtime.Analyzer.Lexicon(), runtime.Logger).routes(),
	)
	runtime.Logger.Debug("routes registered", "count", len(patterns))
}
