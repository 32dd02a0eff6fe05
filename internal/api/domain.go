package api

import (
	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions sessions.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	sessionsSystem := sessions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Analyzer,
		runtime.Extractor,
		sessions.NewMetrics(runtime.Metrics.Registerer()),
		runtime.Logger,
		runtime.Pagination,
		sessions.Options{
			MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
			Version:       cfg.Version,
		},
	)

	return &Domain{
		Sessions: sessionsSystem,
	}
}
