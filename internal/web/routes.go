package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/reverse-prompt/internal/pipeline"
	"github.com/kozaktomas/reverse-prompt/internal/store"
	"github.com/kozaktomas/reverse-prompt/internal/web/handlers"
)

func (s *Server) setupRoutes(p *pipeline.Pipeline, runs store.RunStore) {
	describeHandler := handlers.NewDescribeHandler(p, runs)
	taxonomyHandler := handlers.NewTaxonomyHandler()
	runsHandler := handlers.NewRunsHandler(runs)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/describe", describeHandler.Describe)
		r.Get("/taxonomy", taxonomyHandler.List)
		r.Get("/runs", runsHandler.List)
	})
}
