package handlers

import (
	"net/http"

	"github.com/kozaktomas/reverse-prompt/internal/taxonomy"
)

// TaxonomyHandler exposes the classification taxonomy.
type TaxonomyHandler struct{}

// NewTaxonomyHandler creates a new taxonomy handler.
func NewTaxonomyHandler() *TaxonomyHandler {
	return &TaxonomyHandler{}
}

type taxonomyCategory struct {
	Name       string   `json:"name"`
	Candidates []string `json:"candidates"`
}

// List returns all categories and their candidate labels in
// resolution order.
func (h *TaxonomyHandler) List(w http.ResponseWriter, r *http.Request) {
	categories := taxonomy.Categories()
	out := make([]taxonomyCategory, 0, len(categories))
	for _, spec := range categories {
		out = append(out, taxonomyCategory{
			Name:       string(spec.Name),
			Candidates: spec.Candidates,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": out,
	})
}
