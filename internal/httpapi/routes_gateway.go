package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

func registerGateway(r chi.Router, d Deps) {
	info := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.InfoResponse{
			Message:   "local model fleet gateway",
			Version:   "1.0.0",
			ModelsURL: "/v1/models",
		})
	}
	r.Get("/", info)
	r.Get("/api/info", info)

	health := func(w http.ResponseWriter, r *http.Request) {
		cat := d.Controller.Catalogue()
		running := 0
		for _, s := range d.Controller.Snapshot() {
			if s.State == types.StateRouting {
				running++
			}
		}
		writeJSON(w, http.StatusOK, types.HealthResponse{
			Status:        "healthy",
			ModelsCount:   len(cat.Models),
			RunningModels: running,
		})
	}
	r.Get("/health", health)
	r.Get("/api/health", health)

	r.Get("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		cat := d.Controller.Catalogue()
		created := d.StartedAt.Unix()
		entries := make([]types.ModelCatalogueEntry, 0, len(cat.Models))
		for _, m := range cat.Models {
			entries = append(entries, types.ModelCatalogueEntry{
				ID:      m.Name,
				Object:  "model",
				Created: created,
				OwnedBy: "local",
				Aliases: m.Aliases,
				Mode:    m.Mode,
			})
		}
		writeJSON(w, http.StatusOK, types.ModelsResponse{Object: "list", Data: entries})
	})
}
