package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

// catalogueSet returns the current catalogue's model names as a lookup set,
// the shape accounting.Store's orphan operations require.
func catalogueSet(d Deps) map[string]struct{} {
	cat := d.Controller.Catalogue()
	set := make(map[string]struct{}, len(cat.Models))
	for _, m := range cat.Models {
		set[m.Name] = struct{}{}
	}
	return set
}

func registerData(r chi.Router, d Deps) {
	r.Get("/api/data/models/orphaned", func(w http.ResponseWriter, r *http.Request) {
		orphans := d.Store.ListOrphans(catalogueSet(d))
		writeJSON(w, http.StatusOK, types.OrphansResponse{Orphans: orphans})
	})

	r.Get("/api/data/storage/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := d.Store.Stats(d.DBPath)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.StorageStatsResponse{
			FileSizeBytes: stats.FileSizeBytes,
			RecordCounts:  stats.RecordCounts,
		})
	})

	r.Delete("/api/data/models/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if err := d.Store.Drop(name, catalogueSet(d)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "dropped"})
	})
}
