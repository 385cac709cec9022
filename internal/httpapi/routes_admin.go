package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

func registerAdmin(r chi.Router, d Deps) {
	r.Route("/api/models/{alias}", func(r chi.Router) {
		r.Get("/info", func(w http.ResponseWriter, r *http.Request) {
			alias := chi.URLParam(r, "alias")
			if alias == "all-models" {
				out := types.AllModelsInfo{Models: make(map[string]types.ModelInfo)}
				for _, s := range d.Controller.Snapshot() {
					out.Models[s.Name] = types.ModelInfo{
						Name:         s.Name,
						State:        s.State,
						Variant:      s.Variant,
						PID:          s.PID,
						Port:         s.Port,
						InFlight:     s.InFlight,
						LastActivity: unixOrZero(s.LastActivity),
						FailReason:   s.FailReason,
					}
				}
				writeJSON(w, http.StatusOK, out)
				return
			}
			s, err := d.Controller.SnapshotOne(alias)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.ModelInfo{
				Name:         s.Name,
				State:        s.State,
				Variant:      s.Variant,
				PID:          s.PID,
				Port:         s.Port,
				InFlight:     s.InFlight,
				LastActivity: unixOrZero(s.LastActivity),
				FailReason:   s.FailReason,
			})
		})

		r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
			alias := chi.URLParam(r, "alias")
			ctx, cancel := joinContexts(r.Context(), serverBaseCtx)
			_, err := d.Controller.EnsureRunning(ctx, alias)
			cancel()
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "started"})
		})

		r.Post("/stop", func(w http.ResponseWriter, r *http.Request) {
			alias := chi.URLParam(r, "alias")
			if err := d.Controller.StopModel(alias); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "stopped"})
		})
	})

	r.Post("/api/models/restart-autostart", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
		defer cancel()
		started := d.Controller.RestartAutostart(ctx)
		writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "restarted autostart models", Started: started})
	})

	r.Post("/api/models/stop-all", func(w http.ResponseWriter, r *http.Request) {
		stopped := d.Controller.StopAll()
		writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "stopped all running models", Started: stopped})
	})
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
