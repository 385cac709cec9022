package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"modeld/internal/logstream"
	"modeld/pkg/types"
)

func registerLogs(r chi.Router, d Deps) {
	r.Get("/api/models/{alias}/logs/stream", func(w http.ResponseWriter, r *http.Request) {
		alias := chi.URLParam(r, "alias")
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, types.ErrBackendError("streaming unsupported"))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		sub := d.Logs.Subscribe(alias)
		defer sub.Close()

		for {
			select {
			case <-r.Context().Done():
				return
			case e, open := <-sub.Events():
				if !open {
					_ = logstream.WriteSSE(w, logstream.Event{Kind: logstream.KindStreamEnd})
					flusher.Flush()
					return
				}
				if e.Kind == logstream.KindError {
					logSubscribersDropped.WithLabelValues(alias).Inc()
				}
				if err := logstream.WriteSSE(w, e); err != nil {
					return
				}
				flusher.Flush()
				if e.Kind == logstream.KindError {
					return
				}
			}
		}
	})

	r.Get("/api/logs/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := d.Logs.Stats()
		out := types.LogsStatsResponse{Models: make(map[string]types.LogBufferStats, len(stats))}
		for name, s := range stats {
			out.Models[name] = types.LogBufferStats{Lines: s.Lines, Capacity: s.Capacity, Subscribers: s.Subscribers}
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Post("/api/logs/{alias}/clear", func(w http.ResponseWriter, r *http.Request) {
		alias := chi.URLParam(r, "alias")
		keepMinutes := 0
		if v := r.URL.Query().Get("keep_minutes"); v != "" {
			if n, err := parsePositiveInt(v); err == nil {
				keepMinutes = n
			}
		}
		d.Logs.Clear(alias, keepMinutes)
		writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "cleared"})
	})
}
