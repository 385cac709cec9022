package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

func registerBilling(r chi.Router, d Deps) {
	r.Route("/api/billing/models/{name}", func(r chi.Router) {
		r.Get("/pricing", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			cfg, err := d.Store.Pricing(name)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, cfg)
		})

		r.Post("/pricing/tier", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			var req types.TierUpsertRequest
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
				writeError(w, types.ErrInvalidRequest("malformed tier body"))
				return
			}
			if err := d.Store.UpsertTier(name, req.Tier); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "tier upserted"})
		})

		r.Delete("/pricing/tier/{idx}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			idx, ok := intParam(w, r, "idx")
			if !ok {
				return
			}
			if err := d.Store.DeleteTier(name, idx); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "tier deleted"})
		})

		r.Post("/pricing/hourly", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			var req types.HourlyPriceRequest
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
				writeError(w, types.ErrInvalidRequest("malformed hourly price body"))
				return
			}
			if err := d.Store.SetHourlyPrice(name, req.Price); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "hourly price set"})
		})

		r.Post("/pricing/set/{mode}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			mode := chi.URLParam(r, "mode")
			var useTiered bool
			switch mode {
			case "tiered":
				useTiered = true
			case "hourly":
				useTiered = false
			default:
				writeError(w, types.ErrPricingInvalid("mode must be tiered or hourly"))
				return
			}
			if err := d.Store.SetBillingMode(name, useTiered); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, types.GenericActionResponse{Success: true, Message: "billing mode set"})
		})
	})
}
