package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

func registerDevices(r chi.Router, d Deps) {
	r.Get("/api/devices/info", func(w http.ResponseWriter, r *http.Request) {
		names := d.Devices.Names()
		out := types.DevicesInfoResponse{Devices: make([]types.DeviceInfo, 0, len(names))}
		for _, name := range names {
			out.Devices = append(out.Devices, types.DeviceInfo{
				Name:     name,
				Online:   d.Devices.Online(name),
				Snapshot: d.Devices.Snapshot(name),
			})
		}
		writeJSON(w, http.StatusOK, out)
	})
}
