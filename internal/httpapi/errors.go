package httpapi

import (
	"encoding/json"
	"net/http"

	"modeld/pkg/types"
)

// writeError maps any error to the shared {success,message,error} JSON body
// and status code, using types.HTTPError's Kind()/StatusCode() when the
// error implements it and falling back to 500 for anything else. This is
// the single central mapping point the ambient error-handling design calls
// for, instead of bespoke per-endpoint status logic.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := ""
	if he, ok := err.(types.HTTPError); ok {
		status = he.StatusCode()
		kind = he.Kind()
	}
	writeJSON(w, status, types.ErrorResponse{
		Success: false,
		Message: err.Error(),
		Error:   kind,
	})
}

// writeJSON writes v as a JSON body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
