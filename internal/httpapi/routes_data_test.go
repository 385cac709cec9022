package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

func TestRegisterData_OrphansAndDrop(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))
	// EnsureModel a second model directly in the store so it has tables but
	// never appears in the catalogue, the orphan condition Drop guards.
	if err := d.Store.EnsureModel("ghost"); err != nil {
		t.Fatalf("ensure ghost: %v", err)
	}

	r := chi.NewRouter()
	registerData(r, d)

	req := httptest.NewRequest(http.MethodGet, "/api/data/models/orphaned", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var orphans types.OrphansResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &orphans); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, name := range orphans.Orphans {
		if name == "ghost" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ghost to be listed as orphaned, got %+v", orphans.Orphans)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/data/models/ghost", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("drop status=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/data/models/alpha", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("expected drop of a catalogued (non-orphaned) model to be rejected")
	}
}

func TestRegisterData_StorageStats(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))
	r := chi.NewRouter()
	registerData(r, d)

	req := httptest.NewRequest(http.MethodGet, "/api/data/storage/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out types.StorageStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.FileSizeBytes <= 0 {
		t.Fatalf("expected a positive database file size, got %d", out.FileSizeBytes)
	}
}
