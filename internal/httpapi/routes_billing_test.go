package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

func newBillingRouter(t *testing.T, d Deps) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	registerBilling(r, d)
	return r
}

func TestRegisterBilling_PricingDefaultsToTiered(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))
	r := newBillingRouter(t, d)

	req := httptest.NewRequest(http.MethodGet, "/api/billing/models/alpha/pricing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var cfg types.PricingConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cfg.UseTiered || len(cfg.Tiers) != 1 {
		t.Fatalf("expected a freshly ensured model to default to tiered billing with one free tier, got %+v", cfg)
	}
}

func TestRegisterBilling_UpsertAndDeleteTier(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))
	r := newBillingRouter(t, d)

	body, _ := json.Marshal(types.TierUpsertRequest{Tier: types.Tier{Index: 0, InMax: -1, OutMax: -1, InPrice: 1.5, OutPrice: 2.5}})
	req := httptest.NewRequest(http.MethodPost, "/api/billing/models/alpha/pricing/tier", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/billing/models/alpha/pricing/set/tiered", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("set-mode status=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/billing/models/alpha/pricing", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var cfg types.PricingConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	found := false
	for _, tier := range cfg.Tiers {
		if tier.Index == 0 && tier.InPrice == 1.5 {
			found = true
		}
	}
	if !cfg.UseTiered || !found {
		t.Fatalf("expected upserted tier 0 under tiered billing, got %+v", cfg)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/billing/models/alpha/pricing/tier/0", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRegisterBilling_MalformedBodyRejected(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))
	r := newBillingRouter(t, d)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/models/alpha/pricing/tier", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestRegisterBilling_InvalidModeRejected(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))
	r := newBillingRouter(t, d)

	req := httptest.NewRequest(http.MethodPost, "/api/billing/models/alpha/pricing/set/weekly", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("expected an error status for an invalid billing mode, got 200")
	}
}
