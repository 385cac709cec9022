package adminctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"modeld/pkg/types"
)

func TestClientPricing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/billing/models/tinyllama-chat/pricing" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(types.PricingConfig{Model: "tinyllama-chat", UseTiered: true, Tiers: []types.Tier{{Index: 0, InMax: -1, OutMax: -1}}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	p, err := c.Pricing("tinyllama-chat")
	if err != nil {
		t.Fatalf("Pricing: %v", err)
	}
	if !p.UseTiered || len(p.Tiers) != 1 {
		t.Fatalf("unexpected pricing: %+v", p)
	}
}

func TestClientErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(types.ErrorResponse{Success: false, Message: "model not found: x", Error: "ModelNotFound"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Pricing("x")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClientUpsertTierAndDelete(t *testing.T) {
	var gotBody types.TierUpsertRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Fatalf("decode: %v", err)
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(types.GenericActionResponse{Success: true})
		case http.MethodDelete:
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(types.GenericActionResponse{Success: true})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	tier := types.Tier{Index: 2, InMax: 500, OutMax: 500, InPrice: 1.5}
	if err := c.UpsertTier("m1", tier); err != nil {
		t.Fatalf("UpsertTier: %v", err)
	}
	if gotBody.Tier.Index != 2 || gotBody.Tier.InPrice != 1.5 {
		t.Fatalf("unexpected body sent: %+v", gotBody)
	}
	if err := c.DeleteTier("m1", 2); err != nil {
		t.Fatalf("DeleteTier: %v", err)
	}
}
