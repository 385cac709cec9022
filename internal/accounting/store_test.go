package accounting

import (
	"path/filepath"
	"testing"

	"modeld/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "monitoring.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureModelIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.EnsureModel("tinyllama-chat"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := s.EnsureModel("tinyllama-chat"); err != nil {
		t.Fatalf("second ensure should be a no-op: %v", err)
	}
	safe, ok := s.SafeName("tinyllama-chat")
	if !ok || safe == "" {
		t.Fatalf("expected a safe name to be assigned")
	}
}

func TestRequestsToleratesOutOfOrderWrites(t *testing.T) {
	s := openTestStore(t)
	s.EnsureModel("m1")

	// Write out-of-order timestamps to simulate async out-of-order arrival.
	ts := []float64{100, 80, 90, 70, 110}
	for _, tv := range ts {
		if err := s.RecordRequest("m1", types.RequestRecord{Timestamp: tv, InTok: 1, OutTok: 1}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := s.Requests("m1", 85, 200)
	if err != nil {
		t.Fatalf("requests: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records >= 85, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Timestamp > got[i].Timestamp {
			t.Fatalf("expected ascending order, got %v", got)
		}
	}
}

func TestTierUpsertAndDeleteLastRejected(t *testing.T) {
	s := openTestStore(t)
	s.EnsureModel("m1")

	if err := s.UpsertTier("m1", types.Tier{Index: 2, InMin: 0, InMax: -1, OutMin: 0, OutMax: -1, InPrice: 2, OutPrice: 4}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	cfg, err := s.Pricing("m1")
	if err != nil {
		t.Fatalf("pricing: %v", err)
	}
	if len(cfg.Tiers) != 2 {
		t.Fatalf("expected 2 tiers (default + new), got %d", len(cfg.Tiers))
	}

	if err := s.DeleteTier("m1", 1); err != nil {
		t.Fatalf("delete tier 1: %v", err)
	}
	if err := s.DeleteTier("m1", 2); !types.IsLastTierDeletion(err) {
		t.Fatalf("expected LastTierDeletion, got %v", err)
	}
}

func TestOrphansAndDrop(t *testing.T) {
	s := openTestStore(t)
	s.EnsureModel("catalogued")
	s.EnsureModel("stale")

	catalogued := map[string]struct{}{"catalogued": {}}
	orphans := s.ListOrphans(catalogued)
	if len(orphans) != 1 || orphans[0] != "stale" {
		t.Fatalf("expected [stale], got %v", orphans)
	}

	if err := s.Drop("catalogued", catalogued); !types.IsOrphanProtected(err) {
		t.Fatalf("expected OrphanProtected, got %v", err)
	}
	if err := s.Drop("stale", catalogued); err != nil {
		t.Fatalf("drop stale: %v", err)
	}
	if _, ok := s.SafeName("stale"); ok {
		t.Fatalf("expected stale to be forgotten")
	}
}
