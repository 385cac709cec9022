package accounting

import (
	"fmt"
	"os"

	"modeld/pkg/types"
)

// ListOrphans returns every model name the store knows about that is not
// present in the current catalogue.
func (s *Store) ListOrphans(catalogued map[string]struct{}) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for name := range s.safeFor {
		if _, ok := catalogued[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Drop deletes a model's tables and its name-map entry. Rejected if the
// model is still catalogued.
func (s *Store) Drop(model string, catalogued map[string]struct{}) error {
	if _, ok := catalogued[model]; ok {
		return types.ErrOrphanProtected(model)
	}
	safe, ok := s.SafeName(model)
	if !ok {
		return types.ErrModelNotFound(model)
	}

	tables := []string{
		safe + "_requests", safe + "_runtime", safe + "_tier_pricing",
		safe + "_hourly_price", safe + "_billing_mode",
	}
	for _, t := range tables {
		if _, err := s.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, t)); err != nil {
			return fmt.Errorf("accounting: drop table %s: %w", t, err)
		}
	}
	if _, err := s.db.Exec(`DELETE FROM model_name_map WHERE original = ?`, model); err != nil {
		return fmt.Errorf("accounting: forget model %s: %w", model, err)
	}

	s.mu.Lock()
	delete(s.safeFor, model)
	s.mu.Unlock()
	return nil
}

// StorageStats is the wire shape for GET /api/data/storage/stats.
type StorageStats struct {
	FileSizeBytes int64
	RecordCounts  map[string]int64 // model name -> request row count
}

// Stats reports the database file size and per-model request counts.
func (s *Store) Stats(dbPath string) (StorageStats, error) {
	stats := StorageStats{RecordCounts: make(map[string]int64)}

	if fi, err := os.Stat(dbPath); err == nil {
		stats.FileSizeBytes = fi.Size()
	}

	s.mu.RLock()
	names := make(map[string]string, len(s.safeFor))
	for original, safe := range s.safeFor {
		names[original] = safe
	}
	s.mu.RUnlock()

	for original, safe := range names {
		var count int64
		row := s.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s_requests`, safe))
		if err := row.Scan(&count); err != nil {
			return stats, fmt.Errorf("accounting: count requests for %s: %w", original, err)
		}
		stats.RecordCounts[original] = count
	}
	return stats, nil
}
