package accounting

import (
	"fmt"
	"sort"

	"modeld/pkg/types"
)

// Pricing returns model's full billing configuration.
func (s *Store) Pricing(model string) (types.PricingConfig, error) {
	safe, ok := s.SafeName(model)
	if !ok {
		return types.PricingConfig{}, types.ErrModelNotFound(model)
	}

	cfg := types.PricingConfig{Model: model}

	row := s.db.QueryRow(fmt.Sprintf(`SELECT use_tiered FROM %s_billing_mode WHERE id = 1`, safe))
	if err := row.Scan(&cfg.UseTiered); err != nil {
		return types.PricingConfig{}, fmt.Errorf("accounting: read billing mode for %s: %w", model, err)
	}

	row = s.db.QueryRow(fmt.Sprintf(`SELECT price FROM %s_hourly_price WHERE id = 1`, safe))
	if err := row.Scan(&cfg.HourlyRate); err != nil {
		return types.PricingConfig{}, fmt.Errorf("accounting: read hourly price for %s: %w", model, err)
	}

	rows, err := s.db.Query(fmt.Sprintf(
		`SELECT tier_idx, in_min, in_max, out_min, out_max, in_price, out_price, cache_ok, cache_write_price, cache_read_price
		 FROM %s_tier_pricing ORDER BY tier_idx ASC`, safe))
	if err != nil {
		return types.PricingConfig{}, fmt.Errorf("accounting: read tiers for %s: %w", model, err)
	}
	defer rows.Close()
	for rows.Next() {
		var t types.Tier
		if err := rows.Scan(&t.Index, &t.InMin, &t.InMax, &t.OutMin, &t.OutMax, &t.InPrice, &t.OutPrice, &t.CacheOK, &t.CacheWritePrice, &t.CacheReadPrice); err != nil {
			return types.PricingConfig{}, err
		}
		cfg.Tiers = append(cfg.Tiers, t)
	}
	return cfg, rows.Err()
}

// UpsertTier inserts or replaces a tier by index.
func (s *Store) UpsertTier(model string, t types.Tier) error {
	safe, ok := s.SafeName(model)
	if !ok {
		return types.ErrModelNotFound(model)
	}
	_, err := s.db.Exec(fmt.Sprintf(
		`INSERT INTO %s_tier_pricing (tier_idx, in_min, in_max, out_min, out_max, in_price, out_price, cache_ok, cache_write_price, cache_read_price)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tier_idx) DO UPDATE SET
		   in_min=excluded.in_min, in_max=excluded.in_max, out_min=excluded.out_min, out_max=excluded.out_max,
		   in_price=excluded.in_price, out_price=excluded.out_price, cache_ok=excluded.cache_ok,
		   cache_write_price=excluded.cache_write_price, cache_read_price=excluded.cache_read_price`, safe),
		t.Index, t.InMin, t.InMax, t.OutMin, t.OutMax, t.InPrice, t.OutPrice, t.CacheOK, t.CacheWritePrice, t.CacheReadPrice,
	)
	if err != nil {
		return fmt.Errorf("accounting: upsert tier for %s: %w", model, err)
	}
	return nil
}

// DeleteTier removes a tier by index, rejecting the deletion of the last one.
func (s *Store) DeleteTier(model string, idx int) error {
	safe, ok := s.SafeName(model)
	if !ok {
		return types.ErrModelNotFound(model)
	}

	var count int
	if err := s.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s_tier_pricing`, safe)).Scan(&count); err != nil {
		return fmt.Errorf("accounting: count tiers for %s: %w", model, err)
	}
	if count <= 1 {
		return types.ErrLastTierDeletion(model)
	}

	_, err := s.db.Exec(fmt.Sprintf(`DELETE FROM %s_tier_pricing WHERE tier_idx = ?`, safe), idx)
	if err != nil {
		return fmt.Errorf("accounting: delete tier for %s: %w", model, err)
	}
	return nil
}

// SetHourlyPrice overwrites the hourly rate.
func (s *Store) SetHourlyPrice(model string, price float64) error {
	safe, ok := s.SafeName(model)
	if !ok {
		return types.ErrModelNotFound(model)
	}
	_, err := s.db.Exec(fmt.Sprintf(`UPDATE %s_hourly_price SET price = ? WHERE id = 1`, safe), price)
	return err
}

// SetBillingMode switches between tiered and hourly billing.
func (s *Store) SetBillingMode(model string, useTiered bool) error {
	safe, ok := s.SafeName(model)
	if !ok {
		return types.ErrModelNotFound(model)
	}
	_, err := s.db.Exec(fmt.Sprintf(`UPDATE %s_billing_mode SET use_tiered = ? WHERE id = 1`, safe), useTiered)
	return err
}

// matchTier picks the lowest-index tier whose input/output bounds contain
// the request, per the tier-coverage property: -1 bounds are unbounded.
func matchTier(tiers []types.Tier, inTok, outTok int) (types.Tier, bool) {
	sorted := make([]types.Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for _, t := range sorted {
		if boundsContain(t.InMin, t.InMax, inTok) && boundsContain(t.OutMin, t.OutMax, outTok) {
			return t, true
		}
	}
	return types.Tier{}, false
}

func boundsContain(min, max, v int) bool {
	if v <= min {
		return false
	}
	if max == -1 {
		return true
	}
	return v <= max
}

// RequestCost computes the tiered cost of one request against tiers.
// A request matching no tier costs zero without raising an error.
func RequestCost(tiers []types.Tier, r types.RequestRecord) float64 {
	tier, ok := matchTier(tiers, r.InTok, r.OutTok)
	if !ok {
		return 0
	}
	cost := float64(r.PromptN)*tier.InPrice/1e6 + float64(r.OutTok)*tier.OutPrice/1e6
	if tier.CacheOK {
		cost += float64(r.CacheN) * tier.CacheReadPrice / 1e6
	}
	return cost
}

// HourlyIntervalCost costs one runtime interval's overlap with [t0, t1] at
// hourlyRate. Individual per-request cost is undefined in hourly mode.
func HourlyIntervalCost(iv types.RuntimeInterval, t0, t1, hourlyRate float64) float64 {
	start := iv.StartTS
	if start < t0 {
		start = t0
	}
	end := iv.EndTS
	if end > t1 {
		end = t1
	}
	if end <= start {
		return 0
	}
	return (end - start) / 3600 * hourlyRate
}
