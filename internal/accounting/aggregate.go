package accounting

import "modeld/pkg/types"

// BucketSeries holds one metric's per-bucket values across [t0, t1].
type BucketSeries struct {
	Values []float64
}

// Aggregate holds every per-bucket series the metrics/analytics endpoints
// need for one model over one window, computed in a single pass.
type Aggregate struct {
	T0, T1  float64
	Buckets int

	InputThroughput     BucketSeries // tokens/sec
	OutputThroughput    BucketSeries
	TotalThroughput     BucketSeries
	CacheHitThroughput  BucketSeries
	CacheMissThroughput BucketSeries

	InputTokens  BucketSeries // totals per bucket, not per second
	OutputTokens BucketSeries
	TotalTokens  BucketSeries

	Cost BucketSeries
}

// bucketIndex maps a timestamp in [t0, t1] to its bucket, clamping the
// right edge into the last bucket rather than overflowing it.
func bucketIndex(ts, t0, t1 float64, n int) int {
	if n <= 0 {
		return 0
	}
	width := (t1 - t0) / float64(n)
	if width <= 0 {
		return 0
	}
	idx := int((ts - t0) / width)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// AggregateWindow computes every bucketed series for model over [t0, t1] in
// one pass: it loads the window's request records once, then accumulates
// into pre-sized bucket slices rather than issuing one query per bucket, so
// UI-facing range queries stay sub-second regardless of row count.
func (s *Store) AggregateWindow(model string, t0, t1 float64, n int, tiers []types.Tier) (Aggregate, error) {
	agg := newAggregate(t0, t1, n)

	records, err := s.Requests(model, t0, t1)
	if err != nil {
		return agg, err
	}
	accumulate(&agg, records, tiers, t0, t1, n)
	return agg, nil
}

func newAggregate(t0, t1 float64, n int) Aggregate {
	mk := func() BucketSeries { return BucketSeries{Values: make([]float64, n)} }
	return Aggregate{
		T0: t0, T1: t1, Buckets: n,
		InputThroughput: mk(), OutputThroughput: mk(), TotalThroughput: mk(),
		CacheHitThroughput: mk(), CacheMissThroughput: mk(),
		InputTokens: mk(), OutputTokens: mk(), TotalTokens: mk(),
		Cost: mk(),
	}
}

func accumulate(agg *Aggregate, records []types.RequestRecord, tiers []types.Tier, t0, t1 float64, n int) {
	if n <= 0 {
		return
	}
	bucketSeconds := (t1 - t0) / float64(n)
	if bucketSeconds <= 0 {
		bucketSeconds = 1
	}

	for _, r := range records {
		b := bucketIndex(r.Timestamp, t0, t1, n)

		agg.InputTokens.Values[b] += float64(r.InTok)
		agg.OutputTokens.Values[b] += float64(r.OutTok)
		total := float64(r.InTok + r.OutTok)
		agg.TotalTokens.Values[b] += total

		agg.InputThroughput.Values[b] += float64(r.InTok) / bucketSeconds
		agg.OutputThroughput.Values[b] += float64(r.OutTok) / bucketSeconds
		agg.TotalThroughput.Values[b] += total / bucketSeconds
		agg.CacheHitThroughput.Values[b] += float64(r.CacheN) / bucketSeconds
		agg.CacheMissThroughput.Values[b] += float64(r.PromptN) / bucketSeconds

		agg.Cost.Values[b] += RequestCost(tiers, r)
	}
}

// UsageSummary is the total tokens/cost across a window, per §4.6's
// usage-summary endpoint.
type UsageSummary struct {
	TotalTokens int64
	TotalCost   float64
}

// Summarize totals every request in [t0, t1] without bucketing.
func (s *Store) Summarize(model string, t0, t1 float64, tiers []types.Tier) (UsageSummary, error) {
	records, err := s.Requests(model, t0, t1)
	if err != nil {
		return UsageSummary{}, err
	}
	var sum UsageSummary
	for _, r := range records {
		sum.TotalTokens += int64(r.InTok + r.OutTok)
		sum.TotalCost += RequestCost(tiers, r)
	}
	return sum, nil
}
