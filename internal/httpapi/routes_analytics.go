package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"modeld/internal/accounting"
	"modeld/pkg/types"
)

// modelAggregate loads one model's bucketed aggregate and, when the model
// bills hourly, replaces the tiered per-request cost series AggregateWindow
// always computes with one derived from its recorded runtime intervals.
func modelAggregate(d Deps, model string, t0, t1 float64, n int) (accounting.Aggregate, types.PricingConfig, error) {
	pricing, err := d.Store.Pricing(model)
	if err != nil {
		return accounting.Aggregate{}, types.PricingConfig{}, err
	}
	agg, err := d.Store.AggregateWindow(model, t0, t1, n, pricing.Tiers)
	if err != nil {
		return accounting.Aggregate{}, types.PricingConfig{}, err
	}
	if !pricing.UseTiered {
		intervals, err := d.Store.RuntimeIntervals(model)
		if err == nil {
			agg.Cost.Values = hourlyCostBuckets(intervals, t0, t1, n, pricing.HourlyRate)
		}
	}
	return agg, pricing, nil
}

func hourlyCostBuckets(intervals []types.RuntimeInterval, t0, t1 float64, n int, rate float64) []float64 {
	out := make([]float64, n)
	if n <= 0 {
		return out
	}
	width := (t1 - t0) / float64(n)
	if width <= 0 {
		return out
	}
	for b := 0; b < n; b++ {
		bt0 := t0 + float64(b)*width
		bt1 := bt0 + width
		for _, iv := range intervals {
			out[b] += accounting.HourlyIntervalCost(iv, bt0, bt1, rate)
		}
	}
	return out
}

func addSeries(dst, src []float64) {
	for i := range dst {
		if i < len(src) {
			dst[i] += src[i]
		}
	}
}

// globalAggregate sums every catalogued model's aggregate into one totals
// series and one by-mode breakdown, per the fleet-wide metrics endpoints
// that have no {alias} in their path.
func globalAggregate(d Deps, t0, t1 float64, n int) (accounting.Aggregate, map[string]accounting.Aggregate) {
	total := newZeroAggregate(t0, t1, n)
	byMode := make(map[string]accounting.Aggregate)

	for _, m := range d.Controller.Catalogue().Models {
		agg, _, err := modelAggregate(d, m.Name, t0, t1, n)
		if err != nil {
			continue
		}
		mergeAggregate(&total, agg)

		mode := string(m.Mode)
		modeAgg, ok := byMode[mode]
		if !ok {
			modeAgg = newZeroAggregate(t0, t1, n)
		}
		mergeAggregate(&modeAgg, agg)
		byMode[mode] = modeAgg
	}
	return total, byMode
}

func newZeroAggregate(t0, t1 float64, n int) accounting.Aggregate {
	mk := func() accounting.BucketSeries { return accounting.BucketSeries{Values: make([]float64, n)} }
	return accounting.Aggregate{
		T0: t0, T1: t1, Buckets: n,
		InputThroughput: mk(), OutputThroughput: mk(), TotalThroughput: mk(),
		CacheHitThroughput: mk(), CacheMissThroughput: mk(),
		InputTokens: mk(), OutputTokens: mk(), TotalTokens: mk(),
		Cost: mk(),
	}
}

func mergeAggregate(dst *accounting.Aggregate, src accounting.Aggregate) {
	addSeries(dst.InputThroughput.Values, src.InputThroughput.Values)
	addSeries(dst.OutputThroughput.Values, src.OutputThroughput.Values)
	addSeries(dst.TotalThroughput.Values, src.TotalThroughput.Values)
	addSeries(dst.CacheHitThroughput.Values, src.CacheHitThroughput.Values)
	addSeries(dst.CacheMissThroughput.Values, src.CacheMissThroughput.Values)
	addSeries(dst.InputTokens.Values, src.InputTokens.Values)
	addSeries(dst.OutputTokens.Values, src.OutputTokens.Values)
	addSeries(dst.TotalTokens.Values, src.TotalTokens.Values)
	addSeries(dst.Cost.Values, src.Cost.Values)
}

func throughputSeries(agg accounting.Aggregate) []types.BucketSeries {
	return []types.BucketSeries{
		{Label: "input", Values: agg.InputThroughput.Values},
		{Label: "output", Values: agg.OutputThroughput.Values},
		{Label: "total", Values: agg.TotalThroughput.Values},
		{Label: "cache_hit", Values: agg.CacheHitThroughput.Values},
		{Label: "cache_miss", Values: agg.CacheMissThroughput.Values},
	}
}

func tokenSeries(agg accounting.Aggregate) []types.BucketSeries {
	return []types.BucketSeries{
		{Label: "input", Values: agg.InputTokens.Values},
		{Label: "output", Values: agg.OutputTokens.Values},
		{Label: "total", Values: agg.TotalTokens.Values},
	}
}

func costSeries(agg accounting.Aggregate) []types.BucketSeries {
	return []types.BucketSeries{{Label: "cost", Values: agg.Cost.Values}}
}

func byModeSeries(byMode map[string]accounting.Aggregate, pick func(accounting.Aggregate) []types.BucketSeries) map[string][]types.BucketSeries {
	out := make(map[string][]types.BucketSeries, len(byMode))
	for mode, agg := range byMode {
		out[mode] = pick(agg)
	}
	return out
}

func registerAnalytics(r chi.Router, d Deps) {
	r.Get("/api/metrics/throughput/{t0}/{t1}/{N}", func(w http.ResponseWriter, r *http.Request) {
		t0, t1, n, ok := windowParams(w, r)
		if !ok {
			return
		}
		total, byMode := globalAggregate(d, t0, t1, n)
		writeJSON(w, http.StatusOK, types.MetricsResponse{
			T0: t0, T1: t1, N: n,
			Series: throughputSeries(total),
			ByMode: byModeSeries(byMode, throughputSeries),
		})
	})

	r.Get("/api/metrics/throughput/current-session", func(w http.ResponseWriter, r *http.Request) {
		t0 := float64(d.StartedAt.Unix())
		t1 := float64(time.Now().Unix())
		if t1 <= t0 {
			t1 = t0 + 1
		}
		total, byMode := globalAggregate(d, t0, t1, 1)
		writeJSON(w, http.StatusOK, types.MetricsResponse{
			T0: t0, T1: t1, N: 1,
			Series: throughputSeries(total),
			ByMode: byModeSeries(byMode, throughputSeries),
		})
	})

	r.Get("/api/analytics/token-trends/{t0}/{t1}/{N}", func(w http.ResponseWriter, r *http.Request) {
		t0, t1, n, ok := windowParams(w, r)
		if !ok {
			return
		}
		total, byMode := globalAggregate(d, t0, t1, n)
		writeJSON(w, http.StatusOK, types.MetricsResponse{
			T0: t0, T1: t1, N: n,
			Series: tokenSeries(total),
			ByMode: byModeSeries(byMode, tokenSeries),
		})
	})

	r.Get("/api/analytics/cost-trends/{t0}/{t1}/{N}", func(w http.ResponseWriter, r *http.Request) {
		t0, t1, n, ok := windowParams(w, r)
		if !ok {
			return
		}
		total, byMode := globalAggregate(d, t0, t1, n)
		writeJSON(w, http.StatusOK, types.MetricsResponse{
			T0: t0, T1: t1, N: n,
			Series: costSeries(total),
			ByMode: byModeSeries(byMode, costSeries),
		})
	})

	r.Get("/api/analytics/usage-summary/{t0}/{t1}", func(w http.ResponseWriter, r *http.Request) {
		t0, ok := floatParam(w, r, "t0")
		if !ok {
			return
		}
		t1, ok := floatParam(w, r, "t1")
		if !ok {
			return
		}

		resp := types.UsageSummaryResponse{ByMode: make(map[string]types.Summary)}
		for _, m := range d.Controller.Catalogue().Models {
			pricing, err := d.Store.Pricing(m.Name)
			if err != nil {
				continue
			}
			sum, err := d.Store.Summarize(m.Name, t0, t1, pricing.Tiers)
			if err != nil {
				continue
			}
			if !pricing.UseTiered {
				if intervals, err := d.Store.RuntimeIntervals(m.Name); err == nil {
					sum.TotalCost = 0
					for _, iv := range intervals {
						sum.TotalCost += accounting.HourlyIntervalCost(iv, t0, t1, pricing.HourlyRate)
					}
				}
			}
			resp.TotalTokens += sum.TotalTokens
			resp.TotalCost += sum.TotalCost

			mode := string(m.Mode)
			modeSum := resp.ByMode[mode]
			modeSum.TotalTokens += sum.TotalTokens
			modeSum.TotalCost += sum.TotalCost
			resp.ByMode[mode] = modeSum
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/api/analytics/model-stats/{alias}/{t0}/{t1}/{N}", func(w http.ResponseWriter, r *http.Request) {
		alias := chi.URLParam(r, "alias")
		t0, t1, n, ok := windowParams(w, r)
		if !ok {
			return
		}
		agg, pricing, err := modelAggregate(d, alias, t0, t1, n)
		if err != nil {
			writeError(w, err)
			return
		}
		sum, err := d.Store.Summarize(alias, t0, t1, pricing.Tiers)
		if err != nil {
			writeError(w, err)
			return
		}
		if !pricing.UseTiered {
			sum.TotalCost = 0
			for _, v := range agg.Cost.Values {
				sum.TotalCost += v
			}
		}
		writeJSON(w, http.StatusOK, types.ModelStatsResponse{
			Model: alias,
			Summary: types.Summary{
				TotalTokens: sum.TotalTokens,
				TotalCost:   sum.TotalCost,
			},
			Series: append(throughputSeries(agg), append(tokenSeries(agg), costSeries(agg)...)...),
		})
	})
}

// windowParams parses the {t0}/{t1}/{N} path segments shared by every
// bucketed analytics endpoint, writing a 400 response on failure.
func windowParams(w http.ResponseWriter, r *http.Request) (t0, t1 float64, n int, ok bool) {
	t0, ok = floatParam(w, r, "t0")
	if !ok {
		return
	}
	t1, ok = floatParam(w, r, "t1")
	if !ok {
		return
	}
	n, ok = intParam(w, r, "N")
	if !ok {
		return
	}
	if n <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "N must be positive"})
		return t0, t1, n, false
	}
	return t0, t1, n, true
}
