package accounting

import (
	"fmt"
	"sort"
	"time"

	"modeld/pkg/types"
)

// boundaryBuffer is how many extra out-of-order records past the window's
// left edge get pulled in before trusting a descending scan's cutoff,
// mirroring the original implementation's buffer_count around get_model_requests.
const boundaryBuffer = 20

// RecordRequest appends one completed-request record for model.
func (s *Store) RecordRequest(model string, r types.RequestRecord) error {
	safe, ok := s.SafeName(model)
	if !ok {
		return fmt.Errorf("accounting: unknown model %s", model)
	}
	_, err := s.db.Exec(
		fmt.Sprintf(`INSERT INTO %s_requests (ts, in_tok, out_tok, cache_n, prompt_n) VALUES (?, ?, ?, ?, ?)`, safe),
		r.Timestamp, r.InTok, r.OutTok, r.CacheN, r.PromptN,
	)
	if err != nil {
		return fmt.Errorf("accounting: record request for %s: %w", model, err)
	}
	return nil
}

// StartRuntime opens a new runtime interval for model.
func (s *Store) StartRuntime(model string, startTS float64) error {
	safe, ok := s.SafeName(model)
	if !ok {
		return fmt.Errorf("accounting: unknown model %s", model)
	}
	_, err := s.db.Exec(
		fmt.Sprintf(`INSERT INTO %s_runtime (start_ts, end_ts) VALUES (?, ?)`, safe),
		startTS, startTS,
	)
	return err
}

// TouchRuntime advances the open interval's end so a still-live model's
// runtime is queryable without waiting for it to stop.
func (s *Store) TouchRuntime(model string, ts float64) error {
	safe, ok := s.SafeName(model)
	if !ok {
		return fmt.Errorf("accounting: unknown model %s", model)
	}
	_, err := s.db.Exec(
		fmt.Sprintf(`UPDATE %s_runtime SET end_ts = ? WHERE id = (SELECT MAX(id) FROM %s_runtime)`, safe, safe),
		ts,
	)
	return err
}

// Requests returns the request records with ts in [t0, t1], ascending by
// timestamp. It scans backward from the newest record so it can tolerate a
// small amount of out-of-order asynchronous writes near the left edge: once
// a candidate older than t0 is seen, it stops after boundaryBuffer rows
// counted from that candidate (inclusive), then filters precisely in memory.
func (s *Store) Requests(model string, t0, t1 float64) ([]types.RequestRecord, error) {
	safe, ok := s.SafeName(model)
	if !ok {
		return nil, nil
	}
	if t1 == 0 {
		t1 = float64(time.Now().Unix())
	}

	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT ts, in_tok, out_tok, cache_n, prompt_n FROM %s_requests WHERE ts <= ? ORDER BY id DESC`, safe),
		t1,
	)
	if err != nil {
		return nil, fmt.Errorf("accounting: query requests for %s: %w", model, err)
	}
	defer rows.Close()

	var candidates []types.RequestRecord
	countdown := boundaryBuffer
	boundaryFound := false
	for rows.Next() {
		var r types.RequestRecord
		if err := rows.Scan(&r.Timestamp, &r.InTok, &r.OutTok, &r.CacheN, &r.PromptN); err != nil {
			return nil, err
		}
		candidates = append(candidates, r)

		if t0 > 0 && !boundaryFound && r.Timestamp < t0 {
			boundaryFound = true
		}
		if boundaryFound {
			countdown--
			if countdown <= 0 {
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := candidates[:0]
	for _, r := range candidates {
		if r.Timestamp >= t0 {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// RecordProgramStart opens a new interval in the program-wide runtime table,
// tracked separately from any single model's runtime so a fresh process
// start is recorded even before any model has ever run.
func (s *Store) RecordProgramStart(startTS float64) error {
	_, err := s.db.Exec(`INSERT INTO program_runtime (start_ts, end_ts) VALUES (?, ?)`, startTS, startTS)
	return err
}

// TouchProgramRuntime advances the current program interval's end timestamp.
func (s *Store) TouchProgramRuntime(ts float64) error {
	_, err := s.db.Exec(`UPDATE program_runtime SET end_ts = ? WHERE id = (SELECT MAX(id) FROM program_runtime)`, ts)
	return err
}

// RuntimeIntervals returns every runtime interval recorded for model.
func (s *Store) RuntimeIntervals(model string) ([]types.RuntimeInterval, error) {
	safe, ok := s.SafeName(model)
	if !ok {
		return nil, nil
	}
	rows, err := s.db.Query(fmt.Sprintf(`SELECT start_ts, end_ts FROM %s_runtime ORDER BY id ASC`, safe))
	if err != nil {
		return nil, fmt.Errorf("accounting: query runtime for %s: %w", model, err)
	}
	defer rows.Close()

	var out []types.RuntimeInterval
	for rows.Next() {
		var iv types.RuntimeInterval
		if err := rows.Scan(&iv.StartTS, &iv.EndTS); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}
