package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

func TestRegisterLogs_ClearAndStats(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))
	d.Logs.Append("alpha", "hello\n")
	d.Logs.Append("alpha", "world\n")

	r := chi.NewRouter()
	registerLogs(r, d)

	req := httptest.NewRequest(http.MethodGet, "/api/logs/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var stats types.LogsStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Models["alpha"].Lines != 2 {
		t.Fatalf("expected 2 buffered lines, got %+v", stats.Models["alpha"])
	}

	req = httptest.NewRequest(http.MethodPost, "/api/logs/alpha/clear", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/logs/stats", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Models["alpha"].Lines != 0 {
		t.Fatalf("expected buffer cleared, got %+v", stats.Models["alpha"])
	}
}

// TestRegisterLogs_StreamDeliversAppendedLines drives the SSE handler
// through a real chi mux with a canceled-on-return request context, since
// httptest.NewRecorder has no Flusher-aware streaming client of its own.
func TestRegisterLogs_StreamDeliversAppendedLines(t *testing.T) {
	d := newTestDeps(t, oneChatModel("alpha", 19000))

	mux := chi.NewRouter()
	registerLogs(mux, d)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/models/alpha/logs/stream", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	d.Logs.Append("alpha", "streamed line\n")

	reader := bufio.NewReader(resp.Body)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.Contains(line, "streamed line") {
			return
		}
	}
	t.Fatalf("did not observe appended line over the SSE stream")
}
