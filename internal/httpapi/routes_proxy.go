package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"modeld/pkg/types"
)

// proxyPaths are the OpenAI-compatible routes the Routing Proxy forwards,
// one per interface mode's declared endpoint.
var proxyPaths = []string{
	"/v1/chat/completions",
	"/v1/completions",
	"/v1/embeddings",
	"/v1/rerank",
}

func registerProxy(r chi.Router, d Deps) {
	handler := proxyHandler(d)
	for _, p := range proxyPaths {
		r.Post(p, handler)
	}
}

// modelBody is the only field the Routing Proxy needs to read out of an
// otherwise opaque request body before forwarding it unmodified.
type modelBody struct {
	Model string `json:"model"`
}

// proxyHandler lazily starts the request's target model, forwards the
// request transparently, and records a best-effort usage accounting entry.
// It never fails the client's request over an accounting or metrics error.
func proxyHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, types.ErrInvalidRequest("request body too large or unreadable"))
			return
		}

		var body modelBody
		if err := json.Unmarshal(raw, &body); err != nil || body.Model == "" {
			writeError(w, types.ErrInvalidRequest(`request body must include a "model" field`))
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		r.ContentLength = int64(len(raw))

		def, err := d.Controller.ValidateRequest(body.Model, r.URL.Path)
		if err != nil {
			writeError(w, err)
			return
		}

		startCtx, cancel := joinContexts(r.Context(), serverBaseCtx)
		_, err = d.Controller.EnsureRunning(startCtx, def.Name)
		cancel()
		if err != nil {
			if types.IsInsufficientMemory(err) {
				IncrementBackpressure("insufficient_memory")
			} else if types.IsNoUsableDevice(err) {
				IncrementBackpressure("no_usable_device")
			}
			writeError(w, err)
			return
		}

		release, err := d.Controller.BeginRequest(def.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		defer release()

		logEvent(LevelInfo, r, "routing request", map[string]any{"model": def.Name, "path": r.URL.Path})

		target := &url.URL{Scheme: "http", Host: "127.0.0.1:" + strconv.Itoa(def.Port)}
		proxy := &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(target)
				pr.Out.Host = target.Host
			},
			FlushInterval: -1,
			ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
				writeError(w, types.ErrBackendError(err.Error()))
			},
		}

		rec := newTailRecorder(w)
		proxy.ServeHTTP(rec, r)

		record := types.RequestRecord{Timestamp: float64(time.Now().Unix())}
		if inTok, outTok, cacheN, promptN, ok := extractUsage(rec.tail); ok {
			record.InTok = inTok
			record.OutTok = outTok
			record.CacheN = cacheN
			record.PromptN = promptN
		} else {
			logEvent(LevelDebug, r, "no usage found in response", map[string]any{"model": def.Name})
		}
		if err := d.Store.EnsureModel(def.Name); err == nil {
			_ = d.Store.RecordRequest(def.Name, record)
		}
	}
}

// tailRecorder wraps a ResponseWriter, forwarding every write immediately
// (flushing for streaming responses) while retaining only the last few
// kilobytes written, enough to catch an OpenAI-style usage block whether it
// arrives as the whole non-streamed body or the final Server-Sent Event of
// a streamed one.
type tailRecorder struct {
	http.ResponseWriter
	flusher http.Flusher
	tail    []byte
}

const tailRecorderCap = 64 * 1024

func newTailRecorder(w http.ResponseWriter) *tailRecorder {
	f, _ := w.(http.Flusher)
	return &tailRecorder{ResponseWriter: w, flusher: f}
}

func (t *tailRecorder) Write(p []byte) (int, error) {
	n, err := t.ResponseWriter.Write(p)
	t.tail = append(t.tail, p[:n]...)
	if extra := len(t.tail) - tailRecorderCap; extra > 0 {
		t.tail = t.tail[extra:]
	}
	if t.flusher != nil {
		t.flusher.Flush()
	}
	return n, err
}

func (t *tailRecorder) Flush() {
	if t.flusher != nil {
		t.flusher.Flush()
	}
}

type usagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// timingsPayload is llama.cpp-server's own accounting block, reported
// alongside (not nested under) "usage". cache_n and prompt_n are
// independent counters, not derivable from prompt_tokens.
type timingsPayload struct {
	CacheN  int `json:"cache_n"`
	PromptN int `json:"prompt_n"`
}

type usageEnvelope struct {
	Usage   *usagePayload   `json:"usage"`
	Timings *timingsPayload `json:"timings"`
}

// extractUsage looks for a top-level "usage" object (input/output token
// counts) and a separate top-level "timings" object (cache_n/prompt_n),
// first as a whole JSON response body, then as the last populated pair
// among a captured tail of "data: {...}" Server-Sent Event frames. Returns
// ok=false if neither was found; callers persist a zeroed record in that
// case.
func extractUsage(body []byte) (inTok, outTok, cacheN, promptN int, ok bool) {
	var env usageEnvelope
	if err := json.Unmarshal(bytes.TrimSpace(body), &env); err == nil && (env.Usage != nil || env.Timings != nil) {
		return usageFields(env)
	}

	var last usageEnvelope
	found := false
	for _, line := range bytes.Split(body, []byte("\n")) {
		line = bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(line), []byte("data:")))
		if len(line) == 0 || bytes.Equal(line, []byte("[DONE]")) {
			continue
		}
		var e usageEnvelope
		if err := json.Unmarshal(line, &e); err == nil && (e.Usage != nil || e.Timings != nil) {
			last = e
			found = true
		}
	}
	if !found {
		return 0, 0, 0, 0, false
	}
	return usageFields(last)
}

func usageFields(e usageEnvelope) (inTok, outTok, cacheN, promptN int, ok bool) {
	if e.Usage != nil {
		inTok = e.Usage.PromptTokens
		outTok = e.Usage.CompletionTokens
	}
	if e.Timings != nil {
		cacheN = e.Timings.CacheN
		promptN = e.Timings.PromptN
	}
	return inTok, outTok, cacheN, promptN, true
}
