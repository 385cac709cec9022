package e2e

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"modeld/internal/accounting"
	"modeld/internal/config"
	"modeld/internal/httpapi"
	"modeld/internal/logstream"
	"modeld/internal/manager"
	"modeld/internal/process"
	"modeld/internal/registry"
	"modeld/pkg/types"
)

// newFakeBackend starts an httptest server standing in for a model's
// backend process, returning the port it listens on.
func newFakeBackend(t *testing.T, body string) (*httptest.Server, int) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return srv, port
}

func writeCatalogue(t *testing.T, dir string, models []types.ModelDef) string {
	t.Helper()
	path := filepath.Join(dir, "catalogue.yaml")
	var b []byte
	for _, m := range models {
		b = append(b, []byte("- name: "+m.Name+"\n")...)
		b = append(b, []byte("  mode: "+string(m.Mode)+"\n")...)
		b = append(b, []byte("  port: "+strconv.Itoa(m.Port)+"\n")...)
		if m.AutoStart {
			b = append(b, []byte("  auto_start: true\n")...)
		}
		b = append(b, []byte("  variants:\n")...)
		for _, v := range m.Variants {
			b = append(b, []byte("    - name: "+v.Name+"\n")...)
			b = append(b, []byte("      launch_script: "+v.LaunchScript+"\n")...)
			b = append(b, []byte("      required_devices: [")...)
			for i, d := range v.RequiredDevices {
				if i > 0 {
					b = append(b, ',')
				}
				b = append(b, []byte(d)...)
			}
			b = append(b, []byte("]\n")...)
			b = append(b, []byte("      memory_mb: {")...)
			i := 0
			for d, mb := range v.MemoryMB {
				if i > 0 {
					b = append(b, ',')
				}
				b = append(b, []byte(d+": "+strconv.Itoa(mb))...)
				i++
			}
			b = append(b, []byte("}\n")...)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}
	return path
}

func writeSleepScript(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "start.sh")
	if err := os.WriteFile(p, []byte("#!/bin/sh\nsleep 30\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return p
}

// newTestServer builds a full gateway HTTP server (Controller, Store,
// Devices, Logs wired through httpapi.NewMux) backed by a real accounting
// database file in a temp directory, standing in for cmd/modeld's wiring.
func newTestServer(t *testing.T, models []types.ModelDef, totalMB int) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	devices := registry.NewDeviceRegistry(time.Millisecond)
	dev, _, err := registry.NewDevice("pool", "gA", map[string]any{"total_mb": totalMB})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	devices.Add(dev)

	path := writeCatalogue(t, dir, models)
	cat, err := config.LoadCatalogue(path, devices)
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}

	store, err := accounting.Open(filepath.Join(dir, "acct.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	for _, m := range cat.Models {
		if err := store.EnsureModel(m.Name); err != nil {
			t.Fatalf("ensure model: %v", err)
		}
	}

	logs := logstream.New(logstream.Config{})
	runner := process.NewRunner(func(model, text string) { logs.Append(model, text) })

	ctrl := manager.New(manager.Config{
		Catalogue:     cat,
		Devices:       devices,
		Runner:        runner,
		Logs:          logs,
		HealthTimeout: 2 * time.Second,
		DrainTimeout:  300 * time.Millisecond,
		IdleTimeout:   time.Hour,
		SweepPeriod:   time.Hour,
	})
	t.Cleanup(ctrl.Close)

	mux := httpapi.NewMux(httpapi.Deps{
		Controller: ctrl,
		Store:      store,
		Devices:    devices,
		Logs:       logs,
		StartedAt:  time.Now(),
		DBPath:     filepath.Join(dir, "acct.db"),
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
