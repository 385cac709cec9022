package httpapi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modeld/internal/accounting"
	"modeld/internal/config"
	"modeld/internal/logstream"
	"modeld/internal/manager"
	"modeld/internal/process"
	"modeld/internal/registry"
	"modeld/pkg/types"
)

// newTestDeps builds a full Deps against real components, the same
// no-mocks style the black-box e2e suite uses, sized for cheap in-process
// route unit tests rather than a running model.
func newTestDeps(t *testing.T, models []types.ModelDef) Deps {
	t.Helper()
	dir := t.TempDir()

	devices := registry.NewDeviceRegistry(time.Millisecond)
	dev, _, err := registry.NewDevice("pool", "gA", map[string]any{"total_mb": 16384})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	devices.Add(dev)

	catPath := filepath.Join(dir, "catalogue.json")
	b, err := json.Marshal(models)
	if err != nil {
		t.Fatalf("marshal catalogue: %v", err)
	}
	if err := os.WriteFile(catPath, b, 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}
	cat, err := config.LoadCatalogue(catPath, devices)
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}

	dbPath := filepath.Join(dir, "acct.db")
	store, err := accounting.Open(dbPath)
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

	return Deps{
		Controller: ctrl,
		Store:      store,
		Devices:    devices,
		Logs:       logs,
		StartedAt:  time.Now(),
		DBPath:     dbPath,
	}
}

func oneChatModel(name string, port int) []types.ModelDef {
	return []types.ModelDef{{
		Name: name, Mode: types.ModeChat, Port: port,
		Variants: []types.LaunchVariant{{
			Name:            "v1",
			LaunchScript:    "/bin/true",
			RequiredDevices: []string{"gA"},
			MemoryMB:        map[string]int{"gA": 100},
		}},
	}}
}
