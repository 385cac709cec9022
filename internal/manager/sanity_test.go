package manager

import (
	"path/filepath"
	"testing"
	"time"

	"modeld/internal/config"
	"modeld/internal/registry"
	"modeld/pkg/types"
)

func newSanityCatalogue(t *testing.T, models []types.ModelDef, devices *registry.DeviceRegistry) *config.Catalogue {
	t.Helper()
	dir := t.TempDir()
	path := writeCatalogue(t, dir, models)
	cat, err := config.LoadCatalogue(path, devices)
	if err != nil {
		t.Fatalf("load catalogue: %v", err)
	}
	return cat
}

func TestSanityCheckOK(t *testing.T) {
	dir := t.TempDir()
	script := writeSleepScript(t, dir)

	devices := registry.NewDeviceRegistry(time.Millisecond)
	dev, _, err := registry.NewDevice("pool", "gA", map[string]any{"total_mb": 8000})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	devices.Add(dev)

	cat := newSanityCatalogue(t, []types.ModelDef{{
		Name: "alpha", Mode: types.ModeChat, Port: 19100,
		Variants: []types.LaunchVariant{{
			Name: "v1", LaunchScript: script, RequiredDevices: []string{"gA"},
		}},
	}}, devices)

	report := SanityCheck(cat, devices)
	if !report.OK() {
		t.Fatalf("expected OK report, got %+v", report)
	}
	if report.ModelsChecked != 1 {
		t.Fatalf("expected 1 model checked, got %d", report.ModelsChecked)
	}
}

func TestSanityCheckMissingBinary(t *testing.T) {
	dir := t.TempDir()

	devices := registry.NewDeviceRegistry(time.Millisecond)
	dev, _, err := registry.NewDevice("pool", "gA", map[string]any{"total_mb": 8000})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	devices.Add(dev)

	cat := newSanityCatalogue(t, []types.ModelDef{{
		Name: "alpha", Mode: types.ModeChat, Port: 19101,
		Variants: []types.LaunchVariant{{
			Name: "v1", LaunchScript: filepath.Join(dir, "does-not-exist.sh"), RequiredDevices: []string{"gA"},
		}},
	}}, devices)

	report := SanityCheck(cat, devices)
	if report.OK() {
		t.Fatalf("expected report to flag missing binary, got %+v", report)
	}
	if len(report.MissingBinary) != 1 || report.MissingBinary[0] != "alpha" {
		t.Fatalf("expected alpha flagged missing binary, got %+v", report.MissingBinary)
	}
}

func TestSanityCheckOfflineOnly(t *testing.T) {
	dir := t.TempDir()
	script := writeSleepScript(t, dir)

	devices := registry.NewDeviceRegistry(time.Millisecond)
	dev, _, err := registry.NewDevice("pool", "gA", map[string]any{"total_mb": 8000})
	if err != nil {
		t.Fatalf("new device: %v", err)
	}
	devices.Add(dev)

	cat := newSanityCatalogue(t, []types.ModelDef{{
		Name: "alpha", Mode: types.ModeChat, Port: 19102,
		Variants: []types.LaunchVariant{{
			Name: "v1", LaunchScript: script, RequiredDevices: []string{"gA"},
		}},
	}}, devices)

	// Remove the device after catalogue validation to simulate it going
	// offline by the time the controller starts.
	offlineDevices := registry.NewDeviceRegistry(time.Millisecond)
	report := SanityCheck(cat, offlineDevices)
	if report.OK() {
		t.Fatalf("expected report to flag offline-only model, got %+v", report)
	}
	if len(report.OfflineOnly) != 1 || report.OfflineOnly[0] != "alpha" {
		t.Fatalf("expected alpha flagged offline-only, got %+v", report.OfflineOnly)
	}
}
