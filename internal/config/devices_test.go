package config

import (
	"testing"

	"modeld/internal/registry"
)

func TestLoadDevices_YAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "devices.yaml", `
- name: gA
  kind: pool
  config:
    total_mb: 16384
`)
	reg := registry.NewDeviceRegistry(0)
	if err := LoadDevices(p, reg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reg.Has("gA") {
		t.Fatalf("expected device gA to be registered")
	}
}

func TestLoadDevices_JSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "devices.json", `[{"name":"gB","kind":"pool","config":{"total_mb":8192}}]`)
	reg := registry.NewDeviceRegistry(0)
	if err := LoadDevices(p, reg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reg.Has("gB") {
		t.Fatalf("expected device gB to be registered")
	}
}

func TestLoadDevices_UnregisteredKindRejected(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "devices.yaml", "- name: gA\n  kind: not-a-kind\n")
	reg := registry.NewDeviceRegistry(0)
	if err := LoadDevices(p, reg); err == nil {
		t.Fatalf("expected unregistered kind error")
	}
}

func TestLoadDevices_MissingNameOrKindRejected(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "devices.yaml", "- name: gA\n")
	reg := registry.NewDeviceRegistry(0)
	if err := LoadDevices(p, reg); err == nil {
		t.Fatalf("expected missing-kind error")
	}
}

func TestLoadDevices_UnsupportedExtension(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "devices.txt", "not supported")
	reg := registry.NewDeviceRegistry(0)
	if err := LoadDevices(p, reg); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestLoadDevices_EmptyPathRejected(t *testing.T) {
	reg := registry.NewDeviceRegistry(0)
	if err := LoadDevices("", reg); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
