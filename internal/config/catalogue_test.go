package config

import (
	"testing"

	_ "modeld/internal/registry" // register built-in interface modes via init()
)

func TestLoadCatalogue_YAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "catalogue.yaml", `
- name: tinyllama-chat
  aliases: [tinyllama]
  mode: Chat
  port: 18080
  auto_start: true
  variants:
    - name: gA-8gb
      required_devices: [gA]
      memory_mb: {gA: 8192}
      launch_script: /opt/start.sh
`)
	c, err := LoadCatalogue(p, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, ok := c.Resolve("tinyllama")
	if !ok || m.Name != "tinyllama-chat" {
		t.Fatalf("alias resolution failed: %+v ok=%v", m, ok)
	}
	if _, ok := c.Resolve("tinyllama-chat"); !ok {
		t.Fatalf("canonical name should also resolve")
	}
}

func TestLoadCatalogue_DuplicateAliasRejected(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "catalogue.json", `[
		{"name":"m1","aliases":["x"],"mode":"Chat","port":1,"variants":[]},
		{"name":"m2","aliases":["x"],"mode":"Chat","port":2,"variants":[]}
	]`)
	if _, err := LoadCatalogue(p, nil); err == nil {
		t.Fatalf("expected duplicate alias error")
	}
}

func TestLoadCatalogue_UnknownModeRejected(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "catalogue.json", `[{"name":"m1","mode":"NotAMode","port":1,"variants":[]}]`)
	if _, err := LoadCatalogue(p, nil); err == nil {
		t.Fatalf("expected unregistered mode error")
	}
}

func TestLoadCatalogue_UnsupportedExtension(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "catalogue.txt", "not supported")
	if _, err := LoadCatalogue(p, nil); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
