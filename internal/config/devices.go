package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"modeld/internal/registry"
)

// DeviceDef declares one device instance to register at startup: a kind
// (matching a compile-time-registered Device Adapter) and its name plus an
// opaque per-kind config block.
type DeviceDef struct {
	Name   string         `json:"name" yaml:"name" example:"gA"`
	Kind   string         `json:"kind" yaml:"kind" example:"nvidia-smi"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// LoadDevices reads a device list from a JSON or YAML file, constructs each
// one through the compile-time registry, and adds it to devices. Dispatched
// by extension the same way LoadCatalogue is.
func LoadDevices(path string, devices *registry.DeviceRegistry) error {
	if path == "" {
		return fmt.Errorf("empty devices path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var defs []DeviceDef
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &defs); err != nil {
			return err
		}
	case ".json":
		if err := json.Unmarshal(b, &defs); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported devices extension: %s", ext)
	}

	for _, d := range defs {
		if d.Name == "" || d.Kind == "" {
			return fmt.Errorf("devices: entry missing name or kind")
		}
		adapter, ok, err := registry.NewDevice(d.Kind, d.Name, d.Config)
		if err != nil {
			return fmt.Errorf("devices: construct %q: %w", d.Name, err)
		}
		if !ok {
			return fmt.Errorf("devices: unregistered device kind %q for %q", d.Kind, d.Name)
		}
		devices.Add(adapter)
	}
	return nil
}
