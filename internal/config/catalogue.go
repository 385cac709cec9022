package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"modeld/internal/registry"
	"modeld/pkg/types"
)

// Catalogue is the parsed, validated model definition list plus fast
// lookup indices by canonical name and alias.
type Catalogue struct {
	Models    []types.ModelDef
	byName    map[string]*types.ModelDef
	byAlias   map[string]*types.ModelDef
}

// LoadCatalogue reads and validates the model catalogue from a JSON or YAML
// file, dispatched by extension the way the teacher's settings loader does.
func LoadCatalogue(path string, devices *registry.DeviceRegistry) (*Catalogue, error) {
	if path == "" {
		return nil, fmt.Errorf("empty catalogue path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var models []types.ModelDef
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &models); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(b, &models); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported catalogue extension: %s", ext)
	}

	return validate(models, devices)
}

func validate(models []types.ModelDef, devices *registry.DeviceRegistry) (*Catalogue, error) {
	c := &Catalogue{
		Models:  models,
		byName:  make(map[string]*types.ModelDef, len(models)),
		byAlias: make(map[string]*types.ModelDef, len(models)),
	}

	for i := range models {
		m := &models[i]
		if m.Name == "" {
			return nil, fmt.Errorf("catalogue: model at index %d has no name", i)
		}
		if _, exists := c.byName[m.Name]; exists {
			return nil, fmt.Errorf("catalogue: duplicate model name %q", m.Name)
		}
		if _, ok := registry.InterfaceFor(m.Mode); !ok {
			return nil, fmt.Errorf("catalogue: model %q has unregistered mode %q", m.Name, m.Mode)
		}
		for _, v := range m.Variants {
			for _, d := range v.RequiredDevices {
				if devices != nil && !devices.Has(d) {
					return nil, fmt.Errorf("catalogue: model %q variant %q requires unregistered device %q", m.Name, v.Name, d)
				}
			}
			for d := range v.MemoryMB {
				if devices != nil && !devices.Has(d) {
					return nil, fmt.Errorf("catalogue: model %q variant %q reserves memory on unregistered device %q", m.Name, v.Name, d)
				}
			}
		}
		c.byName[m.Name] = m
	}

	// Canonical names are reserved in byAlias before any alias is processed,
	// so a model's own name always resolves to itself; an alias that equals
	// another model's canonical name is rejected below.
	for i := range models {
		c.byAlias[models[i].Name] = &models[i]
	}
	for i := range models {
		m := &models[i]
		for _, alias := range m.Aliases {
			if owner, exists := c.byName[alias]; exists && owner != m {
				return nil, fmt.Errorf("catalogue: alias %q of model %q collides with model %q's canonical name", alias, m.Name, owner.Name)
			}
			if owner, exists := c.byAlias[alias]; exists && owner != m {
				return nil, fmt.Errorf("catalogue: duplicate alias %q", alias)
			}
			c.byAlias[alias] = m
		}
	}

	return c, nil
}

// Resolve maps an alias or canonical name to its ModelDef.
func (c *Catalogue) Resolve(alias string) (*types.ModelDef, bool) {
	m, ok := c.byAlias[alias]
	return m, ok
}

// ByName looks up a model by its canonical name only.
func (c *Catalogue) ByName(name string) (*types.ModelDef, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// ByMode returns all models declaring the given mode.
func (c *Catalogue) ByMode(mode types.Mode) []*types.ModelDef {
	var out []*types.ModelDef
	for i := range c.Models {
		if c.Models[i].Mode == mode {
			out = append(out, &c.Models[i])
		}
	}
	return out
}

// AutoStartModels returns models flagged auto_start.
func (c *Catalogue) AutoStartModels() []*types.ModelDef {
	var out []*types.ModelDef
	for i := range c.Models {
		if c.Models[i].AutoStart {
			out = append(out, &c.Models[i])
		}
	}
	return out
}
