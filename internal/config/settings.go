package config

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"modeld/internal/common/fsutil"
)

// Settings holds program-level configuration: server address, catalogue and
// database paths, and the timing defaults the lifecycle controller and log
// fan-out use. Kept separate from the model catalogue (§4.3) since the two
// change on different cadences and come from different files.
type Settings struct {
	Addr             string        `toml:"addr"`
	CataloguePath    string        `toml:"catalogue_path"`
	DevicesPath      string        `toml:"devices_path"`
	DatabasePath     string        `toml:"database_path"`
	IdleTimeout      time.Duration `toml:"idle_timeout"`
	IdleSweepPeriod  time.Duration `toml:"idle_sweep_period"`
	HealthTimeout    time.Duration `toml:"health_timeout"`
	DrainTimeout     time.Duration `toml:"drain_timeout"`
	DeviceTTL        time.Duration `toml:"device_ttl"`
	LogBufferCap     int           `toml:"log_buffer_capacity"`
	LogSubQueueDepth int           `toml:"log_subscriber_queue_depth"`
	CORSEnabled      bool          `toml:"cors_enabled"`
	CORSOrigins      []string      `toml:"cors_origins"`
}

// DefaultSettings mirrors the spec's stated defaults.
func DefaultSettings() Settings {
	return Settings{
		Addr:             ":8080",
		CataloguePath:    "catalogue.yaml",
		DevicesPath:      "devices.yaml",
		DatabasePath:     "webui/monitoring.db",
		IdleTimeout:      15 * time.Minute,
		IdleSweepPeriod:  30 * time.Second,
		HealthTimeout:    300 * time.Second,
		DrainTimeout:     30 * time.Second,
		DeviceTTL:        1 * time.Second,
		LogBufferCap:     2000,
		LogSubQueueDepth: 256,
	}
}

// LoadSettings reads program settings from a TOML file, overlaying onto
// DefaultSettings so an empty or partial file is legal.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := toml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("settings: %w", err)
	}
	if err := expandPaths(&s); err != nil {
		return s, err
	}
	return s, nil
}

// expandPaths resolves a leading '~' in any file-path setting, so an
// operator's settings file can reference paths under their home directory
// the way a shell would.
func expandPaths(s *Settings) error {
	for _, p := range []*string{&s.CataloguePath, &s.DevicesPath, &s.DatabasePath} {
		expanded, err := fsutil.ExpandHome(*p)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		*p = expanded
	}
	return nil
}
