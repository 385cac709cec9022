package types

import "time"

// Mode is the closed set of interface adapter modes a model may declare.
type Mode string

const (
	ModeChat      Mode = "Chat"
	ModeBase      Mode = "Base"
	ModeEmbedding Mode = "Embedding"
	ModeReranker  Mode = "Reranker"
)

// LaunchVariant is one alternative way to start a model, disambiguated by
// declared order: the first variant whose RequiredDevices are all online wins.
type LaunchVariant struct {
	Name            string         `json:"name" yaml:"name" example:"gA-8gb"`
	RequiredDevices []string       `json:"required_devices" yaml:"required_devices" example:"gA"`
	MemoryMB        map[string]int `json:"memory_mb" yaml:"memory_mb"`
	LaunchScript    string         `json:"launch_script" yaml:"launch_script" example:"/opt/models/tinyllama/start.sh"`
}

// ModelDef is a catalogue entry keyed by canonical name.
type ModelDef struct {
	Name      string          `json:"name" yaml:"name" example:"tinyllama-chat"`
	Aliases   []string        `json:"aliases,omitempty" yaml:"aliases,omitempty" example:"tinyllama"`
	Mode      Mode            `json:"mode" yaml:"mode" example:"Chat"`
	Port      int             `json:"port" yaml:"port" example:"18080"`
	AutoStart bool            `json:"auto_start,omitempty" yaml:"auto_start,omitempty"`
	Variants  []LaunchVariant `json:"variants" yaml:"variants"`
}

// State is a model's lifecycle state.
type State string

const (
	StateStopped  State = "Stopped"
	StateStarting State = "Starting"
	StateRouting  State = "Routing"
	StateDraining State = "Draining"
	StateFailed   State = "Failed"
)

// DeviceSnapshot is the point-in-time reading a Device Adapter reports.
type DeviceSnapshot struct {
	Kind         string   `json:"kind" example:"pool"`
	MemoryKind   string   `json:"memory_kind" example:"vram"`
	TotalMB      int      `json:"total_mb" example:"16384"`
	FreeMB       int      `json:"free_mb" example:"16384"`
	UsedMB       int      `json:"used_mb" example:"0"`
	UtilPercent  float64  `json:"util_percent" example:"0"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

// DeviceInfo is the wire shape for GET /api/devices/info entries.
type DeviceInfo struct {
	Name     string         `json:"name" example:"gA"`
	Online   bool           `json:"online" example:"true"`
	Snapshot DeviceSnapshot `json:"snapshot"`
}

// LogLine is one entry in a per-model ring buffer.
type LogLine struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// RequestRecord is written once per completed forwarded request.
type RequestRecord struct {
	Timestamp float64 `json:"ts"`
	InTok     int     `json:"in_tok"`
	OutTok    int     `json:"out_tok"`
	CacheN    int     `json:"cache_n"`
	PromptN   int     `json:"prompt_n"`
}

// RuntimeInterval records when a model (or the program) was up.
type RuntimeInterval struct {
	StartTS float64 `json:"start_ts"`
	EndTS   float64 `json:"end_ts"`
}

// Tier is a pricing row selecting on input/output token ranges.
// -1 for a Max bound denotes unbounded.
type Tier struct {
	Index           int     `json:"tier_index" example:"1"`
	InMin           int     `json:"in_min" example:"0"`
	InMax           int     `json:"in_max" example:"1000"`
	OutMin          int     `json:"out_min" example:"0"`
	OutMax          int     `json:"out_max" example:"1000"`
	InPrice         float64 `json:"in_price" example:"1.0"`
	OutPrice        float64 `json:"out_price" example:"2.0"`
	CacheOK         bool    `json:"cache_ok,omitempty"`
	CacheReadPrice  float64 `json:"cache_read_price,omitempty"`
	CacheWritePrice float64 `json:"cache_write_price,omitempty"`
}

// PricingConfig is the per-model billing configuration.
type PricingConfig struct {
	Model      string  `json:"model" example:"tinyllama-chat"`
	UseTiered  bool    `json:"use_tiered"`
	Tiers      []Tier  `json:"tiers,omitempty"`
	HourlyRate float64 `json:"hourly_price,omitempty" example:"0.5"`
}
