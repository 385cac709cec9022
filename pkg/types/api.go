package types

// ModelCatalogueEntry is the OpenAI-shaped entry returned by GET /v1/models.
type ModelCatalogueEntry struct {
	ID      string   `json:"id" example:"tinyllama-chat"`
	Object  string   `json:"object" example:"model"`
	Created int64    `json:"created" example:"1700000000"`
	OwnedBy string   `json:"owned_by" example:"local"`
	Aliases []string `json:"aliases,omitempty" example:"tinyllama"`
	Mode    Mode     `json:"mode" example:"Chat"`
}

// ModelsResponse wraps GET /v1/models.
type ModelsResponse struct {
	Object string                 `json:"object" example:"list"`
	Data   []ModelCatalogueEntry  `json:"data"`
}

// ErrorResponse is the consistent JSON error payload for all error kinds.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"model not found: foo"`
	Error   string `json:"error,omitempty" example:"ModelNotFound"`
}

// ModelInfo is a per-model status entry for GET /api/models/{alias}/info.
type ModelInfo struct {
	Name         string `json:"name" example:"tinyllama-chat"`
	State        State  `json:"state" example:"Routing"`
	Variant      string `json:"variant,omitempty" example:"gA-8gb"`
	PID          int    `json:"pid,omitempty" example:"12345"`
	Port         int    `json:"port,omitempty" example:"18080"`
	InFlight     int    `json:"in_flight" example:"0"`
	LastActivity int64  `json:"last_activity_unix" example:"1700000000"`
	FailReason   string `json:"fail_reason,omitempty"`
}

// AllModelsInfo answers GET /api/models/all-models/info.
type AllModelsInfo struct {
	Models map[string]ModelInfo `json:"models"`
}

// HealthResponse answers GET /health and GET /api/health.
type HealthResponse struct {
	Status        string `json:"status" example:"healthy"`
	ModelsCount   int    `json:"models_count" example:"3"`
	RunningModels int    `json:"running_models" example:"1"`
}

// InfoResponse answers GET / and GET /api/info.
type InfoResponse struct {
	Message   string `json:"message" example:"fleet gateway"`
	Version   string `json:"version" example:"1.0.0"`
	ModelsURL string `json:"models_url" example:"/v1/models"`
}

// GenericActionResponse is returned by start/stop/restart-autostart/stop-all.
type GenericActionResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Started []string `json:"started,omitempty"`
}

// LogsStatsResponse answers GET /api/logs/stats.
type LogsStatsResponse struct {
	Models map[string]LogBufferStats `json:"models"`
}

// LogBufferStats is one model's ring-buffer occupancy and subscriber count.
type LogBufferStats struct {
	Lines       int `json:"lines" example:"842"`
	Capacity    int `json:"capacity" example:"2000"`
	Subscribers int `json:"subscribers" example:"1"`
}

// DevicesInfoResponse answers GET /api/devices/info.
type DevicesInfoResponse struct {
	Devices []DeviceInfo `json:"devices"`
}

// BucketSeries is a single named time series over N buckets.
type BucketSeries struct {
	Label  string    `json:"label" example:"input"`
	Values []float64 `json:"values"`
}

// MetricsResponse answers the bucketed metrics/analytics endpoints.
type MetricsResponse struct {
	T0      float64        `json:"t0"`
	T1      float64        `json:"t1"`
	N       int            `json:"n"`
	Series  []BucketSeries `json:"series"`
	ByMode  map[string][]BucketSeries `json:"by_mode,omitempty"`
}

// UsageSummaryResponse answers GET /api/analytics/usage-summary/{t0}/{t1}.
type UsageSummaryResponse struct {
	TotalTokens int64              `json:"total_tokens"`
	TotalCost   float64            `json:"total_cost"`
	ByMode      map[string]Summary `json:"by_mode"`
}

// Summary is a small per-mode or per-model rollup.
type Summary struct {
	TotalTokens int64   `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`
}

// ModelStatsResponse answers GET /api/analytics/model-stats/{alias}/{t0}/{t1}/{N}.
type ModelStatsResponse struct {
	Model   string         `json:"model"`
	Summary Summary        `json:"summary"`
	Series  []BucketSeries `json:"series"`
}

// OrphansResponse answers GET /api/data/models/orphaned.
type OrphansResponse struct {
	Orphans []string `json:"orphans"`
}

// StorageStatsResponse answers GET /api/data/storage/stats.
type StorageStatsResponse struct {
	FileSizeBytes int64            `json:"file_size_bytes"`
	RecordCounts  map[string]int64 `json:"record_counts"`
}

// TierUpsertRequest is the body of POST /api/billing/models/{name}/pricing/tier.
type TierUpsertRequest struct {
	Tier Tier `json:"tier"`
}

// HourlyPriceRequest is the body of POST /api/billing/models/{name}/pricing/hourly.
type HourlyPriceRequest struct {
	Price float64 `json:"price" example:"0.5"`
}
