package models

// Payload for POST /convert
type ConvertRequest struct {
	URL string `json:"url"`
}

// ErrorResponse is the structured failure payload returned by the endpoint.
// Trace carries the per-invocation diagnostic lines in order; it is for
// humans and log pipelines only, never for client control decisions.
type ErrorResponse struct {
	Error            string    `json:"error"`
	Code             ErrorCode `json:"code"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	Attempted        []string  `json:"attempted_strategies,omitempty"`
	Trace            []string  `json:"trace,omitempty"`
}

// HealthResponse is the payload for GET /healthz.
type HealthResponse struct {
	Status      string       `json:"status"` // "ok" or "degraded"
	FFmpegPath  string       `json:"ffmpeg_path,omitempty"`
	FFprobePath string       `json:"ffprobe_path,omitempty"`
	Encoders    []string     `json:"encoders,omitempty"`
	System      SystemHealth `json:"system"`
	BinaryError string       `json:"binary_error,omitempty"`
}

// SystemHealth captures point-in-time hardware metrics gathered by gopsutil.
type SystemHealth struct {
	CPUUsagePercent float64 `json:"cpu_usage_percent"`
	RAMUsedPercent  float64 `json:"ram_used_percent"`
	RAMFreeBytes    uint64  `json:"ram_free_bytes"`
}

// ConvertInfo summarizes a successful conversion for the CLI client, built
// from the response headers rather than a JSON body (the body is the audio).
type ConvertInfo struct {
	ContentType      string
	Filename         string
	SizeBytes        int64
	ProcessingTimeMs int64
}
