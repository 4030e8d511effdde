package dto

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status" example:"healthy"`
	Timestamp int64  `json:"timestamp"`
}

// ConfigResponse tells the dashboard what the server accepts.
type ConfigResponse struct {
	Languages  []string `json:"languages" example:"auto,en,hi"`
	Extensions []string `json:"extensions" example:".wav,.mp3"`
	MaxBytes   int64    `json:"max_bytes" example:"10485760"`
	Device     string   `json:"device" example:"cuda"`
	DeviceName string   `json:"device_name,omitempty"`
	Engine     string   `json:"engine" example:"whisper_cpp"`
	Model      string   `json:"model" example:"base"`
}
