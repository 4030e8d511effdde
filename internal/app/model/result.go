package model

import "time"

// TranscriptionResult is the immutable outcome of one transcription.
type TranscriptionResult struct {
	Language       string        `json:"language"`
	Text           string        `json:"text"`
	Device         string        `json:"device"`
	Model          string        `json:"model,omitempty"`
	SizeBytes      int64         `json:"size_bytes,omitempty"`
	ProcessingTime time.Duration `json:"-"`
	ArchiveURL     string        `json:"archive_url,omitempty"`
}

// ProcessingMillis is the engine wall time in milliseconds, for JSON payloads.
func (r TranscriptionResult) ProcessingMillis() int64 {
	return r.ProcessingTime.Milliseconds()
}
