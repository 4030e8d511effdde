package provider

import (
	"context"
)

// TranscriptionProvider is an external speech-recognition engine.
//
// Load prepares the model and is called at most once per successful load;
// implementations may assume Transcribe is never called concurrently.
type TranscriptionProvider interface {
	Name() string
	Load(ctx context.Context) error
	Transcribe(ctx context.Context, request *TranscriptionRequest) (*TranscriptionResponse, error)
}
