package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-transcriber/internal/app/api/provider"
)

func TestEngines(t *testing.T) {
	assert.Subset(t, Engines(), []string{"openai", "whisper_cpp", "whisper_server"})
}

func TestNewEngine(t *testing.T) {
	for _, name := range []string{"openai", "whisper_cpp", "whisper_server"} {
		t.Run(name, func(t *testing.T) {
			engine, err := NewEngine(provider.Settings{Type: name, Model: "base"}, nil)
			require.NoError(t, err)
			assert.Equal(t, name, engine.Name())
		})
	}

	_, err := NewEngine(provider.Settings{Type: "faster_whisper"}, nil)
	assert.Error(t, err)
}
