package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-transcriber/cmd/w2t/cmd/cli"
)

// isolate points the configuration at missing media tools and a private
// temp dir, away from any .env in the package directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("W2T_CONFIG", "")
	t.Setenv("W2T_ENGINE", "whisper_cpp")
	t.Setenv("W2T_DEVICE", "cpu")
	t.Setenv("W2T_TEMP_DIR", dir)
	t.Setenv("W2T_FFMPEG", filepath.Join(dir, "missing-ffmpeg"))
	t.Setenv("W2T_FFPROBE", filepath.Join(dir, "missing-ffprobe"))
	t.Setenv("W2T_WHISPER_BIN", filepath.Join(dir, "missing-whisper-cli"))
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, cli.ExitOK, code)
	assert.Contains(t, stdout, "v0.")
}

func TestHelpWithoutArgs(t *testing.T) {
	code, stdout, _ := runCLI(t)
	assert.Equal(t, cli.ExitOK, code)
	assert.Contains(t, stdout, "w2t serve")
}

func TestTranscribeExitCodes(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		data       []byte
		args       func(path string) []string
		wantCode   int
		wantStderr string
	}{
		{
			name:       "unsupported format",
			file:       "voice.ogg",
			data:       []byte("OggS"),
			args:       func(p string) []string { return []string{"transcribe", p} },
			wantCode:   cli.ExitValidation,
			wantStderr: "unsupported file type",
		},
		{
			name:       "shorthand form",
			file:       "voice.ogg",
			data:       []byte("OggS"),
			args:       func(p string) []string { return []string{p} },
			wantCode:   cli.ExitValidation,
			wantStderr: "unsupported file type",
		},
		{
			name:       "unsupported language",
			file:       "clip.wav",
			data:       []byte("not really audio"),
			args:       func(p string) []string { return []string{"transcribe", "--language", "xx", p} },
			wantCode:   cli.ExitValidation,
			wantStderr: "unsupported language",
		},
		{
			name:       "decode failure",
			file:       "clip.wav",
			data:       []byte("not really audio"),
			args:       func(p string) []string { return []string{"transcribe", p} },
			wantCode:   cli.ExitDecode,
			wantStderr: "could not decode",
		},
		{
			name:       "missing input",
			args:       func(p string) []string { return []string{"transcribe", filepath.Join(filepath.Dir(p), "nope.wav")} },
			wantCode:   cli.ExitValidation,
			wantStderr: "error: input not found: ",
		},
		{
			name:       "extract missing video",
			args:       func(p string) []string { return []string{"extract", filepath.Join(filepath.Dir(p), "nope.mp4")} },
			wantCode:   cli.ExitDecode,
			wantStderr: "video file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "placeholder")
			if tt.file != "" {
				path = writeFile(t, dir, tt.file, tt.data)
			}

			code, stdout, stderr := runCLI(t, tt.args(path)...)

			assert.Equal(t, tt.wantCode, code, stderr)
			assert.Empty(t, stdout, "no transcript on failure")
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestTranscribeBannerShowsDevice(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "voice.ogg", []byte("OggS"))

	_, _, stderr := runCLI(t, path)

	assert.Contains(t, stderr, "Using device: cpu")
}
