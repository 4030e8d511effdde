package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whisper-transcriber/internal/api/dto"
	apierrors "whisper-transcriber/internal/api/errors"
	"whisper-transcriber/internal/api/routes"
	"whisper-transcriber/internal/app/device"
	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/media"
	"whisper-transcriber/internal/app/metrics"
	"whisper-transcriber/internal/app/model"
	"whisper-transcriber/internal/app/pipeline"
	"whisper-transcriber/internal/app/tasks"
	"whisper-transcriber/web"
)

const mb = 1024 * 1024

type fakeTranscriber struct {
	mu        sync.Mutex
	calls     int
	languages []string
	sizes     []int64
	err       error

	delay   time.Duration
	block   bool
	started chan struct{}
	once    sync.Once
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path, language string) (model.TranscriptionResult, error) {
	info, statErr := os.Stat(path)
	f.mu.Lock()
	f.calls++
	f.languages = append(f.languages, language)
	if statErr == nil {
		f.sizes = append(f.sizes, info.Size())
	}
	f.mu.Unlock()

	if f.block {
		f.once.Do(func() { close(f.started) })
		<-ctx.Done()
		return model.TranscriptionResult{}, apperrors.Wrap(ctx.Err(), apperrors.KindCanceled, "transcription canceled")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.TranscriptionResult{}, apperrors.Wrap(ctx.Err(), apperrors.KindCanceled, "transcription canceled")
		}
	}
	if f.err != nil {
		return model.TranscriptionResult{}, f.err
	}
	lang := language
	if lang == model.LanguageAuto {
		lang = "hi"
	}
	return model.TranscriptionResult{
		Language:       lang,
		Text:           "namaste duniya",
		Device:         "cuda",
		Model:          "base",
		ProcessingTime: 1500 * time.Millisecond,
	}, nil
}

func (f *fakeTranscriber) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRuntime struct{}

func (fakeRuntime) Device() device.Device {
	return device.Device{Kind: device.KindAccelerator, Backend: "cuda", Name: "RTX 4090"}
}
func (fakeRuntime) Model() string  { return "base" }
func (fakeRuntime) Engine() string { return "whisper_cpp" }

type testEnv struct {
	router  *gin.Engine
	tasks   *tasks.Registry
	tempDir string
}

func newTestEnv(t *testing.T, tr *fakeTranscriber) *testEnv {
	t.Helper()
	env, _ := newTestServer(t, tr, Config{Addr: "127.0.0.1:0", CORSOrigins: []string{"http://localhost:3000"}})
	return env
}

func newTestServer(t *testing.T, tr *fakeTranscriber, config Config) (*testEnv, *Server) {
	t.Helper()
	tempDir := t.TempDir()
	m := metrics.New(metrics.NewRegistry())
	registry := tasks.NewRegistry(time.Hour)
	container := &routes.ServiceContainer{
		Pipeline:  pipeline.New(media.NewValidator(0, nil, nil), tr, nil, m, tempDir, zap.NewNop()),
		Tasks:     registry,
		Runtime:   fakeRuntime{},
		Metrics:   m,
		Dashboard: web.Static(),
	}
	srv, err := NewServer(config, container, zap.NewNop())
	require.NoError(t, err)
	return &testEnv{router: srv.Router(), tasks: registry, tempDir: tempDir}, srv
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) tempFiles(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(e.tempDir)
	require.NoError(t, err)
	return entries
}

type formField struct {
	name, value string
}

// uploadRequest builds a multipart POST. The file part is written after the
// fields in before and before the fields in after.
func uploadRequest(t *testing.T, target, filename string, size int, before, after []formField) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range before {
		require.NoError(t, w.WriteField(f.name, f.value))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{0x5a}, size))
		require.NoError(t, err)
	}
	for _, f := range after {
		require.NoError(t, w.WriteField(f.name, f.value))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func parseEvents(t *testing.T, body string) []dto.EventResponse {
	t.Helper()
	var out []dto.EventResponse
	for _, line := range strings.Split(body, "\n") {
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		var ev dto.EventResponse
		require.NoError(t, json.Unmarshal([]byte(data), &ev))
		out = append(out, ev)
	}
	return out
}

func TestUploadSync(t *testing.T) {
	tr := &fakeTranscriber{}
	env := newTestEnv(t, tr)

	w := env.do(uploadRequest(t, "/upload", "clip.wav", 2*mb, []formField{{"language", "en"}}, nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.TranscriptionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, "namaste duniya", resp.Text)
	assert.Equal(t, "cuda", resp.Device)
	assert.Equal(t, int64(2*mb), resp.SizeBytes)
	assert.Equal(t, int64(1500), resp.ProcessingMs)
	assert.Equal(t, []string{"en"}, tr.languages)
	assert.Equal(t, []int64{2 * mb}, tr.sizes)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Empty(t, env.tempFiles(t), "staged upload removed")
}

func TestUploadLanguageSources(t *testing.T) {
	tests := []struct {
		name   string
		target string
		before []formField
		after  []formField
		want   string
	}{
		{"default is auto", "/upload", nil, nil, "auto"},
		{"query parameter", "/upload?language=hi", nil, nil, "hi"},
		{"field after file", "/upload", nil, []formField{{"language", "HI"}}, "hi"},
		{"field wins over query", "/upload?language=hi", []formField{{"language", "en"}}, nil, "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTranscriber{}
			env := newTestEnv(t, tr)

			w := env.do(uploadRequest(t, tt.target, "clip.mp3", 1024, tt.before, tt.after))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, []string{tt.want}, tr.languages)
		})
	}
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		status   int
		kind     apierrors.ErrorKind
		contains string
	}{
		{
			name:   "oversize file",
			req:    func(t *testing.T) *http.Request { return uploadRequest(t, "/upload", "big.wav", 11*mb, nil, nil) },
			status: http.StatusRequestEntityTooLarge,
			kind:   apierrors.KindFileTooLarge,
		},
		{
			name: "declared oversize",
			req: func(t *testing.T) *http.Request {
				req := uploadRequest(t, "/upload", "big.wav", 10, nil, nil)
				req.Header.Set("X-File-Size", "11534336")
				return req
			},
			status: http.StatusRequestEntityTooLarge,
			kind:   apierrors.KindFileTooLarge,
		},
		{
			name:     "unsupported extension",
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "/upload", "voice.ogg", 10, nil, nil) },
			status:   http.StatusUnsupportedMediaType,
			kind:     apierrors.KindUnsupportedFormat,
			contains: ".ogg",
		},
		{
			name: "unsupported language field",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/upload", "clip.wav", 10, []formField{{"language", "xx"}}, nil)
			},
			status: http.StatusBadRequest,
			kind:   apierrors.KindInvalidLanguage,
		},
		{
			name: "unsupported language query",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/upload?language=xx", "clip.wav", 10, nil, nil)
			},
			status: http.StatusBadRequest,
			kind:   apierrors.KindInvalidLanguage,
		},
		{
			name: "missing file",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/upload", "", 0, []formField{{"language", "en"}}, nil)
			},
			status:   http.StatusBadRequest,
			kind:     apierrors.KindBadRequest,
			contains: "missing file",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(`{"file":"x"}`))
				req.Header.Set("Content-Type", "application/json")
				return req
			},
			status: http.StatusBadRequest,
			kind:   apierrors.KindBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTranscriber{}
			env := newTestEnv(t, tr)

			w := env.do(tt.req(t))

			require.Equal(t, tt.status, w.Code, w.Body.String())
			apiErr := decodeError(t, w)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, w.Header().Get("X-Request-ID"), apiErr.RequestID)
			if tt.contains != "" {
				assert.Contains(t, apiErr.Message, tt.contains)
			}
			assert.Zero(t, tr.callCount(), "transcriber must not run")
			assert.Empty(t, env.tempFiles(t))
		})
	}
}

func TestUploadTranscriberFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   apierrors.ErrorKind
	}{
		{"decode", apperrors.Wrap(stderrors.New("/var/tmp/w2t-upload-1.wav: Invalid data"), apperrors.KindDecodeFailed, "audio decode failed"), http.StatusUnprocessableEntity, apierrors.KindDecodeFailed},
		{"busy", apperrors.ErrBusy, http.StatusServiceUnavailable, apierrors.KindBusy},
		{"engine", apperrors.Wrap(stderrors.New("model crashed"), apperrors.KindTranscriptionFailed, "transcription failed"), http.StatusInternalServerError, apierrors.KindTranscriptionFailed},
		{"unclassified", stderrors.New("/var/tmp/secret unreadable"), http.StatusInternalServerError, apierrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeTranscriber{err: tt.err})

			w := env.do(uploadRequest(t, "/upload", "clip.wav", 1024, nil, nil))

			require.Equal(t, tt.status, w.Code)
			apiErr := decodeError(t, w)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.NotContains(t, apiErr.Message, "/var/tmp")
			assert.Empty(t, env.tempFiles(t))
		})
	}
}

func TestUploadEventStream(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{})
	req := uploadRequest(t, "/upload", "clip.wav", 512*1024, []formField{{"language", "hi"}}, nil)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-File-Size", "524288")

	w := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	events := parseEvents(t, w.Body.String())
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.NotNil(t, last.Result)
	assert.Equal(t, "done", string(last.Phase))
	assert.Equal(t, "hi", last.Result.Language)

	var sawTranscribing bool
	prevPercent := -1
	for i, ev := range events[:len(events)-1] {
		if i > 0 {
			assert.Greater(t, ev.Seq, events[i-1].Seq)
		}
		switch ev.Phase {
		case "uploading":
			assert.False(t, sawTranscribing, "uploading after transcribing")
			assert.GreaterOrEqual(t, ev.Percent, prevPercent)
			prevPercent = ev.Percent
		case "transcribing":
			assert.False(t, sawTranscribing, "transcribing twice")
			sawTranscribing = true
		default:
			t.Fatalf("unexpected phase %s before the terminal event", ev.Phase)
		}
	}
	assert.True(t, sawTranscribing)
	assert.Equal(t, 100, prevPercent)
}

func TestUploadEventStreamRejectsBeforeStreaming(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{})
	req := uploadRequest(t, "/upload", "voice.ogg", 10, nil, nil)
	req.Header.Set("Accept", "text/event-stream")

	w := env.do(req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, apierrors.KindUnsupportedFormat, decodeError(t, w).Kind)
}

func waitForStatus(t *testing.T, env *testEnv, id string, want tasks.Status) dto.TaskResponse {
	t.Helper()
	var resp dto.TaskResponse
	require.Eventually(t, func() bool {
		w := env.do(httptest.NewRequest(http.MethodGet, "/tasks/"+id, nil))
		if w.Code != http.StatusOK {
			return false
		}
		resp = dto.TaskResponse{}
		return json.Unmarshal(w.Body.Bytes(), &resp) == nil && resp.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return resp
}

func TestUploadAsync(t *testing.T) {
	tr := &fakeTranscriber{}
	env := newTestEnv(t, tr)

	w := env.do(uploadRequest(t, "/upload?async=true", "clip.wav", 4096, []formField{{"language", "en"}}, nil))

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	var accepted dto.TaskAccepted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.TaskID)
	assert.Equal(t, "/progress/"+accepted.TaskID, accepted.ProgressURL)

	task := waitForStatus(t, env, accepted.TaskID, tasks.StatusDone)
	require.NotNil(t, task.Result)
	assert.Equal(t, "namaste duniya", task.Result.Text)
	assert.Equal(t, "clip.wav", task.Filename)
	assert.Equal(t, int64(4096), task.Result.SizeBytes)

	progress := env.do(httptest.NewRequest(http.MethodGet, accepted.ProgressURL, nil))
	require.Equal(t, http.StatusOK, progress.Code)
	events := parseEvents(t, progress.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "uploading", string(events[0].Phase))
	assert.Equal(t, "done", string(events[len(events)-1].Phase))

	assert.Eventually(t, func() bool { return len(env.tempFiles(t)) == 0 }, time.Second, 10*time.Millisecond)
}

func TestStopTask(t *testing.T) {
	tr := &fakeTranscriber{block: true, started: make(chan struct{})}
	env := newTestEnv(t, tr)

	w := env.do(uploadRequest(t, "/upload?async=true", "clip.wav", 1024, nil, nil))
	require.Equal(t, http.StatusAccepted, w.Code)
	var accepted dto.TaskAccepted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))

	select {
	case <-tr.started:
	case <-time.After(2 * time.Second):
		t.Fatal("transcription never started")
	}
	waitForStatus(t, env, accepted.TaskID, tasks.StatusTranscribing)

	stop := env.do(httptest.NewRequest(http.MethodPost, accepted.StopURL, nil))
	require.Equal(t, http.StatusAccepted, stop.Code)

	task := waitForStatus(t, env, accepted.TaskID, tasks.StatusError)
	require.NotNil(t, task.Error)
	assert.Equal(t, string(apperrors.KindCanceled), task.Error.Kind)

	again := env.do(httptest.NewRequest(http.MethodPost, accepted.StopURL, nil))
	assert.Equal(t, http.StatusConflict, again.Code)
}

func TestUnknownTask(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/tasks/nope", nil),
		httptest.NewRequest(http.MethodGet, "/progress/nope", nil),
		httptest.NewRequest(http.MethodPost, "/stop/nope", nil),
	} {
		w := env.do(req)
		assert.Equal(t, http.StatusNotFound, w.Code, req.URL.Path)
		assert.Equal(t, apierrors.KindNotFound, decodeError(t, w).Kind)
	}
}

func TestConfigAndHealth(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{})

	w := env.do(httptest.NewRequest(http.MethodGet, "/config", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var cfg dto.ConfigResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, []string{"auto", "en", "hi"}, cfg.Languages)
	assert.Equal(t, []string{".wav", ".mp3"}, cfg.Extensions)
	assert.Equal(t, int64(10*mb), cfg.MaxBytes)
	assert.Equal(t, "cuda", cfg.Device)
	assert.Equal(t, "whisper_cpp", cfg.Engine)

	health := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Contains(t, health.Body.String(), "healthy")
}

func TestDashboardAndMetrics(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{})
	env.do(uploadRequest(t, "/upload", "clip.wav", 1024, nil, nil))

	page := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Whisper Transcriber")

	script := env.do(httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, script.Code)

	m := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "w2t_upload_bytes")
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, &fakeTranscriber{})

	req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := env.do(req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))

	other := httptest.NewRequest(http.MethodGet, "/health", nil)
	other.Header.Set("Origin", "http://evil.example")
	assert.Empty(t, env.do(other).Header().Get("Access-Control-Allow-Origin"))
}

func TestTranscriptionOutlastsWriteTimeout(t *testing.T) {
	tr := &fakeTranscriber{delay: 300 * time.Millisecond}
	_, srv := newTestServer(t, tr, Config{Addr: "127.0.0.1:0", WriteTimeout: 100 * time.Millisecond})

	ts := httptest.NewUnstartedServer(srv.Router())
	ts.Config.WriteTimeout = 100 * time.Millisecond
	ts.Start()
	defer ts.Close()

	tests := []struct {
		name   string
		accept string
		want   string
	}{
		{"sync json", "", `"text":"namaste duniya"`},
		{"event stream", "text/event-stream", "event:done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := uploadRequest(t, "/upload", "clip.wav", 1024, nil, nil)
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/upload", form.Body)
			require.NoError(t, err)
			req.Header.Set("Content-Type", form.Header.Get("Content-Type"))
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}

			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, string(body), tt.want)
		})
	}
}
