package whisper_cpp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultModelBaseURL hosts the ggml model files.
const DefaultModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Model is one entry of the ggml model catalog.
type Model struct {
	Size      string // tiny, base.en, large-v3, ...
	SizeBytes int64
}

// FileName is the ggml file name for the model.
func (m Model) FileName() string {
	return "ggml-" + m.Size + ".bin"
}

// Models lists the whisper.cpp models that can be downloaded.
var Models = []Model{
	{Size: "tiny", SizeBytes: 75_000_000},
	{Size: "tiny.en", SizeBytes: 75_000_000},
	{Size: "base", SizeBytes: 142_000_000},
	{Size: "base.en", SizeBytes: 142_000_000},
	{Size: "small", SizeBytes: 466_000_000},
	{Size: "small.en", SizeBytes: 466_000_000},
	{Size: "medium", SizeBytes: 1_500_000_000},
	{Size: "medium.en", SizeBytes: 1_500_000_000},
	{Size: "large-v2", SizeBytes: 3_000_000_000},
	{Size: "large-v3", SizeBytes: 3_000_000_000},
	{Size: "large-v3-turbo", SizeBytes: 1_600_000_000},
}

// LookupModel finds a catalog entry by size name.
func LookupModel(size string) (Model, bool) {
	return lo.Find(Models, func(m Model) bool {
		return m.Size == size
	})
}

// ResolveModelPath maps a configured model to a file path. A value that
// already names a file is used as is; a size name becomes ggml-<size>.bin
// inside modelsDir.
func ResolveModelPath(model, modelsDir string) string {
	if strings.HasSuffix(model, ".bin") || strings.ContainsRune(model, os.PathSeparator) {
		return model
	}
	return filepath.Join(modelsDir, "ggml-"+model+".bin")
}

// Downloader fetches ggml models into a directory.
type Downloader struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger
}

// Download writes model into destDir and returns the final path. The file
// is written under a temporary name and renamed once complete.
func (d *Downloader) Download(ctx context.Context, model Model, destDir string) (string, error) {
	baseURL := d.BaseURL
	if baseURL == "" {
		baseURL = DefaultModelBaseURL
	}
	client := d.Client
	if client == nil {
		client = &http.Client{}
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", fmt.Errorf("create models directory: %w", err)
	}

	destPath := filepath.Join(destDir, model.FileName())
	tempPath := destPath + ".download"
	url := strings.TrimRight(baseURL, "/") + "/" + model.FileName()

	logger.Info("downloading model", zap.String("model", model.Size), zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	tempFile, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = model.SizeBytes
	}
	written, err := io.Copy(tempFile, &loggingReader{r: resp.Body, total: total, logger: logger, last: time.Now()})
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("write model: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("rename file: %w", err)
	}

	logger.Info("download complete", zap.String("path", destPath), zap.Int64("bytes", written))
	return destPath, nil
}

// loggingReader logs download progress every few seconds.
type loggingReader struct {
	r      io.Reader
	read   int64
	total  int64
	last   time.Time
	logger *zap.Logger
}

func (l *loggingReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if time.Since(l.last) > 2*time.Second {
		percent := 0
		if l.total > 0 {
			percent = int(float64(l.read) / float64(l.total) * 100)
		}
		l.logger.Info("downloading", zap.Int("percent", percent), zap.Int64("bytes", l.read))
		l.last = time.Now()
	}
	return n, err
}
