package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"whisper-transcriber/internal/app/model"
)

// Backend names accepted in configuration.
const (
	BackendNone  = "none"
	BackendFile  = "filesystem"
	BackendMinio = "minio"
)

// Archive keeps a copy of finished transcripts.
type Archive interface {
	// Store saves the transcript of the named input and returns where it went.
	Store(ctx context.Context, inputName string, result model.TranscriptionResult) (string, error)
}

// Config selects and configures the archive backend.
type Config struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`

	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region"`
}

// New builds the configured archive. It returns nil for BackendNone.
func New(ctx context.Context, cfg Config) (Archive, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendFile:
		return NewFileArchive(cfg.Dir)
	case BackendMinio:
		return NewMinioArchive(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Backend)
	}
}

// ObjectKey names an archived transcript: transcripts/YYYY/MM/DD/<base>-<id>.txt
func ObjectKey(inputName string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(inputName), filepath.Ext(inputName))
	if base == "" || base == "." {
		base = "transcript"
	}
	return path.Join("transcripts", now.Format("2006/01/02"), fmt.Sprintf("%s-%s.txt", base, uuid.NewString()[:8]))
}

// FileArchive writes transcripts below a local directory.
type FileArchive struct {
	dir string
	now func() time.Time
}

// NewFileArchive creates the directory if needed.
func NewFileArchive(dir string) (*FileArchive, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &FileArchive{dir: dir, now: time.Now}, nil
}

func (a *FileArchive) Store(ctx context.Context, inputName string, result model.TranscriptionResult) (string, error) {
	target := filepath.Join(a.dir, filepath.FromSlash(ObjectKey(inputName, a.now())))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, []byte(result.Text+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return target, nil
}

// MinioArchive uploads transcripts to an S3-compatible bucket.
type MinioArchive struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
	now      func() time.Time
}

// NewMinioArchive connects and makes sure the bucket exists.
func NewMinioArchive(ctx context.Context, cfg Config) (*MinioArchive, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:9000"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "w2t-transcripts"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioArchive{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
		useSSL:   cfg.UseSSL,
		now:      time.Now,
	}, nil
}

func (a *MinioArchive) Store(ctx context.Context, inputName string, result model.TranscriptionResult) (string, error) {
	key := ObjectKey(inputName, a.now())
	body := []byte(result.Text + "\n")

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
		UserMetadata: map[string]string{
			"original-name": filepath.Base(inputName),
			"language":      result.Language,
			"device":        result.Device,
			"model":         result.Model,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript: %w", err)
	}
	return a.objectURL(key), nil
}

func (a *MinioArchive) objectURL(key string) string {
	scheme := "http"
	if a.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, a.endpoint, a.bucket, key)
}
