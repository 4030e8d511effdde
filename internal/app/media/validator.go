package media

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/model"
)

// DefaultMaxBytes is the upload limit used when none is configured.
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// DefaultExtensions are the accepted input extensions.
var DefaultExtensions = []string{".wav", ".mp3"}

// DefaultLanguages are the explicit language codes accepted besides "auto".
var DefaultLanguages = []string{"en", "hi"}

// Validator checks declared filename, size and language hint. It never reads
// file contents.
type Validator struct {
	maxBytes   int64
	extensions []string
	languages  []string
}

// NewValidator builds a validator. Extensions may be given with or without the
// leading dot and in any case; zero values fall back to the defaults.
func NewValidator(maxBytes int64, extensions []string, languages []string) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if languages == nil {
		languages = DefaultLanguages
	}

	exts := lo.Uniq(lo.Map(extensions, func(ext string, _ int) string {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext
	}))
	langs := lo.Uniq(lo.Map(languages, func(code string, _ int) string {
		return model.NormalizeLanguage(code)
	}))

	return &Validator{
		maxBytes:   maxBytes,
		extensions: exts,
		languages:  lo.Without(langs, model.LanguageAuto),
	}
}

// MaxBytes returns the configured size limit.
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// Extensions returns the accepted extensions, dot-prefixed.
func (v *Validator) Extensions() []string {
	return append([]string(nil), v.extensions...)
}

// Languages returns the accepted hints, "auto" first.
func (v *Validator) Languages() []string {
	return append([]string{model.LanguageAuto}, v.languages...)
}

// Validate accepts or rejects a file by declared name and size.
func (v *Validator) Validate(filename string, size int64) error {
	if err := v.ValidateName(filename); err != nil {
		return err
	}
	return v.ValidateSize(size)
}

// ValidateName rejects extensions outside the accepted set.
func (v *Validator) ValidateName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !lo.Contains(v.extensions, ext) {
		return apperrors.UnsupportedFormat(ext, v.extensions)
	}
	return nil
}

// ValidateSize rejects sizes above the limit. Exactly the limit is accepted.
func (v *Validator) ValidateSize(size int64) error {
	if size > v.maxBytes {
		return apperrors.FileTooLarge(size, v.maxBytes)
	}
	return nil
}

// ValidateLanguage normalizes the hint and rejects codes outside the
// configured set. An empty configured set accepts any code.
func (v *Validator) ValidateLanguage(code string) (string, error) {
	code = model.NormalizeLanguage(code)
	if code == model.LanguageAuto || len(v.languages) == 0 {
		return code, nil
	}
	if !lo.Contains(v.languages, code) {
		return "", apperrors.InvalidLanguage(code, v.Languages())
	}
	return code, nil
}

// ValidateRequest runs every check for an upload request and returns the
// normalized language hint.
func (v *Validator) ValidateRequest(req model.UploadRequest) (string, error) {
	if err := v.Validate(req.Filename, req.DeclaredSize); err != nil {
		return "", err
	}
	return v.ValidateLanguage(req.Language)
}
