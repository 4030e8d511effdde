package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "whisper-transcriber/internal/app/errors"
)

func TestFromErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   ErrorKind
		wantStatus int
	}{
		{"unsupported format", apperrors.UnsupportedFormat(".ogg", []string{".wav"}), KindUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"too large", apperrors.FileTooLarge(11, 10), KindFileTooLarge, http.StatusRequestEntityTooLarge},
		{"language", apperrors.InvalidLanguage("xx", []string{"en"}), KindInvalidLanguage, http.StatusBadRequest},
		{"decode", apperrors.Wrap(stderrors.New("exit 1"), apperrors.KindDecodeFailed, "decode"), KindDecodeFailed, http.StatusUnprocessableEntity},
		{"busy", apperrors.ErrBusy, KindBusy, http.StatusServiceUnavailable},
		{"canceled", fmt.Errorf("task: %w", apperrors.ErrCanceled), KindCanceled, http.StatusConflict},
		{"engine", apperrors.ErrTranscriptionFailed, KindTranscriptionFailed, http.StatusInternalServerError},
		{"unclassified", stderrors.New("disk full at /var/tmp"), KindInternal, http.StatusInternalServerError},
		{"api error passes through", NewNotFoundError("task"), KindNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantStatus, apiErr.HTTPStatus())
		})
	}
}

func TestFromErrorHidesInternalDetail(t *testing.T) {
	apiErr := FromError(stderrors.New("open /var/tmp/secret: permission denied"))
	assert.Equal(t, "internal error", apiErr.Message)
	assert.Nil(t, FromError(nil))
}
