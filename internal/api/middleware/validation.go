package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "whisper-transcriber/internal/api/errors"
	apperrors "whisper-transcriber/internal/app/errors"
	"whisper-transcriber/internal/app/media"
)

// LanguageTag is the struct tag that checks a language hint against the
// configured set.
const LanguageTag = "language"

// RegisterLanguageValidation installs the language tag on gin's validator.
// The last registration wins.
func RegisterLanguageValidation(v *media.Validator) error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}
	return engine.RegisterValidation(LanguageTag, func(fl validator.FieldLevel) bool {
		_, err := v.ValidateLanguage(fl.Field().String())
		return err == nil
	})
}

// ValidateQuery binds and validates query parameters. A failed language tag
// becomes an invalid_language error; any other failure is a bad request.
func ValidateQuery(c *gin.Context, req interface{}) error {
	err := c.ShouldBindQuery(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldError := range validationErrs {
			if fieldError.Tag() == LanguageTag {
				return apperrors.Newf(apperrors.KindInvalidLanguage, "unsupported language %q", fieldError.Value())
			}
		}
		fields := make([]string, 0, len(validationErrs))
		for _, fieldError := range validationErrs {
			fields = append(fields, strings.ToLower(fieldError.Field()))
		}
		return apierrors.NewBadRequestError("invalid query parameters: " + strings.Join(fields, ", "))
	}
	return apierrors.NewBadRequestError("invalid query parameters")
}
