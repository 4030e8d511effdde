package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"english", "en"},
		{"Hindi", "hi"},
		{" haitian creole ", "ht"},
		{"en", "en"},
		{"klingon", "klingon"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageCode(tt.in))
		})
	}
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, LanguageAuto, NormalizeLanguage(""))
	assert.Equal(t, "hi", NormalizeLanguage(" HI "))
	assert.True(t, IsAuto("  "))
	assert.False(t, IsAuto("en"))
}
