package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 2*time.Hour {
		return fmt.Errorf("%s timeout too large (max 2 hours)", name)
	}
	return nil
}

// ValidateQueue validates a queue bound; zero means unbounded
func ValidateQueue(size int, name string) error {
	if size < 0 {
		return fmt.Errorf("%s queue size cannot be negative", name)
	}
	if size > 1000 {
		return fmt.Errorf("%s queue size too high (max 1000)", name)
	}
	return nil
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format: must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("invalid OpenAI API key format: too short")
		}
	}

	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}

	return nil
}

// ValidatePort validates port number
func ValidatePort(port string, name string) error {
	if port == "" {
		return fmt.Errorf("%s port is required", name)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%s port invalid: %q", name, port)
	}

	return nil
}

// ValidateChoice checks value against the allowed set
func ValidateChoice(value string, allowed []string, name string) error {
	if !lo.Contains(allowed, value) {
		return fmt.Errorf("%s must be one of %v, got %q", name, allowed, value)
	}
	return nil
}

// ValidateSize validates a byte limit
func ValidateSize(size int64, name string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}
