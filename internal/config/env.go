package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are the .env locations tried, in order.
var DefaultEnvFiles = []string{
	".env",
	".env.local",
}

// LoadEnv loads the first existing file from paths (DefaultEnvFiles when
// empty) into the process environment. Variables already set win. It returns
// the file that was loaded, or "" when none exists.
func LoadEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = DefaultEnvFiles
	}

	for _, envPath := range paths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return "", fmt.Errorf("error loading %s file: %w", envPath, err)
		}
		return envPath, nil
	}
	return "", nil
}
