package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ErrNoEnvFile is returned by LoadEnv when neither ./.env nor ../.env exists.
var ErrNoEnvFile = errors.New("no .env file found")

// LoadEnv loads environment variables from the first .env file found in the
// current or parent directory. Variables already set in the process win.
// It returns the loaded path.
func LoadEnv() (string, error) {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return candidate, err
		}
		return candidate, nil
	}
	return "", ErrNoEnvFile
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
