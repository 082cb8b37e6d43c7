package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ClientConfig holds the settings of the studymate command-line client.
type ClientConfig struct {
	APIURL         string
	TokenFile      string
	RequestTimeout time.Duration
}

// LoadClient reads client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{
		APIURL: getEnv("STUDYMATE_API_URL", "http://localhost:8080/api/v1"),
	}

	cfg.TokenFile = os.Getenv("STUDYMATE_TOKEN_FILE")
	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating config dir: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "studymate", "token")
	}

	timeout, err := parseDuration("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	return cfg, nil
}
