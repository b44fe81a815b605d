package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration for the client.
type Config struct {
	AppEnv         string
	APIBaseURL     string
	GoogleClientID string
	HTTPTimeout    time.Duration
	TokenPath      string
	StrictDecode   bool
}

// Origin returns the API origin: the base URL with a trailing /api stripped.
// Relative attachment paths are resolved against it.
func (c Config) Origin() string {
	base := strings.TrimRight(c.APIBaseURL, "/")
	return strings.TrimSuffix(base, "/api")
}

// FederatedLoginEnabled reports whether an identity-provider client id was
// configured. Without one the federated login entry point stays hidden and
// a clear message is shown instead.
func (c Config) FederatedLoginEnabled() bool {
	return strings.TrimSpace(c.GoogleClientID) != ""
}

// Load reads configuration values from environment variables and an
// optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HOSTELGUARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.env", "development")
	v.SetDefault("api.base.url", "http://localhost:5001/api")
	v.SetDefault("http.timeout", "15s")
	v.SetDefault("strict.decode", false)

	timeoutString := v.GetString("http.timeout")
	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid http timeout: %w", err)
	}

	tokenPath := v.GetString("token.path")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home directory: %w", err)
		}
		tokenPath = filepath.Join(home, ".hostelguard", "token")
	}

	cfg := Config{
		AppEnv:         v.GetString("app.env"),
		APIBaseURL:     strings.TrimRight(v.GetString("api.base.url"), "/"),
		GoogleClientID: v.GetString("google.client.id"),
		HTTPTimeout:    timeout,
		TokenPath:      tokenPath,
		StrictDecode:   v.GetBool("strict.decode"),
	}

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("api base url must be provided")
	}

	return cfg, nil
}
