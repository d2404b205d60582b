// Package profile holds the runtime configuration for tagwise.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration the CLI and server start from.
type Profile struct {
	// LLM provider configuration
	Provider    string // openai, anthropic, cohere, vertex, bedrock, deepseek, ...
	APIKey      string
	Endpoint    string // base URL or full endpoint, provider default when empty
	Model       string // provider default when empty
	ServiceType string // "local" or "cloud"

	// Tagging behavior
	Language          string // "default" or a target language for tags
	MaxTags           int
	ContentLimit      int // prompt content cap in runes, 0 = uncapped
	RequestIntervalMs int // pacing between batch requests

	// Vault
	VaultRoot string

	// Run-history store
	Driver string // sqlite or postgres; empty disables history
	DSN    string
	Data   string // data directory for the sqlite database file

	// Server
	Mode    string // dev, prod, demo
	Addr    string
	Port    int
	Version string
}

// IsDev reports whether the profile runs in a development mode.
func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from TAGWISE_* environment variables.
// Values already set (e.g. from flags) are kept.
func (p *Profile) FromEnv() {
	if p.Provider == "" {
		p.Provider = getEnvOrDefault("TAGWISE_PROVIDER", "openai")
	}
	if p.APIKey == "" {
		p.APIKey = getEnvOrDefault("TAGWISE_API_KEY", "")
	}
	if p.Endpoint == "" {
		p.Endpoint = getEnvOrDefault("TAGWISE_ENDPOINT", "")
	}
	if p.Model == "" {
		p.Model = getEnvOrDefault("TAGWISE_MODEL", "")
	}
	if p.ServiceType == "" {
		p.ServiceType = getEnvOrDefault("TAGWISE_SERVICE_TYPE", "cloud")
	}

	if p.Language == "" {
		p.Language = getEnvOrDefault("TAGWISE_LANGUAGE", "default")
	}
	if p.MaxTags == 0 {
		p.MaxTags = getEnvOrDefaultInt("TAGWISE_MAX_TAGS", 10)
	}
	if p.ContentLimit == 0 {
		p.ContentLimit = getEnvOrDefaultInt("TAGWISE_CONTENT_LIMIT", 4000)
	}
	if p.RequestIntervalMs == 0 {
		p.RequestIntervalMs = getEnvOrDefaultInt("TAGWISE_REQUEST_INTERVAL_MS", 0)
	}

	if p.VaultRoot == "" {
		p.VaultRoot = getEnvOrDefault("TAGWISE_VAULT", ".")
	}

	if p.Driver == "" {
		p.Driver = getEnvOrDefault("TAGWISE_DRIVER", "")
	}
	if p.DSN == "" {
		p.DSN = getEnvOrDefault("TAGWISE_DSN", "")
	}
	if p.Data == "" {
		p.Data = getEnvOrDefault("TAGWISE_DATA", "")
	}
}

// Validate normalizes the profile and reports unusable configuration.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	root, err := checkVaultRoot(p.VaultRoot)
	if err != nil {
		return err
	}
	p.VaultRoot = root

	if p.Driver == "sqlite" && p.DSN == "" {
		data := p.Data
		if data == "" {
			data = p.VaultRoot
		}
		p.DSN = filepath.Join(data, fmt.Sprintf("tagwise_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	return nil
}

func checkVaultRoot(root string) (string, error) {
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", err
		}
		root = abs
	}
	root = strings.TrimRight(root, "\\/")
	if _, err := os.Stat(root); err != nil {
		return "", errors.Wrapf(err, "unable to access vault root %s", root)
	}
	return root, nil
}
