package config

import (
	"os"

	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name     string       `json:"name"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Required bool         `json:"required"`
	Masked   string       `json:"masked,omitempty"` // e.g., "a1b2c3d4...wxyz"
}

// CheckAPIKeys returns the status of every credential the tool can use.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("NewsAPI Key", cfg.News.APIKey, cfg.News.Provider == ProviderNewsAPI,
			EnvPrefix+"_NEWS_API_KEY", NewsAPIKeyEnv),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value string, required bool, envVars ...string) KeyStatus {
	status := KeyStatus{
		Name:     name,
		IsSet:    value != "",
		Required: required,
		Source:   KeySourceNone,
	}
	if value == "" {
		return status
	}

	status.Source = KeySourceConfig
	for _, env := range envVars {
		if os.Getenv(env) == value {
			status.Source = KeySourceEnv
			break
		}
	}
	status.Masked = utils.MaskSecret(value)
	return status
}
