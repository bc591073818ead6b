package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/codelife/internal/flagx"
	"github.com/dmitrijs2005/codelife/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations go through
// timex.Duration so they may be written as "30s" or as nanoseconds.
type JsonConfig struct {
	APIBaseURL                 string         `json:"api_base_url"`
	IdentityProvider           string         `json:"identity_provider"`
	FirebaseAPIKey             string         `json:"firebase_api_key"`
	FirebaseIdentityToolkitURL string         `json:"firebase_identity_toolkit_url"`
	FirebaseSecureTokenURL     string         `json:"firebase_secure_token_url"`
	KratosPublicURL            string         `json:"kratos_public_url"`
	SessionDBPath              string         `json:"session_db"`
	SessionCheckInterval       timex.Duration `json:"session_check_interval"`
	RequestTimeout             timex.Duration `json:"request_timeout"`
	RateLimit                  float64        `json:"rate_limit"`
	CountriesURL               string         `json:"countries_url"`
	StatesURL                  string         `json:"states_url"`
	UniversitiesURL            string         `json:"universities_url"`
	LogLevel                   string         `json:"log_level"`
	LogFormat                  string         `json:"log_format"`
	OTLPEndpoint               string         `json:"otlp_endpoint"`
}

// parseJSON overlays cfg with the non-empty values of the file passed via
// -c or -config. Without the flag nothing happens.
func parseJSON(cfg *Config) error {
	path := flagx.ConfigFile()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.IdentityProvider, jc.IdentityProvider)
	setString(&cfg.FirebaseAPIKey, jc.FirebaseAPIKey)
	setString(&cfg.FirebaseIdentityToolkitURL, jc.FirebaseIdentityToolkitURL)
	setString(&cfg.FirebaseSecureTokenURL, jc.FirebaseSecureTokenURL)
	setString(&cfg.KratosPublicURL, jc.KratosPublicURL)
	setString(&cfg.SessionDBPath, jc.SessionDBPath)
	setString(&cfg.CountriesURL, jc.CountriesURL)
	setString(&cfg.StatesURL, jc.StatesURL)
	setString(&cfg.UniversitiesURL, jc.UniversitiesURL)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.OTLPEndpoint, jc.OTLPEndpoint)

	if jc.SessionCheckInterval.Duration > 0 {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RateLimit > 0 {
		cfg.RateLimit = jc.RateLimit
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
