package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/codelife/internal/validation"
)

// Identity service names accepted in IdentityProvider.
const (
	ProviderFirebase = "firebase"
	ProviderKratos   = "kratos"
)

// Config holds runtime settings for the CodeLife CLI.
type Config struct {
	APIBaseURL string `env:"API_BASE_URL" json:"api_base_url" validate:"required,url"`

	IdentityProvider           string `env:"IDENTITY_PROVIDER" json:"identity_provider" validate:"oneof=firebase kratos"`
	FirebaseAPIKey             string `env:"FIREBASE_API_KEY" json:"firebase_api_key"`
	FirebaseIdentityToolkitURL string `env:"FIREBASE_IDENTITY_TOOLKIT_URL" json:"firebase_identity_toolkit_url" validate:"omitempty,url"`
	FirebaseSecureTokenURL     string `env:"FIREBASE_SECURE_TOKEN_URL" json:"firebase_secure_token_url" validate:"omitempty,url"`
	KratosPublicURL            string `env:"KRATOS_PUBLIC_URL" json:"kratos_public_url" validate:"omitempty,url"`

	SessionDBPath        string        `env:"SESSION_DB" json:"session_db" validate:"required"`
	SessionCheckInterval time.Duration `env:"SESSION_CHECK_INTERVAL" json:"session_check_interval"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" json:"request_timeout"`
	RateLimit      float64       `env:"RATE_LIMIT" json:"rate_limit" validate:"gte=0"`

	CountriesURL    string `env:"COUNTRIES_URL" json:"countries_url" validate:"omitempty,url"`
	StatesURL       string `env:"STATES_URL" json:"states_url" validate:"omitempty,url"`
	UniversitiesURL string `env:"UNIVERSITIES_URL" json:"universities_url" validate:"omitempty,url"`

	LogLevel     string `env:"LOG_LEVEL" json:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat    string `env:"LOG_FORMAT" json:"log_format" validate:"oneof=text json"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" json:"otlp_endpoint" validate:"omitempty,url"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.IdentityProvider = ProviderFirebase
	c.SessionDBPath = defaultSessionDB()
	c.SessionCheckInterval = 30 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// Validate reports the first set of invalid fields.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

func defaultSessionDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "codelife-session.db"
	}
	return filepath.Join(dir, "codelife", "session.db")
}

// LoadConfig builds a Config from defaults, then .env, environment, the JSON
// file and command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
