package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv("CODELIFE_KRATOS_PUBLIC_URL", "http://kratos:4433")
	t.Setenv("CODELIFE_SESSION_CHECK_INTERVAL", "45s")
	t.Setenv("CODELIFE_RATE_LIMIT", "2.5")

	cfg := &Config{APIBaseURL: "http://keep:1"}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "http://kratos:4433", cfg.KratosPublicURL)
	assert.Equal(t, 45*time.Second, cfg.SessionCheckInterval)
	assert.InDelta(t, 2.5, cfg.RateLimit, 0.0001)
	assert.Equal(t, "http://keep:1", cfg.APIBaseURL, "unset variables keep current value")
}

func Test_parseEnv_BadValue(t *testing.T) {
	t.Setenv("CODELIFE_REQUEST_TIMEOUT", "soon")

	cfg := &Config{}
	require.Error(t, parseEnv(cfg))
}
