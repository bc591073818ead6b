// Package config loads runtime configuration for the CodeLife CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file: -env-file, or ./.env when present. Existing variables
//     are never overridden by it.
//  3. Environment variables prefixed with CODELIFE_ (e.g.
//     CODELIFE_API_BASE_URL, CODELIFE_SESSION_CHECK_INTERVAL=45s).
//  4. Optional JSON file selected with -c or -config.
//  5. Command-line flags (see parseFlags).
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000",
//	  "identity_provider": "firebase",
//	  "firebase_api_key": "AIza...",
//	  "session_check_interval": "30s",
//	  "request_timeout": "15s",
//	  "log_level": "info"
//	}
//
// The resulting Config is validated before LoadConfig returns it.
package config
