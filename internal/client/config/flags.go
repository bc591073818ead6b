package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/codelife/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-p", "-db", "-t", "-log-level", "-log-format"}

// parseFlags populates selected Config fields from command-line flags:
//
//	-a string          backend API base URL
//	-i int             session check interval (seconds)
//	-p string          identity provider (firebase|kratos)
//	-db string         session database path
//	-t int             request timeout (seconds)
//	-log-level string  debug|info|warn|error
//	-log-format string text|json
//
// Only these flags are looked at; everything else in os.Args is ignored.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("codelife", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	checkInterval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session check interval (in seconds)")
	fs.StringVar(&cfg.IdentityProvider, "p", cfg.IdentityProvider, "identity provider")
	fs.StringVar(&cfg.SessionDBPath, "db", cfg.SessionDBPath, "session database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.SessionCheckInterval = time.Duration(*checkInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
