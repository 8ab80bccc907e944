package main

import (
	"io"
	"log/slog"

	"git.sr.ht/~jakintosh/cookieauth/internal/logging"
	"git.sr.ht/~jakintosh/cookieauth/pkg/session"
	"git.sr.ht/~jakintosh/cookieauth/pkg/transport"
)

// newManager builds a session manager with a fresh cookie jar, so each
// invocation starts anonymous.
func newManager(
	cfg Config,
	logOutput io.Writer,
) (
	*session.Manager,
	error,
) {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	logger, err := logging.New(logging.Options{
		Program: "sessionctl",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   level,
		Output:  logOutput,
	})
	if err != nil {
		return nil, err
	}

	client, err := transport.New(transport.Config{Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}

	return session.New(cfg.BaseURL, client, session.WithLogger(logger))
}
