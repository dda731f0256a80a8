package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/forcefeedback/logging"
)

// Read reads a config from the given file, substituting environment variables first.
func Read(
	ctx context.Context,
	filePath string,
	logger logging.Logger,
) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
// Fields left out of the document keep their defaults.
func FromReader(
	ctx context.Context,
	originalPath string,
	r io.Reader,
	logger logging.Logger,
) (*Config, error) {
	cfg := Defaults()
	cfg.ConfigFilePath = originalPath

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config %q", originalPath)
	}
	if cfg.TickHz > 0 {
		cfg.Engine.TickSeconds = 1 / cfg.TickHz
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugw("config read", "path", originalPath, "tick_hz", cfg.TickHz, "host", cfg.Transport.Host)
	return &cfg, nil
}
