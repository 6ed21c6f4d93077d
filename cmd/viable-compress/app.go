// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/viable-kb/viable-compress/cmd/viable-compress/cli"
	"github.com/viable-kb/viable-compress/lib/config"
)

// app carries the output streams every command writes to.
type app struct {
	stdout io.Writer
	stderr io.Writer
}

// configParams are the flags shared by every command that reads
// configuration.
type configParams struct {
	Config  string `flag:"config" desc:"configuration file (.yaml or .toml); defaults to $VIABLE_COMPRESS_CONFIG"`
	Verbose bool   `flag:"verbose,v" desc:"log at debug level"`
}

// payloadParams override the payload section of the configuration.
type payloadParams struct {
	Codec    string `flag:"codec" desc:"compression codec: lzma, zstd, lz4, or none"`
	Encoding string `flag:"encoding" desc:"payload encoding: json or cbor"`
	Schema   string `flag:"schema" desc:"JSON Schema the definition must satisfy"`
}

// load reads the configuration named by --config, or by the environment
// when the flag is absent, and validates it after applying overrides.
func (p *configParams) load(overrides *payloadParams) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if p.Config != "" {
		cfg, err = config.LoadFile(p.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		if overrides.Codec != "" {
			cfg.Payload.Codec = overrides.Codec
		}
		if overrides.Encoding != "" {
			cfg.Payload.Encoding = overrides.Encoding
		}
		if overrides.Schema != "" {
			cfg.Payload.Schema = overrides.Schema
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// logger builds the command logger at the configured level, or debug
// with --verbose.
func (a *app) logger(cfg *config.Config, verbose bool, command string) *slog.Logger {
	level, _ := cfg.LogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return cli.NewCommandLogger(a.stderr, level).With("command", command)
}
