// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/viable-kb/viable-compress/lib/compress"
	"github.com/viable-kb/viable-compress/lib/definition"
	"github.com/viable-kb/viable-compress/lib/header"
)

// EnvVar names the environment variable [Load] reads the config path
// from.
const EnvVar = "VIABLE_COMPRESS_CONFIG"

// Config is the viable-compress configuration.
type Config struct {
	// Payload configures what is embedded and how it is compressed.
	Payload PayloadConfig `yaml:"payload" toml:"payload"`

	// Header configures the generated definition header.
	Header HeaderConfig `yaml:"header" toml:"header"`

	// Fragments configures fragment schema handling.
	Fragments FragmentsConfig `yaml:"fragments" toml:"fragments"`

	// Log configures diagnostic output.
	Log LogConfig `yaml:"log" toml:"log"`
}

// PayloadConfig configures the embedded payload.
type PayloadConfig struct {
	// Codec is the compression codec: lzma, zstd, lz4, or none.
	// Default: lzma (what Viable clients decode).
	Codec string `yaml:"codec" toml:"codec"`

	// Encoding is json or cbor. Default: json.
	Encoding string `yaml:"encoding" toml:"encoding"`

	// Schema is an optional JSON Schema path every definition must
	// satisfy before fragment validation.
	Schema string `yaml:"schema" toml:"schema"`

	// Verify decompresses the payload after compressing it and
	// compares it with the input.
	Verify bool `yaml:"verify" toml:"verify"`
}

// HeaderConfig configures the generated C header.
type HeaderConfig struct {
	// Symbol is the name of the PROGMEM array.
	// Default: viable_definition_data
	Symbol string `yaml:"symbol" toml:"symbol"`

	// SizeMacro is the compressed size macro.
	// Default: VIABLE_DEFINITION_SIZE
	SizeMacro string `yaml:"size_macro" toml:"size_macro"`

	// UncompressedSizeMacro is the uncompressed size macro.
	// Default: VIABLE_DEFINITION_UNCOMPRESSED_SIZE
	UncompressedSizeMacro string `yaml:"uncompressed_size_macro" toml:"uncompressed_size_macro"`

	// BytesPerLine is the number of array elements per line, 1-64.
	// Default: 16
	BytesPerLine int `yaml:"bytes_per_line" toml:"bytes_per_line"`

	// Preamble lines are emitted as comments after the banner.
	Preamble []string `yaml:"preamble" toml:"preamble"`
}

// FragmentsConfig configures fragment schema handling.
type FragmentsConfig struct {
	// ConfigHeader, when set, is where the header declaring
	// VIABLE_FRAGMENT_INSTANCE_COUNT is written alongside the
	// definition header.
	ConfigHeader string `yaml:"config_header" toml:"config_header"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info.
	Level string `yaml:"level" toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Payload: PayloadConfig{
			Codec:    compress.CodecLZMA.String(),
			Encoding: string(definition.EncodingJSON),
		},
		Header: HeaderConfig{
			Symbol:                header.DefaultSymbol,
			SizeMacro:             header.DefaultSizeMacro,
			UncompressedSizeMacro: header.DefaultUncompressedSizeMacro,
			BytesPerLine:          header.DefaultBytesPerLine,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the file named by VIABLE_COMPRESS_CONFIG, or returns the
// defaults when the variable is unset. Firmware builds invoke the tool
// without any configuration, so defaults are not an error here.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over the defaults. Files
// ending in .toml are TOML; everything else is YAML. Unset fields keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decoding TOML config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decoding YAML config %s: %w", path, err)
		}
	}

	cfg.expandVariables(filepath.Dir(path))
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in path
// fields. ${CONFIG_DIR} is the directory holding the config file.
func (c *Config) expandVariables(configDir string) {
	vars := map[string]string{
		"CONFIG_DIR": configDir,
		"HOME":       os.Getenv("HOME"),
	}
	c.Payload.Schema = expandVars(c.Payload.Schema, vars)
	c.Fragments.ConfigHeader = expandVars(c.Fragments.ConfigHeader, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := compress.ParseCodec(c.Payload.Codec); err != nil {
		errs = append(errs, fmt.Errorf("payload.codec: %w", err))
	}
	if _, err := definition.ParseEncoding(c.Payload.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("payload.encoding: %w", err))
	}
	if err := c.HeaderOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("header: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Codec returns the parsed payload codec. Call Validate first.
func (c *Config) Codec() compress.Codec {
	codec, _ := compress.ParseCodec(c.Payload.Codec)
	return codec
}

// Encoding returns the parsed payload encoding. Call Validate first.
func (c *Config) Encoding() definition.Encoding {
	encoding, _ := definition.ParseEncoding(c.Payload.Encoding)
	return encoding
}

// HeaderOptions returns the header rendering options.
func (c *Config) HeaderOptions() header.Options {
	return header.Options{
		Symbol:                c.Header.Symbol,
		SizeMacro:             c.Header.SizeMacro,
		UncompressedSizeMacro: c.Header.UncompressedSizeMacro,
		BytesPerLine:          c.Header.BytesPerLine,
		Preamble:              c.Header.Preamble,
	}
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown level %q (want debug, info, warn, or error)", c.Log.Level)
	}
	return level, nil
}
