// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/viable-kb/viable-compress/lib/compress"
	"github.com/viable-kb/viable-compress/lib/config"
	"github.com/viable-kb/viable-compress/lib/definition"
	"github.com/viable-kb/viable-compress/lib/fragment"
	"github.com/viable-kb/viable-compress/lib/header"
)

// loaded is a definition that passed every check.
type loaded struct {
	definition *definition.Definition
	report     *fragment.Report
	payload    []byte
}

// loadDefinition reads the definition at path, applies the configured
// JSON Schema gate, validates the fragment schema, and encodes the
// payload. A missing file is returned as definition.ErrNotFound.
func loadDefinition(path string, cfg *config.Config, logger *slog.Logger) (*loaded, error) {
	parsed, err := definition.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if cfg.Payload.Schema != "" {
		schema, err := definition.LoadSchema(cfg.Payload.Schema)
		if err != nil {
			return nil, err
		}
		if err := schema.Check(parsed.Document); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("definition matches schema", "schema", cfg.Payload.Schema)
	}

	validator := fragment.Validator{FragmentOrder: parsed.MemberOrder("fragments")}
	report, err := validator.Analyze(parsed.Document)
	if err != nil {
		return nil, fmt.Errorf("fragment schema validation: %w", err)
	}
	if report.Present {
		logger.Debug("fragment schema valid",
			"fragments", len(report.Fragments),
			"instances", report.InstanceCount(),
		)
	}

	payload, err := parsed.Payload(cfg.Encoding())
	if err != nil {
		return nil, err
	}
	return &loaded{definition: parsed, report: report, payload: payload}, nil
}

// generated holds the rendered headers for one definition.
type generated struct {
	// missing is set when there was no definition file.
	missing bool

	header         []byte
	fragmentConfig []byte

	uncompressedSize int
	compressedSize   int
}

// generate produces the headers for the definition at path.
func generate(path string, cfg *config.Config, logger *slog.Logger) (*generated, error) {
	options := cfg.HeaderOptions()

	source, err := loadDefinition(path, cfg, logger)
	if errors.Is(err, definition.ErrNotFound) {
		logger.Debug("no definition, generating empty header", "input", path)
		return &generated{
			missing:        true,
			header:         header.RenderEmpty(options),
			fragmentConfig: header.RenderFragmentConfig(0),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	codec := cfg.Codec()
	compressed, err := compress.Compress(source.payload, codec)
	if err != nil {
		return nil, err
	}
	if cfg.Payload.Verify {
		restored, err := compress.Decompress(compressed, codec, len(source.payload))
		if err != nil {
			return nil, fmt.Errorf("verifying %s payload: %w", codec, err)
		}
		if !bytes.Equal(restored, source.payload) {
			return nil, fmt.Errorf("verifying %s payload: decompressed bytes differ from input", codec)
		}
		logger.Debug("payload round trip verified", "codec", codec.String())
	}

	artifact := header.Artifact{
		Compressed:       compressed,
		UncompressedSize: len(source.payload),
		Digest:           header.Sum(source.payload),
		Codec:            codec,
		Encoding:         string(cfg.Encoding()),
	}
	return &generated{
		header:           header.Render(artifact, options),
		fragmentConfig:   header.RenderFragmentConfig(source.report.InstanceCount()),
		uncompressedSize: len(source.payload),
		compressedSize:   len(compressed),
	}, nil
}

// write stores the generated headers. The fragment config header is
// written only when configured.
func (g *generated) write(outputPath string, cfg *config.Config, logger *slog.Logger) error {
	changed, err := header.WriteFile(outputPath, g.header)
	if err != nil {
		return err
	}
	logger.Debug("definition header", "path", outputPath, "changed", changed)

	if cfg.Fragments.ConfigHeader == "" {
		return nil
	}
	changed, err = header.WriteFile(cfg.Fragments.ConfigHeader, g.fragmentConfig)
	if err != nil {
		return err
	}
	logger.Debug("fragment config header", "path", cfg.Fragments.ConfigHeader, "changed", changed)
	return nil
}

// summary is the line printed after a build.
func (g *generated) summary(input string) string {
	if g.missing {
		return fmt.Sprintf("No definition found at %s, generated empty definition", input)
	}
	return fmt.Sprintf("Compressed %s: %d -> %d bytes (%d%%)",
		input, g.uncompressedSize, g.compressedSize,
		compress.Ratio(g.uncompressedSize, g.compressedSize))
}
