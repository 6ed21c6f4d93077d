// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/pflag"

	"github.com/viable-kb/viable-compress/cmd/viable-compress/cli"
	"github.com/viable-kb/viable-compress/lib/definition"
	"github.com/viable-kb/viable-compress/lib/header"
)

type checkParams struct {
	cli.JSONOutput
	configParams
	payloadParams
}

// checkResult is the JSON output for check.
type checkResult struct {
	Header           string `json:"header"`
	Definition       string `json:"definition"`
	UpToDate         bool   `json:"up_to_date"`
	Reason           string `json:"reason,omitempty"`
	HeaderDigest     string `json:"header_digest,omitempty"`
	DefinitionDigest string `json:"definition_digest,omitempty"`
}

func checkCommand(a *app) *cli.Command {
	var params checkParams
	var command *cli.Command

	command = &cli.Command{
		Name:    "check",
		Summary: "Check that a generated header matches its definition",
		Description: `Compare the payload digest recorded in a generated header against the
payload the definition produces now. Exits 1 when the header is missing
or stale, so a CI job can catch a definition edited without rebuilding.

A header generated from a missing definition is current only while the
definition is still missing.`,
		Usage: "viable-compress check [flags] <input> <header>",
		Examples: []cli.Example{
			{
				Description: "Fail if the checked-in header is stale",
				Command:     "viable-compress check viable.json viable_definition.h",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("check", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return command.UsageError()
			}
			input, headerPath := args[0], args[1]

			cfg, err := params.load(&params.payloadParams)
			if err != nil {
				return err
			}
			logger := a.logger(cfg, params.Verbose, "check")

			result := checkResult{Header: headerPath, Definition: input}

			var recorded *header.Digest
			existing, err := os.ReadFile(headerPath)
			switch {
			case errors.Is(err, fs.ErrNotExist):
				result.Reason = "header does not exist"
			case err != nil:
				return fmt.Errorf("reading header: %w", err)
			default:
				digest, err := header.ReadDigest(existing)
				switch {
				case errors.Is(err, header.ErrNoDigest):
				case err != nil:
					return fmt.Errorf("%s: %w", headerPath, err)
				default:
					recorded = &digest
					result.HeaderDigest = digest.String()
				}
			}

			source, err := loadDefinition(input, cfg, logger)
			missing := errors.Is(err, definition.ErrNotFound)
			if err != nil && !missing {
				return err
			}

			if result.Reason == "" {
				switch {
				case missing && recorded == nil:
					result.UpToDate = true
				case missing:
					result.Reason = "definition was removed"
				case recorded == nil:
					result.Reason = "header carries no payload digest"
				default:
					current := header.Sum(source.payload)
					result.DefinitionDigest = current.String()
					if current == *recorded {
						result.UpToDate = true
					} else {
						result.Reason = "payload digest differs"
					}
				}
			} else if !missing {
				result.DefinitionDigest = header.Sum(source.payload).String()
			}
			logger.Debug("header checked", "header", headerPath, "up_to_date", result.UpToDate)

			if done, err := params.EmitJSON(a.stdout, result); done {
				if err != nil {
					return err
				}
				if !result.UpToDate {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}

			if !result.UpToDate {
				fmt.Fprintf(a.stdout, "%s is stale: %s\n", headerPath, result.Reason)
				return &cli.ExitError{Code: 1}
			}
			fmt.Fprintf(a.stdout, "%s is up to date\n", headerPath)
			return nil
		},
	}
	return command
}
