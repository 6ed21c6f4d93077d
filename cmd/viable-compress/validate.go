// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/viable-kb/viable-compress/cmd/viable-compress/cli"
	"github.com/viable-kb/viable-compress/lib/violation"
)

type validateParams struct {
	cli.JSONOutput
	configParams
	Schema string `flag:"schema" desc:"JSON Schema the definition must satisfy"`
}

// validationResult is the JSON output for validate.
type validationResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	// Issue is the first problem found, as text.
	Issue string `json:"issue,omitempty"`
	// Violation is the structured form of Issue when it is a fragment
	// schema violation.
	Violation *violation.Violation `json:"violation,omitempty"`
}

func validateCommand(a *app) *cli.Command {
	var params validateParams
	var command *cli.Command

	command = &cli.Command{
		Name:    "validate",
		Summary: "Validate a definition without writing a header",
		Description: `Validate a keyboard definition: parse it, check it against the
configured JSON Schema (if any), and check its fragment schema. Nothing
is written. Exits 1 when the definition is rejected.`,
		Usage: "viable-compress validate [flags] <input>",
		Examples: []cli.Example{
			{
				Description: "Validate a definition",
				Command:     "viable-compress validate viable.json",
			},
			{
				Description: "Machine-readable result for CI annotations",
				Command:     "viable-compress validate --json viable.json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("validate", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return command.UsageError()
			}
			path := args[0]

			cfg, err := params.load(&payloadParams{Schema: params.Schema})
			if err != nil {
				return err
			}
			logger := a.logger(cfg, params.Verbose, "validate")

			result := validationResult{File: path, Valid: true}
			_, loadErr := loadDefinition(path, cfg, logger)
			if loadErr != nil {
				result.Valid = false
				result.Issue = loadErr.Error()
				if found, ok := violation.As(loadErr); ok {
					result.Violation = found
				}
			}

			if done, err := params.EmitJSON(a.stdout, result); done {
				if err != nil {
					return err
				}
				if !result.Valid {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}

			if loadErr != nil {
				return fmt.Errorf("%s: %w", path, loadErr)
			}
			fmt.Fprintf(a.stdout, "%s: valid\n", path)
			return nil
		},
	}
	return command
}
