// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/viable-kb/viable-compress/cmd/viable-compress/cli"
)

type compressParams struct {
	configParams
	payloadParams
	Verify         bool   `flag:"verify" desc:"decompress the payload after compressing and compare"`
	FragmentHeader string `flag:"fragment-header" desc:"also write the fragment config header to this path"`
}

// rootCommand builds the command tree. The root itself compresses a
// definition into a header.
func rootCommand(a *app) *cli.Command {
	var params compressParams
	var root *cli.Command

	root = &cli.Command{
		Name: "viable-compress",
		Description: `Compress a Viable keyboard definition into a firmware C header.

The definition (JSON with comments, or YAML) is checked against its
fragment schema, minified, compressed, and emitted as a PROGMEM byte
array. When the input does not exist an empty definition header is
written instead, so keyboards without a definition still build.`,
		Usage: "viable-compress [flags] <input> <output>",
		Examples: []cli.Example{
			{
				Description: "Build the definition header for a keyboard",
				Command:     "viable-compress keyboards/board/viable.json build/viable_definition.h",
			},
			{
				Description: "Also emit the fragment instance count and verify the payload",
				Command:     "viable-compress --verify --fragment-header build/viable_fragment_config.h viable.json build/viable_definition.h",
			},
		},
		Output: a.stderr,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("viable-compress", &params)
		},
		Subcommands: []*cli.Command{
			validateCommand(a),
			inspectCommand(a),
			checkCommand(a),
			watchCommand(a),
			versionCommand(a),
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return root.UsageError()
			}
			input, output := args[0], args[1]

			cfg, err := params.load(&params.payloadParams)
			if err != nil {
				return err
			}
			if params.Verify {
				cfg.Payload.Verify = true
			}
			if params.FragmentHeader != "" {
				cfg.Fragments.ConfigHeader = params.FragmentHeader
			}
			logger := a.logger(cfg, params.Verbose, "compress")

			result, err := generate(input, cfg, logger)
			if err != nil {
				return err
			}
			if err := result.write(output, cfg, logger); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, result.summary(input))
			return nil
		},
	}
	return root
}
