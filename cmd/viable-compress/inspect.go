// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/viable-kb/viable-compress/cmd/viable-compress/cli"
	"github.com/viable-kb/viable-compress/lib/codec"
	"github.com/viable-kb/viable-compress/lib/compress"
	"github.com/viable-kb/viable-compress/lib/definition"
	"github.com/viable-kb/viable-compress/lib/fragment"
)

type inspectParams struct {
	cli.JSONOutput
	configParams
	payloadParams
	Diagnose bool `flag:"diagnose" desc:"print the CBOR payload in diagnostic notation (implies --encoding cbor)"`
}

// inspection is the JSON output for inspect.
type inspection struct {
	File     string           `json:"file"`
	Fragment *fragment.Report `json:"fragment_schema"`
	Payload  payloadSizes     `json:"payload"`
}

type payloadSizes struct {
	Encoding     string         `json:"encoding"`
	Uncompressed int            `json:"uncompressed"`
	Compressed   map[string]int `json:"compressed"`
}

func inspectCommand(a *app) *cli.Command {
	var params inspectParams
	var command *cli.Command

	command = &cli.Command{
		Name:    "inspect",
		Summary: "Show fragment key counts and payload sizes",
		Description: `Validate a definition and describe it: each fragment's id, key count,
and encoder count; each composition instance and the fragments it can
select; and the payload size under every codec.`,
		Usage: "viable-compress inspect [flags] <input>",
		Examples: []cli.Example{
			{
				Description: "Show fragments and instances",
				Command:     "viable-compress inspect viable.json",
			},
			{
				Description: "Show the CBOR payload",
				Command:     "viable-compress inspect --diagnose viable.json",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return command.UsageError()
			}
			path := args[0]

			if params.Diagnose {
				params.Encoding = string(definition.EncodingCBOR)
			}
			cfg, err := params.load(&params.payloadParams)
			if err != nil {
				return err
			}
			logger := a.logger(cfg, params.Verbose, "inspect")

			source, err := loadDefinition(path, cfg, logger)
			if err != nil {
				return err
			}

			if params.Diagnose {
				text, err := codec.Diagnose(source.payload)
				if err != nil {
					return fmt.Errorf("decoding CBOR payload: %w", err)
				}
				fmt.Fprintln(a.stdout, text)
				return nil
			}

			result := inspection{
				File:     path,
				Fragment: source.report,
				Payload: payloadSizes{
					Encoding:     string(cfg.Encoding()),
					Uncompressed: len(source.payload),
					Compressed:   make(map[string]int),
				},
			}
			for _, candidate := range []compress.Codec{compress.CodecLZMA, compress.CodecZstd, compress.CodecLZ4, compress.CodecNone} {
				compressed, err := compress.Compress(source.payload, candidate)
				if err != nil {
					return err
				}
				result.Payload.Compressed[candidate.String()] = len(compressed)
			}

			if done, err := params.EmitJSON(a.stdout, result); done {
				return err
			}
			printInspection(a.stdout, result)
			return nil
		},
	}
	return command
}

func printInspection(w io.Writer, result inspection) {
	report := result.Fragment
	if !report.Present {
		fmt.Fprintf(w, "%s: no fragment schema\n", result.File)
	} else {
		fmt.Fprintf(w, "%s: fragment schema version %d\n\n", result.File, report.Version)

		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "FRAGMENT\tID\tKEYS\tENCODERS")
		for _, summary := range report.Fragments {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", summary.Name, summary.ID, summary.Keys, summary.Encoders)
		}
		tw.Flush()
		fmt.Fprintln(w)

		tw = tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "INSTANCE\tPOSITION\tFRAGMENTS")
		for _, instance := range report.Instances {
			fragments := strings.Join(instance.Fragments, ", ")
			if instance.Selectable {
				fragments = "one of: " + fragments
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", instance.ID, instance.Position, fragments)
		}
		tw.Flush()
		fmt.Fprintf(w, "\n%d of %d instance slots used\n", report.InstanceCount(), fragment.MaxInstances)
	}

	fmt.Fprintf(w, "\nPayload (%s): %d bytes\n", result.Payload.Encoding, result.Payload.Uncompressed)
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	for _, name := range []string{"lzma", "zstd", "lz4", "none"} {
		size := result.Payload.Compressed[name]
		fmt.Fprintf(tw, "  %s\t%d bytes\t%d%%\n", name, size, compress.Ratio(result.Payload.Uncompressed, size))
	}
	tw.Flush()
}
