// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/viable-kb/viable-compress/cmd/viable-compress/cli"
	"github.com/viable-kb/viable-compress/lib/version"
)

type versionParams struct {
	cli.JSONOutput
}

func versionCommand(a *app) *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Usage:   "viable-compress version [--json]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if done, err := params.EmitJSON(a.stdout, version.Current()); done {
				return err
			}
			fmt.Fprintf(a.stdout, "viable-compress %s\n", version.Full())
			return nil
		},
	}
}
