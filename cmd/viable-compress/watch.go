// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	"github.com/viable-kb/viable-compress/cmd/viable-compress/cli"
	"github.com/viable-kb/viable-compress/lib/config"
)

type watchParams struct {
	configParams
	payloadParams
	FragmentHeader string        `flag:"fragment-header" desc:"also write the fragment config header to this path"`
	Debounce       time.Duration `flag:"debounce" desc:"quiet period after a change before rebuilding" default:"100ms"`
}

// watchEvents are the operations on the definition that trigger a
// rebuild. Editors that save by rename show up as Create on the new
// file, and Remove rebuilds the empty header.
const watchEvents = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

func watchCommand(a *app) *cli.Command {
	var params watchParams
	var command *cli.Command

	command = &cli.Command{
		Name:    "watch",
		Summary: "Rebuild the header whenever the definition changes",
		Description: `Build the header once, then rebuild it each time the definition file
changes. A definition that fails validation is reported and the
previous header is left in place. Runs until interrupted.`,
		Usage: "viable-compress watch [flags] <input> <output>",
		Examples: []cli.Example{
			{
				Description: "Keep the header current while editing the layout",
				Command:     "viable-compress watch keyboards/board/viable.json build/viable_definition.h",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("watch", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return command.UsageError()
			}
			input, output := args[0], args[1]
			if params.Debounce <= 0 {
				return fmt.Errorf("--debounce must be positive, got %s", params.Debounce)
			}

			cfg, err := params.load(&params.payloadParams)
			if err != nil {
				return err
			}
			if params.FragmentHeader != "" {
				cfg.Fragments.ConfigHeader = params.FragmentHeader
			}
			logger := a.logger(cfg, params.Verbose, "watch")

			return watchDefinition(ctx, input, output, params.Debounce, cfg, logger, a)
		},
	}
	return command
}

// watchDefinition rebuilds output from input on every change until ctx
// is done. Build failures are logged and do not stop the watch.
func watchDefinition(ctx context.Context, input, output string, debounce time.Duration, cfg *config.Config, logger *slog.Logger, a *app) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched rather than the file so that the watch
	// survives the file being replaced or created later.
	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	name := filepath.Base(input)

	rebuild := func() {
		result, err := generate(input, cfg, logger)
		if err != nil {
			logger.Error("build failed", "input", input, "error", err)
			return
		}
		if err := result.write(output, cfg, logger); err != nil {
			logger.Error("writing header failed", "output", output, "error", err)
			return
		}
		fmt.Fprintln(a.stdout, result.summary(input))
	}

	rebuild()
	logger.Info("watching definition", "input", input, "output", output)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name || event.Op&watchEvents == 0 {
				continue
			}
			logger.Debug("definition changed", "op", event.Op.String())
			pending = time.After(debounce)

		case <-pending:
			pending = nil
			rebuild()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
