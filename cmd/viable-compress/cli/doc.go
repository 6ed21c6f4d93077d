// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for viable-compress.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. The root command both runs on its own (compressing a
// definition given as two positional paths) and dispatches to
// subcommands, so [Command.Execute] treats a first argument that looks
// like a path as a positional argument rather than a command name.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Flags are declared as tagged fields of a params struct and bound with
// [FlagsFromParams]. [JSONOutput] adds a --json flag; [ExitError] lets a
// command exit non-zero after printing its own output.
package cli
