// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads viable-compress configuration.
//
// Configuration is optional: a firmware build runs the tool with no
// configuration and gets the layout Viable clients expect. When a file
// is wanted it comes from either the VIABLE_COMPRESS_CONFIG environment
// variable (via [Load]) or a --config flag (via [LoadFile]). There is no
// automatic file search.
//
// Files ending in .toml are decoded as TOML; anything else is YAML.
// Fields left out of the file keep their [Default] values.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${CONFIG_DIR}, and ${VAR:-default} patterns are expanded.
//
// Key exports:
//
//   - [Config] -- Payload, Header, Fragments, and Log sections
//   - [Default] -- the zero-configuration settings
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
package config
