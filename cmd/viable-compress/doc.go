// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// viable-compress turns a Viable keyboard definition (viable.json) into
// the C header that embeds it in firmware.
//
// Run with two paths it validates the definition's fragment schema,
// minifies and compresses the definition, and writes the header. A
// missing definition produces an empty header so that keyboards without
// one still build. Subcommands validate and inspect definitions without
// writing anything (validate, inspect), detect stale headers (check),
// and regenerate on change during development (watch).
package main
