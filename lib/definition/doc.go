// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package definition loads keyboard definitions (viable.json) for the
// encoder.
//
// Definitions are authored as JSONC (JSON with comments and trailing
// commas) or YAML. Either way the result is a [Definition] carrying the
// decoded document, which the fragment validator inspects, and the
// minified JSON that ends up in firmware. Minification removes
// whitespace and comments but keeps key order, so the payload matches
// what the source file says.
//
// The typical flow:
//
//  1. ReadFile: file -> Definition (ErrNotFound when absent)
//  2. Schema.Check: optional JSON Schema gate
//  3. fragment.Validate on Definition.Document
//  4. Definition.Payload: bytes to compress
package definition
