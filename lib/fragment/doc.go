// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package fragment validates the fragment schema embedded in a Viable
// keyboard definition.
//
// A fragment schema describes a keyboard as a composition of reusable
// physical units. Each fragment has a small integer id (0-254; 255 is the
// firmware's "no fragment" sentinel) and a KLE layout. The composition
// lists up to 21 instances, each either fixed to one fragment or offering
// two or more fragment alternatives. Every instance (or alternative)
// carries a placement and a matrix_map wiring each of the fragment's keys
// to a position in the switch matrix.
//
// [Validate] runs six ordered phases and stops at the first violation,
// returned as a *[violation.Violation]. A document that declares neither
// fragment_schema_version nor fragments is accepted without checks.
// [Analyze] validates and then summarizes the schema for tooling and for
// generating firmware configuration.
//
// Fragments are visited in name order unless a [Validator] supplies
// the document's declaration order.
//
// Validation is pure: it reads the decoded document, never modifies it,
// and holds no state between calls, so distinct documents may be
// validated concurrently.
package fragment
