// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package violation defines the error taxonomy reported by the layout
// counter and the fragment schema validator.
//
// Every rejection is a [*Violation] carrying a [Kind] (missing field,
// invalid type, unsupported version, out of range, reserved value,
// duplicate key, mutually exclusive fields, too many or too few entries,
// dangling reference, length mismatch) plus enough location detail to fix
// the source document: the record kind and identifier, the field, and
// for duplicates and mismatches both conflicting values.
//
// Callers extract the violation from a wrapped error with [As] and test
// its kind with [IsKind].
//
// This package depends on no other packages in this module.
package violation
