// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package document provides typed access to a decoded definition
// document. Documents are the generic values produced by encoding/json
// with UseNumber: map[string]any, []any, string, json.Number, bool, and
// nil. Values decoded by other means (YAML, hand-built test fixtures)
// may also carry native Go integers and floats; the accessors accept
// both.
package document

import (
	"encoding/json"
	"math"
	"math/big"
	"sort"
)

// Document is a decoded top-level definition object.
type Document = map[string]any

// Integer returns value as an int64 when it is an integral number.
// Floats, including those with a zero fractional part such as 1.0, and
// booleans are not integers.
//
// Integers outside the int64 range are still integers: they saturate to
// math.MinInt64 or math.MaxInt64, so range checks against the result
// reject them as out of range rather than as the wrong type.
func Integer(value any) (int64, bool) {
	switch typed := value.(type) {
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed, true
		}
		return saturate(string(typed))
	case int:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint:
		if uint64(typed) > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(typed), true
	case uint8:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint64:
		if typed > math.MaxInt64 {
			return math.MaxInt64, true
		}
		return int64(typed), true
	default:
		return 0, false
	}
}

// saturate clamps an integer literal too large for int64. Literals with
// a fraction or exponent are not integers.
func saturate(literal string) (int64, bool) {
	var parsed big.Int
	if _, ok := parsed.SetString(literal, 10); !ok {
		return 0, false
	}
	if parsed.Sign() < 0 {
		return math.MinInt64, true
	}
	return math.MaxInt64, true
}

// Object returns value as a JSON object.
func Object(value any) (map[string]any, bool) {
	object, ok := value.(map[string]any)
	return object, ok
}

// Array returns value as a JSON array.
func Array(value any) ([]any, bool) {
	array, ok := value.([]any)
	return array, ok
}

// String returns value as a JSON string.
func String(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

// SortedKeys returns the keys of object in lexical order. Map iteration
// order is random in Go; every pass over a document that can report a
// violation iterates in this order so the first violation is stable.
func SortedKeys(object map[string]any) []string {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
