// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration used for the optional
// CBOR payload encoding.
//
// Viable clients read the definition as minified JSON, which remains
// the default. Firmware builds that trade client compatibility for a
// smaller payload can embed the definition as CBOR instead. The encoder
// uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
// definition always produces identical bytes and an identical header
// digest.
//
//	payload, err := codec.MarshalDocument(document)
//	err = codec.Unmarshal(payload, &decoded)
package codec
