// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress compresses the definition payload embedded in
// firmware.
//
// The default codec is LZMA in the legacy "alone" container, which is
// what Viable clients decompress when they fetch the definition from
// the keyboard. zstd, LZ4, and uncompressed payloads are available for
// firmware paired with clients that understand them.
package compress
