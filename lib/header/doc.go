// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package header renders the C headers that embed a keyboard definition
// in firmware.
//
// The definition header declares the compressed payload as a PROGMEM
// byte array with two size macros:
//
//	#define VIABLE_DEFINITION_SIZE 1234
//	#define VIABLE_DEFINITION_UNCOMPRESSED_SIZE 5678
//	static const uint8_t PROGMEM viable_definition_data[] = {
//	    0x5d, 0x00, 0x00, 0x00, 0x04, ...,
//	};
//
// The banner records the BLAKE3 digest of the uncompressed payload so
// that a stale header can be detected without decompressing it (see
// [ReadDigest]). Keyboards without a definition get [RenderEmpty].
//
// The fragment config header carries VIABLE_FRAGMENT_INSTANCE_COUNT for
// the firmware's fragment selection table.
package header
