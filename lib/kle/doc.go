// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

// Package kle counts keys and rotary encoders in a keyboard-layout-editor
// (KLE) description.
//
// A KLE layout is a JSON array of rows. Each row mixes key descriptors
// (strings of up to twelve newline-separated labels) with properties
// descriptors (objects). The "a" property sets the label alignment for
// every following key until it changes again, across row boundaries.
// Labels are placed into twelve canonical slots by an alignment-specific
// permutation; a key whose canonical slot 4 reads "e" is one rotation
// direction of an encoder.
//
// [Count] is the only operation the fragment validator needs.
// [Labels] exposes the canonical slot view for tooling.
package kle
