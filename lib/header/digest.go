// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package header

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// digestPrefix introduces the payload digest line in the banner.
const digestPrefix = "// Payload BLAKE3: "

// ErrNoDigest is returned by ReadDigest for headers that carry no
// payload digest: empty-definition headers and headers from older
// tools.
var ErrNoDigest = errors.New("header has no payload digest")

// Digest is the BLAKE3-256 digest of an uncompressed payload.
type Digest [32]byte

// Sum computes the digest of payload.
func Sum(payload []byte) Digest {
	return Digest(blake3.Sum256(payload))
}

// String returns the lowercase hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses a hex-encoded digest. Returns an error if the
// string is not a 64-character hex encoding of 32 bytes.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing payload digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("payload digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}

// ReadDigest extracts the payload digest from a rendered header. Only
// the leading comment block is scanned.
func ReadDigest(data []byte) (Digest, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "//") {
			break
		}
		if value, found := strings.CutPrefix(line, digestPrefix); found {
			return ParseDigest(strings.TrimSpace(value))
		}
	}
	if err := scanner.Err(); err != nil {
		return Digest{}, fmt.Errorf("reading header: %w", err)
	}
	return Digest{}, ErrNoDigest
}
