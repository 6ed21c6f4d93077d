// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package header

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/viable-kb/viable-compress/lib/compress"
)

// Banner is the first line of every generated definition header.
const Banner = "// Auto-generated by viable-compress - DO NOT EDIT"

// EmptyBanner is the first line of a header generated without a
// definition file.
const EmptyBanner = "// Auto-generated by viable-compress - no definition found"

// Default C names, matching what viable_definition.c includes.
const (
	DefaultSymbol                = "viable_definition_data"
	DefaultSizeMacro             = "VIABLE_DEFINITION_SIZE"
	DefaultUncompressedSizeMacro = "VIABLE_DEFINITION_UNCOMPRESSED_SIZE"
	DefaultBytesPerLine          = 16
	MaxBytesPerLine              = 64
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is usable as a C identifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Options controls header layout and the C names it declares.
type Options struct {
	Symbol                string
	SizeMacro             string
	UncompressedSizeMacro string

	// BytesPerLine is the number of array elements per line.
	BytesPerLine int

	// Preamble lines are emitted as // comments after the banner,
	// typically a copyright and license notice.
	Preamble []string
}

// DefaultOptions returns the layout Viable firmware builds use.
func DefaultOptions() Options {
	return Options{
		Symbol:                DefaultSymbol,
		SizeMacro:             DefaultSizeMacro,
		UncompressedSizeMacro: DefaultUncompressedSizeMacro,
		BytesPerLine:          DefaultBytesPerLine,
	}
}

// Validate checks that every name is a C identifier and BytesPerLine
// is between 1 and MaxBytesPerLine.
func (o Options) Validate() error {
	for label, name := range map[string]string{
		"symbol":                  o.Symbol,
		"size macro":              o.SizeMacro,
		"uncompressed size macro": o.UncompressedSizeMacro,
	} {
		if !ValidIdentifier(name) {
			return fmt.Errorf("%s %q is not a valid C identifier", label, name)
		}
	}
	if o.BytesPerLine < 1 || o.BytesPerLine > MaxBytesPerLine {
		return fmt.Errorf("bytes per line %d outside 1-%d", o.BytesPerLine, MaxBytesPerLine)
	}
	return nil
}

// Artifact is a compressed definition ready to embed.
type Artifact struct {
	// Compressed is the array contents.
	Compressed []byte

	// UncompressedSize is the payload length before compression.
	UncompressedSize int

	// Digest is the BLAKE3 digest of the uncompressed payload.
	Digest Digest

	// Codec and Encoding are recorded in the banner for readers.
	Codec    compress.Codec
	Encoding string
}

// Render produces the C header for an artifact.
func Render(artifact Artifact, options Options) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(Banner + "\n")
	writePreamble(&buffer, options.Preamble)
	if artifact.Encoding != "" {
		fmt.Fprintf(&buffer, "// Payload: %s, %s\n", artifact.Encoding, artifact.Codec)
	}
	fmt.Fprintf(&buffer, "%s%s\n", digestPrefix, artifact.Digest)
	buffer.WriteString("\n")

	writeIncludes(&buffer)
	fmt.Fprintf(&buffer, "#define %s %d\n", options.SizeMacro, len(artifact.Compressed))
	fmt.Fprintf(&buffer, "#define %s %d\n\n", options.UncompressedSizeMacro, artifact.UncompressedSize)

	fmt.Fprintf(&buffer, "static const uint8_t PROGMEM %s[] = {\n", options.Symbol)
	perLine := options.BytesPerLine
	if perLine < 1 {
		perLine = DefaultBytesPerLine
	}
	for start := 0; start < len(artifact.Compressed); start += perLine {
		end := min(start+perLine, len(artifact.Compressed))
		buffer.WriteString("    ")
		for index, value := range artifact.Compressed[start:end] {
			if index > 0 {
				buffer.WriteString(", ")
			}
			fmt.Fprintf(&buffer, "0x%02x", value)
		}
		buffer.WriteString(",\n")
	}
	buffer.WriteString("};\n")
	return buffer.Bytes()
}

// RenderEmpty produces the header used when a keyboard has no
// definition: both sizes are zero and the array is empty.
func RenderEmpty(options Options) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(EmptyBanner + "\n")
	writePreamble(&buffer, options.Preamble)
	buffer.WriteString("\n")

	writeIncludes(&buffer)
	fmt.Fprintf(&buffer, "#define %s 0\n", options.SizeMacro)
	fmt.Fprintf(&buffer, "#define %s 0\n\n", options.UncompressedSizeMacro)
	fmt.Fprintf(&buffer, "static const uint8_t PROGMEM %s[] = {};\n", options.Symbol)
	return buffer.Bytes()
}

func writePreamble(buffer *bytes.Buffer, preamble []string) {
	for _, line := range preamble {
		if line == "" {
			buffer.WriteString("//\n")
			continue
		}
		buffer.WriteString("// " + line + "\n")
	}
}

func writeIncludes(buffer *bytes.Buffer) {
	buffer.WriteString("#pragma once\n\n")
	buffer.WriteString("#include <stdint.h>\n")
	buffer.WriteString("#include \"progmem.h\"\n\n")
}
