// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/viable-kb/viable-compress/lib/codec"
	"github.com/viable-kb/viable-compress/lib/document"
)

// ErrNotFound is returned by ReadFile when the definition file does not
// exist. Keyboards without a definition still build, with an empty one.
var ErrNotFound = errors.New("definition not found")

// Format is the authoring format of a definition file.
type Format int

const (
	// FormatJSONC is JSON extended with comments and trailing commas.
	// Plain JSON is a subset.
	FormatJSONC Format = iota
	// FormatYAML is YAML, converted to JSON before use.
	FormatYAML
)

// String returns the format name.
func (format Format) String() string {
	switch format {
	case FormatJSONC:
		return "jsonc"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("unknown(%d)", int(format))
	}
}

// FormatFromPath picks the format from the file extension: .yaml and
// .yml are YAML, everything else is JSONC.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSONC
	}
}

// Definition is a parsed keyboard definition.
type Definition struct {
	// Document is the decoded definition. Numbers are json.Number.
	Document document.Document

	// JSON is the minified definition: the source with whitespace and
	// comments removed and key order preserved.
	JSON []byte

	order memberOrder
}

// MemberOrder returns the member names of the top-level object field in
// the order the source declares them, or nil when the field is absent
// or not an object. Document maps do not keep this order.
func (d *Definition) MemberOrder(field string) []string {
	return d.order[field]
}

// Parse decodes a definition in the given format. The top-level value
// must be an object.
func Parse(data []byte, format Format) (*Definition, error) {
	var source []byte
	switch format {
	case FormatJSONC:
		source = jsonc.ToJSON(data)
	case FormatYAML:
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, err
		}
		source = converted
	default:
		return nil, fmt.Errorf("unsupported definition format %s", format)
	}

	var minified bytes.Buffer
	if err := json.Compact(&minified, source); err != nil {
		return nil, fmt.Errorf("parsing definition: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(minified.Bytes()))
	decoder.UseNumber()
	var root any
	if err := decoder.Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing definition: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing definition: unexpected data after top-level value")
	}
	object, ok := document.Object(root)
	if !ok {
		return nil, fmt.Errorf("parsing definition: top-level value must be an object")
	}

	var order memberOrder
	var err error
	if format == FormatYAML {
		order, err = yamlMemberOrder(data)
	} else {
		order, err = jsonMemberOrder(minified.Bytes())
	}
	if err != nil {
		return nil, fmt.Errorf("parsing definition: %w", err)
	}

	return &Definition{Document: object, JSON: minified.Bytes(), order: order}, nil
}

// ReadFile reads and parses a definition file, choosing the format from
// its extension. A missing file yields an error wrapping ErrNotFound.
func ReadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return parsed, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parsing definition: %w", err)
	}
	converted, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("converting YAML definition to JSON: %w", err)
	}
	return converted, nil
}

// Encoding is the form a definition takes inside the firmware payload.
type Encoding string

const (
	// EncodingJSON embeds the minified JSON. Viable clients expect this.
	EncodingJSON Encoding = "json"
	// EncodingCBOR embeds deterministic CBOR.
	EncodingCBOR Encoding = "cbor"
)

// ParseEncoding parses a payload encoding name. The empty string is
// EncodingJSON.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(name) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingCBOR:
		return EncodingCBOR, nil
	default:
		return "", fmt.Errorf("unknown payload encoding %q (want json or cbor)", name)
	}
}

// Payload returns the uncompressed bytes embedded in the firmware.
func (d *Definition) Payload(encoding Encoding) ([]byte, error) {
	switch encoding {
	case "", EncodingJSON:
		return d.JSON, nil
	case EncodingCBOR:
		data, err := codec.MarshalDocument(d.Document)
		if err != nil {
			return nil, fmt.Errorf("encoding definition as CBOR: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", string(encoding))
	}
}
