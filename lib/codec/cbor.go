// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any so decoded payloads
// have the same shape as decoded JSON definitions.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// MarshalDocument encodes a decoded definition document. Numbers held
// as json.Number become CBOR integers when they parse as int64 and
// floats otherwise; without this they would encode as text strings.
func MarshalDocument(document any) ([]byte, error) {
	normalized, err := normalize(document)
	if err != nil {
		return nil, err
	}
	return Marshal(normalized)
}

func normalize(value any) (any, error) {
	switch typed := value.(type) {
	case json.Number:
		if integer, err := typed.Int64(); err == nil {
			return integer, nil
		}
		float, err := typed.Float64()
		if err != nil {
			return nil, fmt.Errorf("codec: number %q: %w", typed.String(), err)
		}
		return float, nil
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, element := range typed {
			converted, err := normalize(element)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for index, element := range typed {
			converted, err := normalize(element)
			if err != nil {
				return nil, err
			}
			out[index] = converted
		}
		return out, nil
	default:
		return value, nil
	}
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. inspect uses it to show a CBOR payload in readable form.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
