// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package definition

import (
	"bytes"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/viable-kb/viable-compress/lib/document"
)

// Schema is a compiled JSON Schema that definitions are checked against
// before fragment validation. It catches shape errors in the parts of a
// definition the fragment validator does not look at.
type Schema struct {
	location string
	compiled *jsonschema.Schema
}

// LoadSchema reads and compiles the JSON Schema at path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	return CompileSchema(path, data)
}

// CompileSchema compiles schema source. location names the schema in
// error messages and resolves relative $ref values.
func CompileSchema(location string, data []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(location, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("adding schema %s: %w", location, err)
	}
	compiled, err := compiler.Compile(location)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", location, err)
	}
	return &Schema{location: location, compiled: compiled}, nil
}

// Check validates a decoded definition against the schema.
func (s *Schema) Check(doc document.Document) error {
	if err := s.compiled.Validate(map[string]any(doc)); err != nil {
		return fmt.Errorf("definition does not match schema %s: %w", s.location, err)
	}
	return nil
}
