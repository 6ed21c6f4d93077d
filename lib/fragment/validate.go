// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"fmt"

	"github.com/viable-kb/viable-compress/lib/document"
	"github.com/viable-kb/viable-compress/lib/kle"
	"github.com/viable-kb/viable-compress/lib/violation"
)

const (
	// SchemaVersion is the newest fragment_schema_version understood.
	SchemaVersion = 1

	// MaxInstances is the firmware's fixed selection buffer size
	// (one EEPROM byte per instance).
	MaxInstances = 21

	// MaxFragmentID is the largest assignable fragment id.
	MaxFragmentID = 254

	// ReservedFragmentID is the firmware's "no fragment" sentinel.
	ReservedFragmentID = 255

	// MinOptions is the smallest fragment_options list accepted. A
	// single alternative must use the direct fragment form instead.
	MinOptions = 2
)

// Document field names.
const (
	fieldVersion       = "fragment_schema_version"
	fieldFragments     = "fragments"
	fieldComposition   = "composition"
	fieldInstances     = "instances"
	fieldID            = "id"
	fieldKLE           = "kle"
	fieldFragment      = "fragment"
	fieldOptions       = "fragment_options"
	fieldPlacement     = "placement"
	fieldMatrixMap     = "matrix_map"
	fieldEncoderOffset = "encoder_offset"
)

// schema is the view of a document that Phase 1 proved well formed.
type schema struct {
	fragments map[string]any
	instances []any

	// names is the fragment visiting order.
	names []string
}

// Validator checks fragment schemas. The zero value visits fragments in
// name order.
type Validator struct {
	// FragmentOrder lists fragment names in the order the document
	// declares them. Fragments are visited in this order, which decides
	// the first violation reported and the owners named by a duplicate
	// id. Defined fragments it omits follow in name order.
	FragmentOrder []string
}

// InUse reports whether the document declares a fragment schema. A
// document with neither fragment_schema_version nor fragments is a
// plain definition and is never validated.
func InUse(doc document.Document) bool {
	_, hasVersion := doc[fieldVersion]
	_, hasFragments := doc[fieldFragments]
	return hasVersion || hasFragments
}

// Validate checks the fragment schema embedded in a definition document
// and returns the first violation found, or nil when the document is
// acceptable. The checks run in six phases; a phase only runs once every
// earlier phase has passed, so later phases may rely on the shapes
// earlier phases established.
//
//  1. Document structure: version, fragments, composition.instances.
//  2. Fragment definitions: ids (range, reserved value, uniqueness), kle.
//  3. Instance structure: count, ids, fragment XOR fragment_options.
//  4. Option shape: at least two options, each with required fields.
//  5. References: every fragment name resolves.
//  6. Wiring: encoder_offset and matrix_map length against key counts.
//
// The returned error is a *violation.Violation, wrapped with the
// fragment name when the layout counter rejects a fragment's kle.
// Validate does not modify doc. Fragments are visited in name order;
// use a [Validator] to visit them in document order.
func Validate(doc document.Document) error {
	return Validator{}.Validate(doc)
}

// Validate is [Validate] visiting fragments in v.FragmentOrder.
func (v Validator) Validate(doc document.Document) error {
	_, err := v.validate(doc)
	return err
}

// validate runs the phases and returns the key counts computed in
// Phase 6 so that Analyze does not recount.
func (v Validator) validate(doc document.Document) (map[string]kle.KeyCount, error) {
	if !InUse(doc) {
		return nil, nil
	}

	parsed, err := checkStructure(doc)
	if err != nil {
		return nil, err
	}
	parsed.names = v.fragmentNames(parsed.fragments)
	if err := checkFragments(parsed); err != nil {
		return nil, err
	}
	if err := checkInstances(parsed.instances); err != nil {
		return nil, err
	}
	if err := checkOptions(parsed.instances); err != nil {
		return nil, err
	}
	if err := checkReferences(parsed); err != nil {
		return nil, err
	}
	return checkWiring(parsed)
}

// fragmentNames orders the defined fragment names for visiting.
func (v Validator) fragmentNames(fragments map[string]any) []string {
	names := make([]string, 0, len(fragments))
	seen := make(map[string]bool, len(fragments))
	for _, name := range v.FragmentOrder {
		if _, defined := fragments[name]; defined && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range document.SortedKeys(fragments) {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// checkStructure is Phase 1.
func checkStructure(doc document.Document) (schema, error) {
	rawVersion, ok := doc[fieldVersion]
	if !ok {
		return schema{}, violation.NewMissingField("document", "", fieldVersion)
	}
	version, ok := document.Integer(rawVersion)
	if !ok || version > SchemaVersion {
		return schema{}, violation.NewUnsupportedVersion(rawVersion, SchemaVersion)
	}

	rawFragments, ok := doc[fieldFragments]
	if !ok {
		return schema{}, violation.NewMissingField("document", "", fieldFragments)
	}
	fragments, ok := document.Object(rawFragments)
	if !ok {
		return schema{}, violation.NewInvalidType("document", "", fieldFragments, "object", rawFragments)
	}

	rawComposition, ok := doc[fieldComposition]
	if !ok {
		return schema{}, violation.NewMissingField("document", "", fieldComposition)
	}
	composition, ok := document.Object(rawComposition)
	if !ok {
		return schema{}, violation.NewInvalidType("document", "", fieldComposition, "object", rawComposition)
	}

	rawInstances, ok := composition[fieldInstances]
	if !ok {
		return schema{}, violation.NewMissingField("composition", "", fieldInstances)
	}
	instances, ok := document.Array(rawInstances)
	if !ok {
		return schema{}, violation.NewInvalidType("composition", "", fieldInstances, "array", rawInstances)
	}

	return schema{fragments: fragments, instances: instances}, nil
}

// checkFragments is Phase 2.
//
// Id 255 is reported as a reserved value rather than as out of range:
// the reserved check runs first so the message explains why the value
// is forbidden.
func checkFragments(parsed schema) error {
	fragments := parsed.fragments
	owners := make(map[int64]string, len(fragments))
	for _, name := range parsed.names {
		definition, ok := document.Object(fragments[name])
		if !ok {
			return violation.NewInvalidType("fragment", name, "definition", "object", fragments[name])
		}

		rawID, ok := definition[fieldID]
		if !ok {
			return violation.NewMissingField("fragment", name, fieldID)
		}
		id, ok := document.Integer(rawID)
		if !ok {
			return violation.NewInvalidType("fragment", name, fieldID, "integer", rawID)
		}
		if id == ReservedFragmentID {
			return violation.NewReservedValue("fragment", name, fieldID, rawID, "0xFF means no fragment selected")
		}
		if id < 0 || id > MaxFragmentID {
			return violation.NewOutOfRange("fragment", name, fieldID, rawID, fmt.Sprintf("0-%d", MaxFragmentID))
		}
		if previous, taken := owners[id]; taken {
			return violation.NewDuplicateKey("fragment id", id,
				fmt.Sprintf("'%s'", previous), fmt.Sprintf("'%s'", name))
		}
		owners[id] = name

		if _, ok := definition[fieldKLE]; !ok {
			return violation.NewMissingField("fragment", name, fieldKLE)
		}
	}
	return nil
}

// checkInstances is Phase 3.
func checkInstances(instances []any) error {
	if len(instances) > MaxInstances {
		return violation.NewTooManyEntries("composition.instances", len(instances), MaxInstances)
	}

	positions := make(map[string]int, len(instances))
	for index, raw := range instances {
		position := fmt.Sprintf("position %d", index)
		instance, ok := document.Object(raw)
		if !ok {
			return violation.NewInvalidType("instance", position, "definition", "object", raw)
		}

		rawID, ok := instance[fieldID]
		if !ok {
			return violation.NewMissingField("instance", position, fieldID)
		}
		id, ok := document.String(rawID)
		if !ok {
			return violation.NewInvalidType("instance", position, fieldID, "string", rawID)
		}
		if first, taken := positions[id]; taken {
			return violation.NewDuplicateKey("instance id", id,
				fmt.Sprintf("position %d", first), position)
		}
		positions[id] = index

		_, hasFragment := instance[fieldFragment]
		_, hasOptions := instance[fieldOptions]
		if hasFragment == hasOptions {
			return violation.NewMutuallyExclusive("instance", id, fieldFragment, fieldOptions, hasFragment)
		}
	}
	return nil
}

// checkOptions is Phase 4.
func checkOptions(instances []any) error {
	for _, raw := range instances {
		instance := raw.(map[string]any)
		id := instance[fieldID].(string)

		rawOptions, ok := instance[fieldOptions]
		if !ok {
			continue
		}
		options, ok := document.Array(rawOptions)
		if !ok {
			return violation.NewInvalidType("instance", id, fieldOptions, "array", rawOptions)
		}
		if len(options) < MinOptions {
			return violation.NewTooFewEntries("instance", id, fieldOptions, len(options), MinOptions,
				"use fixed 'fragment' instead")
		}

		for optionIndex, rawOption := range options {
			context := optionContext(optionIndex)
			option, ok := document.Object(rawOption)
			if !ok {
				return violation.NewInvalidType("instance", id, context, "object", rawOption)
			}
			for _, required := range []string{fieldFragment, fieldPlacement, fieldMatrixMap} {
				if _, ok := option[required]; !ok {
					return violation.NewMissingField("instance", id, context+"."+required)
				}
			}
		}
	}
	return nil
}

// checkReferences is Phase 5.
func checkReferences(parsed schema) error {
	for _, raw := range parsed.instances {
		instance := raw.(map[string]any)
		id := instance[fieldID].(string)

		if rawName, ok := instance[fieldFragment]; ok {
			if err := resolveFragment(parsed.fragments, id, rawName, -1); err != nil {
				return err
			}
		}
		if rawOptions, ok := instance[fieldOptions]; ok {
			for optionIndex, rawOption := range rawOptions.([]any) {
				option := rawOption.(map[string]any)
				if err := resolveFragment(parsed.fragments, id, option[fieldFragment], optionIndex); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// resolveFragment checks that a fragment reference names a defined
// fragment. optionIndex is -1 for the direct form.
func resolveFragment(fragments map[string]any, id string, raw any, optionIndex int) error {
	field := fieldFragment
	referrer := ""
	if optionIndex >= 0 {
		field = optionContext(optionIndex) + "." + fieldFragment
		referrer = fmt.Sprintf("option %d", optionIndex)
	}
	name, ok := document.String(raw)
	if !ok {
		return violation.NewInvalidType("instance", id, field, "string", raw)
	}
	if _, ok := fragments[name]; !ok {
		return violation.NewDanglingReference("instance", id, "fragment", name, referrer)
	}
	return nil
}

// checkWiring is Phase 6. Key counts are computed for every fragment
// up front, including fragments no instance references, so a malformed
// layout is reported even when unused.
func checkWiring(parsed schema) (map[string]kle.KeyCount, error) {
	counts, err := countFragments(parsed)
	if err != nil {
		return nil, err
	}

	for _, raw := range parsed.instances {
		instance := raw.(map[string]any)
		id := instance[fieldID].(string)

		if err := checkEncoderOffset(id, instance, ""); err != nil {
			return nil, err
		}

		if rawName, ok := instance[fieldFragment]; ok {
			if _, ok := instance[fieldMatrixMap]; !ok {
				return nil, violation.NewMissingField("instance", id, fieldMatrixMap)
			}
			if _, ok := instance[fieldPlacement]; !ok {
				return nil, violation.NewMissingField("instance", id, fieldPlacement)
			}
			name := rawName.(string)
			if err := checkMatrixMap(id, name, instance[fieldMatrixMap], counts[name], ""); err != nil {
				return nil, err
			}
		}

		if rawOptions, ok := instance[fieldOptions]; ok {
			for optionIndex, rawOption := range rawOptions.([]any) {
				option := rawOption.(map[string]any)
				context := optionContext(optionIndex)
				if err := checkEncoderOffset(id, option, context); err != nil {
					return nil, err
				}
				name := option[fieldFragment].(string)
				if err := checkMatrixMap(id, name, option[fieldMatrixMap], counts[name], context); err != nil {
					return nil, err
				}
			}
		}
	}
	return counts, nil
}

// countFragments runs the layout counter over every fragment's kle.
func countFragments(parsed schema) (map[string]kle.KeyCount, error) {
	counts := make(map[string]kle.KeyCount, len(parsed.fragments))
	for _, name := range parsed.names {
		definition := parsed.fragments[name].(map[string]any)
		layout, ok := document.Array(definition[fieldKLE])
		if !ok {
			return nil, violation.NewInvalidType("fragment", name, fieldKLE, "array", definition[fieldKLE])
		}
		count, err := kle.Count(layout)
		if err != nil {
			return nil, fmt.Errorf("fragment '%s' kle: %w", name, err)
		}
		counts[name] = count
	}
	return counts, nil
}

func checkEncoderOffset(id string, record map[string]any, context string) error {
	raw, ok := record[fieldEncoderOffset]
	if !ok {
		return nil
	}
	field := fieldEncoderOffset
	if context != "" {
		field = context + "." + fieldEncoderOffset
	}
	offset, ok := document.Integer(raw)
	if !ok {
		return violation.NewInvalidType("instance", id, field, "non-negative integer", raw)
	}
	if offset < 0 {
		return violation.NewOutOfRange("instance", id, field, raw, "a non-negative integer")
	}
	return nil
}

// checkMatrixMap compares a matrix_map's length with the key count of
// the fragment it wires. Encoders are wired separately and do not
// occupy matrix_map entries.
func checkMatrixMap(id, fragmentName string, raw any, count kle.KeyCount, context string) error {
	field := fieldMatrixMap
	if context != "" {
		field = context + "." + fieldMatrixMap
	}
	matrixMap, ok := document.Array(raw)
	if !ok {
		return violation.NewInvalidType("instance", id, field, "array", raw)
	}
	if len(matrixMap) != count.Keys {
		return violation.NewLengthMismatch(id, fragmentName, count.Keys, len(matrixMap), context)
	}
	return nil
}

func optionContext(index int) string {
	return fmt.Sprintf("%s[%d]", fieldOptions, index)
}
