// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package violation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the class of a schema violation. Kinds are stable
// strings so that tooling consuming --json output can match on them.
type Kind string

const (
	// MissingField indicates a required field is absent.
	MissingField Kind = "missing-field"
	// InvalidType indicates a field holds a value of the wrong shape.
	InvalidType Kind = "invalid-type"
	// UnsupportedVersion indicates fragment_schema_version is not an
	// integer or is newer than this tool understands.
	UnsupportedVersion Kind = "unsupported-version"
	// OutOfRange indicates a numeric value outside its allowed range.
	OutOfRange Kind = "out-of-range"
	// ReservedValueUsed indicates a value that is reserved by the
	// firmware (fragment id 255 is the "no fragment" sentinel).
	ReservedValueUsed Kind = "reserved-value"
	// DuplicateKey indicates two records share a key that must be unique.
	DuplicateKey Kind = "duplicate-key"
	// MutuallyExclusive indicates that exactly one of two fields must be
	// present and either both or neither were.
	MutuallyExclusive Kind = "mutually-exclusive"
	// TooManyEntries indicates a collection exceeds its maximum size.
	TooManyEntries Kind = "too-many-entries"
	// TooFewEntries indicates a collection is below its minimum size.
	TooFewEntries Kind = "too-few-entries"
	// DanglingReference indicates a reference to an undefined name.
	DanglingReference Kind = "dangling-reference"
	// LengthMismatch indicates a sequence whose length disagrees with
	// the count derived from the referenced record.
	LengthMismatch Kind = "length-mismatch"
)

// Violation describes the first inconsistency found in a document.
// Record and Identifier locate the offending record ("fragment" and its
// name, "instance" and its id, "layout" and a row/item position);
// Field names the offending field. The remaining fields are populated
// only for the kinds that use them.
type Violation struct {
	Kind       Kind   `json:"kind"`
	Record     string `json:"record,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`

	// Value is the offending value rendered for display.
	Value string `json:"value,omitempty"`
	// Allowed describes the permitted range or shape.
	Allowed string `json:"allowed,omitempty"`
	// First and Second are the two conflicting locations for
	// DuplicateKey, or the two exclusive fields for MutuallyExclusive.
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
	// Expected and Actual are the counts compared by LengthMismatch,
	// TooManyEntries, and TooFewEntries. Both are always emitted: a
	// count of zero is meaningful (an empty matrix_map, a fragment with
	// only encoders).
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
	// Context narrows the location, e.g. "fragment_options[1]".
	Context string `json:"context,omitempty"`
}

// Error returns the human-readable message.
func (v *Violation) Error() string {
	if v == nil {
		return "violation <nil>"
	}
	return v.Message
}

// As extracts the Violation carried by err, looking through wrapping.
func As(err error) (*Violation, bool) {
	var target *Violation
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// IsKind reports whether err carries a Violation of the given kind.
func IsKind(err error, kind Kind) bool {
	found, ok := As(err)
	return ok && found.Kind == kind
}

// location renders "<record> '<identifier>'" or just the record when
// the identifier is empty.
func location(record, identifier string) string {
	if identifier == "" {
		return record
	}
	return fmt.Sprintf("%s '%s'", record, identifier)
}

// NewMissingField reports an absent required field.
func NewMissingField(record, identifier, field string) *Violation {
	return &Violation{
		Kind:       MissingField,
		Record:     record,
		Identifier: identifier,
		Field:      field,
		Message:    fmt.Sprintf("%s is missing required '%s' field", capitalize(location(record, identifier)), field),
	}
}

// NewInvalidType reports a field whose value has the wrong shape.
func NewInvalidType(record, identifier, field, expected string, value any) *Violation {
	return &Violation{
		Kind:       InvalidType,
		Record:     record,
		Identifier: identifier,
		Field:      field,
		Value:      Render(value),
		Allowed:    expected,
		Message: fmt.Sprintf("%s has invalid '%s': %s (must be %s)",
			capitalize(location(record, identifier)), field, Render(value), article(expected)),
	}
}

// NewUnsupportedVersion reports a schema version this tool cannot read.
func NewUnsupportedVersion(found any, maxSupported int) *Violation {
	return &Violation{
		Kind:     UnsupportedVersion,
		Record:   "document",
		Field:    "fragment_schema_version",
		Value:    Render(found),
		Expected: maxSupported,
		Message:  fmt.Sprintf("Unsupported fragment schema version %s (max supported: %d)", Render(found), maxSupported),
	}
}

// NewOutOfRange reports a numeric value outside its permitted range.
func NewOutOfRange(record, identifier, field string, value any, allowed string) *Violation {
	return &Violation{
		Kind:       OutOfRange,
		Record:     record,
		Identifier: identifier,
		Field:      field,
		Value:      Render(value),
		Allowed:    allowed,
		Message: fmt.Sprintf("%s has invalid %s %s (must be %s)",
			capitalize(location(record, identifier)), field, Render(value), allowed),
	}
}

// NewReservedValue reports use of a value the firmware reserves.
func NewReservedValue(record, identifier, field string, value any, meaning string) *Violation {
	return &Violation{
		Kind:       ReservedValueUsed,
		Record:     record,
		Identifier: identifier,
		Field:      field,
		Value:      Render(value),
		Message: fmt.Sprintf("%s uses reserved %s %s (%s)",
			capitalize(location(record, identifier)), field, Render(value), meaning),
	}
}

// NewDuplicateKey reports two records sharing a key. first and second
// describe where the key was seen, in encounter order.
func NewDuplicateKey(keyKind string, key any, first, second string) *Violation {
	return &Violation{
		Kind:    DuplicateKey,
		Field:   keyKind,
		Value:   Render(key),
		First:   first,
		Second:  second,
		Message: fmt.Sprintf("Duplicate %s %s (used by %s and %s)", keyKind, Render(key), first, second),
	}
}

// NewMutuallyExclusive reports an instance that sets both or neither of
// two exclusive fields.
func NewMutuallyExclusive(record, identifier, fieldA, fieldB string, both bool) *Violation {
	var message string
	if both {
		message = fmt.Sprintf("%s has both '%s' and '%s'; use only one",
			capitalize(location(record, identifier)), fieldA, fieldB)
	} else {
		message = fmt.Sprintf("%s must have either '%s' or '%s'",
			capitalize(location(record, identifier)), fieldA, fieldB)
	}
	return &Violation{
		Kind:       MutuallyExclusive,
		Record:     record,
		Identifier: identifier,
		First:      fieldA,
		Second:     fieldB,
		Message:    message,
	}
}

// NewTooManyEntries reports a collection larger than its maximum.
func NewTooManyEntries(collection string, count, maxAllowed int) *Violation {
	return &Violation{
		Kind:     TooManyEntries,
		Field:    collection,
		Expected: maxAllowed,
		Actual:   count,
		Message:  fmt.Sprintf("Too many entries in %s: %d (max %d)", collection, count, maxAllowed),
	}
}

// NewTooFewEntries reports a collection smaller than its minimum. The
// record and identifier locate the owner of the collection.
func NewTooFewEntries(record, identifier, collection string, count, minRequired int, hint string) *Violation {
	message := fmt.Sprintf("%s has %s with only %d %s (min %d)",
		capitalize(location(record, identifier)), collection, count, plural(count, "entry", "entries"), minRequired)
	if hint != "" {
		message += "; " + hint
	}
	return &Violation{
		Kind:       TooFewEntries,
		Record:     record,
		Identifier: identifier,
		Field:      collection,
		Expected:   minRequired,
		Actual:     count,
		Message:    message,
	}
}

// NewDanglingReference reports a reference to an undefined record.
// context is optional and narrows the referrer (e.g. "option 1").
func NewDanglingReference(referrerRecord, referrer, referencedKind, name, context string) *Violation {
	suffix := ""
	if context != "" {
		suffix = " " + context
	}
	return &Violation{
		Kind:       DanglingReference,
		Record:     referrerRecord,
		Identifier: referrer,
		Field:      referencedKind,
		Value:      name,
		Context:    context,
		Message: fmt.Sprintf("%s not found (referenced by %s%s)",
			capitalize(location(referencedKind, name)), location(referrerRecord, referrer), suffix),
	}
}

// NewLengthMismatch reports a matrix_map whose length disagrees with
// the key count of the fragment it wires.
func NewLengthMismatch(instance, fragmentName string, expected, actual int, context string) *Violation {
	where := location("instance", instance)
	if context != "" {
		where += " " + context
	}
	return &Violation{
		Kind:       LengthMismatch,
		Record:     "instance",
		Identifier: instance,
		Field:      "matrix_map",
		Value:      fragmentName,
		Expected:   expected,
		Actual:     actual,
		Context:    context,
		Message: fmt.Sprintf("%s references fragment '%s' with %d %s but matrix_map has %d %s",
			capitalize(where), fragmentName,
			expected, plural(expected, "key", "keys"),
			actual, plural(actual, "entry", "entries")),
	}
}

// Render formats a decoded document value for inclusion in a message.
func Render(value any) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", typed)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func article(noun string) string {
	switch {
	case noun == "":
		return noun
	case strings.ContainsAny(noun[:1], "aeiou"):
		return "an " + noun
	default:
		return "a " + noun
	}
}

func plural(count int, singular, pluralForm string) string {
	if count == 1 {
		return singular
	}
	return pluralForm
}
