// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/viable-kb/viable-compress/lib/document"
	"github.com/viable-kb/viable-compress/lib/violation"
)

// decode parses a JSON literal with UseNumber, matching how definition
// files are loaded.
func decode(t *testing.T, literal string) document.Document {
	t.Helper()
	decoder := json.NewDecoder(strings.NewReader(literal))
	decoder.UseNumber()
	var doc document.Document
	if err := decoder.Decode(&doc); err != nil {
		t.Fatalf("decoding fixture: %v\n%s", err, literal)
	}
	return doc
}

// twoKeyFragment is a fragment with one row of two ordinary keys.
const twoKeyFragment = `{"id": 0, "kle": [["0,0", "0,1"]]}`

// threeKeyFragment is a fragment with three ordinary keys and one encoder.
const threeKeyFragment = `{"id": 1, "kle": [["0,0", "0,1"], ["1,0", {"a": 7}, "e", "e"]]}`

// baseDocument returns a valid document with two fragments and one
// direct instance. Tests mutate the returned value.
func baseDocument(t *testing.T) document.Document {
	t.Helper()
	return decode(t, `{
		"name": "svalboard",
		"fragment_schema_version": 1,
		"fragments": {
			"finger": `+twoKeyFragment+`,
			"thumb": `+threeKeyFragment+`
		},
		"composition": {
			"instances": [
				{"id": "left_index", "fragment": "finger", "placement": {"x": 0, "y": 0}, "matrix_map": [[0, 0], [0, 1]]}
			]
		}
	}`)
}

func instances(doc document.Document) []any {
	return doc["composition"].(map[string]any)["instances"].([]any)
}

func setInstances(doc document.Document, list []any) {
	doc["composition"].(map[string]any)["instances"] = list
}

func fragments(doc document.Document) map[string]any {
	return doc["fragments"].(map[string]any)
}

func firstInstance(doc document.Document) map[string]any {
	return instances(doc)[0].(map[string]any)
}

func matrixMap(length int) []any {
	entries := make([]any, length)
	for i := range entries {
		entries[i] = []any{json.Number("0"), json.Number(fmt.Sprint(i))}
	}
	return entries
}

func option(fragmentName string, keys int) map[string]any {
	return map[string]any{
		"fragment":   fragmentName,
		"placement":  map[string]any{"x": json.Number("0")},
		"matrix_map": matrixMap(keys),
	}
}

func TestValidateAccepts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(document.Document)
	}{
		{
			name:   "base document",
			mutate: func(document.Document) {},
		},
		{
			name: "fragment options with differing key counts",
			mutate: func(doc document.Document) {
				setInstances(doc, []any{map[string]any{
					"id":               "left_thumb",
					"fragment_options": []any{option("finger", 2), option("thumb", 3)},
				}})
			},
		},
		{
			name: "encoder offsets present and zero",
			mutate: func(doc document.Document) {
				firstInstance(doc)["encoder_offset"] = json.Number("0")
				opt := option("thumb", 3)
				opt["encoder_offset"] = json.Number("4")
				list := append(instances(doc), map[string]any{
					"id":               "right_thumb",
					"fragment_options": []any{opt, option("finger", 2)},
				})
				setInstances(doc, list)
			},
		},
		{
			name: "exactly the maximum number of instances",
			mutate: func(doc document.Document) {
				var list []any
				for i := 0; i < MaxInstances; i++ {
					list = append(list, map[string]any{
						"id":         fmt.Sprintf("instance_%d", i),
						"fragment":   "finger",
						"placement":  map[string]any{},
						"matrix_map": matrixMap(2),
					})
				}
				setInstances(doc, list)
			},
		},
		{
			name: "empty composition",
			mutate: func(doc document.Document) {
				setInstances(doc, []any{})
			},
		},
		{
			name: "encoder_offset beyond int64",
			mutate: func(doc document.Document) {
				firstInstance(doc)["encoder_offset"] = json.Number("100000000000000000000")
			},
		},
		{
			name: "highest assignable id",
			mutate: func(doc document.Document) {
				fragments(doc)["finger"].(map[string]any)["id"] = json.Number("254")
			},
		},
		{
			name: "older schema version",
			mutate: func(doc document.Document) {
				doc["fragment_schema_version"] = json.Number("0")
			},
		},
		{
			name: "unreferenced fragment is still counted but accepted",
			mutate: func(doc document.Document) {
				fragments(doc)["spare"] = map[string]any{"id": json.Number("9"), "kle": []any{}}
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			doc := baseDocument(t)
			test.mutate(doc)
			if err := Validate(doc); err != nil {
				t.Fatalf("Validate rejected a valid document: %v", err)
			}
		})
	}
}

func TestValidateSkipsDocumentsWithoutSchema(t *testing.T) {
	t.Parallel()

	for _, literal := range []string{
		`{}`,
		`{"name": "plain", "layouts": {"keymap": [["a"]]}}`,
		// composition alone does not declare a schema.
		`{"composition": {"instances": "not even an array"}}`,
	} {
		if err := Validate(decode(t, literal)); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", literal, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(document.Document)
		kind     violation.Kind
		contains []string
	}{
		// Phase 1.
		{
			name:     "version missing with fragments present",
			mutate:   func(doc document.Document) { delete(doc, "fragment_schema_version") },
			kind:     violation.MissingField,
			contains: []string{"fragment_schema_version"},
		},
		{
			name:     "future version",
			mutate:   func(doc document.Document) { doc["fragment_schema_version"] = json.Number("2") },
			kind:     violation.UnsupportedVersion,
			contains: []string{"version 2", "max supported: 1"},
		},
		{
			name:     "fractional version",
			mutate:   func(doc document.Document) { doc["fragment_schema_version"] = json.Number("1.0") },
			kind:     violation.UnsupportedVersion,
			contains: []string{"1.0"},
		},
		{
			name:     "string version",
			mutate:   func(doc document.Document) { doc["fragment_schema_version"] = "1" },
			kind:     violation.UnsupportedVersion,
			contains: []string{`"1"`},
		},
		{
			name: "future version wins over every later problem",
			mutate: func(doc document.Document) {
				doc["fragment_schema_version"] = json.Number("7")
				doc["fragments"] = "broken"
				delete(doc, "composition")
			},
			kind: violation.UnsupportedVersion,
		},
		{
			name:     "fragments missing with version present",
			mutate:   func(doc document.Document) { delete(doc, "fragments") },
			kind:     violation.MissingField,
			contains: []string{"'fragments'"},
		},
		{
			name:     "fragments not an object",
			mutate:   func(doc document.Document) { doc["fragments"] = []any{} },
			kind:     violation.InvalidType,
			contains: []string{"fragments", "object"},
		},
		{
			name:     "composition missing",
			mutate:   func(doc document.Document) { delete(doc, "composition") },
			kind:     violation.MissingField,
			contains: []string{"composition"},
		},
		{
			name:     "instances missing",
			mutate:   func(doc document.Document) { doc["composition"] = map[string]any{} },
			kind:     violation.MissingField,
			contains: []string{"instances"},
		},
		{
			name:     "instances not an array",
			mutate:   func(doc document.Document) { doc["composition"].(map[string]any)["instances"] = map[string]any{} },
			kind:     violation.InvalidType,
			contains: []string{"instances", "array"},
		},

		// Phase 2.
		{
			name:     "fragment id missing",
			mutate:   func(doc document.Document) { delete(fragments(doc)["thumb"].(map[string]any), "id") },
			kind:     violation.MissingField,
			contains: []string{"Fragment 'thumb'", "'id'"},
		},
		{
			name:     "fragment id not an integer",
			mutate:   func(doc document.Document) { fragments(doc)["thumb"].(map[string]any)["id"] = "one" },
			kind:     violation.InvalidType,
			contains: []string{"Fragment 'thumb'"},
		},
		{
			name:     "fragment id negative",
			mutate:   func(doc document.Document) { fragments(doc)["thumb"].(map[string]any)["id"] = json.Number("-1") },
			kind:     violation.OutOfRange,
			contains: []string{"-1", "0-254"},
		},
		{
			name:     "fragment id reserved",
			mutate:   func(doc document.Document) { fragments(doc)["thumb"].(map[string]any)["id"] = json.Number("255") },
			kind:     violation.ReservedValueUsed,
			contains: []string{"Fragment 'thumb'", "reserved id 255"},
		},
		{
			name:     "fragment id above reserved",
			mutate:   func(doc document.Document) { fragments(doc)["thumb"].(map[string]any)["id"] = json.Number("256") },
			kind:     violation.OutOfRange,
			contains: []string{"256"},
		},
		{
			name: "fragment id beyond int64",
			mutate: func(doc document.Document) {
				fragments(doc)["thumb"].(map[string]any)["id"] = json.Number("100000000000000000000")
			},
			kind:     violation.OutOfRange,
			contains: []string{"Fragment 'thumb'", "100000000000000000000", "0-254"},
		},
		{
			name:     "duplicate fragment id names both fragments",
			mutate:   func(doc document.Document) { fragments(doc)["thumb"].(map[string]any)["id"] = json.Number("0") },
			kind:     violation.DuplicateKey,
			contains: []string{"Duplicate fragment id 0", "'finger'", "'thumb'"},
		},
		{
			name:     "kle missing",
			mutate:   func(doc document.Document) { delete(fragments(doc)["finger"].(map[string]any), "kle") },
			kind:     violation.MissingField,
			contains: []string{"Fragment 'finger'", "'kle'"},
		},
		{
			name:     "fragment not an object",
			mutate:   func(doc document.Document) { fragments(doc)["finger"] = json.Number("3") },
			kind:     violation.InvalidType,
			contains: []string{"Fragment 'finger'"},
		},

		// Phase 3.
		{
			name: "too many instances",
			mutate: func(doc document.Document) {
				template := firstInstance(doc)
				var list []any
				for i := 0; i < MaxInstances+1; i++ {
					list = append(list, template)
				}
				setInstances(doc, list)
			},
			kind:     violation.TooManyEntries,
			contains: []string{"22", "max 21"},
		},
		{
			name:     "instance id missing",
			mutate:   func(doc document.Document) { delete(firstInstance(doc), "id") },
			kind:     violation.MissingField,
			contains: []string{"position 0", "'id'"},
		},
		{
			name:     "instance id not a string",
			mutate:   func(doc document.Document) { firstInstance(doc)["id"] = json.Number("3") },
			kind:     violation.InvalidType,
			contains: []string{"position 0", "string"},
		},
		{
			name: "duplicate instance id reports both positions",
			mutate: func(doc document.Document) {
				other := option("finger", 2)
				other["id"] = "left_index"
				setInstances(doc, append(instances(doc), option("finger", 2), other))
				instances(doc)[1].(map[string]any)["id"] = "middle"
			},
			kind:     violation.DuplicateKey,
			contains: []string{`"left_index"`, "position 0", "position 2"},
		},
		{
			name: "both fragment and fragment_options",
			mutate: func(doc document.Document) {
				firstInstance(doc)["fragment_options"] = []any{option("finger", 2), option("thumb", 3)}
			},
			kind:     violation.MutuallyExclusive,
			contains: []string{"both"},
		},
		{
			name:     "neither fragment nor fragment_options",
			mutate:   func(doc document.Document) { delete(firstInstance(doc), "fragment") },
			kind:     violation.MutuallyExclusive,
			contains: []string{"either"},
		},
		{
			name:     "instance not an object",
			mutate:   func(doc document.Document) { setInstances(doc, []any{"left_index"}) },
			kind:     violation.InvalidType,
			contains: []string{"position 0"},
		},

		// Phase 4.
		{
			name: "options not an array",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				firstInstance(doc)["fragment_options"] = option("finger", 2)
			},
			kind:     violation.InvalidType,
			contains: []string{"fragment_options"},
		},
		{
			name: "single option",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				firstInstance(doc)["fragment_options"] = []any{option("finger", 2)}
			},
			kind:     violation.TooFewEntries,
			contains: []string{"only 1 entry", "use fixed 'fragment' instead"},
		},
		{
			name: "zero options",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				firstInstance(doc)["fragment_options"] = []any{}
			},
			kind:     violation.TooFewEntries,
			contains: []string{"only 0 entries"},
		},
		{
			name: "option not an object",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				firstInstance(doc)["fragment_options"] = []any{option("finger", 2), "thumb"}
			},
			kind:     violation.InvalidType,
			contains: []string{"fragment_options[1]"},
		},
		{
			name: "option missing placement",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				incomplete := option("thumb", 3)
				delete(incomplete, "placement")
				firstInstance(doc)["fragment_options"] = []any{option("finger", 2), incomplete}
			},
			kind:     violation.MissingField,
			contains: []string{"fragment_options[1].placement"},
		},
		{
			name: "option missing matrix_map",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				incomplete := option("thumb", 3)
				delete(incomplete, "matrix_map")
				firstInstance(doc)["fragment_options"] = []any{incomplete, option("finger", 2)}
			},
			kind:     violation.MissingField,
			contains: []string{"fragment_options[0].matrix_map"},
		},

		// Phase 5.
		{
			name:     "direct reference to undefined fragment",
			mutate:   func(doc document.Document) { firstInstance(doc)["fragment"] = "pinky" },
			kind:     violation.DanglingReference,
			contains: []string{"Fragment 'pinky' not found", "instance 'left_index'"},
		},
		{
			name: "option reference to undefined fragment",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				firstInstance(doc)["fragment_options"] = []any{option("finger", 2), option("pinky", 2)}
			},
			kind:     violation.DanglingReference,
			contains: []string{"'pinky'", "option 1"},
		},
		{
			name:     "fragment reference not a string",
			mutate:   func(doc document.Document) { firstInstance(doc)["fragment"] = json.Number("0") },
			kind:     violation.InvalidType,
			contains: []string{"'fragment'"},
		},

		// Phase 6.
		{
			name:     "matrix_map one short",
			mutate:   func(doc document.Document) { firstInstance(doc)["matrix_map"] = matrixMap(1) },
			kind:     violation.LengthMismatch,
			contains: []string{"with 2 keys", "has 1 entry"},
		},
		{
			name:     "matrix_map one long",
			mutate:   func(doc document.Document) { firstInstance(doc)["matrix_map"] = matrixMap(3) },
			kind:     violation.LengthMismatch,
			contains: []string{"with 2 keys", "has 3 entries"},
		},
		{
			name:     "matrix_map missing on direct form",
			mutate:   func(doc document.Document) { delete(firstInstance(doc), "matrix_map") },
			kind:     violation.MissingField,
			contains: []string{"'matrix_map'"},
		},
		{
			name:     "placement missing on direct form",
			mutate:   func(doc document.Document) { delete(firstInstance(doc), "placement") },
			kind:     violation.MissingField,
			contains: []string{"'placement'"},
		},
		{
			name: "matrix_map checked before placement",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "placement")
				delete(firstInstance(doc), "matrix_map")
			},
			kind:     violation.MissingField,
			contains: []string{"'matrix_map'"},
		},
		{
			name:     "matrix_map not an array",
			mutate:   func(doc document.Document) { firstInstance(doc)["matrix_map"] = "0,0 0,1" },
			kind:     violation.InvalidType,
			contains: []string{"matrix_map"},
		},
		{
			name: "option checked against its own fragment",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				// Three entries suit "thumb" but not "finger".
				firstInstance(doc)["fragment_options"] = []any{option("thumb", 3), option("finger", 3)}
			},
			kind:     violation.LengthMismatch,
			contains: []string{"fragment_options[1]", "'finger' with 2 keys", "has 3 entries"},
		},
		{
			name:     "negative encoder_offset",
			mutate:   func(doc document.Document) { firstInstance(doc)["encoder_offset"] = json.Number("-2") },
			kind:     violation.OutOfRange,
			contains: []string{"encoder_offset", "-2"},
		},
		{
			name: "encoder_offset below int64",
			mutate: func(doc document.Document) {
				firstInstance(doc)["encoder_offset"] = json.Number("-100000000000000000000")
			},
			kind:     violation.OutOfRange,
			contains: []string{"encoder_offset", "-100000000000000000000"},
		},
		{
			name:     "fractional encoder_offset",
			mutate:   func(doc document.Document) { firstInstance(doc)["encoder_offset"] = json.Number("1.5") },
			kind:     violation.InvalidType,
			contains: []string{"encoder_offset"},
		},
		{
			name: "option encoder_offset",
			mutate: func(doc document.Document) {
				delete(firstInstance(doc), "fragment")
				bad := option("thumb", 3)
				bad["encoder_offset"] = "first"
				firstInstance(doc)["fragment_options"] = []any{option("finger", 2), bad}
			},
			kind:     violation.InvalidType,
			contains: []string{"fragment_options[1].encoder_offset"},
		},
		{
			name:     "kle not an array",
			mutate:   func(doc document.Document) { fragments(doc)["thumb"].(map[string]any)["kle"] = "rows" },
			kind:     violation.InvalidType,
			contains: []string{"Fragment 'thumb'", "kle"},
		},
		{
			name: "unknown alignment in an unreferenced fragment",
			mutate: func(doc document.Document) {
				fragments(doc)["spare"] = map[string]any{
					"id":  json.Number("9"),
					"kle": []any{[]any{map[string]any{"a": json.Number("8")}, "k"}},
				}
			},
			kind:     violation.OutOfRange,
			contains: []string{"fragment 'spare'", "alignment 8", "0-7"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			doc := baseDocument(t)
			test.mutate(doc)

			err := Validate(doc)
			if err == nil {
				t.Fatal("Validate accepted an invalid document")
			}
			found, ok := violation.As(err)
			if !ok {
				t.Fatalf("error %q carries no violation", err)
			}
			if found.Kind != test.kind {
				t.Errorf("kind = %s, want %s (error: %v)", found.Kind, test.kind, err)
			}
			for _, substring := range test.contains {
				if !strings.Contains(err.Error(), substring) {
					t.Errorf("error %q does not contain %q", err, substring)
				}
			}
		})
	}
}

func TestValidateEndToEnd(t *testing.T) {
	t.Parallel()

	accepted := decode(t, `{
		"fragment_schema_version": 1,
		"fragments": {"unit": {"id": 0, "kle": [["a", "b"]]}},
		"composition": {"instances": [
			{"id": "only", "fragment": "unit", "placement": {"x": 0, "y": 0}, "matrix_map": [[0, 0], [0, 1]]}
		]}
	}`)
	if err := Validate(accepted); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	rejected := decode(t, `{
		"fragment_schema_version": 1,
		"fragments": {"unit": {"id": 0, "kle": [["a", "b"]]}},
		"composition": {"instances": [
			{"id": "only", "fragment": "unit", "placement": {"x": 0, "y": 0}, "matrix_map": [[0, 0]]}
		]}
	}`)
	err := Validate(rejected)
	found, ok := violation.As(err)
	if !ok {
		t.Fatalf("Validate = %v, want a violation", err)
	}
	if found.Kind != violation.LengthMismatch || found.Expected != 2 || found.Actual != 1 {
		t.Errorf("violation = %+v, want LengthMismatch expected=2 actual=1", found)
	}
}

func TestValidateDoesNotModifyDocument(t *testing.T) {
	t.Parallel()

	doc := baseDocument(t)
	before, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(doc); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	after, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("document changed during validation:\nbefore %s\nafter  %s", before, after)
	}
}

func TestValidateDuplicateIDOrderIsStable(t *testing.T) {
	t.Parallel()

	// Without a document order, names are visited lexically, so "alpha"
	// is always the first owner.
	for i := 0; i < 20; i++ {
		doc := decode(t, `{
			"fragment_schema_version": 1,
			"fragments": {
				"zeta": {"id": 4, "kle": []},
				"alpha": {"id": 4, "kle": []},
				"mid": {"id": 4, "kle": []}
			},
			"composition": {"instances": []}
		}`)
		found, ok := violation.As(Validate(doc))
		if !ok {
			t.Fatal("expected a violation")
		}
		if found.First != "'alpha'" || found.Second != "'mid'" {
			t.Fatalf("duplicate reported as %s/%s, want 'alpha'/'mid'", found.First, found.Second)
		}
	}
}

func TestValidatorFragmentOrder(t *testing.T) {
	t.Parallel()

	const duplicates = `{
		"fragment_schema_version": 1,
		"fragments": {
			"zeta": {"id": 4, "kle": []},
			"alpha": {"id": 4, "kle": []},
			"mid": {"id": 4, "kle": []}
		},
		"composition": {"instances": []}
	}`
	const twoBroken = `{
		"fragment_schema_version": 1,
		"fragments": {
			"zeta": {"id": 1},
			"alpha": {"id": 300, "kle": []}
		},
		"composition": {"instances": []}
	}`

	tests := []struct {
		name      string
		literal   string
		order     []string
		kind      violation.Kind
		wantFirst string
		wantIdent string
	}{
		{
			name:      "document order names the earlier owner first",
			literal:   duplicates,
			order:     []string{"zeta", "alpha", "mid"},
			kind:      violation.DuplicateKey,
			wantFirst: "'zeta'",
		},
		{
			name:      "omitted names follow in name order",
			literal:   duplicates,
			order:     []string{"mid"},
			kind:      violation.DuplicateKey,
			wantFirst: "'mid'",
		},
		{
			name:      "unknown names are ignored",
			literal:   duplicates,
			order:     []string{"ghost", "zeta", "zeta"},
			kind:      violation.DuplicateKey,
			wantFirst: "'zeta'",
		},
		{
			name:      "first violation follows document order",
			literal:   twoBroken,
			order:     []string{"zeta", "alpha"},
			kind:      violation.MissingField,
			wantIdent: "zeta",
		},
		{
			name:      "zero value uses name order",
			literal:   twoBroken,
			kind:      violation.OutOfRange,
			wantIdent: "alpha",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			validator := Validator{FragmentOrder: test.order}
			found, ok := violation.As(validator.Validate(decode(t, test.literal)))
			if !ok {
				t.Fatal("expected a violation")
			}
			if found.Kind != test.kind {
				t.Fatalf("kind = %s, want %s (%v)", found.Kind, test.kind, found)
			}
			if test.wantFirst != "" && found.First != test.wantFirst {
				t.Errorf("first owner = %s, want %s", found.First, test.wantFirst)
			}
			if test.wantIdent != "" && found.Identifier != test.wantIdent {
				t.Errorf("identifier = %s, want %s", found.Identifier, test.wantIdent)
			}
		})
	}
}
