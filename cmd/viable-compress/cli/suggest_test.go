// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition (counted as 2 edits)
		{"kitten", "sitting", 3},
		{"validate", "valdiate", 2},
		{"inspect", "inspet", 1},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			got := levenshtein(test.a, test.b)
			if got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if reverse := levenshtein(test.b, test.a); reverse != got {
				t.Errorf("levenshtein(%q, %q) = %d, but reverse = %d", test.a, test.b, got, reverse)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "validate"},
		{Name: "inspect"},
		{Name: "check"},
		{Name: "watch"},
		{Name: "version"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"valdate", "validate"},
		{"insepct", "inspect"},
		{"chek", "check"},
		{"wach", "watch"},
		{"verison", "version"},
		{"completely-different", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.String("codec", "", "")
	flagSet.BoolP("verbose", "v", false, "")
	flagSet.String("fragment-header", "", "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--codex", "zstd"}, "--codec"},
		{[]string{"--verbos"}, "--verbose"},
		{[]string{"in.json", "--fragment-headr=x.h"}, "--fragment-header"},
		{[]string{"-v", "--codek"}, "--codec"},
		{[]string{"--zzzzzzzzzz"}, ""},
		{[]string{"in.json", "out.h"}, ""},
	}
	for _, test := range tests {
		if got := suggestFlag(test.args, flagSet); got != test.want {
			t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}
