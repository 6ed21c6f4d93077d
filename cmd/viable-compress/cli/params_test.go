// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Codec    string        `flag:"codec" desc:"compression codec"`
		Verbose  bool          `flag:"verbose,v" desc:"enable verbose output"`
		Width    int           `flag:"bytes-per-line" desc:"bytes per line"`
		Debounce time.Duration `flag:"debounce" desc:"rebuild delay"`
		Preamble []string      `flag:"preamble" desc:"preamble lines"`
		Untagged string        // no flag tag — should be skipped
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	err := flagSet.Parse([]string{
		"--codec", "zstd",
		"-v",
		"--bytes-per-line", "8",
		"--debounce", "250ms",
		"--preamble", "a,b",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Codec != "zstd" {
		t.Errorf("Codec = %q, want zstd", p.Codec)
	}
	if !p.Verbose {
		t.Error("Verbose = false, want true")
	}
	if p.Width != 8 {
		t.Errorf("Width = %d, want 8", p.Width)
	}
	if p.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %v, want 250ms", p.Debounce)
	}
	if len(p.Preamble) != 2 || p.Preamble[0] != "a" || p.Preamble[1] != "b" {
		t.Errorf("Preamble = %v, want [a b]", p.Preamble)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Codec    string        `flag:"codec" default:"lzma"`
		Verify   bool          `flag:"verify" default:"true"`
		Width    int           `flag:"bytes-per-line" default:"16"`
		Debounce time.Duration `flag:"debounce" default:"100ms"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Codec != "lzma" || !p.Verify || p.Width != 16 || p.Debounce != 100*time.Millisecond {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestBindFlags_Embedded(t *testing.T) {
	type shared struct {
		Config string `flag:"config,c" desc:"config file"`
	}
	type params struct {
		shared
		JSONOutput
		Schema string `flag:"schema"`
	}

	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"-c", "viable.toml", "--json", "--schema", "s.json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Config != "viable.toml" || !p.OutputJSON || p.Schema != "s.json" {
		t.Errorf("embedded fields not bound: %+v", p)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	notPointer := struct{}{}
	if err := BindFlags(notPointer, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for non-pointer params")
	}

	type badDefault struct {
		Width int `flag:"width" default:"wide"`
	}
	err := BindFlags(&badDefault{}, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "--width") {
		t.Errorf("BindFlags with bad default = %v, want error naming --width", err)
	}

	type unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&unsupported{}, pflag.NewFlagSet("test", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for unsupported field type")
	}
}

func TestEmitJSON(t *testing.T) {
	var output bytes.Buffer

	disabled := JSONOutput{}
	done, err := disabled.EmitJSON(&output, map[string]int{"a": 1})
	if done || err != nil || output.Len() != 0 {
		t.Errorf("EmitJSON without --json = (%v, %v), wrote %q", done, err, output.String())
	}

	enabled := JSONOutput{OutputJSON: true}
	var empty []string
	done, err = enabled.EmitJSON(&output, empty)
	if !done || err != nil {
		t.Fatalf("EmitJSON = (%v, %v)", done, err)
	}
	if strings.TrimSpace(output.String()) != "[]" {
		t.Errorf("nil slice encoded as %q, want []", output.String())
	}
}
