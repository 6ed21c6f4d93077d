// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package fragment

import (
	"sort"

	"github.com/viable-kb/viable-compress/lib/document"
	"github.com/viable-kb/viable-compress/lib/kle"
)

// Report summarizes an accepted fragment schema.
type Report struct {
	// Present is false when the document declares no fragment schema.
	// All other fields are then zero.
	Present bool `json:"present"`

	Version   int64             `json:"version,omitempty"`
	Fragments []FragmentSummary `json:"fragments,omitempty"`
	Instances []InstanceSummary `json:"instances,omitempty"`
}

// FragmentSummary describes one fragment definition.
type FragmentSummary struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
	kle.KeyCount
}

// InstanceSummary describes one composition instance.
type InstanceSummary struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	// Fragments lists the referenced fragment names: one for the
	// direct form, one per alternative for fragment_options.
	Fragments []string `json:"fragments"`
	// Selectable is true for fragment_options instances.
	Selectable bool `json:"selectable"`
}

// InstanceCount is the number of composition instances, the value the
// firmware's fragment selection table is sized from.
func (r *Report) InstanceCount() int {
	return len(r.Instances)
}

// Analyze validates doc and, when it is accepted, summarizes its
// fragments (ordered by id) and instances (in composition order).
func Analyze(doc document.Document) (*Report, error) {
	return Validator{}.Analyze(doc)
}

// Analyze is [Analyze] visiting fragments in v.FragmentOrder.
func (v Validator) Analyze(doc document.Document) (*Report, error) {
	counts, err := v.validate(doc)
	if err != nil {
		return nil, err
	}
	if !InUse(doc) {
		return &Report{}, nil
	}

	// validate succeeded, so every shape below is known.
	version, _ := document.Integer(doc[fieldVersion])
	report := &Report{Present: true, Version: version}

	fragments := doc[fieldFragments].(map[string]any)
	for name, raw := range fragments {
		id, _ := document.Integer(raw.(map[string]any)[fieldID])
		report.Fragments = append(report.Fragments, FragmentSummary{
			Name:     name,
			ID:       id,
			KeyCount: counts[name],
		})
	}
	sort.Slice(report.Fragments, func(i, j int) bool {
		return report.Fragments[i].ID < report.Fragments[j].ID
	})

	instances := doc[fieldComposition].(map[string]any)[fieldInstances].([]any)
	for position, raw := range instances {
		instance := raw.(map[string]any)
		summary := InstanceSummary{
			ID:       instance[fieldID].(string),
			Position: position,
		}
		if name, ok := instance[fieldFragment]; ok {
			summary.Fragments = []string{name.(string)}
		} else {
			summary.Selectable = true
			for _, option := range instance[fieldOptions].([]any) {
				summary.Fragments = append(summary.Fragments, option.(map[string]any)[fieldFragment].(string))
			}
		}
		report.Instances = append(report.Instances, summary)
	}

	return report, nil
}
