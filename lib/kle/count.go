// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package kle

import (
	"fmt"
	"strings"

	"github.com/viable-kb/viable-compress/lib/document"
	"github.com/viable-kb/viable-compress/lib/violation"
)

// LabelSlots is the number of label positions on a key face.
const LabelSlots = 12

// DefaultAlignment is the alignment in effect before any properties
// descriptor sets "a" (centered front legends).
const DefaultAlignment = 4

// encoderSlot is the canonical slot whose label "e" marks an encoder key.
const encoderSlot = 4

// encoderLabel marks one rotation direction of a rotary encoder.
const encoderLabel = "e"

// labelMap maps the raw position of each newline-separated label to its
// canonical slot, indexed by alignment code. -1 drops the label: the
// layout editor never renders text there for that alignment.
var labelMap = [8][LabelSlots]int{
	{0, 6, 2, 8, 9, 11, 3, 5, 1, 4, 7, 10},
	{1, 7, -1, -1, 9, 11, 4, -1, -1, -1, -1, 10},
	{3, -1, 5, -1, 9, 11, -1, -1, 4, -1, -1, 10},
	{4, -1, -1, -1, 9, 11, -1, -1, -1, -1, -1, 10},
	{0, 6, 2, 8, 10, -1, 3, 5, 1, 4, 7, -1},
	{1, 7, -1, -1, 10, -1, 4, -1, -1, -1, -1, -1},
	{3, -1, 5, -1, 10, -1, -1, -1, 4, -1, -1, -1},
	{4, -1, -1, -1, 10, -1, -1, -1, -1, -1, -1, -1},
}

// KeyCount is the number of ordinary keys and rotary encoders a layout
// defines.
type KeyCount struct {
	Keys     int `json:"keys"`
	Encoders int `json:"encoders"`
}

// ValidAlignment reports whether align indexes the label map.
func ValidAlignment(align int64) bool {
	return align >= 0 && align < int64(len(labelMap))
}

// Labels reorders the newline-separated labels of a key descriptor into
// canonical slots for the given alignment. Labels past the twelfth and
// empty labels are dropped, as are positions the alignment does not
// render.
func Labels(descriptor string, align int) ([LabelSlots]string, error) {
	var canonical [LabelSlots]string
	if !ValidAlignment(int64(align)) {
		return canonical, fmt.Errorf("alignment %d outside 0-%d", align, len(labelMap)-1)
	}
	for position, label := range strings.Split(descriptor, "\n") {
		if position >= LabelSlots {
			break
		}
		slot := labelMap[align][position]
		if slot == -1 || label == "" {
			continue
		}
		canonical[slot] = label
	}
	return canonical, nil
}

// IsEncoder reports whether a key descriptor under the given alignment
// is one half of an encoder pair.
func IsEncoder(descriptor string, align int) (bool, error) {
	labels, err := Labels(descriptor, align)
	if err != nil {
		return false, err
	}
	return labels[encoderSlot] == encoderLabel, nil
}

// tally is the fold state threaded through rows. Alignment carries over
// from one row to the next.
type tally struct {
	align       int
	keys        int
	encoderKeys int
}

// Count derives the key and encoder counts of a layout. The layout is a
// sequence of rows; each row is a sequence of key descriptors (strings)
// and properties descriptors (objects). Entries that are not rows, such
// as the leading keyboard metadata object, are skipped.
//
// Encoders are authored as two adjacent keys (clockwise and
// counter-clockwise), so the encoder count is half the number of
// encoder keys, truncated.
//
// An alignment that is not an integer or falls outside the label map is
// rejected at the properties descriptor that sets it.
func Count(layout []any) (KeyCount, error) {
	state := tally{align: DefaultAlignment}
	for rowIndex, entry := range layout {
		row, ok := document.Array(entry)
		if !ok {
			continue
		}
		var err error
		state, err = countRow(state, rowIndex, row)
		if err != nil {
			return KeyCount{}, err
		}
	}
	return KeyCount{Keys: state.keys, Encoders: state.encoderKeys / 2}, nil
}

func countRow(state tally, rowIndex int, row []any) (tally, error) {
	for itemIndex, item := range row {
		switch typed := item.(type) {
		case string:
			encoder, err := IsEncoder(typed, state.align)
			if err != nil {
				return state, err
			}
			if encoder {
				state.encoderKeys++
			} else {
				state.keys++
			}
		case map[string]any:
			raw, present := typed["a"]
			if !present {
				continue
			}
			align, err := alignment(raw, rowIndex, itemIndex)
			if err != nil {
				return state, err
			}
			state.align = align
		}
	}
	return state, nil
}

func alignment(raw any, rowIndex, itemIndex int) (int, error) {
	where := fmt.Sprintf("row %d item %d", rowIndex, itemIndex)
	value, ok := document.Integer(raw)
	if !ok {
		return 0, violation.NewInvalidType("layout", where, "a", "integer", raw)
	}
	if !ValidAlignment(value) {
		return 0, violation.NewOutOfRange("layout", where, "alignment", raw,
			fmt.Sprintf("0-%d", len(labelMap)-1))
	}
	return int(value), nil
}
