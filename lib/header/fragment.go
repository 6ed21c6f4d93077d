// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package header

import (
	"bytes"
	"fmt"
)

// InstanceCountMacro sizes the firmware's fragment selection table.
const InstanceCountMacro = "VIABLE_FRAGMENT_INSTANCE_COUNT"

// RenderFragmentConfig produces the header declaring how many fragment
// instances the definition composes. A definition without a fragment
// schema has zero.
func RenderFragmentConfig(instanceCount int) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(Banner + "\n\n")
	buffer.WriteString("#pragma once\n\n")
	fmt.Fprintf(&buffer, "#define %s %d\n", InstanceCountMacro, instanceCount)
	return buffer.Bytes()
}
