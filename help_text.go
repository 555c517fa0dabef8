// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// formatBindings renders a help section from a key table.
func formatBindings(title string, bindings []keyBinding) string {
	if len(bindings) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[::b]%s[::-]\n", title)
	for _, b := range bindings {
		fmt.Fprintf(&sb, "%-6s %s\n", tview.Escape(b.name()), tview.Escape(b.help))
	}
	return sb.String()
}
