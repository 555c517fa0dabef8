// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"strings"

	"github.com/rivo/tview"
)

// HelpWidget lists the global shortcuts and those of the active page,
// rendered from the same tables the input handlers dispatch on.
type HelpWidget struct {
	Root *tview.TextView

	// visible reflects whether the modal is shown
	visible bool

	// external references
	ui *Ui
}

func (ui *Ui) createHelpWidget() *HelpWidget {
	h := &HelpWidget{ui: ui}
	h.Root = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	h.Root.SetBorder(true).SetTitle(" Help (ESC closes) ")
	return h
}

func (h *HelpWidget) RenderHelp(page string) {
	sections := []string{formatBindings("Collector", h.ui.bindings)}
	if page != "" {
		title := strings.ToUpper(page[:1]) + page[1:]
		if text := formatBindings(title, h.ui.pageBindings(page)); text != "" {
			sections = append(sections, text)
		}
	}
	h.Root.SetText(strings.Join(sections, "\n")).ScrollToBeginning()
}
