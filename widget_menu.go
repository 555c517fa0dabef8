// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/artgc/gc"
)

var menuPages = []string{PageGallery, PageLog}

// MenuWidget is the bottom bar: page buttons, a collect button and the
// memory held against each budget.
type MenuWidget struct {
	Root *tview.Flex

	activePage  string
	pageButtons map[string]*tview.Button
	budgetView  *tview.TextView

	buttonStyle tcell.Style

	// external references
	ui *Ui
}

func (ui *Ui) createMenuWidget() *MenuWidget {
	m := &MenuWidget{
		activePage:  PageGallery,
		pageButtons: make(map[string]*tview.Button),
		buttonStyle: tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite),
		ui:          ui,
	}

	m.Root = tview.NewFlex().SetDirection(tview.FlexColumn)
	// clear background
	m.Root.Box = tview.NewBox()

	for _, page := range menuPages {
		page := page
		button := m.newButton("", func() { ui.ShowPage(page) })
		m.pageButtons[page] = button
		m.Root.AddItem(button, 12, 0, false)
	}
	m.Root.AddItem(m.newButton("c: collect", func() { ui.collect("menu") }), 12, 0, false)

	m.budgetView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight).
		SetScrollable(false)
	m.Root.AddItem(m.budgetView, 0, 1, false).
		AddItem(nil, 1, 0, false).
		AddItem(m.newButton("?: help", ui.ShowHelp), 9, 0, false).
		AddItem(m.newButton("Q: quit", ui.Quit), 9, 0, false)

	m.updatePageButtons()
	m.SetStats(ui.collector.Stats(), ui.collector.Config())
	return m
}

func (m *MenuWidget) newButton(label string, selected func()) *tview.Button {
	return tview.NewButton(label).
		SetStyle(m.buttonStyle).
		// buttons keep no highlight after being used by key
		SetActivatedStyle(m.buttonStyle).
		SetSelectedFunc(selected)
}

func (m *MenuWidget) updatePageButtons() {
	for i, page := range menuPages {
		text := fmt.Sprintf("%d: %s", i+1, page)
		if page == m.activePage {
			text = fmt.Sprintf("%d: [::b]%s[::-]", i+1, page)
		}
		m.pageButtons[page].SetLabel(text)
	}
}

// SetStats shows how much memory each budget currently holds.
func (m *MenuWidget) SetStats(stats gc.Stats, config gc.Config) {
	m.budgetView.SetText(formatBudgetUsage(stats, config))
}

func (m *MenuWidget) SetActivePage(name string) {
	if _, ok := m.pageButtons[name]; !ok {
		return // invalid page name
	}
	m.activePage = name
	m.updatePageButtons()
}

func (m *MenuWidget) GetActivePage() string {
	return m.activePage
}
