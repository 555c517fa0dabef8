// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// logMaxLines caps the log list
const logMaxLines = 200

type LogPage struct {
	Root *tview.Flex

	logList  *tview.List
	bindings []keyBinding

	// external refs
	ui *Ui
}

func (ui *Ui) createLogPage() *LogPage {
	logPage := LogPage{
		ui: ui,
	}

	logPage.logList = tview.NewList().ShowSecondaryText(false)
	logPage.bindings = []keyBinding{
		{key: 'x', help: "clear the log", action: func() { logPage.logList.Clear() }},
	}
	logPage.logList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		return dispatchKey(logPage.bindings, event)
	})

	logPage.Root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(logPage.logList, 0, 1, true)

	return &logPage
}

func (l *LogPage) Print(line string) {
	l.ui.app.QueueUpdateDraw(func() {
		line := time.Now().Local().Format("(15:04:05) ") + tview.Escape(line)
		l.logList.InsertItem(0, line, "", 0, nil)

		// Make sure the log list doesn't grow infinitely
		for l.logList.GetItemCount() > logMaxLines {
			l.logList.RemoveItem(-1)
		}
	})
}
