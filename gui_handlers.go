// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/spezifisch/artgc/gc"
)

// keyBinding is a shortcut together with its help line. Bindings with a
// zero key are documentation only (e.g. ENTER handled by a list).
type keyBinding struct {
	key    rune
	label  string
	help   string
	action func()
}

func (b keyBinding) name() string {
	if b.label != "" {
		return b.label
	}
	return string(b.key)
}

// dispatchKey runs the binding matching event and consumes the event.
func dispatchKey(bindings []keyBinding, event *tcell.EventKey) *tcell.EventKey {
	if event.Key() != tcell.KeyRune {
		return event
	}
	for _, b := range bindings {
		if b.key != 0 && b.key == event.Rune() && b.action != nil {
			b.action()
			return nil
		}
	}
	return event
}

func (ui *Ui) globalBindings() []keyBinding {
	return []keyBinding{
		{key: '1', help: "gallery page", action: func() { ui.ShowPage(PageGallery) }},
		{key: '2', help: "log page", action: func() { ui.ShowPage(PageLog) }},
		{key: 'c', help: "run a collection pass", action: func() { ui.collect("key") }},
		{key: 's', help: "print collector stats to the log", action: func() { ui.collector.Stats().Print(ui.logger) }},
		{key: '?', help: "show this help", action: ui.ShowHelp},
		{key: 'Q', help: "quit", action: ui.Quit},
	}
}

// pageBindings returns the shortcuts of the named page.
func (ui *Ui) pageBindings(name string) []keyBinding {
	switch name {
	case PageGallery:
		return ui.galleryPage.bindings
	case PageLog:
		return ui.logPage.bindings
	}
	return nil
}

func (ui *Ui) handlePageInput(event *tcell.EventKey) *tcell.EventKey {
	if ui.helpWidget.visible {
		return event
	}
	return dispatchKey(ui.bindings, event)
}

// ShowPage switches pages and collects, so art of the hidden page only
// survives through the cache.
func (ui *Ui) ShowPage(name string) {
	ui.pages.SwitchToPage(name)
	ui.menuWidget.SetActivePage(name)
	_, prim := ui.pages.GetFrontPage()
	ui.app.SetFocus(prim)
	ui.collect("page")
}

func (ui *Ui) Quit() {
	if ui.collectorService != nil {
		ui.collectorService.Close()
	}
	ui.app.Stop()
}

// queuedControl runs collector calls from other goroutines on the gui
// goroutine, where the scene can be walked safely.
type queuedControl struct {
	ui *Ui
}

func (q queuedControl) Collect() gc.Report {
	done := make(chan gc.Report, 1)
	q.ui.app.QueueUpdateDraw(func() {
		done <- q.ui.collect("dbus")
	})
	return <-done
}

func (q queuedControl) Stats() gc.Stats {
	return q.ui.collector.Stats()
}
