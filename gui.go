// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/artgc/gc"
	"github.com/spezifisch/artgc/logger"
	"github.com/spezifisch/artgc/remote"
	"github.com/spezifisch/artgc/scene"
)

// struct contains all the updatable elements of the Ui
type Ui struct {
	app   *tview.Application
	pages *pageSet

	// top bar
	titleStatus     *tview.TextView
	collectorStatus *tview.TextView

	// bottom bar
	menuWidget *MenuWidget

	// gallery page
	galleryPage *GalleryPage

	// log page
	logPage *LogPage

	// modals
	helpModal  tview.Primitive
	helpWidget *HelpWidget

	// global shortcuts
	bindings []keyBinding

	// gallery sources, re-listed on refresh
	galleryDir string
	albumCount int

	scene            *scene.Scene
	collector        *gc.Collector
	loader           *artLoader
	collectorService *remote.CollectorService
	logger           *logger.Logger
}

const (
	// page identifiers (use these instead of hardcoding page names for showing/hiding)
	PageGallery = "gallery"
	PageLog     = "log"

	PageHelpBox = "helpBox"
)

// pageSet reports only the pages on screen to the scene walker.
type pageSet struct {
	*tview.Pages

	roots map[string]tview.Primitive
}

func newPageSet() *pageSet {
	return &pageSet{
		Pages: tview.NewPages(),
		roots: make(map[string]tview.Primitive),
	}
}

func (p *pageSet) AddPage(name string, item tview.Primitive, resize, visible bool) *pageSet {
	p.roots[name] = item
	p.Pages.AddPage(name, item, resize, visible)
	return p
}

func (p *pageSet) Children() []tview.Primitive {
	children := make([]tview.Primitive, 0, len(p.roots))
	for _, name := range p.GetPageNames(true) {
		children = append(children, p.roots[name])
	}
	return children
}

func InitGui(items []galleryItem,
	galleryDir string,
	albumCount int,
	collector *gc.Collector,
	loader *artLoader,
	logger *logger.Logger) (ui *Ui) {
	ui = &Ui{
		galleryDir: galleryDir,
		albumCount: albumCount,
		collector:  collector,
		loader:     loader,
		logger:     logger,
	}

	ui.app = tview.NewApplication()
	ui.pages = newPageSet()

	// status text at the top
	statusLeft := fmt.Sprintf("[::b]%s[::-] v%s", Name, Version)
	ui.titleStatus = tview.NewTextView().SetText(statusLeft).
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetScrollable(false)
	ui.titleStatus.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		return action, nil
	})

	ui.collectorStatus = tview.NewTextView().SetText(formatCollectorStatus(collector.Stats())).
		SetTextAlign(tview.AlignRight).
		SetDynamicColors(true).
		SetScrollable(false)

	ui.bindings = ui.globalBindings()
	ui.menuWidget = ui.createMenuWidget()
	ui.helpWidget = ui.createHelpWidget()

	// help box modal
	ui.helpModal = makeModal(ui.helpWidget.Root, 80, 20)
	ui.helpWidget.Root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.helpWidget.visible && (event.Key() == tcell.KeyEscape) {
			ui.CloseHelp()
		}
		return event
	})

	// top bar: status text
	topBarFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(ui.titleStatus, 0, 1, false).
		AddItem(ui.collectorStatus, 40, 0, false)

	// gallery page
	ui.galleryPage = ui.createGalleryPage(items)

	// log page
	ui.logPage = ui.createLogPage()

	ui.pages.AddPage(PageGallery, ui.galleryPage.Root, true, true).
		AddPage(PageHelpBox, ui.helpModal, true, false).
		AddPage(PageLog, ui.logPage.Root, true, false)

	rootFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topBarFlex, 1, 0, false).
		AddItem(ui.pages, 0, 1, true).
		AddItem(ui.menuWidget.Root, 1, 0, false)

	// add main input handler
	rootFlex.SetInputCapture(ui.handlePageInput)

	ui.app.SetRoot(rootFlex, true).
		SetFocus(rootFlex).
		EnableMouse(true)

	// everything reachable from the root is alive
	ui.scene = scene.New(rootFlex)
	collector.SetLivenessResolver(ui.scene)

	return ui
}

func (ui *Ui) Run() error {
	// run gui/background event handler
	ui.runEventLoops()

	// scene is complete, drop whatever was created while building it
	ui.collect("startup")

	// gui main loop (blocking)
	return ui.app.Run()
}

// collect runs a collection pass and publishes the result. Call it from
// the gui goroutine.
func (ui *Ui) collect(reason string) gc.Report {
	report := ui.collector.Collect()
	stats := ui.collector.Stats()

	ui.logger.Printf("gc(%s): %s", reason, formatReport(report))
	ui.collectorStatus.SetText(formatCollectorStatus(stats))
	ui.menuWidget.SetStats(stats, ui.collector.Config())
	if ui.collectorService != nil {
		ui.collectorService.Refresh(stats)
	}
	return report
}

func (ui *Ui) ShowHelp() {
	ui.helpWidget.RenderHelp(ui.menuWidget.GetActivePage())

	ui.pages.ShowPage(PageHelpBox)
	ui.pages.SendToFront(PageHelpBox)
	ui.app.SetFocus(ui.helpModal)
	ui.helpWidget.visible = true
}

func (ui *Ui) CloseHelp() {
	ui.helpWidget.visible = false
	ui.pages.HidePage(PageHelpBox)
}
