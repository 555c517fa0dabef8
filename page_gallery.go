// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/artgc/bitmap"
	"github.com/spezifisch/artgc/logger"
	"github.com/spezifisch/artgc/scene"
)

type GalleryPage struct {
	Root *tview.Flex

	itemList *tview.List
	artView  *scene.ArtView
	infoView *tview.TextView

	items    []galleryItem
	bindings []keyBinding

	// shown while nothing could be loaded
	placeholder *bitmap.Bitmap

	// external refs
	ui     *Ui
	logger logger.LoggerInterface
}

func (ui *Ui) createGalleryPage(items []galleryItem) *GalleryPage {
	galleryPage := GalleryPage{
		ui:     ui,
		logger: ui.logger,

		placeholder: ui.loader.LoadSystem(1, 1),
	}

	// item list
	galleryPage.itemList = tview.NewList().
		ShowSecondaryText(false)
	galleryPage.itemList.Box.
		SetTitle(" images ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	galleryPage.itemList.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		galleryPage.showItem(index)
	})
	galleryPage.itemList.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		galleryPage.showItem(index)
		ui.collect("select")
	})

	// art and its details
	galleryPage.artView = scene.NewArtView()
	galleryPage.artView.Box.
		SetTitle(" art ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	galleryPage.infoView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	artFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(galleryPage.artView, 0, 1, false).
		AddItem(galleryPage.infoView, 2, 0, false)

	galleryPage.Root = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(galleryPage.itemList, 0, 1, true).
		AddItem(artFlex, 0, 2, false)

	galleryPage.bindings = []keyBinding{
		{label: "ENTER", help: "show image and collect"},
		{key: 'u', help: "drop image from the cache", action: galleryPage.uncacheCurrent},
		{key: 'R', help: "refresh the list", action: galleryPage.handleRefresh},
	}
	galleryPage.itemList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		return dispatchKey(galleryPage.bindings, event)
	})

	galleryPage.setItems(items)

	return &galleryPage
}

func (g *GalleryPage) setItems(items []galleryItem) {
	g.items = items

	g.itemList.Clear()
	for _, item := range items {
		g.itemList.AddItem(tview.Escape(item.Title), "", 0, nil)
	}

	if len(items) == 0 {
		g.showPlaceholder("no images")
		return
	}
	g.showItem(g.itemList.GetCurrentItem())
}

// showItem loads the item's bitmap and puts it on screen. The bitmap that
// was shown before stays in the cache but is no longer alive.
func (g *GalleryPage) showItem(index int) {
	if index < 0 || index >= len(g.items) {
		g.showPlaceholder("")
		return
	}
	item := g.items[index]

	b, err := g.ui.loader.Load(item)
	if err != nil {
		g.logger.PrintError("showItem", err)
		g.showPlaceholder(fmt.Sprintf("[red]%s", tview.Escape(err.Error())))
		return
	}

	g.artView.SetBitmap(b)
	g.infoView.SetText(fmt.Sprintf("[::b]%s[::-]\n%dx%d, %s",
		tview.Escape(item.Key()), b.Width(), b.Height(), humanize.IBytes(b.MemorySize())))
}

func (g *GalleryPage) showPlaceholder(text string) {
	g.artView.SetBitmap(g.placeholder)
	g.infoView.SetText(text)
}

// uncacheCurrent drops the current item from the cache. Its bitmap is
// freed by the first pass after it leaves the screen.
func (g *GalleryPage) uncacheCurrent() {
	index := g.itemList.GetCurrentItem()
	if index < 0 || index >= len(g.items) {
		return
	}
	key := g.items[index].Key()
	g.ui.collector.CacheUnset(key)
	g.logger.Printf("uncached %s", key)
}

func (g *GalleryPage) handleRefresh() {
	items, err := listGallery(g.ui.loader.connection, g.ui.galleryDir, g.ui.albumCount)
	if err != nil {
		g.logger.PrintError("handleRefresh", err)
		return
	}
	g.setItems(items)
	g.ui.collect("refresh")
}
