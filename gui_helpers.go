// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rivo/tview"
	"github.com/spezifisch/artgc/gc"
	"github.com/spezifisch/artgc/scene"
)

func makeModal(p tview.Primitive, width, height int) tview.Primitive {
	grid := tview.NewGrid().
		SetColumns(0, width, 0).
		SetRows(0, height, 0).
		AddItem(p, 1, 1, 1, 1, 0, 0, true)
	return scene.Wrap(grid, p)
}

func formatCollectorStatus(stats gc.Stats) string {
	return fmt.Sprintf("[::b]#%d[::-] %d bitmaps %s [gray](cached %d %s)[-]",
		stats.Count,
		stats.BitmapNum, humanize.IBytes(stats.MemSize),
		stats.CachedBitmapNum, humanize.IBytes(stats.CachedMemSize))
}

func formatReport(report gc.Report) string {
	freed := report.NonCached.Freed + report.Cached.Freed
	return fmt.Sprintf("pass %d freed %d uncached + %d cached bitmaps (%s)",
		report.Pass, report.NonCached.Evicted, report.Cached.Evicted, humanize.IBytes(freed))
}

// formatBudgetUsage shows cached and uncached memory against their
// budgets. A zero budget keeps nothing that is off screen.
func formatBudgetUsage(stats gc.Stats, config gc.Config) string {
	var uncached uint64
	if stats.MemSize > stats.CachedMemSize {
		uncached = stats.MemSize - stats.CachedMemSize
	}
	return fmt.Sprintf("cache %s/%s  uncached %s/%s",
		humanize.IBytes(stats.CachedMemSize), formatBudget(config.CacheBudget),
		humanize.IBytes(uncached), formatBudget(config.NonCacheBudget))
}

func formatBudget(budget uint64) string {
	if budget == 0 {
		return "0"
	}
	return humanize.IBytes(budget)
}
