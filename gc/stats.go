// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package gc

import (
	"math"

	"github.com/dustin/go-humanize"
	"github.com/spezifisch/artgc/bitmap"
	"github.com/spezifisch/artgc/logger"
)

// Stats is a snapshot of the collector's bookkeeping.
type Stats struct {
	Count           int
	BitmapNum       int
	MemSize         uint64
	CachedBitmapNum int
	CachedMemSize   uint64
	SystemBitmapNum int
}

func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statsLocked()
}

func (c *Collector) statsLocked() Stats {
	created := c.created.Items()
	cached := c.cache.Items()
	return Stats{
		Count:           c.count,
		BitmapNum:       len(created),
		MemSize:         memorySize(created),
		CachedBitmapNum: len(cached),
		CachedMemSize:   memorySize(cached),
		SystemBitmapNum: c.system.Len(),
	}
}

// CreatedBitmaps returns every tracked bitmap, oldest creation first.
func (c *Collector) CreatedBitmaps() []*bitmap.Bitmap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created.Items()
}

// CachedBitmaps returns the cached bitmaps, least recently used first.
func (c *Collector) CachedBitmaps() []*bitmap.Bitmap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Items()
}

func (c *Collector) SystemBitmaps() []*bitmap.Bitmap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.system.Items()
}

func (c *Collector) AliveBitmaps() []*bitmap.Bitmap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aliveBitmaps()
}

// Print writes the stats in the collector's report layout.
func (s Stats) Print(l logger.LoggerInterface) {
	l.Print("======== artgc ========")
	l.Printf("count : %d", s.Count)
	l.Printf("AllBitmapNum : %d", s.BitmapNum)
	l.Printf("AllMemSizeMB : %d (%s)", roundMB(s.MemSize), humanize.IBytes(s.MemSize))
	l.Printf("CachedBitmapNum : %d", s.CachedBitmapNum)
	l.Printf("CachedMemSizeMB : %d (%s)", roundMB(s.CachedMemSize), humanize.IBytes(s.CachedMemSize))
}

func roundMB(size uint64) int64 {
	return int64(math.Round(float64(size) / MB))
}
