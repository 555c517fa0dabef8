// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package gc

import (
	"sync"

	"github.com/spezifisch/artgc/bitmap"
	"github.com/spezifisch/artgc/logger"
)

// MB is the unit budgets are configured in.
const MB = 1024 * 1024

// LivenessResolver reports the bitmaps attached to something currently
// displayed. It is queried for the current state on every call.
type LivenessResolver interface {
	AliveBitmaps() []*bitmap.Bitmap
}

// Config holds the collector budgets in bytes.
//
// A budget of 0 does not mean "0 bytes": it disables the size check, so
// every unprotected bitmap of that category is freed on every pass. With
// the default NonCacheBudget of 0 this means any bitmap that was neither
// cached nor displayed during a pass is gone afterwards.
type Config struct {
	CacheBudget    uint64
	NonCacheBudget uint64
	ShowStats      bool
}

// Collector tracks every bitmap the host creates and frees them in two
// phases when Collect runs: first bitmaps outside the cache, then cached
// ones, oldest first, until each category fits its budget. Displayed
// bitmaps and system bitmaps are never freed.
//
// All methods are serialized by one mutex so the collector can be shared
// between the UI loop and the D-Bus service.
type Collector struct {
	mu sync.Mutex

	config Config
	alive  LivenessResolver
	logger logger.LoggerInterface

	created Queue[*bitmap.Bitmap]
	system  Queue[*bitmap.Bitmap]
	cache   *CacheMap

	count int
}

// PhaseReport describes one eviction phase of a collection pass.
type PhaseReport struct {
	Candidates int
	Evicted    int
	Freed      uint64
	// Retained is the memory of the candidates that survived the phase.
	Retained uint64
}

// Report describes one collection pass.
type Report struct {
	Pass      int
	NonCached PhaseReport
	Cached    PhaseReport
}

func New(config Config, alive LivenessResolver, logger logger.LoggerInterface) *Collector {
	return &Collector{
		config: config,
		alive:  alive,
		logger: logger,
		cache:  NewCacheMap(),
	}
}

// SetLivenessResolver replaces the resolver, e.g. once the UI exists.
func (c *Collector) SetLivenessResolver(alive LivenessResolver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = alive
}

func (c *Collector) Config() Config {
	return c.config
}

// OnBitmapCreated must be called once for every bitmap the host creates.
func (c *Collector) OnBitmapCreated(b *bitmap.Bitmap) {
	if b == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created.Push(b)
}

// OnSystemBitmapLoaded protects b from collection for as long as it lives.
func (c *Collector) OnSystemBitmapLoaded(b *bitmap.Bitmap) {
	if b == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.system.Push(b)
}

func (c *Collector) CacheGet(key string) *bitmap.Bitmap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(key)
}

// CacheSet registers b under key. Cached bitmaps are only freed when the
// cache exceeds its budget.
func (c *Collector) CacheSet(key string, b *bitmap.Bitmap) *CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Set(key, b)
}

func (c *Collector) CacheUnset(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Unset(key)
}

// Release removes b from every tracker and frees it.
func (c *Collector) Release(b *bitmap.Bitmap) {
	if b == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteBitmap(b)
}

// Collect runs one collection pass.
func (c *Collector) Collect() Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneReleased()

	report := Report{}
	report.NonCached = c.deleteNonCachedBitmaps()
	report.Cached = c.deleteCachedBitmaps()

	c.count++
	report.Pass = c.count

	if c.config.ShowStats && c.logger != nil {
		c.statsLocked().Print(c.logger)
	}
	return report
}

func (c *Collector) deleteNonCachedBitmaps() PhaseReport {
	protected := bitmapSet(c.cache.Items(), c.aliveBitmaps(), c.system.Items())
	candidates := without(c.created.Items(), protected)
	return c.deleteBitmaps(candidates, c.config.NonCacheBudget)
}

func (c *Collector) deleteCachedBitmaps() PhaseReport {
	protected := bitmapSet(c.aliveBitmaps(), c.system.Items())
	candidates := without(c.cache.Items(), protected)
	return c.deleteBitmaps(candidates, c.config.CacheBudget)
}

// deleteBitmaps frees candidates in order until the memory of the rest fits
// into budget. A budget of 0 frees all of them.
func (c *Collector) deleteBitmaps(candidates []*bitmap.Bitmap, budget uint64) PhaseReport {
	report := PhaseReport{Candidates: len(candidates)}
	remaining := memorySize(candidates)
	for _, b := range candidates {
		if budget != 0 && remaining <= budget {
			break
		}
		size := b.MemorySize()
		remaining -= size
		c.deleteBitmap(b)
		report.Evicted++
		report.Freed += size
	}
	report.Retained = remaining
	return report
}

// deleteBitmap drops b from every tracker and frees it. Cached bitmaps are
// freed by the cache itself.
func (c *Collector) deleteBitmap(b *bitmap.Bitmap) {
	c.created.Remove(b)
	c.system.Remove(b)
	if !c.cache.RemoveItem(b) {
		b.Free()
	}
}

// pruneReleased drops bitmaps the host freed on its own.
func (c *Collector) pruneReleased() {
	for _, items := range [][]*bitmap.Bitmap{c.created.Items(), c.system.Items(), c.cache.Items()} {
		for _, b := range items {
			if b.Released() {
				c.deleteBitmap(b)
			}
		}
	}
}

func (c *Collector) aliveBitmaps() []*bitmap.Bitmap {
	if c.alive == nil {
		return nil
	}
	return c.alive.AliveBitmaps()
}

func bitmapSet(lists ...[]*bitmap.Bitmap) map[*bitmap.Bitmap]struct{} {
	set := make(map[*bitmap.Bitmap]struct{})
	for _, list := range lists {
		for _, b := range list {
			if b != nil {
				set[b] = struct{}{}
			}
		}
	}
	return set
}

func without(list []*bitmap.Bitmap, exclude map[*bitmap.Bitmap]struct{}) []*bitmap.Bitmap {
	out := make([]*bitmap.Bitmap, 0, len(list))
	for _, b := range list {
		if _, ok := exclude[b]; !ok {
			out = append(out, b)
		}
	}
	return out
}

func memorySize(bitmaps []*bitmap.Bitmap) uint64 {
	var size uint64
	for _, b := range bitmaps {
		size += b.MemorySize()
	}
	return size
}
