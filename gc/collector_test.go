package gc

import (
	"strings"
	"testing"

	"github.com/spezifisch/artgc/bitmap"
	"github.com/spezifisch/artgc/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScene struct {
	alive []*bitmap.Bitmap
	calls int
}

func (f *fakeScene) AliveBitmaps() []*bitmap.Bitmap {
	f.calls++
	return f.alive
}

// halfMB returns a bitmap using exactly 0.5 MB.
func halfMB() *bitmap.Bitmap {
	return bitmap.New(512, 256)
}

func created(c *Collector, bitmaps ...*bitmap.Bitmap) {
	for _, b := range bitmaps {
		c.OnBitmapCreated(b)
	}
}

func TestCollectCacheBudget(t *testing.T) {
	c := New(Config{CacheBudget: 1 * MB}, &fakeScene{}, nil)
	a, b, cc := halfMB(), halfMB(), halfMB()
	created(c, a, b, cc)
	c.CacheSet("A", a)
	c.CacheSet("B", b)
	c.CacheSet("C", cc)

	report := c.Collect()

	assert.True(t, a.Released())
	assert.False(t, b.Released())
	assert.False(t, cc.Released())
	assert.Equal(t, []*bitmap.Bitmap{b, cc}, c.CachedBitmaps())
	assert.Equal(t, []*bitmap.Bitmap{b, cc}, c.CreatedBitmaps())
	assert.Equal(t, 1, report.Cached.Evicted)
	assert.Equal(t, uint64(MB/2), report.Cached.Freed)
	assert.Equal(t, uint64(MB), report.Cached.Retained)
	assert.Equal(t, 0, report.NonCached.Candidates)
}

func TestCollectCacheOrderFollowsAccess(t *testing.T) {
	c := New(Config{CacheBudget: 1 * MB}, &fakeScene{}, nil)
	a, b, cc := halfMB(), halfMB(), halfMB()
	c.CacheSet("A", a)
	c.CacheSet("B", b)
	c.CacheSet("C", cc)
	assert.Same(t, a, c.CacheGet("A"))

	c.Collect()

	assert.True(t, b.Released(), "B is least recently used")
	assert.False(t, a.Released())
	assert.Nil(t, c.CacheGet("B"))
}

func TestCollectZeroNonCacheBudgetFreesEverything(t *testing.T) {
	c := New(Config{CacheBudget: 200 * MB}, &fakeScene{}, nil)
	small, huge := bitmap.New(1, 1), bitmap.New(4096, 4096)
	created(c, small, huge)

	report := c.Collect()

	assert.True(t, small.Released())
	assert.True(t, huge.Released())
	assert.Empty(t, c.CreatedBitmaps())
	assert.Equal(t, 2, report.NonCached.Evicted)
	assert.Zero(t, report.NonCached.Retained)
}

func TestCollectNonCacheBudget(t *testing.T) {
	c := New(Config{NonCacheBudget: 1 * MB}, &fakeScene{}, nil)
	a, b, cc := halfMB(), halfMB(), halfMB()
	created(c, a, b, cc)

	c.Collect()

	assert.True(t, a.Released(), "oldest creation goes first")
	assert.Equal(t, []*bitmap.Bitmap{b, cc}, c.CreatedBitmaps())
}

func TestCollectZeroCacheBudgetFreesAllUnprotected(t *testing.T) {
	shown := halfMB()
	scene := &fakeScene{alive: []*bitmap.Bitmap{shown}}
	c := New(Config{}, scene, nil)
	hidden := halfMB()
	created(c, shown, hidden)
	c.CacheSet("shown", shown)
	c.CacheSet("hidden", hidden)

	c.Collect()

	assert.False(t, shown.Released(), "alive bitmaps survive a zero budget")
	assert.True(t, hidden.Released())
	assert.Equal(t, []*bitmap.Bitmap{shown}, c.CachedBitmaps())
	assert.Equal(t, 2, scene.calls, "resolver is queried once per phase")
}

func TestCollectNeverFreesProtected(t *testing.T) {
	alive, system := bitmap.New(100, 100), bitmap.New(100, 100)
	c := New(Config{}, &fakeScene{alive: []*bitmap.Bitmap{alive}}, nil)
	created(c, alive, system)
	c.OnSystemBitmapLoaded(system)
	c.CacheSet("system", system)

	for i := 0; i < 3; i++ {
		c.Collect()
	}

	assert.False(t, alive.Released())
	assert.False(t, system.Released())
	assert.Equal(t, []*bitmap.Bitmap{alive, system}, c.CreatedBitmaps())
	assert.Equal(t, []*bitmap.Bitmap{system}, c.SystemBitmaps())
}

func TestCollectFreesOversizedBitmaps(t *testing.T) {
	c := New(Config{CacheBudget: 1 * MB, NonCacheBudget: 1 * MB}, &fakeScene{}, nil)
	uncached, cached := bitmap.New(1024, 1024), bitmap.New(1024, 1024) // 4 MB each
	created(c, uncached, cached)
	c.CacheSet("cached", cached)

	report := c.Collect()

	assert.True(t, uncached.Released(), "a single bitmap over budget is not kept")
	assert.True(t, cached.Released())
	assert.Equal(t, 1, report.NonCached.Evicted)
	assert.Equal(t, 1, report.Cached.Evicted)
	assert.Zero(t, report.NonCached.Retained)
	assert.Zero(t, report.Cached.Retained)
	assert.Empty(t, c.CreatedBitmaps())
	assert.Empty(t, c.CachedBitmaps())
}

func TestCollectEvictsThroughCache(t *testing.T) {
	c := New(Config{CacheBudget: 1 * MB}, &fakeScene{}, nil)
	old, big := halfMB(), bitmap.New(1024, 1024)
	created(c, old, big)
	c.CacheSet("old", old)
	c.CacheSet("big", big)

	report := c.Collect()

	assert.True(t, old.Released())
	assert.True(t, big.Released())
	assert.Equal(t, 2, report.Cached.Evicted)
	assert.Nil(t, c.CacheGet("old"))
	assert.Nil(t, c.CacheGet("big"))
	assert.Empty(t, c.CreatedBitmaps())
}

func TestCollectBudgetConvergence(t *testing.T) {
	sizes := [][2]int{{1024, 512}, {512, 512}, {512, 256}, {256, 256}, {128, 128}}
	c := New(Config{CacheBudget: 1 * MB}, &fakeScene{}, nil)
	var bitmaps []*bitmap.Bitmap
	for i, s := range sizes {
		b := bitmap.New(s[0], s[1])
		bitmaps = append(bitmaps, b)
		c.CacheSet(string(rune('a'+i)), b)
	}

	c.Collect()

	assert.LessOrEqual(t, c.Stats().CachedMemSize, uint64(MB))
	// eviction is strictly oldest first: survivors form a suffix
	released := true
	for _, b := range bitmaps {
		if !b.Released() {
			released = false
		}
		if !released {
			assert.False(t, b.Released(), "%s freed after a younger survivor", b)
		}
	}
}

func TestCollectPrunesBitmapsFreedByHost(t *testing.T) {
	c := New(Config{NonCacheBudget: 10 * MB, CacheBudget: 10 * MB}, &fakeScene{}, nil)
	b := halfMB()
	created(c, b)
	c.CacheSet("b", b)
	b.Free()

	c.Collect()

	assert.Empty(t, c.CreatedBitmaps())
	assert.Empty(t, c.CachedBitmaps())
}

func TestRelease(t *testing.T) {
	c := New(Config{CacheBudget: 10 * MB}, nil, nil)
	b := halfMB()
	created(c, b)
	c.OnSystemBitmapLoaded(b)
	c.CacheSet("b", b)

	c.Release(b)
	c.Release(b)

	assert.True(t, b.Released())
	assert.Empty(t, c.CreatedBitmaps())
	assert.Empty(t, c.SystemBitmaps())
	assert.Nil(t, c.CacheGet("b"))
}

func TestCacheUnsetReturnsBitmapToUncached(t *testing.T) {
	c := New(Config{CacheBudget: 10 * MB}, nil, nil)
	b := halfMB()
	created(c, b)
	c.CacheSet("b", b)
	c.CacheUnset("b")

	c.Collect()

	assert.True(t, b.Released(), "no longer cached, so the zero non-cache budget applies")
}

func TestStatsAndPassCount(t *testing.T) {
	log := logger.Init()
	c := New(Config{CacheBudget: 200 * MB, ShowStats: true}, &fakeScene{}, log)
	a, b := halfMB(), halfMB()
	created(c, a, b)
	c.CacheSet("a", a)
	c.OnSystemBitmapLoaded(bitmap.New(1, 1))

	report := c.Collect()
	assert.Equal(t, 1, report.Pass)
	assert.Equal(t, 2, c.Collect().Pass)

	stats := c.Stats()
	assert.Equal(t, Stats{
		Count:           2,
		BitmapNum:       1,
		MemSize:         MB / 2,
		CachedBitmapNum: 1,
		CachedMemSize:   MB / 2,
		SystemBitmapNum: 1,
	}, stats)

	var lines []string
	for len(log.Prints) > 0 {
		lines = append(lines, <-log.Prints)
	}
	require.NotEmpty(t, lines)
	assert.Equal(t, "======== artgc ========", lines[0])
	assert.Contains(t, strings.Join(lines, "\n"), "count : 1")
	assert.Contains(t, lines, "CachedBitmapNum : 1")
}

func TestStatsDisabledPrintsNothing(t *testing.T) {
	log := logger.Init()
	c := New(Config{}, nil, log)
	c.Collect()
	assert.Len(t, log.Prints, 0)
}

func TestNilRegistrationsAreIgnored(t *testing.T) {
	c := New(Config{}, nil, nil)
	c.OnBitmapCreated(nil)
	c.OnSystemBitmapLoaded(nil)
	c.Release(nil)
	assert.Nil(t, c.CacheSet("k", nil))
	assert.Zero(t, c.Stats().BitmapNum)
}
