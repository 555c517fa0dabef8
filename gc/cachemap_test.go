package gc

import (
	"testing"

	"github.com/spezifisch/artgc/bitmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMapGetTouches(t *testing.T) {
	c := NewCacheMap()
	a, b := bitmap.New(1, 1), bitmap.New(1, 1)
	c.Set("a", a)
	c.Set("b", b)
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	assert.Same(t, a, c.Get("a"))
	assert.Equal(t, []string{"b", "a"}, c.Keys())
	assert.Equal(t, []*bitmap.Bitmap{b, a}, c.Items())
}

func TestCacheMapGetMissing(t *testing.T) {
	c := NewCacheMap()
	c.Set("a", bitmap.New(1, 1))

	assert.Nil(t, c.Get("missing"))
	assert.Equal(t, []string{"a"}, c.Keys())
}

func TestCacheMapSetReplaces(t *testing.T) {
	c := NewCacheMap()
	old, replacement := bitmap.New(1, 1), bitmap.New(2, 2)
	c.Set("k", old)
	c.Set("other", bitmap.New(1, 1))

	entry := c.Set("k", replacement)
	require.NotNil(t, entry)
	assert.Equal(t, "k", entry.Key)
	assert.Same(t, replacement, entry.Bitmap)

	// the old bitmap loses its association but keeps its memory
	assert.False(t, old.Released())
	assert.False(t, c.Contains(old))
	assert.Equal(t, []string{"other", "k"}, c.Keys())
	assert.Equal(t, 2, c.Len())
}

func TestCacheMapSetMovesBitmapToNewKey(t *testing.T) {
	c := NewCacheMap()
	b := bitmap.New(1, 1)
	c.Set("first", b)
	c.Set("second", b)

	key, ok := c.Key(b)
	assert.True(t, ok)
	assert.Equal(t, "second", key)
	assert.Nil(t, c.Get("first"))
	assert.Equal(t, 1, c.Len())
}

func TestCacheMapSetNil(t *testing.T) {
	c := NewCacheMap()
	assert.Nil(t, c.Set("k", nil))
	assert.Zero(t, c.Len())
}

func TestCacheMapRemoveItem(t *testing.T) {
	c := NewCacheMap()
	a, b := bitmap.New(1, 1), bitmap.New(1, 1)
	c.Set("a", a)
	c.Set("b", b)

	assert.True(t, c.RemoveItem(a))
	assert.True(t, a.Released())
	assert.Equal(t, []string{"b"}, c.Keys())
	assert.Nil(t, c.Get("a"))

	assert.False(t, c.RemoveItem(a), "second removal is a no-op")
	assert.False(t, c.RemoveItem(bitmap.New(1, 1)))
	assert.False(t, b.Released())
}

func TestCacheMapUnsetKeepsMemory(t *testing.T) {
	c := NewCacheMap()
	b := bitmap.New(1, 1)
	c.Set("k", b)
	c.Unset("k")
	c.Unset("k")

	assert.False(t, b.Released())
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Items())
}
