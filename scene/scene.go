// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package scene finds the bitmaps that are currently on screen by walking
// the tview primitive hierarchy.
package scene

import (
	"sync"

	"github.com/rivo/tview"
	"github.com/spezifisch/artgc/bitmap"
)

// BitmapHolder is a primitive that draws a bitmap.
type BitmapHolder interface {
	Bitmap() *bitmap.Bitmap
}

// Container is a primitive whose visible children the walker cannot
// discover on its own, e.g. a page set that only shows one page.
type Container interface {
	Children() []tview.Primitive
}

// Resolver reports the bitmaps that are alive right now.
type Resolver interface {
	AliveBitmaps() []*bitmap.Bitmap
}

// Scene is the display hierarchy rooted at one primitive, plus an
// optional background bitmap that is alive while the scene is.
//
// The walker looks into *tview.Flex and Container primitives only. Other
// layouts (Grid, Frame, ...) hide their children from it; put them in the
// tree through Wrap, otherwise bitmaps drawn inside them count as dead.
type Scene struct {
	m          sync.Mutex
	root       tview.Primitive
	background *bitmap.Bitmap
}

func New(root tview.Primitive) *Scene {
	return &Scene{root: root}
}

func (s *Scene) SetRoot(root tview.Primitive) {
	s.m.Lock()
	defer s.m.Unlock()
	s.root = root
}

func (s *Scene) SetBackground(b *bitmap.Bitmap) {
	s.m.Lock()
	defer s.m.Unlock()
	s.background = b
}

// AliveBitmaps walks the hierarchy as it is at call time.
func (s *Scene) AliveBitmaps() []*bitmap.Bitmap {
	s.m.Lock()
	root, background := s.root, s.background
	s.m.Unlock()

	bitmaps := collectAliveBitmaps(root, nil)
	if background != nil {
		bitmaps = append(bitmaps, background)
	}
	return bitmaps
}

func collectAliveBitmaps(target tview.Primitive, bitmaps []*bitmap.Bitmap) []*bitmap.Bitmap {
	if target == nil {
		return bitmaps
	}
	if holder, ok := target.(BitmapHolder); ok {
		if b := holder.Bitmap(); b != nil {
			bitmaps = append(bitmaps, b)
		}
	}

	switch t := target.(type) {
	case Container:
		for _, child := range t.Children() {
			bitmaps = collectAliveBitmaps(child, bitmaps)
		}
	case *tview.Flex:
		for i := 0; i < t.GetItemCount(); i++ {
			bitmaps = collectAliveBitmaps(t.GetItem(i), bitmaps)
		}
	}
	return bitmaps
}

type wrapped struct {
	tview.Primitive

	children []tview.Primitive
}

// Wrap returns layout as a Container reporting children, for layouts whose
// items the walker cannot see.
func Wrap(layout tview.Primitive, children ...tview.Primitive) tview.Primitive {
	return &wrapped{Primitive: layout, children: children}
}

func (w *wrapped) Children() []tview.Primitive {
	return w.children
}

type union []Resolver

// Union merges several resolvers into one.
func Union(resolvers ...Resolver) Resolver {
	return union(resolvers)
}

func (u union) AliveBitmaps() []*bitmap.Bitmap {
	var bitmaps []*bitmap.Bitmap
	for _, r := range u {
		if r != nil {
			bitmaps = append(bitmaps, r.AliveBitmaps()...)
		}
	}
	return bitmaps
}
