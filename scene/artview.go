// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package scene

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/artgc/bitmap"
)

// ArtView draws a bitmap and reports it as alive for as long as it is part
// of the scene.
type ArtView struct {
	*tview.Image

	bitmap *bitmap.Bitmap
}

func NewArtView() *ArtView {
	return &ArtView{Image: tview.NewImage()}
}

// SetBitmap shows b. A nil or released bitmap leaves the view empty.
func (a *ArtView) SetBitmap(b *bitmap.Bitmap) *ArtView {
	a.bitmap = b
	if b == nil {
		a.Image.SetImage(nil)
		return a
	}
	if img := b.Image(); img != nil {
		a.Image.SetImage(img)
	}
	return a
}

func (a *ArtView) Bitmap() *bitmap.Bitmap {
	return a.bitmap
}

func (a *ArtView) Draw(screen tcell.Screen) {
	if a.bitmap == nil || a.bitmap.Released() {
		a.Image.Box.DrawForSubclass(screen, a)
		return
	}
	a.Image.Draw(screen)
}
