// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package bitmap holds decoded images whose pixel memory is released
// explicitly instead of being left to the Go garbage collector's timing.
package bitmap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"net/http"
	"sync"
	"sync/atomic"
)

// PixelMemorySize is the number of bytes a single pixel occupies.
const PixelMemorySize = 4

var ErrEmptyImage = errors.New("image has no pixels")

var lastID atomic.Uint64

// Bitmap is a decoded image. Its memory is accounted as
// width*height*PixelMemorySize no matter how the pixels are stored.
//
// A Bitmap is released at most once; see Free.
type Bitmap struct {
	id     uint64
	width  int
	height int

	m        sync.Mutex
	img      image.Image
	released bool
}

// New allocates a blank RGBA bitmap.
func New(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return newBitmap(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) (*Bitmap, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return newBitmap(img), nil
}

// Decode reads a PNG, JPEG or GIF image. If contentType is empty the
// format is sniffed from the data.
func Decode(r io.Reader, contentType string) (*Bitmap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %v", err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}

	var img image.Image
	switch contentType {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(data))
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	case "image/gif":
		img, err = gif.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unhandled image type %s", contentType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %v", contentType, err)
	}
	return FromImage(img)
}

func newBitmap(img image.Image) *Bitmap {
	bounds := img.Bounds()
	return &Bitmap{
		id:     lastID.Add(1),
		width:  bounds.Dx(),
		height: bounds.Dy(),
		img:    img,
	}
}

func (b *Bitmap) ID() uint64 {
	return b.id
}

func (b *Bitmap) Width() int {
	return b.width
}

func (b *Bitmap) Height() int {
	return b.height
}

// MemorySize returns the bytes held by the pixel buffer, or 0 once the
// bitmap has been released.
func (b *Bitmap) MemorySize() uint64 {
	b.m.Lock()
	defer b.m.Unlock()
	if b.released {
		return 0
	}
	return uint64(b.width) * uint64(b.height) * PixelMemorySize
}

// Image returns the decoded pixels, nil after Free.
func (b *Bitmap) Image() image.Image {
	b.m.Lock()
	defer b.m.Unlock()
	return b.img
}

func (b *Bitmap) Released() bool {
	b.m.Lock()
	defer b.m.Unlock()
	return b.released
}

// Free drops the pixel buffer. Only the first call has an effect; it
// reports whether this call released the bitmap.
func (b *Bitmap) Free() bool {
	b.m.Lock()
	defer b.m.Unlock()
	if b.released {
		return false
	}
	b.released = true
	b.img = nil
	return true
}

func (b *Bitmap) String() string {
	return fmt.Sprintf("bitmap#%d(%dx%d)", b.id, b.width, b.height)
}
