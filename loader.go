// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spezifisch/artgc/bitmap"
	"github.com/spezifisch/artgc/gc"
	"github.com/spezifisch/artgc/logger"
	"github.com/spezifisch/artgc/subsonic"
)

var errNoServer = errors.New("no server configured")

// galleryItem is one entry of the gallery list: either an image file or an
// album cover on the server.
type galleryItem struct {
	Title      string
	Path       string
	CoverArtId string
}

// Key is the cache key the item's bitmap is stored under.
func (i galleryItem) Key() string {
	if i.CoverArtId != "" {
		return "cover:" + i.CoverArtId
	}
	return "file:" + i.Path
}

// artLoader decodes gallery bitmaps and registers them with the collector.
// Everything it loads goes through the cache, so a bitmap survives
// collection passes while the cache budget allows.
type artLoader struct {
	collector  *gc.Collector
	connection *subsonic.Connection
	coverSize  int
	logger     logger.LoggerInterface
}

func (l *artLoader) Load(item galleryItem) (*bitmap.Bitmap, error) {
	key := item.Key()
	if b := l.collector.CacheGet(key); b != nil {
		return b, nil
	}

	b, err := l.decode(item)
	if err != nil {
		return nil, err
	}
	l.collector.OnBitmapCreated(b)
	l.collector.CacheSet(key, b)
	l.logger.Printf("loaded %s as %s", key, b)
	return b, nil
}

// LoadSystem creates a bitmap that is never collected.
func (l *artLoader) LoadSystem(width, height int) *bitmap.Bitmap {
	b := bitmap.New(width, height)
	l.collector.OnBitmapCreated(b)
	l.collector.OnSystemBitmapLoaded(b)
	return b
}

func (l *artLoader) decode(item galleryItem) (*bitmap.Bitmap, error) {
	if item.CoverArtId != "" {
		if l.connection == nil {
			return nil, errNoServer
		}
		return l.connection.GetCoverArt(item.CoverArtId, l.coverSize)
	}

	f, err := os.Open(item.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := bitmap.Decode(f, mime.TypeByExtension(strings.ToLower(filepath.Ext(item.Path))))
	if err != nil {
		return nil, fmt.Errorf("%s: %v", item.Path, err)
	}
	return b, nil
}

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// listGalleryDir returns the images in dir sorted by name.
func listGalleryDir(dir string) ([]galleryItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	items := make([]galleryItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		items = append(items, galleryItem{
			Title: e.Name(),
			Path:  filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Title < items[j].Title
	})
	return items, nil
}

// listGallery returns the images in dir followed by the server's album
// covers when a connection is set.
func listGallery(connection *subsonic.Connection, dir string, albumCount int) ([]galleryItem, error) {
	items, err := listGalleryDir(dir)
	if err != nil {
		return nil, err
	}
	covers, err := listAlbumCovers(connection, albumCount)
	if err != nil {
		return nil, err
	}
	return append(items, covers...), nil
}

// listAlbumCovers returns the covers of the newest albums on the server.
func listAlbumCovers(connection *subsonic.Connection, count int) ([]galleryItem, error) {
	if connection == nil {
		return nil, nil
	}
	albums, err := connection.GetAlbumList(count)
	if err != nil {
		return nil, err
	}
	items := make([]galleryItem, 0, len(albums))
	for _, album := range albums {
		if album.CoverArtId == "" {
			continue
		}
		items = append(items, galleryItem{
			Title:      fmt.Sprintf("%s - %s", album.Artist, album.Name),
			CoverArtId: album.CoverArtId,
		})
	}
	return items, nil
}
