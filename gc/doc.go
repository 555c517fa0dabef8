// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package gc frees decoded bitmaps that are no longer displayed.
//
// Bitmaps are expensive: their memory grows with the pixel area, and
// cover art or gallery images can be recreated at any time by decoding
// them again. So every bitmap the host creates is registered with the
// Collector, and whenever the host reaches a convenient point (a page
// switch, a new selection) it calls Collect.
//
// Collect works in two phases. Bitmaps that were created but never put
// into the cache go first, then cached bitmaps in least-recently-used
// order. Each phase stops once the surviving candidates fit into its
// budget. Bitmaps reported by the LivenessResolver and system bitmaps are
// never candidates.
//
// Hosts that need a bitmap to survive a pass without being displayed
// should register it in the cache:
//
//	b := collector.CacheGet("cover:" + id)
//	if b == nil {
//		b = decode(id)
//		collector.OnBitmapCreated(b)
//		collector.CacheSet("cover:"+id, b)
//	}
package gc
