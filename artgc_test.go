package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spezifisch/artgc/gc"
	"github.com/spezifisch/artgc/logger"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainWithoutTUI(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 2, 2)
	configFile := writeConfig(t, `
[gc]
cache-size-mb = 1
`)

	// Mock osExit to prevent actual exit during test
	exitCalled := false
	osExit = func(code int) {
		exitCalled = true

		if code != 0 {
			// Capture and print the stack trace
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := string(stackBuf[:stackSize])

			// Print the stack trace with new lines only
			t.Fatalf("Unexpected exit with code: %d\nStack trace:\n%s\n", code, stackTrace)
		}
	}
	headlessMode = true

	// Restore patches after the test
	defer func() {
		osExit = os.Exit
		headlessMode = false
	}()

	// list mode loads the gallery without starting the gui
	os.Args = []string{"cmd", "--config=" + configFile, "--dir=" + dir, "--list"}

	main()

	if !exitCalled {
		t.Fatalf("osExit was not called")
	}
}

func TestListGalleryStats(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 512, 512) // 1 MB
	writePNG(t, filepath.Join(dir, "b.png"), 512, 512)
	items, err := listGalleryDir(dir)
	require.NoError(t, err)

	l := newTestLoader(gc.Config{CacheBudget: 1 * gc.MB})
	out := logger.Init()
	listGalleryStats(items, l, out)

	stats := l.collector.Stats()
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 1, stats.CachedBitmapNum, "the oldest cover is evicted")
	assert.NotEmpty(t, out.Prints)
}

func TestFormatCollectorStatus(t *testing.T) {
	status := formatCollectorStatus(gc.Stats{
		Count:           3,
		BitmapNum:       2,
		MemSize:         2 * gc.MB,
		CachedBitmapNum: 1,
		CachedMemSize:   gc.MB,
	})
	assert.Equal(t, "[::b]#3[::-] 2 bitmaps 2.0 MiB [gray](cached 1 1.0 MiB)[-]", status)
}

func TestFormatReport(t *testing.T) {
	report := gc.Report{
		Pass:      4,
		NonCached: gc.PhaseReport{Evicted: 2, Freed: gc.MB},
		Cached:    gc.PhaseReport{Evicted: 1, Freed: gc.MB / 2},
	}
	assert.Equal(t, "pass 4 freed 2 uncached + 1 cached bitmaps (1.5 MiB)", formatReport(report))
}
