package remote

import (
	"testing"

	"github.com/spezifisch/artgc/gc"
	"github.com/spezifisch/artgc/logger"
	"github.com/stretchr/testify/assert"
)

type fakeControl struct {
	collects int
}

func (f *fakeControl) Collect() gc.Report {
	f.collects++
	return gc.Report{
		Pass:      f.collects,
		NonCached: gc.PhaseReport{Evicted: 2, Freed: 100},
		Cached:    gc.PhaseReport{Evicted: 1, Freed: 50},
	}
}

func (f *fakeControl) Stats() gc.Stats {
	return gc.Stats{Count: f.collects, BitmapNum: 3, MemSize: 1 << 20}
}

func TestCollectMethod(t *testing.T) {
	control := &fakeControl{}
	log := logger.Init()
	obj := &collectorObject{svc: &CollectorService{control: control, logger: log}}

	evicted, freed, err := obj.Collect()

	assert.Nil(t, err)
	assert.Equal(t, int32(3), evicted)
	assert.Equal(t, uint64(150), freed)
	assert.Equal(t, 1, control.collects)
	assert.Equal(t, "dbus: collection pass 1 freed 3 bitmaps", <-log.Prints)
}

func TestStatsProps(t *testing.T) {
	props := statsProps(gc.Stats{Count: 4, CachedMemSize: 42, SystemBitmapNum: 2})

	assert.Equal(t, int32(4), props["Count"].Value)
	assert.Equal(t, uint64(42), props["CachedMemSize"].Value)
	assert.Equal(t, int32(2), props["SystemBitmapNum"].Value)
	for name, p := range props {
		assert.False(t, p.Writable, "%s must be read-only", name)
	}
}
