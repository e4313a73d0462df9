package globalstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStartsDisabledUnsync(t *testing.T) {
	s := New()
	assert.Equal(t, Disabled, s.MotionMode())
	assert.Equal(t, Unsync, s.ThreadSyncState())
}

func TestMotionModeStringers(t *testing.T) {
	assert.Equal(t, "disabled", Disabled.String())
	assert.Equal(t, "jog", Jog.String())
	assert.Equal(t, "enabled", Enabled.String())
	assert.Equal(t, "sync", Sync.String())
	assert.Equal(t, "unsync", Unsync.String())
}

// Concurrent readers/writers on MotionMode and the preset map must never race
// or corrupt state; the atomics and RWMutex are exercised from many
// goroutines at once under -race.
func TestConcurrentAccessDoesNotRace(t *testing.T) {
	s := New()
	var wg sync.WaitGroup

	modes := []MotionMode{Disabled, Jog, Enabled}
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetMotionMode(modes[i%len(modes)])
		}(i)
		go func() {
			defer wg.Done()
			_ = s.MotionMode()
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetRatioPreset("preset", float32(i))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.RatioPreset("preset")
		}()
	}
	wg.Wait()

	_, ok := s.RatioPreset("preset")
	assert.True(t, ok)
}

func TestRatioPresetsSnapshotIsIndependent(t *testing.T) {
	s := New()
	s.SetRatioPreset("20tpi", 0.05)
	snap := s.RatioPresets()
	snap["20tpi"] = 99

	r, ok := s.RatioPreset("20tpi")
	assert.True(t, ok)
	assert.Equal(t, float32(0.05), r)
}

func TestRatioPresetMissing(t *testing.T) {
	s := New()
	_, ok := s.RatioPreset("missing")
	assert.False(t, ok)
}
