// Package globalstate holds the motion-mode and thread-sync-state machine
// that gates the leadscrew controller's behavior, plus a table of named ratio
// presets.
//
// This is deliberately not a package-level singleton: the teacher's own
// Controller keeps its cross-goroutine fields (lastAngle, targetAngle) as
// atomics on an explicit struct, and State follows the same discipline so a
// single process can host more than one axis and so tests never share
// global mutable state (see DESIGN.md, "singleton vs. explicit state").
package globalstate

import (
	"sync"
	"sync/atomic"
)

// MotionMode is the top-level mode the leadscrew controller runs under.
type MotionMode int32

const (
	Disabled MotionMode = iota
	Jog
	Enabled
)

func (m MotionMode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case Jog:
		return "jog"
	case Enabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// ThreadSyncState reports whether the leadscrew is currently tracking the
// lead axis within one quantum.
type ThreadSyncState int32

const (
	Unsync ThreadSyncState = iota
	Sync
)

func (t ThreadSyncState) String() string {
	if t == Sync {
		return "sync"
	}
	return "unsync"
}

// State is the shared, single-writer-per-tick motion state. The tick driver
// and the leadscrew controller write motionMode/threadSyncState; the console
// and telemetry only read, except for console-issued mode requests.
type State struct {
	motionMode      atomic.Int32
	threadSyncState atomic.Int32

	mu      sync.RWMutex
	presets map[string]float32
}

// New returns a State initialized to Disabled/Unsync per spec.md §4.D's state
// machine diagram.
func New() *State {
	s := &State{presets: make(map[string]float32)}
	s.motionMode.Store(int32(Disabled))
	s.threadSyncState.Store(int32(Unsync))
	return s
}

func (s *State) MotionMode() MotionMode {
	return MotionMode(s.motionMode.Load())
}

func (s *State) SetMotionMode(m MotionMode) {
	s.motionMode.Store(int32(m))
}

func (s *State) ThreadSyncState() ThreadSyncState {
	return ThreadSyncState(s.threadSyncState.Load())
}

func (s *State) SetThreadSyncState(t ThreadSyncState) {
	s.threadSyncState.Store(int32(t))
}

// RatioPreset looks up a named ratio preset (e.g. "20tpi") registered with
// SetRatioPreset. Neither elsconfig nor the console registers presets.
func (s *State) RatioPreset(name string) (float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.presets[name]
	return r, ok
}

// SetRatioPreset registers or overwrites a named ratio preset.
func (s *State) SetRatioPreset(name string, ratio float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[name] = ratio
}

// RatioPresets returns a snapshot copy of all registered presets.
func (s *State) RatioPresets() map[string]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float32, len(s.presets))
	for k, v := range s.presets {
		out[k] = v
	}
	return out
}
