package axis

import "sync/atomic"

// Fixed is a settable Sensor used by tests and by the console's "sensor
// set" command for benchtop exercises without an encoder attached.
type Fixed struct {
	pos atomic.Int64
}

func NewFixed(initial int) *Fixed {
	f := &Fixed{}
	f.pos.Store(int64(initial))
	return f
}

func (f *Fixed) CurrentPosition() int {
	return int(f.pos.Load())
}

// Set overwrites the reported position.
func (f *Fixed) Set(pos int) {
	f.pos.Store(int64(pos))
}

// Advance adds delta to the reported position and returns the new value.
func (f *Fixed) Advance(delta int) int {
	return int(f.pos.Add(int64(delta)))
}
