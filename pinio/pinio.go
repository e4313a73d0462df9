// Package pinio abstracts the step/direction pin pair and the free-running
// microsecond counter the leadscrew controller drives its ramp from.
package pinio

// PinIO is the capability interface the leadscrew controller uses to drive
// hardware. It never inspects wiring details beyond levels and microseconds.
type PinIO interface {
	// ReadStepPin returns the last level written to the step pin.
	ReadStepPin() uint8
	// WriteStepPin sets the step pin level. Idempotent.
	WriteStepPin(level uint8)
	// WriteDirPin sets the direction pin level. Idempotent.
	WriteDirPin(level uint8)
	// Micros returns a free-running, wraparound-tolerant microsecond counter.
	Micros() uint32
}
