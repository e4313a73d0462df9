package pinio

import (
	"fmt"
	"time"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIO drives a step pin and a direction pin on a Raspberry Pi GPIO header.
// Construction mirrors the teacher's actuator.NewStepper: pins are put in
// Output mode and driven Low before anything else touches them.
type RPIO struct {
	step rpio.Pin
	dir  rpio.Pin

	stepLevel uint8
	start     time.Time
}

// NewRPIO opens the given step/direction pin numbers. Callers must have
// already called rpio.Open(); pin bring-up failures surface as a panic from
// the underlying library, consistent with go-rpio's own API.
func NewRPIO(stepPin, dirPin int) *RPIO {
	fmt.Printf("pinio: driving step=%d dir=%d\n", stepPin, dirPin)
	p := &RPIO{
		step:  rpio.Pin(stepPin),
		dir:   rpio.Pin(dirPin),
		start: time.Now(),
	}
	p.step.Output()
	p.dir.Output()
	p.step.Low()
	p.dir.Low()
	return p
}

func (p *RPIO) ReadStepPin() uint8 {
	return p.stepLevel
}

func (p *RPIO) WriteStepPin(level uint8) {
	p.stepLevel = level
	if level == 0 {
		p.step.Low()
	} else {
		p.step.High()
	}
}

func (p *RPIO) WriteDirPin(level uint8) {
	if level == 0 {
		p.dir.Low()
	} else {
		p.dir.High()
	}
}

// Micros returns elapsed microseconds since the pins were opened, truncated
// to uint32. Wraparound is expected and acceptable: the controller only ever
// compares differences between two samples.
func (p *RPIO) Micros() uint32 {
	return uint32(time.Since(p.start).Microseconds())
}
