package axis

import (
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// quadTable maps the 4-bit (prevAB<<2 | curAB) transition to a signed step,
// zero for invalid/bounce transitions.
var quadTable = [16]int{
	0: 0, 1: -1, 2: 1, 3: 0,
	4: 1, 5: 0, 6: 0, 7: -1,
	8: -1, 9: 0, 10: 0, 11: 1,
	12: 0, 13: 1, 14: -1, 15: 0,
}

// Quadrature decodes a two-channel incremental rotary encoder on a pair of
// GPIO pins into a signed position count. It is the stand-in for the
// spindle-encoder decode driver spec.md treats as an external collaborator:
// this core consumes the Sensor interface it satisfies, never its internals.
//
// Edge detection follows the same go-rpio Detect/EdgeDetected pattern the
// teacher uses for its interrupt pin (i2cdev.IntPin); the wide running count
// is guarded by a mutex rather than masking interrupts, since user-space
// GPIO polling has no interrupt mask to hold.
type Quadrature struct {
	a, b rpio.Pin

	mu   sync.Mutex
	pos  int
	prev uint8
}

// NewQuadrature configures pins a/b as pulled-up inputs with edge detection
// on both edges, and returns a decoder primed at the pins' current state.
func NewQuadrature(aPin, bPin int) *Quadrature {
	a := rpio.Pin(aPin)
	b := rpio.Pin(bPin)
	a.Mode(rpio.Input)
	b.Mode(rpio.Input)
	a.Pull(rpio.PullUp)
	b.Pull(rpio.PullUp)
	a.Detect(rpio.AnyEdge)
	b.Detect(rpio.AnyEdge)

	q := &Quadrature{a: a, b: b}
	q.prev = q.sample()
	return q
}

func (q *Quadrature) sample() uint8 {
	var v uint8
	if q.a.Read() == rpio.High {
		v |= 0b01
	}
	if q.b.Read() == rpio.High {
		v |= 0b10
	}
	return v
}

// Poll must be called frequently (from the tick driver or a dedicated
// goroutine) to drain edge-detect state and fold it into the position
// counter. Poll is the only writer of pos; CurrentPosition only reads.
func (q *Quadrature) Poll() {
	if !q.a.EdgeDetected() && !q.b.EdgeDetected() {
		return
	}
	cur := q.sample()
	q.mu.Lock()
	q.pos += quadTable[int(q.prev)<<2|int(cur)]
	q.prev = cur
	q.mu.Unlock()
}

func (q *Quadrature) CurrentPosition() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pos
}

// Close disables edge detection on both pins.
func (q *Quadrature) Close() {
	q.a.Detect(rpio.NoEdge)
	q.b.Detect(rpio.NoEdge)
}
