// Package leadscrew implements the ELS core: a discrete-time step-pulse
// generator that tracks a sensed lead axis by a configurable ratio, with
// trapezoidal ramping, direction management, soft stops and a jog mode.
//
// Controller.Update is the only entry point a real-time caller needs; it is
// straight-line, never blocks, and returns on every branch, matching
// spec.md §5's "no suspension points" requirement. Everything else
// (ratio/stop setters, getters) is safe to call from another goroutine
// between ticks, guarded by a small mutex that Update never holds across a
// blocking operation.
package leadscrew

import (
	"sync"

	"github.com/aliher1911/els/axis"
	"github.com/aliher1911/els/globalstate"
	"github.com/aliher1911/els/pinio"
)

// Controller is the step generator described by spec.md §3-§4.D.
type Controller struct {
	Config

	leadAxis axis.Sensor
	io       pinio.PinIO
	state    *globalstate.State

	// mu guards every field below that both Update and the console/ratio
	// setters touch. Update's critical section is O(1) and never blocks,
	// so contention never stalls the real-time tick.
	mu sync.Mutex

	ratio float32

	currentPosition int32
	accumulator      float32
	currentPulseDelay float32

	lastPulseMicros             uint32
	lastMicrosSample            uint32
	lastFullPulseDurationMicros uint32

	currentDirection Direction

	leftStop  stopLimit
	rightStop stopLimit
}

// New constructs a Controller at rest (Disabled/Unsync, ratio 1.0), holding
// references to the lead axis sensor and the pin I/O capability. It never
// starts a goroutine of its own; pair it with tickdriver.Run.
func New(leadAxis axis.Sensor, io pinio.PinIO, state *globalstate.State, cfg Config) *Controller {
	c := &Controller{
		Config:            cfg,
		leadAxis:          leadAxis,
		io:                io,
		state:             state,
		ratio:             1.0,
		currentPulseDelay: float32(cfg.InitialPulseDelayUS),
		lastMicrosSample:  io.Micros(),
		currentDirection:  Unknown,
		leftStop:          stopLimit{state: stopUnset},
		rightStop:         stopLimit{state: stopUnset},
	}
	return c
}

// Update runs one tick of the controller. Call it at a fixed cadence
// (spec.md's LeadscrewTimerUS, typically 5-20us) from tickdriver.Run.
func (c *Controller) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Sample the monotonic clock exactly once per tick and fold the
	// elapsed time into lastPulseMicros unconditionally. This resolves the
	// ambiguity spec.md §9 Open Question 3 flags: lastPulseMicros must be
	// genuinely accumulated from the hardware clock, not read stale.
	now := c.io.Micros()
	c.lastPulseMicros += now - c.lastMicrosSample
	c.lastMicrosSample = now

	positionError := c.positionErrorLocked()

	switch c.state.MotionMode() {
	case globalstate.Disabled:
		c.resetCurrentPositionLocked()

	case globalstate.Jog:
		if c.lastPulseMicros < c.JogPulseDelayUS {
			return
		}
		if positionError == 0 {
			c.state.SetMotionMode(globalstate.Disabled)
			return
		}
		// The original firmware's jog branch fires sendPulse() without
		// ever touching currentPosition, which leaves positionError
		// permanently nonzero and jog never arrives. Bookkeeping the
		// position here, the same way the Enabled branch does on a
		// completed pulse, is what lets jog actually reach its target
		// and hand back to Disabled (see DESIGN.md, jog position
		// tracking).
		jogDir := Right
		if positionError < 0 {
			jogDir = Left
		}
		if jogDir != c.currentDirection {
			if jogDir == Right {
				c.io.WriteDirPin(1)
			} else {
				c.io.WriteDirPin(0)
			}
			c.currentDirection = jogDir
		}
		if c.sendPulse() {
			c.lastPulseMicros = 0
			c.currentPosition += int32(jogDir)
		}

	case globalstate.Enabled:
		c.updateEnabledLocked(positionError)
	}
}

func (c *Controller) updateEnabledLocked(positionError int32) {
	// The direction is latched (and lastPulseMicros reset) only when starting
	// from rest or reversing at the slowest speed; once latched, slowest-speed
	// ticks keep accumulating lastPulseMicros so the first pulse comes due.
	var nextDirection Direction
	switch {
	case positionError > 0:
		nextDirection = Right
		if c.currentPulseDelay == float32(c.InitialPulseDelayUS) && c.currentDirection != Right {
			c.io.WriteDirPin(1)
			c.currentDirection = Right
			c.lastPulseMicros = 0
		}
	case positionError < 0:
		nextDirection = Left
		if c.currentPulseDelay == float32(c.InitialPulseDelayUS) && c.currentDirection != Left {
			c.io.WriteDirPin(0)
			c.currentDirection = Left
			c.lastPulseMicros = 0
		}
	default:
		c.currentDirection = Unknown
		c.state.SetThreadSyncState(globalstate.Sync)
		return
	}

	timeSinceLastPulse := c.lastPulseMicros
	accelChange := float32(c.PulseDelayStepUS) * float32(timeSinceLastPulse)
	if accelChange == 0 {
		accelChange = float32(c.PulseDelayStepUS)
	}

	// Schedule miss: we're later than planned and still have ramp headroom.
	// Decelerate by one quantum rather than bursting catch-up pulses.
	if float32(timeSinceLastPulse) > c.currentPulseDelay+float32(c.PulseDelayStepUS) &&
		c.currentPulseDelay+accelChange < float32(c.InitialPulseDelayUS) {
		c.currentPulseDelay += accelChange
	}

	if float32(timeSinceLastPulse) < c.currentPulseDelay {
		// Not due yet.
		return
	}

	if !c.sendPulse() {
		// Pulse just started (pin went high); the falling edge completes
		// it on a later tick.
		return
	}

	c.lastFullPulseDurationMicros = c.lastPulseMicros
	c.lastPulseMicros = 0
	c.accumulator += float32(c.currentDirection) * c.accumulatorUnitLocked()

	stoppingDistanceInPulses := int32((float32(c.InitialPulseDelayUS) - c.currentPulseDelay) / accelChange)

	shouldStop := abs32(positionError)-stoppingDistanceInPulses <= 0
	shouldStop = shouldStop || nextDirection != c.currentDirection
	if c.UseStopsInRampPredicate {
		shouldStop = shouldStop || c.wouldCrossStopLocked(stoppingDistanceInPulses)
	}

	if shouldStop {
		c.currentPulseDelay += accelChange
	} else {
		c.currentPulseDelay -= accelChange
	}
	if c.currentPulseDelay > float32(c.InitialPulseDelayUS) {
		c.currentPulseDelay = float32(c.InitialPulseDelayUS)
	}
	if c.currentPulseDelay < 0 {
		c.currentPulseDelay = 0
	}

	// The accumulator carries the fractional remainder of ratio*StepsPerMM/
	// StepperPPR across pulses; once it overflows a whole unit, consume that
	// unit as an extra position increment. original_source left the consuming
	// write's sign ambiguous (see DESIGN.md Open Question 2) — subtracting in
	// the direction of travel is what keeps the accumulator inside [-1, 1]
	// (spec.md's bounded-accumulator invariant); adding would grow it without
	// limit under sustained single-direction motion.
	if c.accumulator > 1 || c.accumulator < -1 {
		c.accumulator -= float32(c.currentDirection)
		c.currentPosition += int32(c.currentDirection)
	}
}

// wouldCrossStopLocked implements the commented-out predicate from
// original_source/lib/leadscrew/leadscrew.cpp, gated by
// UseStopsInRampPredicate (see DESIGN.md Open Question 1).
func (c *Controller) wouldCrossStopLocked(stoppingDistanceInPulses int32) bool {
	if c.rightStop.state == stopSet && c.currentPosition+stoppingDistanceInPulses >= c.rightStop.position {
		return true
	}
	if c.leftStop.state == stopSet && c.currentPosition-stoppingDistanceInPulses <= c.leftStop.position {
		return true
	}
	return false
}

// sendPulse implements the two-tick pulse: high on the first call, low (and
// "completed") on the next.
func (c *Controller) sendPulse() bool {
	if c.io.ReadStepPin() == 1 {
		c.io.WriteStepPin(0)
		return true
	}
	c.io.WriteStepPin(1)
	return false
}

func (c *Controller) resetCurrentPositionLocked() {
	c.currentPosition = truncToInt32(float32(c.leadAxis.CurrentPosition()) * c.ratio)
}

func (c *Controller) accumulatorUnitLocked() float32 {
	return (c.StepsPerMM * c.ratio) / float32(c.StepperPPR)
}

func (c *Controller) expectedPositionLocked() int32 {
	return truncToInt32(float32(c.leadAxis.CurrentPosition()) * c.ratio)
}

func (c *Controller) positionErrorLocked() int32 {
	return c.expectedPositionLocked() - c.currentPosition
}

// SetRatio updates the ratio and immediately re-syncs currentPosition to the
// lead axis's current position under the new ratio, so PositionError reads
// zero the instant the call returns (spec.md Law L2).
func (c *Controller) SetRatio(ratio float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ratio = ratio
	c.currentPosition = truncToInt32(float32(c.leadAxis.CurrentPosition()) * ratio)
}

func (c *Controller) Ratio() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ratio
}

func (c *Controller) CurrentPosition() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPosition
}

func (c *Controller) ExpectedPosition() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expectedPositionLocked()
}

func (c *Controller) PositionError() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionErrorLocked()
}

func (c *Controller) CurrentDirection() Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentDirection
}

func (c *Controller) CurrentPulseDelay() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPulseDelay
}

// SetStopPosition sets a soft limit on the given end.
func (c *Controller) SetStopPosition(end StopEnd, position int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch end {
	case LeftEnd:
		c.leftStop = stopLimit{state: stopSet, position: position}
	case RightEnd:
		c.rightStop = stopLimit{state: stopSet, position: position}
	}
}

// UnsetStopPosition returns the given end to unbounded (∓∞) semantics.
func (c *Controller) UnsetStopPosition(end StopEnd) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch end {
	case LeftEnd:
		c.leftStop.state = stopUnset
	case RightEnd:
		c.rightStop.state = stopUnset
	}
}

// StopPosition returns the configured stop, or math.MinInt32/MaxInt32 if
// unset, per spec.md §4.D.4.
func (c *Controller) StopPosition(end StopEnd) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch end {
	case LeftEnd:
		if c.leftStop.state == stopSet {
			return c.leftStop.position
		}
		return minInt32
	case RightEnd:
		if c.rightStop.state == stopSet {
			return c.rightStop.position
		}
		return maxInt32
	}
	return 0
}

// EstimatedVelocityInPulsesPerSecond derives a velocity estimate from the
// most recently completed full pulse interval. For telemetry only; never
// fed back into control.
func (c *Controller) EstimatedVelocityInPulsesPerSecond() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastFullPulseDurationMicros == 0 {
		return 0
	}
	return 1e6 / float32(c.lastFullPulseDurationMicros)
}

func (c *Controller) EstimatedVelocityInMillimetersPerSecond() float32 {
	v := c.EstimatedVelocityInPulsesPerSecond()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.StepsPerMM == 0 {
		return 0
	}
	return v / c.StepsPerMM
}

const (
	minInt32 = -1 << 31
	maxInt32 = 1<<31 - 1
)

func truncToInt32(v float32) int32 {
	return int32(v)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
