package leadscrew

// Config carries the compile-time constants of spec.md §6. Embedding Config
// in Controller (as the teacher embeds controller.Config in
// controller.Controller) keeps the field names available unqualified on the
// controller while still letting elsconfig build and validate them apart
// from the controller itself.
type Config struct {
	// InitialPulseDelayUS is the slowest (start/stop) inter-pulse interval,
	// and the upper clamp for CurrentPulseDelay.
	InitialPulseDelayUS uint32
	// PulseDelayStepUS is the base ramp quantum per decision.
	PulseDelayStepUS uint32
	// TimerUS is the fixed cadence Update is called at (spec's
	// LEADSCREW_TIMER_US), typically 5-20us. It is distinct from
	// PulseDelayStepUS: the former drives tickdriver.Run, the latter scales
	// accelChange.
	TimerUS uint32
	// JogPulseDelayUS is the fixed inter-pulse interval used in Jog mode.
	JogPulseDelayUS uint32
	// StepperPPR is the stepper's pulses per revolution (cycleModulo).
	StepperPPR uint32
	// StepsPerMM is the mechanical conversion used for velocity reporting
	// and the sub-step accumulator unit.
	StepsPerMM float32

	// UseStopsInRampPredicate gates whether the soft stop positions factor
	// into the deceleration predicate (see DESIGN.md, Open Question 1). The
	// original firmware carried this as commented-out code; here it is an
	// explicit, off-by-default config flag rather than a guess.
	UseStopsInRampPredicate bool
}

// Defaults returns the scenario constants spec.md §8 exercises against:
// InitialPulseDelayUS=1000, PulseDelayStepUS=10, JogPulseDelayUS=500.
func Defaults() Config {
	return Config{
		InitialPulseDelayUS:     1000,
		PulseDelayStepUS:        10,
		TimerUS:                 5,
		JogPulseDelayUS:         500,
		StepperPPR:              400,
		StepsPerMM:              200,
		UseStopsInRampPredicate: false,
	}
}
