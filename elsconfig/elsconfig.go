// Package elsconfig loads the constants spec.md §6 treats as compile-time
// configuration from an INI file, following the same github.com/go-ini/ini
// load pattern facebook-time's calnex/config package uses, simplified to a
// local-file load rather than a remote-device push.
package elsconfig

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"
	log "github.com/sirupsen/logrus"

	"github.com/aliher1911/els/leadscrew"
)

// Config is the full set of boot-time settings: the leadscrew ramp
// constants, pin assignments, and the console/telemetry endpoints.
type Config struct {
	Leadscrew leadscrew.Config

	StepPin int
	DirPin  int

	ConsolePort string
	ConsoleBaud int

	TelemetryListen string
}

// Defaults mirrors leadscrew.Defaults() for the ramp constants and fills in
// reasonable pin/endpoint defaults for a bare board.
func Defaults() Config {
	return Config{
		Leadscrew:       leadscrew.Defaults(),
		StepPin:         26,
		DirPin:          13,
		ConsolePort:     "",
		ConsoleBaud:     115200,
		TelemetryListen: ":9090",
	}
}

// Load reads path and overlays any keys present onto Defaults(). A missing
// file is not an error: it is logged at info and Defaults() is returned
// unchanged, matching spec.md §7's "Load" error policy.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Infof("elsconfig: %s not found, using built-in defaults", path)
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("elsconfig: loading %s: %w", path, err)
	}

	ls := f.Section("leadscrew")
	cfg.Leadscrew.InitialPulseDelayUS = uintKey(ls, "initial_pulse_delay_us", cfg.Leadscrew.InitialPulseDelayUS)
	cfg.Leadscrew.PulseDelayStepUS = uintKey(ls, "pulse_delay_step_us", cfg.Leadscrew.PulseDelayStepUS)
	cfg.Leadscrew.TimerUS = uintKey(ls, "timer_us", cfg.Leadscrew.TimerUS)
	cfg.Leadscrew.JogPulseDelayUS = uintKey(ls, "jog_pulse_delay_us", cfg.Leadscrew.JogPulseDelayUS)
	cfg.Leadscrew.StepperPPR = uintKey(ls, "stepper_ppr", cfg.Leadscrew.StepperPPR)
	cfg.Leadscrew.StepsPerMM = float32Key(ls, "steps_per_mm", cfg.Leadscrew.StepsPerMM)
	cfg.Leadscrew.UseStopsInRampPredicate = ls.Key("use_stops_in_ramp_predicate").MustBool(cfg.Leadscrew.UseStopsInRampPredicate)

	pins := f.Section("pins")
	cfg.StepPin = pins.Key("step").MustInt(cfg.StepPin)
	cfg.DirPin = pins.Key("dir").MustInt(cfg.DirPin)

	console := f.Section("console")
	cfg.ConsolePort = console.Key("port").MustString(cfg.ConsolePort)
	cfg.ConsoleBaud = console.Key("baud").MustInt(cfg.ConsoleBaud)

	telemetry := f.Section("telemetry")
	cfg.TelemetryListen = telemetry.Key("listen").MustString(cfg.TelemetryListen)

	log.Infof("elsconfig: loaded %s", path)
	return cfg, nil
}

func uintKey(s *ini.Section, name string, def uint32) uint32 {
	return uint32(s.Key(name).MustUint64(uint64(def)))
}

func float32Key(s *ini.Section, name string, def float32) float32 {
	return float32(s.Key(name).MustFloat64(float64(def)))
}
