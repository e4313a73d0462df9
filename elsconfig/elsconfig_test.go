package elsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadOverlaysKnownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "els.ini")
	body := `
[leadscrew]
initial_pulse_delay_us = 2000
pulse_delay_step_us = 20
timer_us = 10
use_stops_in_ramp_predicate = true

[pins]
step = 5
dir = 6

[console]
port = /dev/ttyUSB0
baud = 9600

[telemetry]
listen = :8091
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(2000), cfg.Leadscrew.InitialPulseDelayUS)
	assert.Equal(t, uint32(20), cfg.Leadscrew.PulseDelayStepUS)
	assert.Equal(t, uint32(10), cfg.Leadscrew.TimerUS)
	assert.True(t, cfg.Leadscrew.UseStopsInRampPredicate)
	// Keys absent from the file keep their default values.
	assert.Equal(t, Defaults().Leadscrew.JogPulseDelayUS, cfg.Leadscrew.JogPulseDelayUS)

	assert.Equal(t, 5, cfg.StepPin)
	assert.Equal(t, 6, cfg.DirPin)
	assert.Equal(t, "/dev/ttyUSB0", cfg.ConsolePort)
	assert.Equal(t, 9600, cfg.ConsoleBaud)
	assert.Equal(t, ":8091", cfg.TelemetryListen)
}

func TestLoadMalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "els.ini")
	// An unterminated section header is invalid INI.
	require.NoError(t, os.WriteFile(path, []byte("[leadscrew\nfoo=bar\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
