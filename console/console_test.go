package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliher1911/els/axis"
	"github.com/aliher1911/els/globalstate"
	"github.com/aliher1911/els/leadscrew"
	"github.com/aliher1911/els/pinio"
)

func newTestConsole(t *testing.T) *Console {
	lead := axis.NewFixed(0)
	sim := pinio.NewSim()
	state := globalstate.New()
	ctrl := leadscrew.New(lead, sim, state, leadscrew.Defaults())
	return &Console{ctrl: ctrl, state: state, leadAxis: lead}
}

func TestRatioGetSet(t *testing.T) {
	c := newTestConsole(t)

	out, err := c.exec([]string{"ratio", "set", "0.5"})
	require.NoError(t, err)
	assert.Contains(t, out, "ratio set to 0.5")
	assert.Equal(t, float32(0.5), c.ctrl.Ratio())

	out, err = c.exec([]string{"ratio", "get"})
	require.NoError(t, err)
	assert.Contains(t, out, "ratio: 0.5")
}

func TestRatioSetRejectsGarbage(t *testing.T) {
	c := newTestConsole(t)
	_, err := c.exec([]string{"ratio", "set", "not-a-number"})
	assert.Error(t, err)
}

func TestStopSetUnsetGet(t *testing.T) {
	c := newTestConsole(t)

	out, err := c.exec([]string{"stop", "left", "set", "-500"})
	require.NoError(t, err)
	assert.Contains(t, out, "left stop set to -500")

	out, err = c.exec([]string{"stop", "left", "get"})
	require.NoError(t, err)
	assert.Contains(t, out, "-500")

	out, err = c.exec([]string{"stop", "left", "unset"})
	require.NoError(t, err)
	assert.Contains(t, out, "left stop unset")

	out, err = c.exec([]string{"stop", "left", "get"})
	require.NoError(t, err)
	assert.Contains(t, out, "-2147483648")
}

func TestPositionAndVelocity(t *testing.T) {
	c := newTestConsole(t)

	out, err := c.exec([]string{"position"})
	require.NoError(t, err)
	assert.Contains(t, out, "current=0")
	assert.Contains(t, out, "expected=0")
	assert.Contains(t, out, "error=0")

	out, err = c.exec([]string{"velocity"})
	require.NoError(t, err)
	assert.Contains(t, out, "mm/s")
}

func TestModeSetAndGet(t *testing.T) {
	c := newTestConsole(t)

	out, err := c.exec([]string{"mode", "jog"})
	require.NoError(t, err)
	assert.Contains(t, out, "mode set to jog")
	assert.Equal(t, globalstate.Jog, c.state.MotionMode())

	out, err = c.exec([]string{"mode", "get"})
	require.NoError(t, err)
	assert.Contains(t, out, "mode=jog")

	_, err = c.exec([]string{"mode", "enabled"})
	require.NoError(t, err)
	assert.Equal(t, globalstate.Enabled, c.state.MotionMode())
}

func TestUnknownCommandErrors(t *testing.T) {
	c := newTestConsole(t)
	_, err := c.exec([]string{"bogus"})
	assert.Error(t, err)
}

func TestSensorGetAndSet(t *testing.T) {
	c := newTestConsole(t)

	out, err := c.exec([]string{"sensor", "set", "42"})
	require.NoError(t, err)
	assert.Contains(t, out, "sensor set to 42")

	out, err = c.exec([]string{"sensor", "get"})
	require.NoError(t, err)
	assert.Contains(t, out, "42")
}

// fixedOnlySensor satisfies axis.Sensor but not axis.Overridable, standing
// in for a real encoder attached in place of axis.Fixed.
type fixedOnlySensor struct{ axis.Sensor }

func TestSensorSetRejectedWithoutOverride(t *testing.T) {
	c := newTestConsole(t)
	c.leadAxis = fixedOnlySensor{Sensor: axis.NewFixed(0)}

	_, err := c.exec([]string{"sensor", "set", "1"})
	assert.Error(t, err)
}
