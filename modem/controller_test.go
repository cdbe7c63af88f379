package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kd9xyz/oliviamodem/config"
)

func TestBuildKeyerNoneIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.PTTBackend = "none"

	keyer, closeFn, err := buildKeyer(cfg)

	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.NoError(t, keyer.KeyOn())
	assert.NoError(t, keyer.KeyOff())
}

func TestBuildKeyerUnknownBackendFails(t *testing.T) {
	cfg := config.Default()
	cfg.PTTBackend = "carrier-pigeon"

	_, _, err := buildKeyer(cfg)

	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Symbols = 33

	c, err := New(cfg, nil, nil)

	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNewStartsInactive(t *testing.T) {
	c, err := New(config.Default(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, StateInactive, c.State())
}

func TestSetStateEmitsOnlyOnChange(t *testing.T) {
	c, err := New(config.Default(), nil, nil)
	require.NoError(t, err)

	var events []Event
	c.onEvent = func(e Event) { events = append(events, e) }

	c.setState(StateIdle)
	c.setState(StateIdle)
	c.setState(StateTransmitting)

	require.Len(t, events, 2)
	assert.Equal(t, StateIdle, events[0].State)
	assert.Equal(t, StateTransmitting, events[1].State)
}

func TestHandleMessageUpdatesStatusAndEmits(t *testing.T) {
	c, err := New(config.Default(), nil, nil)
	require.NoError(t, err)

	var got Event
	c.onEvent = func(e Event) { got = e }

	c.handleMessage("HELLO")

	assert.Equal(t, EventMessageReceived, got.Kind)
	assert.Equal(t, "HELLO", got.Message)

	status := c.Status()
	assert.Equal(t, "HELLO", status.LastMessage)
	assert.False(t, status.LastMessageAt.IsZero())
}

func TestHandleTxStateTracksTransmitting(t *testing.T) {
	c, err := New(config.Default(), nil, nil)
	require.NoError(t, err)

	c.setState(StateIdle)

	c.handleTxState(true)
	assert.Equal(t, StateTransmitting, c.State())

	c.handleTxState(false)
	assert.Equal(t, StateIdle, c.State())
}

func TestHandleTxStateFalseIgnoredWhenNotTransmitting(t *testing.T) {
	c, err := New(config.Default(), nil, nil)
	require.NoError(t, err)

	c.setState(StateIdle)

	c.handleTxState(false)
	assert.Equal(t, StateIdle, c.State())
}
