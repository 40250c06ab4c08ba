package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogUsableBeforeInit(t *testing.T) {
	require.NotNil(t, Log)
	assert.NotPanics(t, func() { Log.Infof("nothing to see %d", 1) })
}

func TestInit(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, Init("info", "json"))
	require.NoError(t, Init("debug", "console"))
	assert.NotNil(t, Log)
}

func TestInit_Invalid(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	assert.Error(t, Init("trace", "json"))
	assert.Error(t, Init("info", "xml"))
	assert.Same(t, prev, Log)
}
