package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	logger, err := New("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	debug, err := New("debug")
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zap.DebugLevel))

	_, err = New("loud")
	assert.Error(t, err)
}
