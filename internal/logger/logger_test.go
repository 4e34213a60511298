package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc  ", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "żó...", Truncate("żółw", 2))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	core, observed := observer.New(zapcore.InfoLevel)
	l := zap.New(core)
	OrNop(l).Info("kept")
	require.Len(t, observed.All(), 1)
	assert.Equal(t, "kept", observed.All()[0].Message)
}

func TestNew(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
