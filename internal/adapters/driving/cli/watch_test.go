package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCmd_RunsUntilCancelled(t *testing.T) {
	tr := setupTestRuntime(t)

	var backgroundStarted, backgroundStopped bool
	tr.Background = func(context.Context) func() {
		backgroundStarted = true
		return func() { backgroundStopped = true }
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "watch")

	require.NoError(t, err)
	assert.Contains(t, out, "auto sync every 30s")
	assert.True(t, tr.status.started)
	assert.True(t, backgroundStarted)
	assert.True(t, backgroundStopped)
	assert.Equal(t, 30*time.Second, tr.sync.autoStarted)
	assert.True(t, tr.sync.autoStopped)
}

func TestWatchCmd_IntervalFlag(t *testing.T) {
	tr := setupTestRuntime(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executeContext(t, ctx, "watch", "--interval", "1m")

	require.NoError(t, err)
	assert.Equal(t, time.Minute, tr.sync.autoStarted)
}
