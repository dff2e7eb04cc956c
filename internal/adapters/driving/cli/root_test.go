package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsync/swapsync-cli/internal/logger"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "swapsync", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"record", "sync", "status", "queue", "watch", "tui", "mcp", "config", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCmd_WithoutRuntimeFails(t *testing.T) {
	oldRT, oldBootstrap := rt, bootstrap
	rt, bootstrap = nil, nil
	defer func() { rt, bootstrap = oldRT, oldBootstrap }()

	_, err := execute(t, "status")

	assert.ErrorIs(t, err, errNotConfigured)
}

func TestRootCmd_BootstrapsLazilyAndCloses(t *testing.T) {
	oldRT, oldBootstrap := rt, bootstrap
	defer func() { rt, bootstrap = oldRT, oldBootstrap }()
	rt = nil

	var gotOpts Options
	calls, closed := 0, 0
	status := &mockStatusService{}
	SetBootstrap(func(_ context.Context, opts Options) (*Runtime, error) {
		calls++
		gotOpts = opts
		return &Runtime{
			Status: status,
			Close: func() error {
				closed++
				return nil
			},
		}, nil
	})

	_, err := execute(t, "--offline", "--ephemeral", "status")

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, gotOpts.Offline)
	assert.True(t, gotOpts.Ephemeral)
	assert.Equal(t, 1, closed)
	assert.Nil(t, rt, "runtime is released after the command")
}

func TestRootCmd_BootstrapError(t *testing.T) {
	oldRT, oldBootstrap := rt, bootstrap
	defer func() { rt, bootstrap = oldRT, oldBootstrap }()
	rt = nil

	SetBootstrap(func(context.Context, Options) (*Runtime, error) {
		return nil, errors.New("database is locked")
	})

	_, err := execute(t, "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestRootCmd_NoRuntimeCommandsSkipBootstrap(t *testing.T) {
	oldRT, oldBootstrap := rt, bootstrap
	defer func() { rt, bootstrap = oldRT, oldBootstrap }()
	rt = nil

	SetBootstrap(func(context.Context, Options) (*Runtime, error) {
		t.Fatal("bootstrap must not run for version")
		return nil, nil
	})

	_, err := execute(t, "version")

	assert.NoError(t, err)
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	setupTestRuntime(t)
	defer logger.SetVerbose(false)

	_, err := execute(t, "--verbose", "status")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}
