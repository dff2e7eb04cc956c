package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsync/swapsync-cli/internal/adapters/driven/storage/memory"
	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

func setupConfigStore(t *testing.T, values map[string]any) *memory.ConfigStore {
	t.Helper()
	store := memory.NewConfigStoreWith(values)

	old := configStore
	SetConfigStore(store)
	t.Cleanup(func() { configStore = old })
	return store
}

func TestConfigShow(t *testing.T) {
	setupConfigStore(t, map[string]any{
		domain.KeyServerBaseURL: "https://api.example.com",
		domain.KeyServerToken:   "abcd1234efgh5678",
	})

	out, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Config file: :memory:")
	assert.Contains(t, out, "https://api.example.com")
	assert.Contains(t, out, "abcd...5678")
	assert.NotContains(t, out, "abcd1234efgh5678")
	assert.Contains(t, out, "(default)")
}

func TestConfigShow_SkipsRuntime(t *testing.T) {
	setupConfigStore(t, nil)

	called := false
	old := bootstrap
	SetBootstrap(func(_ context.Context, _ Options) (*Runtime, error) {
		called = true
		return nil, assert.AnError
	})
	t.Cleanup(func() { bootstrap = old })

	_, err := execute(t, "config", "show")

	require.NoError(t, err)
	assert.False(t, called)
}

func TestConfigSet(t *testing.T) {
	store := setupConfigStore(t, nil)

	out, err := execute(t, "config", "set", domain.KeySyncInterval, "1m")

	require.NoError(t, err)
	assert.Contains(t, out, "sync.interval = 1m0s")
	assert.Equal(t, "1m0s", store.GetString(domain.KeySyncInterval))
}

func TestConfigSet_TokenIsNotEchoed(t *testing.T) {
	store := setupConfigStore(t, nil)

	out, err := execute(t, "config", "set", domain.KeyServerToken, "s3cret-token")

	require.NoError(t, err)
	assert.Contains(t, out, "server.token updated.")
	assert.NotContains(t, out, "s3cret-token")
	assert.Equal(t, "s3cret-token", store.GetString(domain.KeyServerToken))
}

func TestConfigSet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad duration", []string{"config", "set", domain.KeySyncInterval, "soon"}},
		{"bad url", []string{"config", "set", domain.KeyServerBaseURL, "ftp://x"}},
		{"unknown key", []string{"config", "set", "server.colour", "blue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupConfigStore(t, nil)

			_, err := execute(t, tt.args...)

			require.ErrorIs(t, err, domain.ErrInvalidInput)
			_, ok := store.Get(tt.args[2])
			assert.False(t, ok)
		})
	}
}

func TestConfigSet_MissingValue(t *testing.T) {
	setupConfigStore(t, nil)

	_, err := execute(t, "config", "set", domain.KeyServerBurst)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a value is required")
}

func TestConfig_NoStore(t *testing.T) {
	old := configStore
	configStore = nil
	t.Cleanup(func() { configStore = old })

	_, err := execute(t, "config", "show")

	assert.ErrorIs(t, err, errNoConfigStore)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "(empty)", maskToken(""))
	assert.Equal(t, "****", maskToken("short"))
	assert.Equal(t, "abcd...6789", maskToken("abcdef0123456789"))
}
