package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swapsync/swapsync-cli/internal/adapters/driven/config/file"
	"github.com/swapsync/swapsync-cli/internal/adapters/driving/cli"
	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

func newStore(t *testing.T, values map[string]any) (*file.ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	for k, v := range values {
		require.NoError(t, store.Set(k, v))
	}
	return store, dir
}

func TestBootstrap_RequiresBaseURL(t *testing.T) {
	store, dir := newStore(t, nil)

	_, err := newBootstrap(store, dir)(context.Background(), cli.Options{})

	assert.ErrorIs(t, err, errNoBaseURL)
}

func TestBootstrap_OfflineQueuesWrites(t *testing.T) {
	store, dir := newStore(t, map[string]any{
		domain.KeyServerBaseURL: "http://127.0.0.1:1",
	})

	r, err := newBootstrap(store, dir)(context.Background(), cli.Options{Offline: true, Ephemeral: true})
	require.NoError(t, err)
	defer r.Close()

	out, err := r.Records.Create(context.Background(), domain.ResourcePhones, domain.Fields{"model": "Pixel 9"})
	require.NoError(t, err)
	assert.Equal(t, true, out["offline"])

	r.Status.Refresh(context.Background())
	snap := r.Status.Snapshot()
	assert.False(t, snap.Online)
	assert.Equal(t, 1, snap.PendingCount)
}

func TestBootstrap_ProbesBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, dir := newStore(t, map[string]any{
		domain.KeyServerBaseURL: srv.URL,
	})

	r, err := newBootstrap(store, dir)(context.Background(), cli.Options{})
	require.NoError(t, err)
	defer r.Close()

	r.Status.Refresh(context.Background())
	assert.True(t, r.Status.Snapshot().Online)
}

func TestOpenLocal_SQLite(t *testing.T) {
	local, err := openLocal(t.TempDir(), false)
	require.NoError(t, err)
	defer local.close()

	assert.Contains(t, local.path, "swapsync.db")
}
