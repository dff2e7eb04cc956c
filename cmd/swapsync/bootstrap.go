package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/swapsync/swapsync-cli/internal/adapters/driven/config/file"
	"github.com/swapsync/swapsync-cli/internal/adapters/driven/connectivity"
	"github.com/swapsync/swapsync-cli/internal/adapters/driven/remote"
	"github.com/swapsync/swapsync-cli/internal/adapters/driven/storage/memory"
	"github.com/swapsync/swapsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/swapsync/swapsync-cli/internal/adapters/driving/cli"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
	"github.com/swapsync/swapsync-cli/internal/core/services"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

var errNoBaseURL = errors.New(
	"server.base_url is not set; run 'swapsync config set server.base_url https://...'")

// newBootstrap wires storage, the REST client and the services behind the CLI.
func newBootstrap(store *file.ConfigStore, configDir string) cli.Bootstrap {
	return func(ctx context.Context, opts cli.Options) (*cli.Runtime, error) {
		cfg := services.LoadClientConfig(store)
		if cfg.Server.BaseURL == "" {
			return nil, errNoBaseURL
		}

		dataDir := cfg.DataDir
		if dataDir == "" {
			dataDir = filepath.Join(configDir, "data")
		}
		local, err := openLocal(dataDir, opts.Ephemeral)
		if err != nil {
			return nil, err
		}

		client, err := remote.NewClient(remote.Config{
			BaseURL:           cfg.Server.BaseURL,
			Token:             cfg.Server.Token,
			Timeout:           cfg.Server.Timeout,
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Burst:             cfg.Server.Burst,
		})
		if err != nil {
			_ = local.close()
			return nil, err
		}

		var (
			conn    driven.Connectivity
			monitor *connectivity.Monitor
		)
		if opts.Offline {
			conn = connectivity.NewStatic(false)
		} else {
			monitor = connectivity.NewMonitor(client, connectivity.MonitorConfig{
				Path:     cfg.Connectivity.ProbePath,
				Interval: cfg.Connectivity.ProbeInterval,
				Timeout:  cfg.Connectivity.ProbeTimeout,
			})
			monitor.Probe(ctx)
			conn = monitor
		}

		manager := services.NewSyncManager(services.SyncDeps{
			Records:      local.records,
			Queue:        local.queue,
			Settings:     local.settings,
			IDs:          local.ids,
			Remote:       client,
			Connectivity: conn,
			RetryCeiling: cfg.Sync.RetryCeiling,
		})
		api := services.NewOfflineAPI(local.records, local.queue, local.ids, client, conn)
		watcher := services.NewConnectivityWatcher(manager, conn, cfg.Sync.PollInterval)

		logger.Debug("local store at %s, backend %s", local.path, client.BaseURL())

		return &cli.Runtime{
			Records:      api,
			Sync:         manager,
			Queue:        manager,
			Status:       watcher,
			SyncInterval: cfg.Sync.Interval,
			Background:   background(store, client, monitor),
			Close:        local.close,
		}, nil
	}
}

// localStores groups the storage ports, backed by SQLite or by memory.
type localStores struct {
	records  driven.RecordStore
	queue    driven.OperationQueue
	settings driven.SettingsStore
	ids      driven.IDMapStore
	path     string
	close    func() error
}

func openLocal(dataDir string, ephemeral bool) (*localStores, error) {
	if ephemeral {
		return &localStores{
			records:  memory.NewRecordStore(),
			queue:    memory.NewOperationQueue(),
			settings: memory.NewSettingsStore(),
			ids:      memory.NewIDMapStore(),
			path:     ":memory:",
			close:    func() error { return nil },
		}, nil
	}

	db, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	return &localStores{
		records:  db.RecordStore(),
		queue:    db.OperationQueue(),
		settings: db.SettingsStore(),
		ids:      db.IDMapStore(),
		path:     db.Path(),
		close:    db.Close,
	}, nil
}

// background starts the connectivity monitor and live config reloading. A
// changed token is applied to the client without a restart.
func background(store *file.ConfigStore, client *remote.Client, monitor *connectivity.Monitor) func(context.Context) func() {
	return func(ctx context.Context) func() {
		ctx, cancel := context.WithCancel(ctx)

		if monitor != nil {
			monitor.Start(ctx)
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Watch(ctx, func() {
				client.SetToken(services.LoadClientConfig(store).Server.Token)
				logger.Info("configuration reloaded")
			})
			if err != nil {
				logger.Warn("config watch: %v", err)
			}
		}()

		return func() {
			cancel()
			if monitor != nil {
				monitor.Stop()
			}
			wg.Wait()
		}
	}
}
