package services

import (
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
)

// LoadClientConfig reads the client configuration, filling unset or invalid
// values with defaults.
func LoadClientConfig(store driven.ConfigStore) domain.ClientConfig {
	cfg := domain.DefaultClientConfig()

	if v := store.GetString(domain.KeyServerBaseURL); v != "" {
		cfg.Server.BaseURL = v
	}
	cfg.Server.Token = store.GetString(domain.KeyServerToken)
	cfg.Server.Timeout = durationOr(store, domain.KeyServerTimeout, cfg.Server.Timeout)
	if v := store.GetFloat(domain.KeyServerRequestsPerSecond); v > 0 {
		cfg.Server.RequestsPerSecond = v
	}
	if v := store.GetInt(domain.KeyServerBurst); v > 0 {
		cfg.Server.Burst = v
	}

	cfg.Sync.Interval = durationOr(store, domain.KeySyncInterval, cfg.Sync.Interval)
	if v := store.GetInt(domain.KeySyncRetryCeiling); v > 0 {
		cfg.Sync.RetryCeiling = v
	}
	cfg.Sync.PollInterval = durationOr(store, domain.KeySyncPollInterval, cfg.Sync.PollInterval)

	cfg.Connectivity.ProbePath = store.GetString(domain.KeyConnectivityProbePath)
	cfg.Connectivity.ProbeInterval = durationOr(store, domain.KeyConnectivityProbeInterval, cfg.Connectivity.ProbeInterval)
	cfg.Connectivity.ProbeTimeout = durationOr(store, domain.KeyConnectivityProbeTimeout, cfg.Connectivity.ProbeTimeout)

	cfg.DataDir = store.GetString(domain.KeyStorageDataDir)
	return cfg
}

func durationOr(store driven.ConfigStore, key string, fallback time.Duration) time.Duration {
	if d := store.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}
