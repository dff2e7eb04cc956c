package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Setting keys persisted in the local settings partition.
const (
	SettingLastSyncAt = "last_sync_at"
)

// ClientConfig holds the runtime configuration of the sync client.
type ClientConfig struct {
	Server       ServerConfig
	Sync         SyncConfig
	Connectivity ConnectivityConfig

	// DataDir is where the local database lives.
	DataDir string
}

// ServerConfig describes the REST backend.
type ServerConfig struct {
	// BaseURL is the API root, e.g. https://shop.example.com/api.
	BaseURL string

	// Token is the bearer token attached to every request.
	Token string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// RequestsPerSecond throttles replays against the server.
	RequestsPerSecond float64

	// Burst is the limiter bucket size.
	Burst int
}

// SyncConfig controls the sync manager.
type SyncConfig struct {
	// Interval between automatic sync passes.
	Interval time.Duration

	// RetryCeiling is the number of failures tolerated before abandoning an operation.
	RetryCeiling int

	// PollInterval is how often the UI signal refreshes the pending count.
	PollInterval time.Duration
}

// ConnectivityConfig controls the connectivity probe.
type ConnectivityConfig struct {
	// ProbePath is appended to the base URL for reachability checks.
	ProbePath string

	// ProbeInterval is the time between probes.
	ProbeInterval time.Duration

	// ProbeTimeout bounds a single probe.
	ProbeTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Server: ServerConfig{
			BaseURL:           "http://localhost:8000/api",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Sync: SyncConfig{
			Interval:     30 * time.Second,
			RetryCeiling: DefaultRetryCeiling,
			PollInterval: 5 * time.Second,
		},
		Connectivity: ConnectivityConfig{
			ProbeInterval: 10 * time.Second,
			ProbeTimeout:  3 * time.Second,
		},
	}
}

// Configuration keys.
const (
	KeyServerBaseURL             = "server.base_url"
	KeyServerToken               = "server.token"
	KeyServerTimeout             = "server.timeout"
	KeyServerRequestsPerSecond   = "server.requests_per_second"
	KeyServerBurst               = "server.burst"
	KeySyncInterval              = "sync.interval"
	KeySyncRetryCeiling          = "sync.retry_ceiling"
	KeySyncPollInterval          = "sync.poll_interval"
	KeyConnectivityProbePath     = "connectivity.probe_path"
	KeyConnectivityProbeInterval = "connectivity.probe_interval"
	KeyConnectivityProbeTimeout  = "connectivity.probe_timeout"
	KeyStorageDataDir            = "storage.data_dir"
)

// ClientConfigKeys lists every recognised key, in display order.
func ClientConfigKeys() []string {
	return []string{
		KeyServerBaseURL,
		KeyServerToken,
		KeyServerTimeout,
		KeyServerRequestsPerSecond,
		KeyServerBurst,
		KeySyncInterval,
		KeySyncRetryCeiling,
		KeySyncPollInterval,
		KeyConnectivityProbePath,
		KeyConnectivityProbeInterval,
		KeyConnectivityProbeTimeout,
		KeyStorageDataDir,
	}
}

// ParseConfigValue validates raw for key and converts it to the type the
// config file stores: durations stay strings, counts become int64 and rates
// float64.
func ParseConfigValue(key, raw string) (any, error) {
	switch key {
	case KeyServerTimeout, KeySyncInterval, KeySyncPollInterval,
		KeyConnectivityProbeInterval, KeyConnectivityProbeTimeout:
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive duration such as 30s", ErrInvalidInput, key)
		}
		return d.String(), nil

	case KeyServerBurst, KeySyncRetryCeiling:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidInput, key)
		}
		return n, nil

	case KeyServerRequestsPerSecond:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("%w: %s must be a positive number", ErrInvalidInput, key)
		}
		return f, nil

	case KeyServerBaseURL:
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%w: %s must be an http(s) URL", ErrInvalidInput, key)
		}
		return raw, nil

	case KeyServerToken, KeyConnectivityProbePath, KeyStorageDataDir:
		return raw, nil

	default:
		return nil, fmt.Errorf("%w: unknown config key %q", ErrInvalidInput, key)
	}
}
