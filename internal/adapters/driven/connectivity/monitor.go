package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/ports/driven"
	"github.com/swapsync/swapsync-cli/internal/logger"
)

// Ensure Monitor implements the interface.
var _ driven.Connectivity = (*Monitor)(nil)

var log = logger.Scope("connectivity")

// Pinger checks whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context, path string) error
}

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// Path is probed relative to the backend base URL.
	Path string

	// Interval between probes. Defaults to 10s.
	Interval time.Duration

	// Timeout bounds each probe. Defaults to 3s.
	Timeout time.Duration
}

// Monitor probes the backend periodically and publishes transitions.
// It starts in the offline state; the first successful probe emits online.
type Monitor struct {
	*hub
	pinger Pinger
	cfg    MonitorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewMonitor creates a monitor that probes through pinger.
func NewMonitor(pinger Pinger, cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &Monitor{
		hub:    newHub(false),
		pinger: pinger,
		cfg:    cfg,
	}
}

// Start probes once immediately and then on every interval until Stop or
// ctx cancellation. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})

	m.wg.Add(1)
	go m.loop(ctx, m.stopCh)
}

// Stop halts probing and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
}

// Probe checks reachability once and updates the state.
func (m *Monitor) Probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	err := m.pinger.Ping(probeCtx, m.cfg.Path)
	online := err == nil
	if m.set(online) {
		if online {
			log.Info("backend reachable")
		} else {
			log.Warn("backend unreachable: %v", err)
		}
	}
	return online
}

func (m *Monitor) loop(ctx context.Context, stopCh chan struct{}) {
	defer m.wg.Done()

	m.Probe(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}
