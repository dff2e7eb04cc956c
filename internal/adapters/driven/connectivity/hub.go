package connectivity

import (
	"sync"
	"time"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

// subscriberBuffer bounds how many undelivered transitions a slow subscriber
// may accumulate before further events to it are dropped.
const subscriberBuffer = 8

// hub tracks the current state and fans transitions out to subscribers.
type hub struct {
	mu     sync.RWMutex
	online bool
	subs   map[int]chan domain.ConnectivityEvent
	nextID int
}

func newHub(online bool) *hub {
	return &hub{
		online: online,
		subs:   make(map[int]chan domain.ConnectivityEvent),
	}
}

func (h *hub) Online() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.online
}

// set records the state and publishes an event if it changed.
func (h *hub) set(online bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.online == online {
		return false
	}
	h.online = online

	state := domain.ConnectivityOffline
	if online {
		state = domain.ConnectivityOnline
	}
	event := domain.ConnectivityEvent{State: state, At: time.Now()}
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return true
}

func (h *hub) Subscribe() (<-chan domain.ConnectivityEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan domain.ConnectivityEvent, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}
