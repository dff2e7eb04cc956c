package driven

import "github.com/swapsync/swapsync-cli/internal/core/domain"

// Connectivity reports whether the server is reachable.
type Connectivity interface {
	// Online returns the current reachability.
	Online() bool

	// Subscribe returns a channel of transitions and a function that
	// unsubscribes and closes it.
	Subscribe() (<-chan domain.ConnectivityEvent, func())
}
