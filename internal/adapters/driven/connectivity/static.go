package connectivity

import "github.com/swapsync/swapsync-cli/internal/core/ports/driven"

// Ensure Static implements the interface.
var _ driven.Connectivity = (*Static)(nil)

// Static reports whatever state was last set.
type Static struct {
	*hub
}

// NewStatic creates a static connectivity source in the given state.
func NewStatic(online bool) *Static {
	return &Static{hub: newHub(online)}
}

// SetOnline changes the state, notifying subscribers on a transition.
func (s *Static) SetOnline(online bool) {
	s.set(online)
}
