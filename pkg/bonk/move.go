package bonk

import "time"

// PlayerMove is one recorded move of a player. Moves arrive over the
// game socket, over the direct peer channel, or both; the reconciliation
// engine compares the two streams and marks moves accordingly.
type PlayerMove struct {
	Frame    int
	Inputs   Input
	Sequence int
	Time     time.Time

	BySocket    bool
	ByPeer      bool
	Reverted    bool
	Unreverted  bool
	PeerIgnored bool
}

// Valid reports whether the move counts toward the simulation. A reverted
// move becomes valid again once a socket copy confirms it.
func (m *PlayerMove) Valid() bool {
	return !m.Reverted || m.Unreverted
}
