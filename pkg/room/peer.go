package room

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

// PeerMove is the payload exchanged on the direct peer channel. The
// fields mirror the socket move event so the two streams can be matched
// by sequence number.
type PeerMove struct {
	Sequence int        `json:"c"`
	Frame    int        `json:"f"`
	Inputs   bonk.Input `json:"i"`
}

// DataConn is one open move channel to another player.
type DataConn interface {
	// Peer is the remote transport id.
	Peer() string
	Open() bool
	Send(move PeerMove) error
	// OnMove registers the receive handler. Moves may arrive on any
	// goroutine.
	OnMove(fn func(move PeerMove))
	Close() error
}

// PeerTransport is the signalling fabric for direct move channels. The
// browser client uses WebRTC data channels for this; any transport that
// can open a DataConn by peer id fits.
type PeerTransport interface {
	// ID is the transport's own peer id, valid after Start.
	ID() string
	Start(ctx context.Context) error
	Connect(peerID string) (DataConn, error)
	// OnConnection registers the handler for inbound channels. Must be
	// set before Start.
	OnConnection(fn func(conn DataConn))
	Destroy() error
}

// NewPeerID returns a fresh transport id in the format the game expects:
// ten random uppercase letters or digits padded with six zeros.
func NewPeerID() string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b) + "000000"
}

// ErrPeerClosed is returned for sends on a closed data channel.
var ErrPeerClosed = errors.New("room: peer connection closed")

// ErrPeerUnknown is returned when a peer id has no reachable transport.
var ErrPeerUnknown = errors.New("room: unknown peer")

// LoopbackNetwork is an in-process peer fabric. Transports registered on
// the same network reach each other by peer id, which is enough for
// multi-room setups inside one process and for tests.
type LoopbackNetwork struct {
	mu         sync.Mutex
	transports map[string]*LoopbackTransport
}

func NewLoopbackNetwork() *LoopbackNetwork {
	return &LoopbackNetwork{transports: make(map[string]*LoopbackTransport)}
}

// Transport registers a new endpoint. An empty id gets a generated one.
func (n *LoopbackNetwork) Transport(id string) *LoopbackTransport {
	if id == "" {
		id = NewPeerID()
	}
	t := &LoopbackTransport{net: n, id: id}
	n.mu.Lock()
	n.transports[id] = t
	n.mu.Unlock()
	return t
}

func (n *LoopbackNetwork) lookup(id string) *LoopbackTransport {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.transports[id]
}

func (n *LoopbackNetwork) drop(id string) {
	n.mu.Lock()
	delete(n.transports, id)
	n.mu.Unlock()
}

// LoopbackTransport implements PeerTransport over a LoopbackNetwork.
type LoopbackTransport struct {
	net *LoopbackNetwork
	id  string

	mu        sync.Mutex
	started   bool
	onConn    func(DataConn)
	destroyed bool
}

func (t *LoopbackTransport) ID() string { return t.id }

func (t *LoopbackTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.destroyed {
		return ErrPeerClosed
	}
	t.started = true
	return nil
}

func (t *LoopbackTransport) OnConnection(fn func(DataConn)) {
	t.mu.Lock()
	t.onConn = fn
	t.mu.Unlock()
}

// Connect opens a channel pair to another transport on the network. The
// remote side sees the inbound half through its OnConnection handler.
func (t *LoopbackTransport) Connect(peerID string) (DataConn, error) {
	remote := t.net.lookup(peerID)
	if remote == nil {
		return nil, fmt.Errorf("%w: %s", ErrPeerUnknown, peerID)
	}
	local := &loopbackConn{peer: peerID, open: true}
	back := &loopbackConn{peer: t.id, open: true}
	local.remote = back
	back.remote = local

	remote.mu.Lock()
	fn := remote.onConn
	remote.mu.Unlock()
	if fn != nil {
		fn(back)
	}
	return local, nil
}

func (t *LoopbackTransport) Destroy() error {
	t.mu.Lock()
	t.destroyed = true
	t.mu.Unlock()
	t.net.drop(t.id)
	return nil
}

type loopbackConn struct {
	mu     sync.Mutex
	peer   string
	open   bool
	onMove func(PeerMove)
	remote *loopbackConn
}

func (c *loopbackConn) Peer() string { return c.peer }

func (c *loopbackConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *loopbackConn) OnMove(fn func(PeerMove)) {
	c.mu.Lock()
	c.onMove = fn
	c.mu.Unlock()
}

func (c *loopbackConn) Send(move PeerMove) error {
	c.mu.Lock()
	open, remote := c.open, c.remote
	c.mu.Unlock()
	if !open || remote == nil {
		return ErrPeerClosed
	}
	remote.mu.Lock()
	fn := remote.onMove
	ropen := remote.open
	remote.mu.Unlock()
	if !ropen {
		return ErrPeerClosed
	}
	if fn != nil {
		fn(move)
	}
	return nil
}

func (c *loopbackConn) Close() error {
	c.mu.Lock()
	c.open = false
	remote := c.remote
	c.mu.Unlock()
	if remote != nil {
		remote.mu.Lock()
		remote.open = false
		remote.mu.Unlock()
	}
	return nil
}
