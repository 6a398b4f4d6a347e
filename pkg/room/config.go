package room

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bonkgo-dev/bonkgo/pkg/avatar"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

// Reconciliation timing. A peer move unconfirmed by the socket stream
// for RevertAfter is reverted; moves older than RevertHorizon are left
// alone. RevertLimit reverts in a row escalate into a peer ban of
// PeerBanBase doubled per ban level.
const (
	DefaultRevertSweep   = 100 * time.Millisecond
	DefaultRevertAfter   = 800 * time.Millisecond
	DefaultRevertHorizon = 2 * time.Second
	DefaultRevertScan    = 1000
	DefaultRevertLimit   = 4
	DefaultPeerBanBase   = 15 * time.Second
)

// Room creation bounds enforced before any request is sent.
const (
	MinRoomPlayers = 1
	MaxRoomPlayers = 8
	MaxRoomLevel   = 999
)

// Identity is the account the room session acts as. The caller owns the
// token lifecycle; XPGained delivers rotated tokens back.
type Identity struct {
	Name   string
	Guest  bool
	Token  string
	DBID   int
	Level  int
	Avatar *avatar.Avatar
}

// CreateOptions parameterize a new room.
type CreateOptions struct {
	Name       string
	Password   string
	Unlisted   bool
	MaxPlayers int
	MinLevel   int
	MaxLevel   int
	Server     bonk.Server
}

// Validate checks the options against the server's accepted ranges.
func (o *CreateOptions) Validate() error {
	if o.MaxPlayers < MinRoomPlayers || o.MaxPlayers > MaxRoomPlayers {
		return fmt.Errorf("room: max players %d outside [%d, %d]", o.MaxPlayers, MinRoomPlayers, MaxRoomPlayers)
	}
	if o.MinLevel < 0 || o.MinLevel > o.MaxLevel {
		return fmt.Errorf("room: min level %d outside [0, %d]", o.MinLevel, o.MaxLevel)
	}
	if o.MaxLevel > MaxRoomLevel {
		return fmt.Errorf("room: max level %d above %d", o.MaxLevel, MaxRoomLevel)
	}
	return nil
}

// JoinOptions address an existing room.
type JoinOptions struct {
	Address  int
	Name     string
	Password string
	Bypass   string
	Server   bonk.Server
}

// Config carries the room session's collaborators and tunables. The zero
// value works; withDefaults fills the gaps.
type Config struct {
	Logger *slog.Logger

	// TracerName names the otel tracer event spans come from.
	TracerName string

	// Registry receives room metrics. Nil disables them.
	Registry prometheus.Registerer

	// DialSocket opens the server connection (default DialSocket).
	DialSocket SocketDialer

	// Peer is the direct move transport. Nil disables the peer channel
	// entirely; moves then arrive only over the socket.
	Peer PeerTransport

	// Now is the wall clock, injectable for tests.
	Now func() time.Time

	SyncInterval time.Duration
	SyncDelay    time.Duration
	SyncRepeat   int

	RevertSweep   time.Duration
	RevertAfter   time.Duration
	RevertHorizon time.Duration
	RevertScan    int
	RevertLimit   int
	PeerBanBase   time.Duration
}

func (c *Config) withDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.TracerName == "" {
		c.TracerName = "bonkgo/room"
	}
	if c.DialSocket == nil {
		c.DialSocket = DialSocket
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = defaultSyncInterval
	}
	if c.SyncDelay <= 0 {
		c.SyncDelay = defaultSyncDelay
	}
	if c.SyncRepeat <= 0 {
		c.SyncRepeat = defaultSyncRepeat
	}
	if c.RevertSweep <= 0 {
		c.RevertSweep = DefaultRevertSweep
	}
	if c.RevertAfter <= 0 {
		c.RevertAfter = DefaultRevertAfter
	}
	if c.RevertHorizon <= 0 {
		c.RevertHorizon = DefaultRevertHorizon
	}
	if c.RevertScan <= 0 {
		c.RevertScan = DefaultRevertScan
	}
	if c.RevertLimit <= 0 {
		c.RevertLimit = DefaultRevertLimit
	}
	if c.PeerBanBase <= 0 {
		c.PeerBanBase = DefaultPeerBanBase
	}
}
