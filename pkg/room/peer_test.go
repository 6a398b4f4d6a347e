package room

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

func TestNewPeerID(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{10}000000$`)
	seen := map[string]bool{}
	for i := 0; i < 32; i++ {
		id := NewPeerID()
		if !re.MatchString(id) {
			t.Fatalf("NewPeerID() = %q", id)
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Error("peer ids are not random")
	}
}

func TestLoopbackConnect(t *testing.T) {
	net := NewLoopbackNetwork()
	a := net.Transport("A000000")
	b := net.Transport("B000000")

	var inbound DataConn
	b.OnConnection(func(c DataConn) { inbound = c })
	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	conn, err := a.Connect("B000000")
	if err != nil {
		t.Fatal(err)
	}
	if conn.Peer() != "B000000" {
		t.Errorf("outbound peer = %q", conn.Peer())
	}
	if inbound == nil {
		t.Fatal("remote side saw no connection")
	}
	if inbound.Peer() != "A000000" {
		t.Errorf("inbound peer = %q", inbound.Peer())
	}

	var got []PeerMove
	inbound.OnMove(func(m PeerMove) { got = append(got, m) })
	if err := conn.Send(PeerMove{Sequence: 0, Frame: 7, Inputs: 3}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Frame != 7 || got[0].Inputs != 3 {
		t.Fatalf("received %+v", got)
	}

	if err := inbound.Close(); err != nil {
		t.Fatal(err)
	}
	if err := conn.Send(PeerMove{Sequence: 1}); !errors.Is(err, ErrPeerClosed) {
		t.Errorf("send to closed channel = %v", err)
	}
}

func TestLoopbackUnknownPeer(t *testing.T) {
	net := NewLoopbackNetwork()
	a := net.Transport("")
	if _, err := a.Connect("NOPE000000"); !errors.Is(err, ErrPeerUnknown) {
		t.Errorf("Connect(unknown) = %v", err)
	}
}

func TestLoopbackDestroy(t *testing.T) {
	net := NewLoopbackNetwork()
	a := net.Transport("A000000")
	b := net.Transport("B000000")
	if err := b.Destroy(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Connect("B000000"); !errors.Is(err, ErrPeerUnknown) {
		t.Errorf("Connect(destroyed) = %v", err)
	}
	if err := b.Start(context.Background()); !errors.Is(err, ErrPeerClosed) {
		t.Errorf("Start after Destroy = %v", err)
	}
}

// Moves flowing over the loopback fabric reach the room's move table the
// same way socket moves do.
func TestRoomPeerChannelFlow(t *testing.T) {
	clock := newFakeClock()
	r, _ := newJoinedRoom(t, clock)

	fabric := NewLoopbackNetwork()
	self := fabric.Transport(testSelfPeer)
	alice := fabric.Transport(testAlicePeer)

	r.cfg.Peer = self
	self.OnConnection(r.handlePeerConn)
	if err := self.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := alice.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	var moveCount int
	r.Events.Move = func(*Room, *Player, bonk.PlayerMove) { moveCount++ }

	conn, err := alice.Connect(testSelfPeer)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.Send(PeerMove{Sequence: 0, Frame: 3, Inputs: 1}); err != nil {
		t.Fatal(err)
	}

	m, ok := r.PlayerByID(0).Move(0)
	if !ok || !m.ByPeer || m.Frame != 3 {
		t.Fatalf("move = %+v ok=%v", m, ok)
	}
	if moveCount != 1 {
		t.Errorf("Move fired %d times, want 1", moveCount)
	}
}
