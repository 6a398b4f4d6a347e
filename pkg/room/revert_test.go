package room

import (
	"testing"
	"time"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

func peerMoveAt(clock *fakeClock, seq int) *bonk.PlayerMove {
	return &bonk.PlayerMove{
		Frame:    seq,
		Sequence: seq,
		Time:     clock.Now(),
		ByPeer:   true,
	}
}

func TestSweepRevertsStalePeerMove(t *testing.T) {
	clock := newFakeClock()
	r, _ := newJoinedRoom(t, clock)
	alice := r.PlayerByID(0)

	r.mu.Lock()
	alice.moves[0] = peerMoveAt(clock, 0)
	r.mu.Unlock()

	// Not yet stale.
	clock.Advance(500 * time.Millisecond)
	if got := r.sweepReverts(); len(got) != 0 {
		t.Fatalf("reverted a fresh move: %+v", got)
	}

	clock.Advance(500 * time.Millisecond)
	got := r.sweepReverts()
	if len(got) != 1 {
		t.Fatalf("reverted %d moves, want 1", len(got))
	}
	if got[0].player != alice || !got[0].move.Reverted || got[0].banned {
		t.Errorf("revert = %+v", got[0])
	}
	if m, _ := alice.Move(0); m.Valid() {
		t.Error("reverted move still valid")
	}

	// Already reverted moves are not reported twice.
	if again := r.sweepReverts(); len(again) != 0 {
		t.Errorf("second sweep reverted %d moves", len(again))
	}
}

func TestSweepSkipsConfirmedAndAncientMoves(t *testing.T) {
	clock := newFakeClock()
	r, _ := newJoinedRoom(t, clock)
	alice := r.PlayerByID(0)

	r.mu.Lock()
	ancient := peerMoveAt(clock, 0)
	alice.moves[0] = ancient
	r.mu.Unlock()
	clock.Advance(3 * time.Second)

	r.mu.Lock()
	confirmed := peerMoveAt(clock, 1)
	confirmed.BySocket = true
	alice.moves[1] = confirmed
	r.mu.Unlock()
	clock.Advance(time.Second)

	if got := r.sweepReverts(); len(got) != 0 {
		t.Errorf("sweep reverted %d moves, want 0", len(got))
	}
	if m, _ := alice.Move(0); m.Reverted {
		t.Error("move beyond the horizon was reverted")
	}
}

func TestSweepEscalatesToBan(t *testing.T) {
	clock := newFakeClock()
	r, _ := newJoinedRoom(t, clock)
	alice := r.PlayerByID(0)

	total := 0
	for round := 0; round < DefaultRevertLimit; round++ {
		r.mu.Lock()
		alice.moves[round] = peerMoveAt(clock, round)
		r.mu.Unlock()
		clock.Advance(time.Second)
		got := r.sweepReverts()
		total += len(got)
		if round < DefaultRevertLimit-1 {
			if len(got) != 1 || got[0].banned {
				t.Fatalf("round %d: %+v", round, got)
			}
		} else if len(got) != 1 || !got[0].banned {
			t.Fatalf("final round did not ban: %+v", got)
		}
	}
	if total != DefaultRevertLimit {
		t.Errorf("reverted %d moves", total)
	}
	if !alice.PeerBanned() {
		t.Error("player not peer banned")
	}
	r.mu.Lock()
	level, reverts, until := alice.peerBanLevel, alice.peerReverts, alice.peerBanUntil
	r.mu.Unlock()
	if level != 1 || reverts != 0 {
		t.Errorf("ban level = %d, reverts = %d", level, reverts)
	}
	if want := clock.Now().Add(2 * DefaultPeerBanBase); !until.Equal(want) {
		t.Errorf("ban until = %v, want %v", until, want)
	}

	// The ban lapses and the window doubles on the next offense.
	clock.Advance(2*DefaultPeerBanBase + time.Second)
	if alice.PeerBanned() {
		t.Error("ban did not lapse")
	}
	for round := 0; round < DefaultRevertLimit; round++ {
		seq := DefaultRevertLimit + round
		r.mu.Lock()
		alice.moves[seq] = peerMoveAt(clock, seq)
		r.mu.Unlock()
	}
	clock.Advance(time.Second)
	r.sweepReverts()
	r.mu.Lock()
	level = alice.peerBanLevel
	until = alice.peerBanUntil
	r.mu.Unlock()
	if level != 2 {
		t.Errorf("ban level = %d, want 2", level)
	}
	if want := clock.Now().Add(4 * DefaultPeerBanBase); !until.Equal(want) {
		t.Errorf("ban until = %v, want %v", until, want)
	}
}

func TestSweepIgnoresDepartedPlayers(t *testing.T) {
	clock := newFakeClock()
	r, _ := newJoinedRoom(t, clock)
	alice := r.PlayerByID(0)

	r.mu.Lock()
	alice.moves[0] = peerMoveAt(clock, 0)
	alice.left = true
	r.mu.Unlock()
	clock.Advance(time.Second)

	if got := r.sweepReverts(); len(got) != 0 {
		t.Errorf("sweep touched a departed player: %+v", got)
	}
}
