package room

import (
	"time"

	"github.com/bonkgo-dev/bonkgo/pkg/avatar"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

const defaultPing = 105

// Player is one roster slot of a room. Mutable state is guarded by the
// owning room's lock; the exported accessors take it.
type Player struct {
	room *Room

	// Immutable after creation.
	ID     int
	PeerID string
	Name   string
	Guest  bool
	Avatar *avatar.Avatar

	// Guarded by room.mu.
	name         string
	level        int
	team         bonk.Team
	conn         DataConn
	ping         int
	ready        bool
	tabbed       bool
	muted        bool
	left         bool
	balance      int
	moves        map[int]*bonk.PlayerMove
	prevInputs   []FrameInput
	peerBanUntil time.Time
	peerBanLevel int
	peerReverts  int
}

// FrameInput is one frame's input snapshot from the in-game catch-up
// event.
type FrameInput struct {
	Frame  int
	Inputs bonk.Input
}

func newPlayer(r *Room, id int, name string, guest bool, level int, team bonk.Team, peerID string, av *avatar.Avatar) *Player {
	if av == nil {
		av = avatar.New()
	}
	return &Player{
		room:   r,
		ID:     id,
		PeerID: peerID,
		Name:   name,
		Guest:  guest,
		Avatar: av,
		name:   name,
		level:  level,
		team:   team,
		ping:   defaultPing,
		tabbed: true,
		moves:  make(map[int]*bonk.PlayerMove),
	}
}

// DisplayName is the player's current name, which the host can change.
func (p *Player) DisplayName() string {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.name
}

func (p *Player) Level() int {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.level
}

func (p *Player) Team() bonk.Team {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.team
}

func (p *Player) Ping() int {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.ping
}

func (p *Player) Ready() bool {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.ready
}

func (p *Player) Tabbed() bool {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.tabbed
}

func (p *Player) Muted() bool {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.muted
}

// Left reports whether the player has left the room. Departed players
// stay on the roster so ids keep resolving.
func (p *Player) Left() bool {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.left
}

// Balance is the player's handicap from the room's game settings.
func (p *Player) Balance() int {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.balance
}

// Move returns a snapshot of the move with the given sequence number.
func (p *Player) Move(sequence int) (bonk.PlayerMove, bool) {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	m, ok := p.moves[sequence]
	if !ok {
		return bonk.PlayerMove{}, false
	}
	return *m, true
}

// MoveCount reports how many moves are recorded for the player.
func (p *Player) MoveCount() int {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return len(p.moves)
}

// PeerBanned reports whether peer moves from this player are currently
// ignored.
func (p *Player) PeerBanned() bool {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.room.cfg.Now().Before(p.peerBanUntil)
}

// IsHost reports whether this player currently hosts the room.
func (p *Player) IsHost() bool {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.room.host == p
}

// IsSelf reports whether this roster slot is the local client.
func (p *Player) IsSelf() bool {
	p.room.mu.Lock()
	defer p.room.mu.Unlock()
	return p.room.self == p
}

// Kick removes the player from the room. Host only.
func (p *Player) Kick() error {
	if err := p.room.requireHost(); err != nil {
		return err
	}
	return p.room.emit(OutBan, map[string]any{"banshortid": p.ID, "kickonly": true})
}

// Ban removes the player and blocks rejoining. Host only.
func (p *Player) Ban() error {
	if err := p.room.requireHost(); err != nil {
		return err
	}
	return p.room.emit(OutBan, map[string]any{"banshortid": p.ID, "kickonly": false})
}

// SetTeam moves the player onto a team. Host only.
func (p *Player) SetTeam(team bonk.Team) error {
	if err := p.room.requireHost(); err != nil {
		return err
	}
	return p.room.emit(OutSetBalance, map[string]any{"targetID": p.ID, "targetTeam": int(team)})
}

// SetBalance applies a handicap between bonk.MinBalance and
// bonk.MaxBalance. Host only.
func (p *Player) SetBalance(balance int) error {
	if err := p.room.requireHost(); err != nil {
		return err
	}
	if err := bonk.ValidateBalance(balance); err != nil {
		return err
	}
	return p.room.emit(OutSetBalance, map[string]any{"sid": p.ID, "bal": balance})
}

// GiveHost hands the room over to this player. Host only.
func (p *Player) GiveHost() error {
	if err := p.room.requireHost(); err != nil {
		return err
	}
	return p.room.emit(OutGiveHost, map[string]any{"id": p.ID})
}

// SendFriendRequest asks the player's account for friendship.
func (p *Player) SendFriendRequest() error {
	return p.room.emit(OutFriendRequest, map[string]any{"id": p.ID})
}
