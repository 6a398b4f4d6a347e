package room

import (
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
)

// GameState is the running-match snapshot delivered with the in-game
// catch-up event.
type GameState struct {
	Frame   int
	StateID int
	Random  []int
	State   any
}

// Events is the callback surface of a Room. Set the fields you care about
// before Connect; nil fields are skipped. Callbacks run on the room's
// event goroutine, so they must not block on the room's own operations.
type Events struct {
	// Connected fires once the server has acknowledged the session,
	// alongside the action-specific RoomCreated or RoomJoined.
	Connected   func(r *Room, action Action)
	RoomCreated func(r *Room)
	RoomJoined  func(r *Room)

	// RoomIDObtained fires when a created room is assigned its join id.
	RoomIDObtained func(r *Room)

	Disconnected func(r *Room, err error)

	PlayerJoined func(r *Room, p *Player)
	PlayerLeft   func(r *Room, p *Player, timestamp int)

	// HostLeft reports the departed host and the promoted successor.
	// newHost is nil when the server closed the room.
	HostLeft    func(r *Room, oldHost, newHost *Player, timestamp int)
	HostChanged func(r *Room, oldHost *Player)

	// Move fires for every accepted move, from either transport. The
	// move is a snapshot taken at dispatch time.
	Move         func(r *Room, p *Player, move bonk.PlayerMove)
	MoveReverted func(r *Room, p *Player, move bonk.PlayerMove)

	PingUpdated       func(r *Room)
	TimeOffsetChanged func(r *Room, deltaMS int64)

	ReadyChanged func(r *Room, p *Player)
	ReadyReset   func(r *Room)

	PlayerMuted   func(r *Room, p *Player)
	PlayerUnmuted func(r *Room, p *Player)
	NameChanged   func(r *Room, p *Player, oldName string)

	GameStarted func(r *Room, unixTime int64, initialState any)
	GameEnded   func(r *Room)
	InGameState func(r *Room, state GameState)

	TeamChanged     func(r *Room, p *Player)
	TeamLockChanged func(r *Room)
	TeamsToggled    func(r *Room)

	Message func(r *Room, p *Player, text string)

	// Kicked fires when any player is kicked or banned; the room
	// disconnects itself afterwards if the target was this client.
	Kicked func(r *Room, p *Player, banned bool)

	ModeChanged   func(r *Room)
	RoundsChanged func(r *Room)
	MapChanged    func(r *Room)

	AFKWarned func(r *Room)

	// MapSuggested fires on the host with the full suggested map,
	// MapSuggestPreview on other clients with just its headline.
	MapSuggested      func(r *Room, p *Player, m *bonkmap.Map)
	MapSuggestPreview func(r *Room, p *Player, name, author string)

	BalanceChanged func(r *Room, p *Player)

	ReplayRecorded  func(r *Room, p *Player)
	FriendRequested func(r *Room, p *Player)

	Countdown        func(r *Room, number int)
	CountdownAborted func(r *Room)

	LeveledUp func(r *Room, p *Player)

	// XPGained reports the account's new total; newToken is non-empty
	// when the server rotated the session token with it.
	XPGained func(r *Room, newXP int, newToken string)

	PlayerTabbed        func(r *Room, p *Player)
	RoomNameChanged     func(r *Room)
	RoomPasswordChanged func(r *Room)

	// Error receives non-fatal server status errors.
	Error func(r *Room, err error)
}
