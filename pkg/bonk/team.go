// Package bonk holds the shared value types of the bonk.io protocol:
// teams, game modes, servers, input flags, moves, key-bind settings,
// experience math and the API error taxonomy.
package bonk

import "fmt"

// Protocol constants shared across the client.
const (
	ProtocolVersion = 49
	MapVersion      = 15
)

// Team is a player's team slot.
type Team int16

const (
	TeamSpectator Team = 0
	TeamFFA       Team = 1
	TeamRed       Team = 2
	TeamBlue      Team = 3
	TeamGreen     Team = 4
	TeamYellow    Team = 5
)

func (t Team) String() string {
	switch t {
	case TeamSpectator:
		return "spectator"
	case TeamFFA:
		return "ffa"
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	case TeamGreen:
		return "green"
	case TeamYellow:
		return "yellow"
	}
	return fmt.Sprintf("team(%d)", int16(t))
}

// Playing reports whether the team takes part in rounds.
func (t Team) Playing() bool { return t != TeamSpectator }

// TeamState is the room's team arrangement.
type TeamState int

const (
	TeamStateFFA TeamState = iota
	TeamStateDuo
	TeamStateAll
)

func (s TeamState) String() string {
	switch s {
	case TeamStateFFA:
		return "ffa"
	case TeamStateDuo:
		return "duo"
	case TeamStateAll:
		return "all"
	}
	return fmt.Sprintf("teamstate(%d)", int(s))
}
