package room

// EventCode is a numeric socket.io event name. The game server uses
// disjoint code spaces for the two directions.
type EventCode int

// Incoming event codes.
const (
	InPingData         EventCode = 1
	InRoomCreate       EventCode = 2
	InRoomJoin         EventCode = 3
	InPlayerJoin       EventCode = 4
	InPlayerLeft       EventCode = 5
	InHostLeft         EventCode = 6
	InPlayerMove       EventCode = 7
	InReadyChange      EventCode = 8
	InReadyReset       EventCode = 9
	InPlayerMute       EventCode = 10
	InPlayerUnmute     EventCode = 11
	InPlayerNameChange EventCode = 12
	InGameEnd          EventCode = 13
	InGameStart        EventCode = 15
	InStatus           EventCode = 16
	InPlayerTeamChange EventCode = 18
	InTeamLock         EventCode = 19
	InMessage          EventCode = 20
	InInformInLobby    EventCode = 21
	InTimeSync         EventCode = 23
	InKick             EventCode = 24
	InModeChange       EventCode = 26
	InRoundsChange     EventCode = 27
	InMapChange        EventCode = 29
	InAFKWarn          EventCode = 32
	InMapSuggestHost   EventCode = 33
	InMapSuggestClient EventCode = 34
	InSetBalance       EventCode = 36
	InTeamsToggle      EventCode = 39
	InReplayRecord     EventCode = 40
	InHostChange       EventCode = 41
	InFriendRequest    EventCode = 42
	InCountdown        EventCode = 43
	InCountdownAbort   EventCode = 44
	InLevelUp          EventCode = 45
	InXPGain           EventCode = 46
	InInformInGame     EventCode = 48
	InRoomIDObtain     EventCode = 49
	InPlayerTabbed     EventCode = 52
	InRoomNameChange   EventCode = 58
	InRoomPassChange   EventCode = 59
)

// Outgoing event codes.
const (
	OutPingData       EventCode = 1
	OutMove           EventCode = 4
	OutGameStart      EventCode = 5
	OutSetTeam        EventCode = 6
	OutSetTeamLock    EventCode = 7
	OutBan            EventCode = 9
	OutSendMessage    EventCode = 10
	OutInformInLobby  EventCode = 11
	OutCreateRoom     EventCode = 12
	OutJoinRoom       EventCode = 13
	OutSetReady       EventCode = 16
	OutResetReady     EventCode = 17
	OutTimeSync       EventCode = 18
	OutSetMode        EventCode = 20
	OutSetRounds      EventCode = 21
	OutSetBalance     EventCode = 29
	OutSetTeamState   EventCode = 32
	OutRecordReplay   EventCode = 33
	OutGiveHost       EventCode = 34
	OutFriendRequest  EventCode = 35
	OutXPGain         EventCode = 38
	OutSetTabbed      EventCode = 44
	OutEndRoom        EventCode = 50
	OutChangeRoomName EventCode = 52
	OutChangeRoomPass EventCode = 53
)

// Action distinguishes how a room session was opened.
type Action int

const (
	ActionCreate Action = iota
	ActionJoin
)

func (a Action) String() string {
	if a == ActionCreate {
		return "create"
	}
	return "join"
}
