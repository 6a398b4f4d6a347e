package room

import (
	"encoding/json"
	"fmt"

	"github.com/bonkgo-dev/bonkgo/pkg/avatar"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
	"github.com/bonkgo-dev/bonkgo/pkg/pson"
)

// rosterPlayer is the roster entry shape used by the room join and
// player join events.
type rosterPlayer struct {
	PeerID string         `json:"peerID"`
	Name   string         `json:"userName"`
	Guest  bool           `json:"guest"`
	Level  int            `json:"level"`
	Team   int            `json:"team"`
	Ready  bool           `json:"ready"`
	Tabbed bool           `json:"tabbed"`
	Avatar *avatar.Avatar `json:"avatar"`
}

func (r *Room) dispatchEvent(code EventCode, args []json.RawMessage) error {
	switch code {
	case InPingData:
		return r.onPingData(args)
	case InRoomCreate:
		return r.onRoomCreate()
	case InRoomJoin:
		return r.onRoomJoin(args)
	case InPlayerJoin:
		return r.onPlayerJoin(args)
	case InPlayerLeft:
		return r.onPlayerLeft(args)
	case InHostLeft:
		return r.onHostLeft(args)
	case InPlayerMove:
		return r.onMove(args)
	case InReadyChange:
		return r.onReadyChange(args)
	case InReadyReset:
		return r.onReadyReset()
	case InPlayerMute:
		return r.onMute(args, true)
	case InPlayerUnmute:
		return r.onMute(args, false)
	case InPlayerNameChange:
		return r.onNameChange(args)
	case InGameEnd:
		return r.onGameEnd()
	case InGameStart:
		return r.onGameStart(args)
	case InStatus:
		return r.onStatus(args)
	case InPlayerTeamChange:
		return r.onTeamChange(args)
	case InTeamLock:
		return r.onTeamLock(args)
	case InMessage:
		return r.onMessage(args)
	case InInformInLobby:
		return r.onInformInLobby(args)
	case InTimeSync:
		return r.onTimeSync(args)
	case InKick:
		return r.onKick(args)
	case InModeChange:
		return r.onModeChange(args)
	case InRoundsChange:
		return r.onRoundsChange(args)
	case InMapChange:
		return r.onMapChange(args)
	case InAFKWarn:
		return r.onAFKWarn()
	case InMapSuggestHost:
		return r.onMapSuggestHost(args)
	case InMapSuggestClient:
		return r.onMapSuggestClient(args)
	case InSetBalance:
		return r.onSetBalance(args)
	case InTeamsToggle:
		return r.onTeamsToggle(args)
	case InReplayRecord:
		return r.onReplayRecord(args)
	case InHostChange:
		return r.onHostChange(args)
	case InFriendRequest:
		return r.onFriendRequest(args)
	case InCountdown:
		return r.onCountdown(args)
	case InCountdownAbort:
		return r.onCountdownAbort()
	case InLevelUp:
		return r.onLevelUp(args)
	case InXPGain:
		return r.onXPGain(args)
	case InInformInGame:
		return r.onInformInGame(args)
	case InRoomIDObtain:
		return r.onRoomIDObtain(args)
	case InPlayerTabbed:
		return r.onTabbed(args)
	case InRoomNameChange:
		return r.onRoomNameChange(args)
	case InRoomPassChange:
		return r.onRoomPassChange(args)
	default:
		r.log.Debug("unhandled event", "code", int(code))
		return nil
	}
}

func (r *Room) onPingData(args []json.RawMessage) error {
	var pings map[string]int
	var playerID int
	if err := decodeArgs(args, &pings, &playerID); err != nil {
		return err
	}
	// The server expects an echo before the next ping round.
	if err := r.emit(OutPingData, map[string]any{"id": playerID}); err != nil {
		return err
	}
	r.mu.Lock()
	for id, ping := range pings {
		var pid int
		if _, err := fmt.Sscanf(id, "%d", &pid); err != nil {
			continue
		}
		if p := r.playerByIDLocked(pid); p != nil {
			p.ping = ping
		}
	}
	r.mu.Unlock()
	if f := r.Events.PingUpdated; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onRoomCreate() error {
	if f := r.Events.Connected; f != nil {
		f(r, ActionCreate)
	}
	if f := r.Events.RoomCreated; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onRoomJoin(args []json.RawMessage) error {
	var (
		selfID   int
		hostID   int
		roster   []*rosterPlayer
		ts       int
		teamLock bool
		joinID   int
		bypass   string
	)
	if err := decodeArgs(args, &selfID, &hostID, &roster, &ts, &teamLock, &joinID, &bypass); err != nil {
		return err
	}

	var dial []*Player
	r.mu.Lock()
	r.joinID = fmt.Sprintf("%06d", joinID)
	r.joinBypass = bypass
	r.teamLock = teamLock
	for i, data := range roster {
		if data == nil {
			// Vacated slot: keep a placeholder so ids stay resolvable.
			ghost := newPlayer(r, i, "Unknown", true, 0, bonk.TeamSpectator, "", nil)
			ghost.left = true
			r.players = append(r.players, ghost)
			continue
		}
		p := newPlayer(r, i, data.Name, data.Guest, data.Level, bonk.Team(data.Team), data.PeerID, data.Avatar)
		p.ready = data.Ready
		p.tabbed = data.Tabbed
		if i == selfID {
			r.self = p
		} else {
			dial = append(dial, p)
		}
		r.players = append(r.players, p)
	}
	r.host = r.playerByIDLocked(hostID)
	r.mu.Unlock()

	if r.cfg.Peer != nil {
		for _, p := range dial {
			go r.dialPeer(p)
		}
	}
	r.markConnected()
	if f := r.Events.Connected; f != nil {
		f(r, ActionJoin)
	}
	if f := r.Events.RoomJoined; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onPlayerJoin(args []json.RawMessage) error {
	var (
		id     int
		peerID string
		name   string
		guest  bool
		level  int
		team   int
		av     *avatar.Avatar
	)
	if err := decodeArgs(args, &id, &peerID, &name, &guest, &level, &team, &av); err != nil {
		return err
	}

	r.mu.Lock()
	p := newPlayer(r, id, name, guest, level, bonk.Team(team), peerID, av)
	// The joiner dials us; adopt the channel if it already arrived.
	for _, c := range r.conns {
		if c.Peer() == peerID {
			p.conn = c
			break
		}
	}
	r.players = append(r.players, p)
	gs := r.settingsLocked()
	r.mu.Unlock()

	if err := r.emit(OutInformInLobby, map[string]any{"sid": id, "gs": gs}); err != nil {
		return err
	}
	select {
	case r.playerCh <- p:
	default:
	}
	if f := r.Events.PlayerJoined; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onPlayerLeft(args []json.RawMessage) error {
	var id, ts int
	if err := decodeArgs(args, &id, &ts); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	var conn DataConn
	if p != nil {
		p.left = true
		conn = p.conn
		p.conn = nil
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: unknown player %d left", id)
	}
	if conn != nil {
		conn.Close()
	}
	if f := r.Events.PlayerLeft; f != nil {
		f(r, p, ts)
	}
	return nil
}

func (r *Room) onHostLeft(args []json.RawMessage) error {
	var oldID, newID, ts int
	if err := decodeArgs(args, &oldID, &newID, &ts); err != nil {
		return err
	}
	r.mu.Lock()
	old := r.playerByIDLocked(oldID)
	var conn DataConn
	if old != nil {
		old.left = true
		conn = old.conn
		old.conn = nil
	}
	var next *Player
	if newID != -1 {
		next = r.playerByIDLocked(newID)
	}
	r.host = next
	r.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	if f := r.Events.HostLeft; f != nil {
		f(r, old, next, ts)
	}
	if next == nil {
		// The server closes the room when no successor exists.
		r.teardown(nil)
	}
	return nil
}

func (r *Room) onMove(args []json.RawMessage) error {
	var id int
	var pm PeerMove
	if err := decodeArgs(args, &id, &pm); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	if p == nil {
		r.mu.Unlock()
		return fmt.Errorf("room: move from unknown player %d", id)
	}
	var snapshot *bonk.PlayerMove
	if move, ok := p.moves[pm.Sequence]; ok {
		move.BySocket = true
		if move.Reverted {
			move.Unreverted = true
			s := *move
			snapshot = &s
		} else if move.PeerIgnored {
			s := *move
			snapshot = &s
		}
	} else {
		move := &bonk.PlayerMove{
			Frame:    pm.Frame,
			Inputs:   pm.Inputs,
			Sequence: pm.Sequence,
			Time:     r.cfg.Now(),
			BySocket: true,
		}
		p.moves[pm.Sequence] = move
		s := *move
		snapshot = &s
	}
	r.mu.Unlock()
	if snapshot != nil {
		r.metrics.move()
		if f := r.Events.Move; f != nil {
			f(r, p, *snapshot)
		}
	}
	return nil
}

// handlePeerConn runs for every incoming or outgoing peer channel.
func (r *Room) handlePeerConn(conn DataConn) {
	r.mu.Lock()
	r.conns = append(r.conns, conn)
	for _, p := range r.players {
		if p.PeerID != "" && p.PeerID == conn.Peer() {
			p.conn = conn
			break
		}
	}
	r.mu.Unlock()
	conn.OnMove(func(pm PeerMove) {
		r.handlePeerMove(conn, pm)
	})
}

// dialPeer opens our side of the channel to an already present player.
func (r *Room) dialPeer(p *Player) {
	conn, err := r.cfg.Peer.Connect(p.PeerID)
	if err != nil {
		r.log.Warn("peer dial failed", "peer", p.PeerID, "error", err)
		return
	}
	r.handlePeerConn(conn)
}

// handlePeerMove ingests a move from the direct channel. A socket copy
// seen first just gets confirmed; a banned peer is dropped silently.
func (r *Room) handlePeerMove(conn DataConn, pm PeerMove) {
	r.mu.Lock()
	var p *Player
	for _, cand := range r.players {
		if cand.PeerID != "" && cand.PeerID == conn.Peer() {
			p = cand
			break
		}
	}
	if p == nil {
		r.mu.Unlock()
		return
	}
	now := r.cfg.Now()
	var snapshot *bonk.PlayerMove
	if move, ok := p.moves[pm.Sequence]; ok {
		move.ByPeer = true
	} else if now.Before(p.peerBanUntil) {
		// Ignored until the ban lapses.
	} else {
		move := &bonk.PlayerMove{
			Frame:    pm.Frame,
			Inputs:   pm.Inputs,
			Sequence: pm.Sequence,
			Time:     now,
			ByPeer:   true,
		}
		p.moves[pm.Sequence] = move
		s := *move
		snapshot = &s
	}
	r.mu.Unlock()
	if snapshot != nil {
		r.metrics.move()
		if f := r.Events.Move; f != nil {
			f(r, p, *snapshot)
		}
	}
}

func (r *Room) onReadyChange(args []json.RawMessage) error {
	var id int
	var state bool
	if err := decodeArgs(args, &id, &state); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	if p != nil {
		p.ready = state
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: ready change for unknown player %d", id)
	}
	if f := r.Events.ReadyChanged; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onReadyReset() error {
	r.mu.Lock()
	for _, p := range r.players {
		p.ready = false
	}
	r.mu.Unlock()
	if f := r.Events.ReadyReset; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onMute(args []json.RawMessage, muted bool) error {
	var id int
	if err := decodeArgs(args, &id); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	if p != nil {
		p.muted = muted
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: mute change for unknown player %d", id)
	}
	if muted {
		if f := r.Events.PlayerMuted; f != nil {
			f(r, p)
		}
	} else {
		if f := r.Events.PlayerUnmuted; f != nil {
			f(r, p)
		}
	}
	return nil
}

func (r *Room) onNameChange(args []json.RawMessage) error {
	var id int
	var newName string
	if err := decodeArgs(args, &id, &newName); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	var oldName string
	if p != nil {
		oldName = p.name
		p.name = newName
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: name change for unknown player %d", id)
	}
	if f := r.Events.NameChanged; f != nil {
		f(r, p, oldName)
	}
	return nil
}

func (r *Room) onGameEnd() error {
	if f := r.Events.GameEnded; f != nil {
		f(r)
	}
	r.mu.Lock()
	for _, p := range r.players {
		p.moves = make(map[int]*bonk.PlayerMove)
		p.prevInputs = nil
		p.peerReverts = 0
	}
	r.mu.Unlock()
	return nil
}

// decodeGameState unwraps the compressed match snapshot the server sends
// with game start and in-game catch-up events.
func decodeGameState(encoded string) (any, error) {
	buf, err := bytebuf.FromBase64(encoded, bytebuf.LittleEndian, bytebuf.Transform{
		LZCompressed: true,
		CaseSwapped:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("room: game state: %w", err)
	}
	state, err := pson.NewRoomPair().Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("room: game state: %w", err)
	}
	return state, nil
}

func (r *Room) onGameStart(args []json.RawMessage) error {
	var unixTime int64
	var encoded string
	var gs json.RawMessage
	if err := decodeArgs(args, &unixTime, &encoded, &gs); err != nil {
		return err
	}
	r.mu.Lock()
	for _, p := range r.players {
		p.moves = make(map[int]*bonk.PlayerMove)
		p.prevInputs = nil
	}
	r.mu.Unlock()
	if err := r.applySettings(gs); err != nil {
		return err
	}
	state, err := decodeGameState(encoded)
	if err != nil {
		return err
	}
	if f := r.Events.GameStarted; f != nil {
		f(r, unixTime, state)
	}
	return nil
}

func (r *Room) onStatus(args []json.RawMessage) error {
	if len(args) == 0 {
		return fmt.Errorf("room: status event without code")
	}
	code, err := stringArg(args[0])
	if err != nil {
		return err
	}
	if code != bonk.RateLimitPong {
		if f := r.Events.Error; f != nil {
			f(r, bonk.NewAPIError(code))
		}
	}
	if bonk.CriticalStatus(code) {
		r.teardown(bonk.NewAPIError(code))
	}
	return nil
}

func (r *Room) onTeamChange(args []json.RawMessage) error {
	var id, team int
	if err := decodeArgs(args, &id, &team); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	if p != nil {
		p.team = bonk.Team(team)
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: team change for unknown player %d", id)
	}
	if f := r.Events.TeamChanged; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onTeamLock(args []json.RawMessage) error {
	var state bool
	if err := decodeArgs(args, &state); err != nil {
		return err
	}
	r.mu.Lock()
	r.teamLock = state
	r.mu.Unlock()
	if f := r.Events.TeamLockChanged; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onMessage(args []json.RawMessage) error {
	var id int
	if err := decodeArgs(args, &id); err != nil {
		return err
	}
	var text string
	if len(args) > 1 {
		var err error
		if text, err = stringArg(args[1]); err != nil {
			return err
		}
	}
	p := r.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("room: message from unknown player %d", id)
	}
	if f := r.Events.Message; f != nil {
		f(r, p, text)
	}
	return nil
}

func (r *Room) onInformInLobby(args []json.RawMessage) error {
	if len(args) == 0 {
		return fmt.Errorf("room: lobby inform without settings")
	}
	return r.applySettings(args[0])
}

func (r *Room) onTimeSync(args []json.RawMessage) error {
	var res struct {
		ID     int     `json:"id"`
		Result float64 `json:"result"`
	}
	if err := decodeArgs(args, &res); err != nil {
		return err
	}
	if r.syncer != nil {
		r.syncer.HandleResult(res.ID, res.Result)
	}
	return nil
}

func (r *Room) onKick(args []json.RawMessage) error {
	var id int
	var isBan bool
	if err := decodeArgs(args, &id, &isBan); err != nil {
		return err
	}
	p := r.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("room: kick of unknown player %d", id)
	}
	if f := r.Events.Kicked; f != nil {
		f(r, p, isBan)
	}
	if p.IsSelf() {
		r.teardown(nil)
	}
	return nil
}

func (r *Room) onModeChange(args []json.RawMessage) error {
	var engine, code string
	if err := decodeArgs(args, &engine, &code); err != nil {
		return err
	}
	mode, err := bonk.ModeFromCode(code)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.mode = mode
	r.mu.Unlock()
	if f := r.Events.ModeChanged; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onRoundsChange(args []json.RawMessage) error {
	var rounds int
	if err := decodeArgs(args, &rounds); err != nil {
		return err
	}
	r.mu.Lock()
	r.rounds = rounds
	r.mu.Unlock()
	if f := r.Events.RoundsChanged; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onMapChange(args []json.RawMessage) error {
	var encoded string
	if err := decodeArgs(args, &encoded); err != nil {
		return err
	}
	m, err := bonkmap.DecodeDatabase(encoded)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.gameMap = m
	r.mu.Unlock()
	if f := r.Events.MapChanged; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onAFKWarn() error {
	if f := r.Events.AFKWarned; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onMapSuggestHost(args []json.RawMessage) error {
	var encoded string
	var id int
	if err := decodeArgs(args, &encoded, &id); err != nil {
		return err
	}
	p := r.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("room: map suggestion from unknown player %d", id)
	}
	m, err := bonkmap.DecodeDatabase(encoded)
	if err != nil {
		return err
	}
	if f := r.Events.MapSuggested; f != nil {
		f(r, p, m)
	}
	return nil
}

func (r *Room) onMapSuggestClient(args []json.RawMessage) error {
	var name, author string
	var id int
	if err := decodeArgs(args, &name, &author, &id); err != nil {
		return err
	}
	p := r.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("room: map suggestion from unknown player %d", id)
	}
	if f := r.Events.MapSuggestPreview; f != nil {
		f(r, p, name, author)
	}
	return nil
}

func (r *Room) onSetBalance(args []json.RawMessage) error {
	var id, balance int
	if err := decodeArgs(args, &id, &balance); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	if p != nil {
		p.balance = balance
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: balance change for unknown player %d", id)
	}
	if f := r.Events.BalanceChanged; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onTeamsToggle(args []json.RawMessage) error {
	var state bool
	if err := decodeArgs(args, &state); err != nil {
		return err
	}
	r.mu.Lock()
	r.teamState = teamStateFor(state, r.mode)
	r.mu.Unlock()
	if f := r.Events.TeamsToggled; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onReplayRecord(args []json.RawMessage) error {
	var id int
	if err := decodeArgs(args, &id); err != nil {
		return err
	}
	p := r.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("room: replay record by unknown player %d", id)
	}
	if f := r.Events.ReplayRecorded; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onHostChange(args []json.RawMessage) error {
	var data struct {
		OldHost int `json:"oldHost"`
		NewHost int `json:"newHost"`
	}
	if err := decodeArgs(args, &data); err != nil {
		return err
	}
	r.mu.Lock()
	old := r.playerByIDLocked(data.OldHost)
	r.host = r.playerByIDLocked(data.NewHost)
	r.mu.Unlock()
	if f := r.Events.HostChanged; f != nil {
		f(r, old)
	}
	return nil
}

func (r *Room) onFriendRequest(args []json.RawMessage) error {
	var id int
	if err := decodeArgs(args, &id); err != nil {
		return err
	}
	p := r.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("room: friend request from unknown player %d", id)
	}
	if f := r.Events.FriendRequested; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onCountdown(args []json.RawMessage) error {
	var number int
	if err := decodeArgs(args, &number); err != nil {
		return err
	}
	if f := r.Events.Countdown; f != nil {
		f(r, number)
	}
	return nil
}

func (r *Room) onCountdownAbort() error {
	if f := r.Events.CountdownAborted; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onLevelUp(args []json.RawMessage) error {
	var data struct {
		SID   int `json:"sid"`
		Level int `json:"lv"`
	}
	if err := decodeArgs(args, &data); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(data.SID)
	if p != nil {
		p.level = data.Level
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: level up for unknown player %d", data.SID)
	}
	if f := r.Events.LeveledUp; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onXPGain(args []json.RawMessage) error {
	var data struct {
		NewXP    int    `json:"newXP"`
		NewToken string `json:"newToken"`
	}
	if err := decodeArgs(args, &data); err != nil {
		return err
	}
	if f := r.Events.XPGained; f != nil {
		f(r, data.NewXP, data.NewToken)
	}
	return nil
}

func (r *Room) onInformInGame(args []json.RawMessage) error {
	var data struct {
		State   string          `json:"state"`
		StateID int             `json:"stateID"`
		Random  []int           `json:"random"`
		Frame   int             `json:"fc"`
		GS      json.RawMessage `json:"gs"`
		Inputs  []struct {
			Player int        `json:"p"`
			Frame  int        `json:"f"`
			Inputs bonk.Input `json:"i"`
		} `json:"inputs"`
	}
	if err := decodeArgs(args, &data); err != nil {
		return err
	}
	if err := r.applySettings(data.GS); err != nil {
		return err
	}
	r.mu.Lock()
	for _, in := range data.Inputs {
		if p := r.playerByIDLocked(in.Player); p != nil {
			p.prevInputs = append(p.prevInputs, FrameInput{Frame: in.Frame, Inputs: in.Inputs})
		}
	}
	r.mu.Unlock()
	state, err := decodeGameState(data.State)
	if err != nil {
		return err
	}
	if f := r.Events.InGameState; f != nil {
		f(r, GameState{
			Frame:   data.Frame,
			StateID: data.StateID,
			Random:  data.Random,
			State:   state,
		})
	}
	return nil
}

func (r *Room) onRoomIDObtain(args []json.RawMessage) error {
	var joinID int
	var bypass string
	if err := decodeArgs(args, &joinID, &bypass); err != nil {
		return err
	}
	r.mu.Lock()
	r.joinID = fmt.Sprintf("%06d", joinID)
	r.joinBypass = bypass
	r.mu.Unlock()
	r.markConnected()
	if f := r.Events.RoomIDObtained; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onTabbed(args []json.RawMessage) error {
	var id int
	var state bool
	if err := decodeArgs(args, &id, &state); err != nil {
		return err
	}
	r.mu.Lock()
	p := r.playerByIDLocked(id)
	if p != nil {
		p.tabbed = state
	}
	r.mu.Unlock()
	if p == nil {
		return fmt.Errorf("room: tab change for unknown player %d", id)
	}
	if f := r.Events.PlayerTabbed; f != nil {
		f(r, p)
	}
	return nil
}

func (r *Room) onRoomNameChange(args []json.RawMessage) error {
	if len(args) == 0 {
		return fmt.Errorf("room: name change without name")
	}
	name, err := stringArg(args[0])
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.name = name
	r.mu.Unlock()
	if f := r.Events.RoomNameChanged; f != nil {
		f(r)
	}
	return nil
}

func (r *Room) onRoomPassChange(args []json.RawMessage) error {
	var state bool
	if err := decodeArgs(args, &state); err != nil {
		return err
	}
	r.mu.Lock()
	if r.host == nil || r.host != r.self {
		// Only the host knows the actual password.
		r.password = ""
		r.hasPassword = state
	}
	r.mu.Unlock()
	if f := r.Events.RoomPasswordChanged; f != nil {
		f(r)
	}
	return nil
}
