// Package room implements the live game-room session: the socket.io
// connection to a game server, the REST-of-the-roster peer channels,
// clock synchronization, roster and settings state, and the move
// reconciliation that cross-checks the two move streams.
package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bonkgo-dev/bonkgo/pkg/api"
	"github.com/bonkgo-dev/bonkgo/pkg/avatar"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
)

var (
	ErrAlreadyConnected = errors.New("room: already connected")
	ErrNotConnected     = errors.New("room: not connected")
)

// In rooms the server expects game type 2; quick play uses 1.
const (
	gameTypeRoom      = 2
	gameTypeQuickPlay = 1
)

const defaultRounds = 3

// Room is one live room session.
type Room struct {
	cfg     Config
	log     *slog.Logger
	tracer  trace.Tracer
	metrics *roomMetrics

	identity   Identity
	action     Action
	createOpts CreateOptions
	joinOpts   JoinOptions

	// Events must be populated before Connect.
	Events Events

	mu          sync.Mutex
	running     bool
	connected   bool
	synced      bool
	peerReady   bool
	name        string
	password    string
	hasPassword bool
	joinID      string
	joinBypass  string
	host        *Player
	self        *Player
	players     []*Player
	gameMap     *bonkmap.Map
	mode        bonk.Mode
	teamState   bonk.TeamState
	teamLock    bool
	rounds      int
	gameType    int
	quickPlay   bool
	sequence    int
	conns       []DataConn

	socket SocketConn
	syncer *TimeSyncer

	initOnce      sync.Once
	connectedCh   chan struct{}
	connectedOnce sync.Once
	playerCh      chan *Player
	done          chan struct{}
	closeOnce     sync.Once
	wg            sync.WaitGroup
}

func newRoom(id Identity, action Action, cfg Config) *Room {
	cfg.withDefaults()
	r := &Room{
		cfg:         cfg,
		log:         cfg.Logger,
		tracer:      otel.Tracer(cfg.TracerName),
		identity:    id,
		action:      action,
		mode:        bonk.ModeClassic,
		rounds:      defaultRounds,
		gameType:    gameTypeRoom,
		connectedCh: make(chan struct{}),
		playerCh:    make(chan *Player, 1),
		done:        make(chan struct{}),
	}
	if cfg.Registry != nil {
		r.metrics = newRoomMetrics(cfg.Registry)
	}
	r.log = r.log.With("room_action", action.String())
	return r
}

// Create prepares a session that opens a new room. Zero-valued option
// fields take the server defaults.
func Create(id Identity, opts CreateOptions, cfg Config) (*Room, error) {
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("%s's game", id.Name)
	}
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = 6
	}
	if opts.MaxLevel == 0 {
		opts.MaxLevel = MaxRoomLevel
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := newRoom(id, ActionCreate, cfg)
	r.createOpts = opts
	r.name = opts.Name
	r.password = opts.Password
	r.hasPassword = opts.Password != ""
	return r, nil
}

// Join prepares a session into an existing room.
func Join(id Identity, opts JoinOptions, cfg Config) (*Room, error) {
	r := newRoom(id, ActionJoin, cfg)
	r.joinOpts = opts
	r.name = opts.Name
	return r, nil
}

// JoinFromTarget builds JoinOptions from a resolved api target. An
// explicit password overrides the target's.
func JoinFromTarget(t *api.JoinTarget, password string) JoinOptions {
	if password == "" {
		password = t.Password
	}
	return JoinOptions{
		Address:  t.Address,
		Name:     t.Name,
		Password: password,
		Bypass:   t.Bypass,
		Server:   t.Server,
	}
}

// Server returns the game server this session targets.
func (r *Room) Server() bonk.Server {
	if r.action == ActionCreate {
		return r.createOpts.Server
	}
	return r.joinOpts.Server
}

// Connect dials the game server, starts clock sync and the peer
// transport, and sends the create or join request once both are ready.
func (r *Room) Connect(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyConnected
	}
	r.running = true
	r.mu.Unlock()

	sock, err := r.cfg.DialSocket(ctx, api.SocketURL(r.Server().Name), r)
	if err != nil {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		return err
	}
	r.mu.Lock()
	r.socket = sock
	r.mu.Unlock()

	syncer := NewTimeSyncer(r.cfg.SyncInterval, r.cfg.SyncDelay, r.cfg.SyncRepeat, func(id int) error {
		return sock.Emit(OutTimeSync, map[string]any{
			"jsonrpc": "2.0",
			"id":      id,
			"method":  "timesync",
		})
	}, r.cfg.Now)
	syncer.onChange = func(delta int64) {
		if f := r.Events.TimeOffsetChanged; f != nil {
			f(r, delta)
		}
	}
	syncer.onSynced = func() {
		r.mu.Lock()
		first := !r.synced
		r.synced = true
		ready := r.peerReady
		r.mu.Unlock()
		if first && ready {
			r.sendInit()
		}
	}
	r.syncer = syncer

	if r.cfg.Peer != nil {
		r.cfg.Peer.OnConnection(r.handlePeerConn)
		if err := r.cfg.Peer.Start(ctx); err != nil {
			sock.Close()
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			return fmt.Errorf("room: peer transport: %w", err)
		}
	}
	r.mu.Lock()
	r.peerReady = true
	synced := r.synced
	r.mu.Unlock()
	if synced {
		r.sendInit()
	}

	syncer.Start(ctx)
	r.wg.Add(1)
	go r.revertLoop(ctx)

	r.log.Info("room connecting", "server", r.Server().Name)
	return nil
}

// peerID returns this client's peer id, generating a placeholder when no
// peer transport is configured.
func (r *Room) peerID() string {
	if r.cfg.Peer != nil {
		return r.cfg.Peer.ID()
	}
	return NewPeerID()
}

// sendInit sends the create or join request exactly once.
func (r *Room) sendInit() {
	r.initOnce.Do(func() {
		var err error
		if r.action == ActionCreate {
			err = r.sendCreate()
		} else {
			err = r.sendJoin()
		}
		if err != nil {
			r.log.Error("room init failed", "error", err)
			r.teardown(err)
		}
	})
}

func (r *Room) sendCreate() error {
	peerID := r.peerID()
	server := r.createOpts.Server

	m, err := bonkmap.DefaultMap()
	if err != nil {
		return fmt.Errorf("room: default map: %w", err)
	}
	self := newPlayer(r, 0, r.identity.Name, r.identity.Guest, r.identity.Level, bonk.TeamFFA, peerID, r.identity.Avatar)

	r.mu.Lock()
	r.self = self
	r.host = self
	r.players = []*Player{self}
	r.gameMap = m
	r.mu.Unlock()

	data := map[string]any{
		"peerID":     peerID,
		"roomName":   r.createOpts.Name,
		"maxPlayers": r.createOpts.MaxPlayers,
		"password":   r.createOpts.Password,
		"id":         r.identity.DBID,
		"guest":      r.identity.Guest,
		"minLevel":   r.createOpts.MinLevel,
		"maxLevel":   r.createOpts.MaxLevel,
		"latitude":   server.Latitude,
		"longitude":  server.Longitude,
		"country":    server.Country,
		"version":    bonk.ProtocolVersion,
		"hidden":     boolInt(r.createOpts.Unlisted),
		"quick":      false,
		"mode":       "custom",
		"avatar":     self.Avatar,
	}
	if r.identity.Guest {
		data["guestName"] = r.identity.Name
	} else {
		data["token"] = r.identity.Token
	}
	return r.emit(OutCreateRoom, data)
}

func (r *Room) sendJoin() error {
	peerID := r.peerID()
	av := r.identity.Avatar
	if av == nil {
		av = avatar.New()
	}
	data := map[string]any{
		"joinID":       r.joinOpts.Address,
		"roomPassword": r.joinOpts.Password,
		"guest":        r.identity.Guest,
		"dbid":         2,
		"version":      bonk.ProtocolVersion,
		"peerID":       peerID,
		"bypass":       r.joinOpts.Bypass,
		"avatar":       av,
	}
	if r.identity.Guest {
		data["guestName"] = r.identity.Name
	} else {
		data["token"] = r.identity.Token
	}
	return r.emit(OutJoinRoom, data)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// emit sends an event to the game server.
func (r *Room) emit(code EventCode, args ...any) error {
	r.mu.Lock()
	sock := r.socket
	r.mu.Unlock()
	if sock == nil {
		return ErrNotConnected
	}
	return sock.Emit(code, args...)
}

func (r *Room) requireHost() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.host == nil || r.host != r.self {
		return &bonk.APIError{Type: bonk.ErrNotHost}
	}
	return nil
}

// Disconnect tears the session down and fires Disconnected.
func (r *Room) Disconnect() error {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if !running {
		return ErrNotConnected
	}
	r.teardown(nil)
	return nil
}

func (r *Room) teardown(cause error) {
	r.closeOnce.Do(func() {
		close(r.done)
		if r.syncer != nil {
			r.syncer.Stop()
		}
		r.mu.Lock()
		sock := r.socket
		conns := r.conns
		players := r.players
		r.running = false
		r.connected = false
		r.socket = nil
		r.conns = nil
		r.mu.Unlock()

		if sock != nil {
			sock.Close()
		}
		for _, c := range conns {
			c.Close()
		}
		for _, p := range players {
			r.mu.Lock()
			c := p.conn
			p.conn = nil
			r.mu.Unlock()
			if c != nil {
				c.Close()
			}
		}
		if r.cfg.Peer != nil {
			r.cfg.Peer.Destroy()
		}
		r.wg.Wait()
		r.metrics.setConnected(false)
		r.log.Info("room disconnected", "cause", errString(cause))
		if f := r.Events.Disconnected; f != nil {
			f(r, cause)
		}
	})
}

func errString(err error) string {
	if err == nil {
		return "requested"
	}
	return err.Error()
}

// HandleDisconnect implements SocketHandler.
func (r *Room) HandleDisconnect(err error) {
	r.teardown(err)
}

// HandleEvent implements SocketHandler: it runs on the socket's read
// goroutine and dispatches to the per-code handlers.
func (r *Room) HandleEvent(code EventCode, args []json.RawMessage) {
	r.metrics.event(code)
	_, span := r.tracer.Start(context.Background(), "room.event",
		trace.WithAttributes(attribute.Int("bonk.event_code", int(code))))
	defer span.End()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("event handler panic",
				"code", int(code),
				"panic", rec,
				"stack", string(debug.Stack()),
			)
		}
	}()
	if err := r.dispatchEvent(code, args); err != nil {
		span.RecordError(err)
		r.log.Warn("event handling failed", "code", int(code), "error", err)
	}
}

// Connected reports whether the server has acknowledged the session.
func (r *Room) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// markConnected closes the connection latch once.
func (r *Room) markConnected() {
	r.mu.Lock()
	r.connected = true
	r.mu.Unlock()
	r.metrics.setConnected(true)
	r.connectedOnce.Do(func() { close(r.connectedCh) })
}

// WaitForConnection blocks until the server acknowledges the session,
// the session ends, or the context expires.
func (r *Room) WaitForConnection(ctx context.Context) error {
	select {
	case <-r.connectedCh:
		return nil
	case <-r.done:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForPlayer returns a present player other than this client, waiting
// for one to join if needed.
func (r *Room) WaitForPlayer(ctx context.Context) (*Player, error) {
	r.mu.Lock()
	for _, p := range r.players {
		if !p.left && p != r.self {
			r.mu.Unlock()
			return p, nil
		}
	}
	r.mu.Unlock()
	select {
	case p := <-r.playerCh:
		return p, nil
	case <-r.done:
		return nil, ErrNotConnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done is closed when the session ends.
func (r *Room) Done() <-chan struct{} { return r.done }

// Syncer exposes the room's clock syncer.
func (r *Room) Syncer() *TimeSyncer { return r.syncer }

// Name returns the room's current name.
func (r *Room) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// HasPassword reports whether the room is password protected. The
// password itself is only known when this client set or supplied it.
func (r *Room) HasPassword() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasPassword
}

func (r *Room) Password() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.password
}

func (r *Room) Mode() bonk.Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *Room) Rounds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rounds
}

func (r *Room) TeamState() bonk.TeamState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teamState
}

func (r *Room) TeamLock() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teamLock
}

// JoinID is the six-digit share code, empty until assigned.
func (r *Room) JoinID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joinID
}

func (r *Room) JoinBypass() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joinBypass
}

// JoinLink returns the shareable room link, empty until the join id is
// known.
func (r *Room) JoinLink() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.joinID == "" {
		return ""
	}
	return api.RoomLink(r.joinID, r.joinBypass)
}

// Map returns the room's current map. Treat it as read-only; it is
// shared with the session.
func (r *Room) Map() *bonkmap.Map {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gameMap
}

// Host returns the current host, nil while unknown or after the room
// closed.
func (r *Room) Host() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host
}

// Self returns this client's roster slot, nil before the session is
// acknowledged.
func (r *Room) Self() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.self
}

// IsHost reports whether this client hosts the room.
func (r *Room) IsHost() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.host != nil && r.host == r.self
}

// Players returns the present players.
func (r *Room) Players() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if !p.left {
			out = append(out, p)
		}
	}
	return out
}

// AllPlayers returns every roster slot seen this session, departed
// players included.
func (r *Room) AllPlayers() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// PlayerByID resolves a roster slot, nil when unknown.
func (r *Room) PlayerByID(id int) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerByIDLocked(id)
}

func (r *Room) playerByIDLocked(id int) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// settingsLocked builds the outgoing game settings payload. Caller holds
// r.mu.
func (r *Room) settingsLocked() map[string]any {
	maxID := 0
	for _, p := range r.players {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	bal := make([]int, maxID+1)
	for _, p := range r.players {
		if p.left {
			continue
		}
		bal[p.ID] = p.balance
	}
	var mapJSON map[string]any
	if r.gameMap != nil {
		mapJSON = r.gameMap.ToJSON()
	}
	return map[string]any{
		"map": mapJSON,
		"gt":  r.gameType,
		"wl":  r.rounds,
		"q":   r.quickPlay,
		"tl":  r.teamLock,
		"tea": r.teamState != bonk.TeamStateFFA,
		"ga":  r.mode.Engine,
		"mo":  r.mode.Code,
		"bal": bal,
	}
}

type settingsJSON struct {
	Map     json.RawMessage `json:"map"`
	GT      int             `json:"gt"`
	WL      int             `json:"wl"`
	Q       json.RawMessage `json:"q"`
	TL      bool            `json:"tl"`
	TEA     bool            `json:"tea"`
	GA      string          `json:"ga"`
	MO      string          `json:"mo"`
	Balance []int           `json:"bal"`
}

// applySettings folds a server-sent settings payload into the room
// state. The map arrives either as a database string or as editor JSON.
func (r *Room) applySettings(raw json.RawMessage) error {
	var gs settingsJSON
	if err := json.Unmarshal(raw, &gs); err != nil {
		return fmt.Errorf("room: game settings: %w", err)
	}

	var m *bonkmap.Map
	var encoded string
	if err := json.Unmarshal(gs.Map, &encoded); err == nil {
		decoded, err := bonkmap.DecodeDatabase(encoded)
		if err != nil {
			return fmt.Errorf("room: settings map: %w", err)
		}
		m = decoded
	} else {
		var obj map[string]any
		if err := json.Unmarshal(gs.Map, &obj); err != nil {
			return fmt.Errorf("room: settings map: %w", err)
		}
		decoded, err := bonkmap.FromJSON(obj)
		if err != nil {
			return fmt.Errorf("room: settings map: %w", err)
		}
		m = decoded
	}

	mode, err := bonk.ModeFromCode(gs.MO)
	if err != nil {
		return err
	}

	// Quick play is flagged either as true or as the string "bonkquick".
	quick := false
	var qb bool
	var qs string
	if json.Unmarshal(gs.Q, &qb) == nil {
		quick = qb
	} else if json.Unmarshal(gs.Q, &qs) == nil {
		quick = qs == "bonkquick"
	}

	r.mu.Lock()
	r.gameMap = m
	r.gameType = gs.GT
	r.rounds = gs.WL
	r.quickPlay = quick
	r.teamLock = gs.TL
	r.mode = mode
	r.teamState = teamStateFor(gs.TEA, mode)
	for _, p := range r.players {
		if p.ID < len(gs.Balance) {
			p.balance = gs.Balance[p.ID]
		} else {
			p.balance = 0
		}
	}
	r.mu.Unlock()
	return nil
}

// teamStateFor maps the teams toggle onto the arrangement: football
// pairs players up, every other mode opens all four teams.
func teamStateFor(enabled bool, mode bonk.Mode) bonk.TeamState {
	switch {
	case !enabled:
		return bonk.TeamStateFFA
	case mode == bonk.ModeFootball:
		return bonk.TeamStateDuo
	default:
		return bonk.TeamStateAll
	}
}
