// Package bonkgo is a client library for the bonk.io multiplayer
// physics game. The Bot type is the entry point: log in as a guest or
// account, create or join rooms, and react to room events through
// room.Events callbacks.
package bonkgo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bonkgo-dev/bonkgo/pkg/api"
	"github.com/bonkgo-dev/bonkgo/pkg/avatar"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
	"github.com/bonkgo-dev/bonkgo/pkg/room"
)

var (
	ErrNotLoggedIn     = errors.New("bonkgo: not logged in")
	ErrAlreadyLoggedIn = errors.New("bonkgo: already logged in")
)

// Config carries the bot's collaborators. The zero value works.
type Config struct {
	Logger *slog.Logger

	// Registry receives API and room metrics. Nil disables them.
	Registry prometheus.Registerer

	// APIOptions extend the HTTP client, mostly for tests.
	APIOptions []api.Option

	// Server is the default game server for created rooms;
	// UpdateServer replaces it with the matchmaker's pick.
	Server bonk.Server

	// DialSocket overrides the room socket dialer, for tests.
	DialSocket room.SocketDialer

	// NewPeer builds the direct move transport for each room. Nil
	// leaves rooms socket-only.
	NewPeer func() room.PeerTransport
}

// Bot is one logged-in client. It owns the account state and tracks the
// room sessions opened through it.
type Bot struct {
	cfg Config
	log *slog.Logger
	api *api.Client

	mu      sync.Mutex
	logged  bool
	profile *api.Profile
	server  bonk.Server
	rooms   []*room.Room
}

// New builds a bot. Log in before opening rooms.
func New(cfg Config) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Server.Name == "" {
		cfg.Server = bonk.ServerWarsaw
	}
	opts := []api.Option{api.WithLogger(cfg.Logger)}
	if cfg.Registry != nil {
		opts = append(opts, api.WithRegistry(cfg.Registry))
	}
	opts = append(opts, cfg.APIOptions...)
	return &Bot{
		cfg:    cfg,
		log:    cfg.Logger,
		api:    api.NewClient(opts...),
		server: cfg.Server,
	}
}

// API exposes the underlying HTTP client.
func (b *Bot) API() *api.Client { return b.api }

// LoggedIn reports whether the bot holds a session.
func (b *Bot) LoggedIn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logged
}

// LoginGuest starts a guest session under the given display name.
func (b *Bot) LoginGuest(name string) error {
	if err := bonk.ValidateUsername(name, true); err != nil {
		return err
	}
	return b.start(api.GuestProfile(name))
}

// LoginPassword logs into an account. With remember true the returned
// token can be reused with LoginToken; it is also kept on the profile.
func (b *Bot) LoginPassword(ctx context.Context, username, password string, remember bool) (string, error) {
	if b.LoggedIn() {
		return "", ErrAlreadyLoggedIn
	}
	if err := bonk.ValidateUsername(username, false); err != nil {
		return "", err
	}
	p, err := b.api.LoginPassword(ctx, username, password, remember)
	if err != nil {
		return "", err
	}
	if err := b.start(p); err != nil {
		return "", err
	}
	return p.RememberToken, nil
}

// LoginToken resumes a session from a remember token.
func (b *Bot) LoginToken(ctx context.Context, rememberToken string) error {
	if b.LoggedIn() {
		return ErrAlreadyLoggedIn
	}
	p, err := b.api.LoginToken(ctx, rememberToken)
	if err != nil {
		return err
	}
	return b.start(p)
}

func (b *Bot) start(p *api.Profile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.logged {
		return ErrAlreadyLoggedIn
	}
	b.profile = p
	b.logged = true
	b.log.Info("logged in", "name", p.Name, "guest", p.Guest)
	return nil
}

// Logout disconnects every room and drops the session.
func (b *Bot) Logout() error {
	b.mu.Lock()
	if !b.logged {
		b.mu.Unlock()
		return ErrNotLoggedIn
	}
	rooms := b.rooms
	b.rooms = nil
	b.profile = nil
	b.logged = false
	b.mu.Unlock()

	for _, r := range rooms {
		if err := r.Disconnect(); err != nil && !errors.Is(err, room.ErrNotConnected) {
			b.log.Warn("room disconnect failed", "error", err)
		}
	}
	b.log.Info("logged out")
	return nil
}

// Profile returns a snapshot of the account state.
func (b *Bot) Profile() (api.Profile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.logged {
		return api.Profile{}, ErrNotLoggedIn
	}
	return *b.profile, nil
}

// Name returns the display name, empty before login.
func (b *Bot) Name() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.logged {
		return ""
	}
	return b.profile.Name
}

// XP returns the account's experience total.
func (b *Bot) XP() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.logged {
		return 0
	}
	return b.profile.XP
}

// Level derives the account level from XP.
func (b *Bot) Level() float64 {
	return bonk.XPToLevel(b.XP())
}

// UpdateXP folds a server-reported XP total into the profile. Rooms
// opened through the bot do this automatically on XP gain events.
func (b *Bot) UpdateXP(newXP int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.logged {
		return ErrNotLoggedIn
	}
	b.profile.XP = newXP
	return nil
}

// UpdateToken replaces the session token after the server rotates it.
func (b *Bot) UpdateToken(newToken string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.logged {
		return ErrNotLoggedIn
	}
	b.profile.Token = newToken
	return nil
}

// Server returns the default game server for new rooms.
func (b *Bot) Server() bonk.Server {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.server
}

// UpdateServer asks the matchmaker for the nearest server and makes it
// the default.
func (b *Bot) UpdateServer(ctx context.Context) (bonk.Server, error) {
	s, err := b.api.CreateServer(ctx)
	if err != nil {
		return bonk.Server{}, err
	}
	b.mu.Lock()
	b.server = s
	b.mu.Unlock()
	return s, nil
}

// identity builds the room identity from the profile. Caller must hold
// no lock.
func (b *Bot) identity() (room.Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.logged {
		return room.Identity{}, ErrNotLoggedIn
	}
	av := b.profile.Avatar
	if av == nil {
		av = avatar.New()
	}
	return room.Identity{
		Name:   b.profile.Name,
		Guest:  b.profile.Guest,
		Token:  b.profile.Token,
		DBID:   b.profile.ID,
		Level:  int(bonk.XPToLevel(b.profile.XP)),
		Avatar: av,
	}, nil
}

func (b *Bot) roomConfig() room.Config {
	cfg := room.Config{
		Logger:     b.log,
		Registry:   b.cfg.Registry,
		DialSocket: b.cfg.DialSocket,
	}
	if b.cfg.NewPeer != nil {
		cfg.Peer = b.cfg.NewPeer()
	}
	return cfg
}

// register tracks a room and wires the profile-maintenance hooks. The
// XPGained hook can be replaced; call UpdateXP and UpdateToken yourself
// if you do.
func (b *Bot) register(r *room.Room) {
	r.Events.XPGained = func(_ *room.Room, newXP int, newToken string) {
		if err := b.UpdateXP(newXP); err != nil {
			return
		}
		if newToken != "" {
			b.UpdateToken(newToken)
		}
	}
	b.mu.Lock()
	b.rooms = append(b.rooms, r)
	b.mu.Unlock()
}

// CreateRoom prepares a new room session. Zero-value options default to
// a six-player listed room on the bot's server, named "<name>'s game".
// Call Connect on the result.
func (b *Bot) CreateRoom(opts room.CreateOptions) (*room.Room, error) {
	id, err := b.identity()
	if err != nil {
		return nil, err
	}
	if opts.Server.Name == "" {
		opts.Server = b.Server()
	}
	r, err := room.Create(id, opts, b.roomConfig())
	if err != nil {
		return nil, err
	}
	b.register(r)
	return r, nil
}

// JoinRoom prepares a session into the room with the given listing id.
func (b *Bot) JoinRoom(ctx context.Context, roomID int, password string) (*room.Room, error) {
	id, err := b.identity()
	if err != nil {
		return nil, err
	}
	target, err := b.api.RoomAddress(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return b.join(id, target, password)
}

// JoinRoomByLink prepares a session from a share link such as
// "https://bonk.io/123456abcde".
func (b *Bot) JoinRoomByLink(ctx context.Context, link, password string) (*room.Room, error) {
	id, err := b.identity()
	if err != nil {
		return nil, err
	}
	target, err := b.api.ResolveLink(ctx, link)
	if err != nil {
		return nil, err
	}
	return b.join(id, target, password)
}

func (b *Bot) join(id room.Identity, target *api.JoinTarget, password string) (*room.Room, error) {
	r, err := room.Join(id, room.JoinFromTarget(target, password), b.roomConfig())
	if err != nil {
		return nil, err
	}
	b.register(r)
	return r, nil
}

// Rooms returns the sessions opened through this bot that have not
// ended yet.
func (b *Bot) Rooms() []*room.Room {
	b.mu.Lock()
	defer b.mu.Unlock()
	live := b.rooms[:0:0]
	for _, r := range b.rooms {
		select {
		case <-r.Done():
		default:
			live = append(live, r)
		}
	}
	b.rooms = live
	out := make([]*room.Room, len(live))
	copy(out, live)
	return out
}

// WaitForConnections blocks until every live room session is
// acknowledged by its server.
func (b *Bot) WaitForConnections(ctx context.Context) error {
	for _, r := range b.Rooms() {
		if err := r.WaitForConnection(ctx); err != nil {
			return fmt.Errorf("bonkgo: room %q: %w", r.Name(), err)
		}
	}
	return nil
}

// FetchRooms lists the public rooms.
func (b *Bot) FetchRooms(ctx context.Context) ([]api.RoomInfo, error) {
	return b.api.Rooms(ctx)
}

// FetchFriends lists the account's friends.
func (b *Bot) FetchFriends(ctx context.Context) ([]bonk.Friend, error) {
	token, err := b.token()
	if err != nil {
		return nil, err
	}
	return b.api.Friends(ctx, token)
}

// FetchOwnMaps pages through the account's saved maps starting at the
// given offset.
func (b *Bot) FetchOwnMaps(ctx context.Context, startFrom int) ([]*bonkmap.Map, error) {
	token, err := b.token()
	if err != nil {
		return nil, err
	}
	return b.api.OwnMaps(ctx, token, startFrom)
}

func (b *Bot) token() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.logged {
		return "", ErrNotLoggedIn
	}
	if b.profile.Guest {
		return "", fmt.Errorf("bonkgo: guests have no account token")
	}
	return b.profile.Token, nil
}
