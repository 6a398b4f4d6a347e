package bonkgo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bonkgo-dev/bonkgo/pkg/api"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/room"
)

// newTestBot stubs the scripts endpoint behind the bot's API client.
func newTestBot(t *testing.T, handler http.HandlerFunc) *Bot {
	t.Helper()
	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected API call to %s", r.URL.Path)
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		APIOptions: []api.Option{
			api.WithScriptsURL(srv.URL),
			api.WithHTTPClient(srv.Client()),
		},
	})
}

const loginBody = `{
	"r": "success",
	"username": "tester",
	"token": "tok",
	"remember_token": "rtok",
	"id": 1234,
	"xp": 8100,
	"activeAvatarNumber": 0,
	"friends": [],
	"legacyFriends": ""
}`

func TestLoginGuest(t *testing.T) {
	b := newTestBot(t, nil)
	if b.LoggedIn() {
		t.Fatal("logged in before login")
	}
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatalf("LoginGuest: %v", err)
	}
	if !b.LoggedIn() || b.Name() != "robo" {
		t.Errorf("LoggedIn/Name = %v/%q", b.LoggedIn(), b.Name())
	}
	p, err := b.Profile()
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if !p.Guest || p.Avatar == nil {
		t.Errorf("guest profile = %+v", p)
	}
	if err := b.LoginGuest("again"); !errors.Is(err, ErrAlreadyLoggedIn) {
		t.Errorf("second login err = %v", err)
	}
}

func TestLoginGuestBadName(t *testing.T) {
	b := newTestBot(t, nil)
	if err := b.LoginGuest("x"); err == nil {
		t.Error("short name accepted")
	}
	if b.LoggedIn() {
		t.Error("logged in after rejected name")
	}
}

func TestLoginPassword(t *testing.T) {
	b := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login_legacy.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(loginBody))
	})
	token, err := b.LoginPassword(context.Background(), "tester", "hunter2", true)
	if err != nil {
		t.Fatalf("LoginPassword: %v", err)
	}
	if token != "rtok" {
		t.Errorf("remember token = %q", token)
	}
	if b.Name() != "tester" || b.XP() != 8100 {
		t.Errorf("Name/XP = %q/%d", b.Name(), b.XP())
	}
	if lv := b.Level(); lv < 9 || lv >= 11 {
		t.Errorf("Level = %v", lv)
	}
}

func TestLoginPasswordWhileLoggedIn(t *testing.T) {
	b := newTestBot(t, nil)
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.LoginPassword(context.Background(), "tester", "pw", false); !errors.Is(err, ErrAlreadyLoggedIn) {
		t.Errorf("err = %v", err)
	}
}

func TestLogout(t *testing.T) {
	b := newTestBot(t, nil)
	if err := b.Logout(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("logout before login err = %v", err)
	}
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	if err := b.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if b.LoggedIn() || b.Name() != "" {
		t.Error("state survives logout")
	}
	if _, err := b.Profile(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Profile after logout err = %v", err)
	}
}

func TestCreateRoomDefaults(t *testing.T) {
	b := newTestBot(t, nil)
	if _, err := b.CreateRoom(room.CreateOptions{}); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("create before login err = %v", err)
	}
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	r, err := b.CreateRoom(room.CreateOptions{})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if got := r.Name(); got != "robo's game" {
		t.Errorf("Name() = %q", got)
	}
	if got := r.Server(); got != bonk.ServerWarsaw {
		t.Errorf("Server() = %+v", got)
	}
	if rooms := b.Rooms(); len(rooms) != 1 || rooms[0] != r {
		t.Errorf("Rooms() = %v", rooms)
	}
}

func TestCreateRoomBadOptions(t *testing.T) {
	b := newTestBot(t, nil)
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreateRoom(room.CreateOptions{MaxPlayers: 20}); err == nil {
		t.Error("oversized room accepted")
	}
	if len(b.Rooms()) != 0 {
		t.Error("failed room registered")
	}
}

func TestJoinRoom(t *testing.T) {
	b := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getroomaddress.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"r": "success",
			"roomname": "duel hall",
			"server": "b2warsaw1"
		}`))
	})
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	r, err := b.JoinRoom(context.Background(), 77, "sesame")
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if r.Name() != "duel hall" {
		t.Errorf("Name() = %q", r.Name())
	}
	if len(b.Rooms()) != 1 {
		t.Errorf("Rooms() = %d", len(b.Rooms()))
	}
}

func TestXPGainedHookUpdatesProfile(t *testing.T) {
	b := newTestBot(t, nil)
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	r, err := b.CreateRoom(room.CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	r.Events.XPGained(r, 4200, "fresh")
	if b.XP() != 4200 {
		t.Errorf("XP = %d", b.XP())
	}
	p, _ := b.Profile()
	if p.Token != "fresh" {
		t.Errorf("Token = %q", p.Token)
	}
}

func TestRoomsDropsFinished(t *testing.T) {
	b := newTestBot(t, nil)
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	r, err := b.CreateRoom(room.CreateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Rooms()) != 1 {
		t.Fatalf("Rooms() = %d before teardown", len(b.Rooms()))
	}
	r.HandleDisconnect(nil)
	if len(b.Rooms()) != 0 {
		t.Errorf("Rooms() = %d after teardown", len(b.Rooms()))
	}
}

func TestTokenGatedFetches(t *testing.T) {
	b := newTestBot(t, nil)
	if err := b.LoginGuest("robo"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.FetchFriends(context.Background()); err == nil {
		t.Error("guest friends fetch accepted")
	}
	if _, err := b.FetchOwnMaps(context.Background(), 0); err == nil {
		t.Error("guest maps fetch accepted")
	}
}

func TestUpdateServer(t *testing.T) {
	b := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getrooms.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"r": "success", "createserver": "b2stockholm1"}`))
	})
	s, err := b.UpdateServer(context.Background())
	if err != nil {
		t.Fatalf("UpdateServer: %v", err)
	}
	if s != b.Server() {
		t.Errorf("Server() = %+v, want %+v", b.Server(), s)
	}
	if s.Name != "b2stockholm1" {
		t.Errorf("server name = %q", s.Name)
	}
}
