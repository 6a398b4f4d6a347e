package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bonkmap"
	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

// newTestClient wires a Client at a stub scripts endpoint.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithScriptsURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestLoginPassword(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login_legacy.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("username"); got != "tester" {
			t.Errorf("username = %q", got)
		}
		if got := r.PostForm.Get("remember"); got != "true" {
			t.Errorf("remember = %q", got)
		}
		w.Write([]byte(`{
			"r": "success",
			"username": "tester",
			"token": "tok",
			"remember_token": "rtok",
			"id": 1234,
			"xp": 8100,
			"activeAvatarNumber": 2,
			"friends": [{"name": "pal", "id": 9, "roomid": 0}],
			"legacyFriends": "old1#old2"
		}`))
	})

	p, err := client.LoginPassword(context.Background(), "tester", "hunter2", true)
	if err != nil {
		t.Fatalf("LoginPassword: %v", err)
	}
	if p.Name != "tester" || p.Token != "tok" || p.RememberToken != "rtok" {
		t.Errorf("profile = %+v", p)
	}
	if p.Guest {
		t.Error("Guest = true for account login")
	}
	if p.ID != 1234 || p.XP != 8100 || p.ActiveAvatar != 2 {
		t.Errorf("ID/XP/ActiveAvatar = %d/%d/%d", p.ID, p.XP, p.ActiveAvatar)
	}
	if len(p.Friends) != 1 || p.Friends[0].Name != "pal" || p.Friends[0].DBID != 9 {
		t.Errorf("Friends = %+v", p.Friends)
	}
	if len(p.LegacyFriends) != 2 || p.LegacyFriends[1].Name != "old2" {
		t.Errorf("LegacyFriends = %+v", p.LegacyFriends)
	}
	if p.Avatar == nil || len(p.Avatars) != AvatarSlots || p.Avatars[0] == nil {
		t.Error("avatars not defaulted")
	}
}

func TestLoginPasswordFail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"r": "fail", "e": "password"}`))
	})

	_, err := client.LoginPassword(context.Background(), "tester", "wrong", false)
	if !errors.Is(err, &bonk.APIError{Type: bonk.ErrPassword}) {
		t.Fatalf("err = %v, want password error", err)
	}
}

func TestLoginTokenControls(t *testing.T) {
	settings := bonk.DefaultSettings()
	settings.Up1 = 87
	controls, err := settings.Encode().ToBase64(bytebuf.Transform{})
	if err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login_auto.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("rememberToken"); got != "rtok" {
			t.Errorf("rememberToken = %q", got)
		}
		w.Write([]byte(`{
			"r": "success",
			"username": "tester",
			"token": "tok",
			"id": 1,
			"xp": 0,
			"activeAvatarNumber": 0,
			"controls": "` + controls + `"
		}`))
	})

	p, err := client.LoginToken(context.Background(), "rtok")
	if err != nil {
		t.Fatalf("LoginToken: %v", err)
	}
	if p.Settings == nil {
		t.Fatal("Settings = nil")
	}
	if p.Settings.Up1 != 87 {
		t.Errorf("Up1 = %d, want 87", p.Settings.Up1)
	}
}

func TestCreateServer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("gl"); got != "y" {
			t.Errorf("gl = %q", got)
		}
		if got := r.PostForm.Get("version"); got != "49" {
			t.Errorf("version = %q", got)
		}
		w.Write([]byte(`{"r": "success", "createserver": "b2ny1"}`))
	})

	server, err := client.CreateServer(context.Background())
	if err != nil {
		t.Fatalf("CreateServer: %v", err)
	}
	if server.Name != "b2ny1" {
		t.Errorf("server = %+v", server)
	}
}

func TestRooms(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("gl"); got != "n" {
			t.Errorf("gl = %q", got)
		}
		w.Write([]byte(`{"r": "success", "rooms": [
			{"roomname": "lobby", "id": 42, "players": 3, "maxplayers": 8,
			 "password": 1, "mode_mo": "b", "minlevel": 0, "maxlevel": 999}
		]}`))
	})

	rooms, err := client.Rooms(context.Background())
	if err != nil {
		t.Fatalf("Rooms: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("len(rooms) = %d", len(rooms))
	}
	room := rooms[0]
	if room.Name != "lobby" || room.ID != 42 || !room.HasPassword {
		t.Errorf("room = %+v", room)
	}
	if room.Mode != bonk.ModeClassic {
		t.Errorf("Mode = %+v", room.Mode)
	}
}

func TestRoomAddress(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getroomaddress.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"r": "success", "roomname": "duel", "server": "b2warsaw1"}`))
	})

	target, err := client.RoomAddress(context.Background(), 123456)
	if err != nil {
		t.Fatalf("RoomAddress: %v", err)
	}
	if target.Address != 123456 || target.Name != "duel" || target.Server.Name != "b2warsaw1" {
		t.Errorf("target = %+v", target)
	}
}

func TestResolveLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("joinID"); got != "654321" {
			t.Errorf("joinID = %q", got)
		}
		w.Write([]byte(`{"r": "success", "address": 777, "roomname": "ffa", "server": "b2stockholm1"}`))
	})

	target, err := client.ResolveLink(context.Background(), "https://bonk.io/654321Ab0Cd")
	if err != nil {
		t.Fatalf("ResolveLink: %v", err)
	}
	if target.Address != 777 || target.Bypass != "Ab0Cd" {
		t.Errorf("target = %+v", target)
	}
}

func TestResolveLinkNoBypass(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"r": "success", "address": 1, "roomname": "x", "server": "b2ny1"}`))
	})

	target, err := client.ResolveLink(context.Background(), "https://bonk.io/654321")
	if err != nil {
		t.Fatalf("ResolveLink: %v", err)
	}
	if target.Bypass != "" {
		t.Errorf("Bypass = %q, want empty", target.Bypass)
	}
}

func TestResolveLinkBadLink(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request issued for a bad link")
	})

	if _, err := client.ResolveLink(context.Background(), "https://bonk.io/about"); !errors.Is(err, ErrRoomLink) {
		t.Fatalf("err = %v, want ErrRoomLink", err)
	}
}

func TestResolveLinkNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"r": "failed"}`))
	})

	_, err := client.ResolveLink(context.Background(), "https://bonk.io/000001")
	if !errors.Is(err, &bonk.APIError{Type: bonk.ErrRoomNotFound}) {
		t.Fatalf("err = %v, want room not found", err)
	}
}

func TestFriends(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("task"); got != "getfriends" {
			t.Errorf("task = %q", got)
		}
		w.Write([]byte(`{"r": "success", "friends": [
			{"name": "pal", "id": 5, "roomid": 88}
		]}`))
	})

	friends, err := client.Friends(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Friends: %v", err)
	}
	if len(friends) != 1 || friends[0].RoomID != 88 {
		t.Errorf("friends = %+v", friends)
	}
}

func TestOwnMaps(t *testing.T) {
	m := bonkmap.New()
	m.Metadata.Name = "my level"
	encoded, err := m.EncodeDatabase()
	if err != nil {
		t.Fatal(err)
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("startingfrom"); got != "30" {
			t.Errorf("startingfrom = %q", got)
		}
		w.Write([]byte(`{"r": "success", "maps": [{"leveldata": "` + encoded + `"}]}`))
	})

	maps, err := client.OwnMaps(context.Background(), "tok", 30)
	if err != nil {
		t.Fatalf("OwnMaps: %v", err)
	}
	if len(maps) != 1 || maps[0].Metadata.Name != "my level" {
		t.Fatalf("maps = %+v", maps)
	}
}

func TestHTTPStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	})

	if _, err := client.Rooms(context.Background()); err == nil {
		t.Fatal("Rooms accepted a 502")
	}
}

func TestEndpointHelpers(t *testing.T) {
	if got := SocketURL("b2ny1"); got != "https://b2ny1.bonk.io" {
		t.Errorf("SocketURL = %q", got)
	}
	if got := PeerHost("b2ny1"); got != "b2ny1.bonk.io" {
		t.Errorf("PeerHost = %q", got)
	}
	if got := RoomLink("123456", "Ab0Cd"); got != "https://bonk.io/123456Ab0Cd" {
		t.Errorf("RoomLink = %q", got)
	}
}
