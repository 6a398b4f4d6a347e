package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bonkgo-dev/bonkgo/pkg/avatar"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/bytebuf"
)

// AvatarSlots is the number of stored avatar slots an account carries.
const AvatarSlots = 5

// Profile is the account state a login call returns.
type Profile struct {
	Name          string
	Token         string
	RememberToken string
	Guest         bool
	ID            int
	XP            int
	ActiveAvatar  int
	Avatar        *avatar.Avatar
	Avatars       [AvatarSlots]*avatar.Avatar
	Friends       []bonk.Friend
	LegacyFriends []bonk.Friend
	Settings      *bonk.Settings
}

// GuestProfile returns the profile a guest session starts from.
func GuestProfile(name string) *Profile {
	p := &Profile{Name: name, Guest: true, Avatar: avatar.New()}
	for i := range p.Avatars {
		p.Avatars[i] = avatar.New()
	}
	return p
}

// RoomInfo is one row of the public room listing.
type RoomInfo struct {
	Name        string
	ID          int
	Players     int
	MaxPlayers  int
	HasPassword bool
	Mode        bonk.Mode
	MinLevel    int
	MaxLevel    int
}

// JoinTarget is everything needed to open a socket into an existing room.
type JoinTarget struct {
	Address  int
	Name     string
	Server   bonk.Server
	Password string
	Bypass   string
}

type loginResponse struct {
	Username      string          `json:"username"`
	Token         string          `json:"token"`
	RememberToken string          `json:"remember_token"`
	ID            int             `json:"id"`
	XP            int             `json:"xp"`
	ActiveAvatar  int             `json:"activeAvatarNumber"`
	Avatar        string          `json:"avatar"`
	Avatar1       string          `json:"avatar1"`
	Avatar2       string          `json:"avatar2"`
	Avatar3       string          `json:"avatar3"`
	Avatar4       string          `json:"avatar4"`
	Avatar5       string          `json:"avatar5"`
	Friends       []friendJSON    `json:"friends"`
	LegacyFriends string          `json:"legacyFriends"`
	Controls      json.RawMessage `json:"controls"`
}

type friendJSON struct {
	Name   string `json:"name"`
	ID     int    `json:"id"`
	RoomID int    `json:"roomid"`
}

func (r *loginResponse) profile() (*Profile, error) {
	p := &Profile{
		Name:          r.Username,
		Token:         r.Token,
		RememberToken: r.RememberToken,
		ID:            r.ID,
		XP:            r.XP,
		ActiveAvatar:  r.ActiveAvatar,
		Avatar:        avatar.New(),
	}
	for i := range p.Avatars {
		p.Avatars[i] = avatar.New()
	}
	if r.Avatar != "" {
		a, err := avatar.DecodeBase64(r.Avatar)
		if err != nil {
			return nil, fmt.Errorf("api: active avatar: %w", err)
		}
		p.Avatar = a
	}
	for i, blob := range []string{r.Avatar1, r.Avatar2, r.Avatar3, r.Avatar4, r.Avatar5} {
		if blob == "" {
			continue
		}
		a, err := avatar.DecodeBase64(blob)
		if err != nil {
			return nil, fmt.Errorf("api: avatar slot %d: %w", i+1, err)
		}
		p.Avatars[i] = a
	}
	for _, f := range r.Friends {
		p.Friends = append(p.Friends, bonk.Friend{Name: f.Name, DBID: f.ID, RoomID: f.RoomID})
	}
	if r.LegacyFriends != "" {
		for _, name := range strings.Split(r.LegacyFriends, "#") {
			p.LegacyFriends = append(p.LegacyFriends, bonk.Friend{Name: name})
		}
	}
	// Controls arrive as a quoted base64 string; absent or null means the
	// account never saved keybinds.
	var controls string
	if len(r.Controls) > 0 && string(r.Controls) != "null" {
		if err := json.Unmarshal(r.Controls, &controls); err != nil {
			return nil, fmt.Errorf("api: controls: %w", err)
		}
	}
	if controls != "" {
		b, err := bytebuf.FromBase64(controls, bytebuf.BigEndian, bytebuf.Transform{})
		if err != nil {
			return nil, fmt.Errorf("api: controls: %w", err)
		}
		s, err := bonk.DecodeSettings(b)
		if err != nil {
			return nil, fmt.Errorf("api: controls: %w", err)
		}
		p.Settings = &s
	}
	return p, nil
}
