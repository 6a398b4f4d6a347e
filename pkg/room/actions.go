package room

import (
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

// SendMessage posts a chat message.
func (r *Room) SendMessage(text string) error {
	return r.emit(OutSendMessage, map[string]any{"message": text})
}

// SetReady flags this client as ready or not.
func (r *Room) SetReady(state bool) error {
	r.mu.Lock()
	if r.self != nil {
		r.self.ready = state
	}
	r.mu.Unlock()
	return r.emit(OutSetReady, map[string]any{"ready": state})
}

// ResetAllReady clears every player's ready flag. Host only.
func (r *Room) ResetAllReady() error {
	if err := r.requireHost(); err != nil {
		return err
	}
	r.mu.Lock()
	for _, p := range r.players {
		p.ready = false
	}
	r.mu.Unlock()
	return r.emit(OutResetReady)
}

// SetMode switches the game mode. Host only.
func (r *Room) SetMode(mode bonk.Mode) error {
	if err := r.requireHost(); err != nil {
		return err
	}
	return r.emit(OutSetMode, map[string]any{"ga": mode.Engine, "mo": mode.Code})
}

// SetRounds sets the rounds needed to win. Host only.
func (r *Room) SetRounds(rounds int) error {
	if err := r.requireHost(); err != nil {
		return err
	}
	return r.emit(OutSetRounds, map[string]any{"w": rounds})
}

// SetTeam moves this client onto a team.
func (r *Room) SetTeam(team bonk.Team) error {
	return r.emit(OutSetTeam, map[string]any{"targetTeam": int(team)})
}

// SetTeamLock locks or unlocks team switching. Host only.
func (r *Room) SetTeamLock(state bool) error {
	if err := r.requireHost(); err != nil {
		return err
	}
	return r.emit(OutSetTeamLock, map[string]any{"teamLock": state})
}

// SetTeamsEnabled toggles team play on or off. Host only.
func (r *Room) SetTeamsEnabled(state bool) error {
	if err := r.requireHost(); err != nil {
		return err
	}
	r.mu.Lock()
	r.teamState = teamStateFor(state, r.mode)
	r.mu.Unlock()
	return r.emit(OutSetTeamState, map[string]any{"t": state})
}

// RecordReplay saves the last round's replay.
func (r *Room) RecordReplay() error {
	return r.emit(OutRecordReplay)
}

// SetTabbed reports this client tabbing out or back in.
func (r *Room) SetTabbed(state bool) error {
	r.mu.Lock()
	if r.self != nil {
		r.self.tabbed = state
	}
	r.mu.Unlock()
	return r.emit(OutSetTabbed, map[string]any{"out": state})
}

// ChangePassword sets the room's password; empty removes it. Host only.
func (r *Room) ChangePassword(newPassword string) error {
	if err := r.requireHost(); err != nil {
		return err
	}
	r.mu.Lock()
	r.password = newPassword
	r.hasPassword = newPassword != ""
	r.mu.Unlock()
	return r.emit(OutChangeRoomPass, map[string]any{"newPass": newPassword})
}

// ChangeName renames the room. Host only.
func (r *Room) ChangeName(newName string) error {
	if err := r.requireHost(); err != nil {
		return err
	}
	r.mu.Lock()
	r.name = newName
	r.mu.Unlock()
	return r.emit(OutChangeRoomName, map[string]any{"newName": newName})
}

// GainXP claims the periodic 100 xp award. The server rate limits it to
// 2000 per 20 minutes and 18000 per day.
func (r *Room) GainXP() error {
	return r.emit(OutXPGain)
}

// SendMove submits this client's inputs for a frame, recording the move
// locally. The sequence number is assigned automatically.
func (r *Room) SendMove(frame int, inputs bonk.Input) error {
	r.mu.Lock()
	seq := r.sequence
	r.sequence++
	r.mu.Unlock()
	return r.SendMoveSequence(frame, inputs, seq)
}

// SendMoveSequence submits a move with an explicit sequence number, for
// resending after a revert.
func (r *Room) SendMoveSequence(frame int, inputs bonk.Input, sequence int) error {
	err := r.emit(OutMove, map[string]any{
		"i": uint32(inputs),
		"f": frame,
		"c": sequence,
	})
	if err != nil {
		return err
	}
	r.mu.Lock()
	if r.self != nil {
		r.self.moves[sequence] = &bonk.PlayerMove{
			Frame:    frame,
			Inputs:   inputs,
			Sequence: sequence,
			Time:     r.cfg.Now(),
		}
	}
	r.mu.Unlock()
	return nil
}
