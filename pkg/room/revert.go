package room

import (
	"context"
	"math"
	"time"

	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
)

type revertedMove struct {
	player *Player
	move   bonk.PlayerMove
	banned bool
}

// revertLoop periodically reverts peer moves that the socket never
// confirmed. It waits for the session to be acknowledged first.
func (r *Room) revertLoop(ctx context.Context) {
	defer r.wg.Done()
	select {
	case <-r.connectedCh:
	case <-r.done:
		return
	case <-ctx.Done():
		return
	}
	ticker := time.NewTicker(r.cfg.RevertSweep)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for _, rv := range r.sweepReverts() {
			r.metrics.revert()
			if rv.banned {
				r.metrics.peerBan()
				r.log.Warn("peer channel banned",
					"player", rv.player.ID,
					"ban_level", rv.player.peerBanLevel,
				)
			}
			if f := r.Events.MoveReverted; f != nil {
				f(r, rv.player, rv.move)
			}
		}
	}
}

// sweepReverts scans recent moves and reverts stale peer-only ones.
// Repeat offenders get their peer channel ignored for exponentially
// growing windows.
func (r *Room) sweepReverts() []revertedMove {
	now := r.cfg.Now()
	var out []revertedMove

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.left {
			continue
		}
		top := len(p.moves) - 1
		bottom := len(p.moves) - r.cfg.RevertScan
		if bottom < 0 {
			bottom = 0
		}
		for i := top; i >= bottom; i-- {
			move, ok := p.moves[i]
			if !ok {
				continue
			}
			age := now.Sub(move.Time)
			if age > r.cfg.RevertHorizon {
				break
			}
			if age <= r.cfg.RevertAfter {
				continue
			}
			if !move.ByPeer || move.BySocket || move.PeerIgnored || move.Reverted {
				continue
			}
			move.Reverted = true
			p.peerReverts++
			banned := false
			if p.peerReverts >= r.cfg.RevertLimit {
				p.peerReverts = 0
				p.peerBanLevel++
				window := time.Duration(math.Pow(2, float64(p.peerBanLevel))) * r.cfg.PeerBanBase
				p.peerBanUntil = now.Add(window)
				banned = true
			}
			out = append(out, revertedMove{player: p, move: *move, banned: banned})
		}
	}
	return out
}
