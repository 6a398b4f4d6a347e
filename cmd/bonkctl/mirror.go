package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/bonkgo-dev/bonkgo"
	"github.com/bonkgo-dev/bonkgo/pkg/bonk"
	"github.com/bonkgo-dev/bonkgo/pkg/room"
)

func mirrorCmd() *cobra.Command {
	var (
		session  sessionFlags
		link     string
		roomID   int
		roomPass string
	)

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Run a bot that mirrors every opponent's inputs",
		Long: `Join a room and play every opponent's moves back with left and
right swapped. When an opponent's move is reverted as unconfirmed
the bot answers with the last input it saw confirmed, so it keeps
moving through packet loss.

Examples:
  bonkctl mirror --guest "mirror bot" --link https://bonk.io/123456abcde
  bonkctl mirror -u alice --room 929 --room-pass hunter2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if link == "" && roomID == 0 {
				return fmt.Errorf("pick a room with --link or --room")
			}
			ctx, cancel := signalContext()
			defer cancel()

			b, cleanup, err := session.bot(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return runMirror(ctx, b, link, roomID, roomPass)
		},
	}

	session.register(cmd)
	cmd.Flags().StringVarP(&link, "link", "l", "", "Room share link")
	cmd.Flags().IntVarP(&roomID, "room", "r", 0, "Room listing id")
	cmd.Flags().StringVar(&roomPass, "room-pass", "", "Room password")

	return cmd
}

func runMirror(ctx context.Context, b *bonkgo.Bot, link string, roomID int, roomPass string) error {
	var (
		r   *room.Room
		err error
	)
	if link != "" {
		r, err = b.JoinRoomByLink(ctx, link, roomPass)
	} else {
		r, err = b.JoinRoom(ctx, roomID, roomPass)
	}
	if err != nil {
		return err
	}

	var (
		mu       sync.Mutex
		lastGood bonk.Input
	)

	r.Events.Move = func(r *room.Room, p *room.Player, move bonk.PlayerMove) {
		if p.IsSelf() {
			return
		}
		mu.Lock()
		lastGood = move.Inputs
		mu.Unlock()
		r.SendMove(move.Frame, mirrorInputs(move.Inputs))
	}
	r.Events.MoveReverted = func(r *room.Room, p *room.Player, move bonk.PlayerMove) {
		if p.IsSelf() {
			return
		}
		mu.Lock()
		inputs := mirrorInputs(lastGood)
		mu.Unlock()
		r.SendMove(move.Frame, inputs)
	}
	r.Events.GameStarted = func(r *room.Room, _ int64, _ any) {
		mu.Lock()
		lastGood = bonk.InputNone
		mu.Unlock()
	}

	if err := r.Connect(ctx); err != nil {
		return err
	}
	if err := r.WaitForConnection(ctx); err != nil {
		return err
	}
	fmt.Printf("mirroring in %q (%s)\n", r.Name(), r.JoinLink())

	select {
	case <-ctx.Done():
		return r.Disconnect()
	case <-r.Done():
		return nil
	}
}

// mirrorInputs swaps the horizontal controls and keeps the rest.
func mirrorInputs(i bonk.Input) bonk.Input {
	out := i.Without(bonk.InputLeft | bonk.InputRight)
	if i.Has(bonk.InputLeft) {
		out = out.With(bonk.InputRight)
	}
	if i.Has(bonk.InputRight) {
		out = out.With(bonk.InputLeft)
	}
	return out
}
