package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/bonkgo-dev/bonkgo"
	"github.com/bonkgo-dev/bonkgo/pkg/room"
)

// The server grants at most 2000 XP per 20 minutes and 18000 per day;
// the default pacing stays under both.
const defaultXPInterval = 40 * time.Second

func xpfarmCmd() *cobra.Command {
	var (
		session  sessionFlags
		interval time.Duration
		count    int
	)

	cmd := &cobra.Command{
		Use:   "xpfarm",
		Short: "Idle in a private room and collect experience",
		Long: `Create an unlisted single-player room and send paced XP gain
requests until stopped or --count is reached.

Requires an account login; guests do not accumulate XP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if session.guestName != "" {
				return fmt.Errorf("xpfarm needs an account, not a guest")
			}
			ctx, cancel := signalContext()
			defer cancel()

			b, cleanup, err := session.bot(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return runXPFarm(ctx, b, interval, count)
		},
	}

	session.register(cmd)
	cmd.Flags().DurationVarP(&interval, "interval", "i", defaultXPInterval, "Delay between gain requests")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many gains (0 = run until stopped)")

	return cmd
}

func runXPFarm(ctx context.Context, b *bonkgo.Bot, interval time.Duration, count int) error {
	r, err := b.CreateRoom(room.CreateOptions{
		Name:       fmt.Sprintf("%s afk", b.Name()),
		Unlisted:   true,
		MaxPlayers: 1,
	})
	if err != nil {
		return err
	}
	startXP := b.XP()

	r.Events.XPGained = func(_ *room.Room, newXP int, newToken string) {
		b.UpdateXP(newXP)
		if newToken != "" {
			b.UpdateToken(newToken)
		}
		fmt.Printf("%s xp %d (+%d this session)\n", stamp(), newXP, newXP-startXP)
	}

	if err := r.Connect(ctx); err != nil {
		return err
	}
	if err := r.WaitForConnection(ctx); err != nil {
		return err
	}
	defer r.Disconnect()

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for sent := 0; count == 0 || sent < count; sent++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		select {
		case <-r.Done():
			return fmt.Errorf("room closed")
		default:
		}
		if err := r.GainXP(); err != nil {
			return err
		}
	}
	return nil
}
