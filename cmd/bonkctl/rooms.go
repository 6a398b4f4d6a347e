package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bonkgo-dev/bonkgo/pkg/api"
)

func roomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Browse the public room listing",
	}
	cmd.AddCommand(roomsListCmd(), roomsWatchCmd())
	return cmd
}

func roomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the current public rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			rooms, err := api.NewClient().Rooms(ctx)
			if err != nil {
				return err
			}
			printRooms(rooms)
			return nil
		},
	}
}

func roomsWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the listing and report rooms opening and closing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return watchRooms(ctx, interval)
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 10*time.Second, "Poll interval")

	return cmd
}

func watchRooms(ctx context.Context, interval time.Duration) error {
	client := api.NewClient()
	known := make(map[int]api.RoomInfo)
	first := true

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rooms, err := client.Rooms(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "poll failed: %v\n", err)
		} else {
			current := make(map[int]api.RoomInfo, len(rooms))
			for _, r := range rooms {
				current[r.ID] = r
				if prev, ok := known[r.ID]; !ok {
					if !first {
						fmt.Printf("%s + %q  %s (%d/%d)\n",
							stamp(), r.Name, r.Mode.Code, r.Players, r.MaxPlayers)
					}
				} else if prev.Players != r.Players {
					fmt.Printf("%s   %q  %d -> %d players\n",
						stamp(), r.Name, prev.Players, r.Players)
				}
			}
			for id, r := range known {
				if _, ok := current[id]; !ok {
					fmt.Printf("%s - %q closed\n", stamp(), r.Name)
				}
			}
			if first {
				printRooms(rooms)
				first = false
			}
			known = current
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func stamp() string {
	return time.Now().Format("15:04:05")
}

func printRooms(rooms []api.RoomInfo) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODE\tPLAYERS\tLEVELS\tLOCKED")
	for _, r := range rooms {
		locked := ""
		if r.HasPassword {
			locked = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%d-%d\t%s\n",
			r.ID, r.Name, r.Mode.Code, r.Players, r.MaxPlayers, r.MinLevel, r.MaxLevel, locked)
	}
	w.Flush()
}
