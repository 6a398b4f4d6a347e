package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/bonkgo-dev/bonkgo"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// sessionFlags are the login and observability options shared by the
// commands that open a bot session.
type sessionFlags struct {
	guestName string
	username  string
	password  string
	token     string
	verbose   bool
	debugAddr string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.guestName, "guest", "", "Play as a guest under this name")
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Account password (or set BONK_PASSWORD)")
	cmd.Flags().StringVar(&f.token, "token", "", "Remember token from an earlier login (or set BONK_TOKEN)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().StringVar(&f.debugAddr, "debug-addr", "", "Serve /metrics and /healthz on this address while running")
}

func (f *sessionFlags) logger() *slog.Logger {
	var out io.Writer = os.Stderr
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// bot builds a bot, logs it in per the flags, and starts the debug
// listener when requested. The cleanup func stops both.
func (f *sessionFlags) bot(ctx context.Context) (*bonkgo.Bot, func(), error) {
	log := f.logger()
	reg := prometheus.NewRegistry()
	b := bonkgo.New(bonkgo.Config{Logger: log, Registry: reg})

	if f.password == "" {
		f.password = os.Getenv("BONK_PASSWORD")
	}
	if f.token == "" {
		f.token = os.Getenv("BONK_TOKEN")
	}

	var err error
	switch {
	case f.guestName != "":
		err = b.LoginGuest(f.guestName)
	case f.token != "":
		err = b.LoginToken(ctx, f.token)
	case f.username != "":
		_, err = b.LoginPassword(ctx, f.username, f.password, false)
	default:
		err = fmt.Errorf("log in with --guest, --username or --token")
	}
	if err != nil {
		return nil, nil, err
	}

	stopDebug := func() {}
	if f.debugAddr != "" {
		stopDebug, err = startDebug(f.debugAddr, reg, log)
		if err != nil {
			b.Logout()
			return nil, nil, err
		}
	}
	cleanup := func() {
		stopDebug()
		b.Logout()
	}
	return b, cleanup, nil
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "bonkctl",
		Short: "Command-line bonk.io client tools",
		Long: `bonkctl drives bonk.io from the terminal.

It wraps the bonkgo client library with ready-made bots and
utilities:

  • rooms     browse and watch the public room listing
  • mirror    a bot that mirrors every opponent's inputs
  • xpfarm    idle in a private room and collect experience
  • map       archive encoded maps in an S3 bucket`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		roomsCmd(),
		mirrorCmd(),
		xpfarmCmd(),
		mapCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
