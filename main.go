package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nstehr/vimy/vimy-stp/agent"
	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/ipc"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Skills, Tactics and Plays for robot soccer`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	socketPath := flag.String("socket", "/tmp/vimy-stp.sock", "unix socket to listen on")
	tickBudget := flag.Duration("tick-budget", 16*time.Millisecond, "warn when a world snapshot takes longer than this to answer")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting vimy-stp", "config", *configPath)
	store := config.NewStore(cfg)

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(*socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", *socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", *socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(*socketPath)

	slog.Info("listening on domain socket", "path", *socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		w, err := config.NewWatcher(*configPath, store)
		if err != nil {
			slog.Error("failed to watch config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		go w.Run(ctx)
		defer func() { <-w.Done() }()
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(ctx, conn, store, *tickBudget)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

// handleConn gives each producer its own agent; plays and tactics hold
// per-session state and are never shared between connections.
func handleConn(ctx context.Context, conn net.Conn, store *config.Store, budget time.Duration) {
	c := ipc.NewConnection(conn, nil)
	c.Budget = budget
	a := agent.New(store)
	c.Handle(ipc.TypeHello, func(env ipc.Envelope) (*ipc.Envelope, error) {
		resp, err := a.HandleHello(env)
		c.Team = a.Team
		return resp, err
	})
	c.Handle(ipc.TypeWorld, a.HandleWorld)
	c.Serve(ctx)
	if n := c.Overruns(); n > 0 {
		slog.Warn("session ended with tick overruns", "team", c.Team, "overruns", n)
	}
}
