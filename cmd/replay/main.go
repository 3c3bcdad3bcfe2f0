// Command replay feeds a scripted scenario through the behavior engine and
// checks its expectations, optionally streaming debug shapes to a browser.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nstehr/vimy/vimy-stp/agent"
	"github.com/nstehr/vimy/vimy-stp/config"
	"github.com/nstehr/vimy/vimy-stp/scenario"
	"github.com/nstehr/vimy/vimy-stp/stp/play"
	"github.com/nstehr/vimy/vimy-stp/viz"
)

var (
	configPath string
	playName   string
	vizAddr    string
	pace       time.Duration
	linger     bool
)

var rootCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scenario through the STP engine",
	Long: `Replay a YAML scenario of world snapshots through the behavior engine.

Each step's expectations are expr boolean expressions evaluated after the
step's last tick, for example:
  Tactic(1) == "pass_defender" && State(1) == "intercept_ball"`,
	Args:          cobra.ExactArgs(1),
	RunE:          runReplay,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (watched for changes)")
	rootCmd.Flags().StringVarP(&playName, "play", "p", "", "pin a play instead of following the referee command")
	rootCmd.Flags().StringVar(&vizAddr, "viz", "", "serve debug shapes over websocket on this address")
	rootCmd.Flags().DurationVar(&pace, "pace", 0, "delay between ticks")
	rootCmd.Flags().BoolVar(&linger, "linger", false, "keep the viz server up after the replay finishes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	if playName == "" {
		playName = sc.Play
	}

	store := config.NewStore(cfg)
	a := agent.New(store)
	a.Team = sc.Name
	if playName != "" {
		kind, err := play.ParseKind(playName)
		if err != nil {
			return err
		}
		a.Override = &kind
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	// replayCtx ends the helpers once the replay itself is over.
	replayCtx, replayDone := context.WithCancel(ctx)

	if configPath != "" {
		w, err := config.NewWatcher(configPath, store)
		if err != nil {
			replayDone()
			return err
		}
		g.Go(func() error { return w.Run(replayCtx) })
	}

	opts := scenario.Options{Pace: pace}
	if vizAddr != "" {
		hub := viz.NewHub()
		a.Debug = hub
		opts.OnTick = hub.PublishTick
		srv := &http.Server{Addr: vizAddr, Handler: hub}
		g.Go(func() error {
			slog.Info("viz listening", "addr", vizAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("viz server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-replayCtx.Done()
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var results []scenario.Result
	g.Go(func() error {
		if !linger || vizAddr == "" {
			defer replayDone()
		}
		var err error
		results, err = scenario.Run(replayCtx, sc, a, opts)
		return err
	})

	err = g.Wait()
	replayDone()
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d expectations passed\n", sc.Name, passed, len(results))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
