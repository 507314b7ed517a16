package cli

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

	"github.com/roach88/canvasreplay/internal/engine"
	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/harness"
	"github.com/roach88/canvasreplay/internal/loop"
	"github.com/roach88/canvasreplay/internal/metrics"
	"github.com/roach88/canvasreplay/internal/session"
	"github.com/roach88/canvasreplay/internal/telemetry"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Speed       time.Duration // 0 uses the configured speed
	MetricsAddr string        // empty uses the configured address
}

// RunResult is the JSON payload of a completed run.
type RunResult struct {
	Scenario string         `json:"scenario"`
	Events   int            `json:"events"`
	Applied  int            `json:"applied"`
	Speed    string         `json:"speed"`
	Final    event.Snapshot `json:"final"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Record a scenario and replay it in real time",
		Long: `Record the scenario's editing steps, then replay the log into a blank
canvas on a live event loop, printing one line per delivery.

The replay clause and assertions in the scenario are ignored; use
"canvasreplay test" to check them.

Example:
  canvasreplay run ./scenarios/editor_session.yaml
  canvasreplay run --speed 250ms --metrics-addr :9090 ./scenarios/editor_session.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Speed, "speed", 0, "delay between deliveries (default from config)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func runReplay(opts *RunOptions, path string, cmd *cobra.Command) error {
	cfg := opts.config()
	logger := opts.logger(cmd)
	formatter := opts.formatter(cmd)

	if opts.Speed < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid speed %s: must be positive", opts.Speed))
	}
	speed := cfg.Replay.Speed
	if opts.Speed > 0 {
		speed = opts.Speed
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	log, err := harness.Record(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to record scenario", err)
	}
	formatter.VerboseLog("Recorded %d event(s) from %s", len(log), scenario.Name)

	// Use the command's context if available (for testing)
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("error flushing traces", "error", err)
		}
	}()

	addr := cfg.Metrics.Addr
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
	}
	if addr != "" {
		srv := serveMetrics(addr, logger)
		defer srv.Close()
	}

	lp := loop.New(loop.WithLogger(logger))
	loopErr := make(chan error, 1)
	go func() { loopErr <- lp.Run(ctx) }()

	// Deliveries run on the loop goroutine; applied and finished are only
	// touched there until finished is closed.
	start := time.Now()
	applied := 0
	finished := make(chan struct{})
	progress := engine.ApplierFunc(func(e event.Event) {
		if !formatter.JSON() {
			elapsed := time.Since(start).Round(time.Millisecond)
			if applied == 0 {
				fmt.Fprintf(formatter.Writer, "[%8s] reset\n", elapsed)
			} else {
				fmt.Fprintf(formatter.Writer, "[%8s] %d/%d %s\n", elapsed, applied, len(log), e.Type)
			}
		}
		applied++
		if applied == len(log)+1 {
			close(finished)
		}
	})

	var sess *session.Session
	started := false
	err = lp.Do(ctx, func() {
		sess = session.New(lp,
			session.WithSessionID(scenario.SessionID),
			session.WithSpeed(speed),
			session.WithObserver(progress),
			session.WithLogger(logger),
		)
		for _, e := range log {
			sess.Engine().Append(e)
		}
		started = sess.StartReplay()
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to start replay", err)
	}

	if started {
		logger.Info("replay started", "scenario", scenario.Name, "events", len(log), "speed", speed)
		select {
		case <-finished:
		case <-ctx.Done():
			<-lp.Done()
			return WrapExitError(ExitFailure, "replay interrupted", ctx.Err())
		}
	} else if !formatter.JSON() {
		fmt.Fprintln(formatter.Writer, "Nothing to replay.")
	}

	var final event.Snapshot
	var status session.Status
	if err := lp.Do(ctx, func() {
		final = sess.Canvas().Snapshot()
		status = sess.Status()
	}); err != nil {
		return WrapExitError(ExitFailure, "failed to read final canvas", err)
	}

	lp.Stop()
	if err := <-loopErr; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "event loop error", err)
	}

	if formatter.JSON() {
		return formatter.Success(RunResult{
			Scenario: scenario.Name,
			Events:   status.Events,
			Applied:  applied,
			Speed:    speed.String(),
			Final:    final,
		})
	}

	fmt.Fprintln(formatter.Writer, status)
	fmt.Fprintf(formatter.Writer, "Final canvas: %d node(s), %d edge(s)\n", len(final.Nodes), len(final.Edges))
	return nil
}

// serveMetrics exposes /metrics until the returned server is closed.
func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}
