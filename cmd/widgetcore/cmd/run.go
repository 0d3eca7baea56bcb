package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/go-drift/widgetcore/cmd/widgetcore/internal/config"
	"github.com/go-drift/widgetcore/pkg/dispatch"
	"github.com/go-drift/widgetcore/pkg/driver"
	"github.com/go-drift/widgetcore/pkg/errors"
	"github.com/go-drift/widgetcore/pkg/metrics"
	"github.com/go-drift/widgetcore/pkg/timer"
)

// frameInterval is how often the main loop drains the queue.
const frameInterval = 16 * time.Millisecond

func init() {
	RegisterCommand(&Command{
		Name:  "run",
		Short: "Drive the scene with a simulated pointer",
		Long: `Build the scene from configuration and run the main loop against a
simulated touch driver. The driver posts press, drag, and release gestures
over every leaf widget at driver.rate events per second; the main loop
drains the queue once per frame.

Flags:
  --duration D         Stop after D (e.g. 5s); default runs until interrupted
  --metrics-addr ADDR  Serve Prometheus metrics on ADDR (overrides metrics.addr)`,
		Usage: "widgetcore [--config FILE] run [--duration D] [--metrics-addr ADDR]",
		Run:   runRun,
	})
}

type runOptions struct {
	duration    time.Duration
	metricsAddr string
}

func parseRunArgs(args []string) (runOptions, error) {
	var opts runOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--duration", "--metrics-addr":
			if !hasValue {
				if i+1 >= len(args) {
					return opts, fmt.Errorf("%s requires a value", name)
				}
				i++
				value = args[i]
			}
		default:
			return opts, fmt.Errorf("unknown flag %q", arg)
		}

		switch name {
		case "--duration":
			d, err := time.ParseDuration(value)
			if err != nil {
				return opts, fmt.Errorf("invalid --duration: %w", err)
			}
			if d < 0 {
				return opts, fmt.Errorf("--duration cannot be negative")
			}
			opts.duration = d
		case "--metrics-addr":
			opts.metricsAddr = value
		}
	}
	return opts, nil
}

func runRun(args []string) error {
	opts, err := parseRunArgs(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.metricsAddr != "" {
		cfg.MetricsAddr = opts.metricsAddr
	}

	logger := newLogger(cfg)
	errors.SetHandler(&errors.LogHandler{Verbose: cfg.Verbose, Logger: &logger})
	defer errors.SetHandler(nil)

	obs := metrics.New(prometheus.NewRegistry())
	d, err := dispatch.New(
		dispatch.WithCapacity(cfg.Capacity),
		dispatch.WithRecover(cfg.Recover),
		dispatch.WithObserver(obs),
		dispatch.WithRootBounds(screenBounds(cfg.Scene)),
	)
	if err != nil {
		return err
	}
	s, err := buildScene(d, cfg.Scene, logger)
	if err != nil {
		return err
	}
	targets := s.targets()
	if len(targets) == 0 {
		return fmt.Errorf("scene has no widgets to touch")
	}

	driver.Register(d)
	defer driver.Register(nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if opts.duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, opts.duration)
		defer stop()
	}

	logger.Info().
		Str("app", cfg.AppName).
		Int("widgets", len(s.widgets)).
		Int("capacity", cfg.Capacity).
		Float64("rate", cfg.DriverRate).
		Msg("starting")

	limiter := rate.NewLimiter(rate.Limit(cfg.DriverRate), cfg.DriverBurst)
	var dropped int
	frames := 0

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runTicks(gctx) })
	g.Go(func() (err error) {
		defer errors.Recover("driver.run")
		dropped, err = runDriver(gctx, limiter, newGesture(targets))
		return err
	})
	g.Go(func() (err error) {
		defer errors.RecoverWithCallback("widgetcore.mainLoop", func(r any) {
			err = fmt.Errorf("main loop panicked: %v", r)
		})
		frames = runMainLoop(gctx, d)
		return nil
	})
	if cfg.MetricsAddr != "" {
		serveDebug(gctx, g, cfg.MetricsAddr, newDebugRouter(obs.Handler(), s), logger)
	}
	if err := g.Wait(); err != nil {
		return err
	}

	delivered := d.DrainQueue()
	released := s.destroy()

	logger.Info().
		Int("frames", frames).
		Int("late_events", delivered).
		Int("dropped", dropped).
		Int("presses", s.stats.presses).
		Int("releases", s.stats.releases).
		Int("notifications", s.stats.notifications).
		Uint64("longest_hold_ms", s.stats.longestHold).
		Int("released", released).
		Msg("stopped")
	return nil
}

func newLogger(cfg *config.Resolved) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Str("app", cfg.AppName).
		Logger()
}

// runTicks advances the millisecond counter until ctx is done.
func runTicks(ctx context.Context) error {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			timer.Inc()
		}
	}
}

// runDriver posts gesture events through the driver entry point, paced by
// limiter, and returns how many were dropped.
func runDriver(ctx context.Context, limiter *rate.Limiter, g *gesture) (int, error) {
	dropped := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return dropped, nil
			}
			return dropped, err
		}
		kind, x, y := g.next()
		if err := driver.PointerMessage(kind, x, y); err != nil {
			dropped++
		}
	}
}

// runMainLoop drains the queue once per frame and redraws when anything was
// delivered. It owns the hierarchy while it runs.
func runMainLoop(ctx context.Context, d *dispatch.Dispatcher) int {
	t := time.NewTicker(frameInterval)
	defer t.Stop()
	frames := 0
	for {
		select {
		case <-ctx.Done():
			return frames
		case <-t.C:
			if d.DrainQueue() > 0 {
				d.Update(nil)
			}
			frames++
		}
	}
}

// newDebugRouter serves Prometheus metrics and a text dump of the scene.
// The scene must not change shape while the router is serving.
func newDebugRouter(metricsHandler http.Handler, s *scene) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/scene", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		writeWalk(w, s)
	})
	return r
}

func serveDebug(ctx context.Context, g *errgroup.Group, addr string, handler http.Handler, logger zerolog.Logger) {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// gestureMoves is the number of drag steps between press and release.
const gestureMoves = 4

// gesture cycles press, drag, and release over a list of target rectangles.
type gesture struct {
	targets []dispatch.Rect
	target  int
	step    int
}

func newGesture(targets []dispatch.Rect) *gesture {
	return &gesture{targets: targets}
}

func (g *gesture) next() (dispatch.Kind, int, int) {
	r := g.targets[g.target]
	x, y := r.XMin+r.Width()/2, r.YMin+r.Height()/2

	var kind dispatch.Kind
	switch {
	case g.step == 0:
		kind = dispatch.MsgPointerDown
	case g.step <= gestureMoves:
		kind = dispatch.MsgPointerMove
		x += g.step
	default:
		kind = dispatch.MsgPointerUp
		x += gestureMoves
	}

	g.step++
	if g.step > gestureMoves+1 {
		g.step = 0
		g.target = (g.target + 1) % len(g.targets)
	}
	return kind, x, y
}
