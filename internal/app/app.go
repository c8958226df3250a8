package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdnet "net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/birnsj/Project9-V1-sub002/internal/config"
	servernet "github.com/birnsj/Project9-V1-sub002/internal/net"
	"github.com/birnsj/Project9-V1-sub002/internal/net/ws"
	"github.com/birnsj/Project9-V1-sub002/internal/sim"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
	"github.com/birnsj/Project9-V1-sub002/logging"
	loggingSinks "github.com/birnsj/Project9-V1-sub002/logging/sinks"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	// ZapLogger backs the process logger and the zap event sink. A
	// production logger is built when nil.
	ZapLogger *zap.Logger
	// ConfigPath names the scenario YAML. NAVSIM_CONFIG overrides it; with
	// neither set the built-in defaults are used.
	ConfigPath string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Listener replaces listening on the configured address.
	Listener stdnet.Listener
	// Console receives the console sink output. Defaults to stdout.
	Console io.Writer
}

// Run loads the scenario, starts the tick loop and the debug server and
// blocks until ctx is cancelled or either of them fails.
func Run(ctx context.Context, cfg Config) error {
	zapLogger := cfg.ZapLogger
	if zapLogger == nil {
		built, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to construct zap logger: %w", err)
		}
		zapLogger = built
		defer zapLogger.Sync()
	}
	telemetryLogger := telemetry.WrapZap(zapLogger)

	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	settings, err := loadSettings(cfg.ConfigPath, getenv)
	if err != nil {
		return err
	}
	if err := settings.ApplyEnv(getenv); err != nil {
		telemetryLogger.Printf("ignoring environment overrides: %v", err)
	}

	namedSinks, closeFiles, err := buildSinks(settings.Logging, cfg.Console, zapLogger, telemetryLogger)
	if err != nil {
		return err
	}
	defer closeFiles()

	router, err := logging.NewRouter(logging.ClockFunc(time.Now), settings.Logging.RouterConfig(), namedSinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	counters := telemetry.NewCounters()
	opts, err := settings.SimOptions()
	if err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	opts.Publisher = router
	opts.Metrics = counters

	loop, err := sim.NewLoop(opts)
	if err != nil {
		return fmt.Errorf("failed to construct simulation: %w", err)
	}

	hub := ws.NewHub(ws.HubConfig{Logger: telemetryLogger, Metrics: counters})
	handler := servernet.NewHTTPHandler(loop, servernet.HTTPHandlerConfig{
		Logger:   telemetryLogger,
		Counters: counters,
		Stream:   hub.Handle,
		TickRate: settings.Server.TickRate,
	})
	srv := &http.Server{Addr: settings.Server.Addr, Handler: handler}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		runTicks(groupCtx, loop, hub, settings.Server, telemetryLogger)
		return nil
	})
	group.Go(func() error {
		var serveErr error
		if cfg.Listener != nil {
			telemetryLogger.Printf("server listening on %s", cfg.Listener.Addr())
			serveErr = srv.Serve(cfg.Listener)
		} else {
			telemetryLogger.Printf("server listening on %s", srv.Addr)
			serveErr = srv.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", serveErr)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return group.Wait()
}

func loadSettings(path string, getenv func(string) string) (config.Config, error) {
	if raw := getenv(config.EnvConfigPath); raw != "" {
		path = raw
	}
	if path == "" {
		return config.Default(), nil
	}
	settings, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func buildSinks(cfg config.LoggingConfig, console io.Writer, zapLogger *zap.Logger, logger telemetry.Logger) ([]logging.NamedSink, func(), error) {
	if console == nil {
		console = os.Stdout
	}
	var files []*os.File
	closeFiles := func() {
		for _, f := range files {
			if err := f.Close(); err != nil {
				logger.Printf("failed to close %s: %v", f.Name(), err)
			}
		}
	}

	var named []logging.NamedSink
	for _, name := range cfg.Sinks {
		switch name {
		case "console":
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsole(console)})
		case "zap":
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewZap(zapLogger)})
		case "json":
			if cfg.JSONPath == "" {
				logger.Printf("json sink enabled without jsonPath; skipping")
				continue
			}
			f, err := os.OpenFile(cfg.JSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				closeFiles()
				return nil, nil, fmt.Errorf("failed to open json sink: %w", err)
			}
			files = append(files, f)
			named = append(named, logging.NamedSink{Name: name, Sink: loggingSinks.NewJSON(f, logging.DefaultConfig().JSON.FlushInterval)})
		}
	}
	return named, closeFiles, nil
}

// runTicks steps the loop at the configured rate and broadcasts a snapshot
// every SnapshotEvery ticks.
func runTicks(ctx context.Context, loop *sim.Loop, hub *ws.Hub, cfg config.ServerConfig, logger telemetry.Logger) {
	interval := time.Second / time.Duration(cfg.TickRate)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loop.Step(dt)
			if loop.Tick()%uint64(cfg.SnapshotEvery) != 0 {
				continue
			}
			if err := hub.Broadcast(loop.Snapshot()); err != nil {
				logger.Printf("failed to broadcast snapshot: %v", err)
			}
		}
	}
}
