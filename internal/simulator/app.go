// Package simulator wires agents, their world and the debug server into a
// runnable simulation.
package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/npc"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/server"
)

// App runs the tick loop and, when enabled, the debug server.
type App struct {
	cfg     config.Config
	log     log.Log
	manager *npc.Manager
	world   *World
	debug   *server.Server
}

func NewApp(cfg config.Config, logger log.Log, m *npc.Manager, world *World, debug *server.Server) *App {
	return &App{cfg: cfg, log: logger, manager: m, world: world, debug: debug}
}

// ProvideLogger builds the root logger; the cleanup flushes it.
func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.New(log.Config{Level: level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideDebugServer returns nil when the debug server is disabled.
func ProvideDebugServer(cfg config.Config, m *npc.Manager, logger log.Log) *server.Server {
	if !cfg.Debug.Enabled {
		return nil
	}
	sc := server.DefaultConfig()
	sc.ListenAddr = cfg.Debug.Addr
	return server.NewServer(sc, m, logger)
}

func (a *App) Manager() *npc.Manager { return a.manager }
func (a *App) World() *World         { return a.world }
func (a *App) Debug() *server.Server { return a.debug }

// Run blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.debug != nil {
		if err := a.debug.Start(ctx); err != nil {
			return fmt.Errorf("starting debug server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.debug.Stop(stopCtx); err != nil {
				a.log.Warn("debug server shutdown", log.Error(err))
			}
		}()
	}

	a.log.Info("simulation started",
		log.Int("agents", len(a.manager.Agents())),
		log.Duration("tick_interval", a.cfg.Simulation.TickInterval),
	)
	if err := a.manager.Run(ctx, a.cfg.Simulation.TickInterval); err != nil {
		return err
	}

	for _, ag := range a.manager.Agents() {
		fields := []log.Field{
			log.String("agent", ag.Name()),
			log.Int("attacks", ag.Attacks()),
			log.Duration("elapsed", ag.Elapsed()),
		}
		if st, ok := ag.LastStatus(); ok {
			fields = append(fields, log.Stringer("status", st))
		}
		a.log.Info("agent summary", fields...)
	}
	a.log.Info("simulation stopped", log.Uint64("ticks", a.manager.Ticks()), log.Duration("world_time", a.world.Elapsed()))
	return nil
}
