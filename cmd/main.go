package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "greenhouse/docs"
	"greenhouse/internal/clock"
	"greenhouse/internal/config"
	"greenhouse/internal/handlers"
	"greenhouse/internal/logger"
	"greenhouse/internal/metrics"
	"greenhouse/internal/poller"
	"greenhouse/internal/processor"
	"greenhouse/internal/queue"
	"greenhouse/internal/repository"
	"greenhouse/internal/repository/db"
	"greenhouse/internal/server"
	"greenhouse/internal/service"
	"greenhouse/internal/status"
)

// @title                       Greenhouse controller API
// @version                     1.0
// @description                 Live state, record history and manual watering for the greenhouse controller.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)
	m := metrics.New()
	clk := clock.NewUTC()

	database, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos, err := repository.NewRepository(database)
	if err != nil {
		log.Fatalw("failed to build repositories", "err", err)
	}

	// startup context for hardware and broker connects and timer seeding
	startCtx, startCancel := context.WithTimeout(context.Background(), time.Minute)
	hw, err := openHardware(startCtx, cfg, clk, log, m)
	if err != nil {
		startCancel()
		log.Fatalw("failed to open hardware", "err", err)
	}
	defer hw.Close(log)

	records := queue.New()
	m.RegisterQueueDepth(records.Len)

	pumps, err := buildPumps(startCtx, cfg, hw.commander, repos.Waterings, clk, log, m)
	startCancel()
	if err != nil {
		log.Fatalw("failed to set up pumps", "err", err)
	}

	pollers := buildPollers(cfg, hw, pumps, records, clk, log, m)

	tracker := status.NewTracker(clk.Now())
	proc := processor.New(records, processorStores(repos), hw.sinks, tracker, log.Named("processor"), m)

	services := service.NewService(repos, service.Deps{
		Tracker:     tracker,
		Pumps:       servicePumps(pumps),
		Exclusive:   exclusivePumps(cfg),
		ManualMaxML: cfg.ManualMaxML,
		Recorder:    records,
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			Salt:       cfg.Auth.Salt,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Clock: clk,
		Log:   log.Named("service"),
	})
	apiHandler := handlers.NewHandler(services, m.Handler(), log.Named("http"))

	// runCtx bounds pump runs and sensor reads; it is cancelled only after
	// the pollers have been asked to stop.
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	for _, p := range pollers {
		p.Start(runCtx)
	}
	log.Infow("pollers_started", "count", len(pollers))

	srv := &server.Server{WriteTimeout: longestPumpRun(cfg) + 30*time.Second}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	stopped := make(chan struct{})
	go waitForShutdown(runCtx, cancelRun, pollers, cfg.ShutdownTimeout, stopped, log)

	if err := proc.Run(runCtx); err != nil {
		log.Errorw("record processor stopped", "err", err)
		cancelRun()
	}
	<-stopped

	drainQueue(proc, cfg.ShutdownTimeout, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	log.Infow("shutdown_complete")
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	path := cfg.DB.Path
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "greenhouse.db")
		path = "greenhouse.db"
	}
	return db.InitDB(path)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown waits for a termination signal, or for the run context to
// end on its own, then stops the pollers and cancels whatever they left in
// flight.
func waitForShutdown(runCtx context.Context, cancelRun context.CancelFunc, pollers []*poller.Poller, timeout time.Duration, stopped chan<- struct{}, log *logger.Logger) {
	defer close(stopped)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Infow("shutting down...", "signal", sig.String())
	case <-runCtx.Done():
	}

	closePollers(pollers, timeout, log)
	cancelRun()
}

// closePollers asks every poller to stop and waits for in-flight ticks, up
// to timeout in total.
func closePollers(pollers []*poller.Poller, timeout time.Duration, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, p := range pollers {
		if err := p.Close(ctx); err != nil {
			log.Warnw("poller_close_timeout", "poller", p.Name(), "err", err)
		}
	}
}

func drainQueue(proc *processor.Processor, timeout time.Duration, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := proc.Drain(ctx)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Errorw("queue drain failed", "stored", n, "err", err)
		return
	}
	log.Infow("queue_drained", "stored", n)
}
