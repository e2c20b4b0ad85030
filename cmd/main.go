package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/streamrace/bountyboard/internal/adapters/http/api"
	"github.com/streamrace/bountyboard/internal/adapters/ledger"
	"github.com/streamrace/bountyboard/internal/adapters/ocrengine"
	"github.com/streamrace/bountyboard/internal/app"
	"github.com/streamrace/bountyboard/internal/config"
	"github.com/streamrace/bountyboard/internal/domain/bounty"
	"github.com/streamrace/bountyboard/internal/domain/roster"
	"github.com/streamrace/bountyboard/pkg/logger"
	"github.com/streamrace/bountyboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to keep the registry focused
	// on the domain metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	board, err := ledger.NewFileStore(cfg.DataDir, ledger.WithBoardFile(cfg.BoardFile))
	if err != nil {
		loggerInstance.Error(ctx, "failed to open bounty board", logger.String("data_dir", cfg.DataDir), logger.Error(err))
		return
	}

	// Seed the registry from the persisted board so returning players
	// resolve to their existing identities after a restart.
	known, err := app.KnownPlayers(ctx, board)
	if err != nil {
		loggerInstance.Error(ctx, "failed to read bounty board", logger.Error(err))
		return
	}

	svc := app.New(board,
		app.WithLogger(loggerInstance.Named("app")),
		app.WithRegistry(roster.NewRegistry(
			roster.WithToleranceRatio(cfg.MatchToleranceRatio),
			roster.WithMinEdits(cfg.MatchMinEdits),
			roster.WithKnownPlayers(known),
		)),
		app.WithCalculator(bounty.NewCalculator(
			bounty.WithPlacementFactor(cfg.PlacementFactor),
			bounty.WithWinBonus(cfg.WinBonus),
		)),
		app.WithSessionTTL(time.Duration(cfg.SessionTTLMinutes)*time.Minute),
	)

	engine := ocrengine.NewTesseractEngine(
		ocrengine.WithLanguage(cfg.OCRLanguage),
		ocrengine.WithUpscale(cfg.OCRUpscale),
	)

	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, engine, svc, cfg.MaxLeaderboardLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startServiceMetricsUpdater periodically refreshes gauge metrics from
// service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics updates service-level gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if open, ok := stats["open_sessions"].(int); ok {
		metrics.UpdateOpenRaceSessions(open)
	}
	if known, ok := stats["known_players"].(int); ok {
		metrics.UpdateRegistryPlayers(known)
	}
	if players, ok := stats["board_players"].(int); ok {
		metrics.UpdateBoardPlayers(players)
	}
}
