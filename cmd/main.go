package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balance_checker/internal/config"
	"balance_checker/internal/etherscan"
	"balance_checker/internal/grist"
	"balance_checker/internal/handlers"
	"balance_checker/internal/health"
	"balance_checker/internal/logger"
	"balance_checker/internal/models"
	"balance_checker/internal/notify"
	"balance_checker/internal/repository"
	"balance_checker/internal/repository/db"
	"balance_checker/internal/server"
	"balance_checker/internal/service"
	"balance_checker/internal/watchdog"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load and validate configuration; a bad deployment must die before
	// the loop starts, with an exit status distinct from watchdog expiry
	cfg, err := config.Load()
	if err != nil {
		log.Errorw("configuration error", "err", err)
		os.Exit(config.ExitCodeConfig)
	}

	// open the event journal
	journal, err := openDB(cfg, log)
	if err != nil {
		log.Errorw("failed to init sqlite", "err", err)
		os.Exit(config.ExitCodeConfig)
	}
	defer func() {
		if cerr := journal.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(journal)

	// external clients
	store := grist.NewClient(grist.Config{
		Server:        cfg.Grist.Server,
		DocID:         cfg.Grist.DocID,
		APIKey:        cfg.Grist.APIKey,
		WalletsTable:  cfg.Grist.WalletsTable,
		SettingsTable: cfg.Grist.SettingsTable,
		ChainsTable:   cfg.Grist.ChainsTable,
	}, logger.Named("grist"))
	balance := etherscan.NewClient(cfg.Etherscan.APIKey, logger.Named("etherscan"))

	// alerting is optional; keep the interface nil when disabled so the
	// watchdog skips it entirely
	var notifier watchdog.Notifier
	if tg := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger.Named("telegram")); tg != nil {
		notifier = tg
	}

	// liveness plumbing
	reporter := health.NewReporter()
	dog := watchdog.New(watchdog.Config{
		Ceiling:       cfg.Watchdog.Ceiling,
		DecayStep:     cfg.Watchdog.DecayStep,
		DecayInterval: cfg.Watchdog.DecayInterval,
		WarnThreshold: cfg.Watchdog.WarnThreshold,
	}, reporter, notifier, terminateFunc(repos, log), logger.Named("watchdog"))

	// wire dependencies
	services := service.NewService(service.Deps{
		Store:    store,
		Balance:  balance,
		Watchdog: dog,
		Health:   reporter,
		Events:   repos.Events,
		Checker: service.CheckerConfig{
			LookupTimeout: cfg.Checker.LookupTimeout,
			IdleSleep:     cfg.Checker.IdleSleep,
		},
		Log: logger.Named("checker"),
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dog.Run(ctx)
	go services.Checker.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite event journal using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	path := cfg.DBPath
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		path = "app.db"
	}
	return db.InitDB(path)
}

// terminateFunc builds the watchdog's terminal action: journal the expiry
// best-effort, then exit with the expiry status so the supervisor restarts
// the process.
func terminateFunc(repos *repository.Repository, log *logger.Logger) func(int) {
	return func(code int) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := repos.Events.Append(ctx, models.CheckEvent{
			Type:        models.EventWatchdogExpired,
			Description: "watchdog expired, terminating",
		})
		if err != nil {
			log.Errorw("failed to journal watchdog expiry", "err", err)
		}
		log.Errorw("watchdog expired, terminating", "exit_code", code)
		_ = log.Sync()
		os.Exit(code)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infow(fmt.Sprintf("received %s, shutting down", sig))

	// stop the checker and the watchdog
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
