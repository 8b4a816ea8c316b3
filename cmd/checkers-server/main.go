// Command checkers-server serves the checkers REST API with user accounts and optional
// SQLite persistence. "checkers-server db ..." runs the database administration commands.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"checkers/cmd/checkers-server/cli"
	"checkers/internal/config"
	"checkers/internal/http"
	"checkers/internal/processor"
	"checkers/internal/service"
	"checkers/internal/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	envFile                 = ".env"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load(flag.CommandLine, os.Args[1:], envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	if err := config.ConfigureLogger(cfg.LogLevel, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}

	if cfg.PIDPath != "" {
		cleanup, err := managePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer cleanup()
		log.Info().Str("path", cfg.PIDPath).Bool("lock", cfg.PIDLock).Msg("PID file created")
	}

	var store *storage.Store
	if cfg.StoragePath != "" {
		log.Info().Str("path", cfg.StoragePath).Msg("initializing persistent storage")
		store, err = storage.NewStore(cfg.StoragePath, cfg.Dev)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize storage")
		}
		if err := store.InitDB(); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize schema")
		}
	} else {
		log.Info().Msg("persistent storage disabled (use -storage-path to enable)")
	}

	var jwtSecret []byte
	if cfg.Dev {
		jwtSecret = []byte("dev-secret-minimum-32-characters-long")
		log.Warn().Msg("using fixed JWT secret (dev mode)")
	} else {
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatal().Err(err).Msg("failed to generate JWT secret")
		}
		log.Info().Msg("JWT secret generated (sessions valid until restart)")
	}

	svc := service.New(store, service.Config{
		JWTSecret:        jwtSecret,
		MaxComputerGames: cfg.MaxComputerGames,
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	proc := processor.New(svc, processor.Config{
		Workers:       cfg.Workers,
		SearchTimeout: cfg.SearchTimeout,
	})
	app := http.NewFiberApp(proc, svc, cfg.Dev)

	addr := cfg.Addr()
	go func() {
		log.Info().
			Str("addr", "http://"+addr).
			Bool("dev", cfg.Dev).
			Int("workers", cfg.Workers).
			Str("storage", svc.GetStorageHealth()).
			Msg("checkers API server starting")
		log.Info().Msgf("API endpoints: http://%s/api/v1/games, auth: http://%s/api/v1/auth/[register|login|me]", addr, addr)

		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}
	if err := proc.Close(); err != nil {
		log.Warn().Err(err).Msg("processor close error")
	}
	cleanupCancel()

	// flushes and closes storage
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("service shutdown error")
	}

	log.Info().Msg("server exited")
}
