// Package main is the entry point for the blog user-management server.
//
// The main package stays minimal — its job is to:
// 1. Read configuration
// 2. Create the logger
// 3. Build and start the server
//
// All actual logic lives in imported packages (internal/server,
// internal/handler, ...), which keeps every component testable without
// going through main.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/generation/blogpessoal/internal/config"
	"github.com/generation/blogpessoal/internal/server"
)

func main() {
	// slog.NewTextHandler writes human-readable structured logs to the
	// terminal. Use LevelInfo in production to cut the noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the data directory exists (like `mkdir -p`). ":memory:" has
	// no directory to create.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		DBPath:      cfg.DBPath,
		JWTSecret:   cfg.JWTSecret,
		BcryptCost:  cfg.BcryptCost,
		RootNome:    cfg.RootNome,
		RootUsuario: cfg.RootUsuario,
		RootSenha:   cfg.RootSenha,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
