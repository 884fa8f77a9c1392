// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the "composition root": the one place where the whole
// dependency chain is assembled —
//
//	Config → sqlite.DB → auth services → UserService → UserHandler → routes
//
// Each layer only receives what it needs: the service gets the
// repository interface (not the concrete sqlite.DB), the handler gets
// the service, and the router gets the handler. main.go stays minimal.
package server

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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/generation/blogpessoal/internal/apperror"
	"github.com/generation/blogpessoal/internal/auth"
	"github.com/generation/blogpessoal/internal/handler"
	"github.com/generation/blogpessoal/internal/middleware"
	sqliteRepo "github.com/generation/blogpessoal/internal/repository/sqlite"
	"github.com/generation/blogpessoal/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string // empty disables /usuarios/logar token issuing
	BcryptCost int    // 0 = production default

	// Bootstrap root account, seeded on startup when absent. Protected
	// endpoints are unreachable on a fresh database without it — basic
	// auth needs at least one stored credential to validate against.
	RootNome    string
	RootUsuario string
	RootSenha   string
}

// Server owns the router, the database connection, and the wiring
// between them. The DB is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	users  *service.UserService
}

// New creates a Server: opens the database, wires the services and
// handlers, registers the routes, and seeds the root user.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	passwords := auth.NewPasswordService(cfg.BcryptCost)

	var tokens *auth.TokenService
	if cfg.JWTSecret != "" {
		tokens, err = auth.NewTokenService(cfg.JWTSecret)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating token service: %w", err)
		}
	} else {
		logger.Warn("JWT_SECRET not set — /usuarios/logar will not issue tokens")
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		users:  service.NewUserService(db, passwords, tokens, logger),
	}

	if err := s.seedRootUser(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding root user: %w", err)
	}

	s.setupRoutes()

	return s, nil
}

// seedRootUser registers the bootstrap account when it doesn't exist
// yet. Running against an existing database is a no-op — the duplicate
// comes back from Register and is ignored.
func (s *Server) seedRootUser() error {
	if s.config.RootUsuario == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nome := s.config.RootNome
	if nome == "" {
		nome = "Root"
	}

	user, err := s.users.Register(ctx, service.UserInput{
		Nome:    nome,
		Usuario: s.config.RootUsuario,
		Senha:   s.config.RootSenha,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return nil // already seeded on a previous start
		}
		return err
	}

	s.logger.Info("root user seeded",
		slog.String("id", user.ID),
		slog.String("usuario", user.Usuario),
	)
	return nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /usuarios/cadastrar → register (public)
//	POST /usuarios/logar     → login (public)
//	PUT  /usuarios/atualizar → update (basic auth)
//	GET  /usuarios/all       → list (basic auth)
//	GET  /usuarios/{id}      → get one (basic auth)
//	GET  /healthz            → liveness probe
//
// MIDDLEWARE ORDER MATTERS: RequestID and RealIP run first so the
// logger sees them; Recoverer turns panics into 500s before they kill
// the connection.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	userHandler := handler.NewUserHandler(s.users, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/usuarios", func(r chi.Router) {
		r.Post("/cadastrar", userHandler.HandleRegister)
		r.Post("/logar", userHandler.HandleLogin)

		// Protected subtree: every route below validates basic auth
		// against the stored bcrypt hashes before the handler runs.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireBasicAuth(s.users))
			r.Put("/atualizar", userHandler.HandleUpdate)
			r.Get("/all", userHandler.HandleList)
			r.Get("/{id}", userHandler.HandleGetByID)
		})
	})
}

// Handler exposes the fully wired router. Tests mount it on an
// httptest.Server instead of binding a real port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start's
// signal loop. Tests pair New with a deferred Close.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and blocks until shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections on SIGINT/SIGTERM
// 2. Wait up to 30s for in-flight requests
// 3. Close the database (flushes the WAL, releases the file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
