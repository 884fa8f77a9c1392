// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// The handlers never touch SQL, the service never touches HTTP, and the
// repository knows nothing about either. UserService takes a
// repository.UserRepository (interface), not a *sqlite.DB, so tests can
// hand it an in-memory fake and main.go decides the real backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/generation/blogpessoal/internal/apperror"
	"github.com/generation/blogpessoal/internal/auth"
	"github.com/generation/blogpessoal/internal/model"
	"github.com/generation/blogpessoal/internal/repository"
)

// MinSenhaLength is the shortest senha accepted at registration.
const MinSenhaLength = 8

// MaxNomeLength bounds the display name.
const MaxNomeLength = 100

// UserService handles the user-management business rules: registration
// with usuario de-duplication, profile update, credential verification,
// login-token issuing, and listing.
type UserService struct {
	repo      repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService // nil when no JWT secret is configured
	logger    *slog.Logger
}

// NewUserService creates a UserService with its dependencies.
// tokens may be nil: every operation except Login works without it, and
// Login then reports that token auth is disabled.
func NewUserService(
	repo repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		repo:      repo,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// LoginResult bundles the authenticated user with the issued token so
// the handler can build the login response in one step.
type LoginResult struct {
	User  *model.User
	Token string
}

// UserInput carries the writable account fields for Register and Update.
// Senha is plaintext here — it exists only in flight and is hashed
// before anything touches the repository.
type UserInput struct {
	Nome    string
	Usuario string
	Senha   string
	Foto    string
}

// validateNomeUsuario applies the field rules shared by Register and
// Update. The returned values are whitespace-trimmed.
func validateNomeUsuario(nome, usuario string) (string, string, error) {
	nome = strings.TrimSpace(nome)
	usuario = strings.TrimSpace(usuario)

	if nome == "" {
		return "", "", apperror.ValidationFailed("nome", "nome is required")
	}
	if len(nome) > MaxNomeLength {
		return "", "", apperror.ValidationFailed("nome",
			fmt.Sprintf("nome must be %d characters or less", MaxNomeLength))
	}
	if usuario == "" {
		return "", "", apperror.ValidationFailed("usuario", "usuario is required")
	}
	// The usuario doubles as an e-mail address. net/mail implements the
	// RFC 5322 grammar — good enough to catch "not an address" without
	// inventing a regexp.
	if addr, err := mail.ParseAddress(usuario); err != nil || addr.Address != usuario {
		return "", "", apperror.ValidationFailed("usuario", "usuario must be a valid e-mail address")
	}

	return nome, usuario, nil
}

func validateSenha(senha string) error {
	if len(senha) < MinSenhaLength {
		return apperror.ValidationFailed("senha",
			fmt.Sprintf("senha must be at least %d characters", MinSenhaLength))
	}
	return nil
}

// Register creates a new user account.
//
// Flow: validate → duplicate pre-check → bcrypt-hash the senha → insert.
// The pre-check gives a friendly error on the common path; the UNIQUE
// index in the repository is what actually guarantees the invariant when
// two registrations race, and the repository reports that case with the
// same apperror.ErrDuplicate. Either way the store is left unchanged on
// failure.
func (s *UserService) Register(ctx context.Context, in UserInput) (*model.User, error) {
	nome, usuario, err := validateNomeUsuario(in.Nome, in.Usuario)
	if err != nil {
		return nil, err
	}
	if err := validateSenha(in.Senha); err != nil {
		return nil, err
	}

	// Advisory pre-check: catches duplicates before paying for bcrypt.
	if _, err := s.repo.GetByUsuario(ctx, usuario); err == nil {
		return nil, apperror.Duplicate("user", usuario)
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("checking usuario %s: %w", usuario, err)
	}

	hash, err := s.passwords.Hash(in.Senha)
	if err != nil {
		return nil, fmt.Errorf("hashing senha: %w", err)
	}

	user := &model.User{
		Nome:    nome,
		Usuario: usuario,
		Senha:   hash,
		Foto:    strings.TrimSpace(in.Foto),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if !isDuplicate(err) {
			s.logger.Error("failed to create user",
				slog.String("usuario", usuario),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("usuario", user.Usuario),
	)

	return user, nil
}

// Update modifies an existing user's profile.
//
// The senha is optional here: empty keeps the stored hash, non-empty is
// re-validated and re-hashed. Changing the usuario is allowed as long as
// no *other* account holds the new value; the user's own record matching
// is of course fine. The ID never changes.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}

	nome, usuario, err := validateNomeUsuario(in.Nome, in.Usuario)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Reject an usuario already held by a different account. Same
	// advisory-check-plus-UNIQUE-index arrangement as Register.
	if existing, err := s.repo.GetByUsuario(ctx, usuario); err == nil {
		if existing.ID != id {
			return nil, apperror.Duplicate("user", usuario)
		}
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("checking usuario %s: %w", usuario, err)
	}

	user.Nome = nome
	user.Usuario = usuario
	user.Foto = strings.TrimSpace(in.Foto)

	if in.Senha != "" {
		if err := validateSenha(in.Senha); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(in.Senha)
		if err != nil {
			return nil, fmt.Errorf("hashing senha: %w", err)
		}
		user.Senha = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if !isDuplicate(err) && !isNotFound(err) {
			s.logger.Error("failed to update user",
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("user updated",
		slog.String("id", user.ID),
		slog.String("usuario", user.Usuario),
	)

	return user, nil
}

// Authenticate verifies a usuario/senha pair against the stored bcrypt
// hash and returns the account on success.
//
// Both "no such usuario" and "wrong senha" come back as the same
// apperror.ErrUnauthorized — a login form must not reveal which half was
// wrong, or it becomes an account-enumeration oracle.
func (s *UserService) Authenticate(ctx context.Context, usuario, senha string) (*model.User, error) {
	user, err := s.repo.GetByUsuario(ctx, usuario)
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.Unauthorized()
		}
		return nil, fmt.Errorf("looking up usuario %s: %w", usuario, err)
	}

	if err := s.passwords.Verify(user.Senha, senha); err != nil {
		return nil, apperror.Unauthorized()
	}

	return user, nil
}

// Login authenticates and issues a bearer token for the account — the
// POST /usuarios/logar flow.
func (s *UserService) Login(ctx context.Context, usuario, senha string) (*LoginResult, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("login is disabled: no JWT secret configured")
	}

	user, err := s.Authenticate(ctx, usuario, senha)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("id", user.ID),
		slog.String("usuario", user.Usuario),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// GetByID returns the user with the given internal ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, apperror.ErrDuplicate)
}
