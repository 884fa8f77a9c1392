// Package repository declares the persistence interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/generation/blogpessoal/internal/model"
)

// UserRepository is the persistence gateway for user accounts.
//
// Create and Update return apperror.ErrDuplicate (wrapped) when the
// usuario column's UNIQUE constraint is violated. That constraint — not
// the service-level pre-check — is what makes registration safe when two
// requests race on the same usuario: the store serializes the inserts
// and rejects the loser.
//
// DeleteAll exists for test isolation and bootstrap resets only; it is
// never reachable from the HTTP surface.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsuario(ctx context.Context, usuario string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	DeleteAll(ctx context.Context) error
}
