package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/generation/blogpessoal/internal/apperror"
	"github.com/generation/blogpessoal/internal/model"
	"github.com/generation/blogpessoal/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint
// error. The driver returns *sqlite.Error with the extended result code
// SQLITE_CONSTRAINT_UNIQUE (2067) when an index rejects an insert/update.
func isUniqueViolation(err error) bool {
	var serr *sqlitedrv.Error
	return errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// Create inserts a new user, assigning an ID and timestamps.
//
// A duplicate usuario surfaces as apperror.ErrDuplicate. This is where
// the check-then-insert race resolves: even if two registrations pass
// the service-level lookup simultaneously, the UNIQUE index lets only
// one INSERT through and the other lands here.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO usuarios (id, nome, usuario, senha, foto, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Nome,
		user.Usuario,
		user.Senha,
		user.Foto,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("user", user.Usuario)
		}
		return fmt.Errorf("sqlite: inserting user (usuario=%s): %w", user.Usuario, err)
	}

	return nil
}

// Update persists changes to an existing user by ID. The ID itself is
// never rewritten. Moving the usuario onto a value held by another row
// trips the UNIQUE index and comes back as apperror.ErrDuplicate.
func (db *DB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE usuarios SET nome = ?, usuario = ?, senha = ?, foto = ?, updated_at = ?
		 WHERE id = ?`,
		user.Nome,
		user.Usuario,
		user.Senha,
		user.Foto,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("user", user.Usuario)
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected for user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// GetByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getOne(ctx,
		`SELECT id, nome, usuario, senha, foto, created_at, updated_at
		 FROM usuarios WHERE id = ?`, id)
}

// GetByUsuario retrieves a user by their unique usuario (exact match —
// no case folding, mirroring the UNIQUE index's default collation).
// Returns apperror.ErrNotFound if no user has that usuario.
func (db *DB) GetByUsuario(ctx context.Context, usuario string) (*model.User, error) {
	return db.getOne(ctx,
		`SELECT id, nome, usuario, senha, foto, created_at, updated_at
		 FROM usuarios WHERE usuario = ?`, usuario)
}

func (db *DB) getOne(ctx context.Context, query, key string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx, query, key).Scan(
		&u.ID,
		&u.Nome,
		&u.Usuario,
		&u.Senha,
		&u.Foto,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", key)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", key, err)
	}

	return &u, nil
}

// List returns every user, oldest first.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, nome, usuario, senha, foto, created_at, updated_at
		 FROM usuarios ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	// Start with an empty (non-nil) slice so an empty table serializes
	// as [] rather than null.
	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Nome,
			&u.Usuario,
			&u.Senha,
			&u.Foto,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// DeleteAll wipes the usuarios table. Test and bootstrap use only — it
// is deliberately not reachable from any HTTP route.
func (db *DB) DeleteAll(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM usuarios`); err != nil {
		return fmt.Errorf("sqlite: deleting all users: %w", err)
	}
	return nil
}
