// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account on the blog.
//
// The JSON field names follow the public API contract, which is in
// Portuguese: `nome` (display name), `usuario` (the e-mail-shaped login
// identifier) and `senha` (password). Clients send `senha` only through
// the request DTOs in the handler package — it never round-trips here.
//
// WHY Senha WITH json:"-"?
// The Senha field holds the bcrypt HASH, never the plaintext. Tagging it
// with "-" means encoding/json will never serialize it, so no read
// endpoint can leak it, even accidentally. Code that needs to verify a
// credential goes through auth.PasswordService.Verify.
//
// WHY Usuario AND NOT Email?
// `usuario` is both the login name and the e-mail address — the API
// treats them as a single field, and a UNIQUE index on the usuario
// column guarantees no two accounts ever share it.
type User struct {
	ID        string    `json:"id"        db:"id"`
	Nome      string    `json:"nome"      db:"nome"`
	Usuario   string    `json:"usuario"   db:"usuario"` // unique e-mail identifier
	Senha     string    `json:"-"         db:"senha"`   // bcrypt hash, never serialized
	Foto      string    `json:"foto"      db:"foto"`    // avatar URL (may be empty)
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
