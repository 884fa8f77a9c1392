// Package auth — password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is a password hashing function designed to be slow, and that
// slowness is the security feature: it makes brute-force attacks
// expensive. It also generates a random salt per hash and embeds it in
// the output, so two users with the senha "rootroot" get different
// stored hashes and no separate salt column is needed.
//
// NEVER store senhas in plain text or with fast hashes (MD5, SHA-256) —
// those fall to GPU rigs in minutes. bcrypt at cost 12 takes ~250ms per
// attempt: negligible for a login, brutal for an attacker.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used in production.
//
// RULE OF THUMB: pick the cost so hashing takes ~200–300ms on your
// production hardware. Too low is crackable, too high makes the server
// spend all its CPU on bcrypt during a login burst.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected: tests
// use the bcrypt minimum (4) to avoid paying ~250ms per hash, and
// deployments can tune it through config.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService.
// A cost of 0 (or anything below bcrypt's minimum) selects the default
// production cost of 12.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost {
		cost = defaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext senha with bcrypt.
//
// The output is a self-contained string like
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// which embeds the salt and cost — store it directly in the senha
// column; Verify knows how to decode it.
//
// Returns an error for plaintexts over 72 bytes: bcrypt silently
// truncates beyond that, and we'd rather reject than surprise.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: senha must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing senha: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext senha matches a stored bcrypt hash.
// Returns nil on a match.
//
// bcrypt.CompareHashAndPassword compares in constant time, so response
// timing leaks nothing about how close a guess was.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid senha")
		}
		return fmt.Errorf("auth: comparing senha hash: %w", err)
	}
	return nil
}
