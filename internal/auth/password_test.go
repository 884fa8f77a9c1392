package auth

import (
	"strings"
	"testing"
)

// newTestPasswordService returns a PasswordService with bcrypt cost 4.
// Cost 4 is the minimum allowed by the bcrypt library. This makes tests
// run in milliseconds instead of ~250ms each.
func newTestPasswordService() *PasswordService {
	return NewPasswordService(4)
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_ReturnsNonEmptyHash(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("rootroot")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Error("Hash() returned empty string")
	}
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("senha123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt hashes always start with $2a$ or $2b$
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SameSenhaProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt generates a random salt each time, so two hashes for the
	// same senha must differ — otherwise rainbow tables would work.
	hash1, _ := ps.Hash("same-senha")
	hash2, _ := ps.Hash("same-senha")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same senha (salt must be random)")
	}
}

func TestHash_RejectsSenhaOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt silently truncates at 72 bytes — we reject it explicitly.
	long := strings.Repeat("a", 73)
	if _, err := ps.Hash(long); err == nil {
		t.Fatal("Hash() should return an error for senhas longer than 72 bytes")
	}
}

func TestNewPasswordService_ZeroCostUsesDefault(t *testing.T) {
	ps := NewPasswordService(0)
	if ps.cost != defaultCost {
		t.Errorf("cost = %d, want default %d", ps.cost, defaultCost)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_CorrectSenha(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("13465278")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "13465278"); err != nil {
		t.Errorf("Verify() error = %v, want nil for correct senha", err)
	}
}

func TestVerify_WrongSenha(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("13465278")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "87265431"); err == nil {
		t.Error("Verify() should return an error for a wrong senha")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	ps := newTestPasswordService()

	if err := ps.Verify("not-a-bcrypt-hash", "whatever"); err == nil {
		t.Error("Verify() should return an error for a malformed hash")
	}
}
