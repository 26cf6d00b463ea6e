package security_test

import (
	"strings"
	"testing"

	"github.com/nexora-hq/nexora/internal/security"
)

func TestGenerateResetToken(t *testing.T) {
	token, tokenHash, err := security.GenerateResetToken()
	if err != nil {
		t.Fatalf("failed to generate reset token: %v", err)
	}

	if len(token) != 64 {
		t.Errorf("token length mismatch: got %d, want 64", len(token))
	}

	if tokenHash == token {
		t.Error("stored hash must not equal the raw token")
	}

	// The client-supplied token must hash back to the stored digest.
	if security.HashResetToken(token) != tokenHash {
		t.Error("token does not hash to the stored digest")
	}

	// Tokens are unique per call.
	other, _, err := security.GenerateResetToken()
	if err != nil {
		t.Fatalf("failed to generate second reset token: %v", err)
	}
	if other == token {
		t.Error("two generated tokens are identical")
	}
}

func TestHashResetToken_Deterministic(t *testing.T) {
	a := security.HashResetToken("some-token")
	b := security.HashResetToken("some-token")
	if a != b {
		t.Errorf("hash is not deterministic: %q vs %q", a, b)
	}

	if security.HashResetToken("other-token") == a {
		t.Error("different tokens produced the same hash")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	password, err := security.GenerateTempPassword()
	if err != nil {
		t.Fatalf("failed to generate temp password: %v", err)
	}

	if len(password) != 8 {
		t.Errorf("password length mismatch: got %d, want 8", len(password))
	}

	for _, r := range password {
		if !strings.ContainsRune(alphabet, r) {
			t.Errorf("password contains character outside alphabet: %q", r)
		}
	}
}
