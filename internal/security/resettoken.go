package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
)

// GenerateResetToken returns a random 32-byte reset token as hex plus the
// SHA-256 digest to store server-side. The raw token is sent to the user
// once and never persisted.
func GenerateResetToken() (token, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token = hex.EncodeToString(raw)
	return token, HashResetToken(token), nil
}

// HashResetToken returns the hex SHA-256 digest of a client-supplied token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

const tempPasswordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateTempPassword returns an 8-character random password for
// admin-created members and admin-driven resets.
func GenerateTempPassword() (string, error) {
	out := make([]byte, 8)
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate temp password: %w", err)
		}
		out[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
