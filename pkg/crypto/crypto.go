package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// InviteCodeBytes is the entropy of an invitation code before encoding.
const InviteCodeBytes = 16

// GenerateRandomString produces a cryptographically random base64url string of n bytes.
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateInviteCode generates a random invite code (16 bytes = 22 chars base64url).
func GenerateInviteCode() (string, error) {
	return GenerateRandomString(InviteCodeBytes)
}

// CodePrefix returns a short, log-safe prefix of a secret code.
func CodePrefix(code string) string {
	if len(code) <= 6 {
		return "***"
	}
	return code[:6] + "..."
}
