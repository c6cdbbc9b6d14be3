// Package auth handles the two secrets the gate depends on: the
// captcha bypass secret (configuration carries only its bcrypt hash)
// and single-use access tokens (the ledger stores only SHA-256
// digests).
package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 8

// ValidateSecret checks minimal bypass secret requirements.
func ValidateSecret(secret string) error {
	if len(secret) < minSecretLength {
		return fmt.Errorf("secret must be at least %d characters", minSecretLength)
	}
	return nil
}

// HashSecret hashes one plaintext bypass secret for the config file.
func HashSecret(secret string) (string, error) {
	if err := ValidateSecret(secret); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifySecret verifies a candidate against the configured bcrypt
// hash. An empty hash means no bypass is configured and nothing
// verifies.
func VerifySecret(secretHash, candidate string) bool {
	if strings.TrimSpace(secretHash) == "" || candidate == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(candidate)) == nil
}
