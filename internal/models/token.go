package models

import "time"

// TokenStatus is the lifecycle state of an access token.
type TokenStatus string

const (
	TokenActive TokenStatus = "active"
	TokenUsed   TokenStatus = "used"
)

// AccessToken is one ledger entry for an emailed single-use access
// token. Only the SHA-256 hash of the token is persisted; the
// plaintext exists solely in the outbound email.
type AccessToken struct {
	TokenHash string      `json:"-"`
	Email     string      `json:"email"`
	Status    TokenStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
