package store

import (
	"context"
	"database/sql"
	"time"

	"taccd/internal/models"
)

// InsertToken records a new active token hash for email.
func (s *Store) InsertToken(ctx context.Context, tokenHash, email string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access_tokens (token_hash, email, status, created_at)
		VALUES (?, ?, ?, ?)
	`, tokenHash, email, string(models.TokenActive), formatTime(now))
	return err
}

// ConsumeToken atomically flips an active, non-expired token to used.
// It reports whether the token was valid; a concurrent second consumer
// of the same token loses because the status guard fails.
func (s *Store) ConsumeToken(ctx context.Context, tokenHash string, notBefore time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE access_tokens
		SET status = ?
		WHERE token_hash = ?
		  AND status = ?
		  AND created_at > ?
	`, string(models.TokenUsed), tokenHash, string(models.TokenActive), formatTime(notBefore))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetToken returns one ledger entry by token hash, or nil when absent.
func (s *Store) GetToken(ctx context.Context, tokenHash string) (*models.AccessToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token_hash, email, status, created_at
		FROM access_tokens
		WHERE token_hash = ?
		LIMIT 1
	`, tokenHash)

	var token models.AccessToken
	var status string
	var createdAt string
	err := row.Scan(&token.TokenHash, &token.Email, &status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	token.Status = models.TokenStatus(status)
	token.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// SweepTokens deletes every ledger entry created before cutoff,
// regardless of status, and returns the number of rows removed.
// Deletions are idempotent; a concurrent consume of a just-swept token
// simply misses.
func (s *Store) SweepTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM access_tokens
		WHERE created_at < ?
	`, formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
