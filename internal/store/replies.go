package store

import (
	"context"
	"time"

	"taccd/internal/models"
)

// CreateReply inserts one reply and returns its row id. The caller is
// responsible for verifying the intercept id exists first; the foreign
// key still backstops it.
func (s *Store) CreateReply(ctx context.Context, reply *models.Reply, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO replies (bbc_ref_number, intercept_id, bbc_reply, created_at)
		VALUES (?, ?, ?, ?)
	`, nullIfEmpty(reply.BBCRef), reply.InterceptID, reply.Body, formatTime(now))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListReplies returns all replies for one intercept id, oldest first.
func (s *Store) ListReplies(ctx context.Context, interceptID string) ([]models.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(bbc_ref_number, ''), intercept_id, COALESCE(bbc_reply, ''), created_at
		FROM replies
		WHERE intercept_id = ?
		ORDER BY created_at ASC, id ASC
	`, interceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := make([]models.Reply, 0)
	for rows.Next() {
		reply, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	return replies, rows.Err()
}

func scanReply(scanner interface {
	Scan(dest ...any) error
}) (models.Reply, error) {
	var reply models.Reply
	var createdAt string
	if err := scanner.Scan(&reply.ID, &reply.BBCRef, &reply.InterceptID, &reply.Body, &createdAt); err != nil {
		return models.Reply{}, err
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return models.Reply{}, err
	}
	reply.CreatedAt = parsed
	return reply, nil
}
