package store

import (
	"context"
	"database/sql"

	"taccd/internal/models"
)

// CreateUpload records metadata for one stored file.
func (s *Store) CreateUpload(ctx context.Context, upload *models.Upload) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, complaint_id, filename, media_type, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, upload.ID, upload.ComplaintID, upload.Filename, nullIfEmpty(upload.MediaType),
		upload.SizeBytes, formatTime(upload.CreatedAt))
	return err
}

// GetUpload returns one upload row, or nil when absent.
func (s *Store) GetUpload(ctx context.Context, id string) (*models.Upload, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, complaint_id, filename, COALESCE(media_type, ''), size_bytes, created_at
		FROM uploads
		WHERE id = ?
		LIMIT 1
	`, id)

	var upload models.Upload
	var createdAt string
	err := row.Scan(&upload.ID, &upload.ComplaintID, &upload.Filename,
		&upload.MediaType, &upload.SizeBytes, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	upload.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// ListUploads returns all uploads for one complaint, oldest first.
func (s *Store) ListUploads(ctx context.Context, complaintID string) ([]models.Upload, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, complaint_id, filename, COALESCE(media_type, ''), size_bytes, created_at
		FROM uploads
		WHERE complaint_id = ?
		ORDER BY created_at ASC, id ASC
	`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := make([]models.Upload, 0)
	for rows.Next() {
		var upload models.Upload
		var createdAt string
		if err := rows.Scan(&upload.ID, &upload.ComplaintID, &upload.Filename,
			&upload.MediaType, &upload.SizeBytes, &createdAt); err != nil {
			return nil, err
		}
		upload.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}

// CountUploads returns the number of files stored for one complaint.
func (s *Store) CountUploads(ctx context.Context, complaintID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM uploads WHERE complaint_id = ?", complaintID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteUpload removes one upload row. It reports whether a row was
// deleted.
func (s *Store) DeleteUpload(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM uploads WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
