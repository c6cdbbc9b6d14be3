package store

import (
	"context"
	"database/sql"
	"fmt"

	"taccd/internal/models"
)

// CreateComplaint inserts a complaint together with its IPSO sub-rows
// in one transaction. A failure on any sub-row rolls the whole insert
// back, so a complaint is either fully recorded or not at all.
func (s *Store) CreateComplaint(ctx context.Context, c *models.Complaint, fields []models.IPSOField, breaches []models.CodeBreach) error {
	if c == nil {
		return fmt.Errorf("complaint is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ipsoTerms := 0
	if c.IPSOTerms {
		ipsoTerms = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO complaints (
			id, source, origin_url, title, description,
			emailaddress, firstname, lastname, salutation, generalissue1,
			intro_text, iswelsh, liveorondemand, localradio, make,
			moderation_text, network, outside_the_uk, platform, programme,
			programmeid, reception_text, redbuttonfault, region, responserequired,
			servicetv, sounds_text, sourceurl, subject, transmissiondate,
			transmissiontime, under18, verifyform, complaint_nature, complaint_nature_sounds,
			ipso_terms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		string(c.Source),
		nullIfEmpty(c.OriginURL),
		nullIfEmpty(c.Title),
		nullIfEmpty(c.Description),
		nullIfEmpty(c.EmailAddress),
		nullIfEmpty(c.FirstName),
		nullIfEmpty(c.LastName),
		nullIfEmpty(c.Salutation),
		nullIfEmpty(c.GeneralIssue1),
		nullIfEmpty(c.IntroText),
		nullIfEmpty(c.IsWelsh),
		nullIfEmpty(c.LiveOrOnDemand),
		nullIfEmpty(c.LocalRadio),
		nullIfEmpty(c.Make),
		nullIfEmpty(c.ModerationText),
		nullIfEmpty(c.Network),
		nullIfEmpty(c.OutsideTheUK),
		nullIfEmpty(c.Platform),
		nullIfEmpty(c.Programme),
		nullIfEmpty(c.ProgrammeID),
		nullIfEmpty(c.ReceptionText),
		nullIfEmpty(c.RedButtonFault),
		nullIfEmpty(c.Region),
		nullIfEmpty(c.ResponseRequired),
		nullIfEmpty(c.ServiceTV),
		nullIfEmpty(c.SoundsText),
		nullIfEmpty(c.SourceURL),
		nullIfEmpty(c.Subject),
		nullIfEmpty(c.TransmissionDate),
		nullIfEmpty(c.TransmissionTime),
		nullIfEmpty(c.Under18),
		nullIfEmpty(c.VerifyForm),
		nullIfEmpty(c.ComplaintNature),
		nullIfEmpty(c.ComplaintNatureSounds),
		ipsoTerms,
		formatTime(c.CreatedAt),
	)
	if err != nil {
		return err
	}

	for _, field := range fields {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ipso_fields (complaint_id, field_order, field_value)
			VALUES (?, ?, ?)
		`, c.ID, field.Order, field.Value)
		if err != nil {
			return err
		}
	}
	for _, breach := range breaches {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ipso_breaches (complaint_id, clause, details)
			VALUES (?, ?, ?)
		`, c.ID, breach.Clause, breach.Details)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ComplaintExists checks whether a complaint exists by id.
func (s *Store) ComplaintExists(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM complaints WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetComplaint returns the subset of complaint columns exposed over
// the API, or nil when no row matches.
func (s *Store) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, origin_url, title, description, programme,
		       transmissiondate, transmissiontime, sourceurl, created_at
		FROM complaints
		WHERE id = ?
		LIMIT 1
	`, id)

	var c models.Complaint
	var source string
	var originURL, title, description, programme sql.NullString
	var txDate, txTime, sourceURL sql.NullString
	var createdAt string
	err := row.Scan(&c.ID, &source, &originURL, &title, &description, &programme,
		&txDate, &txTime, &sourceURL, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Source = models.ComplaintSource(source)
	c.OriginURL = originURL.String
	c.Title = title.String
	c.Description = description.String
	c.Programme = programme.String
	c.TransmissionDate = txDate.String
	c.TransmissionTime = txTime.String
	c.SourceURL = sourceURL.String
	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListIPSOFields returns an IPSO complaint's free-text fields in form
// order.
func (s *Store) ListIPSOFields(ctx context.Context, complaintID string) ([]models.IPSOField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field_order, COALESCE(field_value, '')
		FROM ipso_fields
		WHERE complaint_id = ?
		ORDER BY field_order ASC
	`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := make([]models.IPSOField, 0)
	for rows.Next() {
		var field models.IPSOField
		if err := rows.Scan(&field.Order, &field.Value); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}

// ListCodeBreaches returns an IPSO complaint's alleged code breaches.
func (s *Store) ListCodeBreaches(ctx context.Context, complaintID string) ([]models.CodeBreach, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(clause, ''), COALESCE(details, '')
		FROM ipso_breaches
		WHERE complaint_id = ?
		ORDER BY id ASC
	`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	breaches := make([]models.CodeBreach, 0)
	for rows.Next() {
		var breach models.CodeBreach
		if err := rows.Scan(&breach.Clause, &breach.Details); err != nil {
			return nil, err
		}
		breaches = append(breaches, breach)
	}
	return breaches, rows.Err()
}
