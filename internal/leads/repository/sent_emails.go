package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"outreach_backend/internal/leads/domain"
)

// CreateSentEmail writes the immutable audit record for a successful send.
func (r *Repository) CreateSentEmail(ctx context.Context, record domain.SentEmail) (domain.SentEmail, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.SentAt.IsZero() {
		record.SentAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO sent_emails (id, lead_id, recipient, subject, body, message_id, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.LeadID, record.Recipient, record.Subject, record.Body,
		nullable(record.MessageID), record.SentAt)
	if err != nil {
		return domain.SentEmail{}, err
	}

	return record, nil
}

// GetSentEmail loads one audit record by id.
func (r *Repository) GetSentEmail(ctx context.Context, id uuid.UUID) (domain.SentEmail, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, recipient, subject, body, message_id, sent_at
		FROM sent_emails WHERE id = $1
	`, id)

	record, err := scanSentEmail(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SentEmail{}, ErrNotFound
		}
		return domain.SentEmail{}, err
	}
	return record, nil
}

// ListSentEmails returns the audit records for a lead, newest first.
func (r *Repository) ListSentEmails(ctx context.Context, leadID int64) ([]domain.SentEmail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, recipient, subject, body, message_id, sent_at
		FROM sent_emails WHERE lead_id = $1
		ORDER BY sent_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.SentEmail, 0)
	for rows.Next() {
		record, err := scanSentEmail(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanSentEmail(row pgx.Row) (domain.SentEmail, error) {
	var record domain.SentEmail
	var messageID *string
	err := row.Scan(&record.ID, &record.LeadID, &record.Recipient, &record.Subject,
		&record.Body, &messageID, &record.SentAt)
	if err != nil {
		return domain.SentEmail{}, err
	}
	record.MessageID = deref(messageID)
	return record, nil
}
