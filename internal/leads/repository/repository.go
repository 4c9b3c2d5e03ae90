// Package repository persists leads, contacts, and send audit records in
// Postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"outreach_backend/internal/leads/domain"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, company, industry, location, employees, funding_stage, website,
	phone, description, notes, status, score, score_reasons,
	email_subject, email_body, source, source_url, created_at, updated_at
`

// Create inserts a lead and its contacts in one transaction.
func (r *Repository) Create(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Lead{}, err
	}
	defer tx.Rollback(ctx)

	status := lead.Status
	if status == "" {
		status = domain.StatusNew
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO leads (
			company, industry, location, employees, funding_stage, website,
			phone, description, notes, status, source, source_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, lead.Company, nullable(lead.Industry), nullable(lead.Location), lead.Employees,
		nullable(lead.FundingStage), nullable(lead.Website), nullable(lead.Phone),
		nullable(lead.Description), nullable(lead.Notes), status,
		nullable(lead.Source), nullable(lead.SourceURL))

	if err := row.Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return domain.Lead{}, err
	}
	lead.Status = status

	for i := range lead.Contacts {
		contact := &lead.Contacts[i]
		contact.LeadID = lead.ID
		if err := insertContact(ctx, tx, contact); err != nil {
			return domain.Lead{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Lead{}, err
	}

	return lead, nil
}

// GetByID loads a lead with its contacts.
func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, ErrNotFound
		}
		return domain.Lead{}, err
	}

	contacts, err := r.listContacts(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Contacts = contacts

	return lead, nil
}

// ListFilter narrows and pages List results.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// List returns leads ordered newest first. Contacts are loaded per lead.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	args := make([]interface{}, 0, 3)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range leads {
		contacts, err := r.listContacts(ctx, leads[i].ID)
		if err != nil {
			return nil, err
		}
		leads[i].Contacts = contacts
	}

	return leads, nil
}

// StatusCounts returns the number of leads per status.
func (r *Repository) StatusCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// UpdateStatus sets the lead status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScore replaces the score and reason list atomically.
func (r *Repository) UpdateScore(ctx context.Context, id int64, score int, reasons []string) error {
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET score = $2, score_reasons = $3, updated_at = NOW() WHERE id = $1
	`, id, score, reasonsJSON)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDraft stores the drafted subject and body, overwriting any prior
// draft or manual edit.
func (r *Repository) UpdateDraft(ctx context.Context, id int64, subject, body string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET email_subject = $2, email_body = $3, updated_at = NOW() WHERE id = $1
	`, id, subject, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDescription replaces the lead's description text.
func (r *Repository) UpdateDescription(ctx context.Context, id int64, description string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET description = $2, updated_at = NOW() WHERE id = $1
	`, id, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddContacts appends contacts to a lead.
func (r *Repository) AddContacts(ctx context.Context, leadID int64, contacts []domain.Contact) ([]domain.Contact, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inserted := make([]domain.Contact, 0, len(contacts))
	for _, contact := range contacts {
		contact.LeadID = leadID
		if err := insertContact(ctx, tx, &contact); err != nil {
			return nil, err
		}
		inserted = append(inserted, contact)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inserted, nil
}

// UpdateContactEmail corrects a contact's email address.
func (r *Repository) UpdateContactEmail(ctx context.Context, leadID, contactID int64, email string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET email = $3 WHERE id = $2 AND lead_id = $1
	`, leadID, contactID, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) listContacts(ctx context.Context, leadID int64) ([]domain.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, name, title, email, linkedin_url, source, is_primary, created_at
		FROM contacts
		WHERE lead_id = $1
		ORDER BY is_primary DESC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		var contact domain.Contact
		var name, title, email, linkedin, source *string
		if err := rows.Scan(&contact.ID, &contact.LeadID, &name, &title, &email,
			&linkedin, &source, &contact.IsPrimary, &contact.CreatedAt); err != nil {
			return nil, err
		}
		contact.Name = deref(name)
		contact.Title = deref(title)
		contact.Email = deref(email)
		contact.LinkedInURL = deref(linkedin)
		contact.Source = deref(source)
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func insertContact(ctx context.Context, tx pgx.Tx, contact *domain.Contact) error {
	contact.CreatedAt = time.Now().UTC()
	return tx.QueryRow(ctx, `
		INSERT INTO contacts (lead_id, name, title, email, linkedin_url, source, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, contact.LeadID, nullable(contact.Name), nullable(contact.Title), nullable(contact.Email),
		nullable(contact.LinkedInURL), nullable(contact.Source), contact.IsPrimary,
		contact.CreatedAt).Scan(&contact.ID)
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var industry, location, fundingStage, website, phone *string
	var description, notes, emailSubject, emailBody, source, sourceURL *string
	var reasonsJSON []byte

	err := row.Scan(&lead.ID, &lead.Company, &industry, &location, &lead.Employees,
		&fundingStage, &website, &phone, &description, &notes, &lead.Status,
		&lead.Score, &reasonsJSON, &emailSubject, &emailBody, &source, &sourceURL,
		&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return domain.Lead{}, err
	}

	lead.Industry = deref(industry)
	lead.Location = deref(location)
	lead.FundingStage = deref(fundingStage)
	lead.Website = deref(website)
	lead.Phone = deref(phone)
	lead.Description = deref(description)
	lead.Notes = deref(notes)
	lead.EmailSubject = deref(emailSubject)
	lead.EmailBody = deref(emailBody)
	lead.Source = deref(source)
	lead.SourceURL = deref(sourceURL)

	if len(reasonsJSON) > 0 {
		if err := json.Unmarshal(reasonsJSON, &lead.ScoreReasons); err != nil {
			return domain.Lead{}, fmt.Errorf("decode score reasons for lead %d: %w", lead.ID, err)
		}
	}

	return lead, nil
}

func nullable(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
