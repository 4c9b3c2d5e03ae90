// Package service orchestrates the lead outreach pipeline: it sequences
// the pure engines (scoring, drafting, triage) with the state machine and
// persistence, and owns no business rules of its own.
package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"outreach_backend/internal/events"
	"outreach_backend/internal/leads/domain"
	"outreach_backend/internal/leads/drafting"
	"outreach_backend/internal/leads/guardrail"
	"outreach_backend/internal/leads/ports"
	"outreach_backend/internal/leads/repository"
	"outreach_backend/internal/leads/scoring"
	"outreach_backend/internal/leads/triage"
	"outreach_backend/platform/apperr"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/phone"
)

// Store is the persistence surface the orchestrator needs. The Postgres
// repository implements it; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	GetByID(ctx context.Context, id int64) (domain.Lead, error)
	List(ctx context.Context, filter repository.ListFilter) ([]domain.Lead, error)
	StatusCounts(ctx context.Context) (map[string]int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateScore(ctx context.Context, id int64, score int, reasons []string) error
	UpdateDraft(ctx context.Context, id int64, subject, body string) error
	UpdateDescription(ctx context.Context, id int64, description string) error
	AddContacts(ctx context.Context, leadID int64, contacts []domain.Contact) ([]domain.Contact, error)
	UpdateContactEmail(ctx context.Context, leadID, contactID int64, email string) error
	CreateSentEmail(ctx context.Context, record domain.SentEmail) (domain.SentEmail, error)
	GetSentEmail(ctx context.Context, id uuid.UUID) (domain.SentEmail, error)
	ListSentEmails(ctx context.Context, leadID int64) ([]domain.SentEmail, error)
}

// Service is the pipeline façade invoked by the HTTP layer.
type Service struct {
	store       Store
	guard       *guardrail.Guardrail
	catalog     *drafting.Catalog
	classifier  *triage.Classifier
	enricher    ports.ContactEnricher
	inbox       ports.Inbox
	describer   ports.WebsiteDescriber
	bus         events.Bus
	log         *logger.Logger
	phoneRegion string
}

// Config carries the service dependencies. Enricher and Inbox are optional;
// operations needing an absent collaborator fail with an unavailable error.
type Config struct {
	Store       Store
	Guardrail   *guardrail.Guardrail
	Catalog     *drafting.Catalog
	Classifier  *triage.Classifier
	Enricher    ports.ContactEnricher
	Inbox       ports.Inbox
	Describer   ports.WebsiteDescriber
	Bus         events.Bus
	Logger      *logger.Logger
	PhoneRegion string
}

func New(cfg Config) *Service {
	return &Service{
		store:       cfg.Store,
		guard:       cfg.Guardrail,
		catalog:     cfg.Catalog,
		classifier:  cfg.Classifier,
		enricher:    cfg.Enricher,
		inbox:       cfg.Inbox,
		describer:   cfg.Describer,
		bus:         cfg.Bus,
		log:         cfg.Logger,
		phoneRegion: cfg.PhoneRegion,
	}
}

// CreateLead registers a new lead in status new.
func (s *Service) CreateLead(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	if strings.TrimSpace(lead.Company) == "" {
		return domain.Lead{}, apperr.Validation("company is required")
	}

	lead.Status = domain.StatusNew
	lead.Phone = phone.NormalizeE164(lead.Phone, s.phoneRegion)

	created, err := s.store.Create(ctx, lead)
	if err != nil {
		return domain.Lead{}, s.storeErr("CreateLead", err)
	}
	return created, nil
}

// GetLead loads one lead with contacts.
func (s *Service) GetLead(ctx context.Context, id int64) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Lead{}, s.storeErr("GetLead", err)
	}
	return lead, nil
}

// ListLeads returns leads, optionally filtered by status.
func (s *Service) ListLeads(ctx context.Context, status string, limit, offset int) ([]domain.Lead, error) {
	if status != "" && !domain.IsKnownStatus(status) {
		return nil, apperr.Validation("unknown status " + status)
	}
	leads, err := s.store.List(ctx, repository.ListFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, s.storeErr("ListLeads", err)
	}
	return leads, nil
}

// StatusCounts returns the pipeline distribution by status.
func (s *Service) StatusCounts(ctx context.Context) (map[string]int, error) {
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return nil, s.storeErr("StatusCounts", err)
	}
	return counts, nil
}

// ScoreResult pairs the scored lead with the engine output.
type ScoreResult struct {
	Lead      domain.Lead `json:"lead"`
	Score     int         `json:"score"`
	Reasons   []string    `json:"reasons"`
	Qualified bool        `json:"autoQualified"`
}

// ScoreLead recomputes the lead's score from scratch, replacing both score
// and reason list. A new lead scoring at or above the qualification
// threshold is promoted to qualified automatically.
func (s *Service) ScoreLead(ctx context.Context, id int64) (ScoreResult, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return ScoreResult{}, err
	}

	result := scoring.Score(lead)
	if err := s.store.UpdateScore(ctx, id, result.Score, result.Reasons); err != nil {
		return ScoreResult{}, s.storeErr("ScoreLead", err)
	}
	lead.Score = &result.Score
	lead.ScoreReasons = result.Reasons

	s.publish(ctx, events.LeadScored{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		Score:     result.Score,
		Reasons:   result.Reasons,
	})

	autoQualified := false
	if lead.Status == domain.StatusNew && result.Score >= scoring.AutoQualifyThreshold {
		if err := s.transition(ctx, &lead, domain.StatusQualified, false); err != nil {
			return ScoreResult{}, err
		}
		autoQualified = true
	}

	return ScoreResult{Lead: lead, Score: result.Score, Reasons: result.Reasons, Qualified: autoQualified}, nil
}

// Qualify promotes a new lead to qualified.
func (s *Service) Qualify(ctx context.Context, id int64) (domain.Lead, error) {
	return s.guardedTransition(ctx, id, domain.StatusQualified)
}

// DraftResult pairs the updated lead with the selection outcome.
type DraftResult struct {
	Lead  domain.Lead    `json:"lead"`
	Draft drafting.Draft `json:"draft"`
}

// Draft selects a template for the lead and stores the filled draft,
// moving a qualified lead to drafted. Re-drafting a drafted lead
// overwrites the stored draft in place.
func (s *Service) Draft(ctx context.Context, id int64, hints drafting.Hints) (DraftResult, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return DraftResult{}, err
	}

	if lead.Status != domain.StatusQualified && lead.Status != domain.StatusDrafted {
		return DraftResult{}, domain.InvalidTransition(lead.Status, domain.StatusDrafted)
	}

	draft, err := drafting.Select(s.catalog, lead, hints)
	if err != nil {
		return DraftResult{}, err
	}

	if err := s.store.UpdateDraft(ctx, id, draft.Subject, draft.Body); err != nil {
		return DraftResult{}, s.storeErr("Draft", err)
	}
	lead.EmailSubject = draft.Subject
	lead.EmailBody = draft.Body

	if lead.Status == domain.StatusQualified {
		if err := s.transition(ctx, &lead, domain.StatusDrafted, false); err != nil {
			return DraftResult{}, err
		}
	}

	s.publish(ctx, events.LeadDrafted{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       id,
		TemplateID:   draft.TemplateID,
		UsedFallback: draft.UsedFallback,
	})

	return DraftResult{Lead: lead, Draft: draft}, nil
}

// SaveDraft stores an operator-written subject and body. Manual edits are
// preserved until the next explicit re-draft. An approved lead must be
// unapproved before its content can change.
func (s *Service) SaveDraft(ctx context.Context, id int64, subject, body string) (domain.Lead, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return domain.Lead{}, apperr.Validation("subject and body are required")
	}

	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	if lead.Status != domain.StatusQualified && lead.Status != domain.StatusDrafted {
		return domain.Lead{}, domain.InvalidTransition(lead.Status, domain.StatusDrafted)
	}

	if err := s.store.UpdateDraft(ctx, id, subject, body); err != nil {
		return domain.Lead{}, s.storeErr("SaveDraft", err)
	}
	lead.EmailSubject = subject
	lead.EmailBody = body

	if lead.Status == domain.StatusQualified {
		if err := s.transition(ctx, &lead, domain.StatusDrafted, false); err != nil {
			return domain.Lead{}, err
		}
	}

	return lead, nil
}

// Approve moves a drafted lead to approved. The lead must carry a draft
// and a non-empty primary contact email.
func (s *Service) Approve(ctx context.Context, id int64) (domain.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	if err := domain.ValidateTransition(lead.Status, domain.StatusApproved); err != nil {
		return domain.Lead{}, err
	}
	if !lead.HasDraft() {
		return domain.Lead{}, apperr.Conflict("lead has no draft to approve")
	}
	if lead.RecipientEmail() == "" {
		return domain.Lead{}, domain.NoRecipient()
	}

	if err := s.transition(ctx, &lead, domain.StatusApproved, false); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// Unapprove returns an approved lead to drafted.
func (s *Service) Unapprove(ctx context.Context, id int64) (domain.Lead, error) {
	return s.guardedTransition(ctx, id, domain.StatusDrafted)
}

// Ignore soft-deletes a lead; ignored is terminal.
func (s *Service) Ignore(ctx context.Context, id int64) (domain.Lead, error) {
	return s.guardedTransition(ctx, id, domain.StatusIgnored)
}

// OverrideStatus is the operator escape hatch: it sets any known status
// without transition guards and without touching the guardrail. It exists
// for data correction only and never triggers dispatch.
func (s *Service) OverrideStatus(ctx context.Context, id int64, status string) (domain.Lead, error) {
	if !domain.IsKnownStatus(status) {
		return domain.Lead{}, apperr.Validation("unknown status " + status)
	}

	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}

	from := lead.Status
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return domain.Lead{}, s.storeErr("OverrideStatus", err)
	}
	lead.Status = status

	if s.log != nil {
		s.log.StatusChange(id, from, status, true)
	}
	s.publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		From:      from,
		To:        status,
		Override:  true,
	})

	return lead, nil
}

// UpdateContactEmail corrects a contact's email address after validating
// its syntax.
func (s *Service) UpdateContactEmail(ctx context.Context, leadID, contactID int64, email string) (domain.Lead, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Lead{}, apperr.Validation("invalid email address")
	}

	if err := s.store.UpdateContactEmail(ctx, leadID, contactID, email); err != nil {
		return domain.Lead{}, s.storeErr("UpdateContactEmail", err)
	}
	return s.GetLead(ctx, leadID)
}

// Templates exposes the read-only template catalog.
func (s *Service) Templates() []drafting.Template {
	return s.catalog.Templates
}

// SentEmail loads one send audit record.
func (s *Service) SentEmail(ctx context.Context, id uuid.UUID) (domain.SentEmail, error) {
	record, err := s.store.GetSentEmail(ctx, id)
	if err != nil {
		return domain.SentEmail{}, s.storeErr("SentEmail", err)
	}
	return record, nil
}

// SentEmails lists the send audit records for a lead.
func (s *Service) SentEmails(ctx context.Context, leadID int64) ([]domain.SentEmail, error) {
	records, err := s.store.ListSentEmails(ctx, leadID)
	if err != nil {
		return nil, s.storeErr("SentEmails", err)
	}
	return records, nil
}

// QuotaStatus reports the state of the send guardrail configuration.
type QuotaStatus struct {
	SentToday  int  `json:"sentToday"`
	DailyLimit int  `json:"dailyLimit"`
	Remaining  int  `json:"remaining"`
	BatchLimit int  `json:"batchLimit"`
	DemoMode   bool `json:"demoMode"`
}

// Quota reports today's counter against the configured limits.
func (s *Service) Quota(ctx context.Context) (QuotaStatus, error) {
	sent, err := s.guard.SentToday(ctx)
	if err != nil {
		return QuotaStatus{}, apperr.Wrap(apperr.KindInternal, "failed to read daily counter", err)
	}

	remaining := s.guard.DailyLimit() - sent
	if remaining < 0 {
		remaining = 0
	}

	return QuotaStatus{
		SentToday:  sent,
		DailyLimit: s.guard.DailyLimit(),
		Remaining:  remaining,
		BatchLimit: s.guard.BatchLimit(),
		DemoMode:   s.guard.DemoMode(),
	}, nil
}

// guardedTransition loads the lead and applies a state-machine-validated
// transition.
func (s *Service) guardedTransition(ctx context.Context, id int64, to string) (domain.Lead, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if err := s.transition(ctx, &lead, to, false); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// transition validates and persists a guarded status change, then logs and
// publishes it.
func (s *Service) transition(ctx context.Context, lead *domain.Lead, to string, override bool) error {
	if !override {
		if err := domain.ValidateTransition(lead.Status, to); err != nil {
			return err
		}
	}

	from := lead.Status
	if err := s.store.UpdateStatus(ctx, lead.ID, to); err != nil {
		return s.storeErr("transition", err)
	}
	lead.Status = to

	if s.log != nil {
		s.log.StatusChange(lead.ID, from, to, override)
	}
	s.publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		From:      from,
		To:        to,
		Override:  override,
	})

	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func (s *Service) storeErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found").WithOp(op)
	}
	if appErr, ok := err.(*apperr.Error); ok {
		return appErr
	}
	if s.log != nil {
		s.log.DatabaseError(op, err)
	}
	return apperr.Wrap(apperr.KindInternal, "storage operation failed", err).WithOp(op)
}
