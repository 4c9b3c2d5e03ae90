package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"outreach_backend/internal/events"
	"outreach_backend/internal/leads/domain"
	"outreach_backend/internal/leads/guardrail"
)

// SendOutcome reports one guarded send attempt. For live dispatches that
// reached sent, EmailID identifies the audit record.
type SendOutcome struct {
	LeadID    int64                 `json:"leadId"`
	State     string                `json:"state"`
	Blocked   guardrail.BlockReason `json:"blockedReason,omitempty"`
	DryRun    bool                  `json:"dryRun"`
	Recipient string                `json:"recipient,omitempty"`
	MessageID string                `json:"messageId,omitempty"`
	EmailID   *uuid.UUID            `json:"emailId,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// Send runs the full guardrail for one lead. A blocked or failed attempt
// returns the guardrail's typed error and leaves the lead approved; the
// returned outcome always describes what happened.
func (s *Service) Send(ctx context.Context, id int64, dryRun bool) (SendOutcome, error) {
	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return SendOutcome{LeadID: id, State: guardrail.StateBlocked}, err
	}
	return s.sendLead(ctx, lead, dryRun)
}

func (s *Service) sendLead(ctx context.Context, lead domain.Lead, dryRun bool) (SendOutcome, error) {
	result := s.guard.Attempt(ctx, lead, dryRun)

	outcome := SendOutcome{
		LeadID:    result.LeadID,
		State:     result.State,
		Blocked:   result.Blocked,
		DryRun:    result.DryRun,
		Recipient: result.Recipient,
		MessageID: result.MessageID,
	}
	if result.Err != nil {
		outcome.Error = result.Err.Error()
		return outcome, result.Err
	}

	if dryRun {
		// Simulated success: status and audit trail stay untouched.
		return outcome, nil
	}

	// Live dispatch succeeded: the transition to sent and the audit record
	// are recorded. A persistence failure here is surfaced but the mail is
	// already out, so the outcome still reports sent.
	if err := s.transition(ctx, &lead, domain.StatusSent, false); err != nil {
		outcome.Error = err.Error()
		return outcome, err
	}

	record, err := s.store.CreateSentEmail(ctx, domain.SentEmail{
		LeadID:    lead.ID,
		Recipient: result.Recipient,
		Subject:   lead.EmailSubject,
		Body:      lead.EmailBody,
		MessageID: result.MessageID,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		storeErr := s.storeErr("Send", err)
		outcome.Error = storeErr.Error()
		return outcome, storeErr
	}
	outcome.EmailID = &record.ID

	s.publish(ctx, events.EmailSent{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		EmailID:   record.ID,
		Recipient: result.Recipient,
	})

	return outcome, nil
}

// BatchSendReport aggregates per-lead outcomes of one batch request.
type BatchSendReport struct {
	Requested int           `json:"requested"`
	Sent      int           `json:"sent"`
	Blocked   int           `json:"blocked"`
	Failed    int           `json:"failed"`
	DryRun    bool          `json:"dryRun"`
	Outcomes  []SendOutcome `json:"outcomes"`
}

// SendBatch attempts a guarded send for each lead in order. The batch size
// check runs first and rejects oversized requests wholesale, before any
// individual send. Individual failures never abort the batch; every lead
// gets a per-item outcome.
func (s *Service) SendBatch(ctx context.Context, ids []int64, dryRun bool) (BatchSendReport, error) {
	if err := s.guard.CheckBatchSize(len(ids)); err != nil {
		return BatchSendReport{}, err
	}

	report := BatchSendReport{
		Requested: len(ids),
		DryRun:    dryRun,
		Outcomes:  make([]SendOutcome, 0, len(ids)),
	}

	for _, id := range ids {
		lead, err := s.GetLead(ctx, id)
		if err != nil {
			report.Failed++
			report.Outcomes = append(report.Outcomes, SendOutcome{
				LeadID: id,
				State:  guardrail.StateBlocked,
				DryRun: dryRun,
				Error:  err.Error(),
			})
			continue
		}

		outcome, err := s.sendLead(ctx, lead, dryRun)
		switch {
		case err == nil && outcome.State == guardrail.StateSent:
			report.Sent++
		case outcome.State == guardrail.StateBlocked:
			report.Blocked++
		default:
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report, nil
}
