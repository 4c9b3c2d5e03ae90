package service

import (
	"context"
	"strings"

	"outreach_backend/internal/events"
	"outreach_backend/internal/leads/ports"
	"outreach_backend/internal/leads/triage"
	"outreach_backend/platform/apperr"
)

// ClassifyReply triages inbound text for a lead and suggests a reply.
// The classification is returned, never persisted.
func (s *Service) ClassifyReply(ctx context.Context, id int64, text string) (triage.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return triage.Classification{}, apperr.Validation("reply text is required")
	}

	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return triage.Classification{}, err
	}

	classification := s.classifier.Classify(text, lead.Company)

	s.publish(ctx, events.ReplyClassified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		Intent:    classification.Intent,
	})

	return classification, nil
}

// InboxTriageResult pairs a fetched reply with its classification.
type InboxTriageResult struct {
	Reply          *ports.InboundReply   `json:"reply"`
	Classification triage.Classification `json:"classification"`
}

// FetchAndClassifyReply pulls the latest reply from the lead's primary
// contact out of the outreach mailbox and triages it.
func (s *Service) FetchAndClassifyReply(ctx context.Context, id int64) (InboxTriageResult, error) {
	if s.inbox == nil {
		return InboxTriageResult{}, apperr.Unavailable("inbox is not configured")
	}

	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return InboxTriageResult{}, err
	}

	recipient := lead.RecipientEmail()
	if recipient == "" {
		return InboxTriageResult{}, apperr.Validation("lead has no contact email to check replies for")
	}

	reply, err := s.inbox.LatestReplyFrom(ctx, recipient)
	if err != nil {
		return InboxTriageResult{}, apperr.Wrap(apperr.KindUnavailable, "failed to fetch replies", err)
	}
	if reply == nil {
		return InboxTriageResult{}, apperr.NotFound("no reply found from " + recipient)
	}

	classification := s.classifier.Classify(reply.Subject+" "+reply.Body, lead.Company)

	s.publish(ctx, events.ReplyClassified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		Intent:    classification.Intent,
	})

	return InboxTriageResult{Reply: reply, Classification: classification}, nil
}
