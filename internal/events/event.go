// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"outreach_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadScored is published after the scoring engine evaluates a lead.
type LeadScored struct {
	BaseEvent
	LeadID  int64    `json:"leadId"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

func (e LeadScored) EventName() string { return "leads.lead.scored" }

// LeadStatusChanged is published on every lead status transition,
// including raw overrides.
type LeadStatusChanged struct {
	BaseEvent
	LeadID   int64  `json:"leadId"`
	From     string `json:"from"`
	To       string `json:"to"`
	Override bool   `json:"override"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadDrafted is published when an outreach draft is produced for a lead.
type LeadDrafted struct {
	BaseEvent
	LeadID       int64  `json:"leadId"`
	TemplateID   string `json:"templateId"`
	UsedFallback bool   `json:"usedFallback"`
}

func (e LeadDrafted) EventName() string { return "leads.lead.drafted" }

// EmailSent is published after a live dispatch succeeds and the lead
// reaches the sent status.
type EmailSent struct {
	BaseEvent
	LeadID    int64     `json:"leadId"`
	EmailID   uuid.UUID `json:"emailId"`
	Recipient string    `json:"recipient"`
}

func (e EmailSent) EventName() string { return "leads.email.sent" }

// ReplyClassified is published when an inbound reply is labeled by the
// intent classifier.
type ReplyClassified struct {
	BaseEvent
	LeadID int64  `json:"leadId"`
	Intent string `json:"intent"`
}

func (e ReplyClassified) EventName() string { return "leads.reply.classified" }
