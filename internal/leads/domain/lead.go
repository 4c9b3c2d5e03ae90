// Package domain provides core business rules for the leads bounded context.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is a person attached to a lead. At most one contact per lead is
// primary; the primary contact's email is the send recipient.
type Contact struct {
	ID          int64     `json:"id"`
	LeadID      int64     `json:"leadId"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Email       string    `json:"email"`
	LinkedInURL string    `json:"linkedinUrl,omitempty"`
	Source      string    `json:"source,omitempty"`
	IsPrimary   bool      `json:"isPrimary"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Lead is the central entity of the outreach pipeline.
type Lead struct {
	ID           int64     `json:"id"`
	Company      string    `json:"company"`
	Industry     string    `json:"industry,omitempty"`
	Location     string    `json:"location,omitempty"`
	Employees    *int      `json:"employees,omitempty"`
	FundingStage string    `json:"fundingStage,omitempty"`
	Website      string    `json:"website,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Description  string    `json:"description,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	Score        *int      `json:"score,omitempty"`
	ScoreReasons []string  `json:"scoreReasons,omitempty"`
	EmailSubject string    `json:"emailSubject,omitempty"`
	EmailBody    string    `json:"emailBody,omitempty"`
	Source       string    `json:"source,omitempty"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	Contacts     []Contact `json:"contacts,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PrimaryContact returns the contact used for sending. The explicit primary
// wins; otherwise the first contact with a non-empty email is used.
func (l *Lead) PrimaryContact() *Contact {
	for i := range l.Contacts {
		if l.Contacts[i].IsPrimary {
			return &l.Contacts[i]
		}
	}
	for i := range l.Contacts {
		if strings.TrimSpace(l.Contacts[i].Email) != "" {
			return &l.Contacts[i]
		}
	}
	return nil
}

// RecipientEmail returns the primary contact email, or "" when the lead has
// no usable recipient.
func (l *Lead) RecipientEmail() string {
	contact := l.PrimaryContact()
	if contact == nil {
		return ""
	}
	return strings.TrimSpace(contact.Email)
}

// HasDraft reports whether the lead carries a non-empty outreach draft.
func (l *Lead) HasDraft() bool {
	return strings.TrimSpace(l.EmailSubject) != "" && strings.TrimSpace(l.EmailBody) != ""
}

// SentEmail is an immutable audit record created exactly once per
// successful live dispatch.
type SentEmail struct {
	ID        uuid.UUID `json:"id"`
	LeadID    int64     `json:"leadId"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	MessageID string    `json:"messageId"`
	SentAt    time.Time `json:"sentAt"`
}
