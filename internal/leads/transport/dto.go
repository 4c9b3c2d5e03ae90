// Package transport defines the request and response shapes of the leads
// HTTP API.
package transport

import (
	"outreach_backend/internal/leads/domain"
)

// ContactRequest is a contact payload inside lead creation.
type ContactRequest struct {
	Name        string `json:"name" validate:"required"`
	Title       string `json:"title"`
	Email       string `json:"email" validate:"omitempty,email"`
	LinkedInURL string `json:"linkedinUrl" validate:"omitempty,url"`
	Source      string `json:"source"`
	IsPrimary   bool   `json:"isPrimary"`
}

// CreateLeadRequest registers a new lead.
type CreateLeadRequest struct {
	Company      string           `json:"company" validate:"required"`
	Industry     string           `json:"industry"`
	Location     string           `json:"location"`
	Employees    *int             `json:"employees" validate:"omitempty,min=0"`
	FundingStage string           `json:"fundingStage"`
	Website      string           `json:"website" validate:"omitempty,url"`
	Phone        string           `json:"phone"`
	Description  string           `json:"description"`
	Notes        string           `json:"notes"`
	Source       string           `json:"source"`
	SourceURL    string           `json:"sourceUrl" validate:"omitempty,url"`
	Contacts     []ContactRequest `json:"contacts" validate:"dive"`
}

// ToDomain converts the request to the domain lead.
func (r CreateLeadRequest) ToDomain() domain.Lead {
	contacts := make([]domain.Contact, 0, len(r.Contacts))
	for _, contact := range r.Contacts {
		contacts = append(contacts, domain.Contact{
			Name:        contact.Name,
			Title:       contact.Title,
			Email:       contact.Email,
			LinkedInURL: contact.LinkedInURL,
			Source:      contact.Source,
			IsPrimary:   contact.IsPrimary,
		})
	}

	return domain.Lead{
		Company:      r.Company,
		Industry:     r.Industry,
		Location:     r.Location,
		Employees:    r.Employees,
		FundingStage: r.FundingStage,
		Website:      r.Website,
		Phone:        r.Phone,
		Description:  r.Description,
		Notes:        r.Notes,
		Source:       r.Source,
		SourceURL:    r.SourceURL,
		Contacts:     contacts,
	}
}

// ListLeadsRequest filters and pages the lead list.
type ListLeadsRequest struct {
	Status string `form:"status"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

// DraftRequest steers template selection for a lead.
type DraftRequest struct {
	TemplateID string   `json:"templateId"`
	Tags       []string `json:"tags"`
}

// SaveDraftRequest stores an operator-edited draft.
type SaveDraftRequest struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// SendRequest triggers a guarded send for one lead.
type SendRequest struct {
	DryRun bool `json:"dryRun"`
}

// BatchSendRequest triggers guarded sends for several leads.
type BatchSendRequest struct {
	LeadIDs []int64 `json:"leadIds" validate:"required,min=1"`
	DryRun  bool    `json:"dryRun"`
}

// ClassifyRequest triages pasted inbound reply text.
type ClassifyRequest struct {
	Text string `json:"text" validate:"required"`
}

// OverrideStatusRequest is the raw operator status edit. It bypasses the
// transition guards by design and never dispatches mail.
type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateContactEmailRequest corrects a contact email address.
type UpdateContactEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}
