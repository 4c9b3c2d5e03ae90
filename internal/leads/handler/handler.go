// Package handler exposes the leads pipeline over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"outreach_backend/internal/leads/domain"
	"outreach_backend/internal/leads/drafting"
	"outreach_backend/internal/leads/service"
	"outreach_backend/internal/leads/transport"
	"outreach_backend/platform/apperr"
	"outreach_backend/platform/httpkit"
	"outreach_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid lead ID"
)

// Handler handles HTTP requests for the leads pipeline.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create registers a new lead.
// POST /api/v1/leads
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.CreateLead(c.Request.Context(), req.ToDomain())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

// List returns leads, optionally filtered by status.
// GET /api/v1/leads
func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	leads, err := h.svc.ListLeads(c.Request.Context(), req.Status, req.Limit, req.Offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"leads": leads, "count": len(leads)})
}

// Stats returns the pipeline distribution by status.
// GET /api/v1/leads/stats
func (h *Handler) Stats(c *gin.Context) {
	counts, err := h.svc.StatusCounts(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"byStatus": counts})
}

// Get returns one lead with contacts.
// GET /api/v1/leads/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// Score recomputes the lead's qualification score.
// POST /api/v1/leads/:id/score
func (h *Handler) Score(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.ScoreLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Qualify promotes a new lead to qualified.
// POST /api/v1/leads/:id/qualify
func (h *Handler) Qualify(c *gin.Context) {
	h.transition(c, h.svc.Qualify)
}

// Draft selects and fills a template for the lead.
// POST /api/v1/leads/:id/draft
func (h *Handler) Draft(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.DraftRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	result, err := h.svc.Draft(c.Request.Context(), id, drafting.Hints{
		TemplateID: req.TemplateID,
		Tags:       req.Tags,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SaveDraft stores an operator-edited subject and body.
// PUT /api/v1/leads/:id/draft
func (h *Handler) SaveDraft(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.SaveDraft(c.Request.Context(), id, req.Subject, req.Body)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// Approve moves a drafted lead to approved.
// POST /api/v1/leads/:id/approve
func (h *Handler) Approve(c *gin.Context) {
	h.transition(c, h.svc.Approve)
}

// Unapprove returns an approved lead to drafted.
// POST /api/v1/leads/:id/unapprove
func (h *Handler) Unapprove(c *gin.Context) {
	h.transition(c, h.svc.Unapprove)
}

// Ignore soft-deletes a lead.
// POST /api/v1/leads/:id/ignore
func (h *Handler) Ignore(c *gin.Context) {
	h.transition(c, h.svc.Ignore)
}

// OverrideStatus is the raw operator status edit.
// PUT /api/v1/leads/:id/status
func (h *Handler) OverrideStatus(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.OverrideStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// Send runs the guarded send for one lead.
// POST /api/v1/leads/:id/send
func (h *Handler) Send(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.SendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	outcome, err := h.svc.Send(c.Request.Context(), id, req.DryRun)
	if err != nil {
		// The outcome names the failing check; attach it to the typed error
		// response so operators see both.
		c.JSON(statusForSendError(err), gin.H{"error": err.Error(), "outcome": outcome})
		return
	}
	httpkit.OK(c, outcome)
}

// SendBatch runs guarded sends for several leads.
// POST /api/v1/leads/send-batch
func (h *Handler) SendBatch(c *gin.Context) {
	var req transport.BatchSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	report, err := h.svc.SendBatch(c.Request.Context(), req.LeadIDs, req.DryRun)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

// Classify triages pasted inbound reply text for a lead.
// POST /api/v1/leads/:id/classify
func (h *Handler) Classify(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	classification, err := h.svc.ClassifyReply(c.Request.Context(), id, req.Text)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, classification)
}

// TriageInbox fetches the latest reply from the outreach mailbox and
// classifies it.
// POST /api/v1/leads/:id/replies/triage
func (h *Handler) TriageInbox(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.FetchAndClassifyReply(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// FetchContacts enriches the lead with contacts from the configured
// provider.
// POST /api/v1/leads/:id/contacts/fetch
func (h *Handler) FetchContacts(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.EnrichContacts(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RefreshDescription re-scrapes the lead's website for a company
// description.
// POST /api/v1/leads/:id/description/refresh
func (h *Handler) RefreshDescription(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.RefreshDescription(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// UpdateContactEmail corrects a contact email.
// PUT /api/v1/leads/:id/contacts/:contactId/email
func (h *Handler) UpdateContactEmail(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}
	contactID, err := strconv.ParseInt(c.Param("contactId"), 10, 64)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid contact ID", nil)
		return
	}

	var req transport.UpdateContactEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.UpdateContactEmail(c.Request.Context(), id, contactID, req.Email)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// ListSentEmails lists the send audit records for a lead.
// GET /api/v1/leads/:id/sent-emails
func (h *Handler) ListSentEmails(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	records, err := h.svc.SentEmails(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"sentEmails": records, "count": len(records)})
}

// GetSentEmail returns one send audit record.
// GET /api/v1/sent-emails/:id
func (h *Handler) GetSentEmail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid sent email ID", nil)
		return
	}

	record, svcErr := h.svc.SentEmail(c.Request.Context(), id)
	if httpkit.HandleError(c, svcErr) {
		return
	}
	httpkit.OK(c, record)
}

// ListTemplates exposes the template catalog.
// GET /api/v1/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	templates := h.svc.Templates()
	httpkit.OK(c, gin.H{"templates": templates, "count": len(templates)})
}

// Quota reports the guardrail state.
// GET /api/v1/quota
func (h *Handler) Quota(c *gin.Context) {
	status, err := h.svc.Quota(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, status)
}

func (h *Handler) leadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return id, true
}

// transition runs a single-argument lifecycle operation for the :id lead.
func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id int64) (domain.Lead, error)) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := op(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

// statusForSendError maps guardrail errors to HTTP codes, falling back to
// the apperr mapping.
func statusForSendError(err error) int {
	if appErr, ok := err.(*apperr.Error); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusBadRequest
}
