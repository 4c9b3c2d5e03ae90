// Package leads provides the lead outreach pipeline bounded context:
// scoring, drafting, approval, the guarded send, and reply triage.
package leads

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"outreach_backend/internal/config"
	"outreach_backend/internal/events"
	apphttp "outreach_backend/internal/http"
	"outreach_backend/internal/leads/drafting"
	"outreach_backend/internal/leads/guardrail"
	"outreach_backend/internal/leads/handler"
	"outreach_backend/internal/leads/ports"
	"outreach_backend/internal/leads/repository"
	"outreach_backend/internal/leads/service"
	"outreach_backend/internal/leads/triage"
	"outreach_backend/platform/logger"
	"outreach_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// Collaborators are the external systems the pipeline talks to. Any of
// them may be nil when not configured.
type Collaborators struct {
	Mailer    ports.Mailer
	Enricher  ports.ContactEnricher
	Inbox     ports.Inbox
	Describer ports.WebsiteDescriber
}

// NewModule creates and initializes the leads module with all its
// dependencies.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, val *validator.Validator, log *logger.Logger, bus events.Bus, collab Collaborators) (*Module, error) {
	catalog, err := drafting.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load template catalog: %w", err)
	}
	classifier, err := triage.NewClassifier()
	if err != nil {
		return nil, fmt.Errorf("load reply playbook: %w", err)
	}

	repo := repository.New(pool)
	counter := repository.NewDailyCounter(pool)
	guard := guardrail.New(counter, collab.Mailer, log, cfg.DemoMode, cfg.DailySendLimit, cfg.BatchSendLimit)

	svc := service.New(service.Config{
		Store:       repo,
		Guardrail:   guard,
		Catalog:     catalog,
		Classifier:  classifier,
		Enricher:    collab.Enricher,
		Inbox:       collab.Inbox,
		Describer:   collab.Describer,
		Bus:         bus,
		Logger:      log,
		PhoneRegion: cfg.PhoneRegion,
	})

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	leads.POST("", m.handler.Create)
	leads.GET("", m.handler.List)
	leads.GET("/stats", m.handler.Stats)
	leads.POST("/send-batch", m.handler.SendBatch)
	leads.GET("/:id", m.handler.Get)
	leads.POST("/:id/score", m.handler.Score)
	leads.POST("/:id/qualify", m.handler.Qualify)
	leads.POST("/:id/draft", m.handler.Draft)
	leads.PUT("/:id/draft", m.handler.SaveDraft)
	leads.POST("/:id/approve", m.handler.Approve)
	leads.POST("/:id/unapprove", m.handler.Unapprove)
	leads.POST("/:id/ignore", m.handler.Ignore)
	leads.PUT("/:id/status", m.handler.OverrideStatus)
	leads.POST("/:id/send", m.handler.Send)
	leads.POST("/:id/classify", m.handler.Classify)
	leads.POST("/:id/replies/triage", m.handler.TriageInbox)
	leads.POST("/:id/contacts/fetch", m.handler.FetchContacts)
	leads.POST("/:id/description/refresh", m.handler.RefreshDescription)
	leads.PUT("/:id/contacts/:contactId/email", m.handler.UpdateContactEmail)
	leads.GET("/:id/sent-emails", m.handler.ListSentEmails)

	ctx.Protected.GET("/sent-emails/:id", m.handler.GetSentEmail)
	ctx.Protected.GET("/templates", m.handler.ListTemplates)
	ctx.Protected.GET("/quota", m.handler.Quota)
	// /config is an alias kept for operator tooling that predates /quota.
	ctx.Protected.GET("/config", m.handler.Quota)
}
