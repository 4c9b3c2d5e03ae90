// Package guardrail gates the terminal send transition. It is the only
// component in the pipeline with externally visible side effects and the
// only one with a concurrency-sensitive critical section, the daily quota.
package guardrail

import (
	"context"
	"net/mail"
	"time"

	"outreach_backend/internal/leads/domain"
	"outreach_backend/internal/leads/ports"
	"outreach_backend/platform/logger"
)

// State of a single send attempt.
const (
	StatePending         = "pending"
	StateBlocked         = "blocked"
	StateSent            = "sent"
	StateTransportFailed = "transport_failed"
)

// BlockReason identifies which check stopped a blocked attempt.
type BlockReason string

const (
	BlockNone          BlockReason = ""
	BlockDemoMode      BlockReason = "demo_mode"
	BlockNotApproved   BlockReason = "not_approved"
	BlockNoRecipient   BlockReason = "no_recipient"
	BlockDailyCap      BlockReason = "daily_cap_exceeded"
	BlockBatchTooLarge BlockReason = "batch_too_large"
)

// Result reports the outcome of one guarded send attempt. Blocked and
// failed attempts leave the lead's status untouched so the operator can
// retry.
type Result struct {
	LeadID    int64       `json:"leadId"`
	State     string      `json:"state"`
	Blocked   BlockReason `json:"blockedReason,omitempty"`
	DryRun    bool        `json:"dryRun"`
	Recipient string      `json:"recipient,omitempty"`
	MessageID string      `json:"messageId,omitempty"`
	Err       error       `json:"-"`
}

// Guardrail wraps the approved→sent transition with the ordered safety
// checks: demo mode, approval, recipient, atomic daily cap, then dispatch.
type Guardrail struct {
	quota      ports.QuotaStore
	mailer     ports.Mailer
	log        *logger.Logger
	now        func() time.Time
	demoMode   bool
	dailyLimit int
	batchLimit int
}

// New creates a guardrail. The mailer may be nil when no transport is
// configured; live dispatch then fails as a transport failure.
func New(quota ports.QuotaStore, mailer ports.Mailer, log *logger.Logger, demoMode bool, dailyLimit, batchLimit int) *Guardrail {
	return &Guardrail{
		quota:      quota,
		mailer:     mailer,
		log:        log,
		now:        time.Now,
		demoMode:   demoMode,
		dailyLimit: dailyLimit,
		batchLimit: batchLimit,
	}
}

// WithClock overrides the time source, used by tests.
func (g *Guardrail) WithClock(now func() time.Time) *Guardrail {
	g.now = now
	return g
}

// DailyLimit returns the configured daily cap.
func (g *Guardrail) DailyLimit() int { return g.dailyLimit }

// BatchLimit returns the configured per-batch lead limit.
func (g *Guardrail) BatchLimit() int { return g.batchLimit }

// DemoMode reports whether sending is globally disabled.
func (g *Guardrail) DemoMode() bool { return g.demoMode }

// Today returns the current UTC calendar date, the quota key.
func (g *Guardrail) Today() time.Time {
	return g.now().UTC().Truncate(24 * time.Hour)
}

// SentToday reports the current value of today's counter.
func (g *Guardrail) SentToday(ctx context.Context) (int, error) {
	return g.quota.SentCount(ctx, g.Today())
}

// CheckBatchSize rejects a batch wholesale before any individual send is
// attempted.
func (g *Guardrail) CheckBatchSize(size int) error {
	if size > g.batchLimit {
		return domain.BatchTooLarge(size, g.batchLimit)
	}
	return nil
}

// Attempt runs the ordered checks for one lead and, when all pass,
// dispatches the email. Checks are hard stops: no side effect happens
// before the first failing check. A dry run exercises every check,
// including reserving and returning a quota slot, but skips dispatch.
func (g *Guardrail) Attempt(ctx context.Context, lead domain.Lead, dryRun bool) Result {
	result := Result{LeadID: lead.ID, State: StatePending, DryRun: dryRun}

	if g.demoMode {
		return g.blocked(result, BlockDemoMode, domain.DemoModeBlocked())
	}

	if lead.Status != domain.StatusApproved {
		return g.blocked(result, BlockNotApproved, domain.NotApproved(lead.Status))
	}

	recipient := lead.RecipientEmail()
	if recipient == "" || !validEmail(recipient) {
		return g.blocked(result, BlockNoRecipient, domain.NoRecipient())
	}
	result.Recipient = recipient

	day := g.Today()
	ok, _, err := g.quota.ReserveSlot(ctx, day, g.dailyLimit)
	if err != nil {
		result.State = StateTransportFailed
		result.Err = err
		return result
	}
	if !ok {
		return g.blocked(result, BlockDailyCap, domain.DailyCapExceeded(g.dailyLimit))
	}

	if dryRun {
		// Return the slot: a simulated send must not burn quota.
		if err := g.quota.ReleaseSlot(ctx, day); err != nil {
			result.State = StateTransportFailed
			result.Err = err
			return result
		}
		result.State = StateSent
		g.logAttempt(result)
		return result
	}

	messageID, err := g.dispatch(ctx, recipient, lead.EmailSubject, lead.EmailBody)
	if err != nil {
		// The reserved slot is returned so a transport outage never
		// silently burns the daily allowance.
		if releaseErr := g.quota.ReleaseSlot(ctx, day); releaseErr != nil && g.log != nil {
			g.log.Error("failed to release quota slot after transport failure",
				"lead_id", lead.ID, "error", releaseErr.Error())
		}
		result.State = StateTransportFailed
		result.Err = domain.TransportFailure(err)
		g.logAttempt(result)
		return result
	}

	result.State = StateSent
	result.MessageID = messageID
	g.logAttempt(result)
	return result
}

func (g *Guardrail) dispatch(ctx context.Context, recipient, subject, body string) (string, error) {
	if g.mailer == nil {
		return "", domain.ErrTransportFailure
	}
	return g.mailer.Send(ctx, recipient, subject, body)
}

func (g *Guardrail) blocked(result Result, reason BlockReason, err error) Result {
	result.State = StateBlocked
	result.Blocked = reason
	result.Err = err
	g.logAttempt(result)
	return result
}

func (g *Guardrail) logAttempt(result Result) {
	if g.log == nil {
		return
	}
	g.log.SendAttempt(result.LeadID, result.State, string(result.Blocked), result.DryRun)
}

func validEmail(address string) bool {
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}
