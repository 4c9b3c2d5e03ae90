// Package ports defines the interfaces the leads pipeline consumes from
// external collaborators. Implementations live in their own modules and
// are injected at composition time.
package ports

import (
	"context"
	"time"
)

// Mailer dispatches a single outbound email and returns the transport
// message id.
type Mailer interface {
	Send(ctx context.Context, recipient, subject, body string) (messageID string, err error)
}

// QuotaStore is the atomic daily send counter. ReserveSlot must perform the
// read-compare-increment as one atomic step so concurrent callers can never
// both take the last slot.
type QuotaStore interface {
	// ReserveSlot increments the counter for the given day if it is below
	// limit. It returns ok=false with no increment when the cap is reached.
	ReserveSlot(ctx context.Context, day time.Time, limit int) (ok bool, count int, err error)

	// ReleaseSlot returns a previously reserved slot, used when dispatch
	// fails after the reservation.
	ReleaseSlot(ctx context.Context, day time.Time) error

	// SentCount reports the counter value for the given day.
	SentCount(ctx context.Context, day time.Time) (int, error)
}

// EnrichedContact is a contact discovered by an enrichment provider.
type EnrichedContact struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Email       string `json:"email"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`
	Source      string `json:"source"`
}

// ContactEnricher looks up contacts for a company domain. Provider failure
// means "no contacts found", never a fatal pipeline error; implementations
// should return an empty slice alongside the error.
type ContactEnricher interface {
	FindContacts(ctx context.Context, domainName string) ([]EnrichedContact, error)
}

// WebsiteDescriber extracts a short company description from a website.
type WebsiteDescriber interface {
	Describe(ctx context.Context, website string) (string, error)
}

// InboundReply is a reply fetched from the outreach mailbox.
type InboundReply struct {
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Inbox fetches the most recent reply from a given address.
type Inbox interface {
	LatestReplyFrom(ctx context.Context, address string) (*InboundReply, error)
}
