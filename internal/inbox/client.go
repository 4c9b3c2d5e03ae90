// Package inbox reads replies from the outreach mailbox over IMAP.
package inbox

import (
	"context"
	"fmt"
	"strings"

	imap "github.com/BrianLeishman/go-imap"

	"outreach_backend/internal/leads/ports"
	"outreach_backend/platform/logger"
)

// Client implements the pipeline's Inbox port against an IMAP mailbox.
// A fresh connection is dialed per lookup; reply fetching is an on-demand
// operation, not a hot path.
type Client struct {
	host     string
	port     int
	username string
	password string
	log      *logger.Logger
}

func New(host string, port int, username, password string, log *logger.Logger) *Client {
	return &Client{host: host, port: port, username: username, password: password, log: log}
}

// LatestReplyFrom returns the most recent message from the given address,
// or nil when the mailbox holds none.
func (c *Client) LatestReplyFrom(ctx context.Context, address string) (*ports.InboundReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dialer, err := imap.New(c.username, c.password, c.host, c.port)
	if err != nil {
		return nil, fmt.Errorf("connect to imap server: %w", err)
	}
	defer dialer.Close()

	if err := dialer.SelectFolder("INBOX"); err != nil {
		return nil, fmt.Errorf("select inbox: %w", err)
	}

	uids, err := dialer.GetUIDs(fmt.Sprintf("FROM %q", address))
	if err != nil {
		return nil, fmt.Errorf("search inbox: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	// UIDs are assigned in ascending order, so the highest is the newest.
	latest := uids[0]
	for _, uid := range uids[1:] {
		if uid > latest {
			latest = uid
		}
	}

	emails, err := dialer.GetEmails(latest)
	if err != nil {
		return nil, fmt.Errorf("fetch email %d: %w", latest, err)
	}
	email, ok := emails[latest]
	if !ok || email == nil {
		return nil, nil
	}

	if c.log != nil {
		c.log.Debug("fetched inbound reply", "from", address, "uid", latest)
	}

	return &ports.InboundReply{
		From:       firstAddress(email.From, address),
		Subject:    email.Subject,
		Body:       replyBody(email),
		ReceivedAt: email.Received,
	}, nil
}

func firstAddress(addresses imap.EmailAddresses, fallback string) string {
	for addr := range addresses {
		return addr
	}
	return fallback
}

func replyBody(email *imap.Email) string {
	if text := strings.TrimSpace(email.Text); text != "" {
		return text
	}
	return strings.TrimSpace(email.HTML)
}
