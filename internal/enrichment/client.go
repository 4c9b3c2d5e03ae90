// Package enrichment discovers contacts for a company domain through the
// Hunter domain-search API, with caching and provider rate limiting.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"outreach_backend/internal/leads/ports"
)

// Client calls the Hunter v2 domain-search endpoint. Requests are rate
// limited client-side so a burst of enrichment calls cannot exhaust the
// provider quota.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an API client. baseURL defaults to the hosted API when
// empty.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.hunter.io/v2"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// The provider allows 15 requests per second on paid plans; stay
		// well under it.
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

type domainSearchResponse struct {
	Data struct {
		Domain       string `json:"domain"`
		Organization string `json:"organization"`
		Emails       []struct {
			Value     string `json:"value"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
			Position  string `json:"position"`
			LinkedIn  string `json:"linkedin"`
		} `json:"emails"`
	} `json:"data"`
	Errors []struct {
		Details string `json:"details"`
	} `json:"errors"`
}

// DomainSearch returns the contacts the provider knows for a domain.
func (c *Client) DomainSearch(ctx context.Context, domainName string) ([]ports.EnrichedContact, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("domain", domainName)
	query.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/domain-search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrichment request: %w", err)
	}
	defer resp.Body.Close()

	var payload domainSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode enrichment response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := resp.Status
		if len(payload.Errors) > 0 && payload.Errors[0].Details != "" {
			detail = payload.Errors[0].Details
		}
		return nil, fmt.Errorf("enrichment provider returned %d: %s", resp.StatusCode, detail)
	}

	contacts := make([]ports.EnrichedContact, 0, len(payload.Data.Emails))
	for _, person := range payload.Data.Emails {
		name := strings.TrimSpace(person.FirstName + " " + person.LastName)
		contacts = append(contacts, ports.EnrichedContact{
			Name:        name,
			Title:       person.Position,
			Email:       person.Value,
			LinkedInURL: person.LinkedIn,
			Source:      "hunter",
		})
	}

	return contacts, nil
}
