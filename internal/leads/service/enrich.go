package service

import (
	"context"
	"net/url"
	"strings"

	"outreach_backend/internal/leads/domain"
	"outreach_backend/platform/apperr"
)

// EnrichResult reports the contacts added by an enrichment run.
type EnrichResult struct {
	Lead       domain.Lead      `json:"lead"`
	Domain     string           `json:"domain"`
	Found      int              `json:"found"`
	Added      []domain.Contact `json:"added"`
	ProviderOK bool             `json:"providerOk"`
}

// EnrichContacts looks up contacts for the lead's website domain and
// attaches the new ones. Provider failure is reported as zero contacts
// found, never as a pipeline error. The first contact added to a lead
// without one becomes the primary.
func (s *Service) EnrichContacts(ctx context.Context, id int64) (EnrichResult, error) {
	if s.enricher == nil {
		return EnrichResult{}, apperr.Unavailable("contact enrichment is not configured")
	}

	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return EnrichResult{}, err
	}

	domainName := websiteDomain(lead.Website)
	if domainName == "" {
		return EnrichResult{}, apperr.Validation("lead has no website to derive a domain from")
	}

	result := EnrichResult{Lead: lead, Domain: domainName, ProviderOK: true}

	found, err := s.enricher.FindContacts(ctx, domainName)
	if err != nil {
		if s.log != nil {
			s.log.Warn("contact enrichment failed", "lead_id", id, "domain", domainName, "error", err.Error())
		}
		result.ProviderOK = false
		return result, nil
	}
	result.Found = len(found)

	existing := make(map[string]struct{}, len(lead.Contacts))
	for _, contact := range lead.Contacts {
		existing[strings.ToLower(strings.TrimSpace(contact.Email))] = struct{}{}
	}

	hasPrimary := lead.PrimaryContact() != nil
	fresh := make([]domain.Contact, 0, len(found))
	for _, candidate := range found {
		email := strings.ToLower(strings.TrimSpace(candidate.Email))
		if email == "" {
			continue
		}
		if _, ok := existing[email]; ok {
			continue
		}
		existing[email] = struct{}{}

		contact := domain.Contact{
			Name:        candidate.Name,
			Title:       candidate.Title,
			Email:       candidate.Email,
			LinkedInURL: candidate.LinkedInURL,
			Source:      candidate.Source,
			IsPrimary:   !hasPrimary,
		}
		hasPrimary = true
		fresh = append(fresh, contact)
	}

	if len(fresh) > 0 {
		added, err := s.store.AddContacts(ctx, id, fresh)
		if err != nil {
			return EnrichResult{}, s.storeErr("EnrichContacts", err)
		}
		result.Added = added
		lead.Contacts = append(lead.Contacts, added...)
		result.Lead = lead
	}

	return result, nil
}

// RefreshDescription scrapes the lead's website and replaces the stored
// description with what the page says about the company. The refreshed
// text feeds the need and founder signals on the next scoring run.
func (s *Service) RefreshDescription(ctx context.Context, id int64) (domain.Lead, error) {
	if s.describer == nil {
		return domain.Lead{}, apperr.Unavailable("website scraping is not configured")
	}

	lead, err := s.GetLead(ctx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	if strings.TrimSpace(lead.Website) == "" {
		return domain.Lead{}, apperr.Validation("lead has no website to scrape")
	}

	description, err := s.describer.Describe(ctx, lead.Website)
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindUnavailable, "could not read the website", err)
	}

	if err := s.store.UpdateDescription(ctx, id, description); err != nil {
		return domain.Lead{}, s.storeErr("RefreshDescription", err)
	}

	lead.Description = description
	if s.log != nil {
		s.log.Info("lead description refreshed", "lead_id", id, "chars", len(description))
	}
	return lead, nil
}

// websiteDomain extracts the bare host from a website value, tolerating
// missing schemes and www prefixes.
func websiteDomain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}

	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	parsed, err := url.Parse(website)
	if err != nil || parsed.Host == "" {
		return ""
	}

	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return host
}
