package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"outreach_backend/internal/leads/ports"
	"outreach_backend/platform/logger"
)

const cacheTTL = 24 * time.Hour

// Service implements the pipeline's ContactEnricher port. Results are
// cached in Redis per domain, and concurrent lookups for the same domain
// are collapsed into a single provider call.
type Service struct {
	client *Client
	cache  *redis.Client
	group  singleflight.Group
	log    *logger.Logger
}

// NewService wraps the API client. cache may be nil to disable caching.
func NewService(client *Client, cache *redis.Client, log *logger.Logger) *Service {
	return &Service{client: client, cache: cache, log: log}
}

// FindContacts returns the known contacts for a domain, from cache when
// possible.
func (s *Service) FindContacts(ctx context.Context, domainName string) ([]ports.EnrichedContact, error) {
	if cached, ok := s.fromCache(ctx, domainName); ok {
		return cached, nil
	}

	value, err, _ := s.group.Do(domainName, func() (interface{}, error) {
		contacts, err := s.client.DomainSearch(ctx, domainName)
		if err != nil {
			return nil, err
		}
		s.store(ctx, domainName, contacts)
		return contacts, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]ports.EnrichedContact), nil
}

func cacheKey(domainName string) string {
	return "enrichment:contacts:" + domainName
}

func (s *Service) fromCache(ctx context.Context, domainName string) ([]ports.EnrichedContact, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, cacheKey(domainName)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.log != nil {
			s.log.Warn("enrichment cache read failed", "domain", domainName, "error", err.Error())
		}
		return nil, false
	}

	var contacts []ports.EnrichedContact
	if err := json.Unmarshal(raw, &contacts); err != nil {
		return nil, false
	}
	return contacts, true
}

func (s *Service) store(ctx context.Context, domainName string, contacts []ports.EnrichedContact) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(contacts)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(domainName), raw, cacheTTL).Err(); err != nil && s.log != nil {
		s.log.Warn("enrichment cache write failed", "domain", domainName, "error", err.Error())
	}
}
