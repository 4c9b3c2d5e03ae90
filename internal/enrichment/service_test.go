package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newProvider(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.URL.Path != "/domain-search" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("domain") == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"errors": []map[string]string{{"details": "domain missing"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"domain":       r.URL.Query().Get("domain"),
				"organization": "Acme",
				"emails": []map[string]interface{}{
					{"value": "dana@acme.example.com", "first_name": "Dana", "last_name": "Reyes", "position": "CEO"},
					{"value": "kim@acme.example.com", "first_name": "Kim", "last_name": "Lee", "position": "COO"},
				},
			},
		})
	}))
}

func newCachedService(t *testing.T, providerURL string) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	return NewService(NewClient(providerURL, "test-key"), cache, nil), mini
}

func TestFindContactsParsesProviderResponse(t *testing.T) {
	var calls int32
	provider := newProvider(t, &calls)
	defer provider.Close()

	svc := NewService(NewClient(provider.URL, "test-key"), nil, nil)

	contacts, err := svc.FindContacts(context.Background(), "acme.example.com")
	if err != nil {
		t.Fatalf("FindContacts() error: %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("len(contacts) = %d, want 2", len(contacts))
	}
	if contacts[0].Name != "Dana Reyes" || contacts[0].Email != "dana@acme.example.com" {
		t.Errorf("contacts[0] = %+v", contacts[0])
	}
	if contacts[0].Source != "hunter" {
		t.Errorf("Source = %q, want hunter", contacts[0].Source)
	}
}

func TestFindContactsUsesCache(t *testing.T) {
	var calls int32
	provider := newProvider(t, &calls)
	defer provider.Close()

	svc, _ := newCachedService(t, provider.URL)
	ctx := context.Background()

	if _, err := svc.FindContacts(ctx, "acme.example.com"); err != nil {
		t.Fatalf("first FindContacts() error: %v", err)
	}
	if _, err := svc.FindContacts(ctx, "acme.example.com"); err != nil {
		t.Fatalf("second FindContacts() error: %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("provider calls = %d, want 1 (second read from cache)", got)
	}
}

func TestFindContactsProviderError(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"details": "rate limit reached"}},
		})
	}))
	defer provider.Close()

	svc := NewService(NewClient(provider.URL, "test-key"), nil, nil)

	if _, err := svc.FindContacts(context.Background(), "acme.example.com"); err == nil {
		t.Fatal("FindContacts() on provider error should fail")
	}
}
