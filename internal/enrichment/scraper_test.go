package enrichment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDescribePrefersMetaDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><head>
			<title>Acme</title>
			<meta name="description" content="Acme builds analytics for operators.">
		</head><body><p>Some body text.</p></body></html>`))
	}))
	defer server.Close()

	description, err := NewScraper().Describe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if description != "Acme builds analytics for operators." {
		t.Errorf("Describe() = %q", description)
	}
}

func TestDescribeFallsBackToTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><head><title>Acme Analytics</title></head><body></body></html>`))
	}))
	defer server.Close()

	description, err := NewScraper().Describe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if description != "Acme Analytics" {
		t.Errorf("Describe() = %q", description)
	}
}

func TestDescribeErrorsOnEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	defer server.Close()

	if _, err := NewScraper().Describe(context.Background(), server.URL); err == nil {
		t.Fatal("Describe() on empty page should fail")
	}
}
