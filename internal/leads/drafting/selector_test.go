package drafting

import (
	"errors"
	"strings"
	"testing"

	"outreach_backend/internal/leads/domain"
)

func testLead() domain.Lead {
	return domain.Lead{
		ID:       7,
		Company:  "Acme Analytics",
		Industry: "SaaS",
		Contacts: []domain.Contact{
			{Name: "Dana Reyes", Email: "dana@acme.example.com", IsPrimary: true},
		},
	}
}

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error: %v", err)
	}
	return catalog
}

func TestLoadCatalogHasDefault(t *testing.T) {
	catalog := mustCatalog(t)
	if catalog.Default() == nil {
		t.Fatal("catalog default template missing")
	}
	if len(catalog.Templates) < 2 {
		t.Fatalf("catalog has %d templates, want several", len(catalog.Templates))
	}
}

func TestSelectExplicitTemplateID(t *testing.T) {
	catalog := mustCatalog(t)

	draft, err := Select(catalog, testLead(), Hints{TemplateID: "saas_scale"})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if draft.TemplateID != "saas_scale" {
		t.Errorf("TemplateID = %q, want saas_scale", draft.TemplateID)
	}
	if draft.UsedFallback {
		t.Error("UsedFallback = true for explicit id, want false")
	}
	if strings.Contains(draft.Subject, "{{") || strings.Contains(draft.Body, "{{") {
		t.Errorf("unresolved placeholders remain: %q / %q", draft.Subject, draft.Body)
	}
	if !strings.Contains(draft.Subject, "Acme Analytics") {
		t.Errorf("Subject = %q, want company substituted", draft.Subject)
	}
	if !strings.Contains(draft.Body, "Dana Reyes") {
		t.Errorf("Body does not contain contact name: %q", draft.Body)
	}
}

func TestSelectUnknownTemplateID(t *testing.T) {
	catalog := mustCatalog(t)
	if _, err := Select(catalog, testLead(), Hints{TemplateID: "nope"}); err == nil {
		t.Fatal("Select() with unknown id should fail")
	}
}

func TestSelectByTagMatch(t *testing.T) {
	catalog := mustCatalog(t)

	draft, err := Select(catalog, testLead(), Hints{Tags: []string{"saas"}})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if draft.TemplateID != "saas_scale" {
		t.Errorf("TemplateID = %q, want saas_scale for saas tag", draft.TemplateID)
	}
	if draft.UsedFallback {
		t.Error("UsedFallback = true for exact tag match, want false")
	}
}

func TestSelectFallsBackToDefault(t *testing.T) {
	catalog := mustCatalog(t)

	lead := testLead()
	lead.Industry = "Interpretive Dance"

	draft, err := Select(catalog, lead, Hints{Tags: []string{"underwater-basket-weaving"}})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if draft.TemplateID != catalog.DefaultID {
		t.Errorf("TemplateID = %q, want default %q", draft.TemplateID, catalog.DefaultID)
	}
	if !draft.UsedFallback {
		t.Error("UsedFallback = false, want true when no tag matches")
	}
}

func TestSelectMissingPlaceholderData(t *testing.T) {
	catalog := mustCatalog(t)

	lead := testLead()
	lead.Company = ""

	_, err := Select(catalog, lead, Hints{TemplateID: "cold_intro"})
	if err == nil {
		t.Fatal("Select() with empty company should fail")
	}
	if !errors.Is(err, domain.ErrMissingPlaceholderData) {
		t.Errorf("error = %v, want ErrMissingPlaceholderData", err)
	}
}

func TestSelectMissingContactName(t *testing.T) {
	catalog := mustCatalog(t)

	lead := testLead()
	lead.Contacts = nil

	_, err := Select(catalog, lead, Hints{TemplateID: "cold_intro"})
	if !errors.Is(err, domain.ErrMissingPlaceholderData) {
		t.Errorf("error = %v, want ErrMissingPlaceholderData for absent contact", err)
	}
}

func TestSubstituteResolvesExactlyOnce(t *testing.T) {
	result, missing := substitute("{{company}} meets {{company}}", map[string]string{
		"company": "{{industry}}",
	})
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want none", missing)
	}
	// A substituted value that itself looks like a placeholder must not be
	// re-expanded.
	if result != "{{industry}} meets {{industry}}" {
		t.Errorf("result = %q, substitution must be single-pass", result)
	}
}
