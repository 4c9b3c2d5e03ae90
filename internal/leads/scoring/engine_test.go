package scoring

import (
	"reflect"
	"strings"
	"testing"

	"outreach_backend/internal/leads/domain"
)

func intPtr(v int) *int { return &v }

func TestScoreIdealLeadScenario(t *testing.T) {
	lead := domain.Lead{
		Company:      "Acme Analytics",
		Industry:     "SaaS",
		Employees:    intPtr(45),
		FundingStage: "Series A",
		Website:      "https://acme.example.com",
		Contacts: []domain.Contact{
			{Name: "Dana Reyes", Email: "dana@acme.example.com"},
		},
	}

	result := Score(lead)

	if result.Score != 60 {
		t.Fatalf("Score = %d, want 60 (reasons: %v)", result.Score, result.Reasons)
	}
	if len(result.Reasons) != 5 {
		t.Fatalf("len(Reasons) = %d, want 5: %v", len(result.Reasons), result.Reasons)
	}

	// Reasons appear in rule-evaluation order, not sorted by weight.
	wantOrder := []string{"Industry", "Employee count", "Funding stage", "discoverable contact", "Website"}
	for i, fragment := range wantOrder {
		if !strings.Contains(result.Reasons[i], fragment) {
			t.Errorf("Reasons[%d] = %q, want it to mention %q", i, result.Reasons[i], fragment)
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	lead := domain.Lead{
		Company:      "Northwind Logistics",
		Industry:     "Logistics",
		Location:     "Austin, TX",
		Employees:    intPtr(80),
		FundingStage: "Series B",
		Website:      "https://northwind.example.com",
		Notes:        "founder-led, urgent need for ops, working 70 hours",
		Contacts: []domain.Contact{
			{Name: "Pat Example", Email: "pat@northwind.example.com"},
		},
	}

	first := Score(lead)
	second := Score(lead)

	if first.Score != second.Score {
		t.Fatalf("scores differ across runs: %d vs %d", first.Score, second.Score)
	}
	if !reflect.DeepEqual(first.Reasons, second.Reasons) {
		t.Fatalf("reason order differs across runs:\n%v\n%v", first.Reasons, second.Reasons)
	}
}

func TestScoreClampsToRange(t *testing.T) {
	hot := domain.Lead{
		Industry:     "SaaS software technology",
		Location:     "New York, NY",
		Employees:    intPtr(120),
		FundingStage: "Series C",
		Website:      "https://hot.example.com",
		Notes:        "hot lead, founder-led, outgrown systems, burnout, urgent need for operations",
		Contacts:     []domain.Contact{{Email: "ceo@hot.example.com"}},
	}
	if result := Score(hot); result.Score > 100 {
		t.Errorf("Score = %d, want <= 100", result.Score)
	}

	cold := domain.Lead{
		Industry:  "Real Estate",
		Employees: intPtr(2),
		Notes:     "pre-revenue side hustle, not a fit, downsizing",
	}
	if result := Score(cold); result.Score < 0 {
		t.Errorf("Score = %d, want >= 0", result.Score)
	}
}

func TestScoreEmptyLeadNeedsManualReview(t *testing.T) {
	result := Score(domain.Lead{Company: "Blank Co"})

	if result.Score != 0 {
		t.Errorf("Score = %d, want 0", result.Score)
	}
	if len(result.Reasons) != 1 || !strings.Contains(result.Reasons[0], "manual review") {
		t.Errorf("Reasons = %v, want single manual-review reason", result.Reasons)
	}
}

func TestScoreReplacesNothingAppendsNothing(t *testing.T) {
	lead := domain.Lead{
		Industry: "Fintech",
		Website:  "https://pay.example.com",
	}

	first := Score(lead)
	lead.Notes = "needs operations urgently, scaling fast"
	second := Score(lead)

	if len(second.Reasons) <= len(first.Reasons) {
		t.Fatalf("expected enriched lead to fire more rules: first %v, second %v", first.Reasons, second.Reasons)
	}
	for _, reason := range first.Reasons {
		found := false
		for _, r := range second.Reasons {
			if r == reason {
				found = true
			}
		}
		if !found {
			t.Errorf("re-score lost reason %q; results must be recomputed from scratch", reason)
		}
	}
}

func TestLocationMatching(t *testing.T) {
	cases := []struct {
		location string
		want     bool
	}{
		{"Austin, TX", true},
		{"New York", true},
		{"Dubai", true},
		{"UAE", true},
		{"San Francisco, California", true},
		{"Dublin, Ireland", false},
		{"Paris, France", false},
		{"", false},
		{"London", false},
	}

	for _, tc := range cases {
		if got := locationInPrimaryMarket(tc.location); got != tc.want {
			t.Errorf("locationInPrimaryMarket(%q) = %v, want %v", tc.location, got, tc.want)
		}
	}
}

func TestStageFavorable(t *testing.T) {
	cases := []struct {
		stage string
		want  bool
	}{
		{"Series A", true},
		{"seed", true},
		{"Growth", true},
		{"Pre-seed", false},
		{"idea", false},
		{"", false},
		{"bootstrapped", false},
	}

	for _, tc := range cases {
		if got := stageFavorable(tc.stage); got != tc.want {
			t.Errorf("stageFavorable(%q) = %v, want %v", tc.stage, got, tc.want)
		}
	}
}
