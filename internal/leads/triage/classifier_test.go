package triage

import (
	"strings"
	"testing"
)

func mustClassifier(t *testing.T) *Classifier {
	t.Helper()
	classifier, err := NewClassifier()
	if err != nil {
		t.Fatalf("NewClassifier() error: %v", err)
	}
	return classifier
}

func TestClassifyIntents(t *testing.T) {
	classifier := mustClassifier(t)

	cases := []struct {
		text string
		want string
	}{
		{"This sounds good, let's talk next week", LabelInterested},
		{"Can you send more details and pricing?", LabelNeedsInfo},
		{"Thanks, but we're not interested right now", LabelNotInterested},
		{"I am out of office until Monday", LabelOutOfOffice},
		{"Please unsubscribe me from this list", LabelUnsubscribe},
		{"What is this about?", LabelUncategorized},
		{"", LabelUncategorized},
	}

	for _, tc := range cases {
		got := classifier.Classify(tc.text, "Acme")
		if got.Intent != tc.want {
			t.Errorf("Classify(%q).Intent = %q, want %q", tc.text, got.Intent, tc.want)
		}
		if got.SuggestedReply == "" {
			t.Errorf("Classify(%q) returned empty suggested reply", tc.text)
		}
	}
}

func TestUnsubscribeEvaluatedFirst(t *testing.T) {
	classifier := mustClassifier(t)

	// Text that also matches interested and needs_info phrases must still
	// resolve to unsubscribe because its category is evaluated first.
	got := classifier.Classify("I'm interested in pricing but please unsubscribe me", "Acme")
	if got.Intent != LabelUnsubscribe {
		t.Fatalf("Intent = %q, want %q", got.Intent, LabelUnsubscribe)
	}

	labels := classifier.Labels()
	if len(labels) == 0 || labels[0] != LabelUnsubscribe {
		t.Fatalf("Labels() = %v, want unsubscribe first", labels)
	}
	if labels[len(labels)-1] != LabelUncategorized {
		t.Fatalf("Labels() = %v, want uncategorized fallback last", labels)
	}
}

func TestClassifyMatchingIsCaseInsensitive(t *testing.T) {
	classifier := mustClassifier(t)

	got := classifier.Classify("NOT INTERESTED, thank you", "Acme")
	if got.Intent != LabelNotInterested {
		t.Errorf("Intent = %q, want %q", got.Intent, LabelNotInterested)
	}
}

func TestClassifyPersonalizesReply(t *testing.T) {
	classifier := mustClassifier(t)

	got := classifier.Classify("sounds great, tell me more", "Northwind")
	if !strings.Contains(got.SuggestedReply, "Northwind") {
		t.Errorf("SuggestedReply = %q, want company name substituted", got.SuggestedReply)
	}
	if strings.Contains(got.SuggestedReply, "{{") {
		t.Errorf("SuggestedReply = %q, contains unresolved placeholder", got.SuggestedReply)
	}

	anonymous := classifier.Classify("sounds great", "")
	if strings.Contains(anonymous.SuggestedReply, "{{") {
		t.Errorf("SuggestedReply = %q, contains unresolved placeholder", anonymous.SuggestedReply)
	}
}

func TestClassifyTreatsTextAsOpaque(t *testing.T) {
	classifier := mustClassifier(t)

	got := classifier.Classify("<script>alert('x')</script> {{company}} SELECT * FROM leads", "Acme")
	if got.Intent != LabelUncategorized {
		t.Errorf("Intent = %q, want %q for markup-only text", got.Intent, LabelUncategorized)
	}
}
