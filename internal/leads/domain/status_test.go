package domain

import (
	"errors"
	"testing"
)

func TestCanTransitionHappyPath(t *testing.T) {
	steps := [][2]string{
		{StatusNew, StatusQualified},
		{StatusQualified, StatusDrafted},
		{StatusDrafted, StatusApproved},
		{StatusApproved, StatusSent},
	}

	for _, step := range steps {
		if !CanTransition(step[0], step[1]) {
			t.Errorf("CanTransition(%q, %q) = false, want true", step[0], step[1])
		}
	}
}

func TestSendOnlyReachableFromApproved(t *testing.T) {
	for _, from := range []string{StatusNew, StatusQualified, StatusDrafted, StatusSent, StatusIgnored, StatusInProgress, StatusContacted} {
		if CanTransition(from, StatusSent) {
			t.Errorf("CanTransition(%q, sent) = true, want false", from)
		}
		err := ValidateTransition(from, StatusSent)
		if err == nil {
			t.Fatalf("ValidateTransition(%q, sent) = nil, want InvalidTransition", from)
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("ValidateTransition(%q, sent) error = %v, want ErrInvalidTransition", from, err)
		}
	}
}

func TestUnapproveReturnsToDrafted(t *testing.T) {
	if !CanTransition(StatusApproved, StatusDrafted) {
		t.Fatal("CanTransition(approved, drafted) = false, want true")
	}
}

func TestIgnoreReachableFromNonTerminalOnly(t *testing.T) {
	for _, from := range []string{StatusNew, StatusQualified, StatusDrafted, StatusApproved, StatusInProgress, StatusContacted} {
		if !CanTransition(from, StatusIgnored) {
			t.Errorf("CanTransition(%q, ignored) = false, want true", from)
		}
	}
	for _, from := range []string{StatusSent, StatusIgnored} {
		if CanTransition(from, StatusIgnored) {
			t.Errorf("CanTransition(%q, ignored) = true, want false for terminal status", from)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !IsTerminalStatus(StatusSent) || !IsTerminalStatus(StatusIgnored) {
		t.Error("sent and ignored must be terminal")
	}
	for _, status := range []string{StatusNew, StatusQualified, StatusDrafted, StatusApproved, StatusInProgress, StatusContacted} {
		if IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = true, want false", status)
		}
	}
}

func TestPrimaryContactSelection(t *testing.T) {
	lead := Lead{Contacts: []Contact{
		{ID: 1, Email: ""},
		{ID: 2, Email: "second@example.com"},
		{ID: 3, Email: "primary@example.com", IsPrimary: true},
	}}

	contact := lead.PrimaryContact()
	if contact == nil || contact.ID != 3 {
		t.Fatalf("PrimaryContact() = %+v, want explicit primary (id 3)", contact)
	}

	lead.Contacts[2].IsPrimary = false
	contact = lead.PrimaryContact()
	if contact == nil || contact.ID != 2 {
		t.Fatalf("PrimaryContact() = %+v, want first contact with email (id 2)", contact)
	}

	empty := Lead{}
	if empty.PrimaryContact() != nil {
		t.Error("PrimaryContact() on lead without contacts should be nil")
	}
	if empty.RecipientEmail() != "" {
		t.Error("RecipientEmail() on lead without contacts should be empty")
	}
}
