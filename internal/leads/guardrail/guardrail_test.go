package guardrail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"outreach_backend/internal/leads/domain"
)

type fakeQuota struct {
	mu     sync.Mutex
	counts map[time.Time]int
}

func newFakeQuota() *fakeQuota {
	return &fakeQuota{counts: make(map[time.Time]int)}
}

func (q *fakeQuota) ReserveSlot(_ context.Context, day time.Time, limit int) (bool, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.counts[day] >= limit {
		return false, q.counts[day], nil
	}
	q.counts[day]++
	return true, q.counts[day], nil
}

func (q *fakeQuota) ReleaseSlot(_ context.Context, day time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.counts[day] > 0 {
		q.counts[day]--
	}
	return nil
}

func (q *fakeQuota) SentCount(_ context.Context, day time.Time) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts[day], nil
}

func (q *fakeQuota) set(day time.Time, count int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counts[day] = count
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  []string
	fail  error
	msgID string
}

func (m *fakeMailer) Send(_ context.Context, recipient, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	m.sent = append(m.sent, recipient)
	if m.msgID != "" {
		return m.msgID, nil
	}
	return "msg-1", nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func approvedLead(id int64) domain.Lead {
	return domain.Lead{
		ID:           id,
		Company:      "Acme",
		Status:       domain.StatusApproved,
		EmailSubject: "Hello",
		EmailBody:    "World",
		Contacts: []domain.Contact{
			{Name: "Dana", Email: "dana@acme.example.com", IsPrimary: true},
		},
	}
}

func newGuardrail(quota *fakeQuota, mailer *fakeMailer, demoMode bool) *Guardrail {
	return New(quota, mailer, nil, demoMode, 100, 25)
}

func TestAttemptHappyPath(t *testing.T) {
	quota := newFakeQuota()
	mailer := &fakeMailer{msgID: "abc-123"}
	g := newGuardrail(quota, mailer, false)

	result := g.Attempt(context.Background(), approvedLead(1), false)

	if result.State != StateSent {
		t.Fatalf("State = %q (err %v), want sent", result.State, result.Err)
	}
	if result.MessageID != "abc-123" {
		t.Errorf("MessageID = %q, want abc-123", result.MessageID)
	}
	if count, _ := g.SentToday(context.Background()); count != 1 {
		t.Errorf("counter = %d after send, want 1", count)
	}
}

func TestDemoModeBlocksWithoutConsumingQuota(t *testing.T) {
	quota := newFakeQuota()
	mailer := &fakeMailer{}
	g := newGuardrail(quota, mailer, true)

	result := g.Attempt(context.Background(), approvedLead(1), false)

	if result.State != StateBlocked || result.Blocked != BlockDemoMode {
		t.Fatalf("result = %+v, want blocked by demo_mode", result)
	}
	if !errors.Is(result.Err, domain.ErrDemoModeBlocked) {
		t.Errorf("Err = %v, want ErrDemoModeBlocked", result.Err)
	}
	if count, _ := g.SentToday(context.Background()); count != 0 {
		t.Errorf("counter = %d, want 0, demo mode must not consume quota", count)
	}
	if mailer.sentCount() != 0 {
		t.Error("mailer was invoked in demo mode")
	}
}

func TestAttemptRejectsUnapprovedStatuses(t *testing.T) {
	for _, status := range []string{
		domain.StatusNew, domain.StatusQualified, domain.StatusDrafted,
		domain.StatusSent, domain.StatusIgnored,
	} {
		quota := newFakeQuota()
		g := newGuardrail(quota, &fakeMailer{}, false)

		lead := approvedLead(1)
		lead.Status = status

		result := g.Attempt(context.Background(), lead, false)
		if result.State != StateBlocked || result.Blocked != BlockNotApproved {
			t.Errorf("status %q: result = %+v, want blocked not_approved", status, result)
		}
		if !errors.Is(result.Err, domain.ErrNotApproved) {
			t.Errorf("status %q: Err = %v, want ErrNotApproved", status, result.Err)
		}
		if count, _ := g.SentToday(context.Background()); count != 0 {
			t.Errorf("status %q: counter = %d, want 0", status, count)
		}
	}
}

func TestAttemptRejectsMissingOrInvalidRecipient(t *testing.T) {
	for _, email := range []string{"", "   ", "not-an-email", "a@b@c"} {
		quota := newFakeQuota()
		g := newGuardrail(quota, &fakeMailer{}, false)

		lead := approvedLead(1)
		lead.Contacts = []domain.Contact{{Name: "Dana", Email: email, IsPrimary: true}}

		result := g.Attempt(context.Background(), lead, false)
		if result.State != StateBlocked || result.Blocked != BlockNoRecipient {
			t.Errorf("email %q: result = %+v, want blocked no_recipient", email, result)
		}
		if count, _ := g.SentToday(context.Background()); count != 0 {
			t.Errorf("email %q: counter = %d, want 0", email, count)
		}
	}
}

func TestDailyCapRaceExactlyOneWinner(t *testing.T) {
	quota := newFakeQuota()
	mailer := &fakeMailer{}
	g := newGuardrail(quota, mailer, false)
	quota.set(g.Today(), 99)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.Attempt(context.Background(), approvedLead(int64(i+1)), false)
		}(i)
	}
	wg.Wait()

	sent, capped := 0, 0
	for _, result := range results {
		switch {
		case result.State == StateSent:
			sent++
		case result.Blocked == BlockDailyCap:
			capped++
			if !errors.Is(result.Err, domain.ErrDailyCapExceeded) {
				t.Errorf("capped result Err = %v, want ErrDailyCapExceeded", result.Err)
			}
		default:
			t.Errorf("unexpected result %+v", result)
		}
	}
	if sent != 1 || capped != 1 {
		t.Fatalf("sent = %d, capped = %d, want exactly one winner for the last slot", sent, capped)
	}
	if count, _ := g.SentToday(context.Background()); count != 100 {
		t.Errorf("counter = %d, want 100, cap must never be exceeded", count)
	}
}

func TestTransportFailureRestoresQuota(t *testing.T) {
	quota := newFakeQuota()
	mailer := &fakeMailer{fail: errors.New("smtp connection refused")}
	g := newGuardrail(quota, mailer, false)
	quota.set(g.Today(), 41)

	result := g.Attempt(context.Background(), approvedLead(1), false)

	if result.State != StateTransportFailed {
		t.Fatalf("State = %q, want transport_failed", result.State)
	}
	if !errors.Is(result.Err, domain.ErrTransportFailure) {
		t.Errorf("Err = %v, want ErrTransportFailure", result.Err)
	}
	if count, _ := g.SentToday(context.Background()); count != 41 {
		t.Errorf("counter = %d, want 41, failed dispatch must return the slot", count)
	}
}

func TestDryRunExercisesChecksWithoutDispatch(t *testing.T) {
	quota := newFakeQuota()
	mailer := &fakeMailer{}
	g := newGuardrail(quota, mailer, false)
	quota.set(g.Today(), 10)

	result := g.Attempt(context.Background(), approvedLead(1), true)

	if result.State != StateSent || !result.DryRun {
		t.Fatalf("result = %+v, want simulated success", result)
	}
	if mailer.sentCount() != 0 {
		t.Error("dry run must not dispatch mail")
	}
	if count, _ := g.SentToday(context.Background()); count != 10 {
		t.Errorf("counter = %d, want 10, dry run must not consume quota", count)
	}
}

func TestDryRunStillBlockedByCap(t *testing.T) {
	quota := newFakeQuota()
	g := newGuardrail(quota, &fakeMailer{}, false)
	quota.set(g.Today(), 100)

	result := g.Attempt(context.Background(), approvedLead(1), true)
	if result.Blocked != BlockDailyCap {
		t.Fatalf("result = %+v, want blocked daily_cap_exceeded", result)
	}
}

func TestCheckBatchSize(t *testing.T) {
	g := newGuardrail(newFakeQuota(), &fakeMailer{}, false)

	if err := g.CheckBatchSize(25); err != nil {
		t.Errorf("CheckBatchSize(25) = %v, want nil", err)
	}
	err := g.CheckBatchSize(26)
	if err == nil {
		t.Fatal("CheckBatchSize(26) = nil, want BatchTooLarge")
	}
	if !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Errorf("CheckBatchSize(26) error = %v, want ErrBatchTooLarge", err)
	}
}
