package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"twobot/internal/biz/domain"
)

func newTriggerFixture() (*TriggerUsecase, *fakeCounters, *fakeChannels) {
	counters := newFakeCounters()
	channels := &fakeChannels{}
	profiles := NewProfileUsecase(&fakeProfiles{known: map[string]*domain.Profile{
		"U123": {ID: "U123", Name: "alice"},
	}}, 0)
	u := NewTriggerUsecase(counters, profiles, channels, TriggerConfig{Keyword: "two"})
	return u, counters, channels
}

func TestOnTrigger_CooldownLifecycle(t *testing.T) {
	u, counters, channels := newTriggerFixture()
	ctx := context.Background()

	// First trigger: accepted and announced.
	outcome, err := u.OnTrigger(ctx, "U123", "C1", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}
	if outcome != TriggerAccepted {
		t.Fatalf("outcome = %v, want TriggerAccepted", outcome)
	}
	if r, _ := counters.Get("U123"); r.Count != 1 {
		t.Errorf("count = %d, want 1", r.Count)
	}
	msgs := channels.messages()
	if len(msgs) != 1 || msgs[0] != "Whoops! alice got two'd! (total: 1)" {
		t.Errorf("unexpected announcement: %v", msgs)
	}

	// Inside the window: suppressed with one notice.
	outcome, err = u.OnTrigger(ctx, "U123", "C1", time.Unix(100, 0))
	if err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}
	if outcome != TriggerSuppressed {
		t.Fatalf("outcome = %v, want TriggerSuppressed", outcome)
	}
	if r, _ := counters.Get("U123"); r.Count != 1 {
		t.Errorf("count = %d, want unchanged 1", r.Count)
	}
	deadline := domain.CooldownDeadline(0, DefaultCooldown).Format("15:04")
	msgs = channels.messages()
	if len(msgs) != 2 || msgs[1] != fmt.Sprintf("alice cannot be two'd again until %s", deadline) {
		t.Errorf("unexpected notice: %v", msgs)
	}

	// Still inside the window: fully silent this time.
	outcome, err = u.OnTrigger(ctx, "U123", "C1", time.Unix(200, 0))
	if err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}
	if outcome != TriggerSilenced {
		t.Fatalf("outcome = %v, want TriggerSilenced", outcome)
	}
	if got := len(channels.messages()); got != 2 {
		t.Errorf("sent %d messages, want 2", got)
	}

	// Past the window: accepted again.
	outcome, err = u.OnTrigger(ctx, "U123", "C1", time.Unix(601, 0))
	if err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}
	if outcome != TriggerAccepted {
		t.Fatalf("outcome = %v, want TriggerAccepted", outcome)
	}
	if r, _ := counters.Get("U123"); r.Count != 2 {
		t.Errorf("count = %d, want 2", r.Count)
	}
}

func TestOnTrigger_CanonicalizesBridgedID(t *testing.T) {
	u, counters, _ := newTriggerFixture()
	ctx := context.Background()

	if _, err := u.OnTrigger(ctx, "I-Nick (IRC)", "C1", time.Unix(1000, 0)); err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}

	// Case variations of the same nick must collide inside the window.
	outcome, err := u.OnTrigger(ctx, "I-NICK (IRC)", "C1", time.Unix(1100, 0))
	if err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}
	if outcome != TriggerSuppressed {
		t.Errorf("outcome = %v, want TriggerSuppressed", outcome)
	}
	if r, _ := counters.Get("I-nick (IRC)"); r.Count != 1 {
		t.Errorf("count = %d, want 1 under the canonical id", r.Count)
	}
}

func TestOnTrigger_PersistFailureIsNotAnnounced(t *testing.T) {
	u, counters, channels := newTriggerFixture()
	counters.failErr = errors.New("disk full")

	_, err := u.OnTrigger(context.Background(), "U123", "C1", time.Unix(0, 0))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected wrapped persist error, got %v", err)
	}
	if got := len(channels.messages()); got != 0 {
		t.Errorf("sent %d messages after persist failure, want 0", got)
	}
}

func TestOnTrigger_UnknownUserPlaceholder(t *testing.T) {
	counters := newFakeCounters()
	channels := &fakeChannels{}
	profiles := NewProfileUsecase(&fakeProfiles{known: map[string]*domain.Profile{}}, 0)
	u := NewTriggerUsecase(counters, profiles, channels, TriggerConfig{Keyword: "two"})

	if _, err := u.OnTrigger(context.Background(), "Ughost", "C1", time.Unix(0, 0)); err != nil {
		t.Fatalf("OnTrigger: %v", err)
	}
	msgs := channels.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], domain.UnknownUserName) {
		t.Errorf("expected placeholder name in announcement, got %v", msgs)
	}
}
