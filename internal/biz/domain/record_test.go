package domain

import (
	"testing"
	"time"
)

func TestTriggerRecord_OnCooldown(t *testing.T) {
	r := TriggerRecord{Count: 1, LastTrigger: 1000}
	window := 600 * time.Second

	if !r.OnCooldown(1100, window) {
		t.Error("Expected trigger at +100s to be on cooldown")
	}
	if r.OnCooldown(1600, window) {
		t.Error("Expected trigger at exactly +600s to be off cooldown")
	}
	if r.OnCooldown(1601, window) {
		t.Error("Expected trigger at +601s to be off cooldown")
	}
}

func TestTriggerRecord_NoticePending(t *testing.T) {
	r := TriggerRecord{Count: 1, LastTrigger: 1000}
	if !r.NoticePending() {
		t.Error("Expected notice pending when none sent this window")
	}

	r.LastNotice = 1100
	if r.NoticePending() {
		t.Error("Expected no pending notice after one was sent this window")
	}

	// A new accepted trigger opens a new window.
	r.LastTrigger = 2000
	if !r.NoticePending() {
		t.Error("Expected notice pending again in the new window")
	}
}

func TestTriggerRecord_NoticePendingAtEpochZero(t *testing.T) {
	// A trigger accepted at epoch second zero leaves both timestamps zero;
	// the window's one notice must still be available.
	r := TriggerRecord{Count: 1}
	if !r.NoticePending() {
		t.Error("Expected notice pending for a window opened at epoch zero")
	}

	r.LastNotice = 100
	if r.NoticePending() {
		t.Error("Expected no pending notice after one was sent")
	}
}

func TestCooldownDeadline_RoundsUpToWholeMinute(t *testing.T) {
	window := 600 * time.Second

	// 1000 + 600 = 1600, next whole minute is 1620.
	got := CooldownDeadline(1000, window)
	if got.Unix() != 1620 {
		t.Errorf("deadline = %d, want 1620", got.Unix())
	}

	// Already on a whole minute: stays put.
	got = CooldownDeadline(600, window)
	if got.Unix() != 1200 {
		t.Errorf("deadline = %d, want 1200", got.Unix())
	}
}
