package usecase

import (
	"context"
	"fmt"
	"time"

	"twobot/internal/biz/domain"
	"twobot/internal/biz/repo"
	"twobot/internal/metrics"
)

// DefaultCooldown is the suppression window after an accepted trigger.
const DefaultCooldown = 600 * time.Second

// TriggerOutcome is the result of evaluating one trigger event.
type TriggerOutcome int

const (
	// TriggerAccepted means the counter was incremented and announced.
	TriggerAccepted TriggerOutcome = iota
	// TriggerSuppressed means the event fell inside the cooldown window and
	// the one-time notice for this window was sent.
	TriggerSuppressed
	// TriggerSilenced means the event fell inside the cooldown window and
	// the notice had already been sent, so nothing happened.
	TriggerSilenced
)

// TriggerConfig holds the trigger engine settings.
type TriggerConfig struct {
	Keyword  string
	Cooldown time.Duration
}

// TriggerUsecase is the cooldown state machine: it decides per identifier
// whether a trigger event counts or is suppressed, persists accepted
// mutations before announcing them, and emits at most one suppression
// notice per cooldown window.
type TriggerUsecase struct {
	counters repo.CounterRepo
	profiles *ProfileUsecase
	channels repo.ChannelRepo
	cfg      TriggerConfig
}

// NewTriggerUsecase creates the trigger engine. A non-positive cooldown
// falls back to DefaultCooldown.
func NewTriggerUsecase(counters repo.CounterRepo, profiles *ProfileUsecase, channels repo.ChannelRepo, cfg TriggerConfig) *TriggerUsecase {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &TriggerUsecase{
		counters: counters,
		profiles: profiles,
		channels: channels,
		cfg:      cfg,
	}
}

// OnTrigger evaluates one trigger event for a raw user reference. The
// reference is canonicalized before counting so that case variations of the
// same bridged nickname share one record. A persistence failure aborts the
// evaluation before any chat message is sent: an unconfirmed increment must
// never be announced as successful.
func (u *TriggerUsecase) OnTrigger(ctx context.Context, rawID, channelID string, now time.Time) (TriggerOutcome, error) {
	id := domain.Canonicalize(rawID)
	nowSec := float64(now.UnixNano()) / float64(time.Second)

	record, exists := u.counters.Get(id)
	if !exists || !record.OnCooldown(nowSec, u.cfg.Cooldown) {
		var total int
		err := u.counters.Update(id, func(r *domain.TriggerRecord) {
			r.Count++
			r.LastTrigger = nowSec
			total = r.Count
		})
		if err != nil {
			return TriggerAccepted, fmt.Errorf("persist trigger for %s: %w", id, err)
		}
		metrics.TriggersAccepted.Inc()

		name := u.profiles.DisplayName(ctx, id)
		text := fmt.Sprintf("Whoops! %s got %s'd! (total: %d)", name, u.cfg.Keyword, total)
		if err := u.channels.SendText(ctx, channelID, text); err != nil {
			fmt.Printf("[Trigger] Failed to announce trigger: %v\n", err)
		}
		return TriggerAccepted, nil
	}

	metrics.TriggersSuppressed.Inc()
	if !record.NoticePending() {
		// Notice already sent this window: stay fully silent.
		return TriggerSilenced, nil
	}

	err := u.counters.Update(id, func(r *domain.TriggerRecord) {
		r.LastNotice = nowSec
	})
	if err != nil {
		return TriggerSuppressed, fmt.Errorf("persist notice for %s: %w", id, err)
	}
	metrics.NoticesSent.Inc()

	deadline := domain.CooldownDeadline(record.LastTrigger, u.cfg.Cooldown)
	name := u.profiles.DisplayName(ctx, id)
	text := fmt.Sprintf("%s cannot be %s'd again until %s", name, u.cfg.Keyword, deadline.Format("15:04"))
	if err := u.channels.SendText(ctx, channelID, text); err != nil {
		fmt.Printf("[Trigger] Failed to send cooldown notice: %v\n", err)
	}
	return TriggerSuppressed, nil
}
