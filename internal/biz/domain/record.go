package domain

import (
	"math"
	"time"
)

// TriggerRecord tracks how often one canonical identifier has triggered the
// keyword. Timestamps are epoch seconds, matching the on-disk data file;
// zero means never. Count and LastTrigger are always created together;
// LastNotice only becomes nonzero once a suppression notice has been sent.
type TriggerRecord struct {
	Count       int
	LastTrigger float64
	LastNotice  float64
}

// OnCooldown reports whether a trigger at now falls inside the suppression
// window that started at LastTrigger.
func (r TriggerRecord) OnCooldown(now float64, window time.Duration) bool {
	return now < r.LastTrigger+window.Seconds()
}

// NoticePending reports whether no suppression notice has been sent yet for
// the current cooldown window. A window that opened at epoch second zero
// still counts as un-noticed while LastNotice is zero.
func (r TriggerRecord) NoticePending() bool {
	return r.LastNotice < r.LastTrigger || (r.LastTrigger == 0 && r.LastNotice == 0)
}

// CooldownDeadline returns the end of the cooldown window that started at
// lastTrigger, rounded up to the next whole minute.
func CooldownDeadline(lastTrigger float64, window time.Duration) time.Time {
	end := lastTrigger + window.Seconds()
	return time.Unix(int64(math.Ceil(end/60)*60), 0)
}

// LeaderboardEntry is one row of the sorted leaderboard.
type LeaderboardEntry struct {
	ID          string
	Count       int
	LastTrigger float64
}
