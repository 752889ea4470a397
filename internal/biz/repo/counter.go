package repo

import "twobot/internal/biz/domain"

// CounterRepo is the persisted per-user trigger tally store. The store is
// fully loaded in memory and writes through to durable storage on every
// mutation, so reads take no context.
type CounterRepo interface {
	// Get returns the record for a canonical identifier. The second result
	// is false when the identifier has never triggered.
	Get(id string) (domain.TriggerRecord, bool)

	// Update applies mutate to the record for id, creating the record (with
	// all fields zeroed) if absent, and synchronously persists the result.
	// The record is only visible to readers after mutate returns.
	Update(id string, mutate func(*domain.TriggerRecord)) error

	// IDs returns every canonical identifier with a trigger history.
	IDs() []string

	// Leaderboard returns all identifiers with count > 0, sorted by count
	// descending, ties broken by more recent last trigger first.
	Leaderboard() []domain.LeaderboardEntry
}
