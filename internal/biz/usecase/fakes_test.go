package usecase

import (
	"context"
	"sort"
	"sync"

	"twobot/internal/biz/domain"
)

// fakeCounters is an in-memory CounterRepo for tests.
type fakeCounters struct {
	mu      sync.Mutex
	records map[string]domain.TriggerRecord
	failErr error
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{records: make(map[string]domain.TriggerRecord)}
}

func (f *fakeCounters) Get(id string) (domain.TriggerRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	return r, ok
}

func (f *fakeCounters) Update(id string, mutate func(*domain.TriggerRecord)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	r := f.records[id]
	mutate(&r)
	f.records[id] = r
	return nil
}

func (f *fakeCounters) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *fakeCounters) Leaderboard() []domain.LeaderboardEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]domain.LeaderboardEntry, 0, len(f.records))
	for id, r := range f.records {
		if r.Count > 0 {
			entries = append(entries, domain.LeaderboardEntry{ID: id, Count: r.Count, LastTrigger: r.LastTrigger})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].LastTrigger > entries[j].LastTrigger
	})
	return entries
}

// fakeChannels records every text sent through it.
type fakeChannels struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeChannels) SendText(ctx context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChannels) ChannelInfo(ctx context.Context, channelID string) (*domain.Channel, error) {
	return &domain.Channel{ID: channelID, Name: "general"}, nil
}

func (f *fakeChannels) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// fakeProfiles resolves from a fixed map and counts lookups.
type fakeProfiles struct {
	mu       sync.Mutex
	known    map[string]*domain.Profile
	lookups  int
	resolveE error
}

func (f *fakeProfiles) ResolveProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.resolveE != nil {
		return nil, f.resolveE
	}
	return f.known[userID], nil
}
