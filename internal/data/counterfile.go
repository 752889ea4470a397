package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"twobot/internal/biz/domain"
	"twobot/internal/biz/repo"
)

// counterFile is the on-disk layout: three maps keyed by canonical
// identifier. Field names match the historical data file so existing files
// load unchanged; a file missing the notice map gets it defaulted on load.
type counterFile struct {
	Twos       map[string]int     `json:"twos"`
	LastTime   map[string]float64 `json:"lasttime"`
	LastNotice map[string]float64 `json:"lastnotice"`
}

// counterStore keeps the whole counter state in memory and rewrites the
// data file wholesale after every mutation. The write goes to a temp file
// first and is renamed into place so a crash mid-write cannot corrupt the
// store. An RWMutex lets the query API read concurrently with the single
// chat consumer.
type counterStore struct {
	mu   sync.RWMutex
	path string
	data counterFile
}

// NewCounterStore opens (or creates) the counter data file at path and
// loads it entirely into memory.
func NewCounterStore(path string) (repo.CounterRepo, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			return nil, fmt.Errorf("failed to create data file: %w", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	s := &counterStore{path: path}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	if s.data.Twos == nil {
		s.data.Twos = make(map[string]int)
	}
	if s.data.LastTime == nil {
		s.data.LastTime = make(map[string]float64)
	}
	if s.data.LastNotice == nil {
		s.data.LastNotice = make(map[string]float64)
	}

	return s, nil
}

// Get returns the record for a canonical identifier.
func (s *counterStore) Get(id string) (domain.TriggerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, ok := s.data.Twos[id]
	if !ok {
		return domain.TriggerRecord{}, false
	}
	return domain.TriggerRecord{
		Count:       count,
		LastTrigger: s.data.LastTime[id],
		LastNotice:  s.data.LastNotice[id],
	}, true
}

// Update applies mutate to the record for id and persists the whole store.
// Count and last-trigger entries are created together so a reader never
// observes one without the other; the notice entry is only written back
// once it becomes nonzero.
func (s *counterStore) Update(id string, mutate func(*domain.TriggerRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := domain.TriggerRecord{
		Count:       s.data.Twos[id],
		LastTrigger: s.data.LastTime[id],
		LastNotice:  s.data.LastNotice[id],
	}
	mutate(&record)

	s.data.Twos[id] = record.Count
	s.data.LastTime[id] = record.LastTrigger
	if record.LastNotice != 0 {
		s.data.LastNotice[id] = record.LastNotice
	}

	return s.persistLocked()
}

// IDs returns every identifier with a trigger history.
func (s *counterStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data.Twos))
	for id := range s.data.Twos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Leaderboard returns all identifiers with count > 0, sorted by count
// descending with ties broken by more recent last trigger.
func (s *counterStore) Leaderboard() []domain.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(s.data.Twos))
	for id, count := range s.data.Twos {
		if count <= 0 {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			ID:          id,
			Count:       count,
			LastTrigger: s.data.LastTime[id],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].LastTrigger > entries[j].LastTrigger
	})
	return entries
}

// persistLocked rewrites the data file. Caller holds the write lock.
func (s *counterStore) persistLocked() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode counter data: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write counter data: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace counter data: %w", err)
	}
	return nil
}
