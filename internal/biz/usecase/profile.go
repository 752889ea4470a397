package usecase

import (
	"context"
	"sync"
	"time"

	"twobot/internal/biz/domain"
	"twobot/internal/biz/repo"
	"twobot/internal/metrics"
)

// DefaultProfileTTL is how long a cached profile stays fresh.
const DefaultProfileTTL = 900 * time.Second

// ProfileUsecase resolves canonical identifiers to profiles. Bridged
// identifiers are synthesized locally; platform identifiers go through a
// time-bounded cache backed by the platform lookup. Entries are never
// evicted, only lazily refreshed once stale.
type ProfileUsecase struct {
	profiles repo.ProfileRepo
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	profile   *domain.Profile
	fetchedAt time.Time
}

// NewProfileUsecase creates a profile cache. A non-positive ttl falls back
// to DefaultProfileTTL.
func NewProfileUsecase(profiles repo.ProfileRepo, ttl time.Duration) *ProfileUsecase {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileUsecase{
		profiles: profiles,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
}

// Resolve returns the profile for a canonical identifier, or (nil, nil)
// when the platform does not know the user. Cache misses and stale entries
// invoke the platform lookup; concurrent resolves for the same identifier
// may both fetch, which is harmless since the overwrite is idempotent.
func (u *ProfileUsecase) Resolve(ctx context.Context, id string) (*domain.Profile, error) {
	if domain.IsBridged(id) {
		return domain.BridgedProfile(domain.Canonicalize(id)), nil
	}

	u.mu.Lock()
	entry, ok := u.cache[id]
	u.mu.Unlock()
	if ok && u.now().Sub(entry.fetchedAt) < u.ttl {
		metrics.ProfileLookups.WithLabelValues("hit").Inc()
		return entry.profile, nil
	}

	profile, err := u.profiles.ResolveProfile(ctx, id)
	if err != nil {
		metrics.ProfileLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	if profile == nil {
		metrics.ProfileLookups.WithLabelValues("miss").Inc()
		return nil, nil
	}

	u.mu.Lock()
	u.cache[id] = cacheEntry{profile: profile, fetchedAt: u.now()}
	u.mu.Unlock()
	metrics.ProfileLookups.WithLabelValues("fetch").Inc()
	return profile, nil
}

// DisplayName returns the display name for an identifier, degrading to the
// unknown-user placeholder when the profile cannot be resolved.
func (u *ProfileUsecase) DisplayName(ctx context.Context, id string) string {
	profile, err := u.Resolve(ctx, id)
	if err != nil || profile == nil {
		return domain.UnknownUserName
	}
	return profile.Name
}
