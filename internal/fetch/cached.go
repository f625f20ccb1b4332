package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched job description is reused.
const DefaultCacheTTL = 30 * time.Minute

// Source loads the description text of a job posting URL.
type Source interface {
	FetchJobDescription(ctx context.Context, url string) (string, error)
}

type cacheEntry struct {
	text      string
	expiresAt time.Time
}

// CachedFetcher reuses recent job descriptions so repeated optimizations of the
// same posting do not re-download it. Failures are not cached.
type CachedFetcher struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedFetcher wraps source with an in-memory cache. A zero ttl uses DefaultCacheTTL.
func NewCachedFetcher(source Source, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// FetchJobDescription returns the cached text for url or fetches it.
func (f *CachedFetcher) FetchJobDescription(ctx context.Context, url string) (string, error) {
	if text, ok := f.get(url); ok {
		return text, nil
	}

	text, err := f.source.FetchJobDescription(ctx, url)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.entries[url] = cacheEntry{text: text, expiresAt: f.now().Add(f.ttl)}
	f.mu.Unlock()
	return text, nil
}

// Invalidate drops url from the cache.
func (f *CachedFetcher) Invalidate(url string) {
	f.mu.Lock()
	delete(f.entries, url)
	f.mu.Unlock()
}

func (f *CachedFetcher) get(url string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[url]
	if !ok {
		return "", false
	}
	if !f.now().Before(entry.expiresAt) {
		delete(f.entries, url)
		return "", false
	}
	return entry.text, true
}
