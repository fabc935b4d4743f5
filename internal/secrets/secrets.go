// Package secrets resolves named secrets such as the upstream API key.
// Sources are pluggable; the default deployment reads from the environment,
// wrapped in a TTL cache that serves stale values when the source is down.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	dErrors "riskgate/pkg/domain-errors"
)

// Source resolves a secret by name.
type Source interface {
	Get(ctx context.Context, name string) (string, error)
}

// EnvSource resolves secrets from environment variables. Secret names use
// vault-style dashes; they are mapped to env var form (RISKSHIELD-API-KEY
// becomes RISKSHIELD_API_KEY).
type EnvSource struct{}

func (EnvSource) Get(_ context.Context, name string) (string, error) {
	key := strings.ReplaceAll(name, "-", "_")
	value := os.Getenv(key)
	if value == "" {
		return "", dErrors.New(dErrors.CodeSecretUnavailable, fmt.Sprintf("secret %q is not set", name))
	}
	return value, nil
}

type cacheEntry struct {
	value     string
	fetchedAt time.Time
}

// Cached wraps a Source with a TTL cache. A fresh entry is served without
// touching the source. When the source fails and a stale entry exists, the
// stale value is served with a warning so a transient secret-store outage
// does not take down scoring.
type Cached struct {
	source Source
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// CachedOption configures a Cached source.
type CachedOption func(*Cached)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) CachedOption {
	return func(c *Cached) { c.now = now }
}

// NewCached creates a caching decorator around source with the given TTL.
func NewCached(source Source, ttl time.Duration, logger *slog.Logger, opts ...CachedOption) *Cached {
	c := &Cached{
		source:  source,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the secret for name, hitting the underlying source only when
// the cached entry is missing or expired.
func (c *Cached) Get(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, cached := c.entries[name]
	if cached && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.value, nil
	}

	value, err := c.source.Get(ctx, name)
	if err != nil {
		if cached {
			c.logger.WarnContext(ctx, "secret source failed, serving stale value",
				"secret", name,
				"age", c.now().Sub(entry.fetchedAt).String(),
				"error", err,
			)
			return entry.value, nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeSecretUnavailable, fmt.Sprintf("could not resolve secret %q", name))
	}

	c.entries[name] = cacheEntry{value: value, fetchedAt: c.now()}
	return value, nil
}

// Invalidate drops the cached entry for name so the next Get refetches.
// Called when the upstream rejects the key as unauthorized.
func (c *Cached) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}
