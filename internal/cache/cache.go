// internal/cache/cache.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/orgchart-app/orgchart-backend/internal/directory"
	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
)

// ErrDirectoryUnavailable is returned when the directory call fails and
// nothing is cached yet. A stale cached value is never served on failure.
var ErrDirectoryUnavailable = errors.New("directory service unavailable")

// Config holds the externally supplied cache policy.
type Config struct {
	ProfileTTL         time.Duration
	PhotoTTL           time.Duration
	PreloadConcurrency int
	PreloadPacing      time.Duration
}

// Stats are plain in-process counters, reset only on restart.
type Stats struct {
	ProfileHits     uint64  `json:"profileHits"`
	ProfileMisses   uint64  `json:"profileMisses"`
	PhotoHits       uint64  `json:"photoHits"`
	PhotoMisses     uint64  `json:"photoMisses"`
	ProfileHitRatio float64 `json:"profileHitRatio"`
	PhotoHitRatio   float64 `json:"photoHitRatio"`
}

// A nil value inside an entry is a cached "not found": known-absent users
// are cached with the same TTL so the directory is not hammered for them.
type profileEntry struct {
	profile *models.Profile
	expires time.Time
}

type photoEntry struct {
	photo   *models.Photo
	expires time.Time
}

// IdentityCache is a read-through TTL cache in front of the directory.
// Profile and photo entries live in independent namespaces with independent
// TTLs; the same email maps to two entries.
type IdentityCache struct {
	directory directory.Client
	repo      repository.OrgChartRepository
	cfg       Config

	mu       sync.RWMutex
	profiles map[string]profileEntry
	photos   map[string]photoEntry

	// Per-key coalescing gates: concurrent misses for the same email
	// collapse into one directory call per namespace. Different emails
	// never block each other.
	profileFlight singleflight.Group
	photoFlight   singleflight.Group

	profileHits   atomic.Uint64
	profileMisses atomic.Uint64
	photoHits     atomic.Uint64
	photoMisses   atomic.Uint64
}

func NewIdentityCache(dir directory.Client, repo repository.OrgChartRepository, cfg Config) *IdentityCache {
	if cfg.PreloadConcurrency < 1 {
		cfg.PreloadConcurrency = 1
	}
	return &IdentityCache{
		directory: dir,
		repo:      repo,
		cfg:       cfg,
		profiles:  make(map[string]profileEntry),
		photos:    make(map[string]photoEntry),
	}
}

// normalizeEmail makes the cache key case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ============================================
// Profile lookups
// ============================================

func (c *IdentityCache) cachedProfile(key string) (*models.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.profiles[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.profile, true
}

func (c *IdentityCache) storeProfile(key string, profile *models.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[key] = profileEntry{profile: profile, expires: time.Now().Add(c.cfg.ProfileTTL)}
}

// GetProfile returns the cached profile for email, or performs at most one
// directory lookup among all concurrent callers for the same key. A cached
// "not found" is returned as nil with no error.
func (c *IdentityCache) GetProfile(ctx context.Context, email string) (*models.Profile, error) {
	key := normalizeEmail(email)

	if profile, ok := c.cachedProfile(key); ok {
		c.profileHits.Add(1)
		return profile, nil
	}
	c.profileMisses.Add(1)

	v, err, _ := c.profileFlight.Do(key, func() (interface{}, error) {
		// Double-check after acquiring the gate: another caller may have
		// completed the fetch while this one waited.
		if profile, ok := c.cachedProfile(key); ok {
			return profile, nil
		}

		profile, err := c.directory.LookupProfile(ctx, key)
		if errors.Is(err, directory.ErrNotFound) {
			c.storeProfile(key, nil)
			return (*models.Profile)(nil), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}

		c.storeProfile(key, profile)
		return profile, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Profile), nil
}

// ============================================
// Photo lookups
// ============================================

func (c *IdentityCache) cachedPhoto(key string) (*models.Photo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.photos[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.photo, true
}

func (c *IdentityCache) storePhoto(key string, photo *models.Photo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.photos[key] = photoEntry{photo: photo, expires: time.Now().Add(c.cfg.PhotoTTL)}
}

// GetPhoto follows the same caching and coalescing discipline as GetProfile
// in an independent namespace with its own TTL.
func (c *IdentityCache) GetPhoto(ctx context.Context, email string) (*models.Photo, error) {
	key := normalizeEmail(email)

	if photo, ok := c.cachedPhoto(key); ok {
		c.photoHits.Add(1)
		return photo, nil
	}
	c.photoMisses.Add(1)

	v, err, _ := c.photoFlight.Do(key, func() (interface{}, error) {
		if photo, ok := c.cachedPhoto(key); ok {
			return photo, nil
		}

		photo, err := c.directory.LookupPhoto(ctx, key)
		if errors.Is(err, directory.ErrNotFound) {
			c.storePhoto(key, nil)
			return (*models.Photo)(nil), nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}

		c.storePhoto(key, photo)
		return photo, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Photo), nil
}

// ============================================
// Maintenance operations
// ============================================

// Refresh evicts both entries for the email and immediately repopulates
// them, equivalent to a forced miss.
func (c *IdentityCache) Refresh(ctx context.Context, email string) error {
	key := normalizeEmail(email)

	c.mu.Lock()
	delete(c.profiles, key)
	delete(c.photos, key)
	c.mu.Unlock()

	if _, err := c.GetProfile(ctx, key); err != nil {
		return err
	}
	if _, err := c.GetPhoto(ctx, key); err != nil {
		return err
	}
	return nil
}

// PreloadAll warms the cache for every distinct non-empty employee email in
// the current organization document. Lookups run with a bounded number in
// flight; individual failures are logged and skipped so one bad record
// cannot abort the pass. A short pacing delay separates the profile and
// photo fetch per email to stay under the directory rate limit.
func (c *IdentityCache) PreloadAll(ctx context.Context) error {
	doc, err := c.repo.GetDocument(ctx)
	if err != nil {
		return fmt.Errorf("preload: %w", err)
	}

	seen := make(map[string]bool)
	var emails []string
	for _, p := range doc.Positions {
		for _, e := range p.Employees {
			key := normalizeEmail(e.Email)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			emails = append(emails, key)
		}
	}

	var failures atomic.Uint64
	var g errgroup.Group
	g.SetLimit(c.cfg.PreloadConcurrency)

	for _, email := range emails {
		email := email
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := c.GetProfile(ctx, email); err != nil {
				log.Printf("[Cache] Preload profile failed for %s: %v", email, err)
				failures.Add(1)
			}

			select {
			case <-time.After(c.cfg.PreloadPacing):
			case <-ctx.Done():
				return nil
			}

			if _, err := c.GetPhoto(ctx, email); err != nil {
				log.Printf("[Cache] Preload photo failed for %s: %v", email, err)
				failures.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	log.Printf("[Cache] Preload complete: %d emails, %d failed lookups", len(emails), failures.Load())
	return ctx.Err()
}

// SweepExpired drops expired entries so the maps do not grow without bound.
// Returns the number of entries removed.
func (c *IdentityCache) SweepExpired() int {
	now := time.Now()
	removed := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.profiles {
		if now.After(entry.expires) {
			delete(c.profiles, key)
			removed++
		}
	}
	for key, entry := range c.photos {
		if now.After(entry.expires) {
			delete(c.photos, key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the hit/miss counters.
func (c *IdentityCache) Stats() Stats {
	s := Stats{
		ProfileHits:   c.profileHits.Load(),
		ProfileMisses: c.profileMisses.Load(),
		PhotoHits:     c.photoHits.Load(),
		PhotoMisses:   c.photoMisses.Load(),
	}
	if total := s.ProfileHits + s.ProfileMisses; total > 0 {
		s.ProfileHitRatio = float64(s.ProfileHits) / float64(total)
	}
	if total := s.PhotoHits + s.PhotoMisses; total > 0 {
		s.PhotoHitRatio = float64(s.PhotoHits) / float64(total)
	}
	return s
}
