// internal/cron/cron.go
package cron

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/orgchart-app/orgchart-backend/internal/cache"
)

// Scheduler handles scheduled maintenance tasks
type Scheduler struct {
	cron  *cron.Cron
	cache *cache.IdentityCache
}

// NewScheduler creates a new scheduler
func NewScheduler(c *cache.IdentityCache) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		cache: c,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every hour - drop expired cache entries
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running expired cache entry sweep...")
		s.sweepExpiredEntries()
	})

	// Run every 30 minutes - log cache hit ratios
	s.cron.AddFunc("*/30 * * * *", func() {
		s.logCacheStats()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// sweepExpiredEntries removes cache entries past their TTL
func (s *Scheduler) sweepExpiredEntries() {
	removed := s.cache.SweepExpired()
	if removed > 0 {
		log.Printf("[Cron] Removed %d expired cache entries", removed)
	}
}

// logCacheStats logs the current hit/miss counters
func (s *Scheduler) logCacheStats() {
	stats := s.cache.Stats()
	log.Printf("[Cron] Cache stats: profile %d/%d (ratio %.2f), photo %d/%d (ratio %.2f)",
		stats.ProfileHits, stats.ProfileHits+stats.ProfileMisses, stats.ProfileHitRatio,
		stats.PhotoHits, stats.PhotoHits+stats.PhotoMisses, stats.PhotoHitRatio)
}
