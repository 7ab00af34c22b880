// internal/cron/refresher.go
package cron

import (
	"context"
	"log"
	"time"

	"github.com/orgchart-app/orgchart-backend/internal/cache"
)

// Refresher periodically drives the cache's bulk preload: it waits an
// initial startup delay so the rest of the process finishes starting, then
// runs preload / wait / repeat forever. Stop interrupts either wait
// promptly and also cancels an in-flight preload.
type Refresher struct {
	cache        *cache.IdentityCache
	initialDelay time.Duration
	interval     time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefresher(c *cache.IdentityCache, initialDelay, interval time.Duration) *Refresher {
	return &Refresher{
		cache:        c,
		initialDelay: initialDelay,
		interval:     interval,
	}
}

// Start launches the background loop. Calling Start twice without Stop in
// between is a programming error.
func (r *Refresher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx)
	log.Printf("[Refresher] Started (initial delay %s, interval %s)", r.initialDelay, r.interval)
}

// Stop terminates the loop and waits until it has exited.
func (r *Refresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	log.Println("[Refresher] Stopped")
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)

	if !sleep(ctx, r.initialDelay) {
		return
	}

	for {
		log.Println("[Refresher] Running cache preload...")
		start := time.Now()
		if err := r.cache.PreloadAll(ctx); err != nil {
			log.Printf("[Refresher] Preload failed: %v", err)
		} else {
			log.Printf("[Refresher] Preload finished in %v", time.Since(start))
		}

		if !sleep(ctx, r.interval) {
			return
		}
	}
}

// sleep waits for d or until ctx is cancelled; returns false on cancel.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
