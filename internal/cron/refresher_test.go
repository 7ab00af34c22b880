package cron

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgchart-app/orgchart-backend/internal/cache"
	"github.com/orgchart-app/orgchart-backend/internal/directory"
	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
	"github.com/orgchart-app/orgchart-backend/internal/store"
)

// countingDirectory counts profile lookups and always answers.
type countingDirectory struct {
	calls atomic.Int64
}

func (d *countingDirectory) LookupProfile(ctx context.Context, email string) (*models.Profile, error) {
	d.calls.Add(1)
	return &models.Profile{DisplayName: email, Email: email}, nil
}

func (d *countingDirectory) LookupPhoto(ctx context.Context, email string) (*models.Photo, error) {
	return nil, directory.ErrNotFound
}

func newTestCache(t *testing.T, dir directory.Client) *cache.IdentityCache {
	t.Helper()
	flags := repository.FeatureFlags{InsertEnabled: true, UpdateEnabled: true, DeleteEnabled: true}
	repo := repository.NewStoreRepository(store.NewMemoryStore(), "test/org.json", "Test Org", flags)

	pos, err := repo.CreatePosition(context.Background(), models.Position{Title: "Team", Department: "Tech"})
	require.NoError(t, err)
	_, err = repo.CreateEmployee(context.Background(), pos.ID, models.Employee{Name: "A", Email: "a@x.com"})
	require.NoError(t, err)

	return cache.NewIdentityCache(dir, repo, cache.Config{
		ProfileTTL:         time.Millisecond,
		PhotoTTL:           time.Millisecond,
		PreloadConcurrency: 2,
		PreloadPacing:      time.Millisecond,
	})
}

func TestRefresherRunsPreloadCycles(t *testing.T) {
	dir := &countingDirectory{}
	r := NewRefresher(newTestCache(t, dir), 5*time.Millisecond, 20*time.Millisecond)

	r.Start()
	time.Sleep(120 * time.Millisecond)
	r.Stop()

	// Initial run plus at least one interval cycle
	assert.GreaterOrEqual(t, dir.calls.Load(), int64(2))
}

func TestStopInterruptsInitialDelayPromptly(t *testing.T) {
	dir := &countingDirectory{}
	r := NewRefresher(newTestCache(t, dir), time.Hour, time.Hour)

	r.Start()

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not interrupt the initial delay")
	}

	assert.Zero(t, dir.calls.Load(), "no preload may run before the initial delay elapses")
}

func TestStopInterruptsIntervalWait(t *testing.T) {
	dir := &countingDirectory{}
	r := NewRefresher(newTestCache(t, dir), time.Millisecond, time.Hour)

	r.Start()
	time.Sleep(50 * time.Millisecond) // let the first preload finish

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not interrupt the interval wait")
	}
}

func TestStopWithoutStartIsANoOp(t *testing.T) {
	r := NewRefresher(newTestCache(t, &countingDirectory{}), time.Hour, time.Hour)
	r.Stop()
}
