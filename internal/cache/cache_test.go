package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgchart-app/orgchart-backend/internal/directory"
	"github.com/orgchart-app/orgchart-backend/internal/models"
	"github.com/orgchart-app/orgchart-backend/internal/repository"
	"github.com/orgchart-app/orgchart-backend/internal/store"
)

// fakeDirectory is a controllable stand-in for the external directory.
type fakeDirectory struct {
	mu           sync.Mutex
	profileCalls map[string]int
	photoCalls   map[string]int

	delay   time.Duration
	failing map[string]bool
	missing map[string]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		profileCalls: make(map[string]int),
		photoCalls:   make(map[string]int),
		failing:      make(map[string]bool),
		missing:      make(map[string]bool),
	}
}

func (f *fakeDirectory) LookupProfile(ctx context.Context, email string) (*models.Profile, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.profileCalls[email]++
	f.mu.Unlock()

	if f.failing[email] {
		return nil, errors.New("directory exploded")
	}
	if f.missing[email] {
		return nil, directory.ErrNotFound
	}
	return &models.Profile{DisplayName: "Profile for " + email, Email: email}, nil
}

func (f *fakeDirectory) LookupPhoto(ctx context.Context, email string) (*models.Photo, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.photoCalls[email]++
	f.mu.Unlock()

	if f.failing[email] {
		return nil, errors.New("directory exploded")
	}
	if f.missing[email] {
		return nil, directory.ErrNotFound
	}
	return &models.Photo{Data: []byte("img-" + email), ContentType: "image/jpeg"}, nil
}

func (f *fakeDirectory) profileCallCount(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls[email]
}

func (f *fakeDirectory) photoCallCount(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.photoCalls[email]
}

func newTestRepo(t *testing.T, emails ...string) repository.OrgChartRepository {
	t.Helper()
	flags := repository.FeatureFlags{InsertEnabled: true, UpdateEnabled: true, DeleteEnabled: true}
	repo := repository.NewStoreRepository(store.NewMemoryStore(), "test/org.json", "Test Org", flags)

	pos, err := repo.CreatePosition(context.Background(), models.Position{Title: "Team", Department: "Tech"})
	require.NoError(t, err)
	for _, email := range emails {
		_, err := repo.CreateEmployee(context.Background(), pos.ID, models.Employee{
			Name:  email,
			Email: email,
		})
		require.NoError(t, err)
	}
	return repo
}

func testConfig() Config {
	return Config{
		ProfileTTL:         time.Minute,
		PhotoTTL:           time.Minute,
		PreloadConcurrency: 3,
		PreloadPacing:      time.Millisecond,
	}
}

func TestGetProfileCachesResult(t *testing.T) {
	dir := newFakeDirectory()
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())
	ctx := context.Background()

	first, err := c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, dir.profileCallCount("a@x.com"))

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.ProfileHits)
	assert.Equal(t, uint64(1), stats.ProfileMisses)
}

func TestGetProfileKeyIsCaseInsensitive(t *testing.T) {
	dir := newFakeDirectory()
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())
	ctx := context.Background()

	_, err := c.GetProfile(ctx, "Mixed.Case@X.com")
	require.NoError(t, err)
	_, err = c.GetProfile(ctx, "mixed.case@x.com")
	require.NoError(t, err)

	assert.Equal(t, 1, dir.profileCallCount("mixed.case@x.com"))
}

func TestConcurrentMissesCoalesceIntoOneLookup(t *testing.T) {
	dir := newFakeDirectory()
	dir.delay = 100 * time.Millisecond
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())

	const k = 20
	results := make([]*models.Profile, k)
	errs := make([]error, k)

	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetProfile(context.Background(), "a@x.com")
		}(i)
	}
	wg.Wait()

	for i := 0; i < k; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0], results[i], "all callers must see the same value")
	}
	assert.Equal(t, 1, dir.profileCallCount("a@x.com"), "exactly one directory call")
}

func TestDifferentEmailsDoNotBlockEachOther(t *testing.T) {
	dir := newFakeDirectory()
	dir.delay = 50 * time.Millisecond
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())

	start := time.Now()
	var wg sync.WaitGroup
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			_, err := c.GetProfile(context.Background(), email)
			assert.NoError(t, err)
		}(email)
	}
	wg.Wait()

	// Four serialized lookups would take at least 200ms
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestNegativeCaching(t *testing.T) {
	dir := newFakeDirectory()
	dir.missing["gone@x.com"] = true
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())
	ctx := context.Background()

	profile, err := c.GetProfile(ctx, "gone@x.com")
	require.NoError(t, err)
	assert.Nil(t, profile)

	// Second call within TTL makes no further directory call
	profile, err = c.GetProfile(ctx, "gone@x.com")
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Equal(t, 1, dir.profileCallCount("gone@x.com"))
}

func TestExpiredEntryTriggersRefetch(t *testing.T) {
	dir := newFakeDirectory()
	cfg := testConfig()
	cfg.ProfileTTL = 20 * time.Millisecond
	c := NewIdentityCache(dir, newTestRepo(t), cfg)
	ctx := context.Background()

	_, err := c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, dir.profileCallCount("a@x.com"))
}

func TestDirectoryFailureIsNotCached(t *testing.T) {
	dir := newFakeDirectory()
	dir.failing["flaky@x.com"] = true
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())
	ctx := context.Background()

	_, err := c.GetProfile(ctx, "flaky@x.com")
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)

	// The failure was not cached; the next call tries again
	dir.failing["flaky@x.com"] = false
	profile, err := c.GetProfile(ctx, "flaky@x.com")
	require.NoError(t, err)
	assert.NotNil(t, profile)
	assert.Equal(t, 2, dir.profileCallCount("flaky@x.com"))
}

func TestPhotoNamespaceIsIndependent(t *testing.T) {
	dir := newFakeDirectory()
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())
	ctx := context.Background()

	photo, err := c.GetPhoto(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, "image/jpeg", photo.ContentType)

	// Fetching a photo does not populate the profile namespace
	assert.Equal(t, 0, dir.profileCallCount("a@x.com"))
	_, err = c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, dir.profileCallCount("a@x.com"))
}

func TestRefreshForcesBothLookups(t *testing.T) {
	dir := newFakeDirectory()
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())
	ctx := context.Background()

	_, err := c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = c.GetPhoto(ctx, "a@x.com")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(ctx, "a@x.com"))

	assert.Equal(t, 2, dir.profileCallCount("a@x.com"))
	assert.Equal(t, 2, dir.photoCallCount("a@x.com"))
}

func TestPreloadAllWarmsEveryEmail(t *testing.T) {
	dir := newFakeDirectory()
	repo := newTestRepo(t, "a@x.com", "b@x.com", "c@x.com")
	c := NewIdentityCache(dir, repo, testConfig())

	require.NoError(t, c.PreloadAll(context.Background()))

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		assert.Equal(t, 1, dir.profileCallCount(email))
		assert.Equal(t, 1, dir.photoCallCount(email))
	}

	// Everything is warm now: no further directory calls
	_, err := c.GetProfile(context.Background(), "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, dir.profileCallCount("b@x.com"))
}

func TestPreloadAllContinuesPastFailures(t *testing.T) {
	dir := newFakeDirectory()
	dir.failing["bad@x.com"] = true
	repo := newTestRepo(t, "a@x.com", "bad@x.com", "c@x.com")
	c := NewIdentityCache(dir, repo, testConfig())

	require.NoError(t, c.PreloadAll(context.Background()))

	// The good emails are cached despite the failing one
	assert.Equal(t, 1, dir.profileCallCount("a@x.com"))
	assert.Equal(t, 1, dir.profileCallCount("c@x.com"))

	_, err := c.GetProfile(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, dir.profileCallCount("a@x.com"))
}

func TestPreloadAllBoundsConcurrency(t *testing.T) {
	dir := newFakeDirectory()
	repo := newTestRepo(t,
		"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com",
		"f@x.com", "g@x.com", "h@x.com", "i@x.com", "j@x.com")

	cfg := testConfig()
	cfg.PreloadConcurrency = 2

	var inFlight, peak atomic.Int64
	gate := &gatedDirectory{fakeDirectory: dir, inFlight: &inFlight, peak: &peak}
	c := NewIdentityCache(gate, repo, cfg)

	require.NoError(t, c.PreloadAll(context.Background()))
	assert.LessOrEqual(t, peak.Load(), int64(2), "at most PreloadConcurrency lookups in flight")
}

// gatedDirectory tracks the peak number of concurrent lookups.
type gatedDirectory struct {
	*fakeDirectory
	inFlight *atomic.Int64
	peak     *atomic.Int64
}

func (g *gatedDirectory) track() func() {
	n := g.inFlight.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return func() { g.inFlight.Add(-1) }
}

func (g *gatedDirectory) LookupProfile(ctx context.Context, email string) (*models.Profile, error) {
	done := g.track()
	defer done()
	return g.fakeDirectory.LookupProfile(ctx, email)
}

func (g *gatedDirectory) LookupPhoto(ctx context.Context, email string) (*models.Photo, error) {
	done := g.track()
	defer done()
	return g.fakeDirectory.LookupPhoto(ctx, email)
}

func TestSweepExpiredRemovesOnlyExpiredEntries(t *testing.T) {
	dir := newFakeDirectory()
	cfg := testConfig()
	cfg.ProfileTTL = 10 * time.Millisecond
	cfg.PhotoTTL = time.Minute
	c := NewIdentityCache(dir, newTestRepo(t), cfg)
	ctx := context.Background()

	_, err := c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = c.GetPhoto(ctx, "a@x.com")
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, 1, c.SweepExpired(), "only the profile entry expired")
	assert.Equal(t, 0, c.SweepExpired())
}

func TestStatsRatios(t *testing.T) {
	dir := newFakeDirectory()
	c := NewIdentityCache(dir, newTestRepo(t), testConfig())
	ctx := context.Background()

	assert.Zero(t, c.Stats().ProfileHitRatio)

	_, err := c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = c.GetProfile(ctx, "a@x.com")
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.ProfileHits)
	assert.Equal(t, uint64(1), stats.ProfileMisses)
	assert.InDelta(t, 2.0/3.0, stats.ProfileHitRatio, 0.001)
}
