package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/testutil"
	"github.com/kassslll/philosofium/backend/utils"

	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	now      time.Time
	ledger   repos.LedgerRepo
	catalog  repos.CatalogRepo
	users    repos.UserRepo
	cache    *fakeCache
	streaks  *services.StreakCalculator
	recorder *services.Recorder
	stats    *services.Aggregator
	progress *services.ProgressService
	profiles *services.ProfileService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	log := utils.NewNopLogger()
	f := &fixture{db: testutil.NewDB(t), now: now, cache: &fakeCache{}}

	clock := services.Clock{NowFunc: func() time.Time { return f.now }, Location: time.UTC}
	f.ledger = repos.NewLedgerRepo(f.db, log)
	f.catalog = repos.NewCatalogRepo(f.db, log)
	f.users = repos.NewUserRepo(f.db, log)
	f.streaks = services.NewStreakCalculator(f.ledger, services.DefaultStreakThreshold)
	f.recorder = services.NewRecorder(f.ledger, f.catalog, f.cache, clock, log)
	f.stats = services.NewAggregator(f.ledger, f.catalog, f.streaks, f.cache, clock, log)
	f.progress = services.NewProgressService(f.catalog, clock, log)
	f.profiles = services.NewProfileService(f.users, f.ledger, f.streaks, clock, log)
	return f
}

func identityOf(userID uint) services.Identity {
	return services.Identity{UserID: userID}
}

type fakeCache struct {
	mu            sync.Mutex
	snap          *services.LeaderboardSnapshot
	getErr        error
	sets          int
	invalidations int
}

func (c *fakeCache) Get(context.Context) (*services.LeaderboardSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.snap == nil {
		return nil, services.ErrCacheMiss
	}
	return c.snap, nil
}

func (c *fakeCache) Set(_ context.Context, snap *services.LeaderboardSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.snap = snap
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	c.snap = nil
	return nil
}
