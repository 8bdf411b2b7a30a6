package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDashboardStats_EmptyCatalog(t *testing.T) {
	f := newFixture(t, testutil.Day(2024, 3, 10))
	user := testutil.CreateUser(t, f.db, "alice")

	stats, err := f.stats.DashboardStats(context.Background(), identityOf(user.ID))
	require.NoError(t, err)
	assert.Equal(t, services.DashboardStats{IsFirstVisit: true}, *stats)

	// The XP row is created lazily on first read.
	var n int64
	require.NoError(t, f.db.Model(&models.UserXP{}).Where("user_id = ?", user.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, testutil.Day(2024, 3, 10))
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "alice")
	id := identityOf(user.ID)

	course := testutil.CreateCourse(t, f.db, "Logic")
	l1 := testutil.CreateLesson(t, f.db, course.ID, "One", testutil.Str("100"))
	l2 := testutil.CreateLesson(t, f.db, course.ID, "Two", testutil.Str("100"))
	testutil.CreateLesson(t, f.db, course.ID, "Three", testutil.Str("100"))

	_, err := f.recorder.RecordCompletion(ctx, id, l1.ID, nil)
	require.NoError(t, err)
	_, err = f.recorder.RecordCompletion(ctx, id, l2.ID, nil)
	require.NoError(t, err)
	_, err = f.progress.RecordWatchTime(ctx, id, course.ID, 4000)
	require.NoError(t, err)

	stats, err := f.stats.DashboardStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1.1, stats.LearningHours)
	assert.Equal(t, 66, stats.Progress)
	assert.Equal(t, int64(2), stats.Achievements)
	assert.Equal(t, int64(200), stats.TotalXP)
	assert.Equal(t, 1, stats.StreakDays)
	assert.True(t, stats.IsFirstVisit)

	changed, err := f.stats.MarkWelcomeSeen(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	stats, err = f.stats.DashboardStats(ctx, id)
	require.NoError(t, err)
	assert.False(t, stats.IsFirstVisit)
}

func TestMarkWelcomeSeen_Idempotent(t *testing.T) {
	f := newFixture(t, testutil.Day(2024, 3, 10))
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "alice")

	changed, err := f.stats.MarkWelcomeSeen(ctx, identityOf(user.ID))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = f.stats.MarkWelcomeSeen(ctx, identityOf(user.ID))
	require.NoError(t, err)
	assert.False(t, changed)

	n, err := f.ledger.ResetWelcome(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	changed, err = f.stats.MarkWelcomeSeen(ctx, identityOf(user.ID))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestCalendarActivity(t *testing.T) {
	f := newFixture(t, testutil.Day(2024, 3, 10).Add(9*time.Hour))
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, "alice")
	id := identityOf(user.ID)

	testutil.SetDailyXP(t, f.db, user.ID, "2024-02-29", 500)
	testutil.SetDailyXP(t, f.db, user.ID, "2024-03-01", 100)
	testutil.SetDailyXP(t, f.db, user.ID, "2024-03-05", 0)
	testutil.SetDailyXP(t, f.db, user.ID, "2024-03-10", 200)

	t.Run("defaults to the current month", func(t *testing.T) {
		cal, err := f.stats.CalendarActivity(ctx, id, "", "")
		require.NoError(t, err)
		assert.Equal(t, 3, cal.Month)
		assert.Equal(t, 2024, cal.Year)
		assert.Equal(t, 150, cal.StreakThreshold)
		assert.Equal(t, 1, cal.StreakDays)
		assert.Equal(t, map[int]services.CalendarDay{
			1:  {XP: 100, HasActivity: true, MeetsStreak: false},
			5:  {XP: 0, HasActivity: false, MeetsStreak: false},
			10: {XP: 200, HasActivity: true, MeetsStreak: true},
		}, cal.Days)
	})

	t.Run("explicit month", func(t *testing.T) {
		cal, err := f.stats.CalendarActivity(ctx, id, "2", "2024")
		require.NoError(t, err)
		assert.Equal(t, map[int]services.CalendarDay{
			29: {XP: 500, HasActivity: true, MeetsStreak: true},
		}, cal.Days)
	})

	t.Run("month without activity", func(t *testing.T) {
		cal, err := f.stats.CalendarActivity(ctx, id, "7", "2023")
		require.NoError(t, err)
		assert.Empty(t, cal.Days)
	})

	for _, tc := range []struct{ month, year string }{
		{"13", "2024"},
		{"0", "2024"},
		{"abc", "2024"},
		{"3", "0"},
		{"3", "10000"},
		{"3", "20x4"},
	} {
		t.Run("rejects "+tc.month+"/"+tc.year, func(t *testing.T) {
			_, err := f.stats.CalendarActivity(ctx, id, tc.month, tc.year)
			assert.ErrorIs(t, err, services.ErrInvalidInput)
		})
	}
}

func createUserAt(t *testing.T, f *fixture, username, fullName string, created time.Time) *models.User {
	t.Helper()
	user := &models.User{
		Model:        gorm.Model{CreatedAt: created, UpdatedAt: created},
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FullName:     fullName,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func setTotalXP(t *testing.T, f *fixture, userID uint, xp int64) {
	t.Helper()
	require.NoError(t, f.ledger.AddTotalXP(context.Background(), nil, userID, xp))
}

func TestLeaderboard(t *testing.T) {
	today := testutil.Day(2024, 3, 10)
	f := newFixture(t, today)
	ctx := context.Background()
	base := today.AddDate(-1, 0, 0)

	alice := createUserAt(t, f, "alice", "Alice A.", base)
	bob := createUserAt(t, f, "bob", "", base.Add(time.Hour))
	zed := createUserAt(t, f, "zed", "", base.Add(2*time.Hour))
	amy := createUserAt(t, f, "amy", "", base.Add(2*time.Hour))
	carol := createUserAt(t, f, "carol", "", base.Add(3*time.Hour))
	dave := createUserAt(t, f, "dave", "", base)

	setTotalXP(t, f, alice.ID, 300)
	setTotalXP(t, f, bob.ID, 300)
	setTotalXP(t, f, zed.ID, 100)
	setTotalXP(t, f, amy.ID, 100)
	setTotalXP(t, f, dave.ID, 1000)
	require.NoError(t, f.db.Model(dave).Update("is_active", false).Error)

	testutil.SetDailyXP(t, f.db, alice.ID, "2024-03-10", 200)
	testutil.SetDailyXP(t, f.db, alice.ID, "2024-03-09", 200)

	entries, err := f.stats.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	var order []string
	for _, e := range entries {
		order = append(order, e.Username)
	}
	assert.Equal(t, []string{"alice", "bob", "amy", "zed", "carol"}, order)

	assert.Equal(t, services.LeaderboardEntry{
		Rank: 1, UserID: alice.ID, Name: "Alice A.", Username: "alice", TotalXP: 300, Streak: 2,
	}, entries[0])
	assert.Equal(t, "bob", entries[1].Name)
	assert.Equal(t, 5, entries[4].Rank)
	assert.Equal(t, carol.ID, entries[4].UserID)
	assert.Equal(t, int64(0), entries[4].TotalXP)
	assert.Equal(t, 0, entries[4].Streak)

	assert.Equal(t, 1, f.cache.sets)
	require.NotNil(t, f.cache.snap)
	assert.Equal(t, "2024-03-10", f.cache.snap.AsOf)
}

func TestLeaderboard_Cache(t *testing.T) {
	today := testutil.Day(2024, 3, 10)
	ctx := context.Background()

	t.Run("serves today's snapshot", func(t *testing.T) {
		f := newFixture(t, today)
		testutil.CreateUser(t, f.db, "alice")
		cached := []services.LeaderboardEntry{{Rank: 1, UserID: 77, Name: "cached", Username: "cached"}}
		f.cache.snap = &services.LeaderboardSnapshot{AsOf: "2024-03-10", Entries: cached}

		entries, err := f.stats.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, cached, entries)
		assert.Equal(t, 0, f.cache.sets)
	})

	t.Run("recomputes a stale snapshot", func(t *testing.T) {
		f := newFixture(t, today)
		alice := testutil.CreateUser(t, f.db, "alice")
		f.cache.snap = &services.LeaderboardSnapshot{AsOf: "2024-03-09"}

		entries, err := f.stats.Leaderboard(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, alice.ID, entries[0].UserID)
		assert.Equal(t, "2024-03-10", f.cache.snap.AsOf)
	})

	t.Run("cache errors fall through", func(t *testing.T) {
		f := newFixture(t, today)
		testutil.CreateUser(t, f.db, "alice")
		f.cache.getErr = errors.New("connection refused")

		entries, err := f.stats.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("awarding XP invalidates", func(t *testing.T) {
		f := newFixture(t, today)
		alice := testutil.CreateUser(t, f.db, "alice")
		course := testutil.CreateCourse(t, f.db, "Logic")
		lesson := testutil.CreateLesson(t, f.db, course.ID, "Intro", testutil.Str("50"))

		_, err := f.stats.Leaderboard(ctx)
		require.NoError(t, err)
		require.NotNil(t, f.cache.snap)

		_, err = f.recorder.RecordCompletion(ctx, identityOf(alice.ID), lesson.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, f.cache.snap)

		entries, err := f.stats.Leaderboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(50), entries[0].TotalXP)
	})
}
