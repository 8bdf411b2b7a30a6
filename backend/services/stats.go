package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/utils"
)

type DashboardStats struct {
	LearningHours float64 `json:"learning_hours"`
	StreakDays    int     `json:"streak_days"`
	Progress      int     `json:"progress"`
	Achievements  int64   `json:"achievements"`
	TotalXP       int64   `json:"total_xp"`
	IsFirstVisit  bool    `json:"is_first_visit"`
}

type CalendarDay struct {
	XP          int64 `json:"xp"`
	HasActivity bool  `json:"has_activity"`
	MeetsStreak bool  `json:"meets_streak"`
}

// CalendarActivity holds one month of daily XP keyed by day of month.
// Days without a ledger row are absent.
type CalendarActivity struct {
	Month           int                 `json:"month"`
	Year            int                 `json:"year"`
	Days            map[int]CalendarDay `json:"days"`
	StreakDays      int                 `json:"streak_days"`
	StreakThreshold int                 `json:"streak_threshold"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	TotalXP  int64  `json:"total_xp"`
	Streak   int    `json:"streak"`
}

// Aggregator serves the read-side statistics views.
type Aggregator struct {
	ledger  repos.LedgerRepo
	catalog repos.CatalogRepo
	streaks *StreakCalculator
	cache   LeaderboardCache
	clock   Clock
	log     *utils.Logger
}

func NewAggregator(ledger repos.LedgerRepo, catalog repos.CatalogRepo, streaks *StreakCalculator, cache LeaderboardCache, clock Clock, baseLog *utils.Logger) *Aggregator {
	if cache == nil {
		cache = NoopLeaderboardCache{}
	}
	return &Aggregator{
		ledger:  ledger,
		catalog: catalog,
		streaks: streaks,
		cache:   cache,
		clock:   clock,
		log:     baseLog.With("service", "Aggregator"),
	}
}

func (a *Aggregator) DashboardStats(ctx context.Context, id Identity) (*DashboardStats, error) {
	xp, err := a.ledger.EnsureUserXP(ctx, nil, id.UserID)
	if err != nil {
		return nil, err
	}
	watched, err := a.catalog.WatchTimeSeconds(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	streak, err := a.streaks.CurrentStreak(ctx, id.UserID, a.clock.Today())
	if err != nil {
		return nil, err
	}
	completed, err := a.catalog.CountCompleted(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	total, err := a.catalog.CountLessons(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		LearningHours: math.Round(float64(watched)/3600*10) / 10,
		StreakDays:    streak,
		Progress:      percent(completed, total),
		Achievements:  completed,
		TotalXP:       xp.TotalXP,
		IsFirstVisit:  !xp.HasSeenWelcome,
	}, nil
}

// percent is part/whole*100 truncated, 0 for an empty whole.
func percent(part, whole int64) int {
	if whole <= 0 {
		return 0
	}
	return int(part * 100 / whole)
}

// CalendarActivity reports daily XP for a month. Empty month or year default
// to the current one.
func (a *Aggregator) CalendarActivity(ctx context.Context, id Identity, monthRaw, yearRaw string) (*CalendarActivity, error) {
	today := a.clock.Today()

	month, err := parseCalendarField("month", monthRaw, int(today.Month()))
	if err != nil {
		return nil, err
	}
	year, err := parseCalendarField("year", yearRaw, today.Year())
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, invalidInput("month must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return nil, invalidInput("year must be between 1 and 9999, got %d", year)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, today.Location())
	last := first.AddDate(0, 1, -1)

	rows, err := a.ledger.DailyXPRange(ctx, nil, id.UserID, dateKey(first), dateKey(last))
	if err != nil {
		return nil, err
	}
	streak, err := a.streaks.CurrentStreak(ctx, id.UserID, today)
	if err != nil {
		return nil, err
	}

	threshold := int64(a.streaks.Threshold())
	days := make(map[int]CalendarDay, len(rows))
	for _, row := range rows {
		day, err := time.ParseInLocation(models.DateLayout, row.Date, today.Location())
		if err != nil {
			a.log.Warn("Skipping malformed daily XP date", "user_id", id.UserID, "date", row.Date)
			continue
		}
		days[day.Day()] = CalendarDay{
			XP:          row.XPEarned,
			HasActivity: row.XPEarned > 0,
			MeetsStreak: row.XPEarned >= threshold,
		}
	}

	return &CalendarActivity{
		Month:           month,
		Year:            year,
		Days:            days,
		StreakDays:      streak,
		StreakThreshold: a.streaks.Threshold(),
	}, nil
}

func parseCalendarField(name, raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidInput("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// Leaderboard ranks active users by total XP; ties go to the earlier account,
// then the lower username.
func (a *Aggregator) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	today := a.clock.Today()
	asOf := dateKey(today)

	snap, err := a.cache.Get(ctx)
	switch {
	case err == nil && snap != nil && snap.AsOf == asOf:
		return snap.Entries, nil
	case err != nil && !errors.Is(err, ErrCacheMiss):
		a.log.Warn("Leaderboard cache read failed", "error", err)
	}

	rows, err := a.ledger.LeaderboardRows(ctx, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	streaks, err := a.streaks.StreaksFor(ctx, ids, today)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		name := row.FullName
		if name == "" {
			name = row.Username
		}
		entries = append(entries, LeaderboardEntry{
			Rank:     i + 1,
			UserID:   row.UserID,
			Name:     name,
			Username: row.Username,
			TotalXP:  row.TotalXP,
			Streak:   streaks[row.UserID],
		})
	}

	if err := a.cache.Set(ctx, &LeaderboardSnapshot{AsOf: asOf, Entries: entries}); err != nil {
		a.log.Warn("Leaderboard cache write failed", "error", err)
	}
	return entries, nil
}

// MarkWelcomeSeen reports whether the flag changed.
func (a *Aggregator) MarkWelcomeSeen(ctx context.Context, id Identity) (bool, error) {
	return a.ledger.MarkWelcomeSeen(ctx, nil, id.UserID)
}
