package services

import (
	"context"
	"time"

	"github.com/kassslll/philosofium/backend/repos"
)

// DefaultStreakThreshold is the daily XP a day needs to extend a streak.
const DefaultStreakThreshold = 150

// StreakCalculator derives consecutive-day streaks from the daily XP ledger.
type StreakCalculator struct {
	ledger    repos.LedgerRepo
	threshold int
}

func NewStreakCalculator(ledger repos.LedgerRepo, threshold int) *StreakCalculator {
	if threshold <= 0 {
		threshold = DefaultStreakThreshold
	}
	return &StreakCalculator{ledger: ledger, threshold: threshold}
}

func (s *StreakCalculator) Threshold() int {
	return s.threshold
}

// CurrentStreak counts qualifying days ending at asOf, or at the day before
// when asOf itself does not qualify.
func (s *StreakCalculator) CurrentStreak(ctx context.Context, userID uint, asOf time.Time) (int, error) {
	streaks, err := s.StreaksFor(ctx, []uint{userID}, asOf)
	if err != nil {
		return 0, err
	}
	return streaks[userID], nil
}

// StreaksFor computes CurrentStreak for many users with a single ledger read.
func (s *StreakCalculator) StreaksFor(ctx context.Context, userIDs []uint, asOf time.Time) (map[uint]int, error) {
	days, err := s.ledger.QualifyingDays(ctx, nil, userIDs, int64(s.threshold), dateKey(asOf))
	if err != nil {
		return nil, err
	}

	out := make(map[uint]int, len(userIDs))
	for _, id := range userIDs {
		set := make(map[string]bool, len(days[id]))
		for _, d := range days[id] {
			set[d] = true
		}
		out[id] = StreakFromDays(set, asOf)
	}
	return out, nil
}

// StreakFromDays walks back from asOf over the set of qualifying dates
// (models.DateLayout keys). If asOf does not qualify, the walk may start from
// the previous day instead, once.
func StreakFromDays(qualifying map[string]bool, asOf time.Time) int {
	check := StartOfDay(asOf)
	streak := 0
	graceUsed := false

	for {
		if qualifying[dateKey(check)] {
			streak++
			check = check.AddDate(0, 0, -1)
			continue
		}
		if streak == 0 && !graceUsed {
			graceUsed = true
			check = check.AddDate(0, 0, -1)
			continue
		}
		return streak
	}
}
