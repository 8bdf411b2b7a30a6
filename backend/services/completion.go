package services

import (
	"context"
	"errors"

	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/utils"

	"gorm.io/gorm"
)

// CompletionResult is the outcome of a completion request.
type CompletionResult struct {
	XPAwarded           int
	WasAlreadyCompleted bool
	Completion          models.LessonCompletion
}

// Recorder marks lessons complete and awards their XP at most once per (user, lesson).
type Recorder struct {
	ledger  repos.LedgerRepo
	catalog repos.CatalogRepo
	cache   LeaderboardCache
	clock   Clock
	log     *utils.Logger
}

func NewRecorder(ledger repos.LedgerRepo, catalog repos.CatalogRepo, cache LeaderboardCache, clock Clock, baseLog *utils.Logger) *Recorder {
	if cache == nil {
		cache = NoopLeaderboardCache{}
	}
	return &Recorder{
		ledger:  ledger,
		catalog: catalog,
		cache:   cache,
		clock:   clock,
		log:     baseLog.With("service", "Recorder"),
	}
}

func (r *Recorder) lesson(ctx context.Context, lessonID uint) (*models.Lesson, error) {
	lesson, err := r.catalog.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

// RecordCompletion marks the lesson complete for the caller. The flag flip and
// both XP increments share one transaction; on error nothing is persisted.
// lastPosition, when non-nil, is stored whether or not the lesson was already done.
func (r *Recorder) RecordCompletion(ctx context.Context, id Identity, lessonID uint, lastPosition *int) (*CompletionResult, error) {
	lesson, err := r.lesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lastPosition != nil && *lastPosition < 0 {
		return nil, invalidInput("last_position must not be negative")
	}

	now := r.clock.Now()
	today := dateKey(now)

	var result CompletionResult
	err = r.ledger.Transaction(ctx, func(tx *gorm.DB) error {
		completion, err := r.ledger.EnsureCompletion(ctx, tx, id.UserID, lesson.CourseID, lesson.ID)
		if err != nil {
			return err
		}
		if lastPosition != nil {
			if err := r.ledger.SetLastPosition(ctx, tx, completion.ID, *lastPosition); err != nil {
				return err
			}
			completion.LastWatchPosition = *lastPosition
		}

		flipped, err := r.ledger.MarkCompleted(ctx, tx, completion.ID, now)
		if err != nil {
			return err
		}
		if !flipped {
			result.WasAlreadyCompleted = true
			result.Completion = *completion
			return nil
		}
		completion.Completed = true
		completion.CompletedAt = &now
		result.Completion = *completion

		xp := r.lessonXP(lesson)
		if xp == 0 {
			return nil
		}
		if err := r.ledger.AddTotalXP(ctx, tx, id.UserID, int64(xp)); err != nil {
			return err
		}
		if err := r.ledger.AddDailyXP(ctx, tx, id.UserID, today, int64(xp)); err != nil {
			return err
		}
		result.XPAwarded = xp
		return nil
	})
	if err != nil {
		r.log.Error("Completion transaction failed", "user_id", id.UserID, "lesson_id", lessonID, "error", err)
		return nil, err
	}

	if result.XPAwarded > 0 {
		r.log.Info("XP awarded", "user_id", id.UserID, "lesson_id", lesson.ID, "xp", result.XPAwarded, "date", today)
		if err := r.cache.Invalidate(ctx); err != nil {
			r.log.Warn("Leaderboard cache invalidation failed", "error", err)
		}
	}
	return &result, nil
}

func (r *Recorder) lessonXP(lesson *models.Lesson) int {
	xp, ok := ParseLessonXP(lesson.TimeXP)
	if !ok {
		raw := "<nil>"
		if lesson.TimeXP != nil {
			raw = *lesson.TimeXP
		}
		r.log.Warn("Lesson has no usable XP value, awarding 0", "lesson_id", lesson.ID, "time_xp", raw)
	}
	return xp
}

// UpdatePosition stores the last watched position without touching completion or XP.
func (r *Recorder) UpdatePosition(ctx context.Context, id Identity, lessonID uint, seconds int) (*models.LessonCompletion, error) {
	if seconds < 0 {
		return nil, invalidInput("last_position must not be negative")
	}
	lesson, err := r.lesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	var out *models.LessonCompletion
	err = r.ledger.Transaction(ctx, func(tx *gorm.DB) error {
		completion, err := r.ledger.EnsureCompletion(ctx, tx, id.UserID, lesson.CourseID, lesson.ID)
		if err != nil {
			return err
		}
		if err := r.ledger.SetLastPosition(ctx, tx, completion.ID, seconds); err != nil {
			return err
		}
		completion.LastWatchPosition = seconds
		out = completion
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
