package repos

import (
	"context"
	"time"

	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardRow is an active user joined to their XP total (0 when absent).
type LeaderboardRow struct {
	UserID   uint
	Username string
	FullName string
	TotalXP  int64
}

// LedgerRepo persists lesson completions and the XP counters derived from them.
// Every method accepts an optional transaction; nil means the repo's own handle.
type LedgerRepo interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error

	EnsureCompletion(ctx context.Context, tx *gorm.DB, userID, courseID, lessonID uint) (*models.LessonCompletion, error)
	SetLastPosition(ctx context.Context, tx *gorm.DB, completionID uint, seconds int) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, completionID uint, at time.Time) (bool, error)

	EnsureUserXP(ctx context.Context, tx *gorm.DB, userID uint) (*models.UserXP, error)
	AddTotalXP(ctx context.Context, tx *gorm.DB, userID uint, amount int64) error
	AddDailyXP(ctx context.Context, tx *gorm.DB, userID uint, date string, amount int64) error
	MarkWelcomeSeen(ctx context.Context, tx *gorm.DB, userID uint) (bool, error)
	ResetWelcome(ctx context.Context, tx *gorm.DB) (int64, error)

	DailyXPRange(ctx context.Context, tx *gorm.DB, userID uint, from, to string) ([]models.DailyXP, error)
	QualifyingDays(ctx context.Context, tx *gorm.DB, userIDs []uint, threshold int64, asOf string) (map[uint][]string, error)
	LeaderboardRows(ctx context.Context, tx *gorm.DB) ([]LeaderboardRow, error)
}

type ledgerRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewLedgerRepo(db *gorm.DB, baseLog *utils.Logger) LedgerRepo {
	return &ledgerRepo{db: db, log: baseLog.With("repo", "LedgerRepo")}
}

func (r *ledgerRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *ledgerRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *ledgerRepo) EnsureCompletion(ctx context.Context, tx *gorm.DB, userID, courseID, lessonID uint) (*models.LessonCompletion, error) {
	db := r.conn(ctx, tx)

	row := models.LessonCompletion{UserID: userID, CourseID: courseID, LessonID: lessonID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return nil, err
	}

	// Read back: on conflict the insert above did not populate row.
	var out models.LessonCompletion
	if err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ledgerRepo) SetLastPosition(ctx context.Context, tx *gorm.DB, completionID uint, seconds int) error {
	return r.conn(ctx, tx).Model(&models.LessonCompletion{}).
		Where("id = ?", completionID).
		Update("last_watch_position", seconds).Error
}

// MarkCompleted flips completed false->true. It reports whether this call did
// the flip; concurrent callers for the same row see exactly one true.
func (r *ledgerRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, completionID uint, at time.Time) (bool, error) {
	res := r.conn(ctx, tx).Model(&models.LessonCompletion{}).
		Where("id = ? AND completed = ?", completionID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ledgerRepo) insertUserXP(db *gorm.DB, userID uint) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.UserXP{UserID: userID}).Error
}

func (r *ledgerRepo) EnsureUserXP(ctx context.Context, tx *gorm.DB, userID uint) (*models.UserXP, error) {
	db := r.conn(ctx, tx)
	if err := r.insertUserXP(db, userID); err != nil {
		return nil, err
	}

	var out models.UserXP
	if err := db.Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ledgerRepo) AddTotalXP(ctx context.Context, tx *gorm.DB, userID uint, amount int64) error {
	db := r.conn(ctx, tx)
	if err := r.insertUserXP(db, userID); err != nil {
		return err
	}
	return db.Model(&models.UserXP{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", amount)).Error
}

func (r *ledgerRepo) AddDailyXP(ctx context.Context, tx *gorm.DB, userID uint, date string, amount int64) error {
	db := r.conn(ctx, tx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&models.DailyXP{UserID: userID, Date: date}).Error; err != nil {
		return err
	}
	return db.Model(&models.DailyXP{}).
		Where("user_id = ? AND date = ?", userID, date).
		UpdateColumn("xp_earned", gorm.Expr("xp_earned + ?", amount)).Error
}

func (r *ledgerRepo) MarkWelcomeSeen(ctx context.Context, tx *gorm.DB, userID uint) (bool, error) {
	db := r.conn(ctx, tx)
	if err := r.insertUserXP(db, userID); err != nil {
		return false, err
	}
	res := db.Model(&models.UserXP{}).
		Where("user_id = ? AND has_seen_welcome = ?", userID, false).
		Update("has_seen_welcome", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ledgerRepo) ResetWelcome(ctx context.Context, tx *gorm.DB) (int64, error) {
	res := r.conn(ctx, tx).Model(&models.UserXP{}).
		Where("has_seen_welcome = ?", true).
		Update("has_seen_welcome", false)
	return res.RowsAffected, res.Error
}

func (r *ledgerRepo) DailyXPRange(ctx context.Context, tx *gorm.DB, userID uint, from, to string) ([]models.DailyXP, error) {
	var rows []models.DailyXP
	if err := r.conn(ctx, tx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// QualifyingDays returns, per user, the dates on or before asOf whose XP meets
// threshold, newest first.
func (r *ledgerRepo) QualifyingDays(ctx context.Context, tx *gorm.DB, userIDs []uint, threshold int64, asOf string) (map[uint][]string, error) {
	out := make(map[uint][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []models.DailyXP
	if err := r.conn(ctx, tx).
		Select("user_id", "date").
		Where("user_id IN ? AND xp_earned >= ? AND date <= ?", userIDs, threshold, asOf).
		Order("user_id ASC").
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.Date)
	}
	return out, nil
}

func (r *ledgerRepo) LeaderboardRows(ctx context.Context, tx *gorm.DB) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	if err := r.conn(ctx, tx).
		Table("users").
		Select("users.id AS user_id, users.username AS username, users.full_name AS full_name, COALESCE(user_xp_totals.total_xp, 0) AS total_xp").
		Joins("LEFT JOIN user_xp_totals ON user_xp_totals.user_id = users.id AND user_xp_totals.deleted_at IS NULL").
		Where("users.is_active = ? AND users.deleted_at IS NULL", true).
		Order("total_xp DESC").
		Order("users.created_at ASC").
		Order("users.username ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
