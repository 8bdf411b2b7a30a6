package repos

import (
	"context"
	"strings"
	"time"

	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionDetail is a lesson completion joined to its lesson title.
type CompletionDetail struct {
	ID                uint
	LessonID          uint
	LessonTitle       string
	Completed         bool
	CompletedAt       *time.Time
	LastWatchPosition int
}

// CourseSummary is a published course with its lesson count.
type CourseSummary struct {
	ID          uint
	Title       string
	Description string
	LessonCount int64
}

// CatalogRepo reads courses and lessons and tracks enrollments.
type CatalogRepo interface {
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetLesson(ctx context.Context, id uint) (*models.Lesson, error)
	ListCourses(ctx context.Context, search string) ([]CourseSummary, error)
	CountLessons(ctx context.Context) (int64, error)
	CountLessonsInCourse(ctx context.Context, courseID uint) (int64, error)
	CountCompleted(ctx context.Context, userID uint) (int64, error)
	CompletionsInCourse(ctx context.Context, userID, courseID uint) ([]CompletionDetail, error)

	EnsureEnrollment(ctx context.Context, tx *gorm.DB, userID, courseID uint, at time.Time) (*models.Enrollment, error)
	AddWatchTime(ctx context.Context, tx *gorm.DB, userID, courseID uint, seconds int64, at time.Time) error
	WatchTimeSeconds(ctx context.Context, userID uint) (int64, error)
}

type catalogRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *utils.Logger) CatalogRepo {
	return &catalogRepo{db: db, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *catalogRepo) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *catalogRepo) GetLesson(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListCourses returns published courses, newest first. search matches title or
// description case-insensitively.
func (r *catalogRepo) ListCourses(ctx context.Context, search string) ([]CourseSummary, error) {
	query := r.db.WithContext(ctx).
		Table("courses").
		Select("courses.id AS id, courses.title AS title, courses.description AS description, " +
			"(SELECT COUNT(*) FROM lessons WHERE lessons.course_id = courses.id AND lessons.deleted_at IS NULL) AS lesson_count").
		Where("courses.is_published = ? AND courses.deleted_at IS NULL", true)

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(courses.title) LIKE ? OR LOWER(courses.description) LIKE ?", pattern, pattern)
	}

	var rows []CourseSummary
	err := query.Order("courses.created_at DESC").Order("courses.id DESC").Scan(&rows).Error
	return rows, err
}

func (r *catalogRepo) CountLessons(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).Count(&n).Error
	return n, err
}

func (r *catalogRepo) CountLessonsInCourse(ctx context.Context, courseID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&n).Error
	return n, err
}

func (r *catalogRepo) CountCompleted(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.LessonCompletion{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&n).Error
	return n, err
}

func (r *catalogRepo) CompletionsInCourse(ctx context.Context, userID, courseID uint) ([]CompletionDetail, error) {
	var rows []CompletionDetail
	err := r.db.WithContext(ctx).
		Table("lesson_completions").
		Select("lesson_completions.id AS id, lesson_completions.lesson_id AS lesson_id, lessons.title AS lesson_title, " +
			"lesson_completions.completed AS completed, lesson_completions.completed_at AS completed_at, " +
			"lesson_completions.last_watch_position AS last_watch_position").
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id AND lessons.deleted_at IS NULL").
		Where("lesson_completions.user_id = ? AND lesson_completions.course_id = ? AND lesson_completions.deleted_at IS NULL", userID, courseID).
		Order("lessons.sequence_order ASC").
		Order("lessons.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *catalogRepo) EnsureEnrollment(ctx context.Context, tx *gorm.DB, userID, courseID uint, at time.Time) (*models.Enrollment, error) {
	db := r.conn(ctx, tx)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&models.Enrollment{
		UserID:       userID,
		CourseID:     courseID,
		EnrolledAt:   at,
		LastAccessed: at,
	}).Error; err != nil {
		return nil, err
	}

	var out models.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *catalogRepo) AddWatchTime(ctx context.Context, tx *gorm.DB, userID, courseID uint, seconds int64, at time.Time) error {
	db := r.conn(ctx, tx)
	if _, err := r.EnsureEnrollment(ctx, db, userID, courseID, at); err != nil {
		return err
	}
	return db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"total_watch_time": gorm.Expr("total_watch_time + ?", seconds),
			"last_accessed":    at,
		}).Error
}

func (r *catalogRepo) WatchTimeSeconds(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Select("COALESCE(SUM(total_watch_time), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}
