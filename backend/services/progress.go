package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/utils"

	"gorm.io/gorm"
)

type LessonProgress struct {
	LessonID          uint       `json:"lesson_id"`
	LessonTitle       string     `json:"lesson_title"`
	Completed         bool       `json:"completed"`
	CompletedAt       *time.Time `json:"completed_at"`
	LastWatchPosition int        `json:"last_position"`
}

type CourseProgress struct {
	CourseID           uint             `json:"course_id"`
	CourseTitle        string           `json:"course_title"`
	TotalLessons       int64            `json:"total_lessons"`
	CompletedLessons   int64            `json:"completed_lessons"`
	ProgressPercentage int              `json:"progress_percentage"`
	ProgressDetails    []LessonProgress `json:"progress_details"`
}

// ProgressService covers per-course progress and enrollment watch time.
// Watch time feeds learning hours only; it never affects XP.
type ProgressService struct {
	catalog repos.CatalogRepo
	clock   Clock
	log     *utils.Logger
}

func NewProgressService(catalog repos.CatalogRepo, clock Clock, baseLog *utils.Logger) *ProgressService {
	return &ProgressService{
		catalog: catalog,
		clock:   clock,
		log:     baseLog.With("service", "ProgressService"),
	}
}

func (s *ProgressService) course(ctx context.Context, courseID uint) (*models.Course, error) {
	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("load course %d: %w", courseID, err)
	}
	return course, nil
}

func (s *ProgressService) CourseProgress(ctx context.Context, id Identity, courseID uint) (*CourseProgress, error) {
	course, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	total, err := s.catalog.CountLessonsInCourse(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	rows, err := s.catalog.CompletionsInCourse(ctx, id.UserID, course.ID)
	if err != nil {
		return nil, err
	}

	var completed int64
	details := make([]LessonProgress, 0, len(rows))
	for _, row := range rows {
		if row.Completed {
			completed++
		}
		details = append(details, LessonProgress{
			LessonID:          row.LessonID,
			LessonTitle:       row.LessonTitle,
			Completed:         row.Completed,
			CompletedAt:       row.CompletedAt,
			LastWatchPosition: row.LastWatchPosition,
		})
	}

	return &CourseProgress{
		CourseID:           course.ID,
		CourseTitle:        course.Title,
		TotalLessons:       total,
		CompletedLessons:   completed,
		ProgressPercentage: percent(completed, total),
		ProgressDetails:    details,
	}, nil
}

// Enroll is idempotent.
func (s *ProgressService) Enroll(ctx context.Context, id Identity, courseID uint) (*models.Enrollment, error) {
	if _, err := s.course(ctx, courseID); err != nil {
		return nil, err
	}
	return s.catalog.EnsureEnrollment(ctx, nil, id.UserID, courseID, s.clock.Now())
}

// RecordWatchTime adds seconds to the caller's enrollment, enrolling first if needed.
func (s *ProgressService) RecordWatchTime(ctx context.Context, id Identity, courseID uint, seconds int64) (*models.Enrollment, error) {
	if seconds < 0 {
		return nil, invalidInput("seconds must not be negative, got %d", seconds)
	}
	if _, err := s.course(ctx, courseID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.catalog.AddWatchTime(ctx, nil, id.UserID, courseID, seconds, now); err != nil {
		return nil, err
	}
	s.log.Debug("Watch time recorded", "user_id", id.UserID, "course_id", courseID, "seconds", seconds)
	return s.catalog.EnsureEnrollment(ctx, nil, id.UserID, courseID, now)
}

type CourseListItem struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Lessons     int64  `json:"lessons"`
}

// Catalog lists published courses matching search.
func (s *ProgressService) Catalog(ctx context.Context, search string) ([]CourseListItem, error) {
	rows, err := s.catalog.ListCourses(ctx, search)
	if err != nil {
		return nil, err
	}
	items := make([]CourseListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, CourseListItem{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Lessons:     row.LessonCount,
		})
	}
	return items, nil
}
