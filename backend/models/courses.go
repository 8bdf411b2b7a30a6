package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title       string
	Description string
	IsPublished bool
	Lessons     []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID uint `gorm:"index;not null"`
	Title    string
	Duration string
	// TimeXP is the nominal XP value as entered by authors, e.g. "450.00".
	TimeXP        *string `gorm:"size:50"`
	VideoURL      string
	SequenceOrder int
}

// Enrollment accumulates a user's watch time in one course.
type Enrollment struct {
	gorm.Model
	UserID         uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID       uint `gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	TotalWatchTime int64 // seconds
	EnrolledAt     time.Time
	LastAccessed   time.Time
}
