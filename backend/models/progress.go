package models

import (
	"time"

	"gorm.io/gorm"
)

// DateLayout is the storage format of DailyXP.Date.
const DateLayout = "2006-01-02"

// LessonCompletion is a user's progress on one lesson.
type LessonCompletion struct {
	gorm.Model
	UserID            uint `gorm:"uniqueIndex:idx_completion_user_lesson;not null"`
	CourseID          uint `gorm:"index;not null"`
	LessonID          uint `gorm:"uniqueIndex:idx_completion_user_lesson;not null"`
	Completed         bool `gorm:"not null"`
	CompletedAt       *time.Time
	LastWatchPosition int // seconds
}

// UserXP is the per-user lifetime XP counter.
type UserXP struct {
	gorm.Model
	UserID         uint  `gorm:"uniqueIndex;not null"`
	TotalXP        int64 `gorm:"not null"`
	HasSeenWelcome bool  `gorm:"not null"`
}

func (UserXP) TableName() string {
	return "user_xp_totals"
}

// DailyXP is the XP a user earned on one calendar day.
type DailyXP struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_daily_xp_user_date;not null"`
	Date     string `gorm:"uniqueIndex:idx_daily_xp_user_date;size:10;not null"`
	XPEarned int64  `gorm:"not null"`
}

func (DailyXP) TableName() string {
	return "daily_xp"
}

// All lists every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Lesson{},
		&Enrollment{},
		&LessonCompletion{},
		&UserXP{},
		&DailyXP{},
	}
}
