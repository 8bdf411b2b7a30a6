// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated private in-memory SQLite database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := utils.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateCourse(t testing.TB, db *gorm.DB, title string) *models.Course {
	t.Helper()
	course := &models.Course{Title: title, IsPublished: true}
	require.NoError(t, db.Create(course).Error)
	return course
}

// CreateLesson stores a lesson with the given raw XP value; nil means no XP.
func CreateLesson(t testing.TB, db *gorm.DB, courseID uint, title string, xp *string) *models.Lesson {
	t.Helper()
	lesson := &models.Lesson{CourseID: courseID, Title: title, TimeXP: xp}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

func SetDailyXP(t testing.TB, db *gorm.DB, userID uint, date string, xp int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.DailyXP{UserID: userID, Date: date, XPEarned: xp}).Error)
}

// Day is midnight UTC of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Str(s string) *string { return &s }
