package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput wraps every caller-input validation failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrLessonNotFound = errors.New("lesson not found")
	ErrCourseNotFound = errors.New("course not found")
	ErrUserNotFound   = errors.New("user not found")

	// ErrCacheMiss is returned by a LeaderboardCache with nothing usable stored.
	ErrCacheMiss = errors.New("leaderboard cache miss")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
