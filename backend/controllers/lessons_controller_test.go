package controllers_test

import (
	"fmt"
	"testing"

	"github.com/kassslll/philosofium/backend/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkComplete(t *testing.T) {
	ta := newTestApp(t)
	user := testutil.CreateUser(t, ta.db, "alice")
	token := ta.token(t, user)
	course := testutil.CreateCourse(t, ta.db, "Logic")
	lesson := testutil.CreateLesson(t, ta.db, course.ID, "Intro", testutil.Str("450.00"))
	path := fmt.Sprintf("/api/video/lessons/%d/mark_complete", lesson.ID)

	status, _ := ta.do(t, "POST", path, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := ta.do(t, "POST", path, token, map[string]int{"last_position": 600})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, float64(450), body["xp_awarded"])
	assert.Equal(t, false, body["was_already_completed"])
	progress := body["progress"].(map[string]interface{})
	assert.Equal(t, true, progress["completed"])
	assert.Equal(t, float64(600), progress["last_position"])
	assert.NotNil(t, progress["completed_at"])

	// No body at all is fine too.
	status, body = ta.do(t, "POST", path, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["xp_awarded"])
	assert.Equal(t, true, body["was_already_completed"])

	status, body = ta.do(t, "GET", "/api/stats/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(450), body["total_xp"])
	assert.Equal(t, float64(1), body["streak_days"])
	assert.Equal(t, float64(100), body["progress"])
	assert.Equal(t, float64(1), body["achievements"])
}

func TestMarkComplete_Errors(t *testing.T) {
	ta := newTestApp(t)
	user := testutil.CreateUser(t, ta.db, "alice")
	token := ta.token(t, user)
	course := testutil.CreateCourse(t, ta.db, "Logic")
	lesson := testutil.CreateLesson(t, ta.db, course.ID, "Intro", testutil.Str("10"))

	status, _ := ta.do(t, "POST", "/api/video/lessons/abc/mark_complete", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := ta.do(t, "POST", "/api/video/lessons/999/mark_complete", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Lesson not found", body["message"])

	path := fmt.Sprintf("/api/video/lessons/%d/mark_complete", lesson.ID)
	status, _ = ta.do(t, "POST", path, token, map[string]int{"last_position": -5})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpdateProgress(t *testing.T) {
	ta := newTestApp(t)
	user := testutil.CreateUser(t, ta.db, "alice")
	token := ta.token(t, user)
	course := testutil.CreateCourse(t, ta.db, "Logic")
	lesson := testutil.CreateLesson(t, ta.db, course.ID, "Intro", testutil.Str("10"))
	path := fmt.Sprintf("/api/video/lessons/%d/update_progress", lesson.ID)

	status, body := ta.do(t, "POST", path, token, map[string]int{"last_position": 75})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, float64(75), body["last_position"])
	assert.Equal(t, false, body["completed"])

	status, _ = ta.do(t, "POST", path, token, map[string]string{})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}
