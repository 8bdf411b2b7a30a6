package controllers

import (
	"github.com/kassslll/philosofium/backend/middleware"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Progress *services.ProgressService
	Log      *utils.Logger
}

func NewCoursesController(progress *services.ProgressService, baseLog *utils.Logger) *CoursesController {
	return &CoursesController{Progress: progress, Log: baseLog.With("controller", "CoursesController")}
}

// SearchCourses lists published courses, optionally filtered by ?search=.
func (cc *CoursesController) SearchCourses(c *fiber.Ctx) error {
	courses, err := cc.Progress.Catalog(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(fiber.Map{"courses": courses})
}

func (cc *CoursesController) GetCourseProgress(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	progress, err := cc.Progress.CourseProgress(c.UserContext(), id, courseID)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(progress)
}

func (cc *CoursesController) Enroll(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	enrollment, err := cc.Progress.Enroll(c.UserContext(), id, courseID)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(fiber.Map{
		"course_id":   enrollment.CourseID,
		"enrolled_at": enrollment.EnrolledAt,
	})
}

type watchTimeRequest struct {
	Seconds *int64 `json:"seconds"`
}

func (cc *CoursesController) RecordWatchTime(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var req watchTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if req.Seconds == nil {
		return utils.ValidationError(c, map[string]string{"seconds": "required"})
	}

	enrollment, err := cc.Progress.RecordWatchTime(c.UserContext(), id, courseID, *req.Seconds)
	if err != nil {
		return respondError(c, cc.Log, err)
	}
	return c.JSON(fiber.Map{
		"course_id":        enrollment.CourseID,
		"total_watch_time": enrollment.TotalWatchTime,
		"last_accessed":    enrollment.LastAccessed,
	})
}
