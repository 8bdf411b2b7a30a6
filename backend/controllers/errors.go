package controllers

import (
	"errors"

	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto the JSON error envelope. Anything
// unexpected is logged and answered with a generic 500.
func respondError(c *fiber.Ctx, log *utils.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrLessonNotFound):
		return utils.NotFound(c, "Lesson not found")
	case errors.Is(err, services.ErrCourseNotFound):
		return utils.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrUserNotFound):
		return utils.NotFound(c, "User not found")
	}

	log.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return utils.InternalServerError(c, "Internal server error")
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
