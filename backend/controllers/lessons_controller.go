package controllers

import (
	"time"

	"github.com/kassslll/philosofium/backend/middleware"
	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LessonsController struct {
	Recorder *services.Recorder
	Log      *utils.Logger
}

func NewLessonsController(recorder *services.Recorder, baseLog *utils.Logger) *LessonsController {
	return &LessonsController{Recorder: recorder, Log: baseLog.With("controller", "LessonsController")}
}

type positionRequest struct {
	LastPosition *int `json:"last_position"`
}

type lessonProgressResponse struct {
	LessonID     uint       `json:"lesson_id"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	LastPosition int        `json:"last_position"`
}

func toLessonProgress(lc *models.LessonCompletion) lessonProgressResponse {
	return lessonProgressResponse{
		LessonID:     lc.LessonID,
		Completed:    lc.Completed,
		CompletedAt:  lc.CompletedAt,
		LastPosition: lc.LastWatchPosition,
	}
}

// MarkComplete godoc
// @Summary Mark a lesson complete and award its XP once
// @Tags lessons
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /video/lessons/{id}/mark_complete [post]
func (lc *LessonsController) MarkComplete(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	lessonID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var req positionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.BadRequest(c, "Cannot parse JSON")
		}
	}

	result, err := lc.Recorder.RecordCompletion(c.UserContext(), id, lessonID, req.LastPosition)
	if err != nil {
		return respondError(c, lc.Log, err)
	}

	return c.JSON(fiber.Map{
		"xp_awarded":            result.XPAwarded,
		"was_already_completed": result.WasAlreadyCompleted,
		"progress":              toLessonProgress(&result.Completion),
	})
}

func (lc *LessonsController) UpdateProgress(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	lessonID, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var req positionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if req.LastPosition == nil {
		return utils.ValidationError(c, map[string]string{"last_position": "required"})
	}

	completion, err := lc.Recorder.UpdatePosition(c.UserContext(), id, lessonID, *req.LastPosition)
	if err != nil {
		return respondError(c, lc.Log, err)
	}
	return c.JSON(toLessonProgress(completion))
}
