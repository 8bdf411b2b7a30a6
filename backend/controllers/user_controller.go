package controllers

import (
	"github.com/kassslll/philosofium/backend/middleware"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Profiles *services.ProfileService
	Log      *utils.Logger
}

func NewUserController(profiles *services.ProfileService, baseLog *utils.Logger) *UserController {
	return &UserController{Profiles: profiles, Log: baseLog.With("controller", "UserController")}
}

func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	profile, err := uc.Profiles.Profile(c.UserContext(), id)
	if err != nil {
		return respondError(c, uc.Log, err)
	}
	return c.JSON(profile)
}
