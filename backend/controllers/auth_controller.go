package controllers

import (
	"errors"
	"strings"

	"github.com/kassslll/philosofium/backend/config"
	"github.com/kassslll/philosofium/backend/models"
	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	Users repos.UserRepo
	Cfg   *config.Config
	Log   *utils.Logger
}

func NewAuthController(users repos.UserRepo, cfg *config.Config, baseLog *utils.Logger) *AuthController {
	return &AuthController{Users: users, Cfg: cfg, Log: baseLog.With("controller", "AuthController")}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"max=255"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"full_name": user.FullName,
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if problems := validationProblems(req); problems != nil {
		return utils.ValidationError(c, problems)
	}

	if _, err := ac.Users.GetByUsername(c.UserContext(), req.Username); err == nil {
		return utils.Conflict(c, "Username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, ac.Log, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     strings.TrimSpace(req.FullName),
		IsActive:     true,
	}
	if err := ac.Users.Create(c.UserContext(), &user); err != nil {
		ac.Log.Warn("Could not create user", "username", req.Username, "error", err)
		return utils.Conflict(c, "Could not create user")
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Username, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	ac.Log.Info("User registered", "user_id", user.ID, "username", user.Username)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  userPayload(&user),
	})
}

// Login godoc
// @Summary User login
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	user, err := ac.Users.GetByUsername(c.UserContext(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return respondError(c, ac.Log, err)
	}
	if !user.IsActive {
		return utils.Unauthorized(c, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID, user.Username, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userPayload(user),
	})
}
