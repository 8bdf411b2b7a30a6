package controllers

import (
	"github.com/kassslll/philosofium/backend/middleware"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type StatsController struct {
	Stats *services.Aggregator
	Log   *utils.Logger
}

func NewStatsController(stats *services.Aggregator, baseLog *utils.Logger) *StatsController {
	return &StatsController{Stats: stats, Log: baseLog.With("controller", "StatsController")}
}

// GetDashboard godoc
// @Summary Dashboard counters for the caller
// @Tags stats
// @Produce json
// @Security ApiKeyAuth
// @Router /stats/dashboard [get]
func (sc *StatsController) GetDashboard(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	stats, err := sc.Stats.DashboardStats(c.UserContext(), id)
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return c.JSON(stats)
}

// GetCalendar godoc
// @Summary Daily XP for one month
// @Tags stats
// @Produce json
// @Param month query int false "1-12, defaults to the current month"
// @Param year query int false "defaults to the current year"
// @Security ApiKeyAuth
// @Router /stats/calendar [get]
func (sc *StatsController) GetCalendar(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	activity, err := sc.Stats.CalendarActivity(c.UserContext(), id, c.Query("month"), c.Query("year"))
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return c.JSON(activity)
}

func (sc *StatsController) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := sc.Stats.Leaderboard(c.UserContext())
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return c.JSON(fiber.Map{"leaderboard": entries})
}

func (sc *StatsController) MarkWelcomeSeen(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	changed, err := sc.Stats.MarkWelcomeSeen(c.UserContext(), id)
	if err != nil {
		return respondError(c, sc.Log, err)
	}
	return c.JSON(fiber.Map{"changed": changed})
}
