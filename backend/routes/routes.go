package routes

import (
	"github.com/kassslll/philosofium/backend/config"
	"github.com/kassslll/philosofium/backend/controllers"
	"github.com/kassslll/philosofium/backend/middleware"
	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dependencies is everything the route table wires into controllers.
type Dependencies struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *utils.Logger
	Cache  services.LeaderboardCache
	Clock  services.Clock
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	log := deps.Logger
	cache := deps.Cache
	if cache == nil {
		cache = services.NoopLeaderboardCache{}
	}

	users := repos.NewUserRepo(deps.DB, log)
	ledger := repos.NewLedgerRepo(deps.DB, log)
	catalog := repos.NewCatalogRepo(deps.DB, log)

	streaks := services.NewStreakCalculator(ledger, deps.Cfg.StreakThreshold)
	recorder := services.NewRecorder(ledger, catalog, cache, deps.Clock, log)
	aggregator := services.NewAggregator(ledger, catalog, streaks, cache, deps.Clock, log)
	progress := services.NewProgressService(catalog, deps.Clock, log)
	profiles := services.NewProfileService(users, ledger, streaks, deps.Clock, log)

	// Auth routes
	authController := controllers.NewAuthController(users, deps.Cfg, log)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(deps.Cfg)

	// User routes
	userController := controllers.NewUserController(profiles, log)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)

	// Video routes
	lessonsController := controllers.NewLessonsController(recorder, log)
	coursesController := controllers.NewCoursesController(progress, log)
	video := app.Group("/api/video", authMiddleware)
	video.Get("/courses", coursesController.SearchCourses)
	video.Post("/lessons/:id/mark_complete", lessonsController.MarkComplete)
	video.Post("/lessons/:id/update_progress", lessonsController.UpdateProgress)
	video.Get("/courses/:id/progress", coursesController.GetCourseProgress)
	video.Post("/courses/:id/enroll", coursesController.Enroll)
	video.Post("/courses/:id/watch_time", coursesController.RecordWatchTime)

	// Stats routes
	statsController := controllers.NewStatsController(aggregator, log)
	stats := app.Group("/api/stats", authMiddleware)
	stats.Get("/dashboard", statsController.GetDashboard)
	stats.Get("/calendar", statsController.GetCalendar)
	stats.Get("/leaderboard", statsController.GetLeaderboard)
	stats.Post("/welcome_seen", statsController.MarkWelcomeSeen)
}
