package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kassslll/philosofium/backend/cache"
	"github.com/kassslll/philosofium/backend/config"
	"github.com/kassslll/philosofium/backend/middleware"
	"github.com/kassslll/philosofium/backend/repos"
	"github.com/kassslll/philosofium/backend/routes"
	"github.com/kassslll/philosofium/backend/services"
	"github.com/kassslll/philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	root := &cobra.Command{
		Use:           "learning-platform",
		Short:         "Learning platform backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(_ *config.Config, logger *utils.Logger, db *gorm.DB) error {
				if err := utils.Migrate(db); err != nil {
					return err
				}
				logger.Info("Schema migrated")
				return nil
			})
		},
	}, &cobra.Command{
		Use:   "reset-welcome",
		Short: "Show the welcome screen to every user again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(_ *config.Config, logger *utils.Logger, db *gorm.DB) error {
				n, err := repos.NewLedgerRepo(db, logger).ResetWelcome(cmd.Context(), nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset welcome flag for %d users\n", n)
				return nil
			})
		},
	})
	return root
}

func withDB(fn func(cfg *config.Config, logger *utils.Logger, db *gorm.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := utils.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(cfg, logger, db)
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withDB(func(cfg *config.Config, logger *utils.Logger, db *gorm.DB) error {
		if err := utils.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		var leaderboardCache services.LeaderboardCache = services.NoopLeaderboardCache{}
		if cfg.RedisAddr != "" {
			client, err := cache.NewClient(ctx, cache.Config{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			if err != nil {
				logger.Warn("Redis unavailable, leaderboard cache disabled", "addr", cfg.RedisAddr, "error", err)
			} else {
				defer client.Close()
				leaderboardCache = cache.NewLeaderboardCache(client, cfg.LeaderboardCacheTTL)
				logger.Info("Leaderboard cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.LeaderboardCacheTTL.String())
			}
		}

		app := fiber.New(fiber.Config{AppName: "learning-platform"})
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderRequestID,
		}))
		app.Use(middleware.LoggingMiddleware(logger))

		routes.SetupRoutes(app, routes.Dependencies{
			DB:     db,
			Cfg:    cfg,
			Logger: logger,
			Cache:  leaderboardCache,
			Clock:  services.NewClock(cfg.Location()),
		})

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting server", "port", cfg.ServerPort, "db_driver", cfg.DBDriver)
			errCh <- app.Listen(":" + cfg.ServerPort)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			logger.Info("Shutting down")
			return app.ShutdownWithTimeout(10 * time.Second)
		}
	})
}
