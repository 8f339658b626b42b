package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/logger"
	"geo-attendance-backend/internal/metrics"
	"geo-attendance-backend/internal/middleware"
	"geo-attendance-backend/internal/routes"
	"geo-attendance-backend/internal/usecase"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.App.Env); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := config.OpenDB(cfg.Database, logger.L())
	if err != nil {
		logger.Error("database connection failed", zap.Error(err))
		os.Exit(1)
	}
	if err := config.Migrate(db); err != nil {
		logger.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
	})

	// Middleware global
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.App.AllowedOrigins}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.App.RateLimitMax,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(middleware.Timeout(cfg.App.RequestTimeout))

	routes.Setup(app, routes.Deps{
		DB:         db,
		JWTSecret:  cfg.Auth.JWTSecret,
		Zone:       cfg.App.Location,
		LateCutoff: cfg.App.LateCutoff,
		Clock:      usecase.SystemClock{},
		Metrics:    metrics.New(),
	})

	go func() {
		logger.Info("listening", zap.String("port", cfg.App.Port), zap.String("timezone", cfg.App.Location.String()))
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	if err := config.Close(db); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
}
