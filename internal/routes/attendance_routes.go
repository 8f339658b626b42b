package routes

import (
	"geo-attendance-backend/internal/handler"
	"geo-attendance-backend/internal/middleware"
	"geo-attendance-backend/internal/repository"
	"geo-attendance-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

func SetupAttendanceRoutes(router fiber.Router, deps Deps) {
	ucDeps := usecase.Deps{
		DB:         deps.DB,
		Attendance: repository.NewAttendanceRepository(deps.DB),
		Locations:  repository.NewLocationRepository(deps.DB),
		Activities: repository.NewActivityRepository(deps.DB),
		Clock:      deps.Clock,
		Zone:       deps.Zone,
		LateCutoff: deps.LateCutoff,
		Metrics:    deps.Metrics,
	}
	hdl := handler.NewAttendanceHandler(
		usecase.NewAttendanceUsecase(ucDeps),
		usecase.NewHistoryUsecase(ucDeps),
		usecase.NewSyncUsecase(ucDeps),
	)

	api := router.Group("/attendance", middleware.Auth(deps.JWTSecret))

	api.Post("/check-in", hdl.CheckIn)
	api.Post("/check-out", hdl.CheckOut)
	api.Get("/today", hdl.Today)
	api.Get("/history", hdl.History)
	api.Post("/bulk-sync", hdl.BulkSync)
	api.Get("/:id", hdl.GetByID)
}
