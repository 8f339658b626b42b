package routes

import (
	"geo-attendance-backend/internal/handler"
	"geo-attendance-backend/internal/middleware"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"
	"geo-attendance-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

func SetupLocationRoutes(router fiber.Router, deps Deps) {
	hdl := handler.NewLocationHandler(usecase.NewLocationUsecase(repository.NewLocationRepository(deps.DB)))

	api := router.Group("/locations", middleware.Auth(deps.JWTSecret))

	api.Get("/", hdl.List)
	api.Get("/nearby", hdl.Nearby) // before /:id
	api.Get("/:id", hdl.Get)
	api.Post("/:id/validate", hdl.Validate)

	// Admin and Manager
	api.Post("/", middleware.Role(model.RoleAdmin, model.RoleManager), hdl.Create)
	api.Put("/:id", middleware.Role(model.RoleAdmin, model.RoleManager), hdl.Update)
	// Admin only
	api.Delete("/:id", middleware.Role(model.RoleAdmin), hdl.Delete)
}
