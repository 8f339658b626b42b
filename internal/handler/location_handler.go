package handler

import (
	"strconv"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LocationHandler struct {
	locations *usecase.LocationUsecase
}

func NewLocationHandler(locations *usecase.LocationUsecase) *LocationHandler {
	return &LocationHandler{locations: locations}
}

type CreateLocationRequest struct {
	Name      string   `json:"name" validate:"required,max=255"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Radius    *float64 `json:"radius" validate:"omitempty,gt=0"`
}

type ValidateLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

func (h *LocationHandler) List(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	list, err := h.locations.List(c.UserContext(), who.OrgID)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", list)
}

func (h *LocationHandler) Get(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := locationID(c)
	if err != nil {
		return err
	}
	loc, err := h.locations.Get(c.UserContext(), who.OrgID, id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", loc)
}

func (h *LocationHandler) Create(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	var req CreateLocationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	loc, err := h.locations.Create(c.UserContext(), who.OrgID, usecase.CreateLocationInput{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Radius:    req.Radius,
	})
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, "Location created successfully", loc)
}

func (h *LocationHandler) Update(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := locationID(c)
	if err != nil {
		return err
	}
	var patch model.LocationPatch
	if err := bind(c, &patch); err != nil {
		return err
	}

	loc, err := h.locations.Update(c.UserContext(), who.OrgID, id, patch)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Location updated successfully", loc)
}

func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	id, err := locationID(c)
	if err != nil {
		return err
	}
	if err := h.locations.Delete(c.UserContext(), who.OrgID, id); err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "Location deleted successfully", nil)
}

func (h *LocationHandler) Nearby(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	lat, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("longitude"), 64)
	if errLat != nil || errLon != nil {
		return apperror.Validation("Latitude and longitude are required")
	}
	maxDistance := float64(usecase.DefaultNearbyDistance)
	if s := c.Query("max_distance"); s != "" {
		if maxDistance, err = strconv.ParseFloat(s, 64); err != nil || maxDistance <= 0 {
			return apperror.Validation("max_distance must be a positive number")
		}
	}

	list, err := h.locations.Nearby(c.UserContext(), who.OrgID, lat, lon, maxDistance)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", list)
}

func (h *LocationHandler) Validate(c *fiber.Ctx) error {
	id, err := locationID(c)
	if err != nil {
		return err
	}
	var req ValidateLocationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.locations.Validate(c.UserContext(), id, *req.Latitude, *req.Longitude)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "", res)
}

func locationID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.ErrLocationNotFound
	}
	return id, nil
}
