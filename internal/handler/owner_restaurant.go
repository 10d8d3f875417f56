package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reservebite/reservebite-api/internal/middleware"
	"github.com/reservebite/reservebite-api/internal/model"
	"github.com/reservebite/reservebite-api/internal/repository"
)

// OwnerRestaurantHandler covers restaurant management for the OWNER
// role: CRUD on restaurants and their per-slot capacity overrides.
type OwnerRestaurantHandler struct {
	Restaurants *repository.RestaurantRepo
}

func NewOwnerRestaurantHandler(r *repository.RestaurantRepo) *OwnerRestaurantHandler {
	return &OwnerRestaurantHandler{Restaurants: r}
}

type restaurantReq struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Phone        string  `json:"phone"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
	Timezone     string  `json:"timezone"`
	OpenTime     *string `json:"open_time"`
	CloseTime    *string `json:"close_time"`
	SeatCapacity *uint32 `json:"seat_capacity"`
	IsActive     *bool   `json:"is_active"`
}

func (req *restaurantReq) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name required"
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return "invalid timezone"
		}
	}
	for _, t := range []*string{req.OpenTime, req.CloseTime} {
		if t == nil {
			continue
		}
		if _, err := time.Parse("15:04", *t); err != nil {
			return "open_time/close_time must be HH:MM"
		}
	}
	if req.OpenTime != nil && req.CloseTime != nil && *req.CloseTime <= *req.OpenTime {
		return "close_time must be after open_time"
	}
	return ""
}

// canonClock reformats an "HH:MM" string so single-digit hours like
// "9:00" are stored zero-padded, matching the engine's bucket keys.
// Unparseable values pass through; validate() rejects them first.
func canonClock(t *string) *string {
	if t == nil {
		return nil
	}
	parsed, err := time.Parse("15:04", *t)
	if err != nil {
		return t
	}
	v := parsed.Format("15:04")
	return &v
}

func (req *restaurantReq) toModel(ownerID uint64) *model.Restaurant {
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &model.Restaurant{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(req.Name),
		Address:      strings.TrimSpace(req.Address),
		Phone:        strings.TrimSpace(req.Phone),
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Timezone:     tz,
		OpenTime:     canonClock(req.OpenTime),
		CloseTime:    canonClock(req.CloseTime),
		SeatCapacity: req.SeatCapacity,
		IsActive:     active,
	}
}

// List returns all of the caller's restaurants, including delisted
// ones.
func (h *OwnerRestaurantHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Restaurants.ListByOwner(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// Create registers a new restaurant for the caller.
func (h *OwnerRestaurantHandler) Create(c echo.Context) error {
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest, err := h.Restaurants.Create(ctx, req.toModel(middleware.UserID(c)))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, rest)
}

// Update overwrites a restaurant's mutable fields.
func (h *OwnerRestaurantHandler) Update(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req restaurantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ownerID := middleware.UserID(c)
	rest := req.toModel(ownerID)
	rest.ID = id
	updated, err := h.Restaurants.Update(ctx, ownerID, rest)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a restaurant.  Restaurants with open reservations
// are protected: the repository reports ErrConflict, returned to the
// client as 409 so data behind upcoming bookings is never lost.
func (h *OwnerRestaurantHandler) Delete(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Restaurants.Delete(ctx, middleware.UserID(c), id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "restaurant has open reservations"})
		}
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type slotReq struct {
	SlotTime string `json:"slot_time"` // "HH:MM"
	Capacity uint32 `json:"capacity"`
}

// UpsertSlot creates or replaces a per-slot capacity override.  The
// override applies to future admission checks only; existing
// reservations are never revoked by a capacity change.
func (h *OwnerRestaurantHandler) UpsertSlot(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	clock, err := time.Parse("15:04", req.SlotTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_time must be HH:MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Restaurants.UpsertSlot(ctx, middleware.UserID(c), id, clock.Format("15:04"), req.Capacity); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteSlot removes a per-slot override.
func (h *OwnerRestaurantHandler) DeleteSlot(c echo.Context) error {
	id := pathID(c, "id")
	slot := c.QueryParam("time")
	if id == 0 || slot == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant id and time required"})
	}
	clock, err := time.Parse("15:04", slot)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Restaurants.DeleteSlot(ctx, middleware.UserID(c), id, clock.Format("15:04")); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
