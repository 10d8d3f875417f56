package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reservebite/reservebite-api/internal/middleware"
	"github.com/reservebite/reservebite-api/internal/model"
	"github.com/reservebite/reservebite-api/internal/repository"
)

// OwnerMenuHandler manages menu categories and items for the OWNER
// role.
type OwnerMenuHandler struct {
	Menus       *repository.MenuRepo
	Restaurants *repository.RestaurantRepo
}

func NewOwnerMenuHandler(m *repository.MenuRepo, r *repository.RestaurantRepo) *OwnerMenuHandler {
	return &OwnerMenuHandler{Menus: m, Restaurants: r}
}

type categoryReq struct {
	Name     string `json:"name"`
	Position uint32 `json:"position"`
}

type itemReq struct {
	CategoryID  uint64  `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  uint32  `json:"price_cents"`
	ImageURL    *string `json:"image_url"`
	IsAvailable *bool   `json:"is_available"`
}

// ListMenu returns the full menu of one of the caller's restaurants,
// unavailable items included.
func (h *OwnerMenuHandler) ListMenu(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest, err := h.Restaurants.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if rest.OwnerID != middleware.UserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	sections, err := h.Menus.ListByRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, sections)
}

// CreateCategory adds a menu category to one of the caller's
// restaurants.
func (h *OwnerMenuHandler) CreateCategory(c echo.Context) error {
	restaurantID := pathID(c, "id")
	if restaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Menus.CreateCategory(ctx, middleware.UserID(c), &model.MenuCategory{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(req.Name),
		Position:     req.Position,
	})
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// DeleteCategory removes a category and all of its items.
func (h *OwnerMenuHandler) DeleteCategory(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menus.DeleteCategory(ctx, middleware.UserID(c), id); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateItem adds a dish under one of the caller's categories.
func (h *OwnerMenuHandler) CreateItem(c echo.Context) error {
	var req itemReq
	if err := c.Bind(&req); err != nil || req.CategoryID == 0 || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category_id and name required"})
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Menus.CreateItem(ctx, middleware.UserID(c), &model.MenuItem{
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
	})
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// UpdateItem overwrites a dish's mutable fields.
func (h *OwnerMenuHandler) UpdateItem(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req itemReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Menus.UpdateItem(ctx, middleware.UserID(c), &model.MenuItem{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		IsAvailable: available,
	})
	if err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteItem removes a dish.
func (h *OwnerMenuHandler) DeleteItem(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menus.DeleteItem(ctx, middleware.UserID(c), id); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
