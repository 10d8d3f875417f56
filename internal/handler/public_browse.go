package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reservebite/reservebite-api/internal/model"
	"github.com/reservebite/reservebite-api/internal/repository"
)

// PublicHandler serves the unauthenticated browse endpoints: the
// restaurant directory, detail pages and menus.  Responses are
// sanitized so internal fields (owner id, active flag) never leak to
// guests.
type PublicHandler struct {
	Restaurants *repository.RestaurantRepo
	Menus       *repository.MenuRepo
}

func NewPublicHandler(r *repository.RestaurantRepo, m *repository.MenuRepo) *PublicHandler {
	return &PublicHandler{Restaurants: r, Menus: m}
}

// publicRestaurant is the guest-facing shape of a restaurant record.
type publicRestaurant struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Phone        string  `json:"phone"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image_url"`
	Timezone     string  `json:"timezone"`
	OpenTime     *string `json:"open_time,omitempty"`
	CloseTime    *string `json:"close_time,omitempty"`
	SeatCapacity *uint32 `json:"seat_capacity,omitempty"`
}

func toPublicRestaurant(r *model.Restaurant) publicRestaurant {
	return publicRestaurant{
		ID: r.ID, Name: r.Name, Address: r.Address, Phone: r.Phone,
		Description: r.Description, ImageURL: r.ImageURL, Timezone: r.Timezone,
		OpenTime: r.OpenTime, CloseTime: r.CloseTime, SeatCapacity: r.SeatCapacity,
	}
}

// ListRestaurants lists active restaurants with optional ?q= substring
// search over name and address, plus ?limit= and ?offset= paging.
func (h *PublicHandler) ListRestaurants(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Restaurants.Search(ctx, c.QueryParam("q"), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]publicRestaurant, 0, len(list))
	for _, r := range list {
		out = append(out, toPublicRestaurant(r))
	}
	return c.JSON(http.StatusOK, out)
}

// GetRestaurant returns the detail page data of one active restaurant.
func (h *PublicHandler) GetRestaurant(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rest, err := h.Restaurants.Restaurant(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toPublicRestaurant(rest))
}

// GetMenu returns a restaurant's menu grouped by category.  Only
// available dishes are shown to guests.
func (h *PublicHandler) GetMenu(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// 404 for unknown or delisted restaurants before touching the menu.
	if _, err := h.Restaurants.Restaurant(ctx, id); err != nil {
		return bookingError(c, err)
	}

	sections, err := h.Menus.ListByRestaurant(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	for i := range sections {
		visible := sections[i].Items[:0]
		for _, it := range sections[i].Items {
			if it.IsAvailable {
				visible = append(visible, it)
			}
		}
		sections[i].Items = visible
	}
	return c.JSON(http.StatusOK, sections)
}

// GetSlots returns the per-slot capacity overrides of a restaurant so
// clients can render a slot picker.
func (h *PublicHandler) GetSlots(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Restaurants.Restaurant(ctx, id); err != nil {
		return bookingError(c, err)
	}
	slots, err := h.Restaurants.ListSlots(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, slots)
}
