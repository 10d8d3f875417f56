package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reservebite/reservebite-api/internal/booking"
	"github.com/reservebite/reservebite-api/internal/middleware"
	"github.com/reservebite/reservebite-api/internal/model"
)

// BookingService is the slice of the booking engine the reservation
// endpoints use.  *booking.Engine satisfies it; tests substitute a
// stub.
type BookingService interface {
	TryReserve(ctx context.Context, req booking.ReserveRequest) (*model.Reservation, error)
	Confirm(ctx context.Context, id, actorID uint64, mealsOrdered bool) (*model.Reservation, error)
	Cancel(ctx context.Context, id, actorID uint64) (*model.Reservation, error)
	Get(ctx context.Context, id, actorID uint64) (*model.Reservation, error)
	ListForUser(ctx context.Context, userID uint64) ([]*model.Reservation, error)
	ListForRestaurant(ctx context.Context, restaurantID uint64, date string, actorID uint64) ([]*model.Reservation, error)
	Availability(ctx context.Context, restaurantID uint64, date, slot string) (*booking.SlotAvailability, error)
}

// ReservationHandler exposes the booking flow over HTTP.
type ReservationHandler struct {
	Booking BookingService
}

func NewReservationHandler(b BookingService) *ReservationHandler {
	return &ReservationHandler{Booking: b}
}

type reserveReq struct {
	RestaurantID uint64        `json:"restaurant_id"`
	PartySize    int           `json:"party_size"`
	Date         string        `json:"date"` // "YYYY-MM-DD"
	Time         string        `json:"time"` // "HH:MM"
	Contact      model.Contact `json:"contact"`
}

type confirmReq struct {
	MealsOrdered bool `json:"meals_ordered"`
}

// Create admits a reservation request and returns the PENDING draft.
// Capacity conflicts come back as 409 so the client can offer a
// different slot.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Booking.TryReserve(ctx, booking.ReserveRequest{
		RestaurantID: req.RestaurantID,
		UserID:       middleware.UserID(c),
		PartySize:    req.PartySize,
		Date:         req.Date,
		Time:         req.Time,
		Contact:      req.Contact,
	})
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Confirm completes a PENDING reservation, recording whether meals
// were pre-ordered.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Booking.Confirm(ctx, id, middleware.UserID(c), req.MealsOrdered)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel cancels a reservation, freeing its seats for rebooking.
// Available to the reservation's owner and the restaurant's owner.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Booking.Cancel(ctx, id, middleware.UserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Get returns one reservation visible to the caller.
func (h *ReservationHandler) Get(c echo.Context) error {
	id := pathID(c, "id")
	if id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Booking.Get(ctx, id, middleware.UserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListMine returns the caller's reservations, newest first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Booking.ListForUser(ctx, middleware.UserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Availability reports the remaining capacity of one slot.  Public
// and advisory; admission is decided when the booking commits.
func (h *ReservationHandler) Availability(c echo.Context) error {
	restaurantID := pathID(c, "id")
	if restaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	date := c.QueryParam("date")
	slot := c.QueryParam("time")
	if date == "" || slot == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and time query params required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	av, err := h.Booking.Availability(ctx, restaurantID, date, slot)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, av)
}

// ListForRestaurant returns a restaurant's reservations for one date.
// Restricted to the restaurant's owner.
func (h *ReservationHandler) ListForRestaurant(c echo.Context) error {
	restaurantID := pathID(c, "id")
	if restaurantID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query param required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Booking.ListForRestaurant(ctx, restaurantID, date, middleware.UserID(c))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
