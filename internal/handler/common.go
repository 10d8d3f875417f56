// Package handler implements the HTTP layer.  Handlers bind and
// validate request bodies, call repositories or the booking engine,
// and translate errors into status codes; no business rules live
// here.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/reservebite/reservebite-api/internal/booking"
)

// pathID parses a numeric path parameter.  Returns 0 when the value
// is missing or not a positive integer.
func pathID(c echo.Context, name string) uint64 {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// bookingError maps the booking error taxonomy onto HTTP responses.
// Validation failures are 400, missing resources 404, authorization
// 403, capacity and state collisions 409; anything unrecognized is a
// 500 with a generic message.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrInvalidPartySize),
		errors.Is(err, booking.ErrInvalidDateTime),
		errors.Is(err, booking.ErrPastDateTime),
		errors.Is(err, booking.ErrOutsideOpeningHours):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrRestaurantNotFound),
		errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrAlreadyCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking collision, please retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// repoError maps common repository errors for the owner and browse
// endpoints.
func repoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, booking.ErrRestaurantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
