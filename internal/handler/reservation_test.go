package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservebite/reservebite-api/internal/booking"
	"github.com/reservebite/reservebite-api/internal/middleware"
	"github.com/reservebite/reservebite-api/internal/model"
)

// stubBooking lets each test script the engine's behavior per call.
type stubBooking struct {
	tryReserve        func(booking.ReserveRequest) (*model.Reservation, error)
	confirm           func(id, actorID uint64, meals bool) (*model.Reservation, error)
	cancel            func(id, actorID uint64) (*model.Reservation, error)
	get               func(id, actorID uint64) (*model.Reservation, error)
	listForUser       func(userID uint64) ([]*model.Reservation, error)
	listForRestaurant func(restaurantID uint64, date string, actorID uint64) ([]*model.Reservation, error)
	availability      func(restaurantID uint64, date, slot string) (*booking.SlotAvailability, error)
}

func (s *stubBooking) TryReserve(_ context.Context, req booking.ReserveRequest) (*model.Reservation, error) {
	return s.tryReserve(req)
}
func (s *stubBooking) Confirm(_ context.Context, id, actorID uint64, meals bool) (*model.Reservation, error) {
	return s.confirm(id, actorID, meals)
}
func (s *stubBooking) Cancel(_ context.Context, id, actorID uint64) (*model.Reservation, error) {
	return s.cancel(id, actorID)
}
func (s *stubBooking) Get(_ context.Context, id, actorID uint64) (*model.Reservation, error) {
	return s.get(id, actorID)
}
func (s *stubBooking) ListForUser(_ context.Context, userID uint64) ([]*model.Reservation, error) {
	return s.listForUser(userID)
}
func (s *stubBooking) ListForRestaurant(_ context.Context, restaurantID uint64, date string, actorID uint64) ([]*model.Reservation, error) {
	return s.listForRestaurant(restaurantID, date, actorID)
}
func (s *stubBooking) Availability(_ context.Context, restaurantID uint64, date, slot string) (*booking.SlotAvailability, error) {
	return s.availability(restaurantID, date, slot)
}

func newContext(t *testing.T, method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxRole, middleware.RoleCustomer)
	}
	return c, rec
}

func TestCreateReservation(t *testing.T) {
	stub := &stubBooking{
		tryReserve: func(req booking.ReserveRequest) (*model.Reservation, error) {
			assert.Equal(t, uint64(7), req.UserID)
			assert.Equal(t, uint64(3), req.RestaurantID)
			assert.Equal(t, 4, req.PartySize)
			return &model.Reservation{
				ID: 101, RestaurantID: req.RestaurantID, UserID: req.UserID,
				PartySize: 4, Date: req.Date, SlotTime: req.Time,
				Status: model.StatusPending,
			}, nil
		},
	}
	h := NewReservationHandler(stub)

	body := `{"restaurant_id":3,"party_size":4,"date":"2026-03-02","time":"19:00"}`
	c, rec := newContext(t, http.MethodPost, "/v1/reservations", body, 7)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var res model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, uint64(101), res.ID)
	assert.Equal(t, model.StatusPending, res.Status)
}

func TestCreateReservationErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid party size", booking.ErrInvalidPartySize, http.StatusBadRequest},
		{"bad date", booking.ErrInvalidDateTime, http.StatusBadRequest},
		{"past", booking.ErrPastDateTime, http.StatusBadRequest},
		{"outside hours", booking.ErrOutsideOpeningHours, http.StatusBadRequest},
		{"unknown restaurant", booking.ErrRestaurantNotFound, http.StatusNotFound},
		{"full slot", booking.ErrCapacityExceeded, http.StatusConflict},
		{"persistent conflict", booking.ErrConflict, http.StatusConflict},
		{"storage down", booking.ErrPersistence, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubBooking{
				tryReserve: func(booking.ReserveRequest) (*model.Reservation, error) {
					return nil, tc.err
				},
			}
			h := NewReservationHandler(stub)
			body := `{"restaurant_id":1,"party_size":2,"date":"2026-03-02","time":"19:00"}`
			c, rec := newContext(t, http.MethodPost, "/v1/reservations", body, 7)
			require.NoError(t, h.Create(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestConfirmReservation(t *testing.T) {
	stub := &stubBooking{
		confirm: func(id, actorID uint64, meals bool) (*model.Reservation, error) {
			assert.Equal(t, uint64(101), id)
			assert.Equal(t, uint64(7), actorID)
			assert.True(t, meals)
			return &model.Reservation{ID: id, UserID: actorID, Status: model.StatusConfirmed, MealsOrdered: true}, nil
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/v1/reservations/101/confirm", `{"meals_ordered":true}`, 7)
	c.SetParamNames("id")
	c.SetParamValues("101")
	require.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var res model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.True(t, res.MealsOrdered)
}

func TestConfirmForbiddenMapsTo403(t *testing.T) {
	stub := &stubBooking{
		confirm: func(id, actorID uint64, meals bool) (*model.Reservation, error) {
			return nil, booking.ErrForbidden
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newContext(t, http.MethodPost, "/v1/reservations/101/confirm", `{}`, 8)
	c.SetParamNames("id")
	c.SetParamValues("101")
	require.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCancelReservation(t *testing.T) {
	stub := &stubBooking{
		cancel: func(id, actorID uint64) (*model.Reservation, error) {
			return &model.Reservation{ID: id, UserID: actorID, Status: model.StatusCancelled}, nil
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newContext(t, http.MethodDelete, "/v1/reservations/101", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("101")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelAlreadyCancelledMapsTo409(t *testing.T) {
	stub := &stubBooking{
		cancel: func(id, actorID uint64) (*model.Reservation, error) {
			return nil, booking.ErrAlreadyCancelled
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newContext(t, http.MethodDelete, "/v1/reservations/101", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("101")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetReservationNotFound(t *testing.T) {
	stub := &stubBooking{
		get: func(id, actorID uint64) (*model.Reservation, error) {
			return nil, booking.ErrNotFound
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newContext(t, http.MethodGet, "/v1/reservations/999", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidReservationIDRejected(t *testing.T) {
	h := NewReservationHandler(&stubBooking{})

	c, rec := newContext(t, http.MethodGet, "/v1/reservations/abc", "", 7)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailability(t *testing.T) {
	stub := &stubBooking{
		availability: func(restaurantID uint64, date, slot string) (*booking.SlotAvailability, error) {
			assert.Equal(t, uint64(3), restaurantID)
			assert.Equal(t, "2026-03-02", date)
			assert.Equal(t, "19:00", slot)
			return &booking.SlotAvailability{Bounded: true, Capacity: 10, Booked: 6, Remaining: 4}, nil
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newContext(t, http.MethodGet, "/v1/restaurants/3/availability?date=2026-03-02&time=19:00", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Availability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var av booking.SlotAvailability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &av))
	assert.Equal(t, uint32(4), av.Remaining)
}

func TestAvailabilityRequiresParams(t *testing.T) {
	h := NewReservationHandler(&stubBooking{})

	c, rec := newContext(t, http.MethodGet, "/v1/restaurants/3/availability", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Availability(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMine(t *testing.T) {
	stub := &stubBooking{
		listForUser: func(userID uint64) ([]*model.Reservation, error) {
			assert.Equal(t, uint64(7), userID)
			return []*model.Reservation{{ID: 1, UserID: userID}}, nil
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newContext(t, http.MethodGet, "/v1/reservations", "", 7)
	require.NoError(t, h.ListMine(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var list []*model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestListForRestaurantRequiresDate(t *testing.T) {
	h := NewReservationHandler(&stubBooking{})

	c, rec := newContext(t, http.MethodGet, "/v1/owner/restaurants/3/reservations", "", 9)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.ListForRestaurant(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
