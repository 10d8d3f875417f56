package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/reservebite/reservebite-api/internal/model"
)

// Catalog is the read-only view of the restaurant catalog the engine
// consumes.  No booking logic lives behind it; it is pure lookup.
type Catalog interface {
	// Restaurant resolves a restaurant id.  It returns
	// ErrRestaurantNotFound when the id does not exist or the
	// restaurant is inactive.
	Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error)

	// GetByID resolves a restaurant regardless of its active flag,
	// returning ErrRestaurantNotFound for unknown ids.  Ownership
	// checks use this so owners keep control of delisted venues.
	GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)

	// Capacity resolves the seat limit for one service time of a
	// restaurant.  A per-slot override wins over the restaurant-wide
	// seat count; a restaurant with neither is unbounded.
	Capacity(ctx context.Context, restaurantID uint64, slot string) (model.Capacity, error)
}

// Ledger is the durable store of reservations.  Commit must execute
// the capacity check and the dual write (reservation row plus user
// back-reference) as one atomic, serializable unit per bucket: either
// both sides become visible or neither does.
type Ledger interface {
	// Commit lazily cancels PENDING rows in the draft's bucket created
	// at or before staleBefore, re-reads the bucket's party-size sum
	// under a write lock, and inserts the draft together with the
	// user's back-reference when the sum plus the draft still fits the
	// limit.  It returns the new reservation id, ErrCapacityExceeded
	// when the bucket is full, or ErrConflict when a concurrent writer
	// forced the transaction to abort (retryable).
	Commit(ctx context.Context, draft *model.Reservation, limit model.Capacity, staleBefore time.Time) (uint64, error)

	// Confirm moves a PENDING reservation to CONFIRMED and records the
	// meal-order choice.  PENDING rows created at or before staleBefore
	// are expired instead and reported as ErrAlreadyCancelled.
	// Confirming an already CONFIRMED reservation is a no-op returning
	// the stored row.
	Confirm(ctx context.Context, id uint64, mealsOrdered bool, staleBefore time.Time) (*model.Reservation, error)

	// Cancel moves a reservation to CANCELLED and removes the user's
	// back-reference in the same transaction.  It returns ErrNotFound
	// for unknown ids and ErrAlreadyCancelled when the row is already
	// cancelled; capacity is freed exactly once.
	Cancel(ctx context.Context, id uint64) (*model.Reservation, error)

	// Get returns a reservation by id or ErrNotFound.
	Get(ctx context.Context, id uint64) (*model.Reservation, error)

	// PartySum returns the current PENDING+CONFIRMED party-size sum of
	// a bucket without taking locks.  Used for pre-flight checks and
	// the public availability endpoint only; admission always re-reads
	// inside the Commit transaction.
	PartySum(ctx context.Context, b model.Bucket) (uint32, error)

	// ListByUser returns the user's reservations, newest first.
	ListByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error)

	// ListByRestaurantDate returns a restaurant's reservations for one
	// calendar date, ordered by slot time.
	ListByRestaurantDate(ctx context.Context, restaurantID uint64, date string) ([]*model.Reservation, error)
}

// Directory supplies contact data for draft pre-fill.  It is consumed
// read-only; the user-side back-reference is maintained by the ledger
// inside the commit transaction.
type Directory interface {
	Resolve(ctx context.Context, userID uint64) (model.Contact, error)
}

// Events receives status-transition notifications after a successful
// commit.  Publish failures must not fail the booking call; the engine
// logs and moves on.
type Events interface {
	ReservationConfirmed(ctx context.Context, res *model.Reservation) error
	ReservationCancelled(ctx context.Context, res *model.Reservation) error
}

const (
	defaultMaxAttempts = 3
	defaultPendingTTL  = 15 * time.Minute
)

// Engine decides admission for reservation requests and drives the
// ledger.  Admission is strictly first-committed-wins: a request that
// loses the race on a bucket is rejected with ErrCapacityExceeded and
// the caller may retry against the updated bucket state.
type Engine struct {
	catalog   Catalog
	ledger    Ledger
	directory Directory
	events    Events

	maxAttempts int           // bounded retries on ErrConflict
	pendingTTL  time.Duration // PENDING drafts older than this are expired
	now         func() time.Time
}

// NewEngine constructs an Engine.  maxAttempts and pendingTTL fall back
// to defaults when non-positive.  events may be nil to disable
// publishing (e.g. in tests).
func NewEngine(catalog Catalog, ledger Ledger, directory Directory, events Events, maxAttempts int, pendingTTL time.Duration) *Engine {
	if catalog == nil || ledger == nil || directory == nil {
		panic("nil dependency passed to NewEngine")
	}
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	if pendingTTL <= 0 {
		pendingTTL = defaultPendingTTL
	}
	return &Engine{
		catalog:     catalog,
		ledger:      ledger,
		directory:   directory,
		events:      events,
		maxAttempts: maxAttempts,
		pendingTTL:  pendingTTL,
		now:         time.Now,
	}
}

// ReserveRequest carries everything TryReserve needs.  The acting user
// is always explicit; the engine never reads ambient session state.
// Contact may be left empty, in which case it is pre-filled from the
// user directory.
type ReserveRequest struct {
	RestaurantID uint64
	UserID       uint64
	PartySize    int
	Date         string // "YYYY-MM-DD"
	Time         string // "HH:MM"
	Contact      model.Contact
}

// TryReserve validates the request, checks capacity and commits a
// PENDING draft.  Validation errors are returned before any
// transaction begins.  All returned errors are terminal for this call;
// the caller re-invokes TryReserve to retry a booking attempt.
func (e *Engine) TryReserve(ctx context.Context, req ReserveRequest) (*model.Reservation, error) {
	if req.PartySize < 1 {
		return nil, ErrInvalidPartySize
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	clock, err := time.Parse("15:04", req.Time)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	// The hour layout accepts single-digit input, so "9:00" and "09:00"
	// would otherwise form two buckets for the same slot and miss slot
	// overrides.  Reformatting pins one canonical spelling.
	req.Date = day.Format("2006-01-02")
	req.Time = clock.Format("15:04")

	rest, err := e.catalog.Restaurant(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	loc := restaurantLocation(rest)
	moment, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, loc)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	if moment.Before(e.now().In(loc)) {
		return nil, ErrPastDateTime
	}
	if rest.OpenTime != nil && req.Time < *rest.OpenTime {
		return nil, ErrOutsideOpeningHours
	}
	if rest.CloseTime != nil && req.Time > *rest.CloseTime {
		return nil, ErrOutsideOpeningHours
	}

	capacity, err := e.catalog.Capacity(ctx, req.RestaurantID, req.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	bucket := model.Bucket{RestaurantID: req.RestaurantID, Date: req.Date, SlotTime: req.Time}

	// A bucket that is already full is rejected up front, without a
	// persistence attempt.  The authoritative check still happens
	// inside the commit transaction.
	if capacity.Bounded {
		sum, err := e.ledger.PartySum(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if sum >= capacity.Seats {
			return nil, ErrCapacityExceeded
		}
	}

	contact := req.Contact
	if contact == (model.Contact{}) {
		contact, err = e.directory.Resolve(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	draft := &model.Reservation{
		RestaurantID: req.RestaurantID,
		UserID:       req.UserID,
		PartySize:    uint32(req.PartySize),
		Date:         req.Date,
		SlotTime:     req.Time,
		Status:       model.StatusPending,
		Contact:      contact,
	}

	staleBefore := e.now().UTC().Add(-e.pendingTTL)
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		id, err := e.ledger.Commit(ctx, draft, capacity, staleBefore)
		switch {
		case err == nil:
			draft.ID = id
			return draft, nil
		case errors.Is(err, ErrConflict):
			if attempt == e.maxAttempts {
				return nil, ErrConflict
			}
		case errors.Is(err, ErrCapacityExceeded):
			return nil, ErrCapacityExceeded
		default:
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}
	return nil, ErrConflict
}

// Confirm completes the booking flow of a PENDING reservation on
// behalf of its owner, recording whether meals were pre-ordered.
func (e *Engine) Confirm(ctx context.Context, id, actorID uint64, mealsOrdered bool) (*model.Reservation, error) {
	res, err := e.ledger.Get(ctx, id)
	if err != nil {
		return nil, ledgerErr(err)
	}
	if res.UserID != actorID {
		return nil, ErrForbidden
	}
	out, err := e.ledger.Confirm(ctx, id, mealsOrdered, e.now().UTC().Add(-e.pendingTTL))
	if err != nil {
		return nil, ledgerErr(err)
	}
	e.publishConfirmed(ctx, out)
	return out, nil
}

// Cancel moves a reservation to CANCELLED on behalf of its owner or of
// the restaurant's owner.  Capacity in the bucket is freed immediately
// for subsequent TryReserve calls.
func (e *Engine) Cancel(ctx context.Context, id, actorID uint64) (*model.Reservation, error) {
	res, err := e.ledger.Get(ctx, id)
	if err != nil {
		return nil, ledgerErr(err)
	}
	if err := e.authorize(ctx, res, actorID); err != nil {
		return nil, err
	}
	out, err := e.ledger.Cancel(ctx, id)
	if err != nil {
		return nil, ledgerErr(err)
	}
	e.publishCancelled(ctx, out)
	return out, nil
}

// Get returns a reservation visible to the acting user (its owner or
// the owner of its restaurant).
func (e *Engine) Get(ctx context.Context, id, actorID uint64) (*model.Reservation, error) {
	res, err := e.ledger.Get(ctx, id)
	if err != nil {
		return nil, ledgerErr(err)
	}
	if err := e.authorize(ctx, res, actorID); err != nil {
		return nil, err
	}
	return res, nil
}

// ListForUser returns the acting user's reservations, newest first.
func (e *Engine) ListForUser(ctx context.Context, userID uint64) ([]*model.Reservation, error) {
	out, err := e.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

// ListForRestaurant returns a restaurant's reservations for one date,
// restricted to the restaurant's owner.
func (e *Engine) ListForRestaurant(ctx context.Context, restaurantID uint64, date string, actorID uint64) ([]*model.Reservation, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	date = day.Format("2006-01-02")
	// GetByID rather than Restaurant: the owner of a delisted venue
	// still sees its booking history.
	rest, err := e.catalog.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if rest.OwnerID != actorID {
		return nil, ErrForbidden
	}
	out, err := e.ledger.ListByRestaurantDate(ctx, restaurantID, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

// SlotAvailability reports the remaining capacity of one bucket.  It
// is a non-locking read for pre-flight UI checks; admission is decided
// only inside the commit transaction.
type SlotAvailability struct {
	Bounded   bool   `json:"bounded"`
	Capacity  uint32 `json:"capacity,omitempty"`
	Booked    uint32 `json:"booked"`
	Remaining uint32 `json:"remaining,omitempty"`
}

// Availability resolves the current state of a bucket for the public
// availability endpoint.
func (e *Engine) Availability(ctx context.Context, restaurantID uint64, date, slot string) (*SlotAvailability, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	clock, err := time.Parse("15:04", slot)
	if err != nil {
		return nil, ErrInvalidDateTime
	}
	date = day.Format("2006-01-02")
	slot = clock.Format("15:04")
	if _, err := e.catalog.Restaurant(ctx, restaurantID); err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	capacity, err := e.catalog.Capacity(ctx, restaurantID, slot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	sum, err := e.ledger.PartySum(ctx, model.Bucket{RestaurantID: restaurantID, Date: date, SlotTime: slot})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	av := &SlotAvailability{Bounded: capacity.Bounded, Booked: sum}
	if capacity.Bounded {
		av.Capacity = capacity.Seats
		if sum < capacity.Seats {
			av.Remaining = capacity.Seats - sum
		}
	}
	return av, nil
}

// authorize allows the reservation's owner and the owner of its
// restaurant; everyone else gets ErrForbidden.  The restaurant is
// looked up regardless of its active flag, and a catalog fault is
// surfaced as a persistence failure rather than a denial.
func (e *Engine) authorize(ctx context.Context, res *model.Reservation, actorID uint64) error {
	if res.UserID == actorID {
		return nil
	}
	rest, err := e.catalog.GetByID(ctx, res.RestaurantID)
	if err != nil {
		if errors.Is(err, ErrRestaurantNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if rest.OwnerID != actorID {
		return ErrForbidden
	}
	return nil
}

func (e *Engine) publishConfirmed(ctx context.Context, res *model.Reservation) {
	if e.events == nil || res.Status != model.StatusConfirmed {
		return
	}
	if err := e.events.ReservationConfirmed(ctx, res); err != nil {
		log.Printf("booking: publish reservation.confirmed failed: %v", err)
	}
}

func (e *Engine) publishCancelled(ctx context.Context, res *model.Reservation) {
	if e.events == nil {
		return
	}
	if err := e.events.ReservationCancelled(ctx, res); err != nil {
		log.Printf("booking: publish reservation.cancelled failed: %v", err)
	}
}

// ledgerErr passes taxonomy sentinels through and wraps everything
// else as a persistence failure.
func ledgerErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrCapacityExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

// restaurantLocation loads the restaurant's time zone, falling back to
// UTC when the stored name is empty or invalid.
func restaurantLocation(r *model.Restaurant) *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
