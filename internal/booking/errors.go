// Package booking implements the table reservation core: the
// availability engine that decides whether a reservation request is
// admitted, and the contracts of the ledger that persists admitted
// reservations atomically.  Handlers translate the sentinel errors
// defined here into HTTP status codes; repositories return them where
// the ledger and catalog contracts require.
package booking

import "errors"

// Validation errors, detected before any transaction begins.
var (
	// ErrInvalidPartySize is returned when the requested party size is
	// not a positive integer.
	ErrInvalidPartySize = errors.New("party size must be at least 1")

	// ErrInvalidDateTime is returned when the date or time of a request
	// cannot be parsed ("YYYY-MM-DD" and "HH:MM" are expected).
	ErrInvalidDateTime = errors.New("invalid reservation date or time")

	// ErrPastDateTime is returned when the requested moment is earlier
	// than now in the restaurant's local time zone.
	ErrPastDateTime = errors.New("reservation time is in the past")

	// ErrOutsideOpeningHours is returned when the requested time falls
	// outside the restaurant's operating hours, if it defines any.
	ErrOutsideOpeningHours = errors.New("outside the restaurant's opening hours")

	// ErrRestaurantNotFound is returned when the restaurant id does not
	// resolve to an existing, active restaurant.
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

// Admission and ledger errors.
var (
	// ErrCapacityExceeded is returned when admitting the request would
	// push the bucket's party-size sum past its seat capacity.  The
	// caller may retry against the updated bucket state.
	ErrCapacityExceeded = errors.New("no capacity left for this time slot")

	// ErrConflict signals a concurrent-write collision on the bucket.
	// The engine retries it internally a bounded number of times and
	// only surfaces it once the attempts are exhausted.
	ErrConflict = errors.New("conflicting concurrent booking")

	// ErrNotFound is returned when a reservation id does not resolve.
	ErrNotFound = errors.New("reservation not found")

	// ErrAlreadyCancelled is returned when a cancel or confirm hits a
	// reservation that is already CANCELLED.  The state is unchanged;
	// capacity is only ever freed once.
	ErrAlreadyCancelled = errors.New("reservation already cancelled")

	// ErrForbidden is returned when the acting user is neither the
	// reservation's owner nor the owner of its restaurant.
	ErrForbidden = errors.New("forbidden")

	// ErrPersistence wraps storage-layer faults that survive the
	// internal retry budget.  It is terminal for the call.
	ErrPersistence = errors.New("persistence failure")
)
