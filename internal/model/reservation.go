package model

import "time"

// Reservation status values.  A reservation starts as PENDING when the
// availability engine admits it, becomes CONFIRMED when the booking
// flow completes (the meal-order choice is resolved), and ends as
// CANCELLED either explicitly or when an abandoned PENDING draft ages
// past the pending TTL.  There is no transition out of CANCELLED, and
// cancelled rows are excluded from capacity accounting.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Contact is the snapshot of guest contact details stored on a
// reservation.  It is pre-filled from the user directory when the
// request does not override it, so the restaurant keeps a usable
// record even if the account changes later.
type Contact struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Reservation records a user's table booking at a restaurant for a
// specific date and time slot.  Corresponds to the `reservations`
// table.  Rows are never hard-deleted by the booking core; history is
// preserved for capacity accounting and audit.
//
// Fields:
//  ID           - primary key identifier.
//  RestaurantID - restaurant being booked (immutable).
//  UserID       - user who made the reservation (immutable).
//  PartySize    - number of guests, always >= 1.
//  Date         - calendar date "YYYY-MM-DD" in the restaurant's time zone.
//  SlotTime     - service time "HH:MM".
//  MealsOrdered - true when the guest pre-ordered meals with the booking.
//  Status       - PENDING, CONFIRMED or CANCELLED.
//  Contact      - guest contact snapshot.
//  CreatedAt    - creation timestamp (drives the pending TTL).
//  UpdatedAt    - last update timestamp.
type Reservation struct {
	ID           uint64    `json:"id"`
	RestaurantID uint64    `json:"restaurant_id"`
	UserID       uint64    `json:"user_id"`
	PartySize    uint32    `json:"party_size"`
	Date         string    `json:"date"`
	SlotTime     string    `json:"time"`
	MealsOrdered bool      `json:"meals_ordered"`
	Status       string    `json:"status"`
	Contact      Contact   `json:"contact"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Bucket identifies the aggregate all reservations for one restaurant,
// date and time slot share.  The capacity invariant is enforced per
// bucket: the party-size sum of its PENDING and CONFIRMED rows never
// exceeds the bucket's capacity.
type Bucket struct {
	RestaurantID uint64
	Date         string
	SlotTime     string
}

// BucketOf returns the bucket a reservation belongs to.
func BucketOf(r *Reservation) Bucket {
	return Bucket{RestaurantID: r.RestaurantID, Date: r.Date, SlotTime: r.SlotTime}
}
