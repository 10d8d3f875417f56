package model

import "time"

// Restaurant represents a venue that accepts table reservations.
// Each restaurant belongs to one owner and may define operating
// hours and a seating capacity.  This struct corresponds to a row
// in the `restaurants` table.
//
// Fields:
//  ID           - primary key identifier.
//  OwnerID      - user ID of the restaurant owner.
//  Name         - display name of the restaurant.
//  Address      - street address shown on the detail page.
//  Phone        - contact phone number.
//  Description  - free-form description for the detail page.
//  ImageURL     - banner image shown in listings.
//  Timezone     - IANA time zone name used to interpret reservation
//                 dates and times (e.g. "Europe/Berlin").
//  OpenTime     - opening time "HH:MM" (nil when hours are not enforced).
//  CloseTime    - closing time "HH:MM" (nil when hours are not enforced).
//  SeatCapacity - total seats available per time slot.  A nil value
//                 means the restaurant accepts reservations without a
//                 capacity limit.
//  IsActive     - whether the restaurant is visible and bookable.
//  CreatedAt    - creation timestamp.
//  UpdatedAt    - last update timestamp.
type Restaurant struct {
	ID           uint64    `json:"id"`                      // restaurants.id
	OwnerID      uint64    `json:"owner_id"`                // restaurants.owner_id
	Name         string    `json:"name"`                    // restaurants.name
	Address      string    `json:"address"`                 // restaurants.address
	Phone        string    `json:"phone"`                   // restaurants.phone
	Description  string    `json:"description"`             // restaurants.description
	ImageURL     string    `json:"image_url"`               // restaurants.image_url
	Timezone     string    `json:"timezone"`                // restaurants.timezone
	OpenTime     *string   `json:"open_time"`               // restaurants.open_time (nullable "HH:MM")
	CloseTime    *string   `json:"close_time"`              // restaurants.close_time (nullable "HH:MM")
	SeatCapacity *uint32   `json:"seat_capacity"`           // restaurants.seat_capacity (nullable)
	IsActive     bool      `json:"is_active"`               // restaurants.is_active
	CreatedAt    time.Time `json:"created_at"`              // restaurants.created_at
	UpdatedAt    time.Time `json:"updated_at"`              // restaurants.updated_at
}

// Capacity describes the seat limit of a reservation bucket.  When
// Bounded is false the bucket accepts any party size and Seats is
// meaningless.  Values are resolved by the catalog: a per-slot
// override takes precedence over the restaurant-wide seat count,
// and a restaurant without either is unbounded.
type Capacity struct {
	Seats   uint32
	Bounded bool
}

// Unbounded returns the capacity of a restaurant without a seat limit.
func Unbounded() Capacity { return Capacity{} }

// BoundedCapacity returns a capacity limited to the given seat count.
func BoundedCapacity(seats uint32) Capacity { return Capacity{Seats: seats, Bounded: true} }

// SlotCapacity is a per-time-slot override of a restaurant's seat
// capacity, stored in the `restaurant_slots` table.  Slots let an
// owner shrink or grow capacity for specific service times (e.g.
// fewer tables at 22:00) without touching the restaurant record.
type SlotCapacity struct {
	ID           uint64    `json:"id"`            // restaurant_slots.id
	RestaurantID uint64    `json:"restaurant_id"` // restaurant_slots.restaurant_id
	SlotTime     string    `json:"slot_time"`     // restaurant_slots.slot_time ("HH:MM")
	Capacity     uint32    `json:"capacity"`      // restaurant_slots.capacity
	CreatedAt    time.Time `json:"created_at"`    // restaurant_slots.created_at
}
