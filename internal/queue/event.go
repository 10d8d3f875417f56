// Package queue defines the reservation event payload exchanged over
// the message broker and the background consumer that turns events
// into the audit log.
package queue

// Event types published on the reservation.events queue.
const (
	TypeReservationConfirmed = "reservation.confirmed"
	TypeReservationCancelled = "reservation.cancelled"
)

// QueueName is the durable queue reservation events travel on.
const QueueName = "reservation.events"

// ReservationEvent is published on every status transition of a
// reservation.  It carries enough context for downstream consumers
// (audit log, notifications, analytics) to act without querying the
// primary database.  EventID is a UUID for idempotent consumption.
type ReservationEvent struct {
	EventID        string `json:"event_id"`
	Type           string `json:"type"`
	ReservationID  uint64 `json:"reservation_id"`
	RestaurantID   uint64 `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name,omitempty"`
	UserID         uint64 `json:"user_id"`
	PartySize      uint32 `json:"party_size"`
	Date           string `json:"date"`
	SlotTime       string `json:"time"`
	MealsOrdered   bool   `json:"meals_ordered"`
	Status         string `json:"status"`
	OccurredAt     string `json:"occurred_at"`
}
