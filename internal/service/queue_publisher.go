// Package service publishes reservation domain events to RabbitMQ.
// Publish failures are logged and returned but never interrupt the
// booking flow; the ledger is the source of truth, events are
// best-effort notifications.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/reservebite/reservebite-api/internal/model"
	"github.com/reservebite/reservebite-api/internal/queue"
)

// NameLookup resolves a restaurant for event enrichment.  Satisfied
// by the restaurant repository.
type NameLookup interface {
	Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error)
}

// Publisher emits ReservationEvents and satisfies the booking
// engine's Events contract.
type Publisher struct {
	names NameLookup
}

// NewPublisher returns a Publisher.  names may be nil, in which case
// events go out without the restaurant name.
func NewPublisher(names NameLookup) *Publisher { return &Publisher{names: names} }

// ReservationConfirmed publishes a reservation.confirmed event.
func (p *Publisher) ReservationConfirmed(ctx context.Context, res *model.Reservation) error {
	return p.publish(ctx, queue.TypeReservationConfirmed, res)
}

// ReservationCancelled publishes a reservation.cancelled event.
func (p *Publisher) ReservationCancelled(ctx context.Context, res *model.Reservation) error {
	return p.publish(ctx, queue.TypeReservationCancelled, res)
}

func (p *Publisher) publish(ctx context.Context, eventType string, res *model.Reservation) error {
	ev := queue.ReservationEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ReservationID: res.ID,
		RestaurantID:  res.RestaurantID,
		UserID:        res.UserID,
		PartySize:     res.PartySize,
		Date:          res.Date,
		SlotTime:      res.SlotTime,
		MealsOrdered:  res.MealsOrdered,
		Status:        res.Status,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if p.names != nil {
		if rest, err := p.names.Restaurant(ctx, res.RestaurantID); err == nil {
			ev.RestaurantName = rest.Name
		}
	}

	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable queue so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue.QueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.QueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
