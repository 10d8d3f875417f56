package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/reservebite/reservebite-api/internal/booking"
	"github.com/reservebite/reservebite-api/internal/model"
)

// ReservationRepo is the MySQL implementation of the booking ledger.
// A reservation and its user back-reference (user_reservations row)
// are always written and removed inside one transaction, so either
// both sides are visible or neither is.  All timestamps are stored
// in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, restaurant_id, user_id, party_size,
	DATE_FORMAT(reservation_date, '%Y-%m-%d'), slot_time, meals_ordered, status,
	first_name, last_name, email, phone, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID, &res.RestaurantID, &res.UserID, &res.PartySize,
		&res.Date, &res.SlotTime, &res.MealsOrdered, &res.Status,
		&res.Contact.FirstName, &res.Contact.LastName, &res.Contact.Email, &res.Contact.Phone,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Commit admits a PENDING draft into the ledger.  Inside a single
// serializable transaction it expires stale PENDING rows in the
// draft's bucket, re-reads the bucket's party-size sum under a write
// lock, and inserts the reservation together with the user's
// back-reference.  Deadlocks and lock wait timeouts are reported as
// booking.ErrConflict so the engine can retry.
func (r *ReservationRepo) Commit(ctx context.Context, draft *model.Reservation, limit model.Capacity, staleBefore time.Time) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := r.expireStaleTx(ctx, tx, model.BucketOf(draft), staleBefore); err != nil {
		return 0, classifyTxErr(err)
	}

	// The locked sum is the authoritative capacity read; the pre-flight
	// check in the engine is advisory only.
	const sumQ = `SELECT COALESCE(SUM(party_size), 0)
	              FROM reservations
	              WHERE restaurant_id = ? AND reservation_date = ? AND slot_time = ?
	                AND status IN ('PENDING', 'CONFIRMED')
	              FOR UPDATE`
	var sum uint32
	if err := tx.QueryRowContext(ctx, sumQ, draft.RestaurantID, draft.Date, draft.SlotTime).Scan(&sum); err != nil {
		return 0, classifyTxErr(err)
	}
	if limit.Bounded && sum+draft.PartySize > limit.Seats {
		return 0, booking.ErrCapacityExceeded
	}

	const insQ = `INSERT INTO reservations
	              (restaurant_id, user_id, party_size, reservation_date, slot_time,
	               meals_ordered, status, first_name, last_name, email, phone)
	              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insQ,
		draft.RestaurantID, draft.UserID, draft.PartySize, draft.Date, draft.SlotTime,
		draft.MealsOrdered, model.StatusPending,
		draft.Contact.FirstName, draft.Contact.LastName, draft.Contact.Email, draft.Contact.Phone,
	)
	if err != nil {
		return 0, classifyTxErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_reservations (user_id, reservation_id) VALUES (?, ?)`,
		draft.UserID, uint64(id),
	); err != nil {
		return 0, classifyTxErr(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, classifyTxErr(err)
	}
	committed = true
	return uint64(id), nil
}

// expireStaleTx cancels PENDING rows in the bucket created at or
// before staleBefore and removes their user back-references.  Runs
// within the caller's transaction.
func (r *ReservationRepo) expireStaleTx(ctx context.Context, tx *sql.Tx, b model.Bucket, staleBefore time.Time) error {
	cutoff := staleBefore.UTC().Format("2006-01-02 15:04:05")
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM reservations
		 WHERE restaurant_id = ? AND reservation_date = ? AND slot_time = ?
		   AND status = 'PENDING' AND created_at <= ?
		 FOR UPDATE`,
		b.RestaurantID, b.Date, b.SlotTime, cutoff,
	)
	if err != nil {
		return err
	}
	var stale []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return scanErr
		}
		stale = append(stale, id)
	}
	if err = rows.Close(); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	placeholders := make([]string, len(stale))
	args := make([]interface{}, len(stale))
	for i, id := range stale {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")
	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'CANCELLED', updated_at = UTC_TIMESTAMP() WHERE id IN (`+in+`)`,
		args...,
	); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM user_reservations WHERE reservation_id IN (`+in+`)`,
		args...,
	)
	return err
}

// Confirm moves a PENDING reservation to CONFIRMED and records the
// meal-order choice.  A PENDING row older than the cutoff is expired
// instead and reported as booking.ErrAlreadyCancelled; confirming an
// already CONFIRMED row returns it unchanged.
func (r *ReservationRepo) Confirm(ctx context.Context, id uint64, mealsOrdered bool, staleBefore time.Time) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := r.lockRowTx(ctx, tx, id)
	if err != nil {
		return nil, classifyTxErr(err)
	}

	switch res.Status {
	case model.StatusCancelled:
		return nil, booking.ErrAlreadyCancelled
	case model.StatusConfirmed:
		if err := tx.Commit(); err != nil {
			return nil, classifyTxErr(err)
		}
		committed = true
		return res, nil
	}

	if !res.CreatedAt.After(staleBefore) {
		// Abandoned draft; expire it in place rather than confirming.
		if _, err := tx.ExecContext(ctx,
			`UPDATE reservations SET status = 'CANCELLED', updated_at = UTC_TIMESTAMP() WHERE id = ?`, id,
		); err != nil {
			return nil, classifyTxErr(err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_reservations WHERE reservation_id = ?`, id,
		); err != nil {
			return nil, classifyTxErr(err)
		}
		if err := tx.Commit(); err != nil {
			return nil, classifyTxErr(err)
		}
		committed = true
		return nil, booking.ErrAlreadyCancelled
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'CONFIRMED', meals_ordered = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		mealsOrdered, id,
	); err != nil {
		return nil, classifyTxErr(err)
	}
	res, err = r.lockRowTx(ctx, tx, id)
	if err != nil {
		return nil, classifyTxErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classifyTxErr(err)
	}
	committed = true
	return res, nil
}

// Cancel moves a reservation to CANCELLED and removes the user's
// back-reference in the same transaction.  Cancelling an already
// CANCELLED row leaves it untouched and returns
// booking.ErrAlreadyCancelled, so capacity is freed exactly once.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := r.lockRowTx(ctx, tx, id)
	if err != nil {
		return nil, classifyTxErr(err)
	}
	if res.Status == model.StatusCancelled {
		return nil, booking.ErrAlreadyCancelled
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = 'CANCELLED', updated_at = UTC_TIMESTAMP() WHERE id = ?`, id,
	); err != nil {
		return nil, classifyTxErr(err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_reservations WHERE reservation_id = ?`, id,
	); err != nil {
		return nil, classifyTxErr(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classifyTxErr(err)
	}
	committed = true
	res.Status = model.StatusCancelled
	return res, nil
}

// lockRowTx selects a reservation by id with a write lock inside the
// given transaction.  Returns booking.ErrNotFound for unknown ids.
func (r *ReservationRepo) lockRowTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, booking.ErrNotFound
	}
	return res, err
}

// Get returns a reservation by id, or booking.ErrNotFound.
func (r *ReservationRepo) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, booking.ErrNotFound
	}
	return res, err
}

// PartySum returns the PENDING+CONFIRMED party-size sum of a bucket
// without locking.  Used for pre-flight checks and the availability
// endpoint.
func (r *ReservationRepo) PartySum(ctx context.Context, b model.Bucket) (uint32, error) {
	const q = `SELECT COALESCE(SUM(party_size), 0)
	           FROM reservations
	           WHERE restaurant_id = ? AND reservation_date = ? AND slot_time = ?
	             AND status IN ('PENDING', 'CONFIRMED')`
	var sum uint32
	err := r.db.QueryRowContext(ctx, q, b.RestaurantID, b.Date, b.SlotTime).Scan(&sum)
	return sum, err
}

// ListByUser returns the user's reservations through the
// user_reservations back-reference, newest first.  Cancelled
// reservations drop out of the list because their back-reference is
// removed on cancellation.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error) {
	const q = `SELECT r.id, r.restaurant_id, r.user_id, r.party_size,
	                  DATE_FORMAT(r.reservation_date, '%Y-%m-%d'), r.slot_time, r.meals_ordered, r.status,
	                  r.first_name, r.last_name, r.email, r.phone, r.created_at, r.updated_at
	           FROM user_reservations ur
	           JOIN reservations r ON r.id = ur.reservation_id
	           WHERE ur.user_id = ?
	           ORDER BY r.created_at DESC`
	return r.queryReservations(ctx, q, userID)
}

// ListByRestaurantDate returns a restaurant's reservations for one
// calendar date ordered by slot time, including cancelled rows so
// owners see the full history of the day.
func (r *ReservationRepo) ListByRestaurantDate(ctx context.Context, restaurantID uint64, date string) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
	           FROM reservations
	           WHERE restaurant_id = ? AND reservation_date = ?
	           ORDER BY slot_time, created_at`
	return r.queryReservations(ctx, q, restaurantID, date)
}

func (r *ReservationRepo) queryReservations(ctx context.Context, query string, args ...interface{}) ([]*model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
