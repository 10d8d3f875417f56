package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/reservebite/reservebite-api/internal/booking"
	"github.com/reservebite/reservebite-api/internal/model"
)

// RestaurantRepo provides data access to the restaurants and
// restaurant_slots tables.  It doubles as the booking engine's
// catalog: Restaurant and Capacity satisfy the booking.Catalog
// contract.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo returns a RestaurantRepo bound to the given database.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

const restaurantColumns = `id, owner_id, name, address, phone, description, image_url,
	timezone, open_time, close_time, seat_capacity, is_active, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...interface{}) error }) (*model.Restaurant, error) {
	var r model.Restaurant
	var openTime, closeTime sql.NullString
	var seats sql.NullInt64
	err := row.Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Address, &r.Phone, &r.Description, &r.ImageURL,
		&r.Timezone, &openTime, &closeTime, &seats, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if openTime.Valid {
		v := openTime.String
		r.OpenTime = &v
	}
	if closeTime.Valid {
		v := closeTime.String
		r.CloseTime = &v
	}
	if seats.Valid {
		v := uint32(seats.Int64)
		r.SeatCapacity = &v
	}
	return &r, nil
}

// Restaurant resolves an active restaurant by id for the booking
// engine.  Inactive and unknown restaurants both map to
// booking.ErrRestaurantNotFound so delisted venues stop accepting
// bookings immediately.
func (r *RestaurantRepo) Restaurant(ctx context.Context, id uint64) (*model.Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ? AND is_active = 1`, id))
	if err == sql.ErrNoRows {
		return nil, booking.ErrRestaurantNotFound
	}
	return rest, err
}

// Capacity resolves the seat limit for one service time.  A
// restaurant_slots override wins over the restaurant-wide seat count;
// a restaurant with neither is unbounded.
func (r *RestaurantRepo) Capacity(ctx context.Context, restaurantID uint64, slot string) (model.Capacity, error) {
	var seats uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT capacity FROM restaurant_slots WHERE restaurant_id = ? AND slot_time = ?`,
		restaurantID, slot,
	).Scan(&seats)
	switch {
	case err == nil:
		return model.BoundedCapacity(seats), nil
	case err != sql.ErrNoRows:
		return model.Capacity{}, err
	}

	var fallback sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT seat_capacity FROM restaurants WHERE id = ?`, restaurantID,
	).Scan(&fallback)
	if err == sql.ErrNoRows {
		return model.Capacity{}, booking.ErrRestaurantNotFound
	}
	if err != nil {
		return model.Capacity{}, err
	}
	if !fallback.Valid {
		return model.Unbounded(), nil
	}
	return model.BoundedCapacity(uint32(fallback.Int64)), nil
}

// GetByID fetches a restaurant regardless of its active flag,
// returning booking.ErrRestaurantNotFound for unknown ids.  Owner
// endpoints and the engine's ownership checks use this so owners can
// manage delisted venues.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, booking.ErrRestaurantNotFound
	}
	return rest, err
}

// Search lists active restaurants, optionally filtered by a
// case-insensitive substring of the name or address.  Results are
// ordered by name for stable pagination.
func (r *RestaurantRepo) Search(ctx context.Context, query string, limit, offset int) ([]*model.Restaurant, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE is_active = 1`
	args := make([]interface{}, 0, 4)
	if s := strings.TrimSpace(query); s != "" {
		q += ` AND (name LIKE ? OR address LIKE ?)`
		pattern := "%" + s + "%"
		args = append(args, pattern, pattern)
	}
	q += ` ORDER BY name LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Restaurant, 0)
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByOwner returns all restaurants belonging to an owner, newest
// first, including inactive ones.
func (r *RestaurantRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Restaurant, 0)
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a restaurant and returns it with generated fields
// populated.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) (*model.Restaurant, error) {
	const q = `INSERT INTO restaurants
	           (owner_id, name, address, phone, description, image_url, timezone,
	            open_time, close_time, seat_capacity, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		rest.OwnerID, rest.Name, rest.Address, rest.Phone, rest.Description, rest.ImageURL,
		rest.Timezone, rest.OpenTime, rest.CloseTime, rest.SeatCapacity, rest.IsActive,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites the mutable fields of an owner's restaurant.  It
// returns ErrForbidden when the restaurant belongs to someone else and
// sql.ErrNoRows when it does not exist.
func (r *RestaurantRepo) Update(ctx context.Context, ownerID uint64, rest *model.Restaurant) (*model.Restaurant, error) {
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM restaurants WHERE id = ?`, rest.ID).Scan(&actualOwnerID)
	if err != nil {
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, booking.ErrForbidden
	}
	const q = `UPDATE restaurants
	           SET name = ?, address = ?, phone = ?, description = ?, image_url = ?,
	               timezone = ?, open_time = ?, close_time = ?, seat_capacity = ?,
	               is_active = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		rest.Name, rest.Address, rest.Phone, rest.Description, rest.ImageURL,
		rest.Timezone, rest.OpenTime, rest.CloseTime, rest.SeatCapacity,
		rest.IsActive, rest.ID,
	); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, rest.ID)
}

// Delete removes an owner's restaurant.  The check for open
// reservations and the delete run in one transaction so a booking
// cannot slip in between them; restaurants with PENDING or CONFIRMED
// reservations at or after today are protected by ErrConflict.
func (r *RestaurantRepo) Delete(ctx context.Context, ownerID, restaurantID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var actualOwnerID uint64
	err = tx.QueryRowContext(ctx,
		`SELECT owner_id FROM restaurants WHERE id = ? FOR UPDATE`, restaurantID).Scan(&actualOwnerID)
	if err != nil {
		return err
	}
	if actualOwnerID != ownerID {
		return booking.ErrForbidden
	}

	var open uint64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations
		 WHERE restaurant_id = ? AND status IN ('PENDING', 'CONFIRMED')
		   AND reservation_date >= UTC_DATE()
		 FOR UPDATE`, restaurantID).Scan(&open)
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM restaurant_slots WHERE restaurant_id = ?`, restaurantID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM restaurants WHERE id = ?`, restaurantID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpsertSlot creates or replaces a per-slot capacity override for an
// owner's restaurant.
func (r *RestaurantRepo) UpsertSlot(ctx context.Context, ownerID, restaurantID uint64, slotTime string, capacity uint32) error {
	if err := r.checkOwner(ctx, ownerID, restaurantID); err != nil {
		return err
	}
	const q = `INSERT INTO restaurant_slots (restaurant_id, slot_time, capacity)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE capacity = VALUES(capacity)`
	_, err := r.db.ExecContext(ctx, q, restaurantID, slotTime, capacity)
	return err
}

// DeleteSlot removes a per-slot override, reverting the slot to the
// restaurant-wide seat capacity.
func (r *RestaurantRepo) DeleteSlot(ctx context.Context, ownerID, restaurantID uint64, slotTime string) error {
	if err := r.checkOwner(ctx, ownerID, restaurantID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM restaurant_slots WHERE restaurant_id = ? AND slot_time = ?`,
		restaurantID, slotTime)
	return err
}

// ListSlots returns all per-slot overrides of a restaurant ordered by
// time.
func (r *RestaurantRepo) ListSlots(ctx context.Context, restaurantID uint64) ([]model.SlotCapacity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, restaurant_id, slot_time, capacity, created_at
		 FROM restaurant_slots WHERE restaurant_id = ? ORDER BY slot_time`,
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.SlotCapacity, 0)
	for rows.Next() {
		var s model.SlotCapacity
		if err := rows.Scan(&s.ID, &s.RestaurantID, &s.SlotTime, &s.Capacity, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkOwner verifies ownership of a restaurant.  sql.ErrNoRows means
// the restaurant does not exist; booking.ErrForbidden means it exists
// but belongs to someone else.
func (r *RestaurantRepo) checkOwner(ctx context.Context, ownerID, restaurantID uint64) error {
	var actualOwnerID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM restaurants WHERE id = ?`, restaurantID).Scan(&actualOwnerID)
	if err != nil {
		return err
	}
	if actualOwnerID != ownerID {
		return booking.ErrForbidden
	}
	return nil
}
