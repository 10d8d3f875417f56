package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/reservebite/reservebite-api/internal/model"
	"github.com/reservebite/reservebite-api/internal/utils"
)

// UserRepo provides data access to the users table.  It also serves
// as the booking engine's contact directory through Resolve.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID.  Emails are normalized to
// lower case before insert and lookup.
func (r *UserRepo) Create(ctx context.Context, email, password, firstName, lastName, phone, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, phone, role)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		email, hash, firstName, lastName, phone, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// Resolve returns a user's contact details for reservation pre-fill,
// satisfying the booking.Directory contract.
func (r *UserRepo) Resolve(ctx context.Context, userID uint64) (model.Contact, error) {
	var c model.Contact
	err := r.DB.QueryRowContext(ctx,
		`SELECT first_name, last_name, email, phone FROM users WHERE id = ? LIMIT 1`,
		userID).Scan(&c.FirstName, &c.LastName, &c.Email, &c.Phone)
	return c, err
}

// UpdateContact overwrites the user's contact fields used for pre-fill.
func (r *UserRepo) UpdateContact(ctx context.Context, userID uint64, firstName, lastName, phone string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, phone = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`,
		firstName, lastName, phone, userID)
	return err
}
