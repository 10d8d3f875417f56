package repository

import (
	"context"
	"database/sql"

	"github.com/reservebite/reservebite-api/internal/booking"
	"github.com/reservebite/reservebite-api/internal/model"
)

// MenuRepo provides data access to menu_categories and menu_items.
// Menus are display data only; the booking core never reads them.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// MenuSection is a category together with its items, as rendered on
// the restaurant detail page.
type MenuSection struct {
	Category model.MenuCategory `json:"category"`
	Items    []model.MenuItem   `json:"items"`
}

// ListByRestaurant returns the full menu of a restaurant grouped by
// category.  Categories come back in position order, items by name;
// unavailable items are included so owners can see them (handlers
// filter for the public view).
func (m *MenuRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]MenuSection, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, restaurant_id, name, position, created_at, updated_at
		 FROM menu_categories WHERE restaurant_id = ? ORDER BY position, id`,
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := make([]MenuSection, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var c model.MenuCategory
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		index[c.ID] = len(sections)
		sections = append(sections, MenuSection{Category: c, Items: []model.MenuItem{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return sections, nil
	}

	irows, err := m.db.QueryContext(ctx,
		`SELECT i.id, i.category_id, i.name, i.description, i.price_cents, i.image_url,
		        i.is_available, i.created_at, i.updated_at
		 FROM menu_items i
		 JOIN menu_categories c ON c.id = i.category_id
		 WHERE c.restaurant_id = ?
		 ORDER BY i.category_id, i.name`,
		restaurantID)
	if err != nil {
		return nil, err
	}
	defer irows.Close()
	for irows.Next() {
		var it model.MenuItem
		var desc, img sql.NullString
		if err := irows.Scan(&it.ID, &it.CategoryID, &it.Name, &desc, &it.PriceCents, &img,
			&it.IsAvailable, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			it.Description = &v
		}
		if img.Valid {
			v := img.String
			it.ImageURL = &v
		}
		idx, ok := index[it.CategoryID]
		if !ok {
			continue
		}
		sections[idx].Items = append(sections[idx].Items, it)
	}
	if err := irows.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// CreateCategory inserts a menu category for an owner's restaurant.
func (m *MenuRepo) CreateCategory(ctx context.Context, ownerID uint64, c *model.MenuCategory) (uint64, error) {
	if err := m.checkRestaurantOwner(ctx, ownerID, c.RestaurantID); err != nil {
		return 0, err
	}
	result, err := m.db.ExecContext(ctx,
		`INSERT INTO menu_categories (restaurant_id, name, position) VALUES (?, ?, ?)`,
		c.RestaurantID, c.Name, c.Position)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// DeleteCategory removes a category and its items.
func (m *MenuRepo) DeleteCategory(ctx context.Context, ownerID, categoryID uint64) error {
	if err := m.checkCategoryOwner(ctx, ownerID, categoryID); err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx,
		`DELETE FROM menu_items WHERE category_id = ?`, categoryID); err != nil {
		return err
	}
	_, err := m.db.ExecContext(ctx,
		`DELETE FROM menu_categories WHERE id = ?`, categoryID)
	return err
}

// CreateItem inserts a dish under one of the owner's categories.
func (m *MenuRepo) CreateItem(ctx context.Context, ownerID uint64, it *model.MenuItem) (uint64, error) {
	if err := m.checkCategoryOwner(ctx, ownerID, it.CategoryID); err != nil {
		return 0, err
	}
	result, err := m.db.ExecContext(ctx,
		`INSERT INTO menu_items (category_id, name, description, price_cents, image_url, is_available)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		it.CategoryID, it.Name, it.Description, it.PriceCents, it.ImageURL, it.IsAvailable)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateItem overwrites the mutable fields of a dish.
func (m *MenuRepo) UpdateItem(ctx context.Context, ownerID uint64, it *model.MenuItem) error {
	const q = `SELECT r.owner_id
	           FROM menu_items i
	           JOIN menu_categories c ON c.id = i.category_id
	           JOIN restaurants r ON r.id = c.restaurant_id
	           WHERE i.id = ?`
	var actualOwnerID uint64
	if err := m.db.QueryRowContext(ctx, q, it.ID).Scan(&actualOwnerID); err != nil {
		return err
	}
	if actualOwnerID != ownerID {
		return booking.ErrForbidden
	}
	_, err := m.db.ExecContext(ctx,
		`UPDATE menu_items
		 SET name = ?, description = ?, price_cents = ?, image_url = ?, is_available = ?,
		     updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		it.Name, it.Description, it.PriceCents, it.ImageURL, it.IsAvailable, it.ID)
	return err
}

// DeleteItem removes a dish.
func (m *MenuRepo) DeleteItem(ctx context.Context, ownerID, itemID uint64) error {
	const q = `SELECT r.owner_id
	           FROM menu_items i
	           JOIN menu_categories c ON c.id = i.category_id
	           JOIN restaurants r ON r.id = c.restaurant_id
	           WHERE i.id = ?`
	var actualOwnerID uint64
	if err := m.db.QueryRowContext(ctx, q, itemID).Scan(&actualOwnerID); err != nil {
		return err
	}
	if actualOwnerID != ownerID {
		return booking.ErrForbidden
	}
	_, err := m.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, itemID)
	return err
}

func (m *MenuRepo) checkRestaurantOwner(ctx context.Context, ownerID, restaurantID uint64) error {
	var actualOwnerID uint64
	err := m.db.QueryRowContext(ctx,
		`SELECT owner_id FROM restaurants WHERE id = ?`, restaurantID).Scan(&actualOwnerID)
	if err != nil {
		return err
	}
	if actualOwnerID != ownerID {
		return booking.ErrForbidden
	}
	return nil
}

func (m *MenuRepo) checkCategoryOwner(ctx context.Context, ownerID, categoryID uint64) error {
	const q = `SELECT r.owner_id
	           FROM menu_categories c
	           JOIN restaurants r ON r.id = c.restaurant_id
	           WHERE c.id = ?`
	var actualOwnerID uint64
	if err := m.db.QueryRowContext(ctx, q, categoryID).Scan(&actualOwnerID); err != nil {
		return err
	}
	if actualOwnerID != ownerID {
		return booking.ErrForbidden
	}
	return nil
}
