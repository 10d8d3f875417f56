package model

import "time"

// MenuCategory groups menu items under a restaurant (e.g. Starters,
// Mains, Desserts).  Categories are display-only: the booking core
// never reads them.  Corresponds to the `menu_categories` table.
//
// Fields:
//  ID           - primary key identifier.
//  RestaurantID - owning restaurant.
//  Name         - category label.
//  Position     - sort order within the restaurant's menu.
//  CreatedAt    - creation timestamp.
//  UpdatedAt    - last update timestamp.
type MenuCategory struct {
	ID           uint64    `json:"id"`            // menu_categories.id
	RestaurantID uint64    `json:"restaurant_id"` // menu_categories.restaurant_id
	Name         string    `json:"name"`          // menu_categories.name
	Position     uint32    `json:"position"`      // menu_categories.position
	CreatedAt    time.Time `json:"created_at"`    // menu_categories.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // menu_categories.updated_at
}

// MenuItem is a single dish inside a category.  Corresponds to the
// `menu_items` table.
//
// Fields:
//  ID          - primary key identifier.
//  CategoryID  - owning category.
//  Name        - dish name.
//  Description - optional dish description.
//  PriceCents  - price in cents to avoid floating point drift.
//  ImageURL    - optional photo of the dish.
//  IsAvailable - whether the dish is currently offered.
//  CreatedAt   - creation timestamp.
//  UpdatedAt   - last update timestamp.
type MenuItem struct {
	ID          uint64    `json:"id"`           // menu_items.id
	CategoryID  uint64    `json:"category_id"`  // menu_items.category_id
	Name        string    `json:"name"`         // menu_items.name
	Description *string   `json:"description"`  // menu_items.description (nullable)
	PriceCents  uint32    `json:"price_cents"`  // menu_items.price_cents
	ImageURL    *string   `json:"image_url"`    // menu_items.image_url (nullable)
	IsAvailable bool      `json:"is_available"` // menu_items.is_available
	CreatedAt   time.Time `json:"created_at"`   // menu_items.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // menu_items.updated_at
}
