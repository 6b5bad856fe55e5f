package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Category groups menu items for display.
type Category struct {
	bun.BaseModel `bun:"table:categories"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:"name"`
	Slug      string    `bun:"slug"`
	Position  int       `bun:"position"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// MenuItem is a sellable dish. ImageURI is opaque to this service; upload
// happens elsewhere.
type MenuItem struct {
	bun.BaseModel `bun:"table:menu_items"`

	ID         int64     `bun:",pk,autoincrement"`
	CategoryID int64     `bun:"category_id"`
	Name       string    `bun:"name"`
	Slug       string    `bun:"slug"`
	Price      int64     `bun:"price"`
	ImageURI   string    `bun:"image_uri"`
	Available  bool      `bun:"available"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero"`
}

// Branch is a physical restaurant location.
type Branch struct {
	bun.BaseModel `bun:"table:branches"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:"name"`
	Address   string    `bun:"address"`
	Phone     string    `bun:"phone"`
	OpenHours string    `bun:"open_hours"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// Banner is a promotional image shown on the menu front page.
type Banner struct {
	bun.BaseModel `bun:"table:banners"`

	ID        int64     `bun:",pk,autoincrement"`
	Title     string    `bun:"title"`
	ImageURI  string    `bun:"image_uri"`
	Active    bool      `bun:"active"`
	Position  int       `bun:"position"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}
