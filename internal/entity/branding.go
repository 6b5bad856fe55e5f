package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// SiteBranding is the single versioned branding record. ManagerCodeHash is
// the staff console unlock secret; it lives here, versioned and persisted,
// rather than in process memory, so a rotation survives restarts and is
// visible to every instance.
type SiteBranding struct {
	bun.BaseModel `bun:"table:site_branding"`

	ID              int64     `bun:",pk,autoincrement"`
	Name            string    `bun:"name"`
	LogoURI         string    `bun:"logo_uri"`
	ManagerCodeHash string    `bun:"manager_code_hash"`
	Version         int64     `bun:"version"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero"`
}
