package seeder

import (
	"context"
	"time"

	"github.com/gosimple/slug"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/database"
	"github.com/Additional-Code/tableside/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db         *bun.DB
	logger     *zap.Logger
	bcryptCost int
}

// New constructs a Seeder backed by the primary database connection.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger, bcryptCost: cfg.Auth.BcryptCost}
}

// Catalog seeds a starter menu, one branch and the branding record so the
// ordering page works out of the box. Existing rows are left alone.
func (s *Seeder) Catalog(ctx context.Context) error {
	now := time.Now().UTC()

	categories := []entity.Category{
		{Name: "Mains", Position: 1, CreatedAt: now, UpdatedAt: now},
		{Name: "Sides", Position: 2, CreatedAt: now, UpdatedAt: now},
		{Name: "Drinks", Position: 3, CreatedAt: now, UpdatedAt: now},
	}
	for i := range categories {
		categories[i].Slug = slug.Make(categories[i].Name)
		if _, err := s.db.NewInsert().Model(&categories[i]).
			On("CONFLICT (slug) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	items := []entity.MenuItem{
		{CategoryID: categories[0].ID, Name: "Beef Noodle Soup", Price: 8500, Available: true, CreatedAt: now, UpdatedAt: now},
		{CategoryID: categories[0].ID, Name: "Grilled Pork Rice", Price: 7000, Available: true, CreatedAt: now, UpdatedAt: now},
		{CategoryID: categories[1].ID, Name: "Spring Rolls", Price: 3500, Available: true, CreatedAt: now, UpdatedAt: now},
		{CategoryID: categories[2].ID, Name: "Iced Tea", Price: 1500, Available: true, CreatedAt: now, UpdatedAt: now},
	}
	for i := range items {
		items[i].Slug = slug.Make(items[i].Name)
		if _, err := s.db.NewInsert().Model(&items[i]).
			On("CONFLICT (slug) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
	}

	branch := entity.Branch{
		Name:      "Downtown",
		Address:   "12 Market Street",
		Phone:     "+1-555-0100",
		OpenHours: "10:00-22:00",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.NewInsert().Model(&branch).
		On("CONFLICT DO NOTHING").
		Exec(ctx); err != nil {
		return err
	}

	if err := s.branding(ctx, now); err != nil {
		return err
	}

	s.logger.Info("catalog seeded",
		zap.Int("categories", len(categories)),
		zap.Int("menu_items", len(items)),
	)
	return nil
}

// Admin seeds a default admin account when none exist.
func (s *Seeder) Admin(ctx context.Context, email, password string) error {
	count, err := s.db.NewSelect().Model((*entity.User)(nil)).
		Where("role = ?", entity.RoleAdmin).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("admin account already present; skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := entity.User{
		Email:        email,
		Name:         "Administrator",
		Role:         entity.RoleAdmin,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.db.NewInsert().Model(&admin).Exec(ctx); err != nil {
		return err
	}

	s.logger.Info("admin account seeded", zap.String("email", email))
	return nil
}

func (s *Seeder) branding(ctx context.Context, now time.Time) error {
	count, err := s.db.NewSelect().Model((*entity.SiteBranding)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("0000"), s.bcryptCost)
	if err != nil {
		return err
	}
	record := entity.SiteBranding{
		Name:            "Tableside",
		ManagerCodeHash: string(hash),
		Version:         1,
		UpdatedAt:       now,
	}
	_, err = s.db.NewInsert().Model(&record).Exec(ctx)
	return err
}
