package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/Additional-Code/tableside/internal/database"
	"github.com/Additional-Code/tableside/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/tableside/repository/catalog")

// ErrNotFound is returned when a catalog record is missing.
var ErrNotFound = errors.New("catalog record not found")

// Repository covers the menu content collections: categories, menu items,
// branches and banners. They share identical CRUD shapes so they live in one
// repository rather than four.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

func (r *Repository) insert(ctx context.Context, op string, model any) error {
	ctx, span := repoTracer.Start(ctx, op)
	defer span.End()
	_, err := r.writer.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

func (r *Repository) update(ctx context.Context, op string, model any, id int64) error {
	ctx, span := repoTracer.Start(ctx, op)
	defer span.End()
	res, err := r.writer.NewUpdate().Model(model).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, op string, model any) error {
	ctx, span := repoTracer.Start(ctx, op)
	defer span.End()
	_, err := r.writer.NewDelete().Model(model).WherePK().Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
	}
	return err
}

// CreateCategory persists a new category.
func (r *Repository) CreateCategory(ctx context.Context, c *entity.Category) error {
	return r.insert(ctx, "CatalogRepository.CreateCategory", c)
}

// UpdateCategory rewrites a category by primary key.
func (r *Repository) UpdateCategory(ctx context.Context, c *entity.Category) error {
	return r.update(ctx, "CatalogRepository.UpdateCategory", c, c.ID)
}

// DeleteCategory removes a category.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	return r.delete(ctx, "CatalogRepository.DeleteCategory", &entity.Category{ID: id})
}

// ListCategories returns all categories in display order.
func (r *Repository) ListCategories(ctx context.Context) ([]entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListCategories")
	defer span.End()
	var out []entity.Category
	err := r.reader.NewSelect().Model(&out).Order("position ASC", "id ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// CreateMenuItem persists a new menu item.
func (r *Repository) CreateMenuItem(ctx context.Context, m *entity.MenuItem) error {
	return r.insert(ctx, "CatalogRepository.CreateMenuItem", m)
}

// UpdateMenuItem rewrites a menu item by primary key.
func (r *Repository) UpdateMenuItem(ctx context.Context, m *entity.MenuItem) error {
	return r.update(ctx, "CatalogRepository.UpdateMenuItem", m, m.ID)
}

// DeleteMenuItem removes a menu item.
func (r *Repository) DeleteMenuItem(ctx context.Context, id int64) error {
	return r.delete(ctx, "CatalogRepository.DeleteMenuItem", &entity.MenuItem{ID: id})
}

// GetMenuItem fetches one menu item by primary key.
func (r *Repository) GetMenuItem(ctx context.Context, id int64) (*entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetMenuItem")
	defer span.End()
	item := new(entity.MenuItem)
	err := r.reader.NewSelect().Model(item).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return item, nil
}

// GetMenuItems fetches menu items by primary key, keyed by id. Missing ids
// are simply absent from the map.
func (r *Repository) GetMenuItems(ctx context.Context, ids []int64) (map[int64]entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetMenuItems")
	defer span.End()
	var items []entity.MenuItem
	err := r.reader.NewSelect().Model(&items).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	out := make(map[int64]entity.MenuItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

// ListMenuItems returns menu items, optionally filtered by category.
func (r *Repository) ListMenuItems(ctx context.Context, categoryID int64) ([]entity.MenuItem, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListMenuItems")
	defer span.End()
	var out []entity.MenuItem
	q := r.reader.NewSelect().Model(&out).Order("name ASC")
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// CreateBranch persists a new branch.
func (r *Repository) CreateBranch(ctx context.Context, b *entity.Branch) error {
	return r.insert(ctx, "CatalogRepository.CreateBranch", b)
}

// UpdateBranch rewrites a branch by primary key.
func (r *Repository) UpdateBranch(ctx context.Context, b *entity.Branch) error {
	return r.update(ctx, "CatalogRepository.UpdateBranch", b, b.ID)
}

// DeleteBranch removes a branch.
func (r *Repository) DeleteBranch(ctx context.Context, id int64) error {
	return r.delete(ctx, "CatalogRepository.DeleteBranch", &entity.Branch{ID: id})
}

// ListBranches returns all branches.
func (r *Repository) ListBranches(ctx context.Context) ([]entity.Branch, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListBranches")
	defer span.End()
	var out []entity.Branch
	if err := r.reader.NewSelect().Model(&out).Order("name ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// CreateBanner persists a new banner.
func (r *Repository) CreateBanner(ctx context.Context, b *entity.Banner) error {
	return r.insert(ctx, "CatalogRepository.CreateBanner", b)
}

// UpdateBanner rewrites a banner by primary key.
func (r *Repository) UpdateBanner(ctx context.Context, b *entity.Banner) error {
	return r.update(ctx, "CatalogRepository.UpdateBanner", b, b.ID)
}

// DeleteBanner removes a banner.
func (r *Repository) DeleteBanner(ctx context.Context, id int64) error {
	return r.delete(ctx, "CatalogRepository.DeleteBanner", &entity.Banner{ID: id})
}

// ListBanners returns banners in display order; activeOnly narrows to the
// customer-visible set.
func (r *Repository) ListBanners(ctx context.Context, activeOnly bool) ([]entity.Banner, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListBanners")
	defer span.End()
	var out []entity.Banner
	q := r.reader.NewSelect().Model(&out).Order("position ASC", "id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}
