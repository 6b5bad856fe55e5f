package branding

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/Additional-Code/tableside/internal/database"
	"github.com/Additional-Code/tableside/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/tableside/repository/branding")

// ErrNotFound is returned when the branding record has not been created yet.
var ErrNotFound = errors.New("branding not found")

// ErrVersionMoved is returned when a versioned update loses its
// compare-and-swap.
var ErrVersionMoved = errors.New("branding changed concurrently")

// Repository owns the single site branding row, including the versioned
// manager code secret.
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

// Get fetches the branding record.
func (r *Repository) Get(ctx context.Context) (*entity.SiteBranding, error) {
	ctx, span := repoTracer.Start(ctx, "BrandingRepository.Get")
	defer span.End()

	b := new(entity.SiteBranding)
	err := r.reader.NewSelect().Model(b).Order("id ASC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return b, nil
}

// Create inserts the initial branding record.
func (r *Repository) Create(ctx context.Context, b *entity.SiteBranding) error {
	ctx, span := repoTracer.Start(ctx, "BrandingRepository.Create")
	defer span.End()
	_, err := r.writer.NewInsert().Model(b).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// UpdateDisplay rewrites name and logo without touching the manager code.
func (r *Repository) UpdateDisplay(ctx context.Context, id int64, name, logoURI string, now time.Time) error {
	ctx, span := repoTracer.Start(ctx, "BrandingRepository.UpdateDisplay")
	defer span.End()

	_, err := r.writer.NewUpdate().Model((*entity.SiteBranding)(nil)).
		Set("name = ?", name).
		Set("logo_uri = ?", logoURI).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// RotateManagerCode swaps the manager code hash conditioned on the expected
// version, bumping the version on success. A concurrent rotation makes the
// second writer fail with ErrVersionMoved instead of silently clobbering.
func (r *Repository) RotateManagerCode(ctx context.Context, id int64, newHash string, expectedVersion int64, now time.Time) error {
	ctx, span := repoTracer.Start(ctx, "BrandingRepository.RotateManagerCode")
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.SiteBranding)(nil)).
		Set("manager_code_hash = ?", newHash).
		Set("version = version + 1").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionMoved
	}
	return nil
}
