package catalog

import (
	"context"
	"errors"

	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	repo "github.com/Additional-Code/tableside/internal/repository/catalog"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tableside/service/catalog")

// Service manages the menu content collections.
type Service struct {
	repo   *repo.Repository
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{repo: p.Repository, logger: p.Logger}
}

// Module provides the catalog service to Fx.
var Module = fx.Provide(NewService)

func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound(msg + " not found")
	}
	return errorbank.Internal("failed to save "+msg, errorbank.WithCause(err))
}

// CreateCategory adds a category; its slug derives from the name.
func (s *Service) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*entity.Category, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateCategory")
	defer span.End()

	c := &entity.Category{Name: req.Name, Slug: slug.Make(req.Name), Position: req.Position}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, wrap(err, "category")
	}
	return c, nil
}

// UpdateCategory rewrites a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, req dto.CategoryRequest) (*entity.Category, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateCategory")
	defer span.End()

	c := &entity.Category{ID: id, Name: req.Name, Slug: slug.Make(req.Name), Position: req.Position}
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, wrap(err, "category")
	}
	return c, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return wrap(s.repo.DeleteCategory(ctx, id), "category")
}

// Categories lists all categories in display order.
func (s *Service) Categories(ctx context.Context) ([]entity.Category, error) {
	out, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to list categories", errorbank.WithCause(err))
	}
	return out, nil
}

// CreateMenuItem adds a dish to the menu.
func (s *Service) CreateMenuItem(ctx context.Context, req dto.MenuItemRequest) (*entity.MenuItem, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateMenuItem")
	defer span.End()

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	m := &entity.MenuItem{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Slug:       slug.Make(req.Name),
		Price:      req.Price,
		ImageURI:   req.ImageURI,
		Available:  available,
	}
	if err := s.repo.CreateMenuItem(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, wrap(err, "menu item")
	}
	return m, nil
}

// UpdateMenuItem rewrites a dish.
func (s *Service) UpdateMenuItem(ctx context.Context, id int64, req dto.MenuItemRequest) (*entity.MenuItem, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateMenuItem")
	defer span.End()

	current, err := s.repo.GetMenuItem(ctx, id)
	if err != nil {
		return nil, wrap(err, "menu item")
	}
	current.CategoryID = req.CategoryID
	current.Name = req.Name
	current.Slug = slug.Make(req.Name)
	current.Price = req.Price
	current.ImageURI = req.ImageURI
	if req.Available != nil {
		current.Available = *req.Available
	}
	if err := s.repo.UpdateMenuItem(ctx, current); err != nil {
		return nil, wrap(err, "menu item")
	}
	return current, nil
}

// DeleteMenuItem removes a dish.
func (s *Service) DeleteMenuItem(ctx context.Context, id int64) error {
	return wrap(s.repo.DeleteMenuItem(ctx, id), "menu item")
}

// MenuItems lists dishes, optionally narrowed to one category.
func (s *Service) MenuItems(ctx context.Context, categoryID int64) ([]entity.MenuItem, error) {
	out, err := s.repo.ListMenuItems(ctx, categoryID)
	if err != nil {
		return nil, errorbank.Internal("failed to list menu items", errorbank.WithCause(err))
	}
	return out, nil
}

// CreateBranch adds a location.
func (s *Service) CreateBranch(ctx context.Context, req dto.BranchRequest) (*entity.Branch, error) {
	b := &entity.Branch{Name: req.Name, Address: req.Address, Phone: req.Phone, OpenHours: req.OpenHours}
	if err := s.repo.CreateBranch(ctx, b); err != nil {
		return nil, wrap(err, "branch")
	}
	return b, nil
}

// UpdateBranch rewrites a location.
func (s *Service) UpdateBranch(ctx context.Context, id int64, req dto.BranchRequest) (*entity.Branch, error) {
	b := &entity.Branch{ID: id, Name: req.Name, Address: req.Address, Phone: req.Phone, OpenHours: req.OpenHours}
	if err := s.repo.UpdateBranch(ctx, b); err != nil {
		return nil, wrap(err, "branch")
	}
	return b, nil
}

// DeleteBranch removes a location.
func (s *Service) DeleteBranch(ctx context.Context, id int64) error {
	return wrap(s.repo.DeleteBranch(ctx, id), "branch")
}

// Branches lists all locations.
func (s *Service) Branches(ctx context.Context) ([]entity.Branch, error) {
	out, err := s.repo.ListBranches(ctx)
	if err != nil {
		return nil, errorbank.Internal("failed to list branches", errorbank.WithCause(err))
	}
	return out, nil
}

// CreateBanner adds a front-page banner.
func (s *Service) CreateBanner(ctx context.Context, req dto.BannerRequest) (*entity.Banner, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	b := &entity.Banner{Title: req.Title, ImageURI: req.ImageURI, Active: active, Position: req.Position}
	if err := s.repo.CreateBanner(ctx, b); err != nil {
		return nil, wrap(err, "banner")
	}
	return b, nil
}

// UpdateBanner rewrites a banner.
func (s *Service) UpdateBanner(ctx context.Context, id int64, req dto.BannerRequest) (*entity.Banner, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	b := &entity.Banner{ID: id, Title: req.Title, ImageURI: req.ImageURI, Active: active, Position: req.Position}
	if err := s.repo.UpdateBanner(ctx, b); err != nil {
		return nil, wrap(err, "banner")
	}
	return b, nil
}

// DeleteBanner removes a banner.
func (s *Service) DeleteBanner(ctx context.Context, id int64) error {
	return wrap(s.repo.DeleteBanner(ctx, id), "banner")
}

// Banners lists banners; customers only see active ones.
func (s *Service) Banners(ctx context.Context, activeOnly bool) ([]entity.Banner, error) {
	out, err := s.repo.ListBanners(ctx, activeOnly)
	if err != nil {
		return nil, errorbank.Internal("failed to list banners", errorbank.WithCause(err))
	}
	return out, nil
}
