package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	service "github.com/Additional-Code/tableside/internal/service/catalog"
	"github.com/Additional-Code/tableside/internal/transport/http/middleware"
	"github.com/Additional-Code/tableside/internal/transport/http/response"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tableside/transport/http/catalog")

// Handler exposes the menu catalog: categories, items, branches and
// banners. Reads are open, writes are admin only.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts catalog routes.
func Register(e *echo.Echo, h *Handler, auth middleware.TokenParser) {
	e.GET("/categories", h.listCategories)
	e.GET("/menu-items", h.listMenuItems)
	e.GET("/branches", h.listBranches)
	e.GET("/banners", h.listBanners)

	admin := e.Group("/admin", middleware.JWT(auth), middleware.RequireRole(string(entity.RoleAdmin)))
	admin.POST("/categories", h.createCategory)
	admin.PUT("/categories/:id", h.updateCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)
	admin.POST("/menu-items", h.createMenuItem)
	admin.PUT("/menu-items/:id", h.updateMenuItem)
	admin.DELETE("/menu-items/:id", h.deleteMenuItem)
	admin.POST("/branches", h.createBranch)
	admin.PUT("/branches/:id", h.updateBranch)
	admin.DELETE("/branches/:id", h.deleteBranch)
	admin.POST("/banners", h.createBanner)
	admin.PUT("/banners/:id", h.updateBanner)
	admin.DELETE("/banners/:id", h.deleteBanner)
}

func (h *Handler) listCategories(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.categories")
	defer span.End()

	categories, err := h.svc.Categories(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(categories).Build()
}

func (h *Handler) listMenuItems(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.menuItems")
	defer span.End()

	var categoryID int64
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid category_id", errorbank.WithCause(err))).Build()
		}
		categoryID = id
	}

	items, err := h.svc.MenuItems(ctx, categoryID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(items).Build()
}

func (h *Handler) listBranches(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.branches")
	defer span.End()

	branches, err := h.svc.Branches(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(branches).Build()
}

func (h *Handler) listBanners(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.banners")
	defer span.End()

	activeOnly := c.QueryParam("all") == ""
	banners, err := h.svc.Banners(ctx, activeOnly)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(banners).Build()
}

func (h *Handler) createCategory(c echo.Context) error {
	b := response.New(c)
	var req dto.CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	category, err := h.svc.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(category).Build()
}

func (h *Handler) updateCategory(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	var req dto.CategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	category, err := h.svc.UpdateCategory(c.Request().Context(), id, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(category).Build()
}

func (h *Handler) deleteCategory(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) createMenuItem(c echo.Context) error {
	b := response.New(c)
	var req dto.MenuItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	item, err := h.svc.CreateMenuItem(c.Request().Context(), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(item).Build()
}

func (h *Handler) updateMenuItem(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	var req dto.MenuItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	item, err := h.svc.UpdateMenuItem(c.Request().Context(), id, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(item).Build()
}

func (h *Handler) deleteMenuItem(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	if err := h.svc.DeleteMenuItem(c.Request().Context(), id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) createBranch(c echo.Context) error {
	b := response.New(c)
	var req dto.BranchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	branch, err := h.svc.CreateBranch(c.Request().Context(), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(branch).Build()
}

func (h *Handler) updateBranch(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	var req dto.BranchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	branch, err := h.svc.UpdateBranch(c.Request().Context(), id, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(branch).Build()
}

func (h *Handler) deleteBranch(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	if err := h.svc.DeleteBranch(c.Request().Context(), id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) createBanner(c echo.Context) error {
	b := response.New(c)
	var req dto.BannerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	banner, err := h.svc.CreateBanner(c.Request().Context(), req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(banner).Build()
}

func (h *Handler) updateBanner(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	var req dto.BannerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return b.WithError(err).Build()
	}
	banner, err := h.svc.UpdateBanner(c.Request().Context(), id, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(banner).Build()
}

func (h *Handler) deleteBanner(c echo.Context) error {
	b := response.New(c)
	id, err := pathID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	if err := h.svc.DeleteBanner(c.Request().Context(), id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	if err := c.Validate(req); err != nil {
		return errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	return nil
}
