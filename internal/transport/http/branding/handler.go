package branding

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	service "github.com/Additional-Code/tableside/internal/service/branding"
	"github.com/Additional-Code/tableside/internal/transport/http/middleware"
	"github.com/Additional-Code/tableside/internal/transport/http/response"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tableside/transport/http/branding")

// Handler exposes the site branding record and the manager code flow. The
// code hash itself never leaves the service layer.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a branding Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts branding routes. Verification is open so the staff
// console can be unlocked from any table device; mutation is admin only.
func Register(e *echo.Echo, h *Handler, auth middleware.TokenParser) {
	e.GET("/branding", h.get)
	e.POST("/branding/verify-code", h.verifyCode)

	admin := e.Group("/admin/branding", middleware.JWT(auth), middleware.RequireRole(string(entity.RoleAdmin)))
	admin.PUT("", h.update)
	admin.POST("/rotate-code", h.rotateCode)
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)
	ctx, span := httpTracer.Start(c.Request().Context(), "branding.get")
	defer span.End()

	branding, err := h.svc.Get(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]any{
		"name":     branding.Name,
		"logo_uri": branding.LogoURI,
	}).Build()
}

func (h *Handler) verifyCode(c echo.Context) error {
	b := response.New(c)

	var req struct {
		Code string `json:"code" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "branding.verifyCode")
	defer span.End()

	if err := h.svc.VerifyManagerCode(ctx, req.Code); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]bool{"valid": true}).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	var req dto.BrandingRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "branding.update")
	defer span.End()

	branding, err := h.svc.UpdateDisplay(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]any{
		"name":     branding.Name,
		"logo_uri": branding.LogoURI,
	}).Build()
}

func (h *Handler) rotateCode(c echo.Context) error {
	b := response.New(c)

	var req dto.RotateManagerCodeRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "branding.rotateCode")
	defer span.End()

	if err := h.svc.RotateManagerCode(ctx, req); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}
