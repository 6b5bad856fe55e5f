package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/Additional-Code/tableside/internal/dto"
	service "github.com/Additional-Code/tableside/internal/service/auth"
	"github.com/Additional-Code/tableside/internal/transport/http/response"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/tableside/transport/http/auth")

// Handler exposes staff login and the phone verification flow.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an auth Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts auth routes.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/phone/send-code", h.sendCode)
	g.POST("/phone/check-code", h.checkCode)
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	out, err := h.svc.Login(ctx, req)
	if err != nil {
		return b.WithError(err).Build()
	}

	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    out.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return b.WithData(out).Build()
}

func (h *Handler) sendCode(c echo.Context) error {
	b := response.New(c)

	var req dto.SendCodeRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.sendCode")
	defer span.End()

	if err := h.svc.SendCode(ctx, req.Phone); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusAccepted).Build()
}

func (h *Handler) checkCode(c echo.Context) error {
	b := response.New(c)

	var req dto.CheckCodeRequest
	if err := c.Bind(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&req); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.checkCode")
	defer span.End()

	if err := h.svc.CheckCode(ctx, req.Phone, req.Code); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]bool{"verified": true}).Build()
}
