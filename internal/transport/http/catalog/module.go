package catalog

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	authsvc "github.com/Additional-Code/tableside/internal/service/auth"
)

// Module wires HTTP catalog handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, auth *authsvc.Service) {
		Register(e, h, auth)
	}),
)
