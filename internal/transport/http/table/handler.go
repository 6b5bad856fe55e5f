package table

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/qr"
	"github.com/Additional-Code/tableside/internal/transport/http/response"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

// Handler serves printable table QR codes pointing at the ordering page.
type Handler struct {
	baseURL    string
	tableCount int
}

// NewHandler constructs a table Handler.
func NewHandler(cfg config.Config) *Handler {
	return &Handler{
		baseURL:    cfg.Orders.EntryBaseURL,
		tableCount: cfg.Orders.TableCount,
	}
}

// Module wires the table QR endpoint.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		e.GET("/tables/:number/qr", h.qrCode)
	}),
)

func (h *Handler) qrCode(c echo.Context) error {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 || number > h.tableCount {
		return response.New(c).WithError(errorbank.BadRequest("invalid table number")).Build()
	}

	size := qr.DefaultSize
	if raw := c.QueryParam("size"); raw != "" {
		if s, err := strconv.Atoi(raw); err == nil && s > 0 && s <= 1024 {
			size = s
		}
	}

	img, err := qr.Encode(qr.TableURL(h.baseURL, number), size)
	if err != nil {
		return response.New(c).WithError(errorbank.Internal("failed to render qr", errorbank.WithCause(err))).Build()
	}
	return c.Blob(http.StatusOK, "image/png", img)
}
