package http

import (
	"go.uber.org/fx"

	authtransport "github.com/Additional-Code/tableside/internal/transport/http/auth"
	brandingtransport "github.com/Additional-Code/tableside/internal/transport/http/branding"
	catalogtransport "github.com/Additional-Code/tableside/internal/transport/http/catalog"
	ordertransport "github.com/Additional-Code/tableside/internal/transport/http/order"
	tabletransport "github.com/Additional-Code/tableside/internal/transport/http/table"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	authtransport.Module,
	brandingtransport.Module,
	catalogtransport.Module,
	ordertransport.Module,
	tabletransport.Module,
)
