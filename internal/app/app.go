package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/tableside/internal/cache"
	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/database"
	"github.com/Additional-Code/tableside/internal/logger"
	"github.com/Additional-Code/tableside/internal/messaging"
	"github.com/Additional-Code/tableside/internal/notify"
	"github.com/Additional-Code/tableside/internal/observability"
	repositorybranding "github.com/Additional-Code/tableside/internal/repository/branding"
	repositorycatalog "github.com/Additional-Code/tableside/internal/repository/catalog"
	repositoryorder "github.com/Additional-Code/tableside/internal/repository/order"
	repositoryuser "github.com/Additional-Code/tableside/internal/repository/user"
	"github.com/Additional-Code/tableside/internal/scheduler"
	grpcserver "github.com/Additional-Code/tableside/internal/server/grpc"
	httpserver "github.com/Additional-Code/tableside/internal/server/http"
	serviceauth "github.com/Additional-Code/tableside/internal/service/auth"
	servicebranding "github.com/Additional-Code/tableside/internal/service/branding"
	servicecatalog "github.com/Additional-Code/tableside/internal/service/catalog"
	serviceorder "github.com/Additional-Code/tableside/internal/service/order"
	"github.com/Additional-Code/tableside/internal/session"
	"github.com/Additional-Code/tableside/internal/tracker"
	transporthttp "github.com/Additional-Code/tableside/internal/transport/http"
	"github.com/Additional-Code/tableside/internal/worker"
	workerorder "github.com/Additional-Code/tableside/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositorybranding.Module,
	repositorycatalog.Module,
	repositoryorder.Module,
	repositoryuser.Module,
	serviceauth.Module,
	servicebranding.Module,
	servicecatalog.Module,
	serviceorder.Module,
	session.Module,
	notify.Module,
	tracker.Module,
)

// HTTP wires the serving stack on top of the core modules. The worker
// engine rides along so the in-process session trackers stay in sync with
// status events.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
	scheduler.Module,
	worker.Module,
	workerorder.Module,
)

// Worker exposes background worker processing on its own.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring.
var Module = HTTP
