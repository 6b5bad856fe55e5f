package branding

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	repo "github.com/Additional-Code/tableside/internal/repository/branding"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tableside/service/branding")

// Store is the slice of the branding repository the service needs.
type Store interface {
	Get(ctx context.Context) (*entity.SiteBranding, error)
	Create(ctx context.Context, b *entity.SiteBranding) error
	UpdateDisplay(ctx context.Context, id int64, name, logoURI string, now time.Time) error
	RotateManagerCode(ctx context.Context, id int64, newHash string, expectedVersion int64, now time.Time) error
}

// Service manages the site branding record and the manager code secret.
type Service struct {
	repo       Store
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:       p.Repository,
		logger:     p.Logger,
		bcryptCost: p.Config.Auth.BcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Module provides the branding service to Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)

// Get returns the branding record, creating a default one on first call.
func (s *Service) Get(ctx context.Context) (*entity.SiteBranding, error) {
	ctx, span := serviceTracer.Start(ctx, "BrandingService.Get")
	defer span.End()

	b, err := s.repo.Get(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		return s.bootstrap(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load branding", errorbank.WithCause(err))
	}
	return b, nil
}

// UpdateDisplay rewrites the customer-facing name and logo.
func (s *Service) UpdateDisplay(ctx context.Context, req dto.BrandingRequest) (*entity.SiteBranding, error) {
	ctx, span := serviceTracer.Start(ctx, "BrandingService.UpdateDisplay")
	defer span.End()

	b, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDisplay(ctx, b.ID, req.Name, req.LogoURI, s.now()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update branding", errorbank.WithCause(err))
	}
	b.Name = req.Name
	b.LogoURI = req.LogoURI
	return b, nil
}

// VerifyManagerCode checks a candidate unlock code against the stored hash.
func (s *Service) VerifyManagerCode(ctx context.Context, code string) error {
	ctx, span := serviceTracer.Start(ctx, "BrandingService.VerifyManagerCode")
	defer span.End()

	b, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(b.ManagerCodeHash), []byte(code)) != nil {
		return errorbank.Unauthorized("invalid manager code")
	}
	return nil
}

// RotateManagerCode replaces the unlock code after verifying the current one.
// The swap is conditioned on the record version, so two concurrent rotations
// never silently overwrite each other.
func (s *Service) RotateManagerCode(ctx context.Context, req dto.RotateManagerCodeRequest) error {
	ctx, span := serviceTracer.Start(ctx, "BrandingService.RotateManagerCode")
	defer span.End()

	b, err := s.Get(ctx)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(b.ManagerCodeHash), []byte(req.CurrentCode)) != nil {
		return errorbank.Unauthorized("invalid manager code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewCode), s.bcryptCost)
	if err != nil {
		return errorbank.Internal("failed to hash code", errorbank.WithCause(err))
	}
	if err := s.repo.RotateManagerCode(ctx, b.ID, string(hash), b.Version, s.now()); err != nil {
		if errors.Is(err, repo.ErrVersionMoved) {
			return errorbank.Conflict("manager code changed concurrently, retry")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to rotate code", errorbank.WithCause(err))
	}
	s.logger.Info("manager code rotated", zap.Int64("version", b.Version+1))
	return nil
}

func (s *Service) bootstrap(ctx context.Context) (*entity.SiteBranding, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("0000"), s.bcryptCost)
	if err != nil {
		return nil, errorbank.Internal("failed to hash default code", errorbank.WithCause(err))
	}
	b := &entity.SiteBranding{
		Name:            "Tableside",
		ManagerCodeHash: string(hash),
		Version:         1,
		UpdatedAt:       s.now(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, errorbank.Internal("failed to create branding", errorbank.WithCause(err))
	}
	s.logger.Warn("branding bootstrapped with default manager code")
	return b, nil
}
