package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/tableside/internal/database"
	"github.com/Additional-Code/tableside/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/tableside/repository/user")

// ErrNotFound is returned when a user is missing.
var ErrNotFound = errors.New("user not found")

// ErrNoCode is returned when no redeemable verification code exists.
var ErrNoCode = errors.New("no active verification code")

// Repository covers users, phone verification codes and the SMS log.
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

// Create persists a new user.
func (r *Repository) Create(ctx context.Context, u *entity.User) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.Create")
	defer span.End()
	_, err := r.writer.NewInsert().Model(u).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()
	u := new(entity.User)
	err := r.reader.NewSelect().Model(u).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return u, nil
}

// MarkPhoneVerified flips the verified flag for every account on the phone.
func (r *Repository) MarkPhoneVerified(ctx context.Context, phone string) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.MarkPhoneVerified")
	defer span.End()
	_, err := r.writer.NewUpdate().Model((*entity.User)(nil)).
		Set("phone_verified = ?", true).
		Where("phone = ?", phone).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
	}
	return err
}

// List returns all users, newest first.
func (r *Repository) List(ctx context.Context) ([]entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.List")
	defer span.End()
	var out []entity.User
	if err := r.reader.NewSelect().Model(&out).Order("created_at DESC").Scan(ctx); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// CreateCode stores a fresh verification code for the phone.
func (r *Repository) CreateCode(ctx context.Context, code *entity.VerificationCode) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.CreateCode", trace.WithAttributes(attribute.String("phone", code.Phone)))
	defer span.End()
	_, err := r.writer.NewInsert().Model(code).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// RedeemCode marks the matching unexpired, unused code as used. The
// conditional update makes redemption single-use even under concurrent
// checks.
func (r *Repository) RedeemCode(ctx context.Context, phone, code string, now time.Time) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.RedeemCode", trace.WithAttributes(attribute.String("phone", phone)))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.VerificationCode)(nil)).
		Set("used = ?", true).
		Where("phone = ?", phone).
		Where("code = ?", code).
		Where("used = ?", false).
		Where("expires_at > ?", now).
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
		return ErrNoCode
	}
	return nil
}

// ExpireCodes marks unused codes past their expiry as used so they can never
// be redeemed. Returns the number swept.
func (r *Repository) ExpireCodes(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.ExpireCodes")
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.VerificationCode)(nil)).
		Set("used = ?", true).
		Where("used = ?", false).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return res.RowsAffected()
}

// LogSMS records one delivery attempt.
func (r *Repository) LogSMS(ctx context.Context, log *entity.SMSLog) error {
	ctx, span := repoTracer.Start(ctx, "UserRepository.LogSMS")
	defer span.End()
	_, err := r.writer.NewInsert().Model(log).Exec(ctx)
	if err != nil {
		span.RecordError(err)
	}
	return err
}
