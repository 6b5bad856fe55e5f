package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/tableside/internal/config"
	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	repo "github.com/Additional-Code/tableside/internal/repository/user"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/tableside/service/auth")

// SMSSender delivers a verification code to a phone. The gateway itself is
// an opaque collaborator; implementations live at the edge.
type SMSSender interface {
	Send(ctx context.Context, phone, body string) error
}

// Store is the slice of the user repository the service needs.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	MarkPhoneVerified(ctx context.Context, phone string) error
	CreateCode(ctx context.Context, code *entity.VerificationCode) error
	RedeemCode(ctx context.Context, phone, code string, now time.Time) error
	LogSMS(ctx context.Context, log *entity.SMSLog) error
}

// Claims is the JWT payload for staff console access.
type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles staff login and the phone verification code flow.
type Service struct {
	repo     Store
	sms      SMSSender
	logger   *zap.Logger
	secret   []byte
	tokenTTL time.Duration
	codeTTL  time.Duration
	now      func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	SMS        SMSSender
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:     p.Repository,
		sms:      p.SMS,
		logger:   p.Logger,
		secret:   []byte(p.Config.Auth.JWTSecret),
		tokenTTL: p.Config.Auth.TokenTTL,
		codeTTL:  p.Config.Orders.CodeTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Module provides the auth service and the default SMS sender to Fx.
var Module = fx.Options(
	fx.Provide(NewLogSMSSender),
	fx.Provide(NewService),
)

// Login verifies credentials for a staff or admin account and issues a JWT.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := serviceTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.Unauthorized("invalid credentials")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load account", errorbank.WithCause(err))
	}

	if user.Role != entity.RoleStaff && user.Role != entity.RoleAdmin {
		return nil, errorbank.Forbidden("account has no console access")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, errorbank.Unauthorized("invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, errorbank.Internal("failed to issue token", errorbank.WithCause(err))
	}
	return &dto.LoginResponse{Token: token, Role: string(user.Role), Name: user.Name}, nil
}

// ParseToken validates a JWT and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errorbank.Unauthorized("invalid token", errorbank.WithCause(err))
	}
	return claims, nil
}

func (s *Service) issueToken(user *entity.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// SendCode generates a six digit verification code, stores it with the
// configured expiry and hands it to the SMS collaborator. Every delivery
// attempt lands in the SMS log regardless of outcome.
func (s *Service) SendCode(ctx context.Context, phone string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.SendCode", trace.WithAttributes(attribute.String("phone", phone)))
	defer span.End()

	if phone == "" {
		return errorbank.BadRequest("phone is required")
	}

	code, err := randomCode()
	if err != nil {
		return errorbank.Internal("failed to generate code", errorbank.WithCause(err))
	}

	now := s.now()
	record := &entity.VerificationCode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if err := s.repo.CreateCode(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to store code", errorbank.WithCause(err))
	}

	body := fmt.Sprintf("Your verification code is %s", code)
	sendErr := s.sms.Send(ctx, phone, body)

	log := &entity.SMSLog{Phone: phone, Body: body, Delivered: sendErr == nil, CreatedAt: now}
	if sendErr != nil {
		log.Error = sendErr.Error()
	}
	if err := s.repo.LogSMS(ctx, log); err != nil {
		s.logger.Warn("sms log write failed", zap.Error(err))
	}

	if sendErr != nil {
		return errorbank.Internal("failed to deliver code", errorbank.WithCause(sendErr))
	}
	return nil
}

// CheckCode redeems a verification code. Codes are single-use and expire
// after the configured TTL; both failures look identical to the caller.
func (s *Service) CheckCode(ctx context.Context, phone, code string) error {
	ctx, span := serviceTracer.Start(ctx, "AuthService.CheckCode", trace.WithAttributes(attribute.String("phone", phone)))
	defer span.End()

	if err := s.repo.RedeemCode(ctx, phone, code, s.now()); err != nil {
		if errors.Is(err, repo.ErrNoCode) {
			return errorbank.Unauthorized("invalid or expired code")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to redeem code", errorbank.WithCause(err))
	}

	if err := s.repo.MarkPhoneVerified(ctx, phone); err != nil {
		s.logger.Warn("phone verified flag update failed", zap.String("phone", phone), zap.Error(err))
	}
	return nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// LogSMSSender is the development SMS collaborator: it only logs. A real
// gateway client satisfies SMSSender at deploy time.
type LogSMSSender struct {
	logger *zap.Logger
}

// NewLogSMSSender builds the logging sender.
func NewLogSMSSender(logger *zap.Logger) SMSSender {
	return &LogSMSSender{logger: logger}
}

// Send logs the message instead of delivering it.
func (l *LogSMSSender) Send(_ context.Context, phone, body string) error {
	l.logger.Info("sms send", zap.String("phone", phone), zap.String("body", body))
	return nil
}
