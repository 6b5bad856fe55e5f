package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	repo "github.com/Additional-Code/tableside/internal/repository/user"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

type mockUserStore struct {
	users     map[string]*entity.User
	codes     []*entity.VerificationCode
	smsLogs   []*entity.SMSLog
	verified  []string
	redeemErr error
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) MarkPhoneVerified(_ context.Context, phone string) error {
	m.verified = append(m.verified, phone)
	return nil
}

func (m *mockUserStore) CreateCode(_ context.Context, code *entity.VerificationCode) error {
	m.codes = append(m.codes, code)
	return nil
}

func (m *mockUserStore) RedeemCode(_ context.Context, phone, code string, now time.Time) error {
	return m.redeemErr
}

func (m *mockUserStore) LogSMS(_ context.Context, log *entity.SMSLog) error {
	m.smsLogs = append(m.smsLogs, log)
	return nil
}

type mockSMS struct {
	sent []string
	err  error
}

func (m *mockSMS) Send(_ context.Context, phone, body string) error {
	m.sent = append(m.sent, body)
	return m.err
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestService(store *mockUserStore, sms *mockSMS) *Service {
	return &Service{
		repo:     store,
		sms:      sms,
		logger:   zap.NewNop(),
		secret:   []byte("test-secret"),
		tokenTTL: time.Hour,
		codeTTL:  5 * time.Minute,
		now:      func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestLogin(t *testing.T) {
	store := &mockUserStore{users: map[string]*entity.User{
		"staff@example.com": {
			ID:           1,
			Email:        "staff@example.com",
			Name:         "Pat",
			Role:         entity.RoleStaff,
			PasswordHash: hashOf(t, "hunter2"),
		},
		"customer@example.com": {
			ID:           2,
			Email:        "customer@example.com",
			Role:         entity.RoleCustomer,
			PasswordHash: hashOf(t, "hunter2"),
		},
	}}
	svc := newTestService(store, &mockSMS{})
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		out, err := svc.Login(ctx, dto.LoginRequest{Email: "staff@example.com", Password: "hunter2"})
		require.NoError(t, err)
		assert.Equal(t, "staff", out.Role)
		assert.Equal(t, "Pat", out.Name)

		claims, err := svc.ParseToken(out.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.UserID)
		assert.Equal(t, "staff", claims.Role)
		assert.Equal(t, "staff@example.com", claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, dto.LoginRequest{Email: "staff@example.com", Password: "nope"})
		assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "hunter2"})
		assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
	})

	t.Run("customer has no console access", func(t *testing.T) {
		_, err := svc.Login(ctx, dto.LoginRequest{Email: "customer@example.com", Password: "hunter2"})
		assert.Equal(t, errorbank.KindForbidden, errorbank.From(err).Kind())
	})
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(&mockUserStore{}, &mockSMS{})
	_, err := svc.ParseToken("not-a-token")
	assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
}

func TestSendCode(t *testing.T) {
	store := &mockUserStore{}
	sms := &mockSMS{}
	svc := newTestService(store, sms)
	ctx := context.Background()

	require.NoError(t, svc.SendCode(ctx, "+15550100"))

	require.Len(t, store.codes, 1)
	code := store.codes[0]
	assert.Equal(t, "+15550100", code.Phone)
	assert.Len(t, code.Code, 6)
	assert.Equal(t, 5*time.Minute, code.ExpiresAt.Sub(code.CreatedAt))

	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0], code.Code)

	require.Len(t, store.smsLogs, 1)
	assert.True(t, store.smsLogs[0].Delivered)
}

func TestSendCodeDeliveryFailureIsLogged(t *testing.T) {
	store := &mockUserStore{}
	sms := &mockSMS{err: errors.New("gateway down")}
	svc := newTestService(store, sms)

	err := svc.SendCode(context.Background(), "+15550100")
	assert.Equal(t, errorbank.KindInternal, errorbank.From(err).Kind())

	require.Len(t, store.smsLogs, 1)
	assert.False(t, store.smsLogs[0].Delivered)
	assert.Equal(t, "gateway down", store.smsLogs[0].Error)
}

func TestSendCodeRequiresPhone(t *testing.T) {
	svc := newTestService(&mockUserStore{}, &mockSMS{})
	err := svc.SendCode(context.Background(), "")
	assert.Equal(t, errorbank.KindBadRequest, errorbank.From(err).Kind())
}

func TestCheckCode(t *testing.T) {
	t.Run("success marks phone verified", func(t *testing.T) {
		store := &mockUserStore{}
		svc := newTestService(store, &mockSMS{})

		require.NoError(t, svc.CheckCode(context.Background(), "+15550100", "123456"))
		assert.Equal(t, []string{"+15550100"}, store.verified)
	})

	t.Run("invalid code", func(t *testing.T) {
		store := &mockUserStore{redeemErr: repo.ErrNoCode}
		svc := newTestService(store, &mockSMS{})

		err := svc.CheckCode(context.Background(), "+15550100", "000000")
		assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
		assert.Empty(t, store.verified)
	})
}
