package branding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Additional-Code/tableside/internal/dto"
	"github.com/Additional-Code/tableside/internal/entity"
	repo "github.com/Additional-Code/tableside/internal/repository/branding"
	"github.com/Additional-Code/tableside/pkg/errorbank"
)

type mockBrandingStore struct {
	record    *entity.SiteBranding
	rotateErr error
}

func (m *mockBrandingStore) Get(context.Context) (*entity.SiteBranding, error) {
	if m.record == nil {
		return nil, repo.ErrNotFound
	}
	clone := *m.record
	return &clone, nil
}

func (m *mockBrandingStore) Create(_ context.Context, b *entity.SiteBranding) error {
	b.ID = 1
	clone := *b
	m.record = &clone
	return nil
}

func (m *mockBrandingStore) UpdateDisplay(_ context.Context, _ int64, name, logoURI string, now time.Time) error {
	m.record.Name = name
	m.record.LogoURI = logoURI
	m.record.UpdatedAt = now
	return nil
}

func (m *mockBrandingStore) RotateManagerCode(_ context.Context, _ int64, newHash string, expectedVersion int64, now time.Time) error {
	if m.rotateErr != nil {
		return m.rotateErr
	}
	if m.record.Version != expectedVersion {
		return repo.ErrVersionMoved
	}
	m.record.ManagerCodeHash = newHash
	m.record.Version++
	m.record.UpdatedAt = now
	return nil
}

func newTestService(store *mockBrandingStore) *Service {
	return &Service{
		repo:       store,
		logger:     zap.NewNop(),
		bcryptCost: bcrypt.MinCost,
		now:        func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func seeded(t *testing.T, code string) *mockBrandingStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	require.NoError(t, err)
	return &mockBrandingStore{record: &entity.SiteBranding{
		ID:              1,
		Name:            "Tableside",
		ManagerCodeHash: string(hash),
		Version:         3,
	}}
}

func TestGetBootstrapsOnFirstCall(t *testing.T) {
	store := &mockBrandingStore{}
	svc := newTestService(store)

	b, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tableside", b.Name)
	assert.Equal(t, int64(1), b.Version)
	assert.NotEmpty(t, b.ManagerCodeHash)
	require.NotNil(t, store.record)

	// Default unlock code works until rotated.
	assert.NoError(t, svc.VerifyManagerCode(context.Background(), "0000"))
}

func TestUpdateDisplay(t *testing.T) {
	store := seeded(t, "4321")
	svc := newTestService(store)

	b, err := svc.UpdateDisplay(context.Background(), dto.BrandingRequest{Name: "Noodle House", LogoURI: "/logo.png"})
	require.NoError(t, err)
	assert.Equal(t, "Noodle House", b.Name)
	assert.Equal(t, "Noodle House", store.record.Name)
	// Display edits never touch the secret.
	assert.Equal(t, int64(3), store.record.Version)
}

func TestVerifyManagerCode(t *testing.T) {
	svc := newTestService(seeded(t, "4321"))
	ctx := context.Background()

	assert.NoError(t, svc.VerifyManagerCode(ctx, "4321"))

	err := svc.VerifyManagerCode(ctx, "9999")
	assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
}

func TestRotateManagerCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := seeded(t, "4321")
		svc := newTestService(store)
		ctx := context.Background()

		require.NoError(t, svc.RotateManagerCode(ctx, dto.RotateManagerCodeRequest{
			CurrentCode: "4321",
			NewCode:     "8765",
		}))
		assert.Equal(t, int64(4), store.record.Version)

		assert.NoError(t, svc.VerifyManagerCode(ctx, "8765"))
		err := svc.VerifyManagerCode(ctx, "4321")
		assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
	})

	t.Run("wrong current code", func(t *testing.T) {
		svc := newTestService(seeded(t, "4321"))
		err := svc.RotateManagerCode(context.Background(), dto.RotateManagerCodeRequest{
			CurrentCode: "0000",
			NewCode:     "8765",
		})
		assert.Equal(t, errorbank.KindUnauthorized, errorbank.From(err).Kind())
	})

	t.Run("concurrent rotation conflicts", func(t *testing.T) {
		store := seeded(t, "4321")
		store.rotateErr = repo.ErrVersionMoved
		svc := newTestService(store)

		err := svc.RotateManagerCode(context.Background(), dto.RotateManagerCodeRequest{
			CurrentCode: "4321",
			NewCode:     "8765",
		})
		assert.Equal(t, errorbank.KindConflict, errorbank.From(err).Kind())
	})
}
