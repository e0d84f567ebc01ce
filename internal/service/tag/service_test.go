package tag

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appdex/jobtrack-backend/internal/config"
	"github.com/appdex/jobtrack-backend/internal/domain"
	"github.com/appdex/jobtrack-backend/pkg/ctxutil"
)

type mockTagRepo struct {
	ListFunc         func(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error)
	GetByNameFunc    func(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)
	FindOrCreateFunc func(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error)
	DeleteFunc       func(ctx context.Context, userID, tagID uuid.UUID) error
	CountFunc        func(ctx context.Context, userID uuid.UUID) (int, error)
}

func (m *mockTagRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Tag, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockTagRepo) GetByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, userID, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockTagRepo) FindOrCreate(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	if m.FindOrCreateFunc != nil {
		return m.FindOrCreateFunc(ctx, userID, name)
	}
	return &domain.Tag{ID: uuid.New(), UserID: userID, Name: name}, nil
}

func (m *mockTagRepo) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, tagID)
	}
	return nil
}

func (m *mockTagRepo) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, userID)
	}
	return 0, nil
}

func newTestService(maxTags int) (*Service, *mockTagRepo) {
	repo := &mockTagRepo{}
	svc := NewService(slog.Default(), repo, config.TrackerConfig{MaxTagsPerUser: maxTags})
	return svc, repo
}

func authCtx() (context.Context, uuid.UUID) {
	userID := uuid.New()
	return ctxutil.WithUserID(context.Background(), userID), userID
}

func TestService_List(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(200)
	ctx, userID := authCtx()

	repo.ListFunc = func(_ context.Context, uid uuid.UUID) ([]domain.Tag, error) {
		assert.Equal(t, userID, uid)
		return []domain.Tag{{Name: "golang"}, {Name: "remote"}}, nil
	}

	tags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
}

func TestService_List_NoAuth(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(200)

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Create_New(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(200)
	ctx, _ := authCtx()

	var capturedName string
	repo.FindOrCreateFunc = func(_ context.Context, uid uuid.UUID, name string) (*domain.Tag, error) {
		capturedName = name
		return &domain.Tag{ID: uuid.New(), UserID: uid, Name: name}, nil
	}

	tag, err := svc.Create(ctx, "  golang  ")
	require.NoError(t, err)
	assert.Equal(t, "golang", capturedName, "name is trimmed before use")
	assert.Equal(t, "golang", tag.Name)
}

func TestService_Create_ExistingReturned(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(200)
	ctx, _ := authCtx()

	existing := &domain.Tag{ID: uuid.New(), Name: "golang"}
	repo.GetByNameFunc = func(_ context.Context, _ uuid.UUID, _ string) (*domain.Tag, error) {
		return existing, nil
	}

	created := false
	repo.FindOrCreateFunc = func(_ context.Context, _ uuid.UUID, _ string) (*domain.Tag, error) {
		created = true
		return nil, nil
	}

	tag, err := svc.Create(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, tag.ID)
	assert.False(t, created)
}

func TestService_Create_InvalidName(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(200)
	ctx, _ := authCtx()

	for _, name := range []string{"", "-starts-with-dash", "bad\nname", "héllo"} {
		_, err := svc.Create(ctx, name)
		require.Error(t, err, "name %q", name)
		require.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestService_Create_LimitReached(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(3)
	ctx, _ := authCtx()

	repo.CountFunc = func(_ context.Context, _ uuid.UUID) (int, error) {
		return 3, nil
	}

	_, err := svc.Create(ctx, "one-too-many")
	require.Error(t, err)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Errors[0].Field)
}

func TestService_Create_LimitDoesNotBlockExisting(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(1)
	ctx, _ := authCtx()

	existing := &domain.Tag{ID: uuid.New(), Name: "golang"}
	repo.GetByNameFunc = func(_ context.Context, _ uuid.UUID, _ string) (*domain.Tag, error) {
		return existing, nil
	}
	repo.CountFunc = func(_ context.Context, _ uuid.UUID) (int, error) {
		return 1, nil
	}

	tag, err := svc.Create(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, tag.ID)
}

func TestService_Create_LookupError(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(200)
	ctx, _ := authCtx()

	dbErr := errors.New("connection refused")
	repo.GetByNameFunc = func(_ context.Context, _ uuid.UUID, _ string) (*domain.Tag, error) {
		return nil, dbErr
	}

	_, err := svc.Create(ctx, "golang")
	require.ErrorIs(t, err, dbErr)
}

func TestService_Delete_Happy(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(200)
	ctx, userID := authCtx()

	tagID := uuid.New()
	deleted := false
	repo.DeleteFunc = func(_ context.Context, uid, tid uuid.UUID) error {
		assert.Equal(t, userID, uid)
		assert.Equal(t, tagID, tid)
		deleted = true
		return nil
	}

	require.NoError(t, svc.Delete(ctx, tagID))
	assert.True(t, deleted)
}

func TestService_Delete_Forbidden(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(200)
	ctx, _ := authCtx()

	repo.DeleteFunc = func(_ context.Context, _, _ uuid.UUID) error {
		return domain.ErrForbidden
	}

	err := svc.Delete(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestService_Delete_NoAuth(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(200)

	err := svc.Delete(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
