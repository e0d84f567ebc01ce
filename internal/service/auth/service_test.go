package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/appdex/jobtrack-backend/internal/config"
	"github.com/appdex/jobtrack-backend/internal/domain"
)

type mockUserRepo struct {
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	CreateFunc     func(ctx context.Context, user *domain.User) (*domain.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

type mockJWTManager struct {
	GenerateAccessTokenFunc func(userID uuid.UUID, role string) (string, error)
}

func (m *mockJWTManager) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, role)
	}
	return "token-" + userID.String(), nil
}

func newTestService() (*Service, *mockUserRepo, *mockJWTManager) {
	users := &mockUserRepo{}
	jwt := &mockJWTManager{}
	cfg := config.AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef", JWTIssuer: "jobtrack", AccessTokenTTL: time.Hour}
	return NewService(slog.Default(), users, jwt, cfg), users, jwt
}

func validRegister() RegisterInput {
	return RegisterInput{
		Email:    "dev@example.com",
		Username: "dev",
		Password: "correct horse battery",
	}
}

func TestService_Register_Happy(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestService()

	var captured *domain.User
	users.CreateFunc = func(_ context.Context, u *domain.User) (*domain.User, error) {
		captured = u
		return u, nil
	}

	in := validRegister()
	in.Email = "  Dev@Example.COM "

	result, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "dev@example.com", captured.Email, "email is lowercased and trimmed")
	assert.Equal(t, domain.UserRoleUser, captured.Role)

	// Stored hash verifies against the original password.
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(captured.PasswordHash), []byte("correct horse battery")))
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestService()

	users.CreateFunc = func(_ context.Context, _ *domain.User) (*domain.User, error) {
		return nil, domain.ErrAlreadyExists
	}

	_, err := svc.Register(context.Background(), validRegister())
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestService_Register_Validation(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"missing username", func(in *RegisterInput) { in.Username = "" }, "username"},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := validRegister()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			require.Error(t, err)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Errors[0].Field)
		})
	}
}

func TestService_Login_Happy(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestService()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{ID: uuid.New(), Email: "dev@example.com", PasswordHash: string(hash), Role: domain.UserRoleUser}
	users.GetByEmailFunc = func(_ context.Context, email string) (*domain.User, error) {
		assert.Equal(t, "dev@example.com", email)
		return user, nil
	}

	result, err := svc.Login(context.Background(), LoginInput{Email: "Dev@Example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)
}

func TestService_Login_WrongPassword(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestService()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	users.GetByEmailFunc = func(_ context.Context, _ string) (*domain.User, error) {
		return &domain.User{ID: uuid.New(), PasswordHash: string(hash)}, nil
	}

	_, err = svc.Login(context.Background(), LoginInput{Email: "dev@example.com", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestService()

	users.GetByEmailFunc = func(_ context.Context, _ string) (*domain.User, error) {
		return nil, domain.ErrNotFound
	}

	// Same error as a wrong password so callers cannot probe accounts.
	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Login_RepoError(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestService()

	dbErr := errors.New("connection refused")
	users.GetByEmailFunc = func(_ context.Context, _ string) (*domain.User, error) {
		return nil, dbErr
	}

	_, err := svc.Login(context.Background(), LoginInput{Email: "dev@example.com", Password: "whatever"})
	require.ErrorIs(t, err, dbErr)
	require.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Me(t *testing.T) {
	t.Parallel()
	svc, users, _ := newTestService()

	user := &domain.User{ID: uuid.New(), Email: "dev@example.com"}
	users.GetByIDFunc = func(_ context.Context, id uuid.UUID) (*domain.User, error) {
		assert.Equal(t, user.ID, id)
		return user, nil
	}

	got, err := svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}
