package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/CCxPL/task-management-system/internal/auth/domain"
	"github.com/CCxPL/task-management-system/internal/auth/repository"
	"github.com/CCxPL/task-management-system/internal/config"
	dbpkg "github.com/CCxPL/task-management-system/pkg/db"
)

func newTestService(t *testing.T, cfg config.Config) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo, sessionRepo := repository.New(db)
	return New(zaptest.NewLogger(t), cfg, repo, sessionRepo, node), db
}

func createUser(t *testing.T, svc domain.Service, email, pass string) *domain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Email:     email,
		Password:  pass,
		FirstName: "Test",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})

	user := createUser(t, svc, "  Admin@Example.COM ", "correct-horse")
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Email: "not-an-email", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "a@example.com", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	createUser(t, svc, "taken@example.com", "correct-horse")
	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Email: "taken@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	ctx := context.Background()

	user := createUser(t, svc, "user@example.com", "correct-horse")

	result, err := svc.Login(ctx, domain.LoginRequest{Email: "User@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.RawToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	session, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	ctx := context.Background()

	createUser(t, svc, "user@example.com", "correct-horse")

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "wrong-horse"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown users read the same as a bad password.
	_, err = svc.Login(ctx, domain.LoginRequest{Email: "ghost@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	ctx := context.Background()

	createUser(t, svc, "user@example.com", "correct-horse")
	result, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.RawToken))

	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc, db := newTestService(t, config.Config{})
	ctx := context.Background()

	createUser(t, svc, "user@example.com", "correct-horse")
	result, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	// Backdate the session past its expiry.
	err = db.Model(&domain.Session{}).
		Where("id = ?", result.SessionID).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAuthenticateGarbageToken(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})

	_, err := svc.Authenticate(context.Background(), "not-a-real-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	_, err = svc.Authenticate(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t, config.Config{})
	ctx := context.Background()

	user := createUser(t, svc, "user@example.com", "correct-horse")

	err := svc.ChangePassword(ctx, user.ID, "wrong-horse", "newer-horse")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID, "correct-horse", "tiny")
	assert.ErrorIs(t, err, domain.ErrInvalidPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "correct-horse", "newer-horse"))

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "newer-horse"})
	require.NoError(t, err)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	svc, db := newTestService(t, config.Config{})
	ctx := context.Background()

	user := createUser(t, svc, "user@example.com", "correct-horse")
	err := db.Model(&domain.User{}).Where("id = ?", user.ID).Update("is_active", false).Error
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}
