// internal/domain/user/service_test.go
package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiry = 15 * time.Minute
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	cfg.Security.BcryptCost = 4 // min cost keeps the suite fast

	return NewService(db, cfg), db
}

func TestRegister(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{
		Email:    "Shopper@Example.com",
		Password: "Secret123!",
		Name:     "Shopper",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "shopper@example.com", resp.User.Email, "email must be stored lowercased")

	var stored User
	require.NoError(t, db.First(&stored, resp.User.ID).Error)
	require.NotEqual(t, "Secret123!", stored.Password, "password must be hashed at rest")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Email: "a@b.com", Password: "Secret123!"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{Email: "A@B.COM", Password: "Secret123!"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{Email: "a@b.com", Password: "Secret123!"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "a@b.com", Password: "Secret123!"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, &LoginRequest{Email: "a@b.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@b.com", Password: "Secret123!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &RegisterRequest{Email: "a@b.com", Password: "Secret123!", Name: "Old"})
	require.NoError(t, err)

	newName := "New"
	updated, err := svc.UpdateProfile(ctx, resp.User.ID, &UpdateProfileRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "New", updated.Name)

	newPassword := "Another123!"
	_, err = svc.UpdateProfile(ctx, resp.User.ID, &UpdateProfileRequest{Password: &newPassword})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "a@b.com", Password: "Another123!"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, 999, &UpdateProfileRequest{Name: &newName})
	require.ErrorIs(t, err, ErrNotFound)
}
