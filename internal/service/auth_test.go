package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefai/backend/internal/service"
	"github.com/pageza/chefai/backend/internal/testhelpers"
)

func strPtr(s string) *string { return &s }

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	user, err := auth.Register(ctx, service.RegisterInput{
		Username: "ana",
		Email:    "Ana@Example.com",
		FullName: "Ana K",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, err := auth.Login(ctx, "ana", "s3cret")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ana", claims.Username)

	_, err = auth.Login(ctx, "ana", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := auth.Register(ctx, service.RegisterInput{Username: "ana", Email: "ana@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, service.RegisterInput{Username: "ana", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, service.ErrDuplicate)
	_, err = auth.Register(ctx, service.RegisterInput{Username: "bob", Email: "ANA@example.com", Password: "x"})
	assert.ErrorIs(t, err, service.ErrDuplicate)
	_, err = auth.Register(ctx, service.RegisterInput{Username: "", Email: "c@example.com", Password: "x"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "ana")
	auth := service.NewAuthService(db, "test-secret", time.Hour)

	token, err := auth.Login(context.Background(), "ana", testhelpers.TestPassword)
	require.NoError(t, err)

	other := service.NewAuthService(db, "other-secret", time.Hour)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": user.ID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = auth.ValidateToken(unsigned)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestValidateTokenExpiry(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	testhelpers.CreateUser(t, db, "ana")
	auth := service.NewAuthService(db, "test-secret", time.Minute)

	token, err := auth.Login(context.Background(), "ana", testhelpers.TestPassword)
	require.NoError(t, err)

	later := service.NewAuthService(db, "test-secret", time.Minute)
	service.SetClock(later, func() time.Time { return time.Now().Add(2 * time.Minute) })

	_, err = later.ValidateToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestUpdateUserAndChangePassword(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "ana")
	testhelpers.CreateUser(t, db, "bob")
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	ctx := context.Background()

	updated, err := auth.UpdateUser(ctx, user.ID, service.UpdateUserInput{FullName: strPtr("Ana Novak")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Novak", updated.FullName)
	assert.Equal(t, "ana@example.com", updated.Email)

	_, err = auth.UpdateUser(ctx, user.ID, service.UpdateUserInput{Email: strPtr("bob@example.com")})
	assert.ErrorIs(t, err, service.ErrDuplicate)

	err = auth.ChangePassword(ctx, user.ID, "wrong", "new-pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, auth.ChangePassword(ctx, user.ID, testhelpers.TestPassword, "new-pass"))
	_, err = auth.Login(ctx, "ana", "new-pass")
	assert.NoError(t, err)
}

func TestGetUserInactive(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "ana")
	require.NoError(t, db.Model(&user).Update("is_active", false).Error)
	auth := service.NewAuthService(db, "test-secret", time.Hour)

	_, err := auth.GetUser(context.Background(), user.ID)
	assert.ErrorIs(t, err, service.ErrInactiveUser)

	_, err = auth.Login(context.Background(), "ana", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInactiveUser)
}
