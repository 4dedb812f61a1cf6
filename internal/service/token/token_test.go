package token

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/models"
)

func newTestService(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return &Service{DB: db, Secret: []byte("test-secret")}
}

func createUser(t *testing.T, db *gorm.DB) *models.User {
	user := models.User{
		Email:             "seller@example.com",
		PasswordHash:      "x",
		PasswordChangedAt: time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestService(t)

	raw, err := s.SignAccessToken(42)
	require.NoError(t, err)

	userID, err := s.ParseAccessToken(raw)
	require.NoError(t, err)
	require.Equal(t, uint(42), userID)
}

func TestParseAccessTokenRejectsRefreshToken(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	refresh, err := s.SignRefreshToken(user.ID)
	require.NoError(t, err)

	_, err = s.ParseAccessToken(refresh)
	require.Error(t, err)
}

func TestRotateToken(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	_, refresh, err := s.IssueSession(user.ID)
	require.NoError(t, err)

	access2, refresh2, userID, err := s.RotateToken(refresh)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
	require.NotEmpty(t, access2)
	require.NotEmpty(t, refresh2)

	// the consumed token is revoked, the new one is live
	_, err = s.ValidateRefresh(refresh)
	require.Error(t, err)
	userID, err = s.ValidateRefresh(refresh2)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
}

func TestValidateRefreshRevoked(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	refresh, err := s.SignRefreshToken(user.ID)
	require.NoError(t, err)

	require.NoError(t, s.RevokeRefresh(refresh))

	_, err = s.ValidateRefresh(refresh)
	require.Error(t, err)
}

func TestRevokeAllForUser(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	refresh1, err := s.SignRefreshToken(user.ID)
	require.NoError(t, err)
	refresh2, err := s.SignRefreshToken(user.ID)
	require.NoError(t, err)

	require.NoError(t, s.RevokeAllForUser(user.ID))

	_, err = s.ValidateRefresh(refresh1)
	require.Error(t, err)
	_, err = s.ValidateRefresh(refresh2)
	require.Error(t, err)
}

func TestResetTokenRoundTrip(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	raw, err := s.SignResetToken(user.ID)
	require.NoError(t, err)

	got, err := s.ValidateResetToken(raw)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.Email, got.Email)
}

func TestResetTokenExpired(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	// Well-formed but past its validity window.
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
		"typ": "pwreset",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	require.NoError(t, err)

	_, err = s.ValidateResetToken(raw)
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetTokenTampered(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	raw, err := s.SignResetToken(user.ID)
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = s.ValidateResetToken(tampered)
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetTokenWrongType(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	access, err := s.SignAccessToken(user.ID)
	require.NoError(t, err)

	_, err = s.ValidateResetToken(access)
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetTokenInvalidAfterPasswordChange(t *testing.T) {
	s := newTestService(t)
	user := createUser(t, s.DB)

	raw, err := s.SignResetToken(user.ID)
	require.NoError(t, err)

	require.NoError(t, s.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_changed_at", time.Now().Add(time.Minute)).Error)

	_, err = s.ValidateResetToken(raw)
	require.ErrorIs(t, err, ErrInvalidResetToken)
}
