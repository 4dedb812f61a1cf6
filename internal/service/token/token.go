// Package token issues and validates the signed tokens used by the app:
// short-lived access cookies, DB-revocable refresh cookies, and one-hour
// password-reset tokens sent by email.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/models"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
	ResetTTL   = time.Hour
)

// ErrInvalidResetToken covers expired, tampered and reused reset tokens so
// user-facing handlers can show one generic message.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

type Service struct {
	DB     *gorm.DB
	Secret []byte
}

func (s *Service) SignAccessToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(AccessTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

func (s *Service) SignRefreshToken(userID uint) (string, error) {
	// jti keeps tokens unique even when two are signed in the same second;
	// the Token column has a unique index.
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(RefreshTTL).Unix(),
		"typ": "refresh",
		"jti": uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := t.SignedString(s.Secret)
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		Token:     raw,
		UserID:    userID,
		ExpiresAt: time.Now().Add(RefreshTTL).Unix(),
		Revoked:   false,
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return raw, nil
}

// IssueSession creates the access/refresh pair set as cookies after a
// successful login or signup.
func (s *Service) IssueSession(userID uint) (access, refresh string, err error) {
	access, err = s.SignAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.SignRefreshToken(userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *Service) ParseAccessToken(raw string) (uint, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return 0, err
	}
	if typ, ok := claims["typ"]; ok && typ != "" {
		return 0, fmt.Errorf("not an access token")
	}
	return subject(claims)
}

func (s *Service) ValidateRefresh(raw string) (uint, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid refresh token: %w", err)
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return 0, fmt.Errorf("not a refresh token")
	}

	var stored models.RefreshToken
	if err := s.DB.Where("token = ?", raw).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("refresh token not found")
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return 0, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return 0, errors.New("refresh token expired")
	}

	return subject(claims)
}

// RotateToken exchanges a valid refresh token for a fresh access/refresh pair.
// The consumed token is revoked so it cannot be replayed.
func (s *Service) RotateToken(raw string) (access, refresh string, userID uint, err error) {
	userID, err = s.ValidateRefresh(raw)
	if err != nil {
		return "", "", 0, err
	}
	access, refresh, err = s.IssueSession(userID)
	if err != nil {
		return "", "", 0, err
	}
	if err = s.RevokeRefresh(raw); err != nil {
		return "", "", 0, err
	}
	return access, refresh, userID, nil
}

func (s *Service) RevokeRefresh(raw string) error {
	if err := s.DB.Model(&models.RefreshToken{}).
		Where("token = ?", raw).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RevokeAllForUser invalidates every open session, used after a password reset.
func (s *Service) RevokeAllForUser(userID uint) error {
	if err := s.DB.Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Service) SignResetToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ResetTTL).Unix(),
		"typ": "pwreset",
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

// ValidateResetToken checks signature, expiry and token type, and rejects
// tokens issued at or before the user's last password change. That last check
// makes every reset link single-use without storing reset state.
func (s *Service) ValidateResetToken(raw string) (*models.User, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, ErrInvalidResetToken
	}
	if typ, ok := claims["typ"]; !ok || typ != "pwreset" {
		return nil, ErrInvalidResetToken
	}
	userID, err := subject(claims)
	if err != nil {
		return nil, ErrInvalidResetToken
	}
	iatRaw, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrInvalidResetToken
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, ErrInvalidResetToken
	}
	if !time.Unix(int64(iatRaw), 0).After(user.PasswordChangedAt.Truncate(time.Second)) {
		return nil, ErrInvalidResetToken
	}

	return &user, nil
}

func (s *Service) parse(raw string) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !t.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("cannot parse claims")
	}
	return claims, nil
}

func subject(claims jwt.MapClaims) (uint, error) {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid subject claim")
	}
	return uint(sub), nil
}
