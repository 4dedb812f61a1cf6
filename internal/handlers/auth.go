package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/hash"
	"github.com/mstepanov/dropmate/internal/logging"
	"github.com/mstepanov/dropmate/internal/mail"
	"github.com/mstepanov/dropmate/internal/models"
	"github.com/mstepanov/dropmate/internal/mykafka"
	"github.com/mstepanov/dropmate/internal/service/token"
)

// Wrong-password and unknown-email failures share this message so responses
// never reveal whether an account exists.
const genericLoginError = "Invalid email or password."

const forgotPasswordNotice = "If an account exists for that address, a reset link is on its way."

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Mailer   mail.Mailer
	Producer *mykafka.Producer
	BaseURL  string

	// SecureCookies marks session cookies Secure; disabled for plain-HTTP dev.
	SecureCookies bool
}

func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", map[string]any{})
}

func (h *AuthHandler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_login")

	email := normalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		l.Warn("login_failed", "reason", "unknown_email")
		return c.Render(http.StatusUnauthorized, "login.html", map[string]any{
			"Error": genericLoginError,
			"Email": email,
		})
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong_password", "user_id", user.ID)
		return c.Render(http.StatusUnauthorized, "login.html", map[string]any{
			"Error": genericLoginError,
			"Email": email,
		})
	}

	if err := h.startSession(c, user.ID); err != nil {
		l.Error("login_failed", "reason", "token_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, "user_events", user.ID, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) SignupPage(c echo.Context) error {
	return c.Render(http.StatusOK, "signup.html", map[string]any{})
}

func (h *AuthHandler) Signup(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_signup")

	email := normalizeEmail(c.FormValue("email"))
	password := c.FormValue("password")
	fullName := strings.TrimSpace(c.FormValue("full_name"))

	if email == "" || len(password) < 8 {
		return c.Render(http.StatusBadRequest, "signup.html", map[string]any{
			"Error":    "Please provide an email and a password of at least 8 characters.",
			"Email":    email,
			"FullName": fullName,
		})
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_failed", "reason", "cannot hash password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		FullName:     fullName,
		Plan:         "starter",
		SKULimit:     25,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// Unique-violation details stay in the log; the page shows the same
		// generic text as any other signup problem.
		l.Warn("signup_failed", "reason", "db_error", "error", err)
		return c.Render(http.StatusConflict, "signup.html", map[string]any{
			"Error":    "Could not create an account with that email.",
			"Email":    email,
			"FullName": fullName,
		})
	}

	if err := h.startSession(c, user.ID); err != nil {
		l.Error("signup_failed", "reason", "token_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.Mailer.Send(c.Request().Context(), user.Email, "Welcome to dropmate", "welcome.txt", map[string]any{
		"FullName":     user.FullName,
		"Plan":         user.Plan,
		"SKULimit":     user.SKULimit,
		"DashboardURL": h.BaseURL + "/dashboard",
	}); err != nil {
		l.Error("welcome_mail_failed", "error", err)
	}

	publish(c, h.Producer, "user_events", user.ID, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
		"plan":    user.Plan,
	})

	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if rfCookie, err := c.Cookie("refreshToken"); err == nil {
		if err := h.Tokens.RevokeRefresh(rfCookie.Value); err != nil {
			logging.FromContext(c.Request().Context()).Error("logout_revoke_failed", "error", err)
		}
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie("accessToken", "", "/", expired, h.SecureCookies))
	c.SetCookie(CreateCookie("refreshToken", "", "/", expired, h.SecureCookies))

	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) ForgotPasswordPage(c echo.Context) error {
	return c.Render(http.StatusOK, "forgot_password.html", map[string]any{})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_forgot")

	email := normalizeEmail(c.FormValue("email"))

	// The notice is identical whether or not the account exists.
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err == nil {
		resetToken, err := h.Tokens.SignResetToken(user.ID)
		if err != nil {
			l.Error("reset_token_sign_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		if err := h.Mailer.Send(c.Request().Context(), user.Email, "Reset your dropmate password", "password_reset.txt", map[string]any{
			"FullName": user.FullName,
			"ResetURL": h.BaseURL + "/reset-password/" + resetToken,
		}); err != nil {
			l.Error("reset_mail_failed", "error", err)
		}

		publish(c, h.Producer, "user_events", user.ID, map[string]any{
			"type":    "password_reset_requested",
			"user_id": user.ID,
		})
	} else {
		l.Info("forgot_password_unknown_email")
	}

	return c.Render(http.StatusOK, "forgot_password.html", map[string]any{
		"Flash": forgotPasswordNotice,
	})
}

func (h *AuthHandler) ResetPasswordPage(c echo.Context) error {
	raw := c.Param("token")
	if _, err := h.Tokens.ValidateResetToken(raw); err != nil {
		return c.Render(http.StatusBadRequest, "forgot_password.html", map[string]any{
			"Error": "That reset link is invalid or has expired. Please request a new one.",
		})
	}
	return c.Render(http.StatusOK, "reset_password.html", map[string]any{
		"Token": raw,
	})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_reset")

	raw := c.Param("token")
	user, err := h.Tokens.ValidateResetToken(raw)
	if err != nil {
		l.Warn("reset_failed", "reason", "invalid_token")
		return c.Render(http.StatusBadRequest, "forgot_password.html", map[string]any{
			"Error": "That reset link is invalid or has expired. Please request a new one.",
		})
	}

	password := c.FormValue("password")
	if len(password) < 8 {
		return c.Render(http.StatusBadRequest, "reset_password.html", map[string]any{
			"Token": raw,
			"Error": "Password must be at least 8 characters.",
		})
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("reset_failed", "reason", "cannot hash password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	updates := map[string]any{
		"password_hash":       pwHash,
		"password_changed_at": time.Now(),
	}
	if err := h.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		l.Error("reset_failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// Changing the password ends every open session.
	if err := h.Tokens.RevokeAllForUser(user.ID); err != nil {
		l.Error("reset_revoke_failed", "error", err)
	}

	publish(c, h.Producer, "user_events", user.ID, map[string]any{
		"type":    "password_reset_completed",
		"user_id": user.ID,
	})

	return c.Render(http.StatusOK, "login.html", map[string]any{
		"Flash": "Your password has been updated. Please log in.",
		"Email": user.Email,
	})
}

func (h *AuthHandler) startSession(c echo.Context, userID uint) error {
	access, refresh, err := h.Tokens.IssueSession(userID)
	if err != nil {
		return err
	}
	c.SetCookie(CreateCookie("accessToken", access, "/", time.Now().Add(token.AccessTTL), h.SecureCookies))
	c.SetCookie(CreateCookie("refreshToken", refresh, "/", time.Now().Add(token.RefreshTTL), h.SecureCookies))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
