// Package auth guards the dashboard pages. A valid access cookie passes
// through; an expired one is refreshed transparently from the refresh cookie;
// anything else redirects to the login page.
package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mstepanov/dropmate/internal/handlers"
	"github.com/mstepanov/dropmate/internal/logging"
	"github.com/mstepanov/dropmate/internal/service/token"
)

type Middleware struct {
	Tokens        *token.Service
	SecureCookies bool
}

func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if asCookie, err := c.Cookie("accessToken"); err == nil {
			if userID, err := m.Tokens.ParseAccessToken(asCookie.Value); err == nil {
				c.Set(handlers.UserIDKey, userID)
				return next(c)
			}
		}

		rfCookie, err := c.Cookie("refreshToken")
		if err != nil {
			return c.Redirect(http.StatusFound, "/login")
		}

		newAccess, newRefresh, userID, err := m.Tokens.RotateToken(rfCookie.Value)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("session_refresh_failed", "error", err)
			return c.Redirect(http.StatusFound, "/login")
		}

		c.SetCookie(handlers.CreateCookie("accessToken", newAccess, "/", time.Now().Add(token.AccessTTL), m.SecureCookies))
		c.SetCookie(handlers.CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(token.RefreshTTL), m.SecureCookies))
		c.Set(handlers.UserIDKey, userID)
		return next(c)
	}
}
