package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/logging"
	"github.com/mstepanov/dropmate/internal/models"
	"github.com/mstepanov/dropmate/internal/mykafka"
)

// UserIDKey is where the auth middleware stores the authenticated user id.
const UserIDKey = "userID"

func CreateCookie(name, value, path string, expTime time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func currentUser(c echo.Context, db *gorm.DB) (*models.User, error) {
	id, ok := c.Get(UserIDKey).(uint)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return &user, nil
}

// publish sends an audit event. Delivery problems are logged, never surfaced
// to the user.
func publish(c echo.Context, p *mykafka.Producer, topic string, key uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err)
	}
}
