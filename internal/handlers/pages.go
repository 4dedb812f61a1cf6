package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/models"
)

type PageHandler struct {
	DB *gorm.DB
}

func (h *PageHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", map[string]any{})
}

func (h *PageHandler) Pricing(c echo.Context) error {
	return c.Render(http.StatusOK, "pricing.html", map[string]any{})
}

func (h *PageHandler) Dashboard(c echo.Context) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	var productCount, orderCount, storeCount int64
	h.DB.Model(&models.Product{}).Where("user_id = ?", user.ID).Count(&productCount)
	h.DB.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&orderCount)
	h.DB.Model(&models.EbayStore{}).Where("user_id = ?", user.ID).Count(&storeCount)

	return c.Render(http.StatusOK, "dashboard.html", map[string]any{
		"User":         user,
		"ProductCount": productCount,
		"OrderCount":   orderCount,
		"StoreCount":   storeCount,
	})
}

func (h *PageHandler) ImportPage(c echo.Context) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "import.html", map[string]any{"User": user})
}

func (h *PageHandler) ScraperPage(c echo.Context) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "scraper.html", map[string]any{"User": user})
}
