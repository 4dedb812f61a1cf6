package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/logging"
	"github.com/mstepanov/dropmate/internal/models"
	"github.com/mstepanov/dropmate/internal/service/search"
	"github.com/mstepanov/dropmate/internal/util"
)

type ProductHandler struct {
	DB     *gorm.DB
	Search *search.Service
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) ProductsPage(c echo.Context) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	query := c.QueryParam("q")
	page := parseIntDefault(c.QueryParam("page"), 1)
	from, limit := util.Calculate(page, parseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	var (
		total int64
		items []models.Product
	)
	if query != "" {
		total, items, err = h.Search.Search(c.Request().Context(), user.ID, query, from, limit)
		if err != nil {
			logging.FromContext(c.Request().Context()).Error("product_search_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "search is unavailable right now")
		}
	} else {
		if err := h.DB.Model(&models.Product{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if err := h.DB.Where("user_id = ?", user.ID).Order("id ASC").Offset(from).Limit(limit).Find(&items).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	demo := false
	if total == 0 && query == "" {
		items = demoProducts()
		demo = true
	}

	return c.Render(http.StatusOK, "products.html", map[string]any{
		"User":     user,
		"Products": items,
		"Query":    query,
		"Demo":     demo,
		"HasPrev":  page > 1,
		"HasNext":  int64(from+limit) < total,
		"PrevPage": page - 1,
		"NextPage": page + 1,
	})
}

// demoProducts seeds the page for fresh accounts so sellers see what a
// populated catalog looks like.
func demoProducts() []models.Product {
	return []models.Product{
		{Title: "Wireless earbuds with charging case", SourceSKU: "AE-100482", Status: "listed", SourceCost: 7.80, TargetPrice: 19.99},
		{Title: "Magnetic phone mount (car vent)", SourceSKU: "AE-203314", Status: "listed", SourceCost: 2.15, TargetPrice: 9.95},
		{Title: "LED strip light 5m RGB", SourceSKU: "CJ-88172", Status: "draft", SourceCost: 4.60, TargetPrice: 14.50},
		{Title: "Pet grooming glove (pair)", SourceSKU: "BG-55901", Status: "listed", SourceCost: 1.90, TargetPrice: 8.99},
		{Title: "Collapsible water bottle 600ml", SourceSKU: "AE-771205", Status: "paused", SourceCost: 3.25, TargetPrice: 12.99},
	}
}
