package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/models"
)

type OrderHandler struct {
	DB *gorm.DB
}

func (h *OrderHandler) OrdersPage(c echo.Context) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Limit(50).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	demo := false
	if len(orders) == 0 {
		orders = demoOrders()
		demo = true
	}

	return c.Render(http.StatusOK, "orders.html", map[string]any{
		"User":   user,
		"Orders": orders,
		"Demo":   demo,
	})
}

func demoOrders() []models.Order {
	return []models.Order{
		{EbayOrderID: "12-08744-22110", BuyerName: "J. Martin", Status: "fulfilled", TotalPaidByBuyer: 19.99, ActualSupplierCost: 8.12},
		{EbayOrderID: "12-08745-90233", BuyerName: "K. Osei", Status: "ordered", TotalPaidByBuyer: 9.95, ActualSupplierCost: 2.40},
		{EbayOrderID: "12-08747-13579", BuyerName: "A. Novak", Status: "detected", TotalPaidByBuyer: 14.50},
	}
}
