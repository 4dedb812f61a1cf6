package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mstepanov/dropmate/internal/handlers"
	authmw "github.com/mstepanov/dropmate/internal/middleware/auth"
)

type Deps struct {
	DB              *gorm.DB
	PageHandler     *handlers.PageHandler
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	OrderHandler    *handlers.OrderHandler
	SettingsHandler *handlers.SettingsHandler
	Auth            *authmw.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/", d.PageHandler.Index)
	e.GET("/pricing", d.PageHandler.Pricing)

	e.GET("/login", d.AuthHandler.LoginPage)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/signup", d.AuthHandler.SignupPage)
	e.GET("/register", d.AuthHandler.SignupPage)
	e.POST("/signup", d.AuthHandler.Signup)
	e.POST("/logout", d.AuthHandler.Logout)
	e.GET("/forgot-password", d.AuthHandler.ForgotPasswordPage)
	e.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	e.GET("/reset-password/:token", d.AuthHandler.ResetPasswordPage)
	e.POST("/reset-password/:token", d.AuthHandler.ResetPassword)

	dash := e.Group("", d.Auth.RequireLogin)

	dash.GET("/dashboard", d.PageHandler.Dashboard)
	dash.GET("/products", d.ProductHandler.ProductsPage)
	dash.GET("/orders", d.OrderHandler.OrdersPage)
	dash.GET("/import", d.PageHandler.ImportPage)
	dash.GET("/scraper", d.PageHandler.ScraperPage)
	dash.GET("/settings", d.SettingsHandler.SettingsPage)
	dash.POST("/settings/stores", d.SettingsHandler.ConnectStore)
	dash.POST("/settings/vault", d.SettingsHandler.SaveVaultEntry)
}
