// routes/currency_routes.go
package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/services"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// RegisterCurrencyRoutes sets up the exchange rate endpoints. Reads are
// public; forcing a refresh is admin-only.
func RegisterCurrencyRoutes(e *echo.Echo, currency *services.CurrencyService) {
	currencyController := controllers.NewCurrencyController(currency)

	e.GET("/api/currencies", currencyController.GetCurrencies)
	e.GET("/api/currencies/convert", currencyController.Convert)
	e.GET("/api/update-currency-rates", currencyController.GetRatesStatus)
	e.POST("/api/update-currency-rates", currencyController.UpdateRates,
		middleware.JWTMiddleware(), middleware.RequireAccountTypes(utils.AccountTypeAdmin))
}
