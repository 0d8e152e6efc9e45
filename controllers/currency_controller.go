// controllers/currency_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services"
)

// CurrencyController exposes the exchange rate cache
type CurrencyController struct {
	Currency *services.CurrencyService
}

func NewCurrencyController(currency *services.CurrencyService) *CurrencyController {
	return &CurrencyController{Currency: currency}
}

// GetCurrencies lists the supported currencies and cache freshness
func (cc *CurrencyController) GetCurrencies(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Currencies retrieved",
		Data: map[string]interface{}{
			"base":       services.BaseCurrency,
			"currencies": cc.Currency.Currencies(),
			"cache":      cc.Currency.Status(),
		},
	})
}

// Convert converts an amount between a currency and EGP
func (cc *CurrencyController) Convert(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil || amount < 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid amount",
		})
	}

	from := c.QueryParam("from")
	to := c.QueryParam("to")

	var result *models.ConversionResult
	switch {
	case from != "" && (to == "" || to == services.BaseCurrency):
		result, err = cc.Currency.Convert(amount, from)
	case (from == "" || from == services.BaseCurrency) && to != "":
		result, err = cc.Currency.ConvertFromEGP(amount, to)
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "One side of the conversion must be " + services.BaseCurrency,
		})
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Conversion complete",
		Data:    result,
	})
}

// GetRatesStatus reports cache freshness without triggering a refresh
func (cc *CurrencyController) GetRatesStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Rates status retrieved",
		Data:    cc.Currency.Status(),
	})
}

// UpdateRates forces a refresh from the external rates source. Failure
// keeps the cached rates and reports the error.
func (cc *CurrencyController) UpdateRates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cc.Currency.ForceRefresh(ctx); err != nil {
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Rates refresh failed, cached rates remain in effect: " + err.Error(),
			Data:    cc.Currency.Status(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Currency rates updated",
		Data:    cc.Currency.Status(),
	})
}
