// routes/subscription_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/services"
)

// RegisterSubscriptionRoutes sets up plan listing and subscription management
func RegisterSubscriptionRoutes(e *echo.Echo, db *mongo.Client, currency *services.CurrencyService) {
	subscriptionController := controllers.NewSubscriptionController(db, currency)

	e.GET("/api/subscriptions/plans", subscriptionController.GetPlans)

	subscriptions := e.Group("/api/subscriptions", middleware.JWTMiddleware())
	subscriptions.POST("/subscribe", subscriptionController.Subscribe)
	subscriptions.POST("/cancel", subscriptionController.CancelSubscription)
	subscriptions.GET("/status", subscriptionController.GetSubscriptionStatus)
}
