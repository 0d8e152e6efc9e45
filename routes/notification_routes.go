// routes/notification_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
)

// RegisterNotificationRoutes sets up the in-app notification inbox
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client) {
	notificationController := controllers.NewNotificationController(db)

	notifications := e.Group("/api/notifications", middleware.JWTMiddleware())
	notifications.GET("", notificationController.GetNotifications)
	notifications.GET("/unread-count", notificationController.GetUnreadCount)
	notifications.PUT("/:id/read", notificationController.MarkAsRead)
	notifications.PUT("/read-all", notificationController.MarkAllAsRead)
}
