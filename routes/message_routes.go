// routes/message_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/websocket"
)

// RegisterMessageRoutes sets up chat endpoints and the websocket entry point
func RegisterMessageRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	messageController := controllers.NewMessageController(db, hub)

	messages := e.Group("/api/messages", middleware.JWTMiddleware(), middleware.ActivityTracker(db, config.GetDBName()))
	messages.POST("", messageController.SendMessage)
	messages.GET("/conversations", messageController.GetConversations)
	messages.GET("/conversations/:id", messageController.GetMessages)

	// Socket connects unauthenticated; the client authenticates with its
	// first AUTH:<jwt> frame.
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub, primitive.NilObjectID)
	})
}
