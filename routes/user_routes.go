// routes/user_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
)

// RegisterUserRoutes sets up profile endpoints
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client) {
	userController := controllers.NewUserController(db)

	users := e.Group("/api/users", middleware.JWTMiddleware(), middleware.ActivityTracker(db, config.GetDBName()))
	users.GET("/me", userController.GetProfile)
	users.PUT("/me", userController.UpdateProfile)
	users.PUT("/me/player", userController.UpdatePlayerProfile)
	users.POST("/me/profile-picture", userController.UploadProfilePicture)
	users.PUT("/me/fcm-token", userController.UpdateFCMToken)
	users.GET("/me/qr", userController.GetProfileQR)
	users.GET("/players", userController.SearchPlayers)
	users.GET("/:id", userController.GetPublicProfile)
}
