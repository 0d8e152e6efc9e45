// routes/admin_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// RegisterAdminRoutes sets up the moderation surface, gated to admins
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client) {
	adminController := controllers.NewAdminController(db)

	admin := e.Group("/api/admin",
		middleware.JWTMiddleware(),
		middleware.RequireAccountTypes(utils.AccountTypeAdmin),
	)

	admin.GET("/users", adminController.GetUsers)
	admin.PUT("/users/:id/status", adminController.UpdateUserStatus)
	admin.POST("/plans", adminController.CreatePlan)
	admin.PUT("/plans/:id/deactivate", adminController.DeactivatePlan)
}
