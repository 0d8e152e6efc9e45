// routes/video_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
)

// RegisterVideoRoutes sets up the highlight clip endpoints. The feed is
// public; everything else requires authentication.
func RegisterVideoRoutes(e *echo.Echo, db *mongo.Client) {
	videoController := controllers.NewVideoController(db)

	e.GET("/api/videos/feed", videoController.GetFeed)
	e.GET("/api/videos/:id", videoController.GetVideo)

	videos := e.Group("/api/videos", middleware.JWTMiddleware())
	videos.POST("", videoController.UploadVideo)
	videos.POST("/:id/like", videoController.LikeVideo)
	videos.DELETE("/:id", videoController.DeleteVideo)
}
