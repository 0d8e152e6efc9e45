// routes/auth_routes.go
package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/services"
)

// RegisterAuthRoutes sets up authentication and password reset endpoints
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, otp *services.OTPService) {
	authController := controllers.NewAuthController(db, otp)
	passwordController := controllers.NewPasswordController(db, otp)

	auth := e.Group("/api/auth")

	auth.POST("/signup", authController.Signup)
	auth.POST("/verify-otp", authController.VerifyOTP)
	auth.POST("/resend-otp", authController.ResendOTP)
	auth.POST("/login", authController.Login)
	auth.POST("/check-user-exists", authController.CheckUserExists)
	auth.POST("/refresh-token", authController.RefreshToken)
	auth.GET("/validate-token", authController.ValidateToken)
	auth.POST("/google", authController.GoogleLogin)
	auth.POST("/apple", authController.AppleSignin)

	auth.POST("/forget-password", passwordController.ForgetPassword)
	auth.POST("/verify-reset-otp", passwordController.VerifyResetOTP)
	auth.POST("/reset-password", passwordController.ResetPassword)

	auth.POST("/remembered-credentials", authController.GetRememberedCredentials)
	auth.POST("/remembered-credentials/remove", authController.RemoveRememberedCredentials)

	auth.POST("/logout", authController.Logout, middleware.JWTMiddleware())
}
