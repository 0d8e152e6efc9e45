// routes/otp_routes.go
package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/scoutlinkhq/scoutlink_backend/controllers"
	"github.com/scoutlinkhq/scoutlink_backend/services"
)

// RegisterOTPRoutes sets up the channel-level verification endpoints
func RegisterOTPRoutes(e *echo.Echo, otp *services.OTPService) {
	otpController := controllers.NewOTPController(otp)

	sms := e.Group("/api/sms")
	sms.POST("/send-otp", otpController.SendSMSOTP)
	sms.POST("/verify-otp", otpController.VerifyOTP)

	whatsapp := e.Group("/api/whatsapp")
	whatsapp.POST("/send-otp", otpController.SendWhatsAppOTP)
	whatsapp.POST("/verify-otp", otpController.VerifyOTP)

	e.POST("/api/notifications/smart-otp", otpController.SendSmartOTP)
	e.POST("/api/notifications/whatsapp/beon", otpController.SendBeonWhatsApp)
}
