// controllers/otp_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// OTPController exposes the raw delivery endpoints. Signup and password
// reset have their own orchestrated flows; these endpoints let clients
// drive verification channel by channel.
type OTPController struct {
	OTP *services.OTPService
}

func NewOTPController(otp *services.OTPService) *OTPController {
	return &OTPController{OTP: otp}
}

// SendSMSOTP sends a code over the SMS chain
func (oc *OTPController) SendSMSOTP(c echo.Context) error {
	return oc.sendOTP(c, models.OTPChannelSMS)
}

// SendWhatsAppOTP sends a code over the WhatsApp chain. ServiceType narrows
// the chain to a single vendor when set ("business" or "green").
func (oc *OTPController) SendWhatsAppOTP(c echo.Context) error {
	return oc.sendOTP(c, models.OTPChannelWhatsApp)
}

func (oc *OTPController) sendOTP(c echo.Context, channel string) error {
	var req models.SendOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	phone, err := utils.SanitizePhone(req.PhoneNumber)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}
	name := utils.SanitizeInput(req.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var result *services.SendResult
	if channel == models.OTPChannelWhatsApp {
		result, err = oc.OTP.SendWhatsAppOTP(ctx, phone, name, req.ServiceType)
	} else {
		result, err = oc.OTP.SendOTP(ctx, phone, name, channel)
	}
	if err != nil {
		return c.JSON(sendErrorStatus(err), models.Response{
			Status:  sendErrorStatus(err),
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Verification code sent",
		Data: map[string]interface{}{
			"phoneNumber": phone,
			"otpLength":   services.OTPLength,
			"method":      result.Method,
		},
	})
}

// SendBeonWhatsApp delivers a caller-supplied code over the WhatsApp chain.
// The response reports whether a fallback provider had to carry it.
func (oc *OTPController) SendBeonWhatsApp(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
		Name  string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Phone and otp are required",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid phone number",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := oc.OTP.SendProvidedOTP(ctx, phone, utils.SanitizeInput(req.Name), req.OTP)
	if err != nil {
		return c.JSON(sendErrorStatus(err), map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}

	// Any success after a failed first attempt means a fallback carried it
	fallback := len(result.Attempts) > 1

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  "Verification code sent",
		"otp":      req.OTP,
		"fallback": fallback,
	})
}

// VerifyOTP checks a code sent through any channel
func (oc *OTPController) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	recipient := req.PhoneNumber
	if !utils.IsEmailAddress(recipient) {
		phone, err := utils.SanitizePhone(recipient)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
		recipient = phone
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := oc.OTP.VerifyOTP(ctx, recipient, req.OTPCode); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: verifyErrorMessage(err),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Code verified successfully",
	})
}

// SendSmartOTP routes by country: Egyptian numbers get SMS first, everyone
// else gets WhatsApp with SMS fallback. The response reports which channel
// actually carried the code.
func (oc *OTPController) SendSmartOTP(c echo.Context) error {
	var req models.SmartOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.SmartOTPResponse{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.SmartOTPResponse{
			Success: false,
			Error:   "Validation failed: " + err.Error(),
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.SmartOTPResponse{
			Success: false,
			Error:   "Invalid phone number",
		})
	}
	req.Phone = phone
	req.Name = utils.SanitizeInput(req.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := oc.OTP.SendSmartOTP(ctx, &req)
	if err != nil {
		return c.JSON(sendErrorStatus(err), models.SmartOTPResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, models.SmartOTPResponse{
		Success: true,
		Method:  result.Method,
	})
}

func sendErrorStatus(err error) int {
	if errors.Is(err, services.ErrSendInProgress) || errors.Is(err, services.ErrResendTooSoon) {
		return http.StatusTooManyRequests
	}
	return http.StatusBadGateway
}
