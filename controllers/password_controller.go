// controllers/password_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// PasswordController handles the forgot-password flow: request a code,
// verify it, then set a new password within the reset window.
type PasswordController struct {
	DB  *mongo.Client
	OTP *services.OTPService
}

func NewPasswordController(db *mongo.Client, otp *services.OTPService) *PasswordController {
	return &PasswordController{DB: db, OTP: otp}
}

const resetWindow = 15 * time.Minute

func resetMarkerKey(recipient string) string {
	return "pwreset_ok:" + recipient
}

// ForgetPassword sends a verification code to the account's phone, or to
// its email when the identifier is an email address.
func (pc *PasswordController) ForgetPassword(c echo.Context) error {
	var req struct {
		Identifier string `json:"identifier"` // phone or email
	}
	if err := c.Bind(&req); err != nil || req.Identifier == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone number or email is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var user models.User
	var recipient, channel string

	if utils.IsEmailAddress(req.Identifier) {
		email, err := utils.SanitizeEmail(req.Identifier)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid email format",
			})
		}
		err = config.GetCollection(pc.DB, "users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err != nil {
			// Do not reveal whether the email is registered
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "If an account exists, a verification code has been sent",
			})
		}
		recipient = email
		channel = models.OTPChannelEmail
	} else {
		phone, err := utils.SanitizePhone(req.Identifier)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
		err = config.GetCollection(pc.DB, "users").FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
		if err != nil {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "No account found with this phone number",
			})
		}
		recipient = phone
		channel = models.OTPChannelSMS
		if !services.IsEgyptianNumber(user.Country, user.CountryCode, phone) {
			channel = models.OTPChannelWhatsApp
		}
	}

	result, err := pc.OTP.SendOTP(ctx, recipient, user.FullName, channel)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrSendInProgress) || errors.Is(err, services.ErrResendTooSoon) {
			status = http.StatusTooManyRequests
		}
		return c.JSON(status, models.Response{
			Status:  status,
			Message: "Failed to send verification code: " + err.Error(),
		})
	}

	data := map[string]interface{}{"method": result.Method}
	if channel == models.OTPChannelEmail {
		data["sentTo"] = utils.MaskEmail(recipient)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Verification code sent",
		Data:    data,
	})
}

// VerifyResetOTP checks the reset code and opens the reset window
func (pc *PasswordController) VerifyResetOTP(c echo.Context) error {
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

	if err := pc.OTP.VerifyOTP(ctx, recipient, req.OTPCode); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: verifyErrorMessage(err),
		})
	}

	if rdb := config.GetRedisClient(); rdb != nil {
		rdb.Set(ctx, resetMarkerKey(recipient), 1, resetWindow)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Code verified, you can now reset your password",
	})
}

// ResetPassword sets a new password after the code has been verified
func (pc *PasswordController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
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
	filter := bson.M{}
	if utils.IsEmailAddress(recipient) {
		email, err := utils.SanitizeEmail(recipient)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid email format",
			})
		}
		recipient = email
		filter["email"] = email
	} else {
		phone, err := utils.SanitizePhone(recipient)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
		recipient = phone
		filter["phone"] = phone
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := config.GetRedisClient()
	if rdb == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Password reset is temporarily unavailable",
		})
	}
	exists, err := rdb.Exists(ctx, resetMarkerKey(recipient)).Result()
	if err != nil || exists == 0 {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Verify the code sent to you before resetting the password",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to hash password",
		})
	}

	result, err := config.GetCollection(pc.DB, "users").UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{
			"password":  string(hashedPassword),
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update password",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "No account found",
		})
	}

	// The marker is single use
	rdb.Del(ctx, resetMarkerKey(recipient))

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password reset successfully",
	})
}
