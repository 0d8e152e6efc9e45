package models

import (
	"time"
)

// OTP delivery channels
const (
	OTPChannelSMS      = "sms"
	OTPChannelWhatsApp = "whatsapp"
	OTPChannelEmail    = "email"
)

// OTPRecord is the transient verification record for one recipient.
// Redis holds exactly one record per recipient; issuing a new code
// overwrites the old one.
type OTPRecord struct {
	Code      string    `json:"code"`
	Recipient string    `json:"recipient"` // phone in E.164 or email address
	Channel   string    `json:"channel"`   // "sms", "whatsapp", "email"
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record is past its expiry at the given instant.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// SendOTPRequest is the body of the send-otp endpoints
type SendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Name        string `json:"name"`
	UseTemplate bool   `json:"useTemplate,omitempty"`
	TemplateID  string `json:"templateId,omitempty"`
	ServiceType string `json:"serviceType,omitempty" validate:"omitempty,oneof=business green"` // whatsapp only
}

// VerifyOTPRequest is the body of the verify-otp endpoints
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	OTPCode     string `json:"otpCode" validate:"required,numeric,min=4,max=6"`
}

// SmartOTPRequest routes delivery by the caller's country
type SmartOTPRequest struct {
	Phone       string `json:"phone" validate:"required"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

// SmartOTPResponse reports which channel actually delivered the code
type SmartOTPResponse struct {
	Success bool   `json:"success"`
	Method  string `json:"method,omitempty"`
	Error   string `json:"error,omitempty"`
}
