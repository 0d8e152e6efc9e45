// services/otp_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services/messaging"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
)

// Authoritative OTP policy. Expiry is per channel; chat/SMS codes are short
// lived, email codes match the 15 minute window of the reset mail.
const (
	OTPLength           = 6
	MaxVerifyAttempts   = 3
	PhoneOTPExpiry      = 5 * time.Minute
	EmailOTPExpiry      = 15 * time.Minute
	MinResendInterval   = 30 * time.Second
	sendLockExpiry      = 30 * time.Second
	pendingSignupExpiry = 30 * time.Minute
)

// Verification outcomes callers branch on
var (
	ErrSendInProgress  = errors.New("a send for this recipient is already in progress")
	ErrResendTooSoon   = errors.New("please wait before requesting a new code")
	ErrOTPNotFound     = errors.New("no verification code found for this recipient")
	ErrOTPExpired      = errors.New("verification code has expired")
	ErrOTPMismatch     = errors.New("incorrect verification code")
	ErrTooManyAttempts = errors.New("too many incorrect attempts, request a new code")
)

// OTPStore is the transient record store backing verification. Redis in
// production, an in-memory fake in tests.
type OTPStore interface {
	SaveRecord(ctx context.Context, record *models.OTPRecord) error
	GetRecord(ctx context.Context, recipient string) (*models.OTPRecord, error)
	DeleteRecord(ctx context.Context, recipient string) error
	AcquireSendLock(ctx context.Context, recipient string) (bool, error)
	ReleaseSendLock(ctx context.Context, recipient string) error
	MarkResend(ctx context.Context, recipient string) (bool, error)
	SavePendingSignup(ctx context.Context, phone string, signup *models.SignupRequest) error
	GetPendingSignup(ctx context.Context, phone string) (*models.SignupRequest, error)
	DeletePendingSignup(ctx context.Context, phone string) error
}

// RedisOTPStore keeps one record per recipient under otp:<recipient> with a
// TTL equal to the code's expiry, so stale records evict themselves.
type RedisOTPStore struct {
	Client *redis.Client
}

// NewRedisOTPStore wraps a Redis client as an OTPStore.
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{Client: client}
}

func otpKey(recipient string) string       { return "otp:" + recipient }
func lockKey(recipient string) string      { return "otp_inflight:" + recipient }
func resendKey(recipient string) string    { return "otp_resend:" + recipient }
func pendingSignupKey(phone string) string { return "pending_signup:" + phone }

// SaveRecord overwrites any previous record for the recipient, which is how
// a resend invalidates the old code.
func (s *RedisOTPStore) SaveRecord(ctx context.Context, record *models.OTPRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return errors.New("record already expired")
	}
	return s.Client.Set(ctx, otpKey(record.Recipient), data, ttl).Err()
}

func (s *RedisOTPStore) GetRecord(ctx context.Context, recipient string) (*models.OTPRecord, error) {
	data, err := s.Client.Get(ctx, otpKey(recipient)).Bytes()
	if err == redis.Nil {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}
	var record models.OTPRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *RedisOTPStore) DeleteRecord(ctx context.Context, recipient string) error {
	return s.Client.Del(ctx, otpKey(recipient)).Err()
}

// AcquireSendLock guarantees at most one in-flight send per recipient.
func (s *RedisOTPStore) AcquireSendLock(ctx context.Context, recipient string) (bool, error) {
	return s.Client.SetNX(ctx, lockKey(recipient), 1, sendLockExpiry).Result()
}

func (s *RedisOTPStore) ReleaseSendLock(ctx context.Context, recipient string) error {
	return s.Client.Del(ctx, lockKey(recipient)).Err()
}

// MarkResend enforces the minimum interval between sends to one recipient.
// It returns false when the previous send was too recent.
func (s *RedisOTPStore) MarkResend(ctx context.Context, recipient string) (bool, error) {
	return s.Client.SetNX(ctx, resendKey(recipient), 1, MinResendInterval).Result()
}

func (s *RedisOTPStore) SavePendingSignup(ctx context.Context, phone string, signup *models.SignupRequest) error {
	data, err := json.Marshal(signup)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, pendingSignupKey(phone), data, pendingSignupExpiry).Err()
}

func (s *RedisOTPStore) GetPendingSignup(ctx context.Context, phone string) (*models.SignupRequest, error) {
	data, err := s.Client.Get(ctx, pendingSignupKey(phone)).Bytes()
	if err == redis.Nil {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}
	var signup models.SignupRequest
	if err := json.Unmarshal(data, &signup); err != nil {
		return nil, err
	}
	return &signup, nil
}

func (s *RedisOTPStore) DeletePendingSignup(ctx context.Context, phone string) error {
	return s.Client.Del(ctx, pendingSignupKey(phone)).Err()
}

// OTPService issues, delivers and verifies one-time codes. Provider fallback
// order is configured once here instead of per call site.
type OTPService struct {
	store         OTPStore
	smsChain      *messaging.Chain
	whatsappChain *messaging.Chain
	emailChain    *messaging.Chain

	// Single-vendor WhatsApp chains, selectable per request
	businessChain *messaging.Chain
	greenChain    *messaging.Chain
}

// NewOTPService wires the default provider chains: SMS goes through BeOn,
// WhatsApp tries BeOn's WhatsApp route, then the Business Cloud API, then
// Green API, and falls back to SMS as the last resort.
func NewOTPService(store OTPStore) *OTPService {
	beonSMS := messaging.NewBeonSMSProvider()
	business := messaging.NewWhatsAppBusinessProvider()
	green := messaging.NewGreenAPIProvider()
	return &OTPService{
		store:    store,
		smsChain: messaging.NewChain(beonSMS),
		whatsappChain: messaging.NewChain(
			messaging.NewBeonWhatsAppProvider(),
			business,
			green,
			beonSMS,
		),
		emailChain:    messaging.NewChain(messaging.NewEmailProvider()),
		businessChain: messaging.NewChain(business),
		greenChain:    messaging.NewChain(green),
	}
}

// NewOTPServiceWithChains is the injection point for tests and custom routing.
func NewOTPServiceWithChains(store OTPStore, sms, whatsapp, email *messaging.Chain) *OTPService {
	return &OTPService{store: store, smsChain: sms, whatsappChain: whatsapp, emailChain: email}
}

// Store exposes the backing store for orchestration flows (pending signups).
func (s *OTPService) Store() OTPStore {
	return s.store
}

// SendResult reports a completed delivery: which channel actually carried
// the code and the per-provider attempt trail.
type SendResult struct {
	Method   string
	Attempts []messaging.Attempt
}

// SendOTP generates a fresh code and delivers it through the channel's
// provider chain. Exactly one send can be in flight per recipient; a second
// call while the first is pending fails with ErrSendInProgress, and sends
// within the minimum resend interval fail with ErrResendTooSoon.
func (s *OTPService) SendOTP(ctx context.Context, recipient, name, channel string) (*SendResult, error) {
	chain, err := s.chainFor(channel)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, recipient, name, channel, chain, "")
}

// SendWhatsAppOTP narrows delivery to a single WhatsApp vendor when
// serviceType is "business" or "green"; any other value uses the full
// fallback chain.
func (s *OTPService) SendWhatsAppOTP(ctx context.Context, recipient, name, serviceType string) (*SendResult, error) {
	chain := s.whatsappChain
	switch serviceType {
	case "business":
		if s.businessChain != nil {
			chain = s.businessChain
		}
	case "green":
		if s.greenChain != nil {
			chain = s.greenChain
		}
	}
	return s.send(ctx, recipient, name, models.OTPChannelWhatsApp, chain, "")
}

// SendProvidedOTP delivers a caller-supplied code over the WhatsApp chain
// and stores it so VerifyOTP accepts it later.
func (s *OTPService) SendProvidedOTP(ctx context.Context, recipient, name, code string) (*SendResult, error) {
	return s.send(ctx, recipient, name, models.OTPChannelWhatsApp, s.whatsappChain, code)
}

func (s *OTPService) send(ctx context.Context, recipient, name, channel string, chain *messaging.Chain, code string) (*SendResult, error) {
	locked, err := s.store.AcquireSendLock(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire send lock: %w", err)
	}
	if !locked {
		return nil, ErrSendInProgress
	}
	defer s.store.ReleaseSendLock(ctx, recipient)

	allowed, err := s.store.MarkResend(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to check resend interval: %w", err)
	}
	if !allowed {
		return nil, ErrResendTooSoon
	}

	if code == "" {
		code, err = utils.GenerateOTP(OTPLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}
	}

	now := time.Now()
	expiry := PhoneOTPExpiry
	if channel == models.OTPChannelEmail {
		expiry = EmailOTPExpiry
	}
	record := &models.OTPRecord{
		Code:      code,
		Recipient: recipient,
		Channel:   channel,
		CreatedAt: now,
		ExpiresAt: now.Add(expiry),
	}

	// A new record replaces (invalidates) any previous code for this recipient
	if err := s.store.SaveRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store code: %w", err)
	}

	message := s.composeMessage(name, code, channel)
	result, attempts := chain.Send(ctx, recipient, message)
	if !result.Success {
		// Leave the record in place: a provider may have delivered before
		// failing to report, and resend stays available to the user.
		log.Printf("OTP delivery failed for %s: %s", recipient, result.Error)
		return &SendResult{Attempts: attempts}, errors.New(result.Error)
	}

	method := channel
	for _, a := range attempts {
		if a.Success {
			method = providerMethod(a.Provider)
			break
		}
	}
	log.Printf("OTP sent to %s via %s", recipient, method)
	return &SendResult{Method: method, Attempts: attempts}, nil
}

// SendSmartOTP routes delivery by the caller's country: Egyptian numbers go
// SMS-first, everywhere else goes WhatsApp-first with SMS as the fallback.
func (s *OTPService) SendSmartOTP(ctx context.Context, req *models.SmartOTPRequest) (*SendResult, error) {
	channel := models.OTPChannelWhatsApp
	if IsEgyptianNumber(req.Country, req.CountryCode, req.Phone) {
		channel = models.OTPChannelSMS
	}
	return s.SendOTP(ctx, req.Phone, req.Name, channel)
}

// VerifyOTP checks a submitted code. Wrong codes increment the attempt
// counter; after MaxVerifyAttempts the record is refused until a resend
// replaces it. A correct code consumes the record.
func (s *OTPService) VerifyOTP(ctx context.Context, recipient, code string) error {
	record, err := s.store.GetRecord(ctx, recipient)
	if err != nil {
		return err
	}

	if record.Expired(time.Now()) {
		s.store.DeleteRecord(ctx, recipient)
		return ErrOTPExpired
	}

	if record.Attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}

	if record.Code != code {
		record.Attempts++
		if err := s.store.SaveRecord(ctx, record); err != nil {
			log.Printf("failed to persist attempt counter for %s: %v", recipient, err)
		}
		if record.Attempts >= MaxVerifyAttempts {
			return ErrTooManyAttempts
		}
		return fmt.Errorf("%w (%d attempts remaining)", ErrOTPMismatch, MaxVerifyAttempts-record.Attempts)
	}

	return s.store.DeleteRecord(ctx, recipient)
}

func (s *OTPService) chainFor(channel string) (*messaging.Chain, error) {
	switch channel {
	case models.OTPChannelSMS:
		return s.smsChain, nil
	case models.OTPChannelWhatsApp:
		return s.whatsappChain, nil
	case models.OTPChannelEmail:
		return s.emailChain, nil
	}
	return nil, fmt.Errorf("unknown delivery channel: %s", channel)
}

func (s *OTPService) composeMessage(name, code, channel string) string {
	minutes := int(PhoneOTPExpiry.Minutes())
	if channel == models.OTPChannelEmail {
		minutes = int(EmailOTPExpiry.Minutes())
	}
	if name != "" {
		return fmt.Sprintf("Hello %s, your ScoutLink verification code is: %s. This code will expire in %d minutes.", name, code, minutes)
	}
	return fmt.Sprintf("Your ScoutLink verification code is: %s. This code will expire in %d minutes.", code, minutes)
}

// providerMethod maps a provider name to the channel reported to clients.
func providerMethod(provider string) string {
	switch {
	case strings.HasPrefix(provider, "beon-sms"):
		return models.OTPChannelSMS
	case strings.Contains(provider, "whatsapp"):
		return models.OTPChannelWhatsApp
	case provider == "email":
		return models.OTPChannelEmail
	}
	return provider
}

// IsEgyptianNumber recognizes Egyptian callers by country name (Arabic or
// English), ISO code, or the +20 dialing prefix.
func IsEgyptianNumber(country, countryCode, phone string) bool {
	if strings.EqualFold(countryCode, "EG") {
		return true
	}
	switch strings.TrimSpace(country) {
	case "مصر", "Egypt":
		return true
	}
	return strings.HasPrefix(phone, "+20")
}
