package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services"
	"github.com/scoutlinkhq/scoutlink_backend/services/messaging"
)

type requestValidator struct {
	validator *validator.Validate
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.validator.Struct(i)
}

// stubOTPStore is a permissive in-memory store for handler tests
type stubOTPStore struct {
	records map[string]*models.OTPRecord
}

func newStubOTPStore() *stubOTPStore {
	return &stubOTPStore{records: make(map[string]*models.OTPRecord)}
}

func (s *stubOTPStore) SaveRecord(ctx context.Context, record *models.OTPRecord) error {
	s.records[record.Recipient] = record
	return nil
}

func (s *stubOTPStore) GetRecord(ctx context.Context, recipient string) (*models.OTPRecord, error) {
	record, ok := s.records[recipient]
	if !ok {
		return nil, services.ErrOTPNotFound
	}
	return record, nil
}

func (s *stubOTPStore) DeleteRecord(ctx context.Context, recipient string) error {
	delete(s.records, recipient)
	return nil
}

func (s *stubOTPStore) AcquireSendLock(ctx context.Context, recipient string) (bool, error) {
	return true, nil
}

func (s *stubOTPStore) ReleaseSendLock(ctx context.Context, recipient string) error { return nil }

func (s *stubOTPStore) MarkResend(ctx context.Context, recipient string) (bool, error) {
	return true, nil
}

func (s *stubOTPStore) SavePendingSignup(ctx context.Context, phone string, signup *models.SignupRequest) error {
	return nil
}

func (s *stubOTPStore) GetPendingSignup(ctx context.Context, phone string) (*models.SignupRequest, error) {
	return nil, services.ErrOTPNotFound
}

func (s *stubOTPStore) DeletePendingSignup(ctx context.Context, phone string) error { return nil }

type okSMSProvider struct{}

func (okSMSProvider) Name() string { return "beon-sms" }

func (okSMSProvider) Send(ctx context.Context, recipient, message string) *messaging.SendResult {
	return &messaging.SendResult{Success: true}
}

func newOTPTestContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder, *OTPController) {
	t.Helper()
	e := echo.New()
	e.Validator = &requestValidator{validator: validator.New()}

	svc := services.NewOTPServiceWithChains(newStubOTPStore(),
		messaging.NewChain(okSMSProvider{}),
		messaging.NewChain(okSMSProvider{}),
		messaging.NewChain(okSMSProvider{}),
	)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, NewOTPController(svc)
}

func TestSendSMSOTPRejectsMissingPhone(t *testing.T) {
	c, rec, ctrl := newOTPTestContext(t, `{"name":"Ahmed"}`)

	require.NoError(t, ctrl.SendSMSOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Validation failed")
}

func TestSendWhatsAppOTPRejectsUnknownServiceType(t *testing.T) {
	c, rec, ctrl := newOTPTestContext(t, `{"phoneNumber":"+201001234567","serviceType":"pigeon"}`)

	require.NoError(t, ctrl.SendWhatsAppOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Validation failed")
}

func TestSendSMSOTPAcceptsValidRequest(t *testing.T) {
	c, rec, ctrl := newOTPTestContext(t, `{"phoneNumber":"+201001234567","name":"Ahmed"}`)

	require.NoError(t, ctrl.SendSMSOTP(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(services.OTPLength), data["otpLength"])
	assert.Equal(t, "+201001234567", data["phoneNumber"])
}

func TestVerifyOTPRejectsNonNumericCode(t *testing.T) {
	c, rec, ctrl := newOTPTestContext(t, `{"phoneNumber":"+201001234567","otpCode":"abc123"}`)

	require.NoError(t, ctrl.VerifyOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Validation failed")
}

func TestSendSmartOTPRejectsMissingPhone(t *testing.T) {
	c, rec, ctrl := newOTPTestContext(t, `{"country":"Egypt"}`)

	require.NoError(t, ctrl.SendSmartOTP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.SmartOTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Validation failed")
}
