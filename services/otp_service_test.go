package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlinkhq/scoutlink_backend/models"
	"github.com/scoutlinkhq/scoutlink_backend/services/messaging"
)

// memoryOTPStore is an in-memory OTPStore for tests
type memoryOTPStore struct {
	mu       sync.Mutex
	records  map[string]*models.OTPRecord
	locks    map[string]bool
	resends  map[string]time.Time
	pendings map[string]*models.SignupRequest
}

func newMemoryOTPStore() *memoryOTPStore {
	return &memoryOTPStore{
		records:  make(map[string]*models.OTPRecord),
		locks:    make(map[string]bool),
		resends:  make(map[string]time.Time),
		pendings: make(map[string]*models.SignupRequest),
	}
}

func (m *memoryOTPStore) SaveRecord(ctx context.Context, record *models.OTPRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.Recipient] = &copied
	return nil
}

func (m *memoryOTPStore) GetRecord(ctx context.Context, recipient string) (*models.OTPRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[recipient]
	if !ok {
		return nil, ErrOTPNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *memoryOTPStore) DeleteRecord(ctx context.Context, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, recipient)
	return nil
}

func (m *memoryOTPStore) AcquireSendLock(ctx context.Context, recipient string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[recipient] {
		return false, nil
	}
	m.locks[recipient] = true
	return true, nil
}

func (m *memoryOTPStore) ReleaseSendLock(ctx context.Context, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, recipient)
	return nil
}

func (m *memoryOTPStore) MarkResend(ctx context.Context, recipient string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.resends[recipient]; ok && time.Since(last) < MinResendInterval {
		return false, nil
	}
	m.resends[recipient] = time.Now()
	return true, nil
}

func (m *memoryOTPStore) SavePendingSignup(ctx context.Context, phone string, signup *models.SignupRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendings[phone] = signup
	return nil
}

func (m *memoryOTPStore) GetPendingSignup(ctx context.Context, phone string) (*models.SignupRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	signup, ok := m.pendings[phone]
	if !ok {
		return nil, ErrOTPNotFound
	}
	return signup, nil
}

func (m *memoryOTPStore) DeletePendingSignup(ctx context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pendings, phone)
	return nil
}

// allowResend resets the resend marker so a test can send again immediately
func (m *memoryOTPStore) allowResend(recipient string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.resends, recipient)
}

type fakeProvider struct {
	name    string
	succeed bool
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Send(ctx context.Context, recipient, message string) *messaging.SendResult {
	f.calls++
	if f.succeed {
		return &messaging.SendResult{Success: true}
	}
	return &messaging.SendResult{Success: false, Error: f.name + ": sending failed"}
}

func newTestService(store OTPStore, sms, whatsapp messaging.Provider) *OTPService {
	return NewOTPServiceWithChains(store,
		messaging.NewChain(sms),
		messaging.NewChain(whatsapp, sms),
		messaging.NewChain(&fakeProvider{name: "email", succeed: true}),
	)
}

func TestSendOTPStoresRecord(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})

	result, err := svc.SendOTP(context.Background(), "+201001234567", "Ahmed", models.OTPChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, models.OTPChannelSMS, result.Method)

	record, err := store.GetRecord(context.Background(), "+201001234567")
	require.NoError(t, err)
	assert.Len(t, record.Code, OTPLength)
	assert.Equal(t, 0, record.Attempts)
	assert.WithinDuration(t, time.Now().Add(PhoneOTPExpiry), record.ExpiresAt, 5*time.Second)
}

func TestSendOTPEmailExpiry(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})

	_, err := svc.SendOTP(context.Background(), "user@example.com", "", models.OTPChannelEmail)
	require.NoError(t, err)

	record, err := store.GetRecord(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(EmailOTPExpiry), record.ExpiresAt, 5*time.Second)
}

func TestSmartOTPRoutesEgyptToSMS(t *testing.T) {
	sms := &fakeProvider{name: "beon-sms", succeed: true}
	whatsapp := &fakeProvider{name: "beon-whatsapp", succeed: true}
	svc := newTestService(newMemoryOTPStore(), sms, whatsapp)

	result, err := svc.SendSmartOTP(context.Background(), &models.SmartOTPRequest{
		Phone: "+201001234567", Country: "Egypt", CountryCode: "EG",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OTPChannelSMS, result.Method)
	assert.Equal(t, 1, sms.calls)
	assert.Equal(t, 0, whatsapp.calls)
}

func TestSmartOTPRoutesAbroadToWhatsApp(t *testing.T) {
	sms := &fakeProvider{name: "beon-sms", succeed: true}
	whatsapp := &fakeProvider{name: "beon-whatsapp", succeed: true}
	svc := newTestService(newMemoryOTPStore(), sms, whatsapp)

	result, err := svc.SendSmartOTP(context.Background(), &models.SmartOTPRequest{
		Phone: "+96650123456", Country: "Saudi Arabia", CountryCode: "SA",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OTPChannelWhatsApp, result.Method)
	assert.Equal(t, 1, whatsapp.calls)
	assert.Equal(t, 0, sms.calls)
}

func TestSmartOTPFallsBackToSMS(t *testing.T) {
	sms := &fakeProvider{name: "beon-sms", succeed: true}
	whatsapp := &fakeProvider{name: "beon-whatsapp", succeed: false}
	svc := newTestService(newMemoryOTPStore(), sms, whatsapp)

	result, err := svc.SendSmartOTP(context.Background(), &models.SmartOTPRequest{
		Phone: "+96650123456", CountryCode: "SA",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OTPChannelSMS, result.Method, "reported method follows the provider that delivered")
	assert.Equal(t, 1, whatsapp.calls)
	assert.Equal(t, 1, sms.calls)
	require.Len(t, result.Attempts, 2)
}

func TestSmartOTPArabicCountryName(t *testing.T) {
	sms := &fakeProvider{name: "beon-sms", succeed: true}
	whatsapp := &fakeProvider{name: "beon-whatsapp", succeed: true}
	svc := newTestService(newMemoryOTPStore(), sms, whatsapp)

	result, err := svc.SendSmartOTP(context.Background(), &models.SmartOTPRequest{
		Phone: "+201001234567", Country: "مصر",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OTPChannelSMS, result.Method)
}

func TestSendOTPReentrancyGuard(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})

	// Simulate an in-flight send holding the lock
	locked, err := store.AcquireSendLock(context.Background(), "+201001234567")
	require.NoError(t, err)
	require.True(t, locked)

	_, err = svc.SendOTP(context.Background(), "+201001234567", "", models.OTPChannelSMS)
	assert.ErrorIs(t, err, ErrSendInProgress)
}

func TestSendOTPResendThrottle(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})

	_, err := svc.SendOTP(context.Background(), "+201001234567", "", models.OTPChannelSMS)
	require.NoError(t, err)

	_, err = svc.SendOTP(context.Background(), "+201001234567", "", models.OTPChannelSMS)
	assert.ErrorIs(t, err, ErrResendTooSoon)
}

func TestResendInvalidatesOldCode(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})
	ctx := context.Background()

	_, err := svc.SendOTP(ctx, "+201001234567", "", models.OTPChannelSMS)
	require.NoError(t, err)
	first, err := store.GetRecord(ctx, "+201001234567")
	require.NoError(t, err)

	store.allowResend("+201001234567")
	_, err = svc.SendOTP(ctx, "+201001234567", "", models.OTPChannelSMS)
	require.NoError(t, err)
	second, err := store.GetRecord(ctx, "+201001234567")
	require.NoError(t, err)

	if first.Code == second.Code {
		t.Skip("generated codes collided, cannot assert invalidation")
	}
	err = svc.VerifyOTP(ctx, "+201001234567", first.Code)
	assert.Error(t, err, "old code must stop working after a resend")
	assert.NoError(t, svc.VerifyOTP(ctx, "+201001234567", second.Code))
}

func TestVerifyOTPSuccessConsumesRecord(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})
	ctx := context.Background()

	_, err := svc.SendOTP(ctx, "+201001234567", "", models.OTPChannelSMS)
	require.NoError(t, err)
	record, err := store.GetRecord(ctx, "+201001234567")
	require.NoError(t, err)

	require.NoError(t, svc.VerifyOTP(ctx, "+201001234567", record.Code))

	err = svc.VerifyOTP(ctx, "+201001234567", record.Code)
	assert.ErrorIs(t, err, ErrOTPNotFound, "a code is single use")
}

func TestVerifyOTPThreeStrikes(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})
	ctx := context.Background()

	_, err := svc.SendOTP(ctx, "+201001234567", "", models.OTPChannelSMS)
	require.NoError(t, err)
	record, err := store.GetRecord(ctx, "+201001234567")
	require.NoError(t, err)

	wrong := "000000"
	if record.Code == wrong {
		wrong = "111111"
	}

	err = svc.VerifyOTP(ctx, "+201001234567", wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)
	err = svc.VerifyOTP(ctx, "+201001234567", wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)
	err = svc.VerifyOTP(ctx, "+201001234567", wrong)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// Even the correct code is refused once locked out
	err = svc.VerifyOTP(ctx, "+201001234567", record.Code)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// A resend resets the counter
	store.allowResend("+201001234567")
	_, err = svc.SendOTP(ctx, "+201001234567", "", models.OTPChannelSMS)
	require.NoError(t, err)
	fresh, err := store.GetRecord(ctx, "+201001234567")
	require.NoError(t, err)
	assert.NoError(t, svc.VerifyOTP(ctx, "+201001234567", fresh.Code))
}

func TestVerifyOTPExpired(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})
	ctx := context.Background()

	record := &models.OTPRecord{
		Code:      "123456",
		Recipient: "+201001234567",
		Channel:   models.OTPChannelSMS,
		CreatedAt: time.Now().Add(-10 * time.Minute),
		ExpiresAt: time.Now().Add(-5 * time.Minute),
	}
	require.NoError(t, store.SaveRecord(ctx, record))

	err := svc.VerifyOTP(ctx, "+201001234567", "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)

	// The expired record is gone, not retryable
	err = svc.VerifyOTP(ctx, "+201001234567", "123456")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestSendOTPAllProvidersFailKeepsRecord(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: false}, &fakeProvider{name: "beon-whatsapp", succeed: false})
	ctx := context.Background()

	_, err := svc.SendOTP(ctx, "+201001234567", "", models.OTPChannelSMS)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSendInProgress))

	// The lock must be released so the user can retry after the throttle
	locked, lockErr := store.AcquireSendLock(ctx, "+201001234567")
	require.NoError(t, lockErr)
	assert.True(t, locked)
}

func TestIsEgyptianNumber(t *testing.T) {
	assert.True(t, IsEgyptianNumber("Egypt", "", ""))
	assert.True(t, IsEgyptianNumber("مصر", "", ""))
	assert.True(t, IsEgyptianNumber("", "EG", ""))
	assert.True(t, IsEgyptianNumber("", "eg", ""))
	assert.True(t, IsEgyptianNumber("", "", "+201001234567"))
	assert.False(t, IsEgyptianNumber("Saudi Arabia", "SA", "+96650123456"))
	assert.False(t, IsEgyptianNumber("", "", "+12025550100"))
}

func TestSendWhatsAppOTPServiceTypeNarrowing(t *testing.T) {
	store := newMemoryOTPStore()
	beon := &fakeProvider{name: "beon-whatsapp", succeed: true}
	business := &fakeProvider{name: "whatsapp-business", succeed: true}
	green := &fakeProvider{name: "green-whatsapp", succeed: true}

	svc := NewOTPServiceWithChains(store,
		messaging.NewChain(&fakeProvider{name: "beon-sms", succeed: true}),
		messaging.NewChain(beon, business, green),
		messaging.NewChain(&fakeProvider{name: "email", succeed: true}),
	)
	svc.businessChain = messaging.NewChain(business)
	svc.greenChain = messaging.NewChain(green)
	ctx := context.Background()

	result, err := svc.SendWhatsAppOTP(ctx, "+96650123456", "Fahad", "green")
	require.NoError(t, err)
	assert.Equal(t, models.OTPChannelWhatsApp, result.Method)
	assert.Equal(t, 1, green.calls)
	assert.Equal(t, 0, beon.calls)

	store.allowResend("+96650123456")
	_, err = svc.SendWhatsAppOTP(ctx, "+96650123456", "Fahad", "business")
	require.NoError(t, err)
	assert.Equal(t, 1, business.calls)
	assert.Equal(t, 0, beon.calls)

	// Unknown service types use the full fallback chain
	store.allowResend("+96650123456")
	_, err = svc.SendWhatsAppOTP(ctx, "+96650123456", "Fahad", "")
	require.NoError(t, err)
	assert.Equal(t, 1, beon.calls)
}

func TestSendProvidedOTPStoresCallerCode(t *testing.T) {
	store := newMemoryOTPStore()
	svc := newTestService(store, &fakeProvider{name: "beon-sms", succeed: true}, &fakeProvider{name: "beon-whatsapp", succeed: true})
	ctx := context.Background()

	result, err := svc.SendProvidedOTP(ctx, "+201001234567", "Ahmed", "424242")
	require.NoError(t, err)
	assert.Equal(t, models.OTPChannelWhatsApp, result.Method)

	record, err := store.GetRecord(ctx, "+201001234567")
	require.NoError(t, err)
	assert.Equal(t, "424242", record.Code)

	require.NoError(t, svc.VerifyOTP(ctx, "+201001234567", "424242"))
}
