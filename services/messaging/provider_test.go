package messaging

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	result *SendResult
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Send(ctx context.Context, recipient, message string) *SendResult {
	s.calls++
	return s.result
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	first := &stubProvider{name: "first", result: &SendResult{Success: true, Message: "ok"}}
	second := &stubProvider{name: "second", result: &SendResult{Success: true}}

	chain := NewChain(first, second)
	result, attempts := chain.Send(context.Background(), "+201001234567", "code 123456")

	require.True(t, result.Success)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls, "second provider must not be tried after a success")
	require.Len(t, attempts, 1)
	assert.Equal(t, "first", attempts[0].Provider)
}

func TestChainFallsBackOnFailure(t *testing.T) {
	first := &stubProvider{name: "first", result: &SendResult{Success: false, Error: "first: API returned status 500"}}
	second := &stubProvider{name: "second", result: &SendResult{Success: true, Message: "delivered"}}

	chain := NewChain(first, second)
	result, attempts := chain.Send(context.Background(), "+96650123456", "code 654321")

	require.True(t, result.Success)
	assert.Equal(t, "delivered", result.Message)
	require.Len(t, attempts, 2)
	assert.False(t, attempts[0].Success)
	assert.Contains(t, attempts[0].Error, "status 500")
	assert.True(t, attempts[1].Success)
}

func TestChainAllFail(t *testing.T) {
	first := &stubProvider{name: "first", result: &SendResult{Success: false, Error: "first: request timed out"}}
	second := &stubProvider{name: "second", result: &SendResult{Success: false, Error: "second: sending failed"}}

	chain := NewChain(first, second)
	result, attempts := chain.Send(context.Background(), "+96650123456", "code")

	require.False(t, result.Success)
	assert.Equal(t, "second: sending failed", result.Error)
	require.Len(t, attempts, 2)
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain()
	result, attempts := chain.Send(context.Background(), "+201001234567", "code")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "no delivery providers")
	assert.Empty(t, attempts)
}

func newTestBeonProvider(url string) *BeonProvider {
	return &BeonProvider{
		Token:      "test-token",
		SenderName: "ScoutLink",
		Route:      "sms",
		BaseURL:    url,
		Client:     &http.Client{Timeout: 2 * time.Second},
	}
}

func TestBeonProviderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("beon-token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": 200, "message": "Message sent"}`))
	}))
	defer server.Close()

	result := newTestBeonProvider(server.URL).Send(context.Background(), "+201001234567", "code 123456")

	require.True(t, result.Success)
	assert.Equal(t, "Message sent", result.Message)
}

func TestBeonProviderStringStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success", "message": "ok"}`))
	}))
	defer server.Close()

	result := newTestBeonProvider(server.URL).Send(context.Background(), "+201001234567", "code")
	assert.True(t, result.Success)
}

func TestBeonProviderNonJSONSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Message Sent Successfully"))
	}))
	defer server.Close()

	result := newTestBeonProvider(server.URL).Send(context.Background(), "+201001234567", "code")
	assert.True(t, result.Success, "a plain-text body containing 'sent' counts as success")
}

func TestBeonProviderMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	result := newTestBeonProvider(server.URL).Send(context.Background(), "+201001234567", "code")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "malformed response")
	assert.Contains(t, result.Raw, "gateway error")
}

func TestBeonProviderNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message": "upstream down"}`))
	}))
	defer server.Close()

	result := newTestBeonProvider(server.URL).Send(context.Background(), "+201001234567", "code")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "status 502")
}

func TestBeonProviderVendorFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": 400, "message": "invalid phone number"}`))
	}))
	defer server.Close()

	result := newTestBeonProvider(server.URL).Send(context.Background(), "not-a-phone", "code")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid phone number")
}

func TestBeonProviderTimeoutIsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"status": 200}`))
	}))
	defer server.Close()

	provider := newTestBeonProvider(server.URL)
	provider.Client = &http.Client{Timeout: 50 * time.Millisecond}

	result := provider.Send(context.Background(), "+201001234567", "code")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "timed out", "a hung gateway must surface as a timeout, not a generic failure")
}

func TestBeonProviderMissingToken(t *testing.T) {
	provider := newTestBeonProvider("http://unused")
	provider.Token = ""

	result := provider.Send(context.Background(), "+201001234567", "code")

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "BEON_TOKEN")
}
