// Package messaging wraps the vendor gateways used to deliver OTP codes
// (BeOn SMS/WhatsApp, WhatsApp Business Cloud API, Green API, SMTP email)
// behind one normalized Provider interface.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// requestTimeout bounds every outbound vendor call so a hung gateway
// surfaces as a distinguishable timeout error instead of blocking the flow.
const requestTimeout = 15 * time.Second

// SendResult is the normalized outcome of one delivery attempt.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// Provider sends one message to one recipient through a single vendor API.
type Provider interface {
	Name() string
	Send(ctx context.Context, recipient, message string) *SendResult
}

// Attempt records one provider try inside a fallback chain.
type Attempt struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Chain tries providers in order and stops at the first success.
type Chain struct {
	providers []Provider
}

// NewChain builds a fallback chain from an ordered provider list.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Providers returns the configured provider order.
func (c *Chain) Providers() []Provider {
	return c.providers
}

// Send delivers the message through the first provider that succeeds and
// returns the full attempt trail. The last provider's result is returned
// even when every provider fails.
func (c *Chain) Send(ctx context.Context, recipient, message string) (*SendResult, []Attempt) {
	if len(c.providers) == 0 {
		return &SendResult{Success: false, Error: "no delivery providers configured"}, nil
	}

	attempts := make([]Attempt, 0, len(c.providers))
	var last *SendResult
	for _, p := range c.providers {
		result := p.Send(ctx, recipient, message)
		attempts = append(attempts, Attempt{
			Provider: p.Name(),
			Success:  result.Success,
			Error:    result.Error,
		})
		if result.Success {
			return result, attempts
		}
		last = result
	}
	return last, attempts
}

// classifyRequestError maps a transport-level failure into one of the error
// strings callers can branch on: timeout vs generic network error.
func classifyRequestError(provider string, err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("%s: request timed out", provider)
	}
	return fmt.Sprintf("%s: network error: %v", provider, err)
}

// newHTTPClient returns the HTTP client shared by all vendor adapters.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
