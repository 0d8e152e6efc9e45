package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// WhatsAppBusinessProvider sends messages through the Meta WhatsApp Business
// Cloud API using a bearer access token.
type WhatsAppBusinessProvider struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	Client        *http.Client
}

type whatsAppBusinessResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewWhatsAppBusinessProvider creates the Cloud API adapter from environment config.
func NewWhatsAppBusinessProvider() *WhatsAppBusinessProvider {
	baseURL := os.Getenv("WHATSAPP_BUSINESS_API_URL")
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v18.0"
	}
	return &WhatsAppBusinessProvider{
		AccessToken:   os.Getenv("WHATSAPP_BUSINESS_TOKEN"),
		PhoneNumberID: os.Getenv("WHATSAPP_BUSINESS_PHONE_ID"),
		BaseURL:       baseURL,
		Client:        newHTTPClient(),
	}
}

// Name implements Provider.
func (p *WhatsAppBusinessProvider) Name() string {
	return "whatsapp-business"
}

// Send implements Provider.
func (p *WhatsAppBusinessProvider) Send(ctx context.Context, recipient, message string) *SendResult {
	if p.AccessToken == "" || p.PhoneNumberID == "" {
		return &SendResult{Success: false, Error: p.Name() + ": missing WHATSAPP_BUSINESS_TOKEN or WHATSAPP_BUSINESS_PHONE_ID"}
	}

	// Cloud API wants the number without the leading +
	to := strings.TrimPrefix(recipient, "+")

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"body": message,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to marshal request: %v", p.Name(), err)}
	}

	url := fmt.Sprintf("%s/%s/messages", p.BaseURL, p.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to create request: %v", p.Name(), err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.AccessToken)

	resp, err := p.Client.Do(req)
	if err != nil {
		return &SendResult{Success: false, Error: classifyRequestError(p.Name(), err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to read response: %v", p.Name(), err)}
	}

	var waResp whatsAppBusinessResponse
	if err := json.Unmarshal(body, &waResp); err != nil {
		return &SendResult{
			Success: false,
			Error:   fmt.Sprintf("%s: malformed response", p.Name()),
			Raw:     string(body),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("%s: API returned status %d", p.Name(), resp.StatusCode)
		if waResp.Error != nil {
			errMsg = fmt.Sprintf("%s: %s (code %d)", p.Name(), waResp.Error.Message, waResp.Error.Code)
		}
		return &SendResult{Success: false, Error: errMsg, Raw: string(body)}
	}

	if len(waResp.Messages) > 0 {
		return &SendResult{Success: true, Message: "message " + waResp.Messages[0].ID + " accepted", Raw: string(body)}
	}

	return &SendResult{
		Success: false,
		Error:   p.Name() + ": no message id in response",
		Raw:     string(body),
	}
}
