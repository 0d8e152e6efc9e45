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

// BeonProvider sends messages through the BeOn gateway. The same endpoint
// serves both the SMS and WhatsApp routes; the route is fixed per instance
// so one BeonProvider appears twice in different fallback chains.
type BeonProvider struct {
	Token      string
	SenderName string
	Route      string // "sms" or "whatsapp"
	BaseURL    string
	TemplateID string
	Client     *http.Client
}

// beonResponse is the vendor's reply envelope
type beonResponse struct {
	Status  interface{} `json:"status"`
	Message string      `json:"message"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// NewBeonSMSProvider creates the BeOn SMS adapter from environment config.
func NewBeonSMSProvider() *BeonProvider {
	return newBeonProvider("sms")
}

// NewBeonWhatsAppProvider creates the BeOn WhatsApp adapter.
func NewBeonWhatsAppProvider() *BeonProvider {
	return newBeonProvider("whatsapp")
}

func newBeonProvider(route string) *BeonProvider {
	baseURL := os.Getenv("BEON_API_URL")
	if baseURL == "" {
		baseURL = "https://beon.chat/api/send/message"
	}
	sender := os.Getenv("BEON_SENDER_NAME")
	if sender == "" {
		sender = "ScoutLink"
	}
	return &BeonProvider{
		Token:      os.Getenv("BEON_TOKEN"),
		SenderName: sender,
		Route:      route,
		BaseURL:    baseURL,
		TemplateID: os.Getenv("BEON_TEMPLATE_ID"),
		Client:     newHTTPClient(),
	}
}

// Name implements Provider.
func (p *BeonProvider) Name() string {
	return "beon-" + p.Route
}

// Send implements Provider. One POST with a token header, vendor
// success/failure fields mapped into the common SendResult shape.
func (p *BeonProvider) Send(ctx context.Context, recipient, message string) *SendResult {
	if p.Token == "" {
		return &SendResult{Success: false, Error: p.Name() + ": missing BEON_TOKEN"}
	}

	payload := map[string]string{
		"name":        p.SenderName,
		"phoneNumber": recipient,
		"message":     message,
		"type":        p.Route,
	}
	if p.TemplateID != "" {
		payload["template_id"] = p.TemplateID
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to marshal request: %v", p.Name(), err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to create request: %v", p.Name(), err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("beon-token", p.Token)

	resp, err := p.Client.Do(req)
	if err != nil {
		return &SendResult{Success: false, Error: classifyRequestError(p.Name(), err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to read response: %v", p.Name(), err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &SendResult{
			Success: false,
			Error:   fmt.Sprintf("%s: API returned status %d", p.Name(), resp.StatusCode),
			Raw:     string(body),
		}
	}

	var beonResp beonResponse
	if err := json.Unmarshal(body, &beonResp); err != nil {
		// Some BeOn routes answer with a bare string on success
		responseStr := strings.TrimSpace(string(body))
		if strings.Contains(strings.ToLower(responseStr), "success") ||
			strings.Contains(strings.ToLower(responseStr), "sent") {
			return &SendResult{Success: true, Message: responseStr, Raw: string(body)}
		}
		return &SendResult{
			Success: false,
			Error:   fmt.Sprintf("%s: malformed response", p.Name()),
			Raw:     string(body),
		}
	}

	if beonSuccess(beonResp.Status) {
		return &SendResult{Success: true, Message: beonResp.Message, Raw: string(body)}
	}

	errMsg := beonResp.Message
	if errMsg == "" {
		errMsg = "sending failed"
	}
	return &SendResult{
		Success: false,
		Error:   fmt.Sprintf("%s: %s", p.Name(), errMsg),
		Raw:     string(body),
	}
}

// beonSuccess interprets the vendor's status field, which is sometimes a
// number (200) and sometimes a string ("success").
func beonSuccess(status interface{}) bool {
	switch v := status.(type) {
	case float64:
		return v >= 200 && v < 300
	case string:
		s := strings.ToLower(v)
		return s == "success" || s == "sent" || s == "200"
	case bool:
		return v
	}
	return false
}
