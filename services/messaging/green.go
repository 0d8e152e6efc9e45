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

// GreenAPIProvider sends WhatsApp messages through the Green API gateway,
// addressed by instance id + API token in the URL path.
type GreenAPIProvider struct {
	InstanceID string
	APIToken   string
	BaseURL    string
	Client     *http.Client
}

type greenAPIResponse struct {
	IDMessage string `json:"idMessage"`
}

// NewGreenAPIProvider creates the Green API adapter from environment config.
func NewGreenAPIProvider() *GreenAPIProvider {
	baseURL := os.Getenv("GREEN_API_URL")
	if baseURL == "" {
		baseURL = "https://api.green-api.com"
	}
	return &GreenAPIProvider{
		InstanceID: os.Getenv("GREEN_API_INSTANCE_ID"),
		APIToken:   os.Getenv("GREEN_API_TOKEN"),
		BaseURL:    baseURL,
		Client:     newHTTPClient(),
	}
}

// Name implements Provider.
func (p *GreenAPIProvider) Name() string {
	return "whatsapp-green"
}

// Send implements Provider.
func (p *GreenAPIProvider) Send(ctx context.Context, recipient, message string) *SendResult {
	if p.InstanceID == "" || p.APIToken == "" {
		return &SendResult{Success: false, Error: p.Name() + ": missing GREEN_API_INSTANCE_ID or GREEN_API_TOKEN"}
	}

	// Green API chat ids are the bare number followed by @c.us
	chatID := strings.TrimPrefix(recipient, "+") + "@c.us"

	payload := map[string]string{
		"chatId":  chatID,
		"message": message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to marshal request: %v", p.Name(), err)}
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", p.BaseURL, p.InstanceID, p.APIToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return &SendResult{Success: false, Error: fmt.Sprintf("%s: failed to create request: %v", p.Name(), err)}
	}
	req.Header.Set("Content-Type", "application/json")

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

	var greenResp greenAPIResponse
	if err := json.Unmarshal(body, &greenResp); err != nil {
		return &SendResult{
			Success: false,
			Error:   fmt.Sprintf("%s: malformed response", p.Name()),
			Raw:     string(body),
		}
	}

	if greenResp.IDMessage == "" {
		return &SendResult{
			Success: false,
			Error:   p.Name() + ": no message id in response",
			Raw:     string(body),
		}
	}

	return &SendResult{Success: true, Message: "message " + greenResp.IDMessage + " accepted", Raw: string(body)}
}
