package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shelfspace-backend/internal/logger"
)

// WhatsAppResult reports delivery outcome. Dispatch is best-effort: a
// failed send never fails or rolls back the lifecycle transition that
// triggered it.
type WhatsAppResult struct {
	Success bool `json:"success"`
}

type WhatsAppSender interface {
	SendTemplate(ctx context.Context, phone, template string, params []string) WhatsAppResult
}

// karzounClient sends templated WhatsApp messages through the Karzoun
// CloudApi. Template parameters are positional and order-sensitive;
// changing a template's parameter count or order must be coordinated with
// the provider-side template definition.
type karzounClient struct {
	baseURL    string
	apiToken   string
	senderID   string
	httpClient *http.Client
}

func NewKarzounClient(baseURL, apiToken, senderID string) WhatsAppSender {
	return &karzounClient{
		baseURL:  baseURL,
		apiToken: apiToken,
		senderID: senderID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NormalizeWhatsAppPhone strips non-digits, drops a leading national zero
// and prefixes the Saudi country code when absent.
func NormalizeWhatsAppPhone(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	num := strings.TrimPrefix(digits.String(), "0")
	if !strings.HasPrefix(num, "966") {
		num = "966" + num
	}
	return num
}

func (c *karzounClient) SendTemplate(ctx context.Context, phone, template string, params []string) WhatsAppResult {
	query := url.Values{}
	query.Set("token", c.apiToken)
	query.Set("sender_id", c.senderID)
	query.Set("phone", NormalizeWhatsAppPhone(phone))
	query.Set("template", template)
	for i, param := range params {
		query.Set(fmt.Sprintf("param_%d", i+1), param)
	}

	endpoint := c.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Error("Failed to build WhatsApp request", "template", template, "error", err)
		return WhatsAppResult{Success: false}
	}

	logger.ExternalServiceCall("karzoun", "send_template", "template", template)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("karzoun", "send_template", err)
		return WhatsAppResult{Success: false}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("WhatsApp send rejected", "template", template, "status", resp.StatusCode)
		return WhatsAppResult{Success: false}
	}

	// The provider reports failures inside a 200 body as an error field.
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		logger.Warn("WhatsApp send failed", "template", template, "provider_error", parsed.Error)
		return WhatsAppResult{Success: false}
	}

	return WhatsAppResult{Success: true}
}
