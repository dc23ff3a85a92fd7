// Package tap wraps the Tap payment gateway REST API: hosted-checkout
// charge creation, charge retrieval and refunds. The client never writes
// application state; persistence happens only after the gateway confirms
// capture, in the reconciler.
package tap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"shelfspace-backend/internal/domain"
	"shelfspace-backend/internal/logger"
)

const DefaultBaseURL = "https://api.tap.company/v2"

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Charge is the subset of the gateway charge object the backend consumes.
type Charge struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Metadata    map[string]string `json:"metadata"`
	Transaction struct {
		URL string `json:"url"`
	} `json:"transaction"`
}

type ChargeCustomer struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Email      string `json:"email"`
	Phone      struct {
		CountryCode string `json:"country_code"`
		Number      string `json:"number"`
	} `json:"phone"`
}

type ChargeRequest struct {
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Reference   map[string]string `json:"reference"`
	Customer    ChargeCustomer    `json:"customer"`
	Source      map[string]string `json:"source"`
	Redirect    struct {
		URL string `json:"url"`
	} `json:"redirect"`
	Post *struct {
		URL string `json:"url"`
	} `json:"post,omitempty"`
	Metadata map[string]string `json:"metadata"`
}

type RefundRequest struct {
	ChargeID string  `json:"charge_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Reason   string  `json:"reason"`
}

type Refund struct {
	ID     string  `json:"id"`
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

// CreateCharge submits a hosted-checkout charge creation request.
func (c *Client) CreateCharge(ctx context.Context, req *ChargeRequest) (*Charge, error) {
	var charge Charge
	if err := c.do(ctx, http.MethodPost, "/charges", req, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

// GetCharge fetches the current state of a charge by id.
func (c *Client) GetCharge(ctx context.Context, chargeID string) (*Charge, error) {
	var charge Charge
	if err := c.do(ctx, http.MethodGet, "/charges/"+chargeID, nil, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

// CreateRefund submits a refund for a captured charge.
func (c *Client) CreateRefund(ctx context.Context, req *RefundRequest) (*Refund, error) {
	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/refunds", req, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

type gatewayErrorBody struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	logger.ExternalServiceCall("tap", method+" "+path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.ExternalServiceResult("tap", method+" "+path, err)
		return &domain.GatewayError{Provider: "tap", Description: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.GatewayError{Provider: "tap", StatusCode: resp.StatusCode, Description: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := &domain.GatewayError{Provider: "tap", StatusCode: resp.StatusCode, Description: "request rejected"}
		var parsed gatewayErrorBody
		if json.Unmarshal(raw, &parsed) == nil {
			if len(parsed.Errors) > 0 {
				gwErr.Description = parsed.Errors[0].Description
			} else if parsed.Message != "" {
				gwErr.Description = parsed.Message
			}
		}
		logger.ExternalServiceResult("tap", method+" "+path, gwErr, "status", resp.StatusCode)
		return gwErr
	}

	logger.ExternalServiceResult("tap", method+" "+path, nil, "status", resp.StatusCode)
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &domain.GatewayError{Provider: "tap", StatusCode: resp.StatusCode, Description: "malformed response body"}
		}
	}
	return nil
}
