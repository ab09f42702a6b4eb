package fawaterk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://staging.fawaterk.com/api/v2"

// Client talks to the Fawaterk REST API. Invoice creation is not
// idempotent on the gateway side, so the client never retries; the
// caller owns retry decisions.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a Fawaterk API client with a bounded request timeout.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ListPaymentMethods fetches the gateway's payment method catalogue.
// GET /getPaymentmethods
func (c *Client) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	url := fmt.Sprintf("%s/getPaymentmethods", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domainErrors.NewGatewayError("REQUEST_ERROR", "Failed to create request", err.Error())
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Fawaterk: payment methods request failed", zap.Error(err))
		return nil, domainErrors.NewGatewayError("API_ERROR", "Fawaterk API request failed", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.NewGatewayError("RESPONSE_ERROR", "Failed to read response", err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Fawaterk: payment methods request rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, domainErrors.NewGatewayError("API_ERROR", "Failed to fetch payment methods", string(respBody))
	}

	var result paymentMethodsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domainErrors.NewGatewayError("PARSE_ERROR", "Failed to parse response", err.Error())
	}

	methods := make([]model.PaymentMethod, 0, len(result.Data))
	for _, m := range result.Data {
		methods = append(methods, model.PaymentMethod{
			PaymentID: m.PaymentID,
			NameEn:    m.NameEn,
			NameAr:    m.NameAr,
			Logo:      m.Logo,
			Redirect:  m.Redirect,
		})
	}
	return methods, nil
}

// CreateInvoice creates a hosted payment invoice.
// POST /createInvoiceLink
//
// A success envelope missing any of url/invoiceKey/invoiceId is treated
// as a failure: a partially created invoice cannot be paid and must not
// leave the donation in processing.
func (c *Client) CreateInvoice(ctx context.Context, req *InvoiceRequest) (*Invoice, error) {
	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, domainErrors.NewGatewayError("MARSHAL_ERROR", "Failed to prepare request", err.Error())
	}

	url := fmt.Sprintf("%s/createInvoiceLink", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, domainErrors.NewGatewayError("REQUEST_ERROR", "Failed to create request", err.Error())
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Fawaterk: invoice request failed", zap.Error(err))
		return nil, domainErrors.NewGatewayError("API_ERROR", "Fawaterk API request failed", err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.NewGatewayError("RESPONSE_ERROR", "Failed to read response", err.Error())
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("Fawaterk: invoice creation rejected",
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))
		return nil, parseGatewayError(respBody)
	}

	var result invoiceResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domainErrors.NewGatewayError("PARSE_ERROR", "Failed to parse response", err.Error())
	}

	if result.Status != "success" || result.Data == nil {
		message := result.Message
		if message == "" {
			message = "Invoice creation failed"
		}
		return nil, domainErrors.NewGatewayError("INVOICE_FAILED", message, string(respBody))
	}

	if result.Data.URL == "" || result.Data.InvoiceKey == "" || result.Data.InvoiceID == 0 {
		c.logger.Error("Fawaterk: incomplete invoice data in success response",
			zap.String("response", string(respBody)))
		return nil, domainErrors.NewGatewayError("PARTIAL_RESPONSE", "Invoice data incomplete in gateway response", string(respBody))
	}

	c.logger.Info("Fawaterk: invoice created",
		zap.Int64("invoice_id", result.Data.InvoiceID),
		zap.String("invoice_url", result.Data.URL))

	return result.Data, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("lang", "ar")
}

func parseGatewayError(respBody []byte) error {
	var errResp map[string]interface{}
	json.Unmarshal(respBody, &errResp)

	code, _ := errResp["code"].(string)
	message, _ := errResp["message"].(string)
	if message == "" {
		message = "Invoice creation failed"
	}
	return domainErrors.NewGatewayError(code, message, string(respBody))
}
