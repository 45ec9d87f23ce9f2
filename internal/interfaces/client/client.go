// Package client is a typed HTTP client for the bill payment API. It
// implements the same collaborator interfaces as the in-process service, so
// a PaymentForm can run against either.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/dto"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/middleware"
	"github.com/google/uuid"
)

// maxResponseSize limits the response body read from the server
const maxResponseSize = 10 * 1024 * 1024

// ErrUnavailable wraps transport failures
var ErrUnavailable = errors.New("billpay client: service unavailable")

// ErrMalformedResponse is returned when a body does not match the expected schema
var ErrMalformedResponse = errors.New("billpay client: malformed response")

// APIError is a failure reported by the server in the response envelope.
// It unwraps to the domain error named by Reason so errors.Is works against
// the shared and billpay sentinels.
type APIError struct {
	StatusCode int
	Code       string
	Reason     string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("billpay client: %s (%s/%s, HTTP %d)", e.Message, e.Code, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("billpay client: %s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	if e.Reason == "" {
		return nil
	}
	return shared.NewDomainError(e.Reason, e.Message)
}

// envelope mirrors dto.Response with a typed payload
type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

// Client calls the bill payment API over HTTP
type Client struct {
	config     *Config
	httpClient *http.Client
}

// New creates a client with the given configuration
func New(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.timeout()},
	}, nil
}

// NewWithHTTPClient creates a client that sends requests through hc
func NewWithHTTPClient(config *Config, hc *http.Client) (*Client, error) {
	c, err := New(config)
	if err != nil {
		return nil, err
	}
	c.httpClient = hc
	return c, nil
}

// FetchOutstandingBills lists a vendor's open bills, oldest due first
func (c *Client) FetchOutstandingBills(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, error) {
	var out []appbillpay.OutstandingBillResponse
	if err := c.call(ctx, tenantID, http.MethodGet, "/vendors/"+vendorID.String()+"/outstanding-bills", nil, "", &out); err != nil {
		return nil, err
	}
	bills := make([]billpay.OutstandingBill, len(out))
	for i, b := range out {
		bills[i] = b.ToOutstandingBill()
	}
	return bills, nil
}

// SubmitPayment records a payment. A non-empty IdempotencyKey is sent as the
// Idempotency-Key header.
func (c *Client) SubmitPayment(ctx context.Context, tenantID uuid.UUID, req appbillpay.SubmitPaymentRequest) (*appbillpay.PaymentResponse, error) {
	var out appbillpay.PaymentResponse
	if err := c.call(ctx, tenantID, http.MethodPost, "/bill-payments", req, req.IdempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VoidPayment voids a payment
func (c *Client) VoidPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req appbillpay.VoidPaymentRequest) (*appbillpay.PaymentResponse, error) {
	var out appbillpay.PaymentResponse
	if err := c.call(ctx, tenantID, http.MethodPost, "/bill-payments/"+paymentID.String()+"/void", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePayment removes a payment without applications
func (c *Client) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	return c.call(ctx, tenantID, http.MethodDelete, "/bill-payments/"+paymentID.String(), nil, "", nil)
}

// GetCheckData returns what is needed to print a check
func (c *Client) GetCheckData(ctx context.Context, tenantID, paymentID uuid.UUID) (*appbillpay.CheckDataResponse, error) {
	var out appbillpay.CheckDataResponse
	if err := c.call(ctx, tenantID, http.MethodGet, "/bill-payments/"+paymentID.String()+"/check", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVendorPayments returns the vendor's most recent payments
func (c *Client) ListVendorPayments(ctx context.Context, tenantID, vendorID uuid.UUID) ([]appbillpay.PaymentResponse, error) {
	var out []appbillpay.PaymentResponse
	if err := c.call(ctx, tenantID, http.MethodGet, "/vendors/"+vendorID.String()+"/bill-payments", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// call sends one request and decodes the envelope into out. A nil out
// expects an empty body.
func (c *Client) call(ctx context.Context, tenantID uuid.UUID, method, path string, body any, idempotencyKey string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("billpay client: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.config.BaseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("billpay client: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.TenantHeaderKey, tenantID.String())
	if c.config.UserID != nil {
		req.Header.Set(middleware.UserHeaderKey, c.config.UserID.String())
	}
	if idempotencyKey != "" {
		req.Header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("billpay client: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNoContent && out == nil {
		return nil
	}
	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		return fmt.Errorf("%w: unexpected body for HTTP %d", ErrMalformedResponse, resp.StatusCode)
	}

	env := envelope[json.RawMessage]{}
	if err := strictDecode(raw, &env); err != nil {
		return err
	}
	if !env.Success || env.Error != nil {
		return fmt.Errorf("%w: success=false with HTTP %d", ErrMalformedResponse, resp.StatusCode)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	return strictDecode(env.Data, out)
}

// decodeError turns an error envelope into ValidationErrors or an APIError
func decodeError(status int, raw []byte) error {
	env := envelope[json.RawMessage]{}
	if err := strictDecode(raw, &env); err != nil || env.Error == nil {
		return &APIError{StatusCode: status, Code: dto.ErrCodeUnknown, Message: http.StatusText(status)}
	}
	info := env.Error
	if info.Code == dto.ErrCodeValidation && len(info.Details) > 0 {
		verrs := billpay.ValidationErrors{}
		for _, d := range info.Details {
			verrs[d.Field] = d.Message
		}
		return verrs
	}
	return &APIError{
		StatusCode: status,
		Code:       info.Code,
		Reason:     info.Reason,
		Message:    info.Message,
		RequestID:  info.RequestID,
	}
}

func strictDecode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrMalformedResponse)
	}
	return nil
}

var _ appbillpay.Gateway = (*Client)(nil)
