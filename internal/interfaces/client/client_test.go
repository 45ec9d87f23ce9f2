package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/handler"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockService implements handler.BillPaymentService
type mockService struct {
	mock.Mock
}

func (m *mockService) FetchOutstandingBills(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, error) {
	args := m.Called(ctx, tenantID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billpay.OutstandingBill), args.Error(1)
}

func (m *mockService) SubmitPayment(ctx context.Context, tenantID uuid.UUID, req appbillpay.SubmitPaymentRequest) (*appbillpay.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbillpay.PaymentResponse), args.Error(1)
}

func (m *mockService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*appbillpay.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbillpay.PaymentResponse), args.Error(1)
}

func (m *mockService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter appbillpay.PaymentListFilter) ([]appbillpay.PaymentResponse, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]appbillpay.PaymentResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockService) ListVendorPayments(ctx context.Context, tenantID, vendorID uuid.UUID) ([]appbillpay.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appbillpay.PaymentResponse), args.Error(1)
}

func (m *mockService) UpdatePayment(ctx context.Context, tenantID, paymentID uuid.UUID, req appbillpay.UpdatePaymentRequest) (*appbillpay.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbillpay.PaymentResponse), args.Error(1)
}

func (m *mockService) VoidPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req appbillpay.VoidPaymentRequest) (*appbillpay.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbillpay.PaymentResponse), args.Error(1)
}

func (m *mockService) ClearPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*appbillpay.PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbillpay.PaymentResponse), args.Error(1)
}

func (m *mockService) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	return m.Called(ctx, tenantID, paymentID).Error(0)
}

func (m *mockService) GetCheckData(ctx context.Context, tenantID, paymentID uuid.UUID) (*appbillpay.CheckDataResponse, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appbillpay.CheckDataResponse), args.Error(1)
}

var (
	testTenantID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testUserID   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

// newTestClient serves the real bill payment handler backed by svc
func newTestClient(t *testing.T, svc *mockService) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.RequestID())
	api := r.Group("/api/v1", middleware.TenantContext(uuid.Nil))
	handler.NewBillPaymentHandler(svc).RegisterRoutes(api)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	userID := testUserID
	c, err := New(&Config{BaseURL: srv.URL + "/api/v1", UserID: &userID, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

// newRawClient points a client at a hand-written handler
func newRawClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(&Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func samplePayment(vendorID uuid.UUID) *appbillpay.PaymentResponse {
	return &appbillpay.PaymentResponse{
		ID:                uuid.New(),
		PaymentNumber:     "BPAY-0007",
		VendorID:          vendorID,
		PaymentDate:       day(2026, 3, 1),
		PaymentMethod:     "check",
		PaymentAmount:     decimal.NewFromInt(150),
		TotalApplied:      decimal.NewFromInt(150),
		UnappliedAmount:   decimal.Zero,
		PaidFromAccountID: uuid.New(),
		Status:            "pending",
		Applications: []appbillpay.ApplicationResponse{
			{ID: uuid.New(), BillID: uuid.New(), BillNumber: "INV-1", AmountApplied: decimal.NewFromInt(150)},
		},
		CanPrintCheck: true,
		Version:       1,
		CreatedAt:     day(2026, 3, 1),
		UpdatedAt:     day(2026, 3, 1),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "valid", config: &Config{BaseURL: "http://localhost:8080/api/v1"}},
		{name: "missing base url", config: &Config{}, wantErr: ErrMissingBaseURL},
		{name: "blank base url", config: &Config{BaseURL: "  "}, wantErr: ErrMissingBaseURL},
		{name: "relative url", config: &Config{BaseURL: "/api/v1"}, wantErr: ErrInvalidBaseURL},
		{name: "unsupported scheme", config: &Config{BaseURL: "ftp://example.com"}, wantErr: ErrInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	c, err := New(&Config{BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	_, err = New(&Config{})
	assert.ErrorIs(t, err, ErrMissingBaseURL)
}

func TestClient_FetchOutstandingBills(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	vendorID := uuid.New()

	bills := []billpay.OutstandingBill{
		{ID: uuid.New(), BillNumber: "INV-1", VendorReference: "R-1", BillDate: day(2026, 1, 1), DueDate: day(2026, 1, 31),
			TotalAmount: decimal.NewFromInt(500), BalanceDue: decimal.RequireFromString("320.50")},
		{ID: uuid.New(), BillNumber: "INV-2", BillDate: day(2026, 2, 1), DueDate: day(2026, 2, 28),
			TotalAmount: decimal.NewFromInt(80), BalanceDue: decimal.NewFromInt(80)},
	}
	svc.On("FetchOutstandingBills", mock.Anything, testTenantID, vendorID).Return(bills, nil)

	got, err := c.FetchOutstandingBills(context.Background(), testTenantID, vendorID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bills[0].ID, got[0].ID)
	assert.Equal(t, "R-1", got[0].VendorReference)
	assert.True(t, got[0].BalanceDue.Equal(decimal.RequireFromString("320.50")))
	assert.True(t, got[1].DueDate.Equal(day(2026, 2, 28)))
	svc.AssertExpectations(t)
}

func TestClient_FetchOutstandingBills_Empty(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	vendorID := uuid.New()
	svc.On("FetchOutstandingBills", mock.Anything, testTenantID, vendorID).Return([]billpay.OutstandingBill{}, nil)

	got, err := c.FetchOutstandingBills(context.Background(), testTenantID, vendorID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_SubmitPayment(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	vendorID := uuid.New()
	billID := uuid.New()
	want := samplePayment(vendorID)

	svc.On("SubmitPayment", mock.Anything, testTenantID, mock.MatchedBy(func(req appbillpay.SubmitPaymentRequest) bool {
		return req.VendorID == vendorID &&
			req.PaymentDate.Equal(day(2026, 3, 1)) &&
			req.PaymentAmount.Equal(decimal.NewFromInt(150)) &&
			req.IdempotencyKey == "key-1" &&
			req.CreatedBy != nil && *req.CreatedBy == testUserID &&
			len(req.Applications) == 1 && req.Applications[0].BillID == billID
	})).Return(want, nil)

	got, err := c.SubmitPayment(context.Background(), testTenantID, appbillpay.SubmitPaymentRequest{
		VendorID:          vendorID,
		PaymentDate:       day(2026, 3, 1),
		PaymentMethod:     "check",
		PaymentAmount:     decimal.NewFromInt(150),
		PaidFromAccountID: uuid.New(),
		Applications:      []appbillpay.ApplicationInput{{BillID: billID, AmountApplied: decimal.NewFromInt(150)}},
		IdempotencyKey:    "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "BPAY-0007", got.PaymentNumber)
	assert.True(t, got.PaymentAmount.Equal(decimal.NewFromInt(150)))
	require.Len(t, got.Applications, 1)
	svc.AssertExpectations(t)
}

func TestClient_SubmitPayment_Errors(t *testing.T) {
	billID := uuid.New()

	t.Run("validation errors come back as ValidationErrors", func(t *testing.T) {
		svc := new(mockService)
		c := newTestClient(t, svc)
		svc.On("SubmitPayment", mock.Anything, testTenantID, mock.Anything).Return(nil, billpay.ValidationErrors{
			billpay.FieldVendorID:               billpay.MsgVendorRequired,
			billpay.ApplicationErrorKey(billID): "Amount exceeds balance due of $80.00",
		})

		_, err := c.SubmitPayment(context.Background(), testTenantID, appbillpay.SubmitPaymentRequest{PaymentMethod: "check"})
		var verrs billpay.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, billpay.MsgVendorRequired, verrs[billpay.FieldVendorID])
		assert.Equal(t, "Amount exceeds balance due of $80.00", verrs[billpay.ApplicationErrorKey(billID)])
	})

	t.Run("conflict unwraps to the domain error", func(t *testing.T) {
		svc := new(mockService)
		c := newTestClient(t, svc)
		svc.On("SubmitPayment", mock.Anything, testTenantID, mock.Anything).Return(nil, shared.ErrConcurrencyConflict)

		_, err := c.SubmitPayment(context.Background(), testTenantID, appbillpay.SubmitPaymentRequest{PaymentMethod: "check"})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
		assert.Equal(t, "CONCURRENCY_CONFLICT", apiErr.Reason)
		assert.NotEmpty(t, apiErr.RequestID)
	})

	t.Run("internal error has no domain reason", func(t *testing.T) {
		svc := new(mockService)
		c := newTestClient(t, svc)
		svc.On("SubmitPayment", mock.Anything, testTenantID, mock.Anything).Return(nil, errors.New("db down"))

		_, err := c.SubmitPayment(context.Background(), testTenantID, appbillpay.SubmitPaymentRequest{PaymentMethod: "check"})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "ERR_INTERNAL", apiErr.Code)
		assert.Nil(t, errors.Unwrap(apiErr))
	})
}

func TestClient_VoidPayment(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	paymentID := uuid.New()
	voided := samplePayment(uuid.New())
	voided.Status = "void"
	voided.VoidReason = "Lost check"

	svc.On("VoidPayment", mock.Anything, testTenantID, paymentID, mock.MatchedBy(func(req appbillpay.VoidPaymentRequest) bool {
		return req.Reason == "Lost check" && req.VoidedBy != nil && *req.VoidedBy == testUserID
	})).Return(voided, nil)

	got, err := c.VoidPayment(context.Background(), testTenantID, paymentID, appbillpay.VoidPaymentRequest{Reason: "Lost check"})
	require.NoError(t, err)
	assert.Equal(t, "void", got.Status)
	assert.Equal(t, "Lost check", got.VoidReason)
}

func TestClient_VoidPayment_NotFound(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	paymentID := uuid.New()
	svc.On("VoidPayment", mock.Anything, testTenantID, paymentID, mock.Anything).Return(nil, shared.ErrNotFound)

	_, err := c.VoidPayment(context.Background(), testTenantID, paymentID, appbillpay.VoidPaymentRequest{Reason: "x"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClient_DeletePayment(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	paymentID := uuid.New()
	svc.On("DeletePayment", mock.Anything, testTenantID, paymentID).Return(nil)

	require.NoError(t, c.DeletePayment(context.Background(), testTenantID, paymentID))
	svc.AssertExpectations(t)
}

func TestClient_GetCheckData(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	payment := samplePayment(uuid.New())
	data := &appbillpay.CheckDataResponse{
		Payment:           *payment,
		Vendor:            appbillpay.VendorResponse{ID: payment.VendorID, Name: "Northwind Paper"},
		Bills:             []appbillpay.CheckBillResponse{{BillID: uuid.New(), BillNumber: "INV-1", AmountApplied: decimal.NewFromInt(150)}},
		TotalApplied:      decimal.NewFromInt(150),
		PaymentAmountText: "150 and 0/100 dollars",
		FormattedAmount:   "$150.00",
	}
	svc.On("GetCheckData", mock.Anything, testTenantID, payment.ID).Return(data, nil)

	got, err := c.GetCheckData(context.Background(), testTenantID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Northwind Paper", got.Vendor.Name)
	assert.Equal(t, "150 and 0/100 dollars", got.PaymentAmountText)
	assert.Equal(t, "$150.00", got.FormattedAmount)
}

func TestClient_ListVendorPayments(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	vendorID := uuid.New()
	svc.On("ListVendorPayments", mock.Anything, testTenantID, vendorID).
		Return([]appbillpay.PaymentResponse{*samplePayment(vendorID), *samplePayment(vendorID)}, nil)

	got, err := c.ListVendorPayments(context.Background(), testTenantID, vendorID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClient_StrictSchema(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unknown envelope field", status: http.StatusOK, body: `{"success":true,"data":[],"extra":1}`},
		{name: "unknown data field", status: http.StatusOK, body: `{"success":true,"data":[{"id":"` + uuid.NewString() + `","surprise":true}]}`},
		{name: "success false on 200", status: http.StatusOK, body: `{"success":false,"data":[]}`},
		{name: "missing data", status: http.StatusOK, body: `{"success":true}`},
		{name: "not json", status: http.StatusOK, body: `<html></html>`},
		{name: "trailing data", status: http.StatusOK, body: `{"success":true,"data":[]} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newRawClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.FetchOutstandingBills(context.Background(), testTenantID, uuid.New())
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestClient_UnparseableErrorBody(t *testing.T) {
	c := newRawClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream failed"))
	})

	_, err := c.FetchOutstandingBills(context.Background(), testTenantID, uuid.New())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "ERR_UNKNOWN", apiErr.Code)
}

func TestClient_SendsHeaders(t *testing.T) {
	var seen http.Header
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})

	_, err := c.ListVendorPayments(context.Background(), testTenantID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, testTenantID.String(), seen.Get(middleware.TenantHeaderKey))
	assert.Empty(t, seen.Get(middleware.UserHeaderKey))
	assert.Equal(t, "application/json", seen.Get("Accept"))
}

func TestClient_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c := newRawClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.FetchOutstandingBills(ctx, testTenantID, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(&Config{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)
	_, err = c.FetchOutstandingBills(context.Background(), testTenantID, uuid.New())
	assert.ErrorIs(t, err, ErrUnavailable)
}

// The form drives a whole draft through the client exactly as it would
// through the in-process service.
func TestClient_DrivesPaymentForm(t *testing.T) {
	svc := new(mockService)
	c := newTestClient(t, svc)
	vendorID := uuid.New()
	bankID := uuid.New()
	bill := billpay.OutstandingBill{ID: uuid.New(), BillNumber: "INV-9", BillDate: day(2026, 1, 1), DueDate: day(2026, 1, 31),
		TotalAmount: decimal.NewFromInt(80), BalanceDue: decimal.NewFromInt(80)}
	svc.On("FetchOutstandingBills", mock.Anything, testTenantID, vendorID).Return([]billpay.OutstandingBill{bill}, nil)

	recorded := samplePayment(vendorID)
	svc.On("SubmitPayment", mock.Anything, testTenantID, mock.MatchedBy(func(req appbillpay.SubmitPaymentRequest) bool {
		return len(req.Applications) == 1 &&
			req.Applications[0].BillID == bill.ID &&
			req.Applications[0].AmountApplied.Equal(decimal.NewFromInt(80)) &&
			req.PaidFromAccountID == bankID
	})).Return(recorded, nil)

	form := appbillpay.NewPaymentForm(testTenantID)
	form.SelectVendor(vendorID)
	loaded, err := form.LoadBills(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	form.SetHeader(appbillpay.Header{
		PaymentDate:       day(2026, 3, 1),
		PaymentMethod:     billpay.PaymentMethodCheck,
		PaidFromAccountID: bankID,
	})
	form.SetPaymentAmount("$100.00")
	apps, err := form.Toggle(bill.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.True(t, apps[0].AmountApplied.Equal(decimal.NewFromInt(80)))

	resp, err := form.Submit(context.Background(), c, "form-key")
	require.NoError(t, err)
	assert.Equal(t, recorded.ID, resp.ID)
	svc.AssertExpectations(t)
}
