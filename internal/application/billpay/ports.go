package billpay

import (
	"context"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/google/uuid"
)

// OutstandingBillsProvider fetches the open bills of a vendor
type OutstandingBillsProvider interface {
	FetchOutstandingBills(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, error)
}

// PaymentSubmitter records a validated draft
type PaymentSubmitter interface {
	SubmitPayment(ctx context.Context, tenantID uuid.UUID, req SubmitPaymentRequest) (*PaymentResponse, error)
}

// PaymentVoider voids a recorded payment
type PaymentVoider interface {
	VoidPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req VoidPaymentRequest) (*PaymentResponse, error)
}

// PaymentDeleter removes a payment that never moved any bill balance
type PaymentDeleter interface {
	DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error
}

// CheckDataFetcher returns the data needed to print a check
type CheckDataFetcher interface {
	GetCheckData(ctx context.Context, tenantID, paymentID uuid.UUID) (*CheckDataResponse, error)
}

// VendorPaymentsLister returns a vendor's most recent payments
type VendorPaymentsLister interface {
	ListVendorPayments(ctx context.Context, tenantID, vendorID uuid.UUID) ([]PaymentResponse, error)
}

// Gateway is the full set of operations a payment form talks to
type Gateway interface {
	OutstandingBillsProvider
	PaymentSubmitter
	PaymentVoider
	PaymentDeleter
	CheckDataFetcher
	VendorPaymentsLister
}

// OutstandingBillsCache keeps recent outstanding-bill lookups per vendor.
// A miss is reported with ok == false and a nil error.
type OutstandingBillsCache interface {
	Get(ctx context.Context, tenantID, vendorID uuid.UUID) (bills []billpay.OutstandingBill, ok bool, err error)
	Set(ctx context.Context, tenantID, vendorID uuid.UUID, bills []billpay.OutstandingBill, ttl time.Duration) error
	Invalidate(ctx context.Context, tenantID, vendorID uuid.UUID) error
}

// CheckArchive stores the rendered check layout and returns a link to it
type CheckArchive interface {
	Archive(ctx context.Context, key string, body []byte) (url string, err error)
}
