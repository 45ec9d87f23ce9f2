package billpay

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation error keys
const (
	FieldVendorID          = "vendor_id"
	FieldPaymentDate       = "payment_date"
	FieldPaymentAmount     = "payment_amount"
	FieldPaidFromAccountID = "paid_from_account_id"
	FieldApplications      = "applications"
)

// Validation messages
const (
	MsgVendorRequired      = "Vendor is required"
	MsgPaymentDateRequired = "Payment date is required"
	MsgAmountNotPositive   = "Payment amount must be greater than 0"
	MsgPaidFromRequired    = "Paid from account is required"
	MsgNoApplications      = "Payment must be applied to at least one bill"
	MsgOverApplied         = "Total applied cannot exceed payment amount"
)

// ApplicationErrorKey is the error key for a per-bill violation
func ApplicationErrorKey(billID uuid.UUID) string {
	return "app_" + billID.String()
}

// PaymentDraft is a payment that has not been submitted yet
type PaymentDraft struct {
	VendorID          uuid.UUID
	PaymentDate       time.Time
	PaymentMethod     PaymentMethod
	ReferenceNumber   string
	PaymentAmount     decimal.Decimal
	PaidFromAccountID uuid.UUID
	Memo              string
	Applications      []PaymentApplication
}

// Totals computes the draft's applied and unapplied amounts
func (d PaymentDraft) Totals() Totals {
	return ComputeTotals(d.Applications, d.PaymentAmount)
}

// ValidationErrors maps a field key to a human-readable message.
// An empty map means the draft can be submitted.
type ValidationErrors map[string]string

// HasErrors returns true if any rule was violated
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Keys returns the violated keys in sorted order
func (v ValidationErrors) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Error implements error so a failed validation can travel as one
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, k := range v.Keys() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidatePayment checks a draft against the vendor's outstanding bills.
// Every rule runs; all violations are returned together.
func ValidatePayment(draft PaymentDraft, bills []OutstandingBill) ValidationErrors {
	errs := ValidationErrors{}

	if draft.VendorID == uuid.Nil {
		errs[FieldVendorID] = MsgVendorRequired
	}
	if draft.PaymentDate.IsZero() {
		errs[FieldPaymentDate] = MsgPaymentDateRequired
	}
	if !draft.PaymentAmount.IsPositive() {
		errs[FieldPaymentAmount] = MsgAmountNotPositive
	}
	if draft.PaidFromAccountID == uuid.Nil {
		errs[FieldPaidFromAccountID] = MsgPaidFromRequired
	}
	if len(draft.Applications) == 0 {
		errs[FieldApplications] = MsgNoApplications
	}
	if draft.Totals().IsOverApplied {
		errs[FieldApplications] = MsgOverApplied
	}

	for _, app := range draft.Applications {
		bill, ok := FindBill(bills, app.BillID)
		if !ok {
			continue
		}
		if valueobject.RoundCurrency(app.AmountApplied).GreaterThan(valueobject.RoundCurrency(bill.BalanceDue)) {
			errs[ApplicationErrorKey(app.BillID)] = fmt.Sprintf("Amount exceeds balance due of %s",
				valueobject.FormatCurrency(bill.BalanceDue))
		}
	}

	return errs
}
