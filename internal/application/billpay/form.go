package billpay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrStaleResponse is returned when a bill lookup finishes after the
	// vendor selection it was issued for has changed.
	ErrStaleResponse = errors.New("billpay: outstanding bills response is stale")
	// ErrSubmitInFlight rejects a second Submit while one is running
	ErrSubmitInFlight = errors.New("billpay: a submit is already in flight")
	// ErrBillNotLoaded is returned when toggling a bill that is not in the loaded list
	ErrBillNotLoaded = errors.New("billpay: bill is not among the loaded outstanding bills")
	// ErrNoVendor is returned when bills are loaded before a vendor is selected
	ErrNoVendor = errors.New("billpay: no vendor selected")
)

// Header is the editable header of a payment draft
type Header struct {
	PaymentDate       time.Time
	PaymentMethod     billpay.PaymentMethod
	ReferenceNumber   string
	PaidFromAccountID uuid.UUID
	Memo              string
}

// PaymentForm holds one caller's payment draft. It is safe for concurrent
// use; collaborator calls are made without holding the lock.
type PaymentForm struct {
	mu         sync.Mutex
	tenantID   uuid.UUID
	generation uint64
	submitting bool
	bills      []billpay.OutstandingBill
	draft      billpay.PaymentDraft
}

// NewPaymentForm creates an empty form for a tenant
func NewPaymentForm(tenantID uuid.UUID) *PaymentForm {
	return &PaymentForm{
		tenantID: tenantID,
		draft: billpay.PaymentDraft{
			PaymentMethod: billpay.PaymentMethodCheck,
			Applications:  billpay.ResetApplications(),
		},
	}
}

// SelectVendor switches the draft to another vendor. Loaded bills and
// applications are discarded. The returned generation identifies this
// selection; bill lookups issued for an older one are ignored.
func (f *PaymentForm) SelectVendor(vendorID uuid.UUID) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generation++
	f.draft.VendorID = vendorID
	f.bills = nil
	f.draft.Applications = billpay.ResetApplications()
	return f.generation
}

// Generation returns the current vendor selection generation
func (f *PaymentForm) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation
}

// LoadBills fetches the selected vendor's outstanding bills. The result is
// applied only if the vendor selection has not changed meanwhile.
func (f *PaymentForm) LoadBills(ctx context.Context, provider OutstandingBillsProvider) ([]billpay.OutstandingBill, error) {
	f.mu.Lock()
	gen := f.generation
	vendorID := f.draft.VendorID
	tenantID := f.tenantID
	f.mu.Unlock()

	if vendorID == uuid.Nil {
		return nil, ErrNoVendor
	}

	bills, err := provider.FetchOutstandingBills(ctx, tenantID, vendorID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return nil, ErrStaleResponse
	}
	if err != nil {
		return nil, err
	}
	f.bills = append([]billpay.OutstandingBill(nil), bills...)
	return append([]billpay.OutstandingBill(nil), f.bills...), nil
}

// Bills returns a copy of the loaded outstanding bills
func (f *PaymentForm) Bills() []billpay.OutstandingBill {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]billpay.OutstandingBill(nil), f.bills...)
}

// SetHeader replaces the header fields of the draft
func (f *PaymentForm) SetHeader(h Header) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.PaymentDate = h.PaymentDate
	f.draft.PaymentMethod = h.PaymentMethod
	f.draft.ReferenceNumber = h.ReferenceNumber
	f.draft.PaidFromAccountID = h.PaidFromAccountID
	f.draft.Memo = h.Memo
}

// SetPaymentAmount parses raw user input into the payment amount.
// Existing applications are not rescaled.
func (f *PaymentForm) SetPaymentAmount(raw string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.PaymentAmount = valueobject.ParseAmount(raw)
	return f.draft.PaymentAmount
}

// Toggle selects or deselects a loaded bill
func (f *PaymentForm) Toggle(billID uuid.UUID) ([]billpay.PaymentApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bill, ok := billpay.FindBill(f.bills, billID)
	if !ok {
		return nil, ErrBillNotLoaded
	}
	f.draft.Applications = billpay.ToggleBill(bill, f.draft.Applications, f.draft.PaymentAmount)
	return copyApplications(f.draft.Applications), nil
}

// SetAmount edits the amount applied to one selected bill
func (f *PaymentForm) SetAmount(billID uuid.UUID, raw string) []billpay.PaymentApplication {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.draft.Applications = billpay.SetAmount(billID, raw, f.draft.Applications)
	return copyApplications(f.draft.Applications)
}

// Applications returns a copy of the current applications
func (f *PaymentForm) Applications() []billpay.PaymentApplication {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyApplications(f.draft.Applications)
}

// Totals returns the applied and unapplied amounts of the draft
func (f *PaymentForm) Totals() billpay.Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Totals()
}

// Validate runs the payment validator against the loaded bills
func (f *PaymentForm) Validate() billpay.ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return billpay.ValidatePayment(f.draft, f.bills)
}

// Draft returns a copy of the current draft
func (f *PaymentForm) Draft() billpay.PaymentDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.draft
	d.Applications = copyApplications(f.draft.Applications)
	return d
}

// Submit validates the draft locally and hands it to submitter. Validation
// failures are returned as billpay.ValidationErrors without calling the
// collaborator. On collaborator failure the draft is left as it was; on
// success the draft is cleared for the same vendor, unless the vendor
// selection changed while the submit was in flight.
func (f *PaymentForm) Submit(ctx context.Context, submitter PaymentSubmitter, idempotencyKey string) (*PaymentResponse, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if errs := billpay.ValidatePayment(f.draft, f.bills); errs.HasErrors() {
		f.mu.Unlock()
		return nil, errs
	}
	f.submitting = true
	req := SubmitRequestFromDraft(f.draft)
	req.IdempotencyKey = idempotencyKey
	tenantID := f.tenantID
	gen := f.generation
	f.mu.Unlock()

	resp, err := submitter.SubmitPayment(ctx, tenantID, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return nil, err
	}
	if gen != f.generation {
		// another vendor was selected while the payment was in flight
		return resp, nil
	}

	f.generation++
	f.bills = nil
	f.draft = billpay.PaymentDraft{
		VendorID:      f.draft.VendorID,
		PaymentMethod: f.draft.PaymentMethod,
		Applications:  billpay.ResetApplications(),
	}
	return resp, nil
}

// Void runs the void guards locally before asking voider to void payment
func (f *PaymentForm) Void(ctx context.Context, payment *PaymentResponse, reason string, voider PaymentVoider) (*PaymentResponse, error) {
	r, err := billpay.NormalizeVoidReason(reason)
	if err != nil {
		return nil, err
	}
	if payment.lifecycle().IsVoid() {
		return nil, shared.NewDomainError("ALREADY_VOID", "Payment is already voided")
	}
	return voider.VoidPayment(ctx, f.tenantID, payment.ID, VoidPaymentRequest{Reason: r})
}

// Delete runs the delete guard locally before asking deleter to delete payment
func (f *PaymentForm) Delete(ctx context.Context, payment *PaymentResponse, deleter PaymentDeleter) error {
	if err := payment.lifecycle().EnsureDeletable(); err != nil {
		return err
	}
	return deleter.DeletePayment(ctx, f.tenantID, payment.ID)
}

// PrintCheck fetches check data for a printable payment
func (f *PaymentForm) PrintCheck(ctx context.Context, payment *PaymentResponse, fetcher CheckDataFetcher) (*CheckDataResponse, error) {
	if err := payment.lifecycle().EnsurePrintable(); err != nil {
		return nil, err
	}
	return fetcher.GetCheckData(ctx, f.tenantID, payment.ID)
}

func copyApplications(apps []billpay.PaymentApplication) []billpay.PaymentApplication {
	out := make([]billpay.PaymentApplication, len(apps))
	copy(out, apps)
	return out
}
