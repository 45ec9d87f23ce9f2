package billpay

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoidReasonMaxLength bounds the free-text reason stamped on a voided payment
const VoidReasonMaxLength = 500

// PaymentMethod is how the vendor was paid
type PaymentMethod string

const (
	PaymentMethodCheck      PaymentMethod = "check"
	PaymentMethodACH        PaymentMethod = "ach"
	PaymentMethodWire       PaymentMethod = "wire"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodOther      PaymentMethod = "other"
)

// AllPaymentMethods lists the accepted payment methods
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodCheck,
		PaymentMethodACH,
		PaymentMethodWire,
		PaymentMethodCreditCard,
		PaymentMethodCash,
		PaymentMethodOther,
	}
}

// IsValid checks if the method is a valid value
func (m PaymentMethod) IsValid() bool {
	for _, v := range AllPaymentMethods() {
		if m == v {
			return true
		}
	}
	return false
}

// ParsePaymentMethod normalises user input. Empty input defaults to "other".
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return PaymentMethodOther, nil
	}
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}
	return m, nil
}

// PaymentStatus is the lifecycle state of a recorded payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusCleared PaymentStatus = "cleared"
	PaymentStatusVoid    PaymentStatus = "void"
)

// IsValid checks if the status is a valid value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCleared, PaymentStatusVoid:
		return true
	}
	return false
}

// IsTerminal returns true if no transition leaves this status
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusVoid
}

// CanVoid returns true if a payment in this status can be voided
func (s PaymentStatus) CanVoid() bool {
	return s == PaymentStatusPending || s == PaymentStatusCleared
}

// CanClear returns true if a payment in this status can be marked cleared
func (s PaymentStatus) CanClear() bool {
	return s == PaymentStatusPending
}

// PaymentApplication assigns part of a payment to one bill
type PaymentApplication struct {
	ID            uuid.UUID       `json:"id,omitempty"`
	PaymentID     uuid.UUID       `json:"payment_id,omitempty"`
	BillID        uuid.UUID       `json:"bill_id"`
	BillNumber    string          `json:"bill_number,omitempty"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// Payment is a recorded vendor bill payment. Its applications are fixed at
// submission: corrections go through Void and a new payment.
type Payment struct {
	shared.TenantAggregateRoot
	PaymentNumber     string
	VendorID          uuid.UUID
	PaymentDate       time.Time
	PaymentMethod     PaymentMethod
	ReferenceNumber   string
	PaymentAmount     decimal.Decimal
	UnappliedAmount   decimal.Decimal
	PaidFromAccountID uuid.UUID
	Memo              string
	Status            PaymentStatus
	Applications      []PaymentApplication
	JournalEntryID    *uuid.UUID
	ClearedAt         *time.Time
	VoidDate          *time.Time
	VoidReason        string
	VoidedBy          *uuid.UUID
}

// NewPayment records a draft that has passed validation against the vendor's
// outstanding bills. Amounts are stored at cents. The returned payment is pending.
func NewPayment(tenantID uuid.UUID, paymentNumber string, draft PaymentDraft, bills []OutstandingBill) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if errs := ValidatePayment(draft, bills); errs.HasErrors() {
		return nil, errs
	}
	method := draft.PaymentMethod
	if method == "" {
		method = PaymentMethodOther
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentNumber:       paymentNumber,
		VendorID:            draft.VendorID,
		PaymentDate:         draft.PaymentDate,
		PaymentMethod:       method,
		ReferenceNumber:     strings.TrimSpace(draft.ReferenceNumber),
		PaymentAmount:       valueobject.RoundCurrency(draft.PaymentAmount),
		PaidFromAccountID:   draft.PaidFromAccountID,
		Memo:                strings.TrimSpace(draft.Memo),
		Status:              PaymentStatusPending,
		Applications:        make([]PaymentApplication, 0, len(draft.Applications)),
	}
	if !p.PaymentAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", MsgAmountNotPositive)
	}

	seen := make(map[uuid.UUID]struct{}, len(draft.Applications))
	for _, app := range draft.Applications {
		if _, dup := seen[app.BillID]; dup {
			return nil, shared.NewDomainError("DUPLICATE_APPLICATION",
				fmt.Sprintf("Bill %s is applied more than once", app.BillID))
		}
		seen[app.BillID] = struct{}{}
		amount := valueobject.RoundCurrency(app.AmountApplied)
		if !amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Each application must have an amount_applied greater than 0")
		}
		bill, ok := FindBill(bills, app.BillID)
		if !ok {
			return nil, shared.NewDomainError("BILL_NOT_FOUND",
				fmt.Sprintf("Bill %s is not an outstanding bill of this vendor", app.BillID))
		}
		p.Applications = append(p.Applications, PaymentApplication{
			ID:            uuid.New(),
			PaymentID:     p.ID,
			BillID:        bill.ID,
			BillNumber:    bill.BillNumber,
			AmountApplied: amount,
		})
	}
	p.UnappliedAmount = p.PaymentAmount.Sub(p.TotalApplied())

	p.AddDomainEvent(NewBillPaymentSubmittedEvent(p))
	return p, nil
}

// TotalApplied sums the applied amounts
func (p *Payment) TotalApplied() decimal.Decimal {
	total := decimal.Zero
	for _, app := range p.Applications {
		total = total.Add(app.AmountApplied)
	}
	return total
}

// ApplicationCount returns the number of bill applications
func (p *Payment) ApplicationCount() int {
	return len(p.Applications)
}

// IsVoid returns true if the payment has been voided
func (p *Payment) IsVoid() bool {
	return p.Status == PaymentStatusVoid
}

// AttachJournalEntry links the GL entry posted for this payment
func (p *Payment) AttachJournalEntry(entryID uuid.UUID) {
	p.JournalEntryID = &entryID
}

// CanDelete is true only for a payment without applications that is not void.
// A payment with applications has moved bill balances and must be voided.
func (p *Payment) CanDelete() bool {
	return len(p.Applications) == 0 && p.Status != PaymentStatusVoid
}

// EnsureDeletable explains why CanDelete is false
func (p *Payment) EnsureDeletable() error {
	if p.Status == PaymentStatusVoid {
		return shared.NewDomainError("CANNOT_DELETE", "Cannot delete voided payment")
	}
	if len(p.Applications) > 0 {
		return shared.NewDomainError("CANNOT_DELETE", "Cannot delete payment with applications. Void it instead.")
	}
	return nil
}

// Delete marks the payment for removal after checking the delete guard
func (p *Payment) Delete() error {
	if err := p.EnsureDeletable(); err != nil {
		return err
	}
	p.AddDomainEvent(NewBillPaymentDeletedEvent(p))
	return nil
}

// CanPrintCheck is true for non-void check payments
func (p *Payment) CanPrintCheck() bool {
	return p.PaymentMethod == PaymentMethodCheck && p.Status != PaymentStatusVoid
}

// EnsurePrintable explains why CanPrintCheck is false
func (p *Payment) EnsurePrintable() error {
	if p.PaymentMethod != PaymentMethodCheck {
		return shared.NewDomainError("NOT_A_CHECK", "Only check payments can be printed")
	}
	if p.Status == PaymentStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "Cannot print a voided payment")
	}
	return nil
}

// NormalizeVoidReason trims the reason and enforces presence and length
func NormalizeVoidReason(reason string) (string, error) {
	r := strings.TrimSpace(reason)
	if r == "" {
		return "", shared.NewDomainError("VOID_REASON_REQUIRED", "Void reason is required")
	}
	if len([]rune(r)) > VoidReasonMaxLength {
		return "", shared.NewDomainError("INVALID_VOID_REASON",
			fmt.Sprintf("Void reason must be at most %d characters", VoidReasonMaxLength))
	}
	return r, nil
}

// Void cancels the payment permanently
func (p *Payment) Void(reason string, voidedBy uuid.UUID) error {
	r, err := NormalizeVoidReason(reason)
	if err != nil {
		return err
	}
	if p.Status == PaymentStatusVoid {
		return shared.NewDomainError("ALREADY_VOID", "Payment is already voided")
	}
	if !p.Status.CanVoid() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusVoid
	p.VoidDate = &now
	p.VoidReason = r
	if voidedBy != uuid.Nil {
		p.VoidedBy = &voidedBy
	}
	p.IncrementVersion()

	p.AddDomainEvent(NewBillPaymentVoidedEvent(p))
	return nil
}

// MarkCleared records that the payment has cleared the bank
func (p *Payment) MarkCleared() error {
	if !p.Status.CanClear() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot clear payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusCleared
	p.ClearedAt = &now
	p.IncrementVersion()

	p.AddDomainEvent(NewBillPaymentClearedEvent(p))
	return nil
}

// HeaderUpdate carries the header fields that may change after submission.
// Nil fields are left unchanged.
type HeaderUpdate struct {
	PaymentDate     *time.Time
	PaymentMethod   *PaymentMethod
	ReferenceNumber *string
	Memo            *string
}

// UpdateHeader edits the descriptive header of a recorded payment
func (p *Payment) UpdateHeader(u HeaderUpdate) error {
	if p.Status == PaymentStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify voided payment")
	}
	if u.PaymentDate != nil {
		if u.PaymentDate.IsZero() {
			return shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
		}
		p.PaymentDate = *u.PaymentDate
	}
	if u.PaymentMethod != nil {
		if !u.PaymentMethod.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Invalid payment method")
		}
		p.PaymentMethod = *u.PaymentMethod
	}
	if u.ReferenceNumber != nil {
		p.ReferenceNumber = strings.TrimSpace(*u.ReferenceNumber)
	}
	if u.Memo != nil {
		p.Memo = strings.TrimSpace(*u.Memo)
	}
	p.IncrementVersion()

	p.AddDomainEvent(NewBillPaymentUpdatedEvent(p))
	return nil
}

// AmountMoney returns the payment amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.PaymentAmount)
}

// PaymentNumberPrefix starts every bill payment number
const PaymentNumberPrefix = "BPAY-"

// FormatPaymentNumber renders sequence n as BPAY-0001. Sequences above 9999
// simply grow wider.
func FormatPaymentNumber(n int) string {
	return fmt.Sprintf("%s%04d", PaymentNumberPrefix, n)
}

// ParsePaymentNumber extracts the sequence from a BPAY-#### number
func ParsePaymentNumber(s string) (int, bool) {
	if !strings.HasPrefix(s, PaymentNumberPrefix) {
		return 0, false
	}
	digits := s[len(PaymentNumberPrefix):]
	if digits == "" {
		return 0, false
	}
	// Atoi alone would accept a sign
	if strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextPaymentNumber returns the number following the highest existing one
func NextPaymentNumber(existing []string) string {
	highest := 0
	for _, s := range existing {
		if n, ok := ParsePaymentNumber(s); ok && n > highest {
			highest = n
		}
	}
	return FormatPaymentNumber(highest + 1)
}
