package billpay

import (
	"fmt"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the accounts-payable status of a vendor bill
type BillStatus string

const (
	BillStatusDraft   BillStatus = "draft"
	BillStatusOpen    BillStatus = "open"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
	BillStatusVoid    BillStatus = "void"
)

// IsValid checks if the status is a valid value
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusDraft, BillStatusOpen, BillStatusPartial, BillStatusPaid, BillStatusVoid:
		return true
	}
	return false
}

// AcceptsPayments returns true when payments may be applied in this status
func (s BillStatus) AcceptsPayments() bool {
	return s == BillStatusOpen || s == BillStatusPartial
}

// Bill is a vendor invoice owed by the business. Bills are created by the
// accounts-payable subsystem; this package only moves their balances when a
// payment is applied or reversed.
type Bill struct {
	shared.TenantAggregateRoot
	VendorID        uuid.UUID
	BillNumber      string
	VendorReference string
	BillDate        time.Time
	DueDate         time.Time
	TotalAmount     decimal.Decimal
	AmountPaid      decimal.Decimal
	BalanceDue      decimal.Decimal
	Status          BillStatus
	PaidDate        *time.Time
}

// NewBill creates an open bill with its full amount outstanding
func NewBill(
	tenantID, vendorID uuid.UUID,
	billNumber, vendorReference string,
	billDate, dueDate time.Time,
	totalAmount decimal.Decimal,
) (*Bill, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Bill total cannot be negative")
	}
	if billDate.IsZero() || dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Bill date and due date are required")
	}

	return &Bill{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VendorID:            vendorID,
		BillNumber:          billNumber,
		VendorReference:     vendorReference,
		BillDate:            billDate,
		DueDate:             dueDate,
		TotalAmount:         totalAmount,
		AmountPaid:          decimal.Zero,
		BalanceDue:          totalAmount,
		Status:              BillStatusOpen,
	}, nil
}

// IsOutstanding reports whether the bill should be offered for payment
func (b *Bill) IsOutstanding() bool {
	return b.BalanceDue.IsPositive() && b.Status != BillStatusVoid && b.Status != BillStatusDraft
}

// ApplyPayment moves amount from balance due to amount paid
func (b *Bill) ApplyPayment(amount decimal.Decimal, paidOn time.Time) error {
	if b.Status == BillStatusVoid {
		return shared.NewDomainError("BILL_VOID", fmt.Sprintf("Cannot apply payment to voided bill %s", b.BillNumber))
	}
	if b.Status == BillStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to draft bill %s", b.BillNumber))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Each application amount must be greater than 0")
	}
	if amount.GreaterThan(b.BalanceDue) {
		return shared.NewDomainError("EXCEEDS_BALANCE",
			fmt.Sprintf("Amount applied to bill %s exceeds balance due", b.BillNumber))
	}

	b.AmountPaid = b.AmountPaid.Add(amount)
	b.BalanceDue = b.BalanceDue.Sub(amount)
	if !b.BalanceDue.IsPositive() {
		b.Status = BillStatusPaid
		paid := paidOn
		b.PaidDate = &paid
	} else {
		b.Status = BillStatusPartial
	}
	b.IncrementVersion()
	return nil
}

// ReversePayment restores amount to the balance due after a payment is voided
func (b *Bill) ReversePayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be greater than 0")
	}
	if amount.GreaterThan(b.AmountPaid) {
		return shared.NewDomainError("EXCEEDS_PAID",
			fmt.Sprintf("Reversal of %s exceeds amount paid on bill %s",
				valueobject.FormatCurrency(amount), b.BillNumber))
	}

	b.AmountPaid = b.AmountPaid.Sub(amount)
	b.BalanceDue = b.BalanceDue.Add(amount)
	if b.Status == BillStatusPaid || b.Status == BillStatusPartial {
		if b.AmountPaid.IsZero() {
			b.Status = BillStatusOpen
		} else {
			b.Status = BillStatusPartial
		}
		b.PaidDate = nil
	}
	b.IncrementVersion()
	return nil
}

// Snapshot returns the read-only view offered to the allocation engine
func (b *Bill) Snapshot() OutstandingBill {
	return OutstandingBill{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		VendorReference: b.VendorReference,
		BillDate:        b.BillDate,
		DueDate:         b.DueDate,
		TotalAmount:     b.TotalAmount,
		BalanceDue:      b.BalanceDue,
	}
}

// OutstandingBill is an immutable snapshot of an open bill for one vendor
type OutstandingBill struct {
	ID              uuid.UUID       `json:"id"`
	BillNumber      string          `json:"bill_number"`
	VendorReference string          `json:"vendor_reference"`
	BillDate        time.Time       `json:"bill_date"`
	DueDate         time.Time       `json:"due_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
}

// IsOverdue compares calendar days: a bill due yesterday is overdue, one due today is not.
func (b OutstandingBill) IsOverdue(today time.Time) bool {
	due := time.Date(b.DueDate.Year(), b.DueDate.Month(), b.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(now)
}

// FindBill returns the bill with the given ID from a snapshot list
func FindBill(bills []OutstandingBill, id uuid.UUID) (OutstandingBill, bool) {
	for _, b := range bills {
		if b.ID == id {
			return b, true
		}
	}
	return OutstandingBill{}, false
}
