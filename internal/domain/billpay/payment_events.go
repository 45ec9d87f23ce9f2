package billpay

import (
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeBillPaymentSubmitted = "BillPaymentSubmitted"
	EventTypeBillPaymentVoided    = "BillPaymentVoided"
	EventTypeBillPaymentCleared   = "BillPaymentCleared"
	EventTypeBillPaymentUpdated   = "BillPaymentUpdated"
	EventTypeBillPaymentDeleted   = "BillPaymentDeleted"

	AggregateTypeBillPayment = "BillPayment"
)

// AppliedBill is the event payload for one application
type AppliedBill struct {
	BillID        uuid.UUID       `json:"bill_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

func appliedBills(p *Payment) []AppliedBill {
	out := make([]AppliedBill, len(p.Applications))
	for i, app := range p.Applications {
		out[i] = AppliedBill{BillID: app.BillID, AmountApplied: app.AmountApplied}
	}
	return out
}

// VendorScopedEvent is implemented by events that change a vendor's open bills
type VendorScopedEvent interface {
	shared.DomainEvent
	GetVendorID() uuid.UUID
}

// BillPaymentSubmittedEvent is raised when a payment is recorded
type BillPaymentSubmittedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	VendorID      uuid.UUID       `json:"vendor_id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	TotalApplied  decimal.Decimal `json:"total_applied"`
	Applications  []AppliedBill   `json:"applications"`
}

// NewBillPaymentSubmittedEvent creates a new BillPaymentSubmittedEvent
func NewBillPaymentSubmittedEvent(p *Payment) *BillPaymentSubmittedEvent {
	return &BillPaymentSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaymentSubmitted, AggregateTypeBillPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		VendorID:        p.VendorID,
		PaymentMethod:   p.PaymentMethod,
		PaymentDate:     p.PaymentDate,
		PaymentAmount:   p.PaymentAmount,
		TotalApplied:    p.TotalApplied(),
		Applications:    appliedBills(p),
	}
}

// GetVendorID returns the paid vendor
func (e *BillPaymentSubmittedEvent) GetVendorID() uuid.UUID { return e.VendorID }

// BillPaymentVoidedEvent is raised when a payment is voided
type BillPaymentVoidedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	VendorID      uuid.UUID       `json:"vendor_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Reason        string          `json:"reason"`
	VoidedAt      time.Time       `json:"voided_at"`
	Applications  []AppliedBill   `json:"applications"`
}

// NewBillPaymentVoidedEvent creates a new BillPaymentVoidedEvent
func NewBillPaymentVoidedEvent(p *Payment) *BillPaymentVoidedEvent {
	var voidedAt time.Time
	if p.VoidDate != nil {
		voidedAt = *p.VoidDate
	}
	return &BillPaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaymentVoided, AggregateTypeBillPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		VendorID:        p.VendorID,
		PaymentAmount:   p.PaymentAmount,
		Reason:          p.VoidReason,
		VoidedAt:        voidedAt,
		Applications:    appliedBills(p),
	}
}

// GetVendorID returns the paid vendor
func (e *BillPaymentVoidedEvent) GetVendorID() uuid.UUID { return e.VendorID }

// BillPaymentClearedEvent is raised when a payment clears the bank
type BillPaymentClearedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	VendorID      uuid.UUID       `json:"vendor_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

// NewBillPaymentClearedEvent creates a new BillPaymentClearedEvent
func NewBillPaymentClearedEvent(p *Payment) *BillPaymentClearedEvent {
	return &BillPaymentClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaymentCleared, AggregateTypeBillPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		VendorID:        p.VendorID,
		PaymentAmount:   p.PaymentAmount,
	}
}

// BillPaymentUpdatedEvent is raised when the payment header is edited
type BillPaymentUpdatedEvent struct {
	shared.BaseDomainEvent
	PaymentID       uuid.UUID     `json:"payment_id"`
	PaymentNumber   string        `json:"payment_number"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentDate     time.Time     `json:"payment_date"`
	ReferenceNumber string        `json:"reference_number"`
}

// NewBillPaymentUpdatedEvent creates a new BillPaymentUpdatedEvent
func NewBillPaymentUpdatedEvent(p *Payment) *BillPaymentUpdatedEvent {
	return &BillPaymentUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaymentUpdated, AggregateTypeBillPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PaymentMethod:   p.PaymentMethod,
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
	}
}

// BillPaymentDeletedEvent is raised when an unapplied payment is deleted
type BillPaymentDeletedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	VendorID      uuid.UUID       `json:"vendor_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

// NewBillPaymentDeletedEvent creates a new BillPaymentDeletedEvent
func NewBillPaymentDeletedEvent(p *Payment) *BillPaymentDeletedEvent {
	return &BillPaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillPaymentDeleted, AggregateTypeBillPayment, p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		VendorID:        p.VendorID,
		PaymentAmount:   p.PaymentAmount,
	}
}
