package billpay

import (
	"fmt"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// JournalEntryTypeBillPayment tags entries posted for bill payments
	JournalEntryTypeBillPayment = "bill_payment"
	// JournalVoidReasonPaymentVoided is stamped on entries reversed by a void
	JournalVoidReasonPaymentVoided = "Bill payment voided"
	// JournalVoidReasonPaymentDeleted is stamped on entries reversed by a delete
	JournalVoidReasonPaymentDeleted = "Bill payment deleted"
)

// JournalLine is one debit or credit of a journal entry
type JournalLine struct {
	ID           uuid.UUID
	EntryID      uuid.UUID
	AccountID    uuid.UUID
	LineNumber   int
	DebitAmount  decimal.Decimal
	CreditAmount decimal.Decimal
	Description  string
	EntityType   string
	EntityID     uuid.UUID
}

// JournalEntry is a general-ledger transaction
type JournalEntry struct {
	shared.TenantAggregateRoot
	EntryDate          time.Time
	EntryType          string
	Description        string
	SourceDocumentID   uuid.UUID
	SourceDocumentType string
	IsPosted           bool
	IsVoid             bool
	VoidDate           *time.Time
	VoidReason         string
	Lines              []JournalLine
}

// NewBillPaymentEntry posts a payment: debit accounts payable, credit the
// account the money left from.
func NewBillPaymentEntry(p *Payment, payablesAccountID uuid.UUID) (*JournalEntry, error) {
	if payablesAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Accounts payable account is required")
	}
	if p.PaidFromAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Paid from account is required")
	}
	if !p.PaymentAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be greater than 0")
	}

	entry := &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(p.TenantID),
		EntryDate:           p.PaymentDate,
		EntryType:           JournalEntryTypeBillPayment,
		Description:         fmt.Sprintf("Bill Payment %s", p.PaymentNumber),
		SourceDocumentID:    p.ID,
		SourceDocumentType:  JournalEntryTypeBillPayment,
		IsPosted:            true,
	}
	entry.Lines = []JournalLine{
		{
			ID:           uuid.New(),
			EntryID:      entry.ID,
			AccountID:    payablesAccountID,
			LineNumber:   1,
			DebitAmount:  p.PaymentAmount,
			CreditAmount: decimal.Zero,
			Description:  entry.Description,
			EntityType:   "vendor",
			EntityID:     p.VendorID,
		},
		{
			ID:           uuid.New(),
			EntryID:      entry.ID,
			AccountID:    p.PaidFromAccountID,
			LineNumber:   2,
			DebitAmount:  decimal.Zero,
			CreditAmount: p.PaymentAmount,
			Description:  fmt.Sprintf("Payment made - %s", p.PaymentMethod),
			EntityType:   "vendor",
			EntityID:     p.VendorID,
		},
	}
	return entry, nil
}

// IsBalanced reports whether debits equal credits
func (e *JournalEntry) IsBalanced() bool {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.DebitAmount)
		credit = credit.Add(l.CreditAmount)
	}
	return debit.Equal(credit)
}

// Void reverses the entry. Voiding twice is an error.
func (e *JournalEntry) Void(reason string) error {
	if e.IsVoid {
		return shared.NewDomainError("ALREADY_VOID", "Journal entry is already voided")
	}
	now := time.Now()
	e.IsVoid = true
	e.VoidDate = &now
	e.VoidReason = reason
	e.IncrementVersion()
	return nil
}
