package billpay

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBillPaymentEntry(t *testing.T) {
	bill := newTestBill("B-1", "80.00")
	p := newTestPayment(t, "80.00", []OutstandingBill{bill},
		PaymentApplication{BillID: bill.ID, AmountApplied: dec("80.00")})
	payables := uuid.New()

	entry, err := NewBillPaymentEntry(p, payables)
	require.NoError(t, err)

	assert.Equal(t, p.TenantID, entry.TenantID)
	assert.Equal(t, JournalEntryTypeBillPayment, entry.EntryType)
	assert.Equal(t, "Bill Payment BPAY-0001", entry.Description)
	assert.Equal(t, p.ID, entry.SourceDocumentID)
	assert.True(t, entry.IsPosted)
	assert.True(t, entry.IsBalanced())

	require.Len(t, entry.Lines, 2)
	debit, credit := entry.Lines[0], entry.Lines[1]
	assert.Equal(t, payables, debit.AccountID)
	assertAmount(t, "80.00", debit.DebitAmount)
	assertAmount(t, "0", debit.CreditAmount)
	assert.Equal(t, p.PaidFromAccountID, credit.AccountID)
	assertAmount(t, "80.00", credit.CreditAmount)
	assert.Equal(t, "Payment made - check", credit.Description)
	assert.Equal(t, "vendor", credit.EntityType)
	assert.Equal(t, p.VendorID, credit.EntityID)

	_, err = NewBillPaymentEntry(p, uuid.Nil)
	assertDomainCode(t, err, "INVALID_ACCOUNT")
}

func TestJournalEntry_Void(t *testing.T) {
	bill := newTestBill("B-1", "80.00")
	p := newTestPayment(t, "10.00", []OutstandingBill{bill},
		PaymentApplication{BillID: bill.ID, AmountApplied: dec("10.00")})
	entry, err := NewBillPaymentEntry(p, uuid.New())
	require.NoError(t, err)

	require.NoError(t, entry.Void(JournalVoidReasonPaymentVoided))
	assert.True(t, entry.IsVoid)
	assert.Equal(t, "Bill payment voided", entry.VoidReason)
	assert.NotNil(t, entry.VoidDate)

	assertDomainCode(t, entry.Void("again"), "ALREADY_VOID")
}
