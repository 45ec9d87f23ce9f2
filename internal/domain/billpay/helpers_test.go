package billpay

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, dec(expected).StringFixed(2), actual.StringFixed(2), msgAndArgs...)
}

func newTestBill(number, balance string) OutstandingBill {
	return OutstandingBill{
		ID:          uuid.New(),
		BillNumber:  number,
		BillDate:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
		TotalAmount: dec(balance),
		BalanceDue:  dec(balance),
	}
}

func newTestDraft(amount string, apps ...PaymentApplication) PaymentDraft {
	return PaymentDraft{
		VendorID:          uuid.New(),
		PaymentDate:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethod:     PaymentMethodCheck,
		ReferenceNumber:   "1001",
		PaymentAmount:     dec(amount),
		PaidFromAccountID: uuid.New(),
		Applications:      apps,
	}
}

func newTestPayment(t *testing.T, amount string, bills []OutstandingBill, apps ...PaymentApplication) *Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), "BPAY-0001", newTestDraft(amount, apps...), bills)
	if err != nil {
		t.Fatalf("NewPayment: %v", err)
	}
	return p
}
