package billpay

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePayment(t *testing.T) {
	bill := newTestBill("B-1", "80.00")
	bills := []OutstandingBill{bill}
	validApp := PaymentApplication{BillID: bill.ID, AmountApplied: dec("50.00")}

	t.Run("valid draft has no errors", func(t *testing.T) {
		errs := ValidatePayment(newTestDraft("50.00", validApp), bills)
		assert.False(t, errs.HasErrors())
		assert.Empty(t, errs)
	})

	t.Run("empty draft reports every header rule together", func(t *testing.T) {
		errs := ValidatePayment(PaymentDraft{}, bills)

		assert.Equal(t, ValidationErrors{
			FieldVendorID:          MsgVendorRequired,
			FieldPaymentDate:       MsgPaymentDateRequired,
			FieldPaymentAmount:     MsgAmountNotPositive,
			FieldPaidFromAccountID: MsgPaidFromRequired,
			FieldApplications:      MsgNoApplications,
		}, errs)
	})

	t.Run("negative payment amount", func(t *testing.T) {
		errs := ValidatePayment(newTestDraft("-5", validApp), bills)
		assert.Equal(t, MsgAmountNotPositive, errs[FieldPaymentAmount])
	})

	t.Run("over-application replaces the missing-applications message key", func(t *testing.T) {
		app := PaymentApplication{BillID: bill.ID, AmountApplied: dec("60.00")}
		errs := ValidatePayment(newTestDraft("50.00", app), bills)
		assert.Equal(t, MsgOverApplied, errs[FieldApplications])
	})

	t.Run("amount exactly equal to balance is allowed", func(t *testing.T) {
		app := PaymentApplication{BillID: bill.ID, AmountApplied: dec("80.00")}
		errs := ValidatePayment(newTestDraft("100.00", app), bills)
		assert.False(t, errs.HasErrors())
	})

	t.Run("sub-cent difference is not a balance violation", func(t *testing.T) {
		app := PaymentApplication{BillID: bill.ID, AmountApplied: dec("80.004")}
		errs := ValidatePayment(newTestDraft("100.00", app), bills)
		assert.NotContains(t, errs, ApplicationErrorKey(bill.ID))
	})

	t.Run("per-bill error names the balance", func(t *testing.T) {
		app := PaymentApplication{BillID: bill.ID, AmountApplied: dec("80.01")}
		errs := ValidatePayment(newTestDraft("100.00", app), bills)
		assert.Equal(t, "Amount exceeds balance due of $80.00", errs[ApplicationErrorKey(bill.ID)])
	})

	t.Run("applications for unknown bills are skipped", func(t *testing.T) {
		app := PaymentApplication{BillID: uuid.New(), AmountApplied: dec("10.00")}
		errs := ValidatePayment(newTestDraft("50.00", app), bills)
		assert.False(t, errs.HasErrors())
	})

	t.Run("validation is pure", func(t *testing.T) {
		draft := newTestDraft("50.00", PaymentApplication{BillID: bill.ID, AmountApplied: dec("90")})
		first := ValidatePayment(draft, bills)
		second := ValidatePayment(draft, bills)
		assert.Equal(t, first, second)
		assertAmount(t, "90", draft.Applications[0].AmountApplied)
	})
}

// Scenario D: the same draft validated twice around an amount edit.
func TestValidatePayment_ZeroRowsThenFix(t *testing.T) {
	b1 := newTestBill("B-1", "50.00")
	b2 := newTestBill("B-2", "30.00")
	bills := []OutstandingBill{b1, b2}
	payment := dec("50.00")

	apps := ToggleBill(b1, ResetApplications(), payment)
	apps = ToggleBill(b2, apps, payment)
	assertAmount(t, "0", apps[1].AmountApplied)

	draft := newTestDraft("50.00", apps...)
	assert.False(t, ValidatePayment(draft, bills).HasErrors(), "a zero row is not rejected by the validator")

	apps = SetAmount(b1.ID, "20", apps)
	apps = SetAmount(b2.ID, "30", apps)
	draft.Applications = apps
	assert.False(t, ValidatePayment(draft, bills).HasErrors())
	assertAmount(t, "0", draft.Totals().UnappliedAmount)
}

func TestValidatePayment_SubCentEntryMatchesLedger(t *testing.T) {
	bill, err := NewBill(uuid.New(), uuid.New(), "B-1", "",
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
		dec("33.33"))
	require.NoError(t, err)
	bills := []OutstandingBill{bill.Snapshot()}

	apps := ToggleBill(bills[0], nil, dec("100"))
	apps = SetAmount(bill.ID, "33.334", apps)
	assert.True(t, apps[0].AmountApplied.Equal(dec("33.33")), "typed amount is kept at cents, got %s", apps[0].AmountApplied)

	draft := newTestDraft("100", apps...)
	draft.VendorID = bill.VendorID
	require.False(t, ValidatePayment(draft, bills).HasErrors())

	payment, err := NewPayment(bill.TenantID, "BPAY-0001", draft, bills)
	require.NoError(t, err)
	assert.True(t, payment.UnappliedAmount.Equal(dec("66.67")), "got %s", payment.UnappliedAmount)

	// whatever the validator accepts, the bill must accept too
	require.NoError(t, bill.ApplyPayment(payment.Applications[0].AmountApplied, draft.PaymentDate))
	assert.True(t, bill.BalanceDue.IsZero())
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		FieldPaymentDate: MsgPaymentDateRequired,
		FieldVendorID:    MsgVendorRequired,
	}

	assert.Equal(t, []string{FieldPaymentDate, FieldVendorID}, errs.Keys())
	assert.Equal(t,
		"validation failed: payment_date: Payment date is required; vendor_id: Vendor is required",
		errs.Error())
}

func TestPaymentDraft_Totals(t *testing.T) {
	draft := PaymentDraft{
		PaymentDate:   time.Now(),
		PaymentAmount: decimal.NewFromInt(100),
		Applications: []PaymentApplication{
			{BillID: uuid.New(), AmountApplied: dec("25.50")},
			{BillID: uuid.New(), AmountApplied: dec("24.50")},
		},
	}
	totals := draft.Totals()
	assertAmount(t, "50.00", totals.TotalApplied)
	assertAmount(t, "50.00", totals.UnappliedAmount)
}
