package billpay

import (
	"github.com/Daniel159642/pos-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Totals are the aggregate figures shown alongside a payment draft
type Totals struct {
	TotalApplied    decimal.Decimal `json:"total_applied"`
	UnappliedAmount decimal.Decimal `json:"unapplied_amount"`
	IsOverApplied   bool            `json:"is_over_applied"`
}

// ResetApplications is the application set a draft starts from after a
// vendor change.
func ResetApplications() []PaymentApplication {
	return []PaymentApplication{}
}

// IsApplied reports whether billID already has an application row
func IsApplied(apps []PaymentApplication, billID uuid.UUID) bool {
	return indexOf(apps, billID) >= 0
}

// ToggleBill selects or deselects a bill.
//
// Deselecting removes the bill's row and leaves the others untouched.
// Selecting appends a row auto-filled with the smaller of the bill's balance
// and what is left of the payment; when nothing is left the row is added with
// an explicit zero so it can be corrected by hand. Rows stay in selection order.
// The input slice is never modified.
func ToggleBill(bill OutstandingBill, apps []PaymentApplication, paymentAmount decimal.Decimal) []PaymentApplication {
	if i := indexOf(apps, bill.ID); i >= 0 {
		out := make([]PaymentApplication, 0, len(apps)-1)
		out = append(out, apps[:i]...)
		return append(out, apps[i+1:]...)
	}

	remaining := paymentAmount.Sub(sumApplied(apps))
	amount := decimal.Min(bill.BalanceDue, remaining)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	out := make([]PaymentApplication, 0, len(apps)+1)
	out = append(out, apps...)
	return append(out, PaymentApplication{
		BillID:        bill.ID,
		BillNumber:    bill.BillNumber,
		AmountApplied: amount,
	})
}

// SetAmount replaces the applied amount of one row with the parsed raw input.
// Unparseable input becomes zero. No clamping happens here; limits are
// reported by ValidatePayment.
func SetAmount(billID uuid.UUID, raw string, apps []PaymentApplication) []PaymentApplication {
	out := make([]PaymentApplication, len(apps))
	copy(out, apps)
	if i := indexOf(out, billID); i >= 0 {
		out[i].AmountApplied = valueobject.ParseAmount(raw)
	}
	return out
}

// ComputeTotals sums the applications against the payment amount.
// TotalApplied + UnappliedAmount always equals paymentAmount.
func ComputeTotals(apps []PaymentApplication, paymentAmount decimal.Decimal) Totals {
	total := sumApplied(apps)
	return Totals{
		TotalApplied:    total,
		UnappliedAmount: paymentAmount.Sub(total),
		IsOverApplied:   valueobject.RoundCurrency(total).GreaterThan(valueobject.RoundCurrency(paymentAmount)),
	}
}

func sumApplied(apps []PaymentApplication) decimal.Decimal {
	total := decimal.Zero
	for _, app := range apps {
		total = total.Add(app.AmountApplied)
	}
	return total
}

func indexOf(apps []PaymentApplication, billID uuid.UUID) int {
	for i, app := range apps {
		if app.BillID == billID {
			return i
		}
	}
	return -1
}
