package billpay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func outstanding(number, balance string) billpay.OutstandingBill {
	return billpay.OutstandingBill{
		ID:          uuid.New(),
		BillNumber:  number,
		BillDate:    paymentDate.AddDate(0, -1, 0),
		DueDate:     paymentDate.AddDate(0, 0, 15),
		TotalAmount: decimal.RequireFromString(balance),
		BalanceDue:  decimal.RequireFromString(balance),
	}
}

// readyForm returns a form with a vendor, header and loaded bills
func readyForm(t *testing.T, bills ...billpay.OutstandingBill) (*PaymentForm, *MockGateway) {
	t.Helper()
	tenantID := uuid.New()
	vendorID := uuid.New()
	form := NewPaymentForm(tenantID)
	form.SelectVendor(vendorID)
	form.SetHeader(Header{
		PaymentDate:       paymentDate,
		PaymentMethod:     billpay.PaymentMethodCheck,
		ReferenceNumber:   "1001",
		PaidFromAccountID: uuid.New(),
	})

	gw := new(MockGateway)
	gw.On("FetchOutstandingBills", mock.Anything, tenantID, vendorID).Return(bills, nil).Once()
	_, err := form.LoadBills(context.Background(), gw)
	require.NoError(t, err)
	return form, gw
}

func TestPaymentForm_LoadBills(t *testing.T) {
	t.Run("requires a vendor", func(t *testing.T) {
		form := NewPaymentForm(uuid.New())
		_, err := form.LoadBills(context.Background(), new(MockGateway))
		assert.ErrorIs(t, err, ErrNoVendor)
	})

	t.Run("loads bills for the selected vendor", func(t *testing.T) {
		b := outstanding("B-1", "100")
		form, gw := readyForm(t, b)

		assert.Equal(t, []billpay.OutstandingBill{b}, form.Bills())
		gw.AssertExpectations(t)
	})

	t.Run("response for a previous vendor is discarded", func(t *testing.T) {
		tenantID := uuid.New()
		first, second := uuid.New(), uuid.New()
		form := NewPaymentForm(tenantID)
		form.SelectVendor(first)

		gw := new(MockGateway)
		gw.On("FetchOutstandingBills", mock.Anything, tenantID, first).
			Run(func(mock.Arguments) { form.SelectVendor(second) }).
			Return([]billpay.OutstandingBill{outstanding("OLD-1", "10")}, nil)

		_, err := form.LoadBills(context.Background(), gw)
		assert.ErrorIs(t, err, ErrStaleResponse)
		assert.Empty(t, form.Bills())
		assert.Equal(t, second, form.Draft().VendorID)
	})

	t.Run("stale failure is reported as stale", func(t *testing.T) {
		tenantID := uuid.New()
		form := NewPaymentForm(tenantID)
		vendorID := uuid.New()
		form.SelectVendor(vendorID)

		gw := new(MockGateway)
		gw.On("FetchOutstandingBills", mock.Anything, tenantID, vendorID).
			Run(func(mock.Arguments) { form.SelectVendor(uuid.New()) }).
			Return(nil, errors.New("timeout"))

		_, err := form.LoadBills(context.Background(), gw)
		assert.ErrorIs(t, err, ErrStaleResponse)
	})

	t.Run("selecting a vendor resets applications", func(t *testing.T) {
		b := outstanding("B-1", "100")
		form, _ := readyForm(t, b)
		form.SetPaymentAmount("100")
		_, err := form.Toggle(b.ID)
		require.NoError(t, err)
		before := form.Generation()

		gen := form.SelectVendor(uuid.New())
		assert.Equal(t, before+1, gen)
		assert.Empty(t, form.Applications())
		assert.Empty(t, form.Bills())
	})
}

func TestPaymentForm_Allocation(t *testing.T) {
	b1 := outstanding("B-1", "100")
	b2 := outstanding("B-2", "100")
	form, _ := readyForm(t, b1, b2)

	assert.True(t, form.SetPaymentAmount("$150.00").Equal(decimal.NewFromInt(150)))

	apps, err := form.Toggle(b1.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.True(t, apps[0].AmountApplied.Equal(decimal.NewFromInt(100)))

	apps, err = form.Toggle(b2.ID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.True(t, apps[1].AmountApplied.Equal(decimal.NewFromInt(50)))

	totals := form.Totals()
	assert.True(t, totals.TotalApplied.Equal(decimal.NewFromInt(150)))
	assert.True(t, totals.UnappliedAmount.IsZero())
	assert.Empty(t, form.Validate())

	form.SetAmount(b2.ID, "80")
	errs := form.Validate()
	assert.Equal(t, billpay.MsgOverApplied, errs[billpay.FieldApplications])

	_, err = form.Toggle(uuid.New())
	assert.ErrorIs(t, err, ErrBillNotLoaded)
}

func TestPaymentForm_Submit(t *testing.T) {
	t.Run("local validation failure does not call the collaborator", func(t *testing.T) {
		form, gw := readyForm(t, outstanding("B-1", "100"))

		_, err := form.Submit(context.Background(), gw, "")

		var verrs billpay.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, billpay.MsgAmountNotPositive, verrs[billpay.FieldPaymentAmount])
		assert.Equal(t, billpay.MsgNoApplications, verrs[billpay.FieldApplications])
		gw.AssertNotCalled(t, "SubmitPayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("collaborator failure leaves the draft untouched", func(t *testing.T) {
		b := outstanding("B-1", "100")
		form, gw := readyForm(t, b)
		form.SetPaymentAmount("60")
		_, err := form.Toggle(b.ID)
		require.NoError(t, err)
		before := form.Draft()

		gw.On("SubmitPayment", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))
		_, err = form.Submit(context.Background(), gw, "key-1")

		require.EqualError(t, err, "unavailable")
		assert.Equal(t, before, form.Draft())
		assert.Len(t, form.Bills(), 1)
	})

	t.Run("success resets the draft for the same vendor", func(t *testing.T) {
		b := outstanding("B-1", "100")
		form, gw := readyForm(t, b)
		form.SetPaymentAmount("60")
		_, err := form.Toggle(b.ID)
		require.NoError(t, err)
		vendorID := form.Draft().VendorID

		sent := mock.MatchedBy(func(req SubmitPaymentRequest) bool {
			return req.IdempotencyKey == "key-1" &&
				req.PaymentMethod == "check" &&
				len(req.Applications) == 1 &&
				req.Applications[0].AmountApplied.Equal(decimal.NewFromInt(60))
		})
		gw.On("SubmitPayment", mock.Anything, mock.Anything, sent).
			Return(&PaymentResponse{PaymentNumber: "BPAY-0001", Status: "pending"}, nil)

		resp, err := form.Submit(context.Background(), gw, "key-1")
		require.NoError(t, err)
		assert.Equal(t, "BPAY-0001", resp.PaymentNumber)

		draft := form.Draft()
		assert.Equal(t, vendorID, draft.VendorID)
		assert.Equal(t, billpay.PaymentMethodCheck, draft.PaymentMethod)
		assert.True(t, draft.PaymentAmount.IsZero())
		assert.Empty(t, draft.Applications)
		assert.Empty(t, form.Bills())
	})

	t.Run("vendor switched during submit keeps the new vendor's bills", func(t *testing.T) {
		b := outstanding("B-1", "100")
		form, gw := readyForm(t, b)
		form.SetPaymentAmount("40")
		_, err := form.Toggle(b.ID)
		require.NoError(t, err)

		other := uuid.New()
		otherBill := outstanding("OTHER-1", "75")
		var switchedGen uint64
		gw.On("FetchOutstandingBills", mock.Anything, mock.Anything, other).
			Return([]billpay.OutstandingBill{otherBill}, nil).Once()
		gw.On("SubmitPayment", mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				switchedGen = form.SelectVendor(other)
				_, loadErr := form.LoadBills(context.Background(), gw)
				require.NoError(t, loadErr)
			}).
			Return(&PaymentResponse{PaymentNumber: "BPAY-0001"}, nil).Once()

		resp, err := form.Submit(context.Background(), gw, "")
		require.NoError(t, err)
		assert.Equal(t, "BPAY-0001", resp.PaymentNumber)

		assert.Equal(t, other, form.Draft().VendorID)
		assert.Equal(t, switchedGen, form.Generation())
		assert.Equal(t, []billpay.OutstandingBill{otherBill}, form.Bills())
	})

	t.Run("second submit while one is in flight is rejected", func(t *testing.T) {
		b := outstanding("B-1", "100")
		form, gw := readyForm(t, b)
		form.SetPaymentAmount("100")
		_, err := form.Toggle(b.ID)
		require.NoError(t, err)

		started := make(chan struct{})
		release := make(chan struct{})
		gw.On("SubmitPayment", mock.Anything, mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(&PaymentResponse{PaymentNumber: "BPAY-0001"}, nil).Once()

		done := make(chan error, 1)
		go func() {
			_, err := form.Submit(context.Background(), gw, "")
			done <- err
		}()

		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("submit did not reach the collaborator")
		}
		_, err = form.Submit(context.Background(), gw, "")
		assert.ErrorIs(t, err, ErrSubmitInFlight)

		close(release)
		require.NoError(t, <-done)
		gw.AssertNumberOfCalls(t, "SubmitPayment", 1)
	})
}

func TestPaymentForm_Lifecycle(t *testing.T) {
	tenantID := uuid.New()
	form := NewPaymentForm(tenantID)
	applied := &PaymentResponse{
		ID:            uuid.New(),
		PaymentMethod: "check",
		Status:        "pending",
		Applications:  []ApplicationResponse{{ID: uuid.New(), BillID: uuid.New(), AmountApplied: decimal.NewFromInt(10)}},
	}

	t.Run("void requires a reason", func(t *testing.T) {
		gw := new(MockGateway)
		_, err := form.Void(context.Background(), applied, " \t", gw)
		requireDomainCode(t, err, "VOID_REASON_REQUIRED")
		gw.AssertNotCalled(t, "VoidPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("void of a voided payment is rejected locally", func(t *testing.T) {
		gw := new(MockGateway)
		voided := *applied
		voided.Status = "void"
		_, err := form.Void(context.Background(), &voided, "duplicate", gw)
		requireDomainCode(t, err, "ALREADY_VOID")
	})

	t.Run("void sends the trimmed reason", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("VoidPayment", mock.Anything, tenantID, applied.ID, VoidPaymentRequest{Reason: "duplicate"}).
			Return(&PaymentResponse{ID: applied.ID, Status: "void"}, nil)

		resp, err := form.Void(context.Background(), applied, "  duplicate ", gw)
		require.NoError(t, err)
		assert.Equal(t, "void", resp.Status)
	})

	t.Run("delete with applications is rejected locally", func(t *testing.T) {
		gw := new(MockGateway)
		err := form.Delete(context.Background(), applied, gw)
		de := requireDomainCode(t, err, "CANNOT_DELETE")
		assert.Equal(t, "Cannot delete payment with applications. Void it instead.", de.Message)
		gw.AssertNotCalled(t, "DeletePayment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delete without applications", func(t *testing.T) {
		gw := new(MockGateway)
		empty := &PaymentResponse{ID: uuid.New(), PaymentMethod: "ach", Status: "pending"}
		gw.On("DeletePayment", mock.Anything, tenantID, empty.ID).Return(nil)

		require.NoError(t, form.Delete(context.Background(), empty, gw))
		gw.AssertExpectations(t)
	})

	t.Run("print check only for checks", func(t *testing.T) {
		gw := new(MockGateway)
		ach := &PaymentResponse{ID: uuid.New(), PaymentMethod: "ach", Status: "pending"}
		_, err := form.PrintCheck(context.Background(), ach, gw)
		requireDomainCode(t, err, "NOT_A_CHECK")

		gw.On("GetCheckData", mock.Anything, tenantID, applied.ID).
			Return(&CheckDataResponse{PaymentAmountText: "10 and 0/100 dollars"}, nil)
		data, err := form.PrintCheck(context.Background(), applied, gw)
		require.NoError(t, err)
		assert.Equal(t, "10 and 0/100 dollars", data.PaymentAmountText)
	})
}
