package billpay

import (
	"context"
	"errors"
	"testing"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func testPayment(tenantID uuid.UUID) *billpay.Payment {
	return &billpay.Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentNumber:       "BPAY-0003",
		VendorID:            uuid.New(),
		PaymentDate:         paymentDate,
		PaymentMethod:       billpay.PaymentMethodCheck,
		PaymentAmount:       decimal.RequireFromString("42.10"),
		Status:              billpay.PaymentStatusPending,
	}
}

func TestOutstandingBillsInvalidator(t *testing.T) {
	tenantID := uuid.New()
	p := testPayment(tenantID)

	t.Run("handles submitted and voided events", func(t *testing.T) {
		cache := new(MockOutstandingBillsCache)
		h := NewOutstandingBillsInvalidator(cache, zap.NewNop())
		assert.ElementsMatch(t, []string{
			billpay.EventTypeBillPaymentSubmitted,
			billpay.EventTypeBillPaymentVoided,
		}, h.EventTypes())

		cache.On("Invalidate", context.Background(), tenantID, p.VendorID).Return(nil).Twice()

		require.NoError(t, h.Handle(context.Background(), billpay.NewBillPaymentSubmittedEvent(p)))
		require.NoError(t, h.Handle(context.Background(), billpay.NewBillPaymentVoidedEvent(p)))
		cache.AssertExpectations(t)
	})

	t.Run("propagates cache errors", func(t *testing.T) {
		cache := new(MockOutstandingBillsCache)
		h := NewOutstandingBillsInvalidator(cache, zap.NewNop())
		cache.On("Invalidate", context.Background(), tenantID, p.VendorID).Return(errors.New("redis down"))

		err := h.Handle(context.Background(), billpay.NewBillPaymentSubmittedEvent(p))
		assert.EqualError(t, err, "redis down")
	})

	t.Run("rejects events without a vendor", func(t *testing.T) {
		cache := new(MockOutstandingBillsCache)
		h := NewOutstandingBillsInvalidator(cache, zap.NewNop())

		err := h.Handle(context.Background(), billpay.NewBillPaymentClearedEvent(p))
		require.Error(t, err)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentMetricsHandler(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := telemetry.NewBillPaymentMetrics(mp.Meter("test"))
	require.NoError(t, err)

	h := NewPaymentMetricsHandler(metrics)
	p := testPayment(uuid.New())
	ctx := context.Background()

	require.NoError(t, h.Handle(ctx, billpay.NewBillPaymentSubmittedEvent(p)))
	require.NoError(t, h.Handle(ctx, billpay.NewBillPaymentVoidedEvent(p)))
	require.NoError(t, h.Handle(ctx, billpay.NewBillPaymentClearedEvent(p)))
	require.NoError(t, h.Handle(ctx, billpay.NewBillPaymentDeletedEvent(p)))
	require.NoError(t, h.Handle(ctx, billpay.NewBillPaymentUpdatedEvent(p)))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(4210), sums["billpay_payments_amount_cents_total"])
	assert.Equal(t, int64(1), sums["billpay_payments_voided_total"])
	assert.Equal(t, int64(1), sums["billpay_payments_cleared_total"])
	assert.Equal(t, int64(1), sums["billpay_payments_deleted_total"])

	t.Run("nil metrics are ignored", func(t *testing.T) {
		assert.NoError(t, NewPaymentMetricsHandler(nil).Handle(ctx, billpay.NewBillPaymentSubmittedEvent(p)))
	})
}
