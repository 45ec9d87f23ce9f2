package billpay

import (
	"context"
	"fmt"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OutstandingBillsInvalidator drops a vendor's cached outstanding bills when
// a payment moves their balances
type OutstandingBillsInvalidator struct {
	cache  OutstandingBillsCache
	logger *zap.Logger
}

// NewOutstandingBillsInvalidator creates a new OutstandingBillsInvalidator
func NewOutstandingBillsInvalidator(cache OutstandingBillsCache, logger *zap.Logger) *OutstandingBillsInvalidator {
	return &OutstandingBillsInvalidator{
		cache:  cache,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OutstandingBillsInvalidator) EventTypes() []string {
	return []string{
		billpay.EventTypeBillPaymentSubmitted,
		billpay.EventTypeBillPaymentVoided,
	}
}

// Handle invalidates the cache entry of the event's vendor
func (h *OutstandingBillsInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	scoped, ok := event.(billpay.VendorScopedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s does not carry a vendor", event.EventType())
	}
	if err := h.cache.Invalidate(ctx, event.TenantID(), scoped.GetVendorID()); err != nil {
		h.logger.Error("failed to invalidate outstanding bills cache",
			zap.String("vendor_id", scoped.GetVendorID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	h.logger.Debug("outstanding bills cache invalidated",
		zap.String("vendor_id", scoped.GetVendorID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// PaymentMetricsHandler turns payment events into business metrics
type PaymentMetricsHandler struct {
	metrics *telemetry.BillPaymentMetrics
}

// NewPaymentMetricsHandler creates a new PaymentMetricsHandler
func NewPaymentMetricsHandler(metrics *telemetry.BillPaymentMetrics) *PaymentMetricsHandler {
	return &PaymentMetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentMetricsHandler) EventTypes() []string {
	return []string{
		billpay.EventTypeBillPaymentSubmitted,
		billpay.EventTypeBillPaymentVoided,
		billpay.EventTypeBillPaymentCleared,
		billpay.EventTypeBillPaymentDeleted,
	}
}

// Handle records the metric matching the event
func (h *PaymentMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billpay.BillPaymentSubmittedEvent:
		h.metrics.RecordAmount(ctx, e.TenantID(), string(e.PaymentMethod), e.PaymentAmount)
	case *billpay.BillPaymentVoidedEvent:
		h.metrics.RecordVoid(ctx, e.TenantID())
	case *billpay.BillPaymentClearedEvent:
		h.metrics.RecordClear(ctx, e.TenantID())
	case *billpay.BillPaymentDeletedEvent:
		h.metrics.RecordDelete(ctx, e.TenantID())
	}
	return nil
}

var (
	_ shared.EventHandler = (*OutstandingBillsInvalidator)(nil)
	_ shared.EventHandler = (*PaymentMetricsHandler)(nil)
)
