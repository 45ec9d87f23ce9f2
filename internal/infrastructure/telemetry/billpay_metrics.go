package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcome labels a recorded operation
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// BillPaymentMetrics counts bill payment activity
type BillPaymentMetrics struct {
	submitted       *Counter
	submittedCents  *Counter
	voided          *Counter
	cleared         *Counter
	deleted         *Counter
	validationFails *Counter
	submitDuration  *Histogram
}

// NewBillPaymentMetrics registers the bill payment instruments on meter
func NewBillPaymentMetrics(meter metric.Meter) (*BillPaymentMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &BillPaymentMetrics{}
	var err error
	if m.submitted, err = NewCounter(meter, "billpay_payments_submitted_total",
		"Bill payment submissions by outcome", "{payments}"); err != nil {
		return nil, err
	}
	if m.submittedCents, err = NewCounter(meter, "billpay_payments_amount_cents_total",
		"Total amount of recorded bill payments in cents", "{cents}"); err != nil {
		return nil, err
	}
	if m.voided, err = NewCounter(meter, "billpay_payments_voided_total",
		"Bill payments voided", "{payments}"); err != nil {
		return nil, err
	}
	if m.cleared, err = NewCounter(meter, "billpay_payments_cleared_total",
		"Bill payments marked cleared", "{payments}"); err != nil {
		return nil, err
	}
	if m.deleted, err = NewCounter(meter, "billpay_payments_deleted_total",
		"Bill payments deleted", "{payments}"); err != nil {
		return nil, err
	}
	if m.validationFails, err = NewCounter(meter, "billpay_validation_failures_total",
		"Drafts rejected by validation", "{drafts}"); err != nil {
		return nil, err
	}
	if m.submitDuration, err = NewHistogram(meter, "billpay_submit_duration_seconds",
		"Time spent recording a bill payment", "s", HTTPDurationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordSubmission records one submit attempt
func (m *BillPaymentMetrics) RecordSubmission(ctx context.Context, tenantID uuid.UUID, method string, outcome Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submitted.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
		AttrOutcome.String(string(outcome)),
	)
	m.submitDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(string(outcome)))
}

// RecordAmount adds a recorded payment amount
func (m *BillPaymentMetrics) RecordAmount(ctx context.Context, tenantID uuid.UUID, method string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.submittedCents.Add(ctx, amount.Shift(2).Round(0).IntPart(),
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(method),
	)
}

// RecordVoid counts a voided payment
func (m *BillPaymentMetrics) RecordVoid(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.voided.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordClear counts a cleared payment
func (m *BillPaymentMetrics) RecordClear(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.cleared.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordDelete counts a deleted payment
func (m *BillPaymentMetrics) RecordDelete(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.deleted.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordValidationFailure counts a draft rejected by validation
func (m *BillPaymentMetrics) RecordValidationFailure(ctx context.Context, tenantID uuid.UUID) {
	if m == nil {
		return
	}
	m.validationFails.Inc(ctx, AttrTenantID.String(tenantID.String()))
}
