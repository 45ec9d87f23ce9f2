package event

import (
	"testing"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, billpay.EventTypeBillPaymentSubmitted, billpay.EventTypeBillPaymentVoided)

	assert.Len(t, registry.GetHandlers(billpay.EventTypeBillPaymentSubmitted), 1)
	assert.Len(t, registry.GetHandlers(billpay.EventTypeBillPaymentVoided), 1)
	assert.Empty(t, registry.GetHandlers(billpay.EventTypeBillPaymentCleared))
}

func TestHandlerRegistry_Register_Duplicate(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, billpay.EventTypeBillPaymentSubmitted)
	registry.Register(handler, billpay.EventTypeBillPaymentSubmitted)

	assert.Len(t, registry.GetHandlers(billpay.EventTypeBillPaymentSubmitted), 1)
}

func TestHandlerRegistry_WildcardAfterSpecific(t *testing.T) {
	registry := NewHandlerRegistry()
	specific := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(wildcard)
	registry.Register(specific, billpay.EventTypeBillPaymentDeleted)

	handlers := registry.GetHandlers(billpay.EventTypeBillPaymentDeleted)
	assert.Len(t, handlers, 2)
	assert.Same(t, specific, handlers[0])
	assert.Same(t, wildcard, handlers[1])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()
	other := newTestHandler()

	registry.Register(handler, billpay.EventTypeBillPaymentSubmitted)
	registry.Register(other, billpay.EventTypeBillPaymentSubmitted)
	registry.Register(handler)

	registry.Unregister(handler)

	handlers := registry.GetHandlers(billpay.EventTypeBillPaymentSubmitted)
	assert.Len(t, handlers, 1)
	assert.Same(t, other, handlers[0])
	assert.Empty(t, registry.GetHandlers(billpay.EventTypeBillPaymentUpdated))
}
