package billpay

import (
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vendor is the payee of bill payments. AccountBalance is what the business
// still owes the vendor.
type Vendor struct {
	shared.TenantAggregateRoot
	Name           string
	Email          string
	IsActive       bool
	AccountBalance decimal.Decimal
}

// NewVendor creates an active vendor with a zero balance
func NewVendor(tenantID uuid.UUID, name, email string) (*Vendor, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	return &Vendor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Email:               email,
		IsActive:            true,
		AccountBalance:      decimal.Zero,
	}, nil
}

// EnsureCanBePaid rejects payments to inactive vendors
func (v *Vendor) EnsureCanBePaid() error {
	if !v.IsActive {
		return shared.NewDomainError("VENDOR_INACTIVE", "Cannot create payment for inactive vendor")
	}
	return nil
}

// RecordPayment decreases the amount owed to the vendor
func (v *Vendor) RecordPayment(amount decimal.Decimal) {
	v.AccountBalance = v.AccountBalance.Sub(amount)
	v.IncrementVersion()
}

// ReversePayment restores the amount owed after a payment is voided
func (v *Vendor) ReversePayment(amount decimal.Decimal) {
	v.AccountBalance = v.AccountBalance.Add(amount)
	v.IncrementVersion()
}
