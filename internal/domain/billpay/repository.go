package billpay

import (
	"context"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	VendorID      *uuid.UUID
	PaymentMethod *PaymentMethod
	Status        *PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

// BillRepository reads bills and persists balance changes.
// Find methods return nil, nil when nothing matches.
type BillRepository interface {
	// FindByIDForTenant finds a bill by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Bill, error)
	// FindByIDs finds bills by ID within a tenant, in no particular order
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Bill, error)
	// FindOutstandingByVendor returns open bills ordered by due date then bill date
	FindOutstandingByVendor(ctx context.Context, tenantID, vendorID uuid.UUID) ([]Bill, error)
	// Save creates or updates a bill
	Save(ctx context.Context, bill *Bill) error
	// SaveWithLock updates a bill with an optimistic version check
	SaveWithLock(ctx context.Context, bill *Bill) error
}

// VendorRepository reads vendors and persists balance changes
type VendorRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
	SaveWithLock(ctx context.Context, vendor *Vendor) error
}

// AccountRepository reads general-ledger accounts
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	// FindPayablesAccount returns the first active liability account named or
	// sub-typed as payable
	FindPayablesAccount(ctx context.Context, tenantID uuid.UUID) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// PaymentRepository persists bill payments with their applications
type PaymentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*Payment, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)
	// FindByVendor returns the vendor's most recent payments
	FindByVendor(ctx context.Context, tenantID, vendorID uuid.UUID, limit int) ([]Payment, error)
	// Create inserts a new payment and its applications
	Create(ctx context.Context, payment *Payment) error
	// SaveWithLock updates the payment header and status with an optimistic version check
	SaveWithLock(ctx context.Context, payment *Payment) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// GeneratePaymentNumber returns the next BPAY-#### number for the tenant
	GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// JournalEntryRepository persists general-ledger entries
type JournalEntryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)
	Create(ctx context.Context, entry *JournalEntry) error
	SaveWithLock(ctx context.Context, entry *JournalEntry) error
}
