package persistence

import (
	"context"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbillpay.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) BillRepo() billpay.BillRepository {
	return NewGormBillRepository(r.tx)
}

func (r *gormTransactionalRepositories) VendorRepo() billpay.VendorRepository {
	return NewGormVendorRepository(r.tx)
}

func (r *gormTransactionalRepositories) AccountRepo() billpay.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) PaymentRepo() billpay.PaymentRepository {
	return NewGormBillPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) JournalRepo() billpay.JournalEntryRepository {
	return NewGormJournalEntryRepository(r.tx)
}

var _ appbillpay.TransactionScope = (*GormTransactionScope)(nil)
var _ appbillpay.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
