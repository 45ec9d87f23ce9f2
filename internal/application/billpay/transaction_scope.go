package billpay

import (
	"context"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
)

// TransactionScope runs bill-payment writes atomically. Submit, void and
// delete each touch the payment, its bills, the vendor and the journal; all of
// it commits or none of it does.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories bound to the current transaction
type TransactionalRepositories interface {
	BillRepo() billpay.BillRepository
	VendorRepo() billpay.VendorRepository
	AccountRepo() billpay.AccountRepository
	PaymentRepo() billpay.PaymentRepository
	JournalRepo() billpay.JournalEntryRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	billRepo    billpay.BillRepository
	vendorRepo  billpay.VendorRepository
	accountRepo billpay.AccountRepository
	paymentRepo billpay.PaymentRepository
	journalRepo billpay.JournalEntryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	billRepo billpay.BillRepository,
	vendorRepo billpay.VendorRepository,
	accountRepo billpay.AccountRepository,
	paymentRepo billpay.PaymentRepository,
	journalRepo billpay.JournalEntryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		billRepo:    billRepo,
		vendorRepo:  vendorRepo,
		accountRepo: accountRepo,
		paymentRepo: paymentRepo,
		journalRepo: journalRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) BillRepo() billpay.BillRepository { return s.billRepo }
func (s *NoOpTransactionScope) VendorRepo() billpay.VendorRepository { return s.vendorRepo }
func (s *NoOpTransactionScope) AccountRepo() billpay.AccountRepository { return s.accountRepo }
func (s *NoOpTransactionScope) PaymentRepo() billpay.PaymentRepository { return s.paymentRepo }
func (s *NoOpTransactionScope) JournalRepo() billpay.JournalEntryRepository { return s.journalRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
