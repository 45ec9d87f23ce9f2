package billpay

import (
	"context"
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBillRepository is a mock implementation of billpay.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.Bill, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]billpay.Bill, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billpay.Bill), args.Error(1)
}

func (m *MockBillRepository) FindOutstandingByVendor(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.Bill, error) {
	args := m.Called(ctx, tenantID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billpay.Bill), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billpay.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) SaveWithLock(ctx context.Context, bill *billpay.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

// MockVendorRepository is a mock implementation of billpay.VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.Vendor, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]billpay.Vendor, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billpay.Vendor), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *billpay.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) SaveWithLock(ctx context.Context, vendor *billpay.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of billpay.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.Account, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*billpay.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.Account), args.Error(1)
}

func (m *MockAccountRepository) FindPayablesAccount(ctx context.Context, tenantID uuid.UUID) (*billpay.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *billpay.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of billpay.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*billpay.Payment, error) {
	args := m.Called(ctx, tenantID, paymentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billpay.PaymentFilter) ([]billpay.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billpay.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billpay.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) FindByVendor(ctx context.Context, tenantID, vendorID uuid.UUID, limit int) ([]billpay.Payment, error) {
	args := m.Called(ctx, tenantID, vendorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billpay.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *billpay.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *billpay.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockJournalEntryRepository is a mock implementation of billpay.JournalEntryRepository
type MockJournalEntryRepository struct {
	mock.Mock
}

func (m *MockJournalEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.JournalEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billpay.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) Create(ctx context.Context, entry *billpay.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalEntryRepository) SaveWithLock(ctx context.Context, entry *billpay.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockOutstandingBillsCache is a mock implementation of OutstandingBillsCache
type MockOutstandingBillsCache struct {
	mock.Mock
}

func (m *MockOutstandingBillsCache) Get(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, bool, error) {
	args := m.Called(ctx, tenantID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]billpay.OutstandingBill), args.Bool(1), args.Error(2)
}

func (m *MockOutstandingBillsCache) Set(ctx context.Context, tenantID, vendorID uuid.UUID, bills []billpay.OutstandingBill, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, vendorID, bills, ttl)
	return args.Error(0)
}

func (m *MockOutstandingBillsCache) Invalidate(ctx context.Context, tenantID, vendorID uuid.UUID) error {
	args := m.Called(ctx, tenantID, vendorID)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Result(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// MockCheckArchive is a mock implementation of CheckArchive
type MockCheckArchive struct {
	mock.Mock
}

func (m *MockCheckArchive) Archive(ctx context.Context, key string, body []byte) (string, error) {
	args := m.Called(ctx, key, body)
	return args.String(0), args.Error(1)
}

// MockGateway is a mock implementation of Gateway used by form tests
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) FetchOutstandingBills(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, error) {
	args := m.Called(ctx, tenantID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billpay.OutstandingBill), args.Error(1)
}

func (m *MockGateway) SubmitPayment(ctx context.Context, tenantID uuid.UUID, req SubmitPaymentRequest) (*PaymentResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentResponse), args.Error(1)
}

func (m *MockGateway) VoidPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req VoidPaymentRequest) (*PaymentResponse, error) {
	args := m.Called(ctx, tenantID, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentResponse), args.Error(1)
}

func (m *MockGateway) DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	args := m.Called(ctx, tenantID, paymentID)
	return args.Error(0)
}

func (m *MockGateway) GetCheckData(ctx context.Context, tenantID, paymentID uuid.UUID) (*CheckDataResponse, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckDataResponse), args.Error(1)
}

func (m *MockGateway) ListVendorPayments(ctx context.Context, tenantID, vendorID uuid.UUID) ([]PaymentResponse, error) {
	args := m.Called(ctx, tenantID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PaymentResponse), args.Error(1)
}

var _ Gateway = (*MockGateway)(nil)
