package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillPaymentRepository implements billpay.PaymentRepository using GORM
type GormBillPaymentRepository struct {
	db *gorm.DB
}

// NewGormBillPaymentRepository creates a new GormBillPaymentRepository
func NewGormBillPaymentRepository(db *gorm.DB) *GormBillPaymentRepository {
	return &GormBillPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment with its applications
func (r *GormBillPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByPaymentNumber finds a payment by its BPAY number
func (r *GormBillPaymentRepository) FindByPaymentNumber(ctx context.Context, tenantID uuid.UUID, paymentNumber string) (*billpay.Payment, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND payment_number = ?", tenantID, paymentNumber))
}

// FindAllForTenant lists payments matching the filter, one page at a time
func (r *GormBillPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billpay.PaymentFilter) ([]billpay.Payment, error) {
	var paymentModels []models.BillPaymentModel
	query := r.db.WithContext(ctx).
		Preload("Applications").
		Where("tenant_id = ?", tenantID)
	query = r.applyPaymentFilter(query, filter)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toPayments(paymentModels), nil
}

// CountForTenant counts payments matching the filter
func (r *GormBillPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billpay.PaymentFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BillPaymentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyPaymentFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByVendor returns the vendor's most recent payments
func (r *GormBillPaymentRepository) FindByVendor(ctx context.Context, tenantID, vendorID uuid.UUID, limit int) ([]billpay.Payment, error) {
	var paymentModels []models.BillPaymentModel
	query := r.db.WithContext(ctx).
		Preload("Applications").
		Where("tenant_id = ? AND vendor_id = ?", tenantID, vendorID).
		Order("payment_date DESC").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toPayments(paymentModels), nil
}

// Create inserts the payment header and its application rows
func (r *GormBillPaymentRepository) Create(ctx context.Context, payment *billpay.Payment) error {
	model := models.BillPaymentModelFromDomain(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// SaveWithLock updates the payment header. Applications are immutable once
// recorded and are never rewritten here.
func (r *GormBillPaymentRepository) SaveWithLock(ctx context.Context, payment *billpay.Payment) error {
	model := models.BillPaymentModelFromDomain(payment)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Omit(clause.Associations, "created_at", "created_by").
		Where("tenant_id = ? AND version = ?", payment.TenantID, payment.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeleteForTenant removes a payment together with its application rows
func (r *GormBillPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.BillPaymentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&models.BillPaymentApplicationModel{}, "bill_payment_id = ?", id).Error
	})
}

// GeneratePaymentNumber returns the number after the tenant's highest BPAY number
func (r *GormBillPaymentRepository) GeneratePaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	// Longer numbers sort first so BPAY-10000 beats BPAY-9999
	var maxNumber []string
	if err := r.db.WithContext(ctx).
		Model(&models.BillPaymentModel{}).
		Where("tenant_id = ? AND payment_number LIKE ?", tenantID, billpay.PaymentNumberPrefix+"%").
		Order("LENGTH(payment_number) DESC").
		Order("payment_number DESC").
		Limit(1).
		Pluck("payment_number", &maxNumber).Error; err != nil {
		return "", err
	}
	return billpay.NextPaymentNumber(maxNumber), nil
}

func (r *GormBillPaymentRepository) first(query *gorm.DB) (*billpay.Payment, error) {
	var model models.BillPaymentModel
	if err := query.Preload("Applications").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// applyPaymentFilter applies filter options to the query
func (r *GormBillPaymentRepository) applyPaymentFilter(query *gorm.DB, filter billpay.PaymentFilter) *gorm.DB {
	query = r.applyPaymentFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, BillPaymentSortFields, "payment_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	if orderBy != "created_at" {
		query = query.Order("created_at DESC")
	}
	return query
}

// applyPaymentFilterWithoutPagination applies filter options without pagination
func (r *GormBillPaymentRepository) applyPaymentFilterWithoutPagination(query *gorm.DB, filter billpay.PaymentFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(payment_number) LIKE ? OR LOWER(reference_number) LIKE ? OR LOWER(memo) LIKE ?",
			pattern, pattern, pattern)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("payment_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("payment_date <= ?", *filter.EndDate)
	}
	return query
}

func toPayments(paymentModels []models.BillPaymentModel) []billpay.Payment {
	payments := make([]billpay.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments
}

var _ billpay.PaymentRepository = (*GormBillPaymentRepository)(nil)
