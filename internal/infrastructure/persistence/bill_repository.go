package persistence

import (
	"context"
	"errors"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillRepository implements billpay.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByIDForTenant finds a bill by ID within a tenant
func (r *GormBillRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple bills by their IDs
func (r *GormBillRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]billpay.Bill, error) {
	if len(ids) == 0 {
		return []billpay.Bill{}, nil
	}

	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return toBills(billModels), nil
}

// FindOutstandingByVendor returns the vendor's open and partially paid bills,
// oldest due date first
func (r *GormBillRepository) FindOutstandingByVendor(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND vendor_id = ? AND status IN ? AND balance_due > 0", tenantID, vendorID,
			[]billpay.BillStatus{billpay.BillStatusOpen, billpay.BillStatusPartial}).
		Order("due_date ASC").
		Order("bill_date ASC").
		Order("bill_number ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	return toBills(billModels), nil
}

// Save creates or updates a bill
func (r *GormBillRepository) Save(ctx context.Context, bill *billpay.Bill) error {
	return r.db.WithContext(ctx).Save(models.BillModelFromDomain(bill)).Error
}

// SaveWithLock saves with optimistic locking. The bill's version must already
// be incremented by the domain change being saved.
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billpay.Bill) error {
	model := models.BillModelFromDomain(bill)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").
		Omit("created_at", "created_by").
		Where("tenant_id = ? AND version = ?", bill.TenantID, bill.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func toBills(billModels []models.BillModel) []billpay.Bill {
	bills := make([]billpay.Bill, len(billModels))
	for i := range billModels {
		bills[i] = *billModels[i].ToDomain()
	}
	return bills
}

var _ billpay.BillRepository = (*GormBillRepository)(nil)
