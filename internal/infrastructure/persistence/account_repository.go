package persistence

import (
	"context"
	"errors"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements billpay.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billpay.Account, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id))
}

// FindByCode finds an account by its chart-of-accounts code
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*billpay.Account, error) {
	return r.first(r.db.WithContext(ctx).Where("tenant_id = ? AND account_code = ?", tenantID, code))
}

// FindPayablesAccount returns the lowest-coded active liability account whose
// name or sub-type mentions "payable"
func (r *GormAccountRepository) FindPayablesAccount(ctx context.Context, tenantID uuid.UUID) (*billpay.Account, error) {
	return r.first(r.db.WithContext(ctx).
		Where("tenant_id = ? AND account_type = ? AND is_active = ?", tenantID, billpay.AccountTypeLiability, true).
		Where("LOWER(sub_type) LIKE ? OR LOWER(account_name) LIKE ?", "%payable%", "%payable%").
		Order("account_code ASC"))
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *billpay.Account) error {
	return r.db.WithContext(ctx).Save(models.AccountModelFromDomain(account)).Error
}

func (r *GormAccountRepository) first(query *gorm.DB) (*billpay.Account, error) {
	var model models.AccountModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ billpay.AccountRepository = (*GormAccountRepository)(nil)
