package tenant

import (
	"context"
	"testing"

	"github.com/Daniel159642/pos-sub005/internal/infrastructure/logger"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGuardDB(t *testing.T, cfg Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.VendorModel{}, &models.BillPaymentApplicationModel{}))
	require.NoError(t, RegisterGuard(db, cfg))
	return db
}

func seedVendor(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) {
	v := models.VendorModel{Name: name, IsActive: true}
	v.ID = uuid.New()
	v.TenantID = tenantID
	require.NoError(t, db.Create(&v).Error)
}

func tenantCtx(id uuid.UUID) context.Context {
	return logger.WithTenantID(context.Background(), id.String())
}

func dryRunSQL(db *gorm.DB, ctx context.Context, fn func(tx *gorm.DB) *gorm.DB) (string, error) {
	tx := fn(db.Session(&gorm.Session{DryRun: true}).WithContext(ctx))
	return tx.Statement.SQL.String(), tx.Error
}

func TestGuard_FiltersByContextTenant(t *testing.T) {
	db := setupGuardDB(t, Config{})
	mine, theirs := uuid.New(), uuid.New()
	seedVendor(t, db, mine, "Acme")
	seedVendor(t, db, theirs, "Globex")

	var vendors []models.VendorModel
	require.NoError(t, db.WithContext(tenantCtx(mine)).Find(&vendors).Error)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Acme", vendors[0].Name)

	var count int64
	require.NoError(t, db.WithContext(tenantCtx(theirs)).Model(&models.VendorModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGuard_WithoutTenantInContext(t *testing.T) {
	db := setupGuardDB(t, Config{})
	seedVendor(t, db, uuid.New(), "Acme")
	seedVendor(t, db, uuid.New(), "Globex")

	var vendors []models.VendorModel
	require.NoError(t, db.WithContext(context.Background()).Find(&vendors).Error)
	assert.Len(t, vendors, 2)
}

func TestGuard_ExplicitConditionIsKept(t *testing.T) {
	db := setupGuardDB(t, Config{})
	tenantID := uuid.New()

	sql, err := dryRunSQL(db, tenantCtx(tenantID), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("tenant_id = ? AND name = ?", tenantID, "Acme").Find(&[]models.VendorModel{})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(sql, "tenant_id"), sql)
}

func TestGuard_AddsConditionToUpdatesAndDeletes(t *testing.T) {
	db := setupGuardDB(t, Config{})
	ctx := tenantCtx(uuid.New())

	sql, err := dryRunSQL(db, ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&models.VendorModel{}).Where("id = ?", uuid.New()).Update("is_active", false)
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "tenant_id")

	sql, err = dryRunSQL(db, ctx, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ?", uuid.New()).Delete(&models.VendorModel{})
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "tenant_id")
}

func TestGuard_SkipsTablesWithoutTenantColumn(t *testing.T) {
	db := setupGuardDB(t, Config{Required: true})

	sql, err := dryRunSQL(db, context.Background(), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("bill_payment_id = ?", uuid.New()).Find(&[]models.BillPaymentApplicationModel{})
	})
	require.NoError(t, err)
	assert.NotContains(t, sql, "tenant_id")
}

func TestGuard_Required(t *testing.T) {
	db := setupGuardDB(t, Config{Required: true})

	err := db.WithContext(context.Background()).Find(&[]models.VendorModel{}).Error
	assert.ErrorIs(t, err, ErrTenantIDRequired)

	bad := logger.WithTenantID(context.Background(), "not-a-uuid")
	err = db.WithContext(bad).Find(&[]models.VendorModel{}).Error
	assert.ErrorIs(t, err, ErrInvalidTenantID)
}

func TestGuard_UnscopedBypasses(t *testing.T) {
	db := setupGuardDB(t, Config{})
	seedVendor(t, db, uuid.New(), "Acme")
	seedVendor(t, db, uuid.New(), "Globex")

	var vendors []models.VendorModel
	require.NoError(t, db.WithContext(tenantCtx(uuid.New())).Unscoped().Find(&vendors).Error)
	assert.Len(t, vendors, 2)
}

func TestUnregisterGuard(t *testing.T) {
	db := setupGuardDB(t, Config{})
	seedVendor(t, db, uuid.New(), "Acme")
	UnregisterGuard(db)

	var vendors []models.VendorModel
	require.NoError(t, db.WithContext(tenantCtx(uuid.New())).Find(&vendors).Error)
	assert.Len(t, vendors, 1)
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
