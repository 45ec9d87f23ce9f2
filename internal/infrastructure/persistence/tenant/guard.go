// Package tenant keeps GORM queries inside the caller's tenant.
//
// Repositories already filter by tenant_id explicitly. The guard is a second
// line: when the request context carries a tenant (set by the HTTP tenant
// middleware through the logger context) any SELECT, UPDATE or DELETE on a
// table with a tenant column that lacks a tenant condition gets one added.
//
// Usage:
//
//	tenant.RegisterGuard(db, tenant.Config{Required: false})
package tenant

import (
	"errors"
	"strings"

	"github.com/Daniel159642/pos-sub005/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTenantIDRequired is returned when tenant_id is required but not found
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when tenant_id format is invalid
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

const callbackPrefix = "tenant:guard_"

// Config holds guard settings
type Config struct {
	// Column is the tenant column name (default: "tenant_id")
	Column string
	// Required rejects statements on tenant tables issued without a tenant in context
	Required bool
}

// Guard adds tenant conditions to statements
type Guard struct {
	column   string
	required bool
}

// NewGuard creates a guard
func NewGuard(cfg Config) *Guard {
	if cfg.Column == "" {
		cfg.Column = "tenant_id"
	}
	return &Guard{column: cfg.Column, required: cfg.Required}
}

// RegisterGuard installs the guard on db. Creates are not touched: the
// application sets tenant_id on new rows itself.
func RegisterGuard(db *gorm.DB, cfg Config) error {
	g := NewGuard(cfg)
	cb := db.Callback()
	return errors.Join(
		cb.Query().Before("gorm:query").Register(callbackPrefix+"query", g.apply),
		cb.Row().Before("gorm:row").Register(callbackPrefix+"row", g.apply),
		cb.Update().Before("gorm:update").Register(callbackPrefix+"update", g.apply),
		cb.Delete().Before("gorm:delete").Register(callbackPrefix+"delete", g.apply),
	)
}

// UnregisterGuard removes the guard, mainly for tests
func UnregisterGuard(db *gorm.DB) {
	cb := db.Callback()
	_ = cb.Query().Remove(callbackPrefix + "query")
	_ = cb.Row().Remove(callbackPrefix + "row")
	_ = cb.Update().Remove(callbackPrefix + "update")
	_ = cb.Delete().Remove(callbackPrefix + "delete")
}

func (g *Guard) apply(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Context == nil || stmt.Unscoped || !g.hasTenantColumn(stmt) {
		return
	}
	if g.hasTenantCondition(stmt) {
		return
	}

	raw := logger.GetTenantID(stmt.Context)
	if raw == "" {
		if g.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}

	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: g.column}, Value: tenantID},
	}})
}

func (g *Guard) hasTenantColumn(stmt *gorm.Statement) bool {
	if stmt.Schema == nil {
		return false
	}
	_, ok := stmt.Schema.FieldsByDBName[g.column]
	return ok
}

func (g *Guard) hasTenantCondition(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if g.mentionsTenant(expr) {
			return true
		}
	}
	return false
}

func (g *Guard) mentionsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		return g.isTenantColumn(e.Column)
	case clause.IN:
		return g.isTenantColumn(e.Column)
	case clause.Expr:
		return strings.Contains(e.SQL, g.column)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, g.column)
	case clause.AndConditions:
		for _, c := range e.Exprs {
			if g.mentionsTenant(c) {
				return true
			}
		}
	case clause.OrConditions:
		for _, c := range e.Exprs {
			if g.mentionsTenant(c) {
				return true
			}
		}
	}
	return false
}

func (g *Guard) isTenantColumn(col any) bool {
	switch c := col.(type) {
	case clause.Column:
		return c.Name == g.column
	case string:
		return c == g.column
	}
	return false
}
