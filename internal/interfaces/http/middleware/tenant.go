package middleware

import (
	"net/http"

	"github.com/Daniel159642/pos-sub005/internal/infrastructure/logger"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request headers and gin context keys for the caller's identity
const (
	TenantHeaderKey      = "X-Tenant-ID"
	UserHeaderKey        = "X-User-ID"
	IdempotencyKeyHeader = "Idempotency-Key"

	TenantIDKey = "tenant_id"
	UserIDKey   = "user_id"
)

// TenantContext resolves the tenant from X-Tenant-ID, falling back to
// defaultTenant, and the acting user from the optional X-User-ID. Both must
// be UUIDs. The values are stored on the gin context and the request context.
func TenantContext(defaultTenant uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := defaultTenant
		if raw := c.GetHeader(TenantHeaderKey); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil || parsed == uuid.Nil {
				abortBadHeader(c, "Invalid tenant ID format")
				return
			}
			tenantID = parsed
		}
		if tenantID == uuid.Nil {
			abortBadHeader(c, "Tenant identification required")
			return
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())

		if raw := c.GetHeader(UserHeaderKey); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				abortBadHeader(c, "Invalid user ID format")
				return
			}
			c.Set(UserIDKey, userID)
			ctx = logger.WithUserID(ctx, userID.String())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortBadHeader(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, GetRequestID(c)))
}

// GetTenantUUID returns the tenant set by TenantContext
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserUUID returns the acting user, or nil when the request named none
func GetUserUUID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
