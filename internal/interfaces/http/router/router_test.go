package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Daniel159642/pos-sub005/internal/infrastructure/config"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	payments := NewDomainGroup("bill-payments", "/bill-payments")
	payments.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	NewRouter(engine).Register(payments).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/bill-payments/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUse_AppliesToAPIRoutesOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	g := NewDomainGroup("system", "/system")
	g.GET("/info", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).
		Use(func(c *gin.Context) {
			c.Header("X-API", "1")
			c.Next()
		}).
		Register(g).
		Setup()

	assert.Equal(t, "1", serve(engine, http.MethodGet, "/api/v1/system/info", nil).Header().Get("X-API"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health", nil).Header().Get("X-API"))
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("bill-payments", "/bill-payments")
	ok := func(status int) gin.HandlerFunc {
		return func(c *gin.Context) { c.Status(status) }
	}
	g.GET("", ok(http.StatusOK)).
		POST("", ok(http.StatusCreated)).
		PUT("/:id", ok(http.StatusOK)).
		PATCH("/:id", ok(http.StatusOK)).
		DELETE("/:id", ok(http.StatusNoContent))
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, "bill-payments", g.Name())
	assert.Equal(t, "/bill-payments", g.Prefix())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/bill-payments", http.StatusOK},
		{http.MethodPost, "/api/v1/bill-payments", http.StatusCreated},
		{http.MethodPut, "/api/v1/bill-payments/1", http.StatusOK},
		{http.MethodPatch, "/api/v1/bill-payments/1", http.StatusOK},
		{http.MethodDelete, "/api/v1/bill-payments/1", http.StatusNoContent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, serve(engine, tt.method, tt.path, nil).Code, "%s %s", tt.method, tt.path)
	}
}

func TestDomainGroup_MiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	vendors := NewDomainGroup("vendors", "/vendors")
	vendors.Use(func(c *gin.Context) {
		c.Header("X-Group", "vendors")
		c.Next()
	})
	vendors.Group("bills", "/:id/outstanding-bills").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
	vendors.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/vendors/v-1/outstanding-bills", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v-1", w.Body.String())
	assert.Equal(t, "vendors", w.Header().Get("X-Group"))
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "billpay", Env: "development"},
		HTTP: config.HTTPConfig{MaxBodySize: 64},
		Swagger: config.SwaggerConfig{
			Enabled: false,
		},
		Telemetry: config.TelemetryConfig{ServiceName: "billpay"},
	}
}

func TestNewEngine_Stack(t *testing.T) {
	engine := NewEngine(testConfig(), EngineDeps{})
	engine.GET("/echo", func(c *gin.Context) { c.String(http.StatusOK, middleware.GetRequestID(c)) })

	w := serve(engine, http.MethodGet, "/echo", map[string]string{middleware.RequestIDHeader: "req-42"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	// swagger is hidden when disabled
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/swagger/index.html", nil).Code)
}

func TestNewEngine_RecoversPanics(t *testing.T) {
	engine := NewEngine(testConfig(), EngineDeps{})
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, serve(engine, http.MethodGet, "/boom", nil).Code)
}

func TestNewAPIRouter_TenantContext(t *testing.T) {
	cfg := testConfig()
	tenant := uuid.New()
	cfg.App.DefaultTenantID = tenant.String()

	engine := NewEngine(cfg, EngineDeps{})
	g := NewDomainGroup("whoami", "/whoami")
	g.GET("", func(c *gin.Context) {
		id, _ := middleware.GetTenantUUID(c)
		c.String(http.StatusOK, id.String())
	})
	NewAPIRouter(engine, cfg).Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/whoami", nil)
	assert.Equal(t, tenant.String(), w.Body.String())

	other := uuid.New()
	w = serve(engine, http.MethodGet, "/api/v1/whoami", map[string]string{middleware.TenantHeaderKey: other.String()})
	assert.Equal(t, other.String(), w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/whoami", map[string]string{middleware.TenantHeaderKey: "acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewAPIRouter_NoDefaultTenant(t *testing.T) {
	cfg := testConfig()
	engine := NewEngine(cfg, EngineDeps{})
	g := NewDomainGroup("whoami", "/whoami")
	g.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	NewAPIRouter(engine, cfg).Register(g).Setup()

	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodGet, "/api/v1/whoami", nil).Code)
}
