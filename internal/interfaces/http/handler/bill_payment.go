package handler

import (
	"context"
	"time"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillPaymentService is the application surface used by BillPaymentHandler
type BillPaymentService interface {
	FetchOutstandingBills(ctx context.Context, tenantID, vendorID uuid.UUID) ([]billpay.OutstandingBill, error)
	SubmitPayment(ctx context.Context, tenantID uuid.UUID, req appbillpay.SubmitPaymentRequest) (*appbillpay.PaymentResponse, error)
	GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*appbillpay.PaymentResponse, error)
	ListPayments(ctx context.Context, tenantID uuid.UUID, filter appbillpay.PaymentListFilter) ([]appbillpay.PaymentResponse, int64, error)
	ListVendorPayments(ctx context.Context, tenantID, vendorID uuid.UUID) ([]appbillpay.PaymentResponse, error)
	UpdatePayment(ctx context.Context, tenantID, paymentID uuid.UUID, req appbillpay.UpdatePaymentRequest) (*appbillpay.PaymentResponse, error)
	VoidPayment(ctx context.Context, tenantID, paymentID uuid.UUID, req appbillpay.VoidPaymentRequest) (*appbillpay.PaymentResponse, error)
	ClearPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*appbillpay.PaymentResponse, error)
	DeletePayment(ctx context.Context, tenantID, paymentID uuid.UUID) error
	GetCheckData(ctx context.Context, tenantID, paymentID uuid.UUID) (*appbillpay.CheckDataResponse, error)
}

// BillPaymentHandler handles vendor bill payment endpoints
type BillPaymentHandler struct {
	BaseHandler
	service BillPaymentService
	now     func() time.Time
}

// NewBillPaymentHandler creates a new BillPaymentHandler
func NewBillPaymentHandler(service BillPaymentService) *BillPaymentHandler {
	return &BillPaymentHandler{
		service: service,
		now:     time.Now,
	}
}

// RegisterRoutes mounts the bill payment routes on an API group
func (h *BillPaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vendors := rg.Group("/vendors")
	vendors.GET("/:id/outstanding-bills", h.ListOutstandingBills)
	vendors.GET("/:id/bill-payments", h.ListVendorPayments)

	payments := rg.Group("/bill-payments")
	payments.POST("/allocate", h.Allocate)
	payments.POST("/validate", h.Validate)
	payments.POST("", h.Submit)
	payments.GET("", h.List)
	payments.GET("/:id", h.GetByID)
	payments.PUT("/:id", h.Update)
	payments.DELETE("/:id", h.Delete)
	payments.POST("/:id/void", h.Void)
	payments.POST("/:id/clear", h.Clear)
	payments.GET("/:id/check", h.GetCheckData)
}

// ListOutstandingBills godoc
// @Summary      List a vendor's outstanding bills
// @Description  Open and partially paid bills with a positive balance, oldest due date first
// @Tags         bill-payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]appbillpay.OutstandingBillResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /vendors/{id}/outstanding-bills [get]
func (h *BillPaymentHandler) ListOutstandingBills(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	vendorID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	bills, err := h.service.FetchOutstandingBills(c.Request.Context(), tenantID, vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appbillpay.ToOutstandingBillResponses(bills, h.now()))
}

// ListVendorPayments godoc
// @Summary      List a vendor's recent payments
// @Tags         bill-payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]appbillpay.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /vendors/{id}/bill-payments [get]
func (h *BillPaymentHandler) ListVendorPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	vendorID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	payments, err := h.service.ListVendorPayments(c.Request.Context(), tenantID, vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Allocate godoc
// @Summary      Apply one allocation step to a draft
// @Description  Toggle a bill, set an application amount, reset, or just recompute totals. Nothing is persisted.
// @Tags         bill-payments
// @Accept       json
// @Produce      json
// @Param        request body AllocateRequest true "Allocation step"
// @Success      200 {object} dto.Response{data=AllocationResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/allocate [post]
func (h *BillPaymentHandler) Allocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	apps := toDomainApplications(req.Applications)
	switch req.Action {
	case AllocateActionToggle, AllocateActionSetAmount:
		if req.BillID == nil {
			h.BadRequest(c, "bill_id is required for "+req.Action)
			return
		}
		if req.Action == AllocateActionSetAmount {
			apps = billpay.SetAmount(*req.BillID, req.Amount, apps)
			break
		}
		bill, ok := findBill(req.Bills, *req.BillID)
		if !ok {
			h.BadRequest(c, "bill_id is not among the supplied bills")
			return
		}
		apps = billpay.ToggleBill(bill, apps, req.PaymentAmount)
	case AllocateActionReset:
		apps = billpay.ResetApplications()
	}

	h.Success(c, AllocationResult{
		Applications: toAllocationLines(apps),
		Totals:       billpay.ComputeTotals(apps, req.PaymentAmount),
	})
}

// Validate godoc
// @Summary      Validate a payment draft
// @Description  Runs every payment rule against the supplied bills and reports all violations at once
// @Tags         bill-payments
// @Accept       json
// @Produce      json
// @Param        request body ValidateBillPaymentRequest true "Draft and outstanding bills"
// @Success      200 {object} dto.Response{data=ValidationResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/validate [post]
func (h *BillPaymentHandler) Validate(c *gin.Context) {
	var req ValidateBillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	appReq, err := req.toAppRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	draft, err := appReq.Draft()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	errs := billpay.ValidatePayment(draft, toOutstandingBills(req.Bills))
	h.Success(c, ValidationResult{
		Valid:  !errs.HasErrors(),
		Errors: errs,
		Totals: draft.Totals(),
	})
}

// Submit godoc
// @Summary      Record a bill payment
// @Description  Validates the draft, applies it to the bills, posts the journal entry and records the payment atomically
// @Tags         bill-payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        X-User-ID header string false "Acting user ID"
// @Param        Idempotency-Key header string false "Client key that makes retries safe"
// @Param        request body SubmitBillPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=appbillpay.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments [post]
func (h *BillPaymentHandler) Submit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req SubmitBillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	appReq, err := req.toAppRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	appReq.CreatedBy = middleware.GetUserUUID(c)
	appReq.IdempotencyKey = c.GetHeader(middleware.IdempotencyKeyHeader)

	payment, err := h.service.SubmitPayment(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// List godoc
// @Summary      List bill payments
// @Tags         bill-payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        vendor_id query string false "Vendor ID" format(uuid)
// @Param        payment_method query string false "Payment method" Enums(check, ach, wire, credit_card, cash, other)
// @Param        status query string false "Status" Enums(pending, cleared, void)
// @Param        start_date query string false "Earliest payment date (YYYY-MM-DD)"
// @Param        end_date query string false "Latest payment date (YYYY-MM-DD)"
// @Param        search query string false "Matches payment number, reference or memo"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50) maximum(100)
// @Success      200 {object} dto.Response{data=[]appbillpay.PaymentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments [get]
func (h *BillPaymentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query ListBillPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	filter := query.toFilter()

	payments, total, err := h.service.ListPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = appbillpay.DefaultSettings().DefaultPageSize
	}
	h.SuccessWithMeta(c, payments, total, page, pageSize)
}

// GetByID godoc
// @Summary      Get a bill payment
// @Tags         bill-payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbillpay.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/{id} [get]
func (h *BillPaymentHandler) GetByID(c *gin.Context) {
	tenantID, paymentID, ok := h.paymentScope(c)
	if !ok {
		return
	}

	payment, err := h.service.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Update godoc
// @Summary      Update a payment header
// @Description  Date, method, reference and memo of a pending payment. Applications cannot be changed.
// @Tags         bill-payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body UpdateBillPaymentRequest true "Header changes"
// @Success      200 {object} dto.Response{data=appbillpay.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/{id} [put]
func (h *BillPaymentHandler) Update(c *gin.Context) {
	tenantID, paymentID, ok := h.paymentScope(c)
	if !ok {
		return
	}

	var req UpdateBillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	appReq, err := req.toAppRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.service.UpdatePayment(c.Request.Context(), tenantID, paymentID, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Void godoc
// @Summary      Void a bill payment
// @Description  Restores the bills' balances and voids the journal entry. A reason is required.
// @Tags         bill-payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        X-User-ID header string false "Acting user ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body VoidBillPaymentRequest true "Void reason"
// @Success      200 {object} dto.Response{data=appbillpay.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/{id}/void [post]
func (h *BillPaymentHandler) Void(c *gin.Context) {
	tenantID, paymentID, ok := h.paymentScope(c)
	if !ok {
		return
	}

	var req VoidBillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	payment, err := h.service.VoidPayment(c.Request.Context(), tenantID, paymentID, appbillpay.VoidPaymentRequest{
		Reason:   req.Reason,
		VoidedBy: middleware.GetUserUUID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Clear godoc
// @Summary      Mark a payment as cleared by the bank
// @Tags         bill-payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbillpay.PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/{id}/clear [post]
func (h *BillPaymentHandler) Clear(c *gin.Context) {
	tenantID, paymentID, ok := h.paymentScope(c)
	if !ok {
		return
	}

	payment, err := h.service.ClearPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Delete godoc
// @Summary      Delete a voided payment
// @Tags         bill-payments
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/{id} [delete]
func (h *BillPaymentHandler) Delete(c *gin.Context) {
	tenantID, paymentID, ok := h.paymentScope(c)
	if !ok {
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), tenantID, paymentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetCheckData godoc
// @Summary      Get printable check data
// @Description  Payee, amount in words and the bills covered. Only check payments qualify.
// @Tags         bill-payments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=appbillpay.CheckDataResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /bill-payments/{id}/check [get]
func (h *BillPaymentHandler) GetCheckData(c *gin.Context) {
	tenantID, paymentID, ok := h.paymentScope(c)
	if !ok {
		return
	}

	data, err := h.service.GetCheckData(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// paymentScope resolves the tenant and the :id parameter, writing a 400 on failure
func (h *BillPaymentHandler) paymentScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, uuid.Nil, false
	}
	paymentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, paymentID, true
}

func findBill(bills []appbillpay.OutstandingBillResponse, id uuid.UUID) (billpay.OutstandingBill, bool) {
	for _, b := range bills {
		if b.ID == id {
			return b.ToOutstandingBill(), true
		}
	}
	return billpay.OutstandingBill{}, false
}
