package handler

import (
	"fmt"
	"strings"
	"time"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format of payment dates
const dateLayout = "2006-01-02"

// SubmitBillPaymentRequest represents a request to record a bill payment
// @Description Request body for recording a vendor bill payment
type SubmitBillPaymentRequest struct {
	VendorID          uuid.UUID                     `json:"vendor_id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	PaymentDate       string                        `json:"payment_date" example:"2026-03-15"`
	PaymentMethod     string                        `json:"payment_method" binding:"omitempty,oneof=check ach wire credit_card cash other" example:"check"`
	ReferenceNumber   string                        `json:"reference_number" binding:"max=100" example:"CHK-1042"`
	PaymentAmount     decimal.Decimal               `json:"payment_amount" swaggertype:"number" example:"1250.00"`
	PaidFromAccountID uuid.UUID                     `json:"paid_from_account_id" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	Memo              string                        `json:"memo" binding:"max=1000" example:"March invoices"`
	Applications      []appbillpay.ApplicationInput `json:"applications"`
}

func (r SubmitBillPaymentRequest) toAppRequest() (appbillpay.SubmitPaymentRequest, error) {
	date, err := parseDate(r.PaymentDate)
	if err != nil {
		return appbillpay.SubmitPaymentRequest{}, err
	}
	return appbillpay.SubmitPaymentRequest{
		VendorID:          r.VendorID,
		PaymentDate:       date,
		PaymentMethod:     r.PaymentMethod,
		ReferenceNumber:   r.ReferenceNumber,
		PaymentAmount:     r.PaymentAmount,
		PaidFromAccountID: r.PaidFromAccountID,
		Memo:              r.Memo,
		Applications:      r.Applications,
	}, nil
}

// UpdateBillPaymentRequest edits the header of a recorded payment
// @Description Request body for updating a payment header. Applications cannot be changed.
type UpdateBillPaymentRequest struct {
	PaymentDate     *string                        `json:"payment_date" example:"2026-03-16"`
	PaymentMethod   *string                        `json:"payment_method" binding:"omitempty,oneof=check ach wire credit_card cash other" example:"ach"`
	ReferenceNumber *string                        `json:"reference_number" binding:"omitempty,max=100" example:"ACH-77"`
	Memo            *string                        `json:"memo" binding:"omitempty,max=1000"`
	Applications    *[]appbillpay.ApplicationInput `json:"applications,omitempty"`
}

func (r UpdateBillPaymentRequest) toAppRequest() (appbillpay.UpdatePaymentRequest, error) {
	req := appbillpay.UpdatePaymentRequest{
		PaymentMethod:   r.PaymentMethod,
		ReferenceNumber: r.ReferenceNumber,
		Memo:            r.Memo,
		Applications:    r.Applications,
	}
	if r.PaymentDate != nil {
		date, err := parseDate(*r.PaymentDate)
		if err != nil {
			return req, err
		}
		req.PaymentDate = &date
	}
	return req, nil
}

// VoidBillPaymentRequest represents a request to void a payment
// @Description Request body for voiding a payment
type VoidBillPaymentRequest struct {
	Reason string `json:"reason" example:"Check lost in mail"`
}

// ListBillPaymentsQuery holds the list filters
type ListBillPaymentsQuery struct {
	VendorID      string `form:"vendor_id" binding:"omitempty,uuid"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=check ach wire credit_card cash other"`
	Status        string `form:"status" binding:"omitempty,oneof=pending cleared void"`
	StartDate     string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate       string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Search        string `form:"search" binding:"max=100"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (q ListBillPaymentsQuery) toFilter() appbillpay.PaymentListFilter {
	f := appbillpay.PaymentListFilter{
		Search:   strings.TrimSpace(q.Search),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.VendorID != "" {
		if id, err := uuid.Parse(q.VendorID); err == nil {
			f.VendorID = &id
		}
	}
	if q.PaymentMethod != "" {
		f.PaymentMethod = &q.PaymentMethod
	}
	if q.Status != "" {
		f.Status = &q.Status
	}
	if q.StartDate != "" {
		if d, err := time.Parse(dateLayout, q.StartDate); err == nil {
			f.StartDate = &d
		}
	}
	if q.EndDate != "" {
		if d, err := time.Parse(dateLayout, q.EndDate); err == nil {
			f.EndDate = &d
		}
	}
	return f
}

// Allocation actions
const (
	AllocateActionToggle    = "toggle"
	AllocateActionSetAmount = "set_amount"
	AllocateActionReset     = "reset"
	AllocateActionTotals    = "totals"
)

// AllocationLine is one application row of a draft
type AllocationLine struct {
	BillID        uuid.UUID       `json:"bill_id"`
	BillNumber    string          `json:"bill_number,omitempty"`
	AmountApplied decimal.Decimal `json:"amount_applied" swaggertype:"number"`
}

// AllocateRequest applies one editing step to a draft's applications
// @Description Stateless allocation step: toggle a bill, set an amount, reset, or recompute totals
type AllocateRequest struct {
	Action        string                               `json:"action" binding:"required,oneof=toggle set_amount reset totals" example:"toggle"`
	PaymentAmount decimal.Decimal                      `json:"payment_amount" swaggertype:"number" example:"500.00"`
	Bills         []appbillpay.OutstandingBillResponse `json:"bills"`
	Applications  []AllocationLine                     `json:"applications"`
	BillID        *uuid.UUID                           `json:"bill_id"`
	// Amount is the raw user input for set_amount; unparseable input counts as zero
	Amount string `json:"amount" example:"125.50"`
}

// AllocationResult is the draft after one allocation step
type AllocationResult struct {
	Applications []AllocationLine `json:"applications"`
	Totals       billpay.Totals   `json:"totals"`
}

// ValidateBillPaymentRequest is a draft checked against the supplied bills
// @Description Draft payment plus the vendor's outstanding bills
type ValidateBillPaymentRequest struct {
	SubmitBillPaymentRequest
	Bills []appbillpay.OutstandingBillResponse `json:"bills"`
}

// ValidationResult reports every violated rule at once
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
	Totals billpay.Totals    `json:"totals"`
}

func toDomainApplications(lines []AllocationLine) []billpay.PaymentApplication {
	apps := make([]billpay.PaymentApplication, len(lines))
	for i, l := range lines {
		apps[i] = billpay.PaymentApplication{BillID: l.BillID, BillNumber: l.BillNumber, AmountApplied: l.AmountApplied}
	}
	return apps
}

func toAllocationLines(apps []billpay.PaymentApplication) []AllocationLine {
	lines := make([]AllocationLine, len(apps))
	for i, a := range apps {
		lines[i] = AllocationLine{BillID: a.BillID, BillNumber: a.BillNumber, AmountApplied: a.AmountApplied}
	}
	return lines
}

func toOutstandingBills(bills []appbillpay.OutstandingBillResponse) []billpay.OutstandingBill {
	out := make([]billpay.OutstandingBill, len(bills))
	for i, b := range bills {
		out[i] = b.ToOutstandingBill()
	}
	return out
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty input is the zero time so
// the validator can report the missing date.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("payment_date must be YYYY-MM-DD")
	}
	return d, nil
}
