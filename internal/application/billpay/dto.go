package billpay

import (
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/Daniel159642/pos-sub005/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Request DTOs ====================

// ApplicationInput assigns part of a payment to one bill
type ApplicationInput struct {
	BillID        uuid.UUID       `json:"bill_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// SubmitPaymentRequest records a new bill payment
type SubmitPaymentRequest struct {
	VendorID          uuid.UUID          `json:"vendor_id"`
	PaymentDate       time.Time          `json:"payment_date"`
	PaymentMethod     string             `json:"payment_method"`
	ReferenceNumber   string             `json:"reference_number"`
	PaymentAmount     decimal.Decimal    `json:"payment_amount"`
	PaidFromAccountID uuid.UUID          `json:"paid_from_account_id"`
	Memo              string             `json:"memo"`
	Applications      []ApplicationInput `json:"applications"`
	CreatedBy         *uuid.UUID         `json:"-"`
	IdempotencyKey    string             `json:"-"`
}

// Draft converts the request into a domain draft with amounts rounded to cents
func (r SubmitPaymentRequest) Draft() (billpay.PaymentDraft, error) {
	method, err := billpay.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return billpay.PaymentDraft{}, err
	}
	apps := make([]billpay.PaymentApplication, len(r.Applications))
	for i, a := range r.Applications {
		apps[i] = billpay.PaymentApplication{BillID: a.BillID, AmountApplied: valueobject.RoundCurrency(a.AmountApplied)}
	}
	return billpay.PaymentDraft{
		VendorID:          r.VendorID,
		PaymentDate:       r.PaymentDate,
		PaymentMethod:     method,
		ReferenceNumber:   r.ReferenceNumber,
		PaymentAmount:     valueobject.RoundCurrency(r.PaymentAmount),
		PaidFromAccountID: r.PaidFromAccountID,
		Memo:              r.Memo,
		Applications:      apps,
	}, nil
}

// SubmitRequestFromDraft is the inverse of Draft
func SubmitRequestFromDraft(d billpay.PaymentDraft) SubmitPaymentRequest {
	apps := make([]ApplicationInput, len(d.Applications))
	for i, a := range d.Applications {
		apps[i] = ApplicationInput{BillID: a.BillID, AmountApplied: a.AmountApplied}
	}
	return SubmitPaymentRequest{
		VendorID:          d.VendorID,
		PaymentDate:       d.PaymentDate,
		PaymentMethod:     string(d.PaymentMethod),
		ReferenceNumber:   d.ReferenceNumber,
		PaymentAmount:     d.PaymentAmount,
		PaidFromAccountID: d.PaidFromAccountID,
		Memo:              d.Memo,
		Applications:      apps,
	}
}

// UpdatePaymentRequest edits the header of a recorded payment.
// A non-nil Applications field is rejected: applications are fixed once submitted.
type UpdatePaymentRequest struct {
	PaymentDate     *time.Time          `json:"payment_date"`
	PaymentMethod   *string             `json:"payment_method"`
	ReferenceNumber *string             `json:"reference_number"`
	Memo            *string             `json:"memo"`
	Applications    *[]ApplicationInput `json:"applications,omitempty"`
}

// VoidPaymentRequest voids a payment
type VoidPaymentRequest struct {
	Reason   string     `json:"reason"`
	VoidedBy *uuid.UUID `json:"-"`
}

// PaymentListFilter narrows the payment list
type PaymentListFilter struct {
	VendorID      *uuid.UUID
	PaymentMethod *string
	Status        *string
	StartDate     *time.Time
	EndDate       *time.Time
	Search        string
	Page          int
	PageSize      int
}

// ==================== Response DTOs ====================

// OutstandingBillResponse is an open bill offered for payment
type OutstandingBillResponse struct {
	ID              uuid.UUID       `json:"id"`
	BillNumber      string          `json:"bill_number"`
	VendorReference string          `json:"vendor_reference"`
	BillDate        time.Time       `json:"bill_date"`
	DueDate         time.Time       `json:"due_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	IsOverdue       bool            `json:"is_overdue"`
}

// ToOutstandingBillResponses converts snapshots, flagging overdue bills against today
func ToOutstandingBillResponses(bills []billpay.OutstandingBill, today time.Time) []OutstandingBillResponse {
	out := make([]OutstandingBillResponse, len(bills))
	for i, b := range bills {
		out[i] = OutstandingBillResponse{
			ID:              b.ID,
			BillNumber:      b.BillNumber,
			VendorReference: b.VendorReference,
			BillDate:        b.BillDate,
			DueDate:         b.DueDate,
			TotalAmount:     b.TotalAmount,
			BalanceDue:      b.BalanceDue,
			IsOverdue:       b.IsOverdue(today),
		}
	}
	return out
}

// ToOutstandingBill drops the derived overdue flag
func (r OutstandingBillResponse) ToOutstandingBill() billpay.OutstandingBill {
	return billpay.OutstandingBill{
		ID:              r.ID,
		BillNumber:      r.BillNumber,
		VendorReference: r.VendorReference,
		BillDate:        r.BillDate,
		DueDate:         r.DueDate,
		TotalAmount:     r.TotalAmount,
		BalanceDue:      r.BalanceDue,
	}
}

// ApplicationResponse is one bill application of a payment
type ApplicationResponse struct {
	ID            uuid.UUID       `json:"id"`
	BillID        uuid.UUID       `json:"bill_id"`
	BillNumber    string          `json:"bill_number"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// PaymentResponse is a recorded bill payment
type PaymentResponse struct {
	ID                uuid.UUID             `json:"id"`
	PaymentNumber     string                `json:"payment_number"`
	VendorID          uuid.UUID             `json:"vendor_id"`
	VendorName        string                `json:"vendor_name,omitempty"`
	PaymentDate       time.Time             `json:"payment_date"`
	PaymentMethod     string                `json:"payment_method"`
	ReferenceNumber   string                `json:"reference_number"`
	PaymentAmount     decimal.Decimal       `json:"payment_amount"`
	TotalApplied      decimal.Decimal       `json:"total_applied"`
	UnappliedAmount   decimal.Decimal       `json:"unapplied_amount"`
	PaidFromAccountID uuid.UUID             `json:"paid_from_account_id"`
	Memo              string                `json:"memo"`
	Status            string                `json:"status"`
	Applications      []ApplicationResponse `json:"applications"`
	JournalEntryID    *uuid.UUID            `json:"journal_entry_id,omitempty"`
	ClearedAt         *time.Time            `json:"cleared_at,omitempty"`
	VoidDate          *time.Time            `json:"void_date,omitempty"`
	VoidReason        string                `json:"void_reason,omitempty"`
	CanDelete         bool                  `json:"can_delete"`
	CanPrintCheck     bool                  `json:"can_print_check"`
	Version           int                   `json:"version"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// ToPaymentResponse converts a domain payment
func ToPaymentResponse(p *billpay.Payment) PaymentResponse {
	apps := make([]ApplicationResponse, len(p.Applications))
	for i, a := range p.Applications {
		apps[i] = ApplicationResponse{
			ID:            a.ID,
			BillID:        a.BillID,
			BillNumber:    a.BillNumber,
			AmountApplied: a.AmountApplied,
		}
	}
	return PaymentResponse{
		ID:                p.ID,
		PaymentNumber:     p.PaymentNumber,
		VendorID:          p.VendorID,
		PaymentDate:       p.PaymentDate,
		PaymentMethod:     string(p.PaymentMethod),
		ReferenceNumber:   p.ReferenceNumber,
		PaymentAmount:     p.PaymentAmount,
		TotalApplied:      p.TotalApplied(),
		UnappliedAmount:   p.UnappliedAmount,
		PaidFromAccountID: p.PaidFromAccountID,
		Memo:              p.Memo,
		Status:            string(p.Status),
		Applications:      apps,
		JournalEntryID:    p.JournalEntryID,
		ClearedAt:         p.ClearedAt,
		VoidDate:          p.VoidDate,
		VoidReason:        p.VoidReason,
		CanDelete:         p.CanDelete(),
		CanPrintCheck:     p.CanPrintCheck(),
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToPaymentResponses converts a list of domain payments
func ToPaymentResponses(payments []billpay.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// lifecycle rebuilds just enough of the aggregate to evaluate its guards
func (r *PaymentResponse) lifecycle() *billpay.Payment {
	apps := make([]billpay.PaymentApplication, len(r.Applications))
	for i, a := range r.Applications {
		apps[i] = billpay.PaymentApplication{ID: a.ID, BillID: a.BillID, AmountApplied: a.AmountApplied}
	}
	return &billpay.Payment{
		PaymentMethod: billpay.PaymentMethod(r.PaymentMethod),
		Status:        billpay.PaymentStatus(r.Status),
		Applications:  apps,
	}
}

// VendorResponse identifies the payee
type VendorResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// CheckBillResponse is a bill printed on a check stub
type CheckBillResponse struct {
	BillID          uuid.UUID       `json:"bill_id"`
	BillNumber      string          `json:"bill_number"`
	VendorReference string          `json:"vendor_reference"`
	BillDate        time.Time       `json:"bill_date"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AmountApplied   decimal.Decimal `json:"amount_applied"`
}

// CheckDataResponse holds everything needed to print a check
type CheckDataResponse struct {
	Payment           PaymentResponse     `json:"payment"`
	Vendor            VendorResponse      `json:"vendor"`
	Bills             []CheckBillResponse `json:"bills"`
	TotalApplied      decimal.Decimal     `json:"total_applied"`
	PaymentAmountText string              `json:"payment_amount_text"`
	FormattedAmount   string              `json:"formatted_amount"`
	ArchiveURL        string              `json:"archive_url,omitempty"`
}

func newCheckData(p *billpay.Payment, v *billpay.Vendor, bills []billpay.Bill) CheckDataResponse {
	byID := make(map[uuid.UUID]billpay.Bill, len(bills))
	for _, b := range bills {
		byID[b.ID] = b
	}
	lines := make([]CheckBillResponse, 0, len(p.Applications))
	for _, app := range p.Applications {
		line := CheckBillResponse{
			BillID:        app.BillID,
			BillNumber:    app.BillNumber,
			AmountApplied: app.AmountApplied,
		}
		if b, ok := byID[app.BillID]; ok {
			line.BillNumber = b.BillNumber
			line.VendorReference = b.VendorReference
			line.BillDate = b.BillDate
			line.TotalAmount = b.TotalAmount
		}
		lines = append(lines, line)
	}
	resp := ToPaymentResponse(p)
	resp.VendorName = v.Name
	return CheckDataResponse{
		Payment:           resp,
		Vendor:            VendorResponse{ID: v.ID, Name: v.Name, Email: v.Email},
		Bills:             lines,
		TotalApplied:      p.TotalApplied(),
		PaymentAmountText: valueobject.AmountText(p.PaymentAmount),
		FormattedAmount:   valueobject.FormatCurrency(p.PaymentAmount),
	}
}
