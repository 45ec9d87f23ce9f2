package models

import (
	"time"

	"github.com/Daniel159642/pos-sub005/internal/domain/billpay"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorModel is the persistence model for the Vendor aggregate root.
type VendorModel struct {
	TenantAggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	Email          string          `gorm:"type:varchar(200)"`
	IsActive       bool            `gorm:"not null;default:true"`
	AccountBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the persistence model to a domain Vendor
func (m *VendorModel) ToDomain() *billpay.Vendor {
	return &billpay.Vendor{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Name:                m.Name,
		Email:               m.Email,
		IsActive:            m.IsActive,
		AccountBalance:      m.AccountBalance,
	}
}

// FromDomain populates the persistence model from a domain Vendor
func (m *VendorModel) FromDomain(v *billpay.Vendor) {
	m.FromDomainTenantAggregateRoot(v.TenantAggregateRoot)
	m.Name = v.Name
	m.Email = v.Email
	m.IsActive = v.IsActive
	m.AccountBalance = v.AccountBalance
}

// VendorModelFromDomain creates a new persistence model from a domain Vendor
func VendorModelFromDomain(v *billpay.Vendor) *VendorModel {
	m := &VendorModel{}
	m.FromDomain(v)
	return m
}

// AccountModel is the persistence model for a general-ledger account.
type AccountModel struct {
	BaseModel
	TenantID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	AccountCode string              `gorm:"type:varchar(20);not null;index"`
	AccountName string              `gorm:"type:varchar(200);not null"`
	AccountType billpay.AccountType `gorm:"type:varchar(20);not null"`
	SubType     string              `gorm:"type:varchar(50)"`
	IsActive    bool                `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *billpay.Account {
	return &billpay.Account{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		AccountCode: m.AccountCode,
		AccountName: m.AccountName,
		AccountType: m.AccountType,
		SubType:     m.SubType,
		IsActive:    m.IsActive,
	}
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *billpay.Account) *AccountModel {
	m := &AccountModel{
		TenantID:    a.TenantID,
		AccountCode: a.AccountCode,
		AccountName: a.AccountName,
		AccountType: a.AccountType,
		SubType:     a.SubType,
		IsActive:    a.IsActive,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// BillModel is the persistence model for the Bill aggregate root.
type BillModel struct {
	TenantAggregateModel
	VendorID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	BillNumber      string             `gorm:"type:varchar(50);not null"`
	VendorReference string             `gorm:"type:varchar(100)"`
	BillDate        time.Time          `gorm:"type:date;not null"`
	DueDate         time.Time          `gorm:"type:date;not null;index"`
	TotalAmount     decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	AmountPaid      decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceDue      decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Status          billpay.BillStatus `gorm:"type:varchar(20);not null;default:'open';index"`
	PaidDate        *time.Time         `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *billpay.Bill {
	return &billpay.Bill{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		VendorID:            m.VendorID,
		BillNumber:          m.BillNumber,
		VendorReference:     m.VendorReference,
		BillDate:            m.BillDate,
		DueDate:             m.DueDate,
		TotalAmount:         m.TotalAmount,
		AmountPaid:          m.AmountPaid,
		BalanceDue:          m.BalanceDue,
		Status:              m.Status,
		PaidDate:            m.PaidDate,
	}
}

// FromDomain populates the persistence model from a domain Bill
func (m *BillModel) FromDomain(b *billpay.Bill) {
	m.FromDomainTenantAggregateRoot(b.TenantAggregateRoot)
	m.VendorID = b.VendorID
	m.BillNumber = b.BillNumber
	m.VendorReference = b.VendorReference
	m.BillDate = b.BillDate
	m.DueDate = b.DueDate
	m.TotalAmount = b.TotalAmount
	m.AmountPaid = b.AmountPaid
	m.BalanceDue = b.BalanceDue
	m.Status = b.Status
	m.PaidDate = b.PaidDate
}

// BillModelFromDomain creates a new persistence model from a domain Bill
func BillModelFromDomain(b *billpay.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}

// BillPaymentModel is the persistence model for the Payment aggregate root.
type BillPaymentModel struct {
	TenantAggregateModel
	PaymentNumber     string                        `gorm:"type:varchar(20);not null;index"`
	VendorID          uuid.UUID                     `gorm:"type:uuid;not null;index"`
	PaymentDate       time.Time                     `gorm:"type:date;not null;index"`
	PaymentMethod     billpay.PaymentMethod         `gorm:"type:varchar(20);not null;default:'check'"`
	ReferenceNumber   string                        `gorm:"type:varchar(50)"`
	PaymentAmount     decimal.Decimal               `gorm:"type:decimal(18,2);not null"`
	UnappliedAmount   decimal.Decimal               `gorm:"type:decimal(18,2);not null;default:0"`
	PaidFromAccountID uuid.UUID                     `gorm:"type:uuid;not null"`
	Memo              string                        `gorm:"type:text"`
	Status            billpay.PaymentStatus         `gorm:"type:varchar(20);not null;default:'pending';index"`
	JournalEntryID    *uuid.UUID                    `gorm:"type:uuid"`
	VoidReason        string                        `gorm:"type:varchar(500)"`
	VoidedBy          *uuid.UUID                    `gorm:"type:uuid"`
	Applications      []BillPaymentApplicationModel `gorm:"foreignKey:BillPaymentID;references:ID;constraint:OnDelete:CASCADE"`
	ClearedAt         *time.Time
	VoidDate          *time.Time
}

// TableName returns the table name for GORM
func (BillPaymentModel) TableName() string {
	return "bill_payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *BillPaymentModel) ToDomain() *billpay.Payment {
	p := &billpay.Payment{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		PaymentNumber:       m.PaymentNumber,
		VendorID:            m.VendorID,
		PaymentDate:         m.PaymentDate,
		PaymentMethod:       m.PaymentMethod,
		ReferenceNumber:     m.ReferenceNumber,
		PaymentAmount:       m.PaymentAmount,
		UnappliedAmount:     m.UnappliedAmount,
		PaidFromAccountID:   m.PaidFromAccountID,
		Memo:                m.Memo,
		Status:              m.Status,
		JournalEntryID:      m.JournalEntryID,
		ClearedAt:           m.ClearedAt,
		VoidDate:            m.VoidDate,
		VoidReason:          m.VoidReason,
		VoidedBy:            m.VoidedBy,
		Applications:        make([]billpay.PaymentApplication, len(m.Applications)),
	}
	for i := range m.Applications {
		p.Applications[i] = m.Applications[i].ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment
func (m *BillPaymentModel) FromDomain(p *billpay.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.VendorID = p.VendorID
	m.PaymentDate = p.PaymentDate
	m.PaymentMethod = p.PaymentMethod
	m.ReferenceNumber = p.ReferenceNumber
	m.PaymentAmount = p.PaymentAmount
	m.UnappliedAmount = p.UnappliedAmount
	m.PaidFromAccountID = p.PaidFromAccountID
	m.Memo = p.Memo
	m.Status = p.Status
	m.JournalEntryID = p.JournalEntryID
	m.ClearedAt = p.ClearedAt
	m.VoidDate = p.VoidDate
	m.VoidReason = p.VoidReason
	m.VoidedBy = p.VoidedBy
	m.Applications = make([]BillPaymentApplicationModel, len(p.Applications))
	for i, app := range p.Applications {
		m.Applications[i] = BillPaymentApplicationModelFromDomain(p.ID, app)
	}
}

// BillPaymentModelFromDomain creates a new persistence model from a domain Payment
func BillPaymentModelFromDomain(p *billpay.Payment) *BillPaymentModel {
	m := &BillPaymentModel{}
	m.FromDomain(p)
	return m
}

// BillPaymentApplicationModel is one row of bill_payment_applications.
type BillPaymentApplicationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	BillPaymentID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bill_payment_applications_payment_bill,priority:1"`
	BillID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bill_payment_applications_payment_bill,priority:2;index"`
	BillNumber    string          `gorm:"type:varchar(50)"`
	AmountApplied decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BillPaymentApplicationModel) TableName() string {
	return "bill_payment_applications"
}

// ToDomain converts the persistence model to a domain PaymentApplication
func (m *BillPaymentApplicationModel) ToDomain() billpay.PaymentApplication {
	return billpay.PaymentApplication{
		ID:            m.ID,
		PaymentID:     m.BillPaymentID,
		BillID:        m.BillID,
		BillNumber:    m.BillNumber,
		AmountApplied: m.AmountApplied,
	}
}

// BillPaymentApplicationModelFromDomain creates an application row for a payment
func BillPaymentApplicationModelFromDomain(paymentID uuid.UUID, app billpay.PaymentApplication) BillPaymentApplicationModel {
	id := app.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return BillPaymentApplicationModel{
		ID:            id,
		BillPaymentID: paymentID,
		BillID:        app.BillID,
		BillNumber:    app.BillNumber,
		AmountApplied: app.AmountApplied,
	}
}

// JournalEntryModel is the persistence model for the JournalEntry aggregate root.
type JournalEntryModel struct {
	TenantAggregateModel
	EntryDate          time.Time               `gorm:"type:date;not null"`
	EntryType          string                  `gorm:"type:varchar(30);not null"`
	Description        string                  `gorm:"type:varchar(500)"`
	SourceDocumentID   uuid.UUID               `gorm:"type:uuid;index"`
	SourceDocumentType string                  `gorm:"type:varchar(30)"`
	IsPosted           bool                    `gorm:"not null;default:false"`
	IsVoid             bool                    `gorm:"not null;default:false"`
	VoidReason         string                  `gorm:"type:varchar(500)"`
	Lines              []JournalEntryLineModel `gorm:"foreignKey:JournalEntryID;references:ID;constraint:OnDelete:CASCADE"`
	VoidDate           *time.Time
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() *billpay.JournalEntry {
	e := &billpay.JournalEntry{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		EntryDate:           m.EntryDate,
		EntryType:           m.EntryType,
		Description:         m.Description,
		SourceDocumentID:    m.SourceDocumentID,
		SourceDocumentType:  m.SourceDocumentType,
		IsPosted:            m.IsPosted,
		IsVoid:              m.IsVoid,
		VoidDate:            m.VoidDate,
		VoidReason:          m.VoidReason,
		Lines:               make([]billpay.JournalLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		e.Lines[i] = billpay.JournalLine{
			ID:           l.ID,
			EntryID:      l.JournalEntryID,
			AccountID:    l.AccountID,
			LineNumber:   l.LineNumber,
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
			EntityType:   l.EntityType,
			EntityID:     l.EntityID,
		}
	}
	return e
}

// FromDomain populates the persistence model from a domain JournalEntry
func (m *JournalEntryModel) FromDomain(e *billpay.JournalEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.EntryDate = e.EntryDate
	m.EntryType = e.EntryType
	m.Description = e.Description
	m.SourceDocumentID = e.SourceDocumentID
	m.SourceDocumentType = e.SourceDocumentType
	m.IsPosted = e.IsPosted
	m.IsVoid = e.IsVoid
	m.VoidDate = e.VoidDate
	m.VoidReason = e.VoidReason
	m.Lines = make([]JournalEntryLineModel, len(e.Lines))
	for i, l := range e.Lines {
		m.Lines[i] = JournalEntryLineModel{
			ID:             l.ID,
			JournalEntryID: e.ID,
			AccountID:      l.AccountID,
			LineNumber:     l.LineNumber,
			DebitAmount:    l.DebitAmount,
			CreditAmount:   l.CreditAmount,
			Description:    l.Description,
			EntityType:     l.EntityType,
			EntityID:       l.EntityID,
		}
	}
}

// JournalEntryModelFromDomain creates a new persistence model from a domain JournalEntry
func JournalEntryModelFromDomain(e *billpay.JournalEntry) *JournalEntryModel {
	m := &JournalEntryModel{}
	m.FromDomain(e)
	return m
}

// JournalEntryLineModel is one debit or credit line
type JournalEntryLineModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber     int             `gorm:"not null"`
	DebitAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreditAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Description    string          `gorm:"type:varchar(500)"`
	EntityType     string          `gorm:"type:varchar(30)"`
	EntityID       uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (JournalEntryLineModel) TableName() string {
	return "journal_entry_lines"
}

// AllModels lists the models of the bill payment schema in dependency order
func AllModels() []any {
	return []any{
		&VendorModel{},
		&AccountModel{},
		&BillModel{},
		&BillPaymentModel{},
		&BillPaymentApplicationModel{},
		&JournalEntryModel{},
		&JournalEntryLineModel{},
	}
}
