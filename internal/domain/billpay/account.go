package billpay

import (
	"strings"

	"github.com/Daniel159642/pos-sub005/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountType is the chart-of-accounts classification
type AccountType string

const (
	AccountTypeAsset     AccountType = "Asset"
	AccountTypeLiability AccountType = "Liability"
	AccountTypeEquity    AccountType = "Equity"
	AccountTypeRevenue   AccountType = "Revenue"
	AccountTypeExpense   AccountType = "Expense"
)

// Account is a general-ledger account. Payments are drawn from Asset accounts
// (cash or bank) and reduce the accounts-payable Liability account.
type Account struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	AccountCode string
	AccountName string
	AccountType AccountType
	SubType     string
	IsActive    bool
}

// EnsureCanFundPayment checks the account may be used as paid-from account
func (a *Account) EnsureCanFundPayment() error {
	if a.AccountType != AccountTypeAsset {
		return shared.NewDomainError("INVALID_ACCOUNT", "Paid from account must be an Asset account (cash or bank)")
	}
	if !a.IsActive {
		return shared.NewDomainError("ACCOUNT_INACTIVE", "Paid from account is inactive")
	}
	return nil
}

// IsPayables reports whether the account looks like accounts payable
func (a *Account) IsPayables() bool {
	if a.AccountType != AccountTypeLiability || !a.IsActive {
		return false
	}
	return strings.Contains(strings.ToLower(a.SubType), "payable") ||
		strings.Contains(strings.ToLower(a.AccountName), "payable")
}
