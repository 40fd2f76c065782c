package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is a closed enum; anything other than credit or debit
// is rejected before it reaches storage.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

func (t TransactionType) Valid() bool {
	return t == TransactionCredit || t == TransactionDebit
}

// Default descriptions applied when the caller passes none.
const (
	DefaultCreditDescription = "Wallet recharge"
	DefaultDebitDescription  = "Session payment"
)

// WalletTransaction is an immutable ledger entry. Rows are append-only:
// there is no update or delete path, compensation happens through new
// entries. The auto-increment ID preserves the order in which operations
// took effect on the balance; Reference is the caller-visible uuid.
type WalletTransaction struct {
	ID          uint            `gorm:"primarykey"`
	Reference   string          `gorm:"uniqueIndex;not null"`
	WalletID    uint            `gorm:"not null;index"`
	Type        TransactionType `gorm:"type:varchar(10);not null;index"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Description string          `gorm:"not null"`
	CreatedAt   time.Time
}

// Signed returns the transaction's contribution to the balance.
func (t *WalletTransaction) Signed() decimal.Decimal {
	if t.Type == TransactionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
