package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds one user's balance. Balance is stored as numeric(12,2) and
// handled as a decimal everywhere; it must always equal the net sum of the
// wallet's transaction log and may never go negative. Only the ledger
// service mutates it, always together with the transaction append in a
// single database transaction.
type Wallet struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Currency  string          `gorm:"default:'INR'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Recent transaction view, populated on reads. Not automigrated as an
	// association write path; appends go through the repository only.
	Transactions []WalletTransaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Wallets always start empty regardless of what the caller set.
	w.Balance = decimal.Zero
	return nil
}
