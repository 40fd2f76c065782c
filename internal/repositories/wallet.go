package repositories

import (
	"context"
	"errors"

	"talkastro/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// WalletRepository is the durable store for wallets and their append-only
// transaction logs. Mutating methods are only meaningful inside
// ExecuteInTransaction, which maps to one database transaction: balance
// update and transaction append commit or roll back together, so a reader
// never observes one without the other.
type WalletRepository interface {
	// GetByUserID is the unlocked read path. Returns ErrWalletNotFound if
	// the user has never touched their wallet.
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)

	// GetOrCreateForUpdate loads the wallet under a row lock, creating a
	// zero-balance wallet on first access. Concurrent first access never
	// produces two wallets for the same user. Holding the lock until the
	// surrounding transaction commits is the ledger's serialization point.
	GetOrCreateForUpdate(ctx context.Context, userID uint) (*models.Wallet, error)

	// Save persists the wallet's balance and updated_at.
	Save(ctx context.Context, wallet *models.Wallet) error

	// AppendTransaction inserts a ledger entry. Entries are never updated
	// or deleted afterwards.
	AppendTransaction(ctx context.Context, txn *models.WalletTransaction) error

	// Transactions returns the wallet's log in insertion order, newest
	// first, paginated.
	Transactions(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error)
	CountTransactions(ctx context.Context, walletID uint) (int64, error)

	// ReplaySum recomputes the net balance of a wallet from its log in a
	// single aggregate pass. Used to verify the ledger invariant.
	ReplaySum(ctx context.Context, walletID uint) (decimal.Decimal, error)

	// SumAmountByType aggregates one transaction type across all wallets
	// in a single pass in the database. Platform revenue is the debit sum.
	SumAmountByType(ctx context.Context, txType models.TransactionType) (decimal.Decimal, error)

	// RecentByType returns the latest transactions of one type across all
	// wallets, for the admin activity feed.
	RecentByType(ctx context.Context, txType models.TransactionType, limit int) ([]models.WalletTransaction, error)

	// WalletsPaginated lists wallets for the admin panel.
	WalletsPaginated(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error)

	// ExecuteInTransaction runs fn against a repository view bound to one
	// database transaction; fn returning an error rolls everything back.
	ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error
}
