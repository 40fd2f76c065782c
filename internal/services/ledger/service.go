// Package ledger is the sole mutator of wallet state. Every balance
// change goes through Credit or Debit, which serialize per wallet on the
// row lock taken by the repository and append exactly one immutable
// transaction per successful call. The invariant maintained here: a
// wallet's balance always equals the net sum of its transaction log and
// is never negative.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"talkastro/internal/models"
	"talkastro/internal/repositories"
	"talkastro/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// How many log entries ride along on a wallet snapshot.
const recentTransactionCount = 10

// Cache is the wallet snapshot cache. All methods are best-effort; a
// cache failure never fails a ledger operation.
type Cache interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, bool, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

type Service interface {
	// GetWallet returns the wallet snapshot, creating a zero-balance
	// wallet on first access. Absence is never an error.
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)

	// Credit adds amount to the wallet and appends a credit transaction.
	Credit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error)

	// Debit subtracts amount if the balance covers it, else fails with
	// ErrInsufficientBalance and changes nothing.
	Debit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error)

	// Transactions pages through the wallet's log, newest first.
	Transactions(ctx context.Context, userID uint, limit, offset int) ([]models.WalletTransaction, int64, error)

	// Replay recomputes the balance from the transaction log alone.
	Replay(ctx context.Context, userID uint) (decimal.Decimal, error)
}

type service struct {
	repo  repositories.WalletRepository
	cache Cache
}

// NewService creates the ledger service. cache may be nil.
func NewService(repo repositories.WalletRepository, cache Cache) Service {
	if repo == nil {
		panic("wallet repository is required")
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, ok, _ := s.cache.GetWallet(ctx, userID); ok {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrWalletNotFound) {
		// First access: create lazily. The row lock makes concurrent
		// first reads converge on a single wallet.
		err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
			wallet, err = tx.GetOrCreateForUpdate(ctx, userID)
			return err
		})
	}
	if err != nil {
		return nil, wrapStorage(err)
	}

	if err := s.attachRecent(ctx, wallet); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.CacheWallet(ctx, wallet); err != nil {
			logrus.WithError(err).Warn("failed to cache wallet")
		}
	}
	return wallet, nil
}

func (s *service) Credit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error) {
	return s.apply(ctx, userID, models.TransactionCredit, amount, description)
}

func (s *service) Debit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error) {
	return s.apply(ctx, userID, models.TransactionDebit, amount, description)
}

// apply is the single mutation path. Validation happens before any
// storage access; the balance check and both writes happen under the
// wallet's row lock inside one database transaction.
func (s *service) apply(ctx context.Context, userID uint, txType models.TransactionType, amount decimal.Decimal, description string) (*models.Wallet, error) {
	if err := validation.Amount(amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if description == "" {
		description = defaultDescription(txType)
	}
	// A caller that is already cancelled must observe no effect.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		wallet *models.Wallet
		entry  *models.WalletTransaction
	)
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		w, err := tx.GetOrCreateForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		// The overdraft check runs strictly after the lock is held;
		// concurrent debits cannot both pass it against a stale read.
		if txType == models.TransactionDebit && w.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		if txType == models.TransactionDebit {
			w.Balance = w.Balance.Sub(amount)
		} else {
			w.Balance = w.Balance.Add(amount)
		}

		e := &models.WalletTransaction{
			Reference:   uuid.NewString(),
			WalletID:    w.ID,
			Type:        txType,
			Amount:      amount,
			Description: description,
		}
		if err := tx.AppendTransaction(ctx, e); err != nil {
			return err
		}
		if err := tx.Save(ctx, w); err != nil {
			return err
		}

		wallet, entry = w, e
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"amount":  amount.String(),
			}).Warn("debit rejected: insufficient balance")
			return nil, ErrInsufficientBalance
		}
		return nil, wrapStorage(err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateWallet(ctx, userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("failed to invalidate wallet cache")
		}
	}

	logrus.WithFields(logrus.Fields{
		"user_id":        userID,
		"type":           txType,
		"amount":         amount.String(),
		"balance":        wallet.Balance.String(),
		"transaction_id": entry.Reference,
	}).Info("wallet mutation")

	// The mutation is committed at this point. A failed read of the
	// recent view must not surface as retryable, or a caller honoring the
	// StorageError contract would re-apply a committed credit or debit.
	if err := s.attachRecent(ctx, wallet); err != nil {
		logrus.WithError(err).WithField("user_id", userID).
			Warn("mutation committed, recent transaction view unavailable")
		wallet.Transactions = nil
	}
	return wallet, nil
}

func (s *service) Transactions(ctx context.Context, userID uint, limit, offset int) ([]models.WalletTransaction, int64, error) {
	wallet, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrWalletNotFound) {
		// Untouched wallet: empty log, not an error.
		return []models.WalletTransaction{}, 0, nil
	}
	if err != nil {
		return nil, 0, wrapStorage(err)
	}

	txns, err := s.repo.Transactions(ctx, wallet.ID, limit, offset)
	if err != nil {
		return nil, 0, wrapStorage(err)
	}
	total, err := s.repo.CountTransactions(ctx, wallet.ID)
	if err != nil {
		return nil, 0, wrapStorage(err)
	}
	return txns, total, nil
}

func (s *service) Replay(ctx context.Context, userID uint) (decimal.Decimal, error) {
	wallet, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, wrapStorage(err)
	}
	sum, err := s.repo.ReplaySum(ctx, wallet.ID)
	if err != nil {
		return decimal.Zero, wrapStorage(err)
	}
	return sum, nil
}

func (s *service) attachRecent(ctx context.Context, wallet *models.Wallet) error {
	recent, err := s.repo.Transactions(ctx, wallet.ID, recentTransactionCount, 0)
	if err != nil {
		return wrapStorage(err)
	}
	wallet.Transactions = recent
	return nil
}

func defaultDescription(txType models.TransactionType) string {
	if txType == models.TransactionDebit {
		return models.DefaultDebitDescription
	}
	return models.DefaultCreditDescription
}

// wrapStorage marks persistence failures retryable while letting
// cancellation pass through untouched.
func wrapStorage(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StorageError{Err: err}
}
