// Package booking manages consultation bookings. Completing a session is
// the one place the platform charges a user: the booking amount is
// debited from their wallet through the ledger.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"talkastro/internal/models"
	"talkastro/internal/repositories"
	"talkastro/internal/services/ledger"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrAstrologerUnavailable = errors.New("astrologer not available for booking")
	ErrNotCompletable        = errors.New("booking is not in a completable state")
	ErrNotCancellable        = errors.New("booking can no longer be cancelled")
	ErrWrongAstrologer       = errors.New("booking belongs to another astrologer")
	ErrWrongUser             = errors.New("booking belongs to another user")
)

// Ledger is the slice of the wallet ledger this service needs.
type Ledger interface {
	Debit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error)
}

// BookingStore is the slice of the booking repository this service uses.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uint, status string, completedAt *time.Time) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Booking, error)
	ListByAstrologer(ctx context.Context, astrologerID uint, limit, offset int) ([]models.Booking, error)
}

// AstrologerDirectory resolves astrologer profiles.
type AstrologerDirectory interface {
	GetByID(ctx context.Context, id uint) (*models.Astrologer, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Astrologer, error)
}

type Service interface {
	// Create books a session with an approved astrologer at the
	// astrologer's current session price. No money moves yet.
	Create(ctx context.Context, userID, astrologerID uint, serviceType string, scheduledAt time.Time) (*models.Booking, error)

	// Confirm marks a pending booking accepted by its astrologer.
	Confirm(ctx context.Context, astrologerUserID, bookingID uint) error

	// Complete marks the session done and debits the user's wallet for
	// the booking amount. A failed debit leaves the booking unchanged.
	Complete(ctx context.Context, astrologerUserID, bookingID uint) (*models.Booking, error)

	// Cancel cancels a pending or confirmed booking. Nothing was charged
	// yet, so nothing is refunded.
	Cancel(ctx context.Context, userID, bookingID uint) error

	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Booking, error)
	ListForAstrologer(ctx context.Context, astrologerUserID uint, limit, offset int) ([]models.Booking, error)
}

type service struct {
	bookings    BookingStore
	astrologers AstrologerDirectory
	wallet      Ledger
}

func NewService(bookings BookingStore, astrologers AstrologerDirectory, wallet Ledger) Service {
	if wallet == nil {
		panic("ledger is required")
	}
	return &service{
		bookings:    bookings,
		astrologers: astrologers,
		wallet:      wallet,
	}
}

func (s *service) Create(ctx context.Context, userID, astrologerID uint, serviceType string, scheduledAt time.Time) (*models.Booking, error) {
	astrologer, err := s.astrologers.GetByID(ctx, astrologerID)
	if err != nil {
		if errors.Is(err, repositories.ErrAstrologerNotFound) {
			return nil, ErrAstrologerUnavailable
		}
		return nil, err
	}
	if !astrologer.Approved {
		return nil, ErrAstrologerUnavailable
	}

	booking := &models.Booking{
		UserID:       userID,
		AstrologerID: astrologer.ID,
		ServiceType:  serviceType,
		ScheduledAt:  scheduledAt,
		Status:       models.BookingStatusPending,
		Amount:       astrologer.SessionPrice,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":    booking.ID,
		"user_id":       userID,
		"astrologer_id": astrologer.ID,
		"amount":        booking.Amount.String(),
	}).Info("booking created")

	return booking, nil
}

func (s *service) Confirm(ctx context.Context, astrologerUserID, bookingID uint) error {
	booking, err := s.ownBooking(ctx, astrologerUserID, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != models.BookingStatusPending {
		return ErrNotCompletable
	}
	return s.bookings.UpdateStatus(ctx, bookingID, models.BookingStatusConfirmed, nil)
}

func (s *service) Complete(ctx context.Context, astrologerUserID, bookingID uint) (*models.Booking, error) {
	booking, err := s.ownBooking(ctx, astrologerUserID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return nil, ErrNotCompletable
	}

	// Charge first: if the wallet cannot cover the session the booking
	// stays open and the error goes back to the caller untouched.
	if _, err := s.wallet.Debit(ctx, booking.UserID, booking.Amount, "Session payment"); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.bookings.UpdateStatus(ctx, bookingID, models.BookingStatusCompleted, &now); err != nil {
		// The debit already committed; the booking state lagging behind
		// is recoverable, losing the error is not.
		logrus.WithError(err).WithField("booking_id", bookingID).
			Error("debit committed but booking completion failed")
		return nil, fmt.Errorf("booking %d charged but not completed: %w", bookingID, err)
	}

	booking.Status = models.BookingStatusCompleted
	booking.CompletedAt = &now
	return booking, nil
}

func (s *service) Cancel(ctx context.Context, userID, bookingID uint) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return ErrWrongUser
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return ErrNotCancellable
	}
	return s.bookings.UpdateStatus(ctx, bookingID, models.BookingStatusCancelled, nil)
}

func (s *service) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Booking, error) {
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

func (s *service) ListForAstrologer(ctx context.Context, astrologerUserID uint, limit, offset int) ([]models.Booking, error) {
	astrologer, err := s.astrologers.GetByUserID(ctx, astrologerUserID)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByAstrologer(ctx, astrologer.ID, limit, offset)
}

func (s *service) ownBooking(ctx context.Context, astrologerUserID, bookingID uint) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	astrologer, err := s.astrologers.GetByUserID(ctx, astrologerUserID)
	if err != nil {
		return nil, err
	}
	if booking.AstrologerID != astrologer.ID {
		return nil, ErrWrongAstrologer
	}
	return booking, nil
}

var _ Ledger = (ledger.Service)(nil)
