package booking

import (
	"context"
	"testing"
	"time"

	"talkastro/internal/models"
	"talkastro/internal/services/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockBookings struct{ mock.Mock }

func (m *MockBookings) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookings) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookings) UpdateStatus(ctx context.Context, id uint, status string, completedAt *time.Time) error {
	args := m.Called(ctx, id, status, completedAt)
	return args.Error(0)
}

func (m *MockBookings) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookings) ListByAstrologer(ctx context.Context, astrologerID uint, limit, offset int) ([]models.Booking, error) {
	args := m.Called(ctx, astrologerID, limit, offset)
	return args.Get(0).([]models.Booking), args.Error(1)
}

type MockAstrologers struct{ mock.Mock }

func (m *MockAstrologers) GetByID(ctx context.Context, id uint) (*models.Astrologer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Astrologer), args.Error(1)
}

func (m *MockAstrologers) GetByUserID(ctx context.Context, userID uint) (*models.Astrologer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Astrologer), args.Error(1)
}

type MockLedger struct{ mock.Mock }

func (m *MockLedger) Debit(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func approvedAstrologer(id, userID uint, price string) *models.Astrologer {
	return &models.Astrologer{
		Model:        gorm.Model{ID: id},
		UserID:       userID,
		DisplayName:  "Acharya Sharma",
		SessionPrice: decimal.RequireFromString(price),
		Approved:     true,
	}
}

func TestCreate_CopiesSessionPrice(t *testing.T) {
	bookings := new(MockBookings)
	astrologers := new(MockAstrologers)

	astrologers.On("GetByID", mock.Anything, uint(3)).Return(approvedAstrologer(3, 30, "1200"), nil)
	bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *models.Booking) bool {
		return b.UserID == 1 &&
			b.AstrologerID == 3 &&
			b.Status == models.BookingStatusPending &&
			b.Amount.Equal(decimal.RequireFromString("1200"))
	})).Return(nil)

	svc := NewService(bookings, astrologers, new(MockLedger))

	booking, err := svc.Create(context.Background(), 1, 3, "Vedic Astrology", time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, booking.Status)
	bookings.AssertExpectations(t)
}

func TestCreate_UnapprovedAstrologerRejected(t *testing.T) {
	astrologers := new(MockAstrologers)
	unapproved := approvedAstrologer(3, 30, "1200")
	unapproved.Approved = false
	astrologers.On("GetByID", mock.Anything, uint(3)).Return(unapproved, nil)

	svc := NewService(new(MockBookings), astrologers, new(MockLedger))

	_, err := svc.Create(context.Background(), 1, 3, "Tarot Reading", time.Now())
	assert.ErrorIs(t, err, ErrAstrologerUnavailable)
}

func TestComplete_DebitsSessionPayment(t *testing.T) {
	bookings := new(MockBookings)
	astrologers := new(MockAstrologers)
	wallet := new(MockLedger)

	amount := decimal.RequireFromString("400")
	bookings.On("GetByID", mock.Anything, uint(9)).Return(&models.Booking{
		Model:        gorm.Model{ID: 9},
		UserID:       1,
		AstrologerID: 3,
		Status:       models.BookingStatusConfirmed,
		Amount:       amount,
	}, nil)
	astrologers.On("GetByUserID", mock.Anything, uint(30)).Return(approvedAstrologer(3, 30, "400"), nil)
	wallet.On("Debit", mock.Anything, uint(1), amount, "Session payment").
		Return(&models.Wallet{UserID: 1}, nil)
	bookings.On("UpdateStatus", mock.Anything, uint(9), models.BookingStatusCompleted, mock.Anything).Return(nil)

	svc := NewService(bookings, astrologers, wallet)

	booking, err := svc.Complete(context.Background(), 30, 9)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, booking.Status)
	require.NotNil(t, booking.CompletedAt)
	wallet.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestComplete_InsufficientBalanceLeavesBookingOpen(t *testing.T) {
	bookings := new(MockBookings)
	astrologers := new(MockAstrologers)
	wallet := new(MockLedger)

	amount := decimal.RequireFromString("1200")
	bookings.On("GetByID", mock.Anything, uint(9)).Return(&models.Booking{
		Model:        gorm.Model{ID: 9},
		UserID:       1,
		AstrologerID: 3,
		Status:       models.BookingStatusConfirmed,
		Amount:       amount,
	}, nil)
	astrologers.On("GetByUserID", mock.Anything, uint(30)).Return(approvedAstrologer(3, 30, "1200"), nil)
	wallet.On("Debit", mock.Anything, uint(1), amount, "Session payment").
		Return(nil, ledger.ErrInsufficientBalance)

	svc := NewService(bookings, astrologers, wallet)

	_, err := svc.Complete(context.Background(), 30, 9)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	// No UpdateStatus call: the booking stays open.
	bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestComplete_WrongAstrologer(t *testing.T) {
	bookings := new(MockBookings)
	astrologers := new(MockAstrologers)

	bookings.On("GetByID", mock.Anything, uint(9)).Return(&models.Booking{
		Model:        gorm.Model{ID: 9},
		UserID:       1,
		AstrologerID: 3,
		Status:       models.BookingStatusConfirmed,
	}, nil)
	astrologers.On("GetByUserID", mock.Anything, uint(99)).Return(approvedAstrologer(8, 99, "500"), nil)

	svc := NewService(bookings, astrologers, new(MockLedger))

	_, err := svc.Complete(context.Background(), 99, 9)
	assert.ErrorIs(t, err, ErrWrongAstrologer)
}

func TestComplete_AlreadyCompleted(t *testing.T) {
	bookings := new(MockBookings)
	astrologers := new(MockAstrologers)
	wallet := new(MockLedger)

	bookings.On("GetByID", mock.Anything, uint(9)).Return(&models.Booking{
		Model:        gorm.Model{ID: 9},
		UserID:       1,
		AstrologerID: 3,
		Status:       models.BookingStatusCompleted,
	}, nil)
	astrologers.On("GetByUserID", mock.Anything, uint(30)).Return(approvedAstrologer(3, 30, "500"), nil)

	svc := NewService(bookings, astrologers, wallet)

	_, err := svc.Complete(context.Background(), 30, 9)
	assert.ErrorIs(t, err, ErrNotCompletable)
	// A finished session is never charged twice.
	wallet.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	bookings := new(MockBookings)

	bookings.On("GetByID", mock.Anything, uint(9)).Return(&models.Booking{
		Model:  gorm.Model{ID: 9},
		UserID: 1,
		Status: models.BookingStatusPending,
	}, nil)
	bookings.On("UpdateStatus", mock.Anything, uint(9), models.BookingStatusCancelled, (*time.Time)(nil)).Return(nil)

	svc := NewService(bookings, new(MockAstrologers), new(MockLedger))

	require.NoError(t, svc.Cancel(context.Background(), 1, 9))
	assert.ErrorIs(t, svc.Cancel(context.Background(), 2, 9), ErrWrongUser)
}
