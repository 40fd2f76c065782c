package admin

import (
	"context"
	"testing"
	"time"

	"talkastro/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func modelAt(id uint, t time.Time) gorm.Model {
	return gorm.Model{ID: id, CreatedAt: t}
}

type MockWallets struct{ mock.Mock }

func (m *MockWallets) SumAmountByType(ctx context.Context, txType models.TransactionType) (decimal.Decimal, error) {
	args := m.Called(ctx, txType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWallets) RecentByType(ctx context.Context, txType models.TransactionType, limit int) ([]models.WalletTransaction, error) {
	args := m.Called(ctx, txType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WalletTransaction), args.Error(1)
}

func (m *MockWallets) WalletsPaginated(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Wallet), args.Get(1).(int64), args.Error(2)
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsers) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUsers) RecentSignups(ctx context.Context, limit int) ([]models.User, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

type MockAstrologers struct{ mock.Mock }

func (m *MockAstrologers) CountApproved(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAstrologers) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAstrologers) AverageRating(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAstrologers) ListPending(ctx context.Context, limit int) ([]models.Astrologer, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Astrologer), args.Error(1)
}

func (m *MockAstrologers) RecentApplications(ctx context.Context, limit int) ([]models.Astrologer, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Astrologer), args.Error(1)
}

func (m *MockAstrologers) Approve(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBookings struct{ mock.Mock }

func (m *MockBookings) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookings) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookings) Recent(ctx context.Context, limit int) ([]models.Booking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func TestComputeRevenue(t *testing.T) {
	wallets := new(MockWallets)
	wallets.On("SumAmountByType", mock.Anything, models.TransactionDebit).
		Return(decimal.RequireFromString("125000.00"), nil)

	svc := NewService(wallets, new(MockUsers), new(MockAstrologers), new(MockBookings), nil)

	revenue, err := svc.ComputeRevenue(context.Background())
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("125000.00")))
	wallets.AssertExpectations(t)
}

func TestStats(t *testing.T) {
	wallets := new(MockWallets)
	users := new(MockUsers)
	astrologers := new(MockAstrologers)
	bookings := new(MockBookings)

	users.On("CountByRole", mock.Anything, models.RoleUser).Return(int64(1250), nil)
	users.On("CountActiveSince", mock.Anything, mock.Anything).Return(int64(320), nil)
	astrologers.On("CountApproved", mock.Anything).Return(int64(45), nil)
	astrologers.On("CountPending", mock.Anything).Return(int64(3), nil)
	astrologers.On("AverageRating", mock.Anything).Return(4.6, nil)
	bookings.On("Count", mock.Anything).Return(int64(890), nil)
	bookings.On("CountByStatus", mock.Anything, models.BookingStatusPending).Return(int64(12), nil)
	bookings.On("CountByStatus", mock.Anything, models.BookingStatusCompleted).Return(int64(756), nil)
	wallets.On("SumAmountByType", mock.Anything, models.TransactionDebit).
		Return(decimal.RequireFromString("125000"), nil)

	svc := NewService(wallets, users, astrologers, bookings, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1250, stats.TotalUsers)
	assert.EqualValues(t, 45, stats.TotalAstrologers)
	assert.EqualValues(t, 890, stats.TotalBookings)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("125000")))
	assert.EqualValues(t, 320, stats.ActiveUsers)
	assert.EqualValues(t, 3, stats.PendingApprovals)
	assert.EqualValues(t, 12, stats.PendingBookings)
	assert.EqualValues(t, 756, stats.CompletedSessions)
	assert.InDelta(t, 4.6, stats.AverageRating, 0.001)
	assert.False(t, stats.GeneratedAt.IsZero())

	wallets.AssertExpectations(t)
	users.AssertExpectations(t)
	astrologers.AssertExpectations(t)
	bookings.AssertExpectations(t)
}

func TestRecentActivity_MergedAndOrdered(t *testing.T) {
	now := time.Now()
	at := func(minAgo int) time.Time { return now.Add(-time.Duration(minAgo) * time.Minute) }

	wallets := new(MockWallets)
	users := new(MockUsers)
	astrologers := new(MockAstrologers)
	bookings := new(MockBookings)

	users.On("RecentSignups", mock.Anything, 3).Return([]models.User{
		{Name: "Priya Sharma", Model: modelAt(1, at(5))},
	}, nil)
	astrologers.On("RecentApplications", mock.Anything, 3).Return([]models.Astrologer{
		{DisplayName: "Dr. Rajesh Kumar", Model: modelAt(2, at(15))},
	}, nil)
	bookings.On("Recent", mock.Anything, 3).Return([]models.Booking{
		{Astrologer: models.Astrologer{DisplayName: "Acharya Sharma"}, Model: modelAt(3, at(30))},
	}, nil)
	wallets.On("RecentByType", mock.Anything, models.TransactionDebit, 3).Return([]models.WalletTransaction{
		{Reference: "ref-1", Amount: decimal.RequireFromString("1200"), CreatedAt: at(45)},
	}, nil)

	svc := NewService(wallets, users, astrologers, bookings, nil)

	items, err := svc.RecentActivity(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, items, 3) // truncated to limit

	assert.Equal(t, models.ActivityUserSignup, items[0].Type)
	assert.Equal(t, models.ActivityAstrologerApplication, items[1].Type)
	assert.Equal(t, models.ActivityBookingCreated, items[2].Type)
	for i := 0; i < len(items)-1; i++ {
		assert.True(t, !items[i].Timestamp.Before(items[i+1].Timestamp))
	}
}

func TestApproveAstrologer(t *testing.T) {
	astrologers := new(MockAstrologers)
	astrologers.On("Approve", mock.Anything, uint(7)).Return(nil)

	svc := NewService(new(MockWallets), new(MockUsers), astrologers, new(MockBookings), nil)

	err := svc.ApproveAstrologer(context.Background(), 7)
	require.NoError(t, err)
	astrologers.AssertExpectations(t)
}
