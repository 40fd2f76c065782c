// Package admin assembles the platform statistics snapshot for the admin
// dashboard. Everything here is read-only: revenue is derived from the
// transaction logs on demand, never stored, and no wallet is ever locked
// beyond the single aggregate query reading it.
package admin

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"talkastro/internal/models"
	"talkastro/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	statsCacheKey  = "admin:stats:snapshot"
	statsCacheTTL  = time.Minute
	activeUserSpan = 30 * 24 * time.Hour
)

// WalletAggregator is the slice of the wallet store the aggregator reads.
type WalletAggregator interface {
	SumAmountByType(ctx context.Context, txType models.TransactionType) (decimal.Decimal, error)
	RecentByType(ctx context.Context, txType models.TransactionType, limit int) ([]models.WalletTransaction, error)
	WalletsPaginated(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error)
}

// UserDirectory provides user counts and the signup feed.
type UserDirectory interface {
	CountByRole(ctx context.Context, role string) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	RecentSignups(ctx context.Context, limit int) ([]models.User, error)
}

// AstrologerDirectory provides approval state and ratings.
type AstrologerDirectory interface {
	CountApproved(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
	AverageRating(ctx context.Context) (float64, error)
	ListPending(ctx context.Context, limit int) ([]models.Astrologer, error)
	RecentApplications(ctx context.Context, limit int) ([]models.Astrologer, error)
	Approve(ctx context.Context, id uint) error
}

// BookingDirectory provides booking counts and the booking feed.
type BookingDirectory interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.Booking, error)
}

// Cache stores the computed snapshot briefly so dashboard refreshes do
// not re-aggregate on every request.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type Service interface {
	// ComputeRevenue sums all debit transactions across all wallets in a
	// single aggregate pass.
	ComputeRevenue(ctx context.Context) (decimal.Decimal, error)

	// Stats assembles the full admin snapshot.
	Stats(ctx context.Context) (*models.AdminStats, error)

	// RecentActivity merges the latest signups, applications, bookings
	// and payments into one feed.
	RecentActivity(ctx context.Context, limit int) ([]models.ActivityItem, error)

	Wallets(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error)
	PendingAstrologers(ctx context.Context, limit int) ([]models.Astrologer, error)
	ApproveAstrologer(ctx context.Context, id uint) error
}

type service struct {
	wallets     WalletAggregator
	users       UserDirectory
	astrologers AstrologerDirectory
	bookings    BookingDirectory
	cache       Cache
}

// NewService creates the admin aggregator. cache may be nil.
func NewService(wallets WalletAggregator, users UserDirectory, astrologers AstrologerDirectory, bookings BookingDirectory, cache Cache) Service {
	return &service{
		wallets:     wallets,
		users:       users,
		astrologers: astrologers,
		bookings:    bookings,
		cache:       cache,
	}
}

func (s *service) ComputeRevenue(ctx context.Context) (decimal.Decimal, error) {
	revenue, err := s.wallets.SumAmountByType(ctx, models.TransactionDebit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute revenue: %w", err)
	}
	return revenue, nil
}

func (s *service) Stats(ctx context.Context) (*models.AdminStats, error) {
	if s.cache != nil {
		var cached models.AdminStats
		if found, _ := s.cache.Get(ctx, statsCacheKey, &cached); found {
			return &cached, nil
		}
	}

	stats := &models.AdminStats{GeneratedAt: time.Now()}

	var err error
	if stats.TotalUsers, err = s.users.CountByRole(ctx, models.RoleUser); err != nil {
		return nil, err
	}
	if stats.TotalAstrologers, err = s.astrologers.CountApproved(ctx); err != nil {
		return nil, err
	}
	if stats.TotalBookings, err = s.bookings.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalRevenue, err = s.ComputeRevenue(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.users.CountActiveSince(ctx, time.Now().Add(-activeUserSpan)); err != nil {
		return nil, err
	}
	if stats.PendingApprovals, err = s.astrologers.CountPending(ctx); err != nil {
		return nil, err
	}
	if stats.PendingBookings, err = s.bookings.CountByStatus(ctx, models.BookingStatusPending); err != nil {
		return nil, err
	}
	if stats.CompletedSessions, err = s.bookings.CountByStatus(ctx, models.BookingStatusCompleted); err != nil {
		return nil, err
	}
	if stats.AverageRating, err = s.astrologers.AverageRating(ctx); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			logrus.WithError(err).Warn("failed to cache admin stats")
		}
	}
	return stats, nil
}

func (s *service) RecentActivity(ctx context.Context, limit int) ([]models.ActivityItem, error) {
	if limit <= 0 {
		limit = 10
	}

	var items []models.ActivityItem

	signups, err := s.users.RecentSignups(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, u := range signups {
		items = append(items, models.ActivityItem{
			ID:          "user:" + strconv.FormatUint(uint64(u.ID), 10),
			Type:        models.ActivityUserSignup,
			Title:       "New User Registration",
			Description: u.Name + " joined the platform",
			Timestamp:   u.CreatedAt,
		})
	}

	applications, err := s.astrologers.RecentApplications(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, a := range applications {
		items = append(items, models.ActivityItem{
			ID:          "astrologer:" + strconv.FormatUint(uint64(a.ID), 10),
			Type:        models.ActivityAstrologerApplication,
			Title:       "Astrologer Application",
			Description: a.DisplayName + " applied to become an astrologer",
			Timestamp:   a.CreatedAt,
		})
	}

	bookings, err := s.bookings.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		items = append(items, models.ActivityItem{
			ID:          "booking:" + strconv.FormatUint(uint64(b.ID), 10),
			Type:        models.ActivityBookingCreated,
			Title:       "New Booking",
			Description: "Session booked with " + b.Astrologer.DisplayName,
			Timestamp:   b.CreatedAt,
		})
	}

	payments, err := s.wallets.RecentByType(ctx, models.TransactionDebit, limit)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		items = append(items, models.ActivityItem{
			ID:          "payment:" + p.Reference,
			Type:        models.ActivityPaymentReceived,
			Title:       "Payment Received",
			Description: "₹" + p.Amount.StringFixed(2) + " payment for astrology session",
			Timestamp:   p.CreatedAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *service) Wallets(ctx context.Context, limit, offset int) ([]models.Wallet, int64, error) {
	return s.wallets.WalletsPaginated(ctx, limit, offset)
}

func (s *service) PendingAstrologers(ctx context.Context, limit int) ([]models.Astrologer, error) {
	return s.astrologers.ListPending(ctx, limit)
}

func (s *service) ApproveAstrologer(ctx context.Context, id uint) error {
	if err := s.astrologers.Approve(ctx, id); err != nil {
		if err == repositories.ErrAstrologerNotFound {
			return err
		}
		return fmt.Errorf("failed to approve astrologer: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
			logrus.WithError(err).Warn("failed to invalidate admin stats cache")
		}
	}
	return nil
}
