package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminStats is the point-in-time platform snapshot shown on the admin
// dashboard. TotalRevenue is derived from the transaction logs (sum of all
// debits), never stored.
type AdminStats struct {
	TotalUsers        int64           `json:"total_users"`
	TotalAstrologers  int64           `json:"total_astrologers"`
	TotalBookings     int64           `json:"total_bookings"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	ActiveUsers       int64           `json:"active_users"`
	PendingApprovals  int64           `json:"pending_approvals"`
	PendingBookings   int64           `json:"pending_bookings"`
	CompletedSessions int64           `json:"completed_sessions"`
	AverageRating     float64         `json:"average_rating"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// Activity item types
const (
	ActivityUserSignup            = "user_signup"
	ActivityAstrologerApplication = "astrologer_application"
	ActivityBookingCreated        = "booking_created"
	ActivityPaymentReceived       = "payment_received"
)

// ActivityItem is one row of the admin recent-activity feed.
type ActivityItem struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
