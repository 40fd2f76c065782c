package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking statuses
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Booking links a user to an astrologer session. The amount is a copy of
// the astrologer's session price at booking time so later price changes
// never affect what an existing booking debits.
type Booking struct {
	gorm.Model
	UserID       uint            `gorm:"not null;index"`
	User         User            `gorm:"foreignKey:UserID"`
	AstrologerID uint            `gorm:"not null;index"`
	Astrologer   Astrologer      `gorm:"foreignKey:AstrologerID"`
	ServiceType  string          `gorm:"not null"` // e.g. "Vedic Astrology", "Tarot Reading"
	ScheduledAt  time.Time       `gorm:"not null"`
	Status       string          `gorm:"not null;default:'pending';index"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CompletedAt  *time.Time
}
