package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Astrologer is the consultation profile attached to a user with the
// astrologer role. Profiles start unapproved and only show up in the
// public directory once an admin approves them.
type Astrologer struct {
	gorm.Model
	UserID       uint   `gorm:"uniqueIndex;not null"`
	User         User   `gorm:"foreignKey:UserID"`
	DisplayName  string `gorm:"not null"`
	Bio          string
	Specialties  string          `gorm:"not null"` // comma separated, e.g. "vedic,tarot"
	Languages    string          `gorm:"not null"`
	Experience   int             `gorm:"default:0"` // years
	SessionPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Rating       float64         `gorm:"default:0"`
	RatingCount  int             `gorm:"default:0"`
	Approved     bool            `gorm:"default:false;index"`
}
