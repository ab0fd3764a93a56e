package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a user's spendable balance. Only the approval engine and the
// currency change path write to it.
type Wallet struct {
	ID        uint            `gorm:"primarykey" json:"-"`
	UserID    string          `gorm:"size:64;uniqueIndex;not null" json:"user_id"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	Currency  Currency        `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Version   int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Wallets always open empty
	w.Balance = decimal.Zero
	return nil
}
