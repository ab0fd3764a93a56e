package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry mirrors a PaymentRequest in the user's transaction history, or
// records a currency conversion. Its status moves in lockstep with the linked
// request.
type LedgerEntry struct {
	ID              string          `gorm:"primaryKey;size:36" json:"id"`
	Type            EntryType       `gorm:"size:32;not null" json:"type"`
	UserID          string          `gorm:"size:64;not null;index" json:"user_id"`
	Status          Status          `gorm:"size:16;not null" json:"status"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency        Currency        `gorm:"size:3;not null" json:"currency"`
	LinkedRequestID *string         `gorm:"size:36;uniqueIndex" json:"linked_request_id,omitempty"`
	Processed       bool            `gorm:"not null;default:false" json:"processed"`
	Metadata        JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EntryTypeFor maps a request type to its ledger entry type.
func EntryTypeFor(t RequestType) EntryType {
	if t == RequestTypeWithdrawal {
		return EntryTypeWithdrawal
	}
	return EntryTypeDeposit
}
