package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment channels an admin can publish for manual deposits.
const (
	ChannelUPI          = "upi"
	ChannelBankTransfer = "bank_transfer"
	ChannelPaymentLink  = "payment_link"
)

// AdminWalletConfig tells users where to send money for one currency.
type AdminWalletConfig struct {
	Currency      Currency        `gorm:"primaryKey;size:3" json:"currency"`
	IsActive      bool            `gorm:"not null;default:false" json:"is_active"`
	Channel       string          `gorm:"size:16;not null" json:"channel"`
	UPIID         string          `gorm:"size:100" json:"upi_id,omitempty"`
	PaymentLink   string          `gorm:"size:500" json:"payment_link,omitempty"`
	BankName      string          `gorm:"size:100" json:"bank_name,omitempty"`
	AccountName   string          `gorm:"size:100" json:"account_name,omitempty"`
	AccountNumber string          `gorm:"size:32" json:"account_number,omitempty"`
	IFSC          string          `gorm:"size:16" json:"ifsc,omitempty"`
	Instructions  string          `gorm:"size:1000" json:"instructions,omitempty"`
	MinDeposit    decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"min_deposit"`
	UpdatedBy     string          `gorm:"size:64" json:"updated_by,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
