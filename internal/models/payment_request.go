package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReviewFlagExternalRefCollision marks a deposit whose proof reference was
// already used by another request.
const ReviewFlagExternalRefCollision = "external_ref_collision"

// PaymentRequest is a user-submitted deposit or withdrawal awaiting review.
type PaymentRequest struct {
	RequestID       string          `gorm:"primaryKey;size:36" json:"request_id"`
	Type            RequestType     `gorm:"size:16;not null;index" json:"type"`
	UserID          string          `gorm:"size:64;not null;index" json:"user_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency        Currency        `gorm:"size:3;not null" json:"currency"`
	ExternalRef     string          `gorm:"size:64;index" json:"external_ref,omitempty"`
	AttachmentRef   string          `gorm:"size:255" json:"attachment_ref,omitempty"`
	Payout          *Payout         `gorm:"type:jsonb;serializer:json" json:"payout,omitempty"`
	Status          Status          `gorm:"size:16;not null;index" json:"status"`
	VerifiedBy      *string         `gorm:"size:64" json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	RejectionReason string          `gorm:"size:500" json:"rejection_reason,omitempty"`
	UserDetails     UserDetails     `gorm:"type:jsonb;serializer:json" json:"user_details"`
	ReviewFlag      string          `gorm:"size:32;index" json:"review_flag,omitempty"`
	Version         int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// UserDetails is the submitter snapshot taken at intake. It is never updated.
type UserDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

const (
	PayoutMethodUPI  = "upi"
	PayoutMethodBank = "bank"
)

// Payout is where an approved withdrawal is paid.
type Payout struct {
	Method        string `json:"method" validate:"required,oneof=upi bank"`
	UPIID         string `json:"upi_id,omitempty" validate:"required_if=Method upi,omitempty,upi_id"`
	AccountName   string `json:"account_name,omitempty" validate:"required_if=Method bank,omitempty,max=100"`
	AccountNumber string `json:"account_number,omitempty" validate:"required_if=Method bank,omitempty,numeric,min=6,max=18"`
	BankName      string `json:"bank_name,omitempty" validate:"required_if=Method bank,omitempty,max=100"`
	IFSC          string `json:"ifsc,omitempty" validate:"omitempty,ifsc"`
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	UserID      string
	Status      Status
	Type        RequestType
	FlaggedOnly bool
	Limit       int
	Offset      int
}
