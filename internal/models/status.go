package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state shared by a PaymentRequest and its LedgerEntry.
// PENDING moves to exactly one of APPROVED or REJECTED and never leaves it.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus accepts only the three lifecycle values.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) String() string { return string(s) }

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Value implements the driver.Valuer interface
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("refusing to store status %q", string(s))
	}
	return string(s), nil
}

// Scan implements the sql.Scanner interface
func (s *Status) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", value)
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// RequestType distinguishes deposits from withdrawals.
type RequestType string

const (
	RequestTypeDeposit    RequestType = "deposit"
	RequestTypeWithdrawal RequestType = "withdrawal"
)

func (t RequestType) Valid() bool {
	return t == RequestTypeDeposit || t == RequestTypeWithdrawal
}

// EntryType is the kind of ledger entry. Currency conversions have no request.
type EntryType string

const (
	EntryTypeDeposit            EntryType = "deposit"
	EntryTypeWithdrawal         EntryType = "withdrawal"
	EntryTypeCurrencyConversion EntryType = "currency_conversion"
)
