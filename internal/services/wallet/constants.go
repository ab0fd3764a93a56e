package wallet

import "fmt"

// Default configuration values
const (
	DefaultCurrency = "INR"
)

// Balance channel prefix
const (
	BalanceChannelPrefix = "wallet:balance:"
)

// BalanceChannel is the pub/sub channel carrying a user's balance updates.
func BalanceChannel(userID string) string {
	return fmt.Sprintf("%s%s", BalanceChannelPrefix, userID)
}

// Ledger metadata keys for currency conversions
const (
	MetaOriginalCurrency = "originalCurrency"
	MetaOriginalAmount   = "originalAmount"
	MetaNewCurrency      = "newCurrency"
	MetaNewAmount        = "newAmount"
	MetaRate             = "rate"
)
