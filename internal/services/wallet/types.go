package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/currency"
)

// BalanceSnapshot is a read-only view of a wallet.
type BalanceSnapshot struct {
	UserID    string          `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  models.Currency `json:"currency"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func snapshotOf(w *models.Wallet) BalanceSnapshot {
	return BalanceSnapshot{
		UserID:    w.UserID,
		Balance:   w.Balance,
		Currency:  w.Currency,
		Version:   w.Version,
		UpdatedAt: w.UpdatedAt,
	}
}

// CurrencyChange describes a completed currency change. Conversion and Entry
// are nil when the balance was zero.
type CurrencyChange struct {
	Wallet     BalanceSnapshot      `json:"wallet"`
	Conversion *currency.Conversion `json:"conversion,omitempty"`
	Entry      *models.LedgerEntry  `json:"entry,omitempty"`
}

// WalletConfig holds configuration for wallet operations
type WalletConfig struct {
	DefaultCurrency models.Currency
}
