package wallet

import (
	"context"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

// Service defines the wallet balance accessor. Balances move only through
// approvals and currency changes, never through this interface.
type Service interface {
	// EnsureWallet returns the user's wallet, creating an empty one in the
	// default currency on first access.
	EnsureWallet(ctx context.Context, userID string) (*models.Wallet, error)
	GetBalance(ctx context.Context, userID string) (*BalanceSnapshot, error)
	Subscribe(ctx context.Context, userID string) (<-chan BalanceSnapshot, error)
	PublishBalance(ctx context.Context, w *models.Wallet)

	ChangeCurrency(ctx context.Context, userID string, to models.Currency) (*CurrencyChange, error)
	History(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, int64, error)
}

// Broadcaster carries balance updates between processes.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
