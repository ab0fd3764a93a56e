package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories/repotest"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/currency"
)

func newTestService(t *testing.T) (Service, *repotest.Store, *repotest.Bus) {
	t.Helper()
	store := repotest.NewStore()
	bus := repotest.NewBus()
	svc := NewService(store.Ledger(), currency.MustNewConverter(), bus, WalletConfig{}, nil, nil)
	return svc, store, bus
}

func TestWalletService_GetBalanceProvisions(t *testing.T) {
	svc, store, _ := newTestService(t)

	snap, err := svc.GetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, snap.Balance.IsZero())
	assert.Equal(t, models.CurrencyINR, snap.Currency)

	_, ok := store.Wallet("u1")
	assert.True(t, ok)

	// Second call returns the same wallet
	again, err := svc.GetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, snap.Version, again.Version)
}

func TestWalletService_ChangeCurrency(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		from        models.Currency
		to          models.Currency
		wantBalance string
		wantEntry   bool
		wantErr     error
	}{
		{
			name:        "converts non-zero balance",
			balance:     "830",
			from:        models.CurrencyINR,
			to:          models.CurrencyUSD,
			wantBalance: "10.00",
			wantEntry:   true,
		},
		{
			name:        "zero balance only switches currency",
			balance:     "0",
			from:        models.CurrencyINR,
			to:          models.CurrencyNGN,
			wantBalance: "0",
		},
		{
			name:    "same currency",
			balance: "100",
			from:    models.CurrencyUSD,
			to:      models.CurrencyUSD,
			wantErr: domainerrors.ErrValidation,
		},
		{
			name:    "unsupported currency",
			balance: "100",
			from:    models.CurrencyUSD,
			to:      "JPY",
			wantErr: domainerrors.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, bus := newTestService(t)
			store.SeedWallet("u1", decimal.RequireFromString(tt.balance), tt.from)

			change, err := svc.ChangeCurrency(context.Background(), "u1", tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				w, _ := store.Wallet("u1")
				assert.Equal(t, tt.from, w.Currency)
				assert.Empty(t, store.Entries("u1"))
				return
			}
			require.NoError(t, err)

			w, _ := store.Wallet("u1")
			assert.Equal(t, tt.to, w.Currency)
			assert.True(t, w.Balance.Equal(decimal.RequireFromString(tt.wantBalance)), "got %s", w.Balance)
			assert.Equal(t, 1, bus.Count(BalanceChannel("u1")))

			entries := store.Entries("u1")
			if !tt.wantEntry {
				assert.Empty(t, entries)
				assert.Nil(t, change.Entry)
				return
			}
			require.Len(t, entries, 1)
			e := entries[0]
			assert.Equal(t, models.EntryTypeCurrencyConversion, e.Type)
			assert.True(t, e.Amount.IsZero())
			assert.Equal(t, models.StatusApproved, e.Status)
			assert.True(t, e.Processed)
			assert.Equal(t, "INR", e.Metadata.String(MetaOriginalCurrency))
			assert.Equal(t, "830.00", e.Metadata.String(MetaOriginalAmount))
			assert.Equal(t, "USD", e.Metadata.String(MetaNewCurrency))
			assert.Equal(t, "10.00", e.Metadata.String(MetaNewAmount))
			assert.Equal(t, "0.012048192771", e.Metadata.String(MetaRate))
		})
	}
}

func TestWalletService_ChangeCurrencyAbortsWhenAuditFails(t *testing.T) {
	svc, store, bus := newTestService(t)
	store.SeedWallet("u1", decimal.NewFromInt(830), models.CurrencyINR)
	store.Hooks.CreateEntry = func(*models.LedgerEntry) error { return errors.New("disk full") }

	_, err := svc.ChangeCurrency(context.Background(), "u1", models.CurrencyUSD)
	assert.Error(t, err)

	w, _ := store.Wallet("u1")
	assert.Equal(t, models.CurrencyINR, w.Currency)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(830)))
	assert.Equal(t, 0, bus.Count(BalanceChannel("u1")))
}

func TestWalletService_Subscribe(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SeedWallet("u1", decimal.NewFromInt(50), models.CurrencyUSD)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := svc.Subscribe(ctx, "u1")
	require.NoError(t, err)

	svc.PublishBalance(ctx, &models.Wallet{UserID: "u1", Balance: decimal.NewFromInt(75), Currency: models.CurrencyUSD, Version: 3})

	select {
	case snap := <-updates:
		assert.True(t, snap.Balance.Equal(decimal.NewFromInt(75)))
		assert.Equal(t, int64(3), snap.Version)
	case <-time.After(time.Second):
		t.Fatal("no balance update received")
	}

	cancel()
	for range updates {
	}
}

func TestWalletService_SubscribeWithoutBus(t *testing.T) {
	store := repotest.NewStore()
	svc := NewService(store.Ledger(), currency.MustNewConverter(), nil, WalletConfig{}, nil, nil)

	_, err := svc.Subscribe(context.Background(), "u1")
	assert.Error(t, err)
}

func TestNewService_PanicsWithoutRepo(t *testing.T) {
	assert.Panics(t, func() {
		NewService(nil, currency.MustNewConverter(), nil, WalletConfig{}, nil, nil)
	})
}
