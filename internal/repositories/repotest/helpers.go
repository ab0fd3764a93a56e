package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
)

// Ledger returns the store as a LedgerRepository.
func (s *Store) Ledger() repositories.LedgerRepository { return s.view() }

// Configs returns the store as an AdminWalletConfigRepository.
func (s *Store) Configs() repositories.AdminWalletConfigRepository { return &configRepo{store: s} }

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = fn
}

// SeedWallet stores a wallet with the given balance, bypassing the ledger.
func (s *Store) SeedWallet(userID string, balance decimal.Decimal, cur models.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.data.wallets[userID] = models.Wallet{
		UserID: userID, Balance: balance, Currency: cur, CreatedAt: now, UpdatedAt: now,
	}
}

// Wallet returns a copy of the stored wallet.
func (s *Store) Wallet(userID string) (models.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.wallets[userID]
	return w, ok
}

// Request returns a copy of the stored request.
func (s *Store) Request(id string) (models.PaymentRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.requests[id]
	return r, ok
}

// PutRequest writes a request directly, bypassing intake.
func (s *Store) PutRequest(r models.PaymentRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.clock()
	}
	s.data.requests[r.RequestID] = r
}

// Entry returns a copy of the entry linked to requestID.
func (s *Store) Entry(requestID string) (models.LedgerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findEntry(s.data, requestID)
}

// PutEntry writes an entry directly.
func (s *Store) PutEntry(e models.LedgerEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.entries[e.ID] = e
}

// DeleteEntry removes the entry linked to requestID.
func (s *Store) DeleteEntry(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := findEntry(s.data, requestID); ok {
		delete(s.data.entries, e.ID)
	}
}

// Entries returns every entry for userID, oldest first.
func (s *Store) Entries(userID string) []models.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LedgerEntry
	for _, e := range s.data.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Counts reports how many requests and entries are stored.
func (s *Store) Counts() (requests, entries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.requests), len(s.data.entries)
}

type configRepo struct {
	store *Store
}

func (c *configRepo) List(context.Context) ([]models.AdminWalletConfig, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	out := make([]models.AdminWalletConfig, 0, len(c.store.data.configs))
	for _, cfg := range c.store.data.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (c *configRepo) Get(_ context.Context, cur models.Currency) (*models.AdminWalletConfig, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	cfg, ok := c.store.data.configs[cur]
	if !ok {
		return nil, repositories.ErrConfigNotFound
	}
	return &cfg, nil
}

func (c *configRepo) Upsert(_ context.Context, cfg *models.AdminWalletConfig) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	cfg.UpdatedAt = c.store.clock()
	c.store.data.configs[cfg.Currency] = *cfg
	return nil
}
