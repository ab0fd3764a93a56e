// Package repotest provides an in-memory ledger store for tests.
//
// Store implements repositories.LedgerRepository and
// repositories.AdminWalletConfigRepository. A transaction holds the store
// mutex for its whole duration and works on a copy of the data that replaces
// the live data only when fn returns nil, so concurrent callers see the same
// serialization a row lock would give them.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
)

// Hooks inject failures. A non-nil return aborts the call with that error.
type Hooks struct {
	CreateEntry       func(e *models.LedgerEntry) error
	UpdateEntryStatus func(requestID string) error
	UpdateWallet      func(w *models.Wallet) error
	CreateRequest     func(r *models.PaymentRequest) error
}

type state struct {
	wallets  map[string]models.Wallet
	requests map[string]models.PaymentRequest
	entries  map[string]models.LedgerEntry
	configs  map[models.Currency]models.AdminWalletConfig
}

func (s *state) clone() *state {
	c := &state{
		wallets:  make(map[string]models.Wallet, len(s.wallets)),
		requests: make(map[string]models.PaymentRequest, len(s.requests)),
		entries:  make(map[string]models.LedgerEntry, len(s.entries)),
		configs:  make(map[models.Currency]models.AdminWalletConfig, len(s.configs)),
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.configs {
		c.configs[k] = v
	}
	return c
}

// Store is an in-memory transactional store.
type Store struct {
	mu    sync.Mutex
	data  *state
	Hooks Hooks
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		data: &state{
			wallets:  map[string]models.Wallet{},
			requests: map[string]models.PaymentRequest{},
			entries:  map[string]models.LedgerEntry{},
			configs:  map[models.Currency]models.AdminWalletConfig{},
		},
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// repo is the LedgerRepository view handed to callers. Outside a transaction
// it locks the store per call; inside one it works on the transaction copy.
type repo struct {
	store *Store
	tx    *state
}

func (s *Store) view() *repo { return &repo{store: s} }

func (r *repo) with(fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store.data)
}

func (r *repo) now() time.Time { return r.store.clock() }

func (r *repo) ExecuteInTransaction(ctx context.Context, fn func(repositories.LedgerRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.data.clone()
	if err := fn(&repo{store: r.store, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.data = work
	return nil
}

func (r *repo) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	var out *models.Wallet
	err := r.with(func(st *state) error {
		w, ok := st.wallets[userID]
		if !ok {
			return repositories.ErrWalletNotFound
		}
		out = &w
		return nil
	})
	return out, err
}

func (r *repo) GetWalletForUpdate(ctx context.Context, userID string) (*models.Wallet, error) {
	return r.GetWallet(ctx, userID)
}

func (r *repo) CreateWalletIfMissing(_ context.Context, w *models.Wallet) error {
	return r.with(func(st *state) error {
		if _, ok := st.wallets[w.UserID]; ok {
			return nil
		}
		now := r.now()
		w.Balance = decimal.Zero
		w.CreatedAt, w.UpdatedAt = now, now
		st.wallets[w.UserID] = *w
		return nil
	})
}

func (r *repo) UpdateWallet(_ context.Context, w *models.Wallet) error {
	if h := r.store.Hooks.UpdateWallet; h != nil {
		if err := h(w); err != nil {
			return err
		}
	}
	return r.with(func(st *state) error {
		cur, ok := st.wallets[w.UserID]
		if !ok || cur.Version != w.Version {
			return repositories.ErrVersionConflict
		}
		cur.Balance = w.Balance
		cur.Currency = w.Currency
		cur.Version++
		cur.UpdatedAt = r.now()
		st.wallets[w.UserID] = cur
		w.Version, w.UpdatedAt = cur.Version, cur.UpdatedAt
		return nil
	})
}

func (r *repo) CreateRequest(_ context.Context, req *models.PaymentRequest) error {
	if h := r.store.Hooks.CreateRequest; h != nil {
		if err := h(req); err != nil {
			return err
		}
	}
	return r.with(func(st *state) error {
		now := r.now()
		if req.CreatedAt.IsZero() {
			req.CreatedAt = now
		}
		req.UpdatedAt = now
		st.requests[req.RequestID] = *req
		return nil
	})
}

func (r *repo) GetRequest(_ context.Context, requestID string) (*models.PaymentRequest, error) {
	var out *models.PaymentRequest
	err := r.with(func(st *state) error {
		req, ok := st.requests[requestID]
		if !ok {
			return repositories.ErrRequestNotFound
		}
		out = &req
		return nil
	})
	return out, err
}

func (r *repo) GetRequestForUpdate(ctx context.Context, requestID string) (*models.PaymentRequest, error) {
	return r.GetRequest(ctx, requestID)
}

func (r *repo) TransitionRequest(_ context.Context, req *models.PaymentRequest, from models.Status) error {
	return r.with(func(st *state) error {
		cur, ok := st.requests[req.RequestID]
		if !ok || cur.Status != from || cur.Version != req.Version {
			return repositories.ErrVersionConflict
		}
		cur.Status = req.Status
		cur.VerifiedBy = req.VerifiedBy
		cur.VerifiedAt = req.VerifiedAt
		cur.RejectionReason = req.RejectionReason
		cur.Version++
		cur.UpdatedAt = r.now()
		st.requests[req.RequestID] = cur
		req.Version, req.UpdatedAt = cur.Version, cur.UpdatedAt
		return nil
	})
}

func (r *repo) ListRequests(_ context.Context, f models.RequestFilter) ([]models.PaymentRequest, int64, error) {
	var out []models.PaymentRequest
	err := r.with(func(st *state) error {
		for _, req := range st.requests {
			if f.UserID != "" && req.UserID != f.UserID {
				continue
			}
			if f.Status != "" && req.Status != f.Status {
				continue
			}
			if f.Type != "" && req.Type != f.Type {
				continue
			}
			if f.FlaggedOnly && req.ReviewFlag == "" {
				continue
			}
			out = append(out, req)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return page(out, f.Limit, f.Offset), total, nil
}

func (r *repo) CountByExternalRef(_ context.Context, externalRef string) (int64, error) {
	var n int64
	err := r.with(func(st *state) error {
		for _, req := range st.requests {
			if req.ExternalRef == externalRef {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *repo) CreateEntry(_ context.Context, e *models.LedgerEntry) error {
	if h := r.store.Hooks.CreateEntry; h != nil {
		if err := h(e); err != nil {
			return err
		}
	}
	return r.with(func(st *state) error {
		if e.LinkedRequestID != nil {
			for _, existing := range st.entries {
				if existing.LinkedRequestID != nil && *existing.LinkedRequestID == *e.LinkedRequestID {
					return repositories.ErrDuplicateEntry
				}
			}
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		now := r.now()
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		e.UpdatedAt = now
		st.entries[e.ID] = *e
		return nil
	})
}

func (r *repo) GetEntryByRequestID(_ context.Context, requestID string) (*models.LedgerEntry, error) {
	var out *models.LedgerEntry
	err := r.with(func(st *state) error {
		e, ok := findEntry(st, requestID)
		if !ok {
			return repositories.ErrEntryNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r *repo) UpdateEntryStatus(_ context.Context, requestID string, status models.Status, processed bool) error {
	if h := r.store.Hooks.UpdateEntryStatus; h != nil {
		if err := h(requestID); err != nil {
			return err
		}
	}
	return r.with(func(st *state) error {
		e, ok := findEntry(st, requestID)
		if !ok {
			return repositories.ErrEntryNotFound
		}
		e.Status = status
		e.Processed = processed
		e.UpdatedAt = r.now()
		st.entries[e.ID] = e
		return nil
	})
}

func (r *repo) ListEntries(_ context.Context, userID string, limit, offset int) ([]models.LedgerEntry, int64, error) {
	var out []models.LedgerEntry
	err := r.with(func(st *state) error {
		for _, e := range st.entries {
			if e.UserID == userID {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return page(out, limit, offset), total, nil
}

func (r *repo) ListDivergent(_ context.Context, after *repositories.DivergenceCursor, limit int) ([]repositories.Divergence, error) {
	var out []repositories.Divergence
	err := r.with(func(st *state) error {
		for _, req := range st.requests {
			req := req
			var entry *models.LedgerEntry
			if e, ok := findEntry(st, req.RequestID); ok {
				entry = &e
			}
			if !repositories.EntryInSync(&req, entry) {
				out = append(out, repositories.Divergence{Request: req, Entry: entry})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return divergenceLess(out[i].Request, out[j].Request) })
	if after != nil {
		i := sort.Search(len(out), func(i int) bool {
			r := out[i].Request
			return r.CreatedAt.After(after.CreatedAt) ||
				(r.CreatedAt.Equal(after.CreatedAt) && r.RequestID > after.RequestID)
		})
		out = out[i:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func divergenceLess(a, b models.PaymentRequest) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.RequestID < b.RequestID
}

func findEntry(st *state, requestID string) (models.LedgerEntry, bool) {
	for _, e := range st.entries {
		if e.LinkedRequestID != nil && *e.LinkedRequestID == requestID {
			return e, true
		}
	}
	return models.LedgerEntry{}, false
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
