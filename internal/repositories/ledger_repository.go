package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrRequestNotFound = errors.New("payment request not found")
	ErrEntryNotFound   = errors.New("ledger entry not found")
	ErrConfigNotFound  = errors.New("wallet config not found")
	// ErrVersionConflict is returned when a conditional write matched no row.
	ErrVersionConflict = errors.New("version conflict")
	ErrDuplicateEntry  = errors.New("ledger entry already exists for request")
)

// LedgerRepository stores wallets, payment requests and ledger entries. Every
// method may be called inside ExecuteInTransaction, in which case all writes
// commit or roll back together.
type LedgerRepository interface {
	ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error

	// Wallets
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	// GetWalletForUpdate locks the wallet row until the transaction ends.
	GetWalletForUpdate(ctx context.Context, userID string) (*models.Wallet, error)
	// CreateWalletIfMissing inserts w unless the user already has a wallet.
	CreateWalletIfMissing(ctx context.Context, w *models.Wallet) error
	// UpdateWallet writes balance and currency if the stored version still
	// equals w.Version, then bumps w.Version.
	UpdateWallet(ctx context.Context, w *models.Wallet) error

	// Payment requests
	CreateRequest(ctx context.Context, r *models.PaymentRequest) error
	GetRequest(ctx context.Context, requestID string) (*models.PaymentRequest, error)
	GetRequestForUpdate(ctx context.Context, requestID string) (*models.PaymentRequest, error)
	// TransitionRequest stores the terminal fields of r if the stored row is
	// still in status from at version r.Version, then bumps r.Version.
	TransitionRequest(ctx context.Context, r *models.PaymentRequest, from models.Status) error
	ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.PaymentRequest, int64, error)
	CountByExternalRef(ctx context.Context, externalRef string) (int64, error)

	// Ledger entries
	CreateEntry(ctx context.Context, e *models.LedgerEntry) error
	GetEntryByRequestID(ctx context.Context, requestID string) (*models.LedgerEntry, error)
	UpdateEntryStatus(ctx context.Context, requestID string, status models.Status, processed bool) error
	ListEntries(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, int64, error)

	// ListDivergent returns requests whose ledger entry is missing or out of
	// step, ordered by (created_at, request_id) and starting strictly after
	// the cursor when one is given.
	ListDivergent(ctx context.Context, after *DivergenceCursor, limit int) ([]Divergence, error)
}

// DivergenceCursor is a keyset position in the divergence scan.
type DivergenceCursor struct {
	CreatedAt time.Time
	RequestID string
}

// CursorOf returns the position just past d.
func CursorOf(d Divergence) *DivergenceCursor {
	return &DivergenceCursor{CreatedAt: d.Request.CreatedAt, RequestID: d.Request.RequestID}
}

// Divergence pairs a request with its ledger entry. Entry is nil when missing.
type Divergence struct {
	Request models.PaymentRequest
	Entry   *models.LedgerEntry
}

// AdminWalletConfigRepository stores per-currency payment instructions.
type AdminWalletConfigRepository interface {
	List(ctx context.Context) ([]models.AdminWalletConfig, error)
	Get(ctx context.Context, currency models.Currency) (*models.AdminWalletConfig, error)
	Upsert(ctx context.Context, cfg *models.AdminWalletConfig) error
}

// EntryInSync reports whether e matches the status of its request.
func EntryInSync(r *models.PaymentRequest, e *models.LedgerEntry) bool {
	return e != nil && e.Status == r.Status && e.Processed == (r.Status == models.StatusApproved)
}
