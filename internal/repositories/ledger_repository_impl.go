package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}

func (r *ledgerRepository) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	return r.getWallet(r.db.WithContext(ctx), userID)
}

func (r *ledgerRepository) GetWalletForUpdate(ctx context.Context, userID string) (*models.Wallet, error) {
	return r.getWallet(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *ledgerRepository) getWallet(db *gorm.DB, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *ledgerRepository) CreateWalletIfMissing(ctx context.Context, w *models.Wallet) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(w)
	if result.Error != nil {
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *ledgerRepository) UpdateWallet(ctx context.Context, w *models.Wallet) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND version = ?", w.UserID, w.Version).
		Updates(map[string]interface{}{
			"balance":    w.Balance,
			"currency":   w.Currency,
			"version":    w.Version + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	w.Version++
	w.UpdatedAt = now
	return nil
}

func (r *ledgerRepository) CreateRequest(ctx context.Context, req *models.PaymentRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create payment request: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetRequest(ctx context.Context, requestID string) (*models.PaymentRequest, error) {
	return r.getRequest(r.db.WithContext(ctx), requestID)
}

func (r *ledgerRepository) GetRequestForUpdate(ctx context.Context, requestID string) (*models.PaymentRequest, error) {
	return r.getRequest(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), requestID)
}

func (r *ledgerRepository) getRequest(db *gorm.DB, requestID string) (*models.PaymentRequest, error) {
	var req models.PaymentRequest
	if err := db.Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get payment request: %w", err)
	}
	return &req, nil
}

func (r *ledgerRepository) TransitionRequest(ctx context.Context, req *models.PaymentRequest, from models.Status) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.PaymentRequest{}).
		Where("request_id = ? AND status = ? AND version = ?", req.RequestID, from, req.Version).
		Updates(map[string]interface{}{
			"status":           req.Status,
			"verified_by":      req.VerifiedBy,
			"verified_at":      req.VerifiedAt,
			"rejection_reason": req.RejectionReason,
			"version":          req.Version + 1,
			"updated_at":       now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to transition payment request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	req.Version++
	req.UpdatedAt = now
	return nil
}

func (r *ledgerRepository) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.PaymentRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PaymentRequest{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.FlaggedOnly {
		q = q.Where("review_flag <> ''")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payment requests: %w", err)
	}

	var reqs []models.PaymentRequest
	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&reqs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payment requests: %w", err)
	}
	return reqs, total, nil
}

func (r *ledgerRepository) CountByExternalRef(ctx context.Context, externalRef string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentRequest{}).
		Where("external_ref = ?", externalRef).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count external refs: %w", err)
	}
	return n, nil
}

func (r *ledgerRepository) CreateEntry(ctx context.Context, e *models.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetEntryByRequestID(ctx context.Context, requestID string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).Where("linked_request_id = ?", requestID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

func (r *ledgerRepository) UpdateEntryStatus(ctx context.Context, requestID string, status models.Status, processed bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("linked_request_id = ?", requestID).
		Updates(map[string]interface{}{
			"status":     status,
			"processed":  processed,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update ledger entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *ledgerRepository) ListEntries(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	var entries []models.LedgerEntry
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, total, nil
}

func (r *ledgerRepository) ListDivergent(ctx context.Context, after *DivergenceCursor, limit int) ([]Divergence, error) {
	var reqs []models.PaymentRequest
	q := r.db.WithContext(ctx).
		Table("payment_requests AS pr").
		Select("pr.*").
		Joins("LEFT JOIN ledger_entries le ON le.linked_request_id = pr.request_id").
		Where("le.id IS NULL OR le.status <> pr.status OR le.processed <> (pr.status = ?)", models.StatusApproved)
	if after != nil {
		q = q.Where("(pr.created_at, pr.request_id) > (?, ?)", after.CreatedAt, after.RequestID)
	}
	err := q.Order("pr.created_at ASC, pr.request_id ASC").
		Limit(limit).
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan for divergent requests: %w", err)
	}
	if len(reqs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(reqs))
	for i := range reqs {
		ids[i] = reqs[i].RequestID
	}
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).Where("linked_request_id IN ?", ids).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}
	byRequest := make(map[string]*models.LedgerEntry, len(entries))
	for i := range entries {
		byRequest[*entries[i].LinkedRequestID] = &entries[i]
	}

	out := make([]Divergence, len(reqs))
	for i := range reqs {
		out[i] = Divergence{Request: reqs[i], Entry: byRequest[reqs[i].RequestID]}
	}
	return out, nil
}
