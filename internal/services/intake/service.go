// Package intake accepts user deposit and withdrawal requests and records
// them as pending. It never touches balances.
package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-user-sub001/internal/validation"
)

// DepositInput is a user's claim to have paid money in out of band.
type DepositInput struct {
	UserID        string
	Amount        decimal.Decimal
	Currency      models.Currency
	ExternalRef   string
	AttachmentRef string
	User          models.UserDetails
}

// WithdrawalInput asks for money to be paid out to Payout.
type WithdrawalInput struct {
	UserID   string
	Amount   decimal.Decimal
	Currency models.Currency
	Payout   models.Payout
	User     models.UserDetails
}

type Service interface {
	SubmitDeposit(ctx context.Context, in DepositInput) (*models.PaymentRequest, error)
	SubmitWithdrawal(ctx context.Context, in WithdrawalInput) (*models.PaymentRequest, error)
	ListUserRequests(ctx context.Context, userID string, limit, offset int) ([]models.PaymentRequest, int64, error)
}

// WalletProvider returns the user's wallet, creating it if needed.
type WalletProvider interface {
	EnsureWallet(ctx context.Context, userID string) (*models.Wallet, error)
}

// ConfigLookup returns the admin payment instructions for a currency.
type ConfigLookup interface {
	GetForCurrency(ctx context.Context, currency models.Currency) (*models.AdminWalletConfig, error)
}

type service struct {
	repo     repositories.LedgerRepository
	wallets  WalletProvider
	configs  ConfigLookup
	validate *validator.Validate
	log      logrus.FieldLogger
	metrics  metrics.Collector
}

func NewService(
	repo repositories.LedgerRepository,
	wallets WalletProvider,
	configs ConfigLookup,
	validate *validator.Validate,
	log logrus.FieldLogger,
	m metrics.Collector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if wallets == nil {
		panic("wallet provider is required")
	}
	if configs == nil {
		panic("config lookup is required")
	}
	if validate == nil {
		validate = validation.NewValidate()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &service{
		repo:     repo,
		wallets:  wallets,
		configs:  configs,
		validate: validate,
		log:      logger.For(log, "intake"),
		metrics:  metrics.OrNoop(m),
	}
}

func (s *service) SubmitDeposit(ctx context.Context, in DepositInput) (*models.PaymentRequest, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("submit_deposit", time.Since(start)) }()

	in.Currency = models.NormalizeCurrency(string(in.Currency))
	in.ExternalRef = strings.TrimSpace(in.ExternalRef)

	if err := s.checkCommon(ctx, in.UserID, in.Amount, in.Currency); err != nil {
		return nil, err
	}

	cfg, err := s.configs.GetForCurrency(ctx, in.Currency)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrConfigNotFound) {
			return nil, domainerrors.Invalid("currency", "deposits in %s are not accepted", in.Currency)
		}
		return nil, fmt.Errorf("failed to load wallet config: %w", err)
	}
	if !cfg.IsActive {
		return nil, domainerrors.Invalid("currency", "deposits in %s are currently disabled", in.Currency)
	}
	if cfg.MinDeposit.IsPositive() && in.Amount.LessThan(cfg.MinDeposit) {
		return nil, domainerrors.Invalid("amount", "minimum deposit is %s %s", cfg.MinDeposit.StringFixed(2), in.Currency)
	}
	if err := validation.ValidateExternalRef(cfg.Channel, in.ExternalRef); err != nil {
		return nil, err
	}
	if len(in.AttachmentRef) > validation.MaxAttachmentRef {
		return nil, domainerrors.Invalid("attachment_ref", "must not be more than %d characters long", validation.MaxAttachmentRef)
	}

	req := &models.PaymentRequest{
		RequestID:     uuid.NewString(),
		Type:          models.RequestTypeDeposit,
		UserID:        in.UserID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		ExternalRef:   in.ExternalRef,
		AttachmentRef: in.AttachmentRef,
		Status:        models.StatusPending,
		UserDetails:   in.User,
	}

	n, err := s.repo.CountByExternalRef(ctx, in.ExternalRef)
	if err != nil {
		return nil, fmt.Errorf("failed to check external reference: %w", err)
	}
	if n > 0 {
		req.ReviewFlag = models.ReviewFlagExternalRefCollision
		s.metrics.RecordExternalRefCollision()
		s.log.WithFields(logrus.Fields{
			"user_id":      in.UserID,
			"external_ref": in.ExternalRef,
			"prior_uses":   n,
			"code":         domainerrors.ErrExternalRefCollision.Code,
		}).Warn("deposit reuses an external reference; flagged for review")
	}

	if err := s.persist(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) SubmitWithdrawal(ctx context.Context, in WithdrawalInput) (*models.PaymentRequest, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("submit_withdrawal", time.Since(start)) }()

	in.Currency = models.NormalizeCurrency(string(in.Currency))
	in.Payout.Method = strings.ToLower(strings.TrimSpace(in.Payout.Method))
	in.Payout.IFSC = strings.ToUpper(strings.TrimSpace(in.Payout.IFSC))

	if err := s.checkCommon(ctx, in.UserID, in.Amount, in.Currency); err != nil {
		return nil, err
	}
	if err := validation.Struct(s.validate, &in.Payout); err != nil {
		return nil, err
	}

	payout := in.Payout
	req := &models.PaymentRequest{
		RequestID:   uuid.NewString(),
		Type:        models.RequestTypeWithdrawal,
		UserID:      in.UserID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Payout:      &payout,
		Status:      models.StatusPending,
		UserDetails: in.User,
	}
	if err := s.persist(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) ListUserRequests(ctx context.Context, userID string, limit, offset int) ([]models.PaymentRequest, int64, error) {
	reqs, total, err := s.repo.ListRequests(ctx, models.RequestFilter{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, total, nil
}

// checkCommon validates what deposits and withdrawals share. The wallet
// currency is read, not locked; a later currency change is handled at
// approval time.
func (s *service) checkCommon(ctx context.Context, userID string, amount decimal.Decimal, cur models.Currency) error {
	if strings.TrimSpace(userID) == "" {
		return domainerrors.Invalid("user_id", "must not be empty")
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return err
	}
	if err := validation.ValidateCurrency(cur); err != nil {
		return err
	}
	w, err := s.wallets.EnsureWallet(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}
	if w.Currency != cur {
		return domainerrors.Invalid("currency", "wallet currency is %s", w.Currency)
	}
	return nil
}

// persist writes the request and its mirrored ledger entry atomically.
func (s *service) persist(ctx context.Context, req *models.PaymentRequest) error {
	reqID := req.RequestID
	entry := &models.LedgerEntry{
		ID:              uuid.NewString(),
		Type:            models.EntryTypeFor(req.Type),
		UserID:          req.UserID,
		Status:          models.StatusPending,
		Amount:          req.Amount,
		Currency:        req.Currency,
		LinkedRequestID: &reqID,
		Processed:       false,
	}
	if req.ExternalRef != "" {
		entry.Metadata = models.JSON{"external_ref": req.ExternalRef}
	}

	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		if err := tx.CreateRequest(ctx, req); err != nil {
			return err
		}
		return tx.CreateEntry(ctx, entry)
	})
	if err != nil {
		s.metrics.RecordOperationResult("submit_"+string(req.Type), "error")
		return fmt.Errorf("failed to record %s request: %w", req.Type, err)
	}

	s.metrics.RecordSubmission(string(req.Type))
	s.metrics.RecordOperationResult("submit_"+string(req.Type), "ok")
	s.log.WithFields(logrus.Fields{
		"request_id":  req.RequestID,
		"user_id":     req.UserID,
		"type":        req.Type,
		"amount":      req.Amount.StringFixed(2),
		"currency":    req.Currency,
		"review_flag": req.ReviewFlag,
	}).Info("payment request submitted")
	return nil
}
