package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/currency"
)

type service struct {
	repo      repositories.LedgerRepository
	converter *currency.Converter
	bus       Broadcaster
	config    WalletConfig
	log       logrus.FieldLogger
	metrics   metrics.Collector
}

// NewService creates a new wallet service. bus may be nil, in which case
// balance updates are not broadcast and Subscribe fails.
func NewService(
	repo repositories.LedgerRepository,
	converter *currency.Converter,
	bus Broadcaster,
	config WalletConfig,
	log logrus.FieldLogger,
	m metrics.Collector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if converter == nil {
		panic("converter is required")
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = DefaultCurrency
	}
	if log == nil {
		log = logger.Discard()
	}

	return &service{
		repo:      repo,
		converter: converter,
		bus:       bus,
		config:    config,
		log:       logger.For(log, "wallet"),
		metrics:   metrics.OrNoop(m),
	}
}

func (s *service) EnsureWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	w, err := s.repo.GetWallet(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	fresh := &models.Wallet{
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: s.config.DefaultCurrency,
	}
	if err := s.repo.CreateWalletIfMissing(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	// Another request may have created it first; read back what won.
	w, err = s.repo.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "currency": w.Currency}).Info("wallet provisioned")
	return w, nil
}

func (s *service) GetBalance(ctx context.Context, userID string) (*BalanceSnapshot, error) {
	w, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	snap := snapshotOf(w)
	return &snap, nil
}

func (s *service) Subscribe(ctx context.Context, userID string) (<-chan BalanceSnapshot, error) {
	if s.bus == nil {
		return nil, errors.New("balance updates are not available")
	}
	raw, err := s.bus.Subscribe(ctx, BalanceChannel(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to balance updates: %w", err)
	}

	out := make(chan BalanceSnapshot, 1)
	go func() {
		defer close(out)
		for payload := range raw {
			var snap BalanceSnapshot
			if err := json.Unmarshal(payload, &snap); err != nil {
				s.log.WithError(err).WithField("user_id", userID).Warn("dropping malformed balance update")
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// PublishBalance broadcasts the wallet state. Failures are logged only.
func (s *service) PublishBalance(ctx context.Context, w *models.Wallet) {
	if s.bus == nil || w == nil {
		return
	}
	payload, err := json.Marshal(snapshotOf(w))
	if err != nil {
		s.log.WithError(err).Error("failed to encode balance update")
		return
	}
	if err := s.bus.Publish(ctx, BalanceChannel(w.UserID), payload); err != nil {
		s.log.WithError(err).WithField("user_id", w.UserID).Warn("failed to publish balance update")
	}
}

func (s *service) ChangeCurrency(ctx context.Context, userID string, to models.Currency) (*CurrencyChange, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("change_currency", time.Since(start)) }()

	if !to.Supported() {
		return nil, domainerrors.Invalid("currency", "unsupported currency %q", string(to))
	}
	if _, err := s.EnsureWallet(ctx, userID); err != nil {
		return nil, err
	}

	var result CurrencyChange
	var updated *models.Wallet
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		w, err := tx.GetWalletForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if w.Currency == to {
			return ErrSameCurrency
		}

		if !w.Balance.IsZero() {
			conv, err := s.converter.Convert(w.Balance, w.Currency, to)
			if err != nil {
				return err
			}
			entry := &models.LedgerEntry{
				ID:        uuid.NewString(),
				Type:      models.EntryTypeCurrencyConversion,
				UserID:    userID,
				Status:    models.StatusApproved,
				Amount:    decimal.Zero,
				Currency:  to,
				Processed: true,
				Metadata: models.JSON{
					MetaOriginalCurrency: string(w.Currency),
					MetaOriginalAmount:   w.Balance.StringFixed(2),
					MetaNewCurrency:      string(to),
					MetaNewAmount:        conv.Amount.StringFixed(2),
					MetaRate:             conv.Rate.String(),
				},
			}
			// The audit entry goes first; if it fails the balance is untouched.
			if err := tx.CreateEntry(ctx, entry); err != nil {
				return fmt.Errorf("failed to record currency conversion: %w", err)
			}
			w.Balance = conv.Amount
			result.Conversion = &conv
			result.Entry = entry
		}

		w.Currency = to
		if err := tx.UpdateWallet(ctx, w); err != nil {
			return err
		}
		updated = w
		return nil
	})
	if err != nil {
		s.metrics.RecordOperationResult("change_currency", "error")
		if errors.Is(err, repositories.ErrVersionConflict) {
			return nil, domainerrors.ErrConcurrentUpdate
		}
		return nil, err
	}

	s.metrics.RecordOperationResult("change_currency", "ok")
	s.PublishBalance(ctx, updated)

	fields := logrus.Fields{"user_id": userID, "currency": to}
	if result.Conversion != nil {
		fields["from"] = result.Conversion.From
		fields["rate"] = result.Conversion.Rate.String()
		fields["new_balance"] = result.Conversion.Amount.StringFixed(2)
	}
	s.log.WithFields(fields).Info("wallet currency changed")

	result.Wallet = snapshotOf(updated)
	return &result, nil
}

func (s *service) History(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, int64, error) {
	entries, total, err := s.repo.ListEntries(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get ledger history: %w", err)
	}
	return entries, total, nil
}
