// Package approval drives payment requests from PENDING to a terminal state
// and moves wallet balances exactly once per approval.
package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/currency"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/notification"
	"github.com/Aaditya88888/netwin-user-sub001/internal/validation"
)

// Outcome is the result of a successful transition.
type Outcome struct {
	Request *models.PaymentRequest `json:"request"`
	// Wallet is the wallet after an approval; nil after a rejection.
	Wallet *models.Wallet `json:"wallet,omitempty"`
	// Applied is the amount credited or debited, in the wallet's currency.
	Applied    decimal.Decimal      `json:"applied"`
	Conversion *currency.Conversion `json:"conversion,omitempty"`
}

type Service interface {
	Approve(ctx context.Context, requestID, adminID string) (*Outcome, error)
	Reject(ctx context.Context, requestID, adminID, reason string) (*Outcome, error)
	GetRequest(ctx context.Context, requestID string) (*models.PaymentRequest, error)
	ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.PaymentRequest, int64, error)
}

// BalancePublisher pushes committed wallet state to subscribers.
type BalancePublisher interface {
	PublishBalance(ctx context.Context, w *models.Wallet)
}

// EventDispatcher hands terminal events to the notification service.
type EventDispatcher interface {
	Dispatch(evt notification.TerminalEvent)
}

type service struct {
	repo       repositories.LedgerRepository
	converter  *currency.Converter
	publisher  BalancePublisher
	dispatcher EventDispatcher
	log        logrus.FieldLogger
	metrics    metrics.Collector
	now        func() time.Time
}

// NewService returns the approval engine. publisher and dispatcher may be nil.
func NewService(
	repo repositories.LedgerRepository,
	converter *currency.Converter,
	publisher BalancePublisher,
	dispatcher EventDispatcher,
	log logrus.FieldLogger,
	m metrics.Collector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if converter == nil {
		panic("converter is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &service{
		repo:       repo,
		converter:  converter,
		publisher:  publisher,
		dispatcher: dispatcher,
		log:        logger.For(log, "approval"),
		metrics:    metrics.OrNoop(m),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) GetRequest(ctx context.Context, requestID string) (*models.PaymentRequest, error) {
	r, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, domainerrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

func (s *service) ListRequests(ctx context.Context, filter models.RequestFilter) ([]models.PaymentRequest, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domainerrors.Invalid("status", "unknown status %q", string(filter.Status))
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, domainerrors.Invalid("type", "unknown request type %q", string(filter.Type))
	}
	reqs, total, err := s.repo.ListRequests(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, total, nil
}

func (s *service) Approve(ctx context.Context, requestID, adminID string) (*Outcome, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("approve", time.Since(start)) }()

	if strings.TrimSpace(adminID) == "" {
		return nil, domainerrors.Invalid("admin_id", "must not be empty")
	}

	// Cheap pre-check outside the transaction; repeated for real under lock.
	pre, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pre.Status.Terminal() {
		s.metrics.RecordOperationResult("approve", "already_processed")
		return nil, domainerrors.ErrAlreadyProcessed
	}

	var out Outcome
	var entryMissing bool
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		// Wallet first, then request. Every writer uses this order.
		w, err := tx.GetWalletForUpdate(ctx, pre.UserID)
		if err != nil {
			return err
		}
		r, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.Status != models.StatusPending {
			return domainerrors.ErrAlreadyProcessed
		}

		applied := r.Amount
		if r.Currency != w.Currency {
			conv, err := s.converter.Convert(r.Amount, r.Currency, w.Currency)
			if err != nil {
				return err
			}
			applied = conv.Amount
			out.Conversion = &conv
		}

		switch r.Type {
		case models.RequestTypeDeposit:
			w.Balance = w.Balance.Add(applied)
		case models.RequestTypeWithdrawal:
			if w.Balance.LessThan(applied) {
				return domainerrors.ErrInsufficientFunds.WithMessage(
					"balance %s %s is below %s", w.Balance.StringFixed(2), w.Currency, applied.StringFixed(2))
			}
			w.Balance = w.Balance.Sub(applied)
		default:
			return fmt.Errorf("unknown request type %q", r.Type)
		}
		if err := tx.UpdateWallet(ctx, w); err != nil {
			return err
		}

		now := s.now()
		admin := adminID
		r.Status = models.StatusApproved
		r.VerifiedBy = &admin
		r.VerifiedAt = &now
		if err := tx.TransitionRequest(ctx, r, models.StatusPending); err != nil {
			return err
		}

		if err := tx.UpdateEntryStatus(ctx, r.RequestID, models.StatusApproved, true); err != nil {
			if !errors.Is(err, repositories.ErrEntryNotFound) {
				return err
			}
			entryMissing = true
		}

		out.Request = r
		out.Wallet = w
		out.Applied = applied
		return nil
	})
	if err != nil {
		return nil, s.fail("approve", requestID, err)
	}

	if entryMissing {
		s.reportPartialWrite("approve", out.Request)
	}

	s.metrics.RecordOperationResult("approve", "ok")
	delta, _ := out.Applied.Float64()
	if out.Request.Type == models.RequestTypeWithdrawal {
		delta = -delta
	}
	s.metrics.RecordBalanceChange(string(out.Wallet.Currency), delta)

	fields := logrus.Fields{
		"request_id":  requestID,
		"user_id":     out.Request.UserID,
		"admin_id":    adminID,
		"type":        out.Request.Type,
		"applied":     out.Applied.StringFixed(2),
		"currency":    out.Wallet.Currency,
		"new_balance": out.Wallet.Balance.StringFixed(2),
	}
	if out.Conversion != nil {
		fields["request_currency"] = out.Request.Currency
		fields["rate"] = out.Conversion.Rate.String()
	}
	s.log.WithFields(fields).Info("payment request approved")

	s.afterCommit(ctx, out.Request, out.Wallet)
	return &out, nil
}

func (s *service) Reject(ctx context.Context, requestID, adminID, reason string) (*Outcome, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("reject", time.Since(start)) }()

	reason = strings.TrimSpace(reason)
	if strings.TrimSpace(adminID) == "" {
		return nil, domainerrors.Invalid("admin_id", "must not be empty")
	}
	if err := validation.ValidateRejectionReason(reason); err != nil {
		return nil, err
	}

	pre, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if pre.Status.Terminal() {
		s.metrics.RecordOperationResult("reject", "already_processed")
		return nil, domainerrors.ErrAlreadyProcessed
	}

	var out Outcome
	var entryMissing bool
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		r, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if r.Status != models.StatusPending {
			return domainerrors.ErrAlreadyProcessed
		}

		now := s.now()
		admin := adminID
		r.Status = models.StatusRejected
		r.RejectionReason = reason
		r.VerifiedBy = &admin
		r.VerifiedAt = &now
		if err := tx.TransitionRequest(ctx, r, models.StatusPending); err != nil {
			return err
		}

		if err := tx.UpdateEntryStatus(ctx, r.RequestID, models.StatusRejected, false); err != nil {
			if !errors.Is(err, repositories.ErrEntryNotFound) {
				return err
			}
			entryMissing = true
		}
		out.Request = r
		out.Applied = decimal.Zero
		return nil
	})
	if err != nil {
		return nil, s.fail("reject", requestID, err)
	}

	if entryMissing {
		s.reportPartialWrite("reject", out.Request)
	}

	s.metrics.RecordOperationResult("reject", "ok")
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    out.Request.UserID,
		"admin_id":   adminID,
		"type":       out.Request.Type,
		"reason":     reason,
	}).Info("payment request rejected")

	s.afterCommit(ctx, out.Request, nil)
	return &out, nil
}

// fail maps storage errors to domain errors and records the outcome.
func (s *service) fail(op, requestID string, err error) error {
	switch {
	case errors.Is(err, domainerrors.ErrAlreadyProcessed):
		s.metrics.RecordOperationResult(op, "already_processed")
		return err
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		s.metrics.RecordOperationResult(op, "insufficient_funds")
		return err
	case errors.Is(err, repositories.ErrVersionConflict):
		// Another writer won the compare-and-swap.
		s.metrics.RecordOperationResult(op, "already_processed")
		return domainerrors.ErrAlreadyProcessed
	case errors.Is(err, repositories.ErrRequestNotFound):
		s.metrics.RecordOperationResult(op, "not_found")
		return domainerrors.ErrRequestNotFound
	case errors.Is(err, repositories.ErrWalletNotFound):
		s.metrics.RecordOperationResult(op, "not_found")
		return domainerrors.ErrWalletNotFound
	}
	s.metrics.RecordOperationResult(op, "error")
	s.log.WithError(err).WithFields(logrus.Fields{"request_id": requestID, "op": op}).Error("transition failed")
	return fmt.Errorf("failed to %s request: %w", op, err)
}

func (s *service) reportPartialWrite(op string, r *models.PaymentRequest) {
	s.metrics.RecordPartialWrite(op)
	s.log.WithFields(logrus.Fields{
		"request_id": r.RequestID,
		"user_id":    r.UserID,
		"status":     r.Status,
		"code":       domainerrors.ErrPartialWrite.Code,
	}).Warn("ledger entry missing for request; left for reconciliation")
}

func (s *service) afterCommit(ctx context.Context, r *models.PaymentRequest, w *models.Wallet) {
	if w != nil && s.publisher != nil {
		s.publisher.PublishBalance(ctx, w)
	}
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(notification.EventFor(r, w))
	}
}
