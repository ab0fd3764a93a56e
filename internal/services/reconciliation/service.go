// Package reconciliation repairs ledger entries whose status drifted from
// their payment request. It never touches balances.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
)

const (
	leaseName        = "wallet-reconciliation"
	defaultInterval  = 5 * time.Minute
	defaultBatchSize = 200
)

// Report summarises one sweep pass.
type Report struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
	Created  int `json:"created"`
	Failed   int `json:"failed"`
}

// Leaser hands out a cluster-wide lease so only one replica sweeps at a time.
type Leaser interface {
	Lease(ctx context.Context, resource string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	LeaseTTL  time.Duration
}

type Sweeper struct {
	repo    repositories.LedgerRepository
	leaser  Leaser
	cfg     Config
	log     logrus.FieldLogger
	metrics metrics.Collector

	// mu serializes passes in this process and guards cursor.
	mu     sync.Mutex
	cursor *repositories.DivergenceCursor
}

// NewSweeper returns a sweeper. leaser may be nil for a single replica.
func NewSweeper(repo repositories.LedgerRepository, leaser Leaser, cfg Config, log logrus.FieldLogger, m metrics.Collector) *Sweeper {
	if repo == nil {
		panic("repo is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = cfg.Interval
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Sweeper{
		repo:    repo,
		leaser:  leaser,
		cfg:     cfg,
		log:     logger.For(log, "reconciliation"),
		metrics: metrics.OrNoop(m),
	}
}

// SweepOnce runs a single pass over at most BatchSize divergent requests.
// Items are repaired one transaction each; a failed item is counted and
// left for a later pass. A full batch moves the scan position past its last
// item and a short batch wraps it to the start, so items that keep failing
// cannot hold the window against newer divergences.
func (s *Sweeper) SweepOnce(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep Report
	items, err := s.repo.ListDivergent(ctx, s.cursor, s.cfg.BatchSize)
	if err != nil {
		return rep, fmt.Errorf("failed to list divergent requests: %w", err)
	}
	rep.Scanned = len(items)
	if len(items) < s.cfg.BatchSize {
		s.cursor = nil
	} else {
		s.cursor = repositories.CursorOf(items[len(items)-1])
	}

	for _, d := range items {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		created, repaired, err := s.repair(ctx, d.Request.RequestID)
		if err != nil {
			rep.Failed++
			s.log.WithError(err).WithField("request_id", d.Request.RequestID).Warn("reconciliation failed for request")
			continue
		}
		if created {
			rep.Created++
		}
		if repaired {
			rep.Repaired++
		}
	}

	s.metrics.RecordSweep(rep.Scanned, rep.Repaired, rep.Created)
	if rep.Scanned > 0 {
		s.log.WithFields(logrus.Fields{
			"scanned":  rep.Scanned,
			"repaired": rep.Repaired,
			"created":  rep.Created,
			"failed":   rep.Failed,
		}).Info("reconciliation pass finished")
	}
	return rep, nil
}

// repair re-reads the request under lock so a concurrent approval is either
// fully visible or not started.
func (s *Sweeper) repair(ctx context.Context, requestID string) (created, repaired bool, err error) {
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.LedgerRepository) error {
		r, err := tx.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		processed := r.Status == models.StatusApproved

		e, err := tx.GetEntryByRequestID(ctx, requestID)
		if errors.Is(err, repositories.ErrEntryNotFound) {
			id := r.RequestID
			entry := &models.LedgerEntry{
				ID:              uuid.NewString(),
				Type:            models.EntryTypeFor(r.Type),
				UserID:          r.UserID,
				Status:          r.Status,
				Amount:          r.Amount,
				Currency:        r.Currency,
				LinkedRequestID: &id,
				Processed:       processed,
				Metadata:        models.JSON{"recreated_by": "reconciliation"},
			}
			if err := tx.CreateEntry(ctx, entry); err != nil {
				return err
			}
			created = true
			return nil
		}
		if err != nil {
			return err
		}
		if repositories.EntryInSync(r, e) {
			return nil
		}
		if err := tx.UpdateEntryStatus(ctx, requestID, r.Status, processed); err != nil {
			return err
		}
		repaired = true
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"from":       e.Status,
			"to":         r.Status,
		}).Info("ledger entry status repaired")
		return nil
	})
	if errors.Is(err, repositories.ErrDuplicateEntry) {
		// Someone else created it between our read and write.
		return false, false, nil
	}
	return created, repaired, err
}

// Run sweeps every Interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.log.WithField("interval", s.cfg.Interval.String()).Info("reconciliation sweeper started")
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("reconciliation sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if s.leaser != nil {
		release, ok, err := s.leaser.Lease(ctx, leaseName, s.cfg.LeaseTTL)
		if err != nil {
			s.log.WithError(err).Warn("could not take reconciliation lease")
			return
		}
		if !ok {
			s.log.Debug("another replica holds the reconciliation lease")
			return
		}
		defer func() {
			// Use a fresh context so the lease is released on shutdown too.
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := release(rctx); err != nil {
				s.log.WithError(err).Warn("failed to release reconciliation lease")
			}
		}()
	}
	if _, err := s.SweepOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).Error("reconciliation pass failed")
	}
}
