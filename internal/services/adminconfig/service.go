// Package adminconfig manages the per-currency payment instructions admins
// publish for manual deposits.
package adminconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-user-sub001/internal/validation"
)

// CacheKey holds the full config list.
const CacheKey = "wallet_config:all"

const cacheName = "wallet_config"

// Cache is the subset of cache.CacheService the store needs.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	SetIfAbsent(ctx context.Context, key string, value interface{}) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

type Service interface {
	List(ctx context.Context) ([]models.AdminWalletConfig, error)
	ListActive(ctx context.Context) ([]models.AdminWalletConfig, error)
	GetForCurrency(ctx context.Context, currency models.Currency) (*models.AdminWalletConfig, error)
	Update(ctx context.Context, cfg *models.AdminWalletConfig, adminID string) (*models.AdminWalletConfig, error)
}

type service struct {
	repo    repositories.AdminWalletConfigRepository
	cache   Cache
	log     logrus.FieldLogger
	metrics metrics.Collector
}

// NewService returns the config store. cache may be nil, in which case every
// read goes to the repository.
func NewService(repo repositories.AdminWalletConfigRepository, cache Cache, log logrus.FieldLogger, m metrics.Collector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &service{
		repo:    repo,
		cache:   cache,
		log:     logger.For(log, "adminconfig"),
		metrics: metrics.OrNoop(m),
	}
}

func (s *service) List(ctx context.Context) ([]models.AdminWalletConfig, error) {
	if s.cache != nil {
		var cached []models.AdminWalletConfig
		found, err := s.cache.Get(ctx, CacheKey, &cached)
		if err != nil {
			s.log.WithError(err).Warn("wallet config cache read failed")
		}
		if found {
			s.metrics.RecordCacheHit(cacheName)
			return cached, nil
		}
		s.metrics.RecordCacheMiss(cacheName)
	}

	cfgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet configs: %w", err)
	}

	// A reader may have loaded rows from before a concurrent Update. Filling
	// only an empty key lets the Update's own write win.
	if s.cache != nil {
		if _, err := s.cache.SetIfAbsent(ctx, CacheKey, cfgs); err != nil {
			s.log.WithError(err).Warn("wallet config cache write failed")
		}
	}
	return cfgs, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.AdminWalletConfig, error) {
	cfgs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.AdminWalletConfig, 0, len(cfgs))
	for _, c := range cfgs {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *service) GetForCurrency(ctx context.Context, currency models.Currency) (*models.AdminWalletConfig, error) {
	cfgs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cfgs {
		if cfgs[i].Currency == currency {
			return &cfgs[i], nil
		}
	}
	return nil, domainerrors.ErrConfigNotFound
}

func (s *service) Update(ctx context.Context, cfg *models.AdminWalletConfig, adminID string) (*models.AdminWalletConfig, error) {
	cfg.Currency = models.NormalizeCurrency(string(cfg.Currency))
	cfg.Channel = strings.ToLower(strings.TrimSpace(cfg.Channel))
	cfg.IFSC = strings.ToUpper(strings.TrimSpace(cfg.IFSC))
	if err := validation.ValidateAdminWalletConfig(cfg); err != nil {
		return nil, err
	}
	cfg.UpdatedBy = adminID
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save wallet config: %w", err)
	}

	if s.cache != nil {
		s.refreshCache(ctx, cfg.Currency)
	}

	s.log.WithFields(logrus.Fields{
		"currency": cfg.Currency,
		"channel":  cfg.Channel,
		"active":   cfg.IsActive,
		"admin_id": adminID,
	}).Info("wallet config updated")
	return cfg, nil
}

// refreshCache drops the cached list, then overwrites it with a read taken
// after the upsert so a stale reader fill cannot outlive the update.
func (s *service) refreshCache(ctx context.Context, currency models.Currency) {
	log := s.log.WithField("currency", currency)
	if err := s.cache.Delete(ctx, CacheKey); err != nil {
		log.WithError(err).Error("wallet config cache invalidation failed")
	}
	cfgs, err := s.repo.List(ctx)
	if err != nil {
		// The key stays deleted; the next reader fills it.
		log.WithError(err).Warn("wallet config re-read after update failed")
		return
	}
	if err := s.cache.Set(ctx, CacheKey, cfgs); err != nil {
		log.WithError(err).Error("wallet config cache refresh failed")
	}
}

// IsNotFound reports whether err means no config exists for the currency.
func IsNotFound(err error) bool {
	return errors.Is(err, domainerrors.ErrConfigNotFound)
}
