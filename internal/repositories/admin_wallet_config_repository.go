package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

type adminWalletConfigRepository struct {
	db *gorm.DB
}

func NewAdminWalletConfigRepository(db *gorm.DB) AdminWalletConfigRepository {
	return &adminWalletConfigRepository{db: db}
}

func (r *adminWalletConfigRepository) List(ctx context.Context) ([]models.AdminWalletConfig, error) {
	var cfgs []models.AdminWalletConfig
	if err := r.db.WithContext(ctx).Order("currency").Find(&cfgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallet configs: %w", err)
	}
	return cfgs, nil
}

func (r *adminWalletConfigRepository) Get(ctx context.Context, currency models.Currency) (*models.AdminWalletConfig, error) {
	var cfg models.AdminWalletConfig
	if err := r.db.WithContext(ctx).Where("currency = ?", currency).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get wallet config: %w", err)
	}
	return &cfg, nil
}

func (r *adminWalletConfigRepository) Upsert(ctx context.Context, cfg *models.AdminWalletConfig) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "currency"}}, UpdateAll: true}).
		Create(cfg)
	if result.Error != nil {
		return fmt.Errorf("failed to save wallet config: %w", result.Error)
	}
	return nil
}
