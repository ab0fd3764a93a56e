// Command admin_seed writes the initial per-currency payment instructions and
// prints a short-lived admin token for bootstrapping the review console.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Aaditya88888/netwin-user-sub001/internal/config"
	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/adminconfig"
	"github.com/Aaditya88888/netwin-user-sub001/internal/utils"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction())

	adminID := os.Getenv("ADMIN_ID")
	upiID := os.Getenv("ADMIN_UPI_ID")
	if adminID == "" || upiID == "" {
		log.Fatal("ADMIN_ID and ADMIN_UPI_ID must be set in environment")
	}

	db, err := repositories.InitDB(cfg.DB, log)
	if err != nil {
		log.WithError(err).Fatal("database init failed")
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.WithError(err).Warn("failed to close database connection")
		}
	}()

	// No cache here; the server picks the rows up when its cache entry expires.
	configs := adminconfig.NewService(repositories.NewAdminWalletConfigRepository(db), nil, log, nil)
	ctx := context.Background()

	existing, err := configs.GetForCurrency(ctx, models.CurrencyINR)
	switch {
	case err == nil:
		log.WithField("channel", existing.Channel).Info("INR wallet config already exists")
	case adminconfig.IsNotFound(err):
		seed := &models.AdminWalletConfig{
			Currency:     models.CurrencyINR,
			IsActive:     true,
			Channel:      models.ChannelUPI,
			UPIID:        upiID,
			Instructions: "Pay via UPI and enter the 12-digit UTR shown in your payment app.",
			MinDeposit:   decimal.NewFromInt(50),
		}
		if _, err := configs.Update(ctx, seed, adminID); err != nil {
			log.WithError(err).Fatal("failed to seed INR wallet config")
		}
		log.Info("INR wallet config seeded")
	default:
		log.WithError(err).Fatal("failed to read wallet config")
	}

	if cfg.JWTSecret == "" {
		return
	}
	token, err := utils.GenerateToken(cfg.JWTSecret, models.UserClaims{
		UserID:      adminID,
		Role:        models.RoleAdmin,
		Permissions: models.GetDefaultPermissions(models.RoleAdmin),
	}, time.Hour)
	if err != nil {
		log.WithError(err).Fatal("failed to sign admin token")
	}
	fmt.Println(token)
}
