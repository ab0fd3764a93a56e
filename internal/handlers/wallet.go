package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/adminconfig"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/currency"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/wallet"
	"github.com/Aaditya88888/netwin-user-sub001/internal/utils"
)

const streamKeepAlive = 15 * time.Second

type WalletHandler struct {
	walletService wallet.Service
	converter     *currency.Converter
	configs       adminconfig.Service
	log           logrus.FieldLogger
}

func NewWalletHandler(walletService wallet.Service, converter *currency.Converter, configs adminconfig.Service, log logrus.FieldLogger) *WalletHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &WalletHandler{
		walletService: walletService,
		converter:     converter,
		configs:       configs,
		log:           logger.For(log, "http"),
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	snap, err := h.walletService.GetBalance(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"wallet": snap})
}

// StreamBalance pushes the current balance and every committed change as
// server-sent events until the client disconnects.
func (h *WalletHandler) StreamBalance(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	userID := claims.UserID

	snap, err := h.walletService.GetBalance(c.UserContext(), userID)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}

	// The stream outlives the handler, so it cannot use the request context.
	ctx, cancel := context.WithCancel(context.Background())
	updates, err := h.walletService.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		return utils.HandleError(c, h.log, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.WithField("user_id", userID)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeEvent(w, "balance", snap); err != nil {
			return
		}
		keepAlive := time.NewTicker(streamKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case s, ok := <-updates:
				if !ok {
					return
				}
				if err := writeEvent(w, "balance", s); err != nil {
					log.WithError(err).Debug("balance stream closed")
					return
				}
			case <-keepAlive.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, event string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return w.Flush()
}

func (h *WalletHandler) ChangeCurrency(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	change, err := h.walletService.ChangeCurrency(c.UserContext(), claims.UserID, models.NormalizeCurrency(input.Currency))
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, change)
}

func (h *WalletHandler) GetLedger(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c)
	entries, total, err := h.walletService.History(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, utils.Paginated(entries, p, total))
}

// GetChannels lists where users can send deposits.
func (h *WalletHandler) GetChannels(c *fiber.Ctx) error {
	cfgs, err := h.configs.ListActive(c.UserContext())
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"channels": cfgs})
}

// Quote converts an amount for display. It never touches a wallet.
func (h *WalletHandler) Quote(c *fiber.Ctx) error {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		return utils.HandleError(c, h.log, domainerrors.Invalid("amount", "must be a decimal number"))
	}
	from := models.NormalizeCurrency(c.Query("from"))
	to := models.NormalizeCurrency(c.Query("to"))

	conv, err := h.converter.Convert(amount, from, to)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	display, err := h.converter.DisplayPrice(amount, from, to)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{
		"conversion": conv,
		"display":    display,
	})
}
