package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/adminconfig"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/approval"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/reconciliation"
	"github.com/Aaditya88888/netwin-user-sub001/internal/utils"
)

// Sweeper runs one reconciliation pass on demand.
type Sweeper interface {
	SweepOnce(ctx context.Context) (reconciliation.Report, error)
}

// AdminHandler serves the review queue and wallet configuration.
type AdminHandler struct {
	approval approval.Service
	configs  adminconfig.Service
	sweeper  Sweeper
	log      logrus.FieldLogger
}

func NewAdminHandler(a approval.Service, configs adminconfig.Service, sweeper Sweeper, log logrus.FieldLogger) *AdminHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &AdminHandler{approval: a, configs: configs, sweeper: sweeper, log: logger.For(log, "http")}
}

func (h *AdminHandler) ListRequests(c *fiber.Ctx) error {
	p := utils.GetPagination(c)
	filter := models.RequestFilter{
		UserID:      c.Query("user_id"),
		Status:      models.Status(c.Query("status")),
		Type:        models.RequestType(c.Query("type")),
		FlaggedOnly: c.QueryBool("flagged", false),
		Limit:       p.Limit,
		Offset:      p.Offset,
	}

	reqs, total, err := h.approval.ListRequests(c.UserContext(), filter)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, utils.Paginated(reqs, p, total))
}

func (h *AdminHandler) GetRequest(c *fiber.Ctx) error {
	req, err := h.approval.GetRequest(c.UserContext(), c.Params("id"))
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"request": req})
}

func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	out, err := h.approval.Approve(c.UserContext(), c.Params("id"), claims.UserID)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, out)
}

func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	out, err := h.approval.Reject(c.UserContext(), c.Params("id"), claims.UserID, input.Reason)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, out)
}

func (h *AdminHandler) GetWalletConfig(c *fiber.Ctx) error {
	cfgs, err := h.configs.List(c.UserContext())
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"configs": cfgs})
}

func (h *AdminHandler) UpdateWalletConfig(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var cfg models.AdminWalletConfig
	if err := c.BodyParser(&cfg); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	cfg.Currency = models.Currency(c.Params("currency"))

	saved, err := h.configs.Update(c.UserContext(), &cfg, claims.UserID)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"config": saved})
}

func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	rep, err := h.sweeper.SweepOnce(c.UserContext())
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, fiber.Map{"report": rep})
}
