package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Aaditya88888/netwin-user-sub001/internal/logger"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/intake"
	"github.com/Aaditya88888/netwin-user-sub001/internal/utils"
)

// RequestHandler serves the user side of deposits and withdrawals.
type RequestHandler struct {
	intake intake.Service
	log    logrus.FieldLogger
}

func NewRequestHandler(svc intake.Service, log logrus.FieldLogger) *RequestHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &RequestHandler{intake: svc, log: logger.For(log, "http")}
}

func (h *RequestHandler) SubmitDeposit(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount        decimal.Decimal `json:"amount"`
		Currency      string          `json:"currency"`
		ExternalRef   string          `json:"external_ref"`
		AttachmentRef string          `json:"attachment_ref"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	req, err := h.intake.SubmitDeposit(c.UserContext(), intake.DepositInput{
		UserID:        claims.UserID,
		Amount:        input.Amount,
		Currency:      models.Currency(input.Currency),
		ExternalRef:   input.ExternalRef,
		AttachmentRef: input.AttachmentRef,
		User:          claims.Details(),
	})
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Created(c, fiber.Map{
		"request_id":  req.RequestID,
		"status":      req.Status,
		"review_flag": req.ReviewFlag,
	})
}

func (h *RequestHandler) SubmitWithdrawal(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount   decimal.Decimal `json:"amount"`
		Currency string          `json:"currency"`
		Payout   models.Payout   `json:"payout"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	req, err := h.intake.SubmitWithdrawal(c.UserContext(), intake.WithdrawalInput{
		UserID:   claims.UserID,
		Amount:   input.Amount,
		Currency: models.Currency(input.Currency),
		Payout:   input.Payout,
		User:     claims.Details(),
	})
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Created(c, fiber.Map{
		"request_id": req.RequestID,
		"status":     req.Status,
	})
}

func (h *RequestHandler) ListMine(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c)
	reqs, total, err := h.intake.ListUserRequests(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.HandleError(c, h.log, err)
	}
	return utils.Success(c, utils.Paginated(reqs, p, total))
}
