// Package routes defines the API routing configuration.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aaditya88888/netwin-user-sub001/internal/handlers"
	"github.com/Aaditya88888/netwin-user-sub001/internal/middleware"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

// Handlers groups everything the router needs.
type Handlers struct {
	Auth     *middleware.AuthMiddleware
	Wallet   *handlers.WalletHandler
	Requests *handlers.RequestHandler
	Admin    *handlers.AdminHandler
	Checks   map[string]handlers.Check
	// Gatherer serves /metrics when set.
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/health", handlers.HealthCheck(h.Checks))
	if h.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	setupWalletRoutes(api, h)
	setupAdminRoutes(api, h)
}

func setupWalletRoutes(api fiber.Router, h Handlers) {
	wallet := api.Group("/wallet", h.Auth.Handler)

	read := middleware.HasPermission(models.PermissionWalletRead)
	write := middleware.HasPermission(models.PermissionWalletWrite)
	submit := middleware.HasPermission(models.PermissionRequestSubmit)

	wallet.Get("/", read, h.Wallet.GetWallet)
	wallet.Get("/stream", read, h.Wallet.StreamBalance)
	wallet.Get("/ledger", read, h.Wallet.GetLedger)
	wallet.Get("/channels", read, h.Wallet.GetChannels)
	wallet.Get("/quote", read, h.Wallet.Quote)
	wallet.Put("/currency", write, h.Wallet.ChangeCurrency)

	wallet.Post("/deposits", submit, h.Requests.SubmitDeposit)
	wallet.Post("/withdrawals", submit, h.Requests.SubmitWithdrawal)
	wallet.Get("/requests", read, h.Requests.ListMine)
}

func setupAdminRoutes(api fiber.Router, h Handlers) {
	// Access is checked per route permission, not per role.
	admin := api.Group("/admin", h.Auth.Handler)

	review := middleware.HasPermission(models.PermissionRequestReview)
	admin.Get("/requests", middleware.HasPermission(models.PermissionReadAdmin), h.Admin.ListRequests)
	admin.Get("/requests/:id", middleware.HasPermission(models.PermissionReadAdmin), h.Admin.GetRequest)
	admin.Post("/requests/:id/approve", review, h.Admin.Approve)
	admin.Post("/requests/:id/reject", review, h.Admin.Reject)

	admin.Get("/wallet-config", middleware.HasPermission(models.PermissionReadAdmin), h.Admin.GetWalletConfig)
	admin.Put("/wallet-config/:currency", middleware.HasPermission(models.PermissionConfigWrite), h.Admin.UpdateWalletConfig)

	admin.Post("/reconcile", middleware.HasPermission(models.PermissionReconcile), h.Admin.Reconcile)
}
