package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aaditya88888/netwin-user-sub001/internal/handlers"
	"github.com/Aaditya88888/netwin-user-sub001/internal/metrics"
	"github.com/Aaditya88888/netwin-user-sub001/internal/middleware"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
	"github.com/Aaditya88888/netwin-user-sub001/internal/repositories/repotest"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/adminconfig"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/approval"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/currency"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/intake"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/reconciliation"
	"github.com/Aaditya88888/netwin-user-sub001/internal/services/wallet"
	"github.com/Aaditya88888/netwin-user-sub001/internal/utils"
)

const testSecret = "test-secret"

type testApp struct {
	app   *fiber.App
	store *repotest.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := repotest.NewStore()
	require.NoError(t, store.Configs().Upsert(context.Background(), &models.AdminWalletConfig{
		Currency: models.CurrencyINR, IsActive: true, Channel: models.ChannelUPI, UPIID: "netwin@okaxis",
	}))

	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheusCollector(reg)
	conv := currency.MustNewConverter()

	walletSvc := wallet.NewService(store.Ledger(), conv, repotest.NewBus(), wallet.WalletConfig{}, nil, m)
	configSvc := adminconfig.NewService(store.Configs(), nil, nil, m)
	intakeSvc := intake.NewService(store.Ledger(), walletSvc, configSvc, nil, nil, m)
	approvalSvc := approval.NewService(store.Ledger(), conv, walletSvc, nil, nil, m)
	sweeper := reconciliation.NewSweeper(store.Ledger(), nil, reconciliation.Config{}, nil, m)

	app := fiber.New()
	SetupRoutes(app, Handlers{
		Auth:     middleware.NewAuthMiddleware(testSecret, nil),
		Wallet:   handlers.NewWalletHandler(walletSvc, conv, configSvc, nil),
		Requests: handlers.NewRequestHandler(intakeSvc, nil),
		Admin:    handlers.NewAdminHandler(approvalSvc, configSvc, sweeper, nil),
		Checks: map[string]handlers.Check{
			"database": func(context.Context) error { return nil },
		},
		Gatherer: reg,
	})
	return &testApp{app: app, store: store}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, models.UserClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		Name:   userID,
		Role:   role,
	}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testApp) do(t *testing.T, method, path, tok, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestDepositApprovalFlow(t *testing.T) {
	a := newTestApp(t)
	a.store.SeedWallet("u1", decimal.NewFromInt(1000), models.CurrencyINR)
	user := token(t, "u1", models.RoleUser)
	admin := token(t, "admin-1", models.RoleAdmin)

	code, body := a.do(t, http.MethodPost, "/api/wallet/deposits", user,
		`{"amount":"500","currency":"INR","external_ref":"123456789012"}`)
	require.Equal(t, http.StatusCreated, code, body)
	requestID, _ := body["request_id"].(string)
	require.NotEmpty(t, requestID)
	assert.Equal(t, "PENDING", body["status"])

	code, _ = a.do(t, http.MethodPost, "/api/admin/requests/"+requestID+"/approve", admin, "")
	require.Equal(t, http.StatusOK, code)

	code, body = a.do(t, http.MethodPost, "/api/admin/requests/"+requestID+"/approve", admin, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_PROCESSED", body["code"])

	code, body = a.do(t, http.MethodGet, "/api/wallet", user, "")
	require.Equal(t, http.StatusOK, code)
	w := body["wallet"].(map[string]interface{})
	assert.Equal(t, "1500", w["balance"])

	r, _ := a.store.Request(requestID)
	assert.Equal(t, "u1@example.com", r.UserDetails.Email)
}

func TestDepositValidationError(t *testing.T) {
	a := newTestApp(t)
	user := token(t, "u1", models.RoleUser)

	code, body := a.do(t, http.MethodPost, "/api/wallet/deposits", user,
		`{"amount":"-5","currency":"INR","external_ref":"123456789012"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "amount", body["field"])

	reqs, entries := a.store.Counts()
	assert.Zero(t, reqs)
	assert.Zero(t, entries)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	a := newTestApp(t)
	a.store.SeedWallet("u1", decimal.NewFromInt(1000), models.CurrencyINR)
	user := token(t, "u1", models.RoleUser)
	admin := token(t, "admin-1", models.RoleAdmin)

	code, body := a.do(t, http.MethodPost, "/api/wallet/withdrawals", user,
		`{"amount":2000,"currency":"INR","payout":{"method":"upi","upi_id":"asha@ybl"}}`)
	require.Equal(t, http.StatusCreated, code, body)
	requestID := body["request_id"].(string)

	code, body = a.do(t, http.MethodPost, "/api/admin/requests/"+requestID+"/approve", admin, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "INSUFFICIENT_FUNDS", body["code"])

	code, _ = a.do(t, http.MethodPost, "/api/admin/requests/"+requestID+"/reject", admin, `{"reason":"insufficient balance"}`)
	assert.Equal(t, http.StatusOK, code)

	r, _ := a.store.Request(requestID)
	assert.Equal(t, models.StatusRejected, r.Status)
}

func TestAuthorization(t *testing.T) {
	a := newTestApp(t)
	user := token(t, "u1", models.RoleUser)

	code, _ := a.do(t, http.MethodGet, "/api/wallet", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodGet, "/api/wallet", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(t, http.MethodGet, "/api/admin/requests", user, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(t, http.MethodPost, "/api/admin/reconcile", user, "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestReviewerPermissions(t *testing.T) {
	a := newTestApp(t)
	a.store.SeedWallet("u1", decimal.NewFromInt(1000), models.CurrencyINR)
	user := token(t, "u1", models.RoleUser)
	reviewer, err := utils.GenerateToken(testSecret, models.UserClaims{
		UserID:      "rev-1",
		Role:        "support",
		Permissions: []string{models.PermissionReadAdmin, models.PermissionRequestReview},
	}, time.Hour)
	require.NoError(t, err)

	code, body := a.do(t, http.MethodPost, "/api/wallet/deposits", user,
		`{"amount":"500","currency":"INR","external_ref":"123456789012"}`)
	require.Equal(t, http.StatusCreated, code, body)
	requestID := body["request_id"].(string)

	code, _ = a.do(t, http.MethodGet, "/api/admin/requests", reviewer, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(t, http.MethodPost, "/api/admin/requests/"+requestID+"/approve", reviewer, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = a.do(t, http.MethodPut, "/api/admin/wallet-config/INR", reviewer, `{"is_active":false,"channel":"upi","upi_id":"x@y"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(t, http.MethodPost, "/api/admin/reconcile", reviewer, "")
	assert.Equal(t, http.StatusForbidden, code)

	w, _ := a.store.Wallet("u1")
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(1500)))
}

func TestAdminWalletConfigAndChannels(t *testing.T) {
	a := newTestApp(t)
	user := token(t, "u1", models.RoleUser)
	admin := token(t, "admin-1", models.RoleAdmin)

	code, body := a.do(t, http.MethodPut, "/api/admin/wallet-config/ngn", admin,
		`{"is_active":true,"channel":"bank_transfer","bank_name":"GTBank","account_name":"Netwin","account_number":"0123456789"}`)
	require.Equal(t, http.StatusOK, code, body)
	cfg := body["config"].(map[string]interface{})
	assert.Equal(t, "NGN", cfg["currency"])
	assert.Equal(t, "admin-1", cfg["updated_by"])

	code, body = a.do(t, http.MethodPut, "/api/admin/wallet-config/JPY", admin, `{"is_active":true,"channel":"upi","upi_id":"x@y"}`)
	assert.Equal(t, http.StatusBadRequest, code, body)

	code, body = a.do(t, http.MethodGet, "/api/wallet/channels", user, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["channels"], 2)
}

func TestQuoteAndCurrencyChange(t *testing.T) {
	a := newTestApp(t)
	a.store.SeedWallet("u1", decimal.NewFromInt(830), models.CurrencyINR)
	user := token(t, "u1", models.RoleUser)

	code, body := a.do(t, http.MethodGet, "/api/wallet/quote?amount=830&from=INR&to=USD", user, "")
	require.Equal(t, http.StatusOK, code, body)
	conv := body["conversion"].(map[string]interface{})
	assert.Equal(t, "10", conv["amount"])
	display := body["display"].(map[string]interface{})
	assert.Equal(t, "10", display["amount"])

	code, body = a.do(t, http.MethodPut, "/api/wallet/currency", user, `{"currency":"usd"}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = a.do(t, http.MethodGet, "/api/wallet/ledger", user, "")
	require.Equal(t, http.StatusOK, code)
	entries := body["data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "currency_conversion", entries[0].(map[string]interface{})["type"])
}

func TestReconcileEndpoint(t *testing.T) {
	a := newTestApp(t)
	admin := token(t, "admin-1", models.RoleAdmin)
	a.store.PutRequest(models.PaymentRequest{
		RequestID: "r1", Type: models.RequestTypeDeposit, UserID: "u1",
		Amount: decimal.NewFromInt(100), Currency: models.CurrencyINR, Status: models.StatusRejected,
	})

	code, body := a.do(t, http.MethodPost, "/api/admin/reconcile", admin, "")
	require.Equal(t, http.StatusOK, code)
	rep := body["report"].(map[string]interface{})
	assert.Equal(t, float64(1), rep["created"])

	_, ok := a.store.Entry("r1")
	assert.True(t, ok)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	code, body := a.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
