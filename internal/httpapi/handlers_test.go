package httpapi_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankledger/internal/auth"
	"bankledger/internal/domain"
	"bankledger/internal/httpapi"
	"bankledger/internal/ledger"
	"bankledger/internal/memstore"
)

type testAPI struct {
	app   *fiber.App
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	mem := memstore.New()
	proc := ledger.NewProcessor(mem, nil)
	authSvc := auth.NewService(mem, []byte("test-secret"), time.Hour)

	app := httpapi.NewApp(
		httpapi.NewHandlers(proc),
		httpapi.NewAuthHandlers(authSvc),
		authSvc.Middleware(),
		nil,
	)

	api := &testAPI{app: app}
	resp := api.do(t, http.MethodPost, "/v1/auth/signup",
		`{"email":"test@example.com","password":"password123","full_name":"Test"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tr domain.TokenResponse
	decode(t, resp, &tr)
	api.token = tr.Token
	return api
}

func (a *testAPI) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func (a *testAPI) createAccount(t *testing.T, balance string) domain.Account {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/v1/accounts", fmt.Sprintf(`{"balance":%q}`, balance))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var acc domain.Account
	decode(t, resp, &acc)
	return acc
}

func (a *testAPI) getAccount(t *testing.T, id uuid.UUID) domain.Account {
	t.Helper()
	resp := a.do(t, http.MethodGet, "/v1/accounts/"+id.String(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acc domain.Account
	decode(t, resp, &acc)
	return acc
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	resp := api.do(t, http.MethodGet, "/v1/accounts", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/v1/transactions", `{}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginEndpoint(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/v1/auth/login",
		`{"email":"test@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/v1/auth/login",
		`{"email":"test@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDepositFlow(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "1000.00")

	resp := api.do(t, http.MethodPost, "/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"deposit","amount":"100.00"}`, acc.ID.String()))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var txn domain.Transaction
	decode(t, resp, &txn)
	assert.Equal(t, domain.Deposit, txn.Type)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("100.00")))

	got := api.getAccount(t, acc.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("1100.00")), "got %s", got.Balance)
}

func TestWithdrawalInsufficientBalance(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "1000.00")

	resp := api.do(t, http.MethodPost, "/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"withdrawal","amount":"1500.00"}`, acc.ID.String()))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Contains(t, body["error"], "insufficient balance")
	assert.Contains(t, body["error"], "1000.00")

	got := api.getAccount(t, acc.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("1000.00")))
}

func TestWithdrawalExactBalance(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "1000.00")

	resp := api.do(t, http.MethodPost, "/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"withdrawal","amount":"1000.00"}`, acc.ID.String()))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := api.getAccount(t, acc.ID)
	assert.True(t, got.Balance.IsZero(), "got %s", got.Balance)
}

func TestTransactionErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "10.00")

	// Unknown account -> 404
	resp := api.do(t, http.MethodPost, "/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"deposit","amount":"1.00"}`, uuid.New().String()))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Non-positive amount -> 400
	resp = api.do(t, http.MethodPost, "/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"deposit","amount":"0"}`, acc.ID.String()))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown type -> 400
	resp = api.do(t, http.MethodPost, "/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"transfer","amount":"1.00"}`, acc.ID.String()))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed body -> 400
	resp = api.do(t, http.MethodPost, "/v1/transactions", `{"account_id":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListAccountsAndTransactions(t *testing.T) {
	api := newTestAPI(t)
	acc := api.createAccount(t, "100.00")
	api.createAccount(t, "200.00")

	resp := api.do(t, http.MethodGet, "/v1/accounts?limit=10&offset=0", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var accs []domain.Account
	decode(t, resp, &accs)
	assert.Len(t, accs, 2)

	for i := 0; i < 3; i++ {
		r := api.do(t, http.MethodPost, "/v1/transactions",
			fmt.Sprintf(`{"account_id":%q,"type":"deposit","amount":"5.00"}`, acc.ID.String()))
		require.Equal(t, http.StatusCreated, r.StatusCode)
	}

	resp = api.do(t, http.MethodGet, "/v1/accounts/"+acc.ID.String()+"/transactions?limit=2&offset=0", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var txns []domain.Transaction
	decode(t, resp, &txns)
	assert.Len(t, txns, 2)

	resp = api.do(t, http.MethodGet, "/v1/accounts/"+acc.ID.String()+"/transactions?limit=10&offset=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &txns)
	assert.Len(t, txns, 1)

	// Empty result for an account nobody paid into.
	other := api.createAccount(t, "0")
	resp = api.do(t, http.MethodGet, "/v1/accounts/"+other.ID.String()+"/transactions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &txns)
	assert.Empty(t, txns)

	// Malformed pagination -> 400
	resp = api.do(t, http.MethodGet, "/v1/accounts?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateAccountValidation(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/v1/accounts", `{"balance":"-5.00"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/v1/accounts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	resp := api.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
