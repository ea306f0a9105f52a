//go:build integration

package e2e

// e2e_test.go
// End-to-end integration tests for RetailPOS using real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"retailpos/internal/config"
	"retailpos/internal/infra"
	"retailpos/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	engine *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	// Start Postgres container
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("retailpos_test"),
		tcPostgres.WithUsername("retailpos"),
		tcPostgres.WithPassword("retailpos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Start Redis container
	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:             8000,
		Env:              "test",
		DatabaseURL:      pgURL,
		RedisURL:         rdURL,
		WorkerPoolSize:   1,
		StoreName:        "RetailPOS E2E",
		PDFStoragePath:   t.TempDir(),
		HeldCartTTLHours: 1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	r := router.New(cfg, db, rdb, smtpCB)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, engine: r}
}

func createProduct(t *testing.T, env *testEnv, body map[string]any) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products", jsonBody(t, body))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	require.NotEmpty(t, prod.ID)
	return prod.ID
}

func openSession(t *testing.T, env *testEnv) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		SessionID string `json:"session_id"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.SessionID)
	return body.SessionID
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full sale cycle: create product → open session → add item → checkout → list.
func TestE2E_FullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)

	prodID := createProduct(t, env, map[string]any{
		"name":    "Cola 500ml",
		"barcode": "7890001000001",
		"price":   "60",
		"stock":   20,
	})

	sid := openSession(t, env)

	addResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/cart/items",
		jsonBody(t, map[string]any{"product_id": prodID, "quantity": "3"}))
	require.Equal(t, http.StatusOK, addResp.StatusCode)
	var cartBody struct {
		Items []struct {
			Quantity string `json:"quantity"`
		} `json:"items"`
		Totals struct {
			Total string `json:"total"`
		} `json:"totals"`
	}
	decodeJSON(t, addResp, &cartBody)
	require.Len(t, cartBody.Items, 1)
	assert.Equal(t, "180", cartBody.Totals.Total)

	coResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/checkout",
		jsonBody(t, map[string]any{"cash": "180"}))
	require.Equal(t, http.StatusCreated, coResp.StatusCode)
	var invoice struct {
		InvoiceID     string `json:"invoice_id"`
		InvoiceNumber int    `json:"invoice_number"`
		Status        string `json:"status"`
		PaymentMethod string `json:"payment_method"`
		AmountDue     string `json:"amount_due"`
	}
	decodeJSON(t, coResp, &invoice)
	assert.Equal(t, 1, invoice.InvoiceNumber)
	assert.Equal(t, "paid", invoice.Status)
	assert.Equal(t, "cash", invoice.PaymentMethod)
	assert.Equal(t, "0", invoice.AmountDue)

	// Stock decremented to 17
	prodResp := do(t, env.server, "GET", "/v1/products/"+prodID, nil)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		Stock *int64 `json:"stock"`
	}
	decodeJSON(t, prodResp, &prod)
	require.NotNil(t, prod.Stock)
	assert.EqualValues(t, 17, *prod.Stock)

	listResp := do(t, env.server, "GET", "/v1/invoices?date="+time.Now().Format("2006-01-02"), nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &list)
	assert.EqualValues(t, 1, list.Total)
}

// Two terminals checking out at the same time get distinct invoice numbers.
func TestE2E_ConcurrentCheckoutsAllocateDistinctNumbers(t *testing.T) {
	env := setupTestEnv(t)

	prodID := createProduct(t, env, map[string]any{
		"name":    "Milk 1L",
		"barcode": "7890001000006",
		"price":   "55",
		"stock":   100,
	})

	const terminals = 4
	numbers := make(chan int, terminals)
	var wg sync.WaitGroup
	for i := 0; i < terminals; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sid := openSession(t, env)
			addResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/cart/items",
				jsonBody(t, map[string]any{"product_id": prodID, "quantity": "1"}))
			require.Equal(t, http.StatusOK, addResp.StatusCode)
			addResp.Body.Close()

			coResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/checkout",
				jsonBody(t, map[string]any{"cash": "55"}))
			require.Equal(t, http.StatusCreated, coResp.StatusCode)
			var invoice struct {
				InvoiceNumber int `json:"invoice_number"`
			}
			decodeJSON(t, coResp, &invoice)
			numbers <- invoice.InvoiceNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for n := range numbers {
		assert.False(t, seen[n], "invoice number %d allocated twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, terminals)
}

// Overpayment beyond the rounding tolerance is rejected and the cart survives.
func TestE2E_OverpaymentRejected(t *testing.T) {
	env := setupTestEnv(t)

	prodID := createProduct(t, env, map[string]any{
		"name":    "Notebook",
		"barcode": "7890001000002",
		"price":   "100",
		"stock":   10,
	})
	sid := openSession(t, env)

	addResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/cart/items",
		jsonBody(t, map[string]any{"product_id": prodID, "quantity": "1"}))
	require.Equal(t, http.StatusOK, addResp.StatusCode)

	coResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/checkout",
		jsonBody(t, map[string]any{"cash": "150"}))
	assert.Equal(t, http.StatusBadRequest, coResp.StatusCode)
	coResp.Body.Close()

	// Cart is untouched
	cartResp := do(t, env.server, "GET", "/v1/sessions/"+sid+"/cart", nil)
	require.Equal(t, http.StatusOK, cartResp.StatusCode)
	var cartBody struct {
		Items []json.RawMessage `json:"items"`
	}
	decodeJSON(t, cartResp, &cartBody)
	assert.Len(t, cartBody.Items, 1)
}

// Selling beyond available stock is refused with the available quantity.
func TestE2E_StockLimitConflict(t *testing.T) {
	env := setupTestEnv(t)

	prodID := createProduct(t, env, map[string]any{
		"name":    "Batteries AA",
		"barcode": "7890001000003",
		"price":   "40",
		"stock":   2,
	})
	sid := openSession(t, env)

	addResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/cart/items",
		jsonBody(t, map[string]any{"product_id": prodID, "quantity": "5"}))
	assert.Equal(t, http.StatusConflict, addResp.StatusCode)
	var body struct {
		Available string `json:"available"`
	}
	decodeJSON(t, addResp, &body)
	assert.Equal(t, "2", body.Available)
}

// Hold parks the cart in Redis; resume restores it into a fresh session.
func TestE2E_HoldAndResume(t *testing.T) {
	env := setupTestEnv(t)

	prodID := createProduct(t, env, map[string]any{
		"name":    "Shampoo",
		"barcode": "7890001000004",
		"price":   "220",
		"stock":   15,
	})
	sid := openSession(t, env)

	addResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/cart/items",
		jsonBody(t, map[string]any{"product_id": prodID, "quantity": "2"}))
	require.Equal(t, http.StatusOK, addResp.StatusCode)

	holdResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/cart/hold", nil)
	require.Equal(t, http.StatusCreated, holdResp.StatusCode)
	var hold struct {
		HoldID string `json:"hold_id"`
	}
	decodeJSON(t, holdResp, &hold)
	require.NotEmpty(t, hold.HoldID)

	heldResp := do(t, env.server, "GET", "/v1/held-carts", nil)
	require.Equal(t, http.StatusOK, heldResp.StatusCode)
	var held []struct {
		HoldID string `json:"hold_id"`
		Total  string `json:"total"`
	}
	decodeJSON(t, heldResp, &held)
	require.Len(t, held, 1)
	assert.Equal(t, hold.HoldID, held[0].HoldID)
	assert.Equal(t, "440", held[0].Total)

	sid2 := openSession(t, env)
	resumeResp := do(t, env.server, "POST", "/v1/sessions/"+sid2+"/cart/resume/"+hold.HoldID, nil)
	require.Equal(t, http.StatusOK, resumeResp.StatusCode)
	var resumed struct {
		Items []struct {
			Quantity string `json:"quantity"`
		} `json:"items"`
		Totals struct {
			Total string `json:"total"`
		} `json:"totals"`
	}
	decodeJSON(t, resumeResp, &resumed)
	require.Len(t, resumed.Items, 1)
	assert.Equal(t, "440", resumed.Totals.Total)

	// Hold is consumed
	heldResp2 := do(t, env.server, "GET", "/v1/held-carts", nil)
	require.Equal(t, http.StatusOK, heldResp2.StatusCode)
	var heldAfter []json.RawMessage
	decodeJSON(t, heldResp2, &heldAfter)
	assert.Empty(t, heldAfter)
}

// Scan relay: a pushed barcode is delivered to the waiting long-poll.
func TestE2E_ScanRelay(t *testing.T) {
	env := setupTestEnv(t)
	sid := openSession(t, env)

	pushResp := do(t, env.server, "POST", "/v1/sessions/"+sid+"/scan",
		jsonBody(t, map[string]any{"barcode": "7890001000005"}))
	require.Equal(t, http.StatusAccepted, pushResp.StatusCode)
	pushResp.Body.Close()

	awaitResp := do(t, env.server, "GET", "/v1/sessions/"+sid+"/scan", nil)
	require.Equal(t, http.StatusOK, awaitResp.StatusCode)
	var scan struct {
		Barcode string `json:"barcode"`
	}
	decodeJSON(t, awaitResp, &scan)
	assert.Equal(t, "7890001000005", scan.Barcode)
}
