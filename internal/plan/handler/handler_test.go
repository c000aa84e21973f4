package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	ledgerdomain "github.com/lienduong188/finance-tracker-sub000/internal/ledger/domain"
	ledgerrepo "github.com/lienduong188/finance-tracker-sub000/internal/ledger/repository"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/repository"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/command"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/query"
)

type testEnv struct {
	db     *gorm.DB
	router *mux.Router
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&ledgerdomain.Account{},
		&ledgerdomain.Transaction{},
		&domain.PaymentPlan{},
		&domain.PlanPayment{},
		&domain.PlanTransactionLink{},
	))

	repo := repository.NewGormPlanRepository(db)
	ledger := ledgerrepo.NewGormLedgerDirectory(db)
	clock := domain.SystemClock{}

	createHandler := command.NewCreatePlanHandler(repo, ledger, clock)
	planHandler := NewPlanHandler(
		createHandler,
		command.NewCreatePlansBulkHandler(createHandler),
		command.NewMarkPaymentPaidHandler(repo, clock),
		command.NewCancelPlanHandler(repo),
		query.NewGetPlanHandler(repo, clock),
		query.NewListPlansHandler(repo),
		query.NewUpcomingPaymentsHandler(repo, clock),
		query.NewPreviewScheduleHandler(clock),
		nil, // no Kafka in tests
	)

	router := mux.NewRouter()
	planHandler.RegisterRoutes(router)
	planHandler.RegisterHealthCheck(router, db)

	return &testEnv{db: db, router: router}
}

func (e *testEnv) seedAccount(t *testing.T, accountType string) uuid.UUID {
	t.Helper()
	account := ledgerdomain.Account{ID: uuid.New(), Name: "Visa", Type: accountType, Currency: "JPY"}
	require.NoError(t, e.db.Create(&account).Error)
	return account.ID
}

func (e *testEnv) seedExpense(t *testing.T, accountID uuid.UUID, amount string) uuid.UUID {
	t.Helper()
	txn := ledgerdomain.Transaction{
		ID:         uuid.New(),
		AccountID:  accountID,
		Type:       string(domain.TransactionTypeExpense),
		Amount:     decimal.RequireFromString(amount),
		Currency:   "JPY",
		OccurredAt: time.Now(),
	}
	require.NoError(t, e.db.Create(&txn).Error)
	return txn.ID
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func createPlanBody(txnIDs ...uuid.UUID) map[string]interface{} {
	ids := make([]string, 0, len(txnIDs))
	for _, id := range txnIDs {
		ids = append(ids, id.String())
	}
	return map[string]interface{}{
		"transaction_ids":      ids,
		"payment_type":         "INSTALLMENT",
		"total_installments":   3,
		"installment_fee_rate": "0.01",
		"start_date":           "2026-01-15",
	}
}

func TestPlanRoutes_Create(t *testing.T) {
	t.Run("creates a plan", func(t *testing.T) {
		env := setupEnv(t)
		accountID := env.seedAccount(t, "CREDIT_CARD")
		txnID := env.seedExpense(t, accountID, "1200000")

		rec := env.do(http.MethodPost, "/api/plans", createPlanBody(txnID))
		assert.Equal(t, http.StatusCreated, rec.Code)

		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		env := setupEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/plans", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		env := setupEnv(t)
		accountID := env.seedAccount(t, "CREDIT_CARD")
		txnID := env.seedExpense(t, accountID, "1200000")

		body := createPlanBody(txnID)
		body["total_installments"] = 1
		rec := env.do(http.MethodPost, "/api/plans", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeResponse(t, rec)
		assert.Equal(t, "INSTALLMENTS_OUT_OF_RANGE", resp.Code)
	})

	t.Run("maps claim conflicts to 409", func(t *testing.T) {
		env := setupEnv(t)
		accountID := env.seedAccount(t, "CREDIT_CARD")
		txnID := env.seedExpense(t, accountID, "1200000")

		rec := env.do(http.MethodPost, "/api/plans", createPlanBody(txnID))
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(http.MethodPost, "/api/plans", createPlanBody(txnID))
		assert.Equal(t, http.StatusConflict, rec.Code)

		resp := decodeResponse(t, rec)
		assert.Equal(t, "TRANSACTION_ALREADY_PLANNED", resp.Code)
	})

	t.Run("maps unknown transactions to 404", func(t *testing.T) {
		env := setupEnv(t)
		rec := env.do(http.MethodPost, "/api/plans", createPlanBody(uuid.New()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPlanRoutes_Bulk(t *testing.T) {
	env := setupEnv(t)
	accountID := env.seedAccount(t, "CREDIT_CARD")
	good := env.seedExpense(t, accountID, "60000")
	claimed := env.seedExpense(t, accountID, "60000")

	rec := env.do(http.MethodPost, "/api/plans", createPlanBody(claimed))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/api/plans/bulk", createPlanBody(good, claimed))
	assert.Equal(t, http.StatusMultiStatus, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Succeeded   []json.RawMessage `json:"succeeded"`
			FailedCount int               `json:"failed_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.Succeeded, 1)
	assert.Equal(t, 1, resp.Data.FailedCount)
}

func TestPlanRoutes_GetAndList(t *testing.T) {
	env := setupEnv(t)
	accountID := env.seedAccount(t, "CREDIT_CARD")
	txnID := env.seedExpense(t, accountID, "1200000")

	rec := env.do(http.MethodPost, "/api/plans", createPlanBody(txnID))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data domain.PaymentPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	t.Run("get by id", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/plans/"+created.Data.ID.String(), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/plans/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id is 400", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/plans/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list with filters", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/plans?status=ACTIVE&limit=5", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodGet, "/api/plans?status=BOGUS", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPlanRoutes_PayAndCancel(t *testing.T) {
	env := setupEnv(t)
	accountID := env.seedAccount(t, "CREDIT_CARD")
	txnID := env.seedExpense(t, accountID, "1200000")

	rec := env.do(http.MethodPost, "/api/plans", createPlanBody(txnID))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data domain.PaymentPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	planID := created.Data.ID
	paymentID := created.Data.Payments[0].ID

	payPath := fmt.Sprintf("/api/plans/%s/payments/%s/pay", planID, paymentID)

	t.Run("marks a payment paid", func(t *testing.T) {
		rec := env.do(http.MethodPost, payPath, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("double pay is 409", func(t *testing.T) {
		rec := env.do(http.MethodPost, payPath, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		resp := decodeResponse(t, rec)
		assert.Equal(t, "PAYMENT_ALREADY_PAID", resp.Code)
	})

	t.Run("cancel then cancel again", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/plans/"+planID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodPost, "/api/plans/"+planID.String()+"/cancel", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestPlanRoutes_UpcomingAndPreview(t *testing.T) {
	env := setupEnv(t)
	accountID := env.seedAccount(t, "CREDIT_CARD")
	txnID := env.seedExpense(t, accountID, "1200000")

	rec := env.do(http.MethodPost, "/api/plans", createPlanBody(txnID))
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("upcoming payments", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/payments/upcoming?window_days=365", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodGet, "/api/payments/upcoming?window_days=-1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("preview without persistence", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/plans/preview", map[string]interface{}{
			"principal":            "1200000",
			"currency":             "JPY",
			"payment_type":         "INSTALLMENT",
			"total_installments":   3,
			"installment_fee_rate": "0.01",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		// No new plan was created
		var count int64
		require.NoError(t, env.db.Model(&domain.PaymentPlan{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("health check", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
