package command

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

func createPlanForTest(t *testing.T, create *CreatePlanHandler, ledger *memoryLedger) *domain.PaymentPlan {
	t.Helper()
	accountID := ledger.addAccount(domain.AccountTypeCreditCard)
	txnID := ledger.addExpense(accountID, "1200000", "JPY")

	plan, err := create.Handle(context.Background(), CreatePlanCommand{
		TransactionIDs: []uuid.UUID{txnID},
		Parameters:     installmentParams(),
	})
	require.NoError(t, err)
	return plan
}

func TestMarkPaymentPaidHandler(t *testing.T) {
	ctx := context.Background()

	newFixture := func() (*MarkPaymentPaidHandler, *CreatePlanHandler, *memoryLedger, *memoryPlanRepository) {
		create, ledger, repo := newCreateFixture()
		return NewMarkPaymentPaidHandler(repo, fixedClock{now: testNow}), create, ledger, repo
	}

	t.Run("settles a payment and decrements the balance", func(t *testing.T) {
		h, create, ledger, _ := newFixture()
		plan := createPlanForTest(t, create, ledger)

		result, err := h.Handle(ctx, MarkPaymentPaidCommand{
			PlanID:    plan.ID,
			PaymentID: plan.Payments[0].ID,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.PaymentStatusPaid, result.Payment.Status)
		require.NotNil(t, result.Payment.PaidAt)
		assert.Equal(t, testNow, *result.Payment.PaidAt)

		assert.Equal(t, 1, result.Plan.CompletedInstallments)
		assert.True(t, result.Plan.RemainingAmount.Equal(decimal.RequireFromString("824000")))
		assert.Equal(t, domain.PlanStatusActive, result.Plan.Status)
	})

	t.Run("explicit paid at timestamp is kept", func(t *testing.T) {
		h, create, ledger, _ := newFixture()
		plan := createPlanForTest(t, create, ledger)

		paidAt := time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)
		result, err := h.Handle(ctx, MarkPaymentPaidCommand{
			PlanID:    plan.ID,
			PaymentID: plan.Payments[0].ID,
			PaidAt:    paidAt,
		})
		require.NoError(t, err)
		assert.Equal(t, paidAt, *result.Payment.PaidAt)
	})

	t.Run("last payment completes the plan", func(t *testing.T) {
		h, create, ledger, repo := newFixture()
		plan := createPlanForTest(t, create, ledger)

		for _, payment := range plan.Payments {
			_, err := h.Handle(ctx, MarkPaymentPaidCommand{PlanID: plan.ID, PaymentID: payment.ID})
			require.NoError(t, err)
		}

		stored, err := repo.PlanByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanStatusCompleted, stored.Status)
		assert.True(t, stored.RemainingAmount.IsZero())
		assert.Nil(t, stored.NextPaymentDate)
	})

	t.Run("completion does not release the transaction claim", func(t *testing.T) {
		h, create, ledger, _ := newFixture()
		accountID := ledger.addAccount(domain.AccountTypeCreditCard)
		txnID := ledger.addExpense(accountID, "1200000", "JPY")

		plan, err := create.Handle(ctx, CreatePlanCommand{
			TransactionIDs: []uuid.UUID{txnID},
			Parameters:     installmentParams(),
		})
		require.NoError(t, err)

		for _, payment := range plan.Payments {
			_, err := h.Handle(ctx, MarkPaymentPaidCommand{PlanID: plan.ID, PaymentID: payment.ID})
			require.NoError(t, err)
		}

		// A settled expense cannot be planned again
		_, err = create.Handle(ctx, CreatePlanCommand{
			TransactionIDs: []uuid.UUID{txnID},
			Parameters:     installmentParams(),
		})
		require.Error(t, err)
		assert.Equal(t, "TRANSACTION_ALREADY_PLANNED", domain.CodeOf(err))
	})

	t.Run("double settlement is an invalid state", func(t *testing.T) {
		h, create, ledger, _ := newFixture()
		plan := createPlanForTest(t, create, ledger)

		_, err := h.Handle(ctx, MarkPaymentPaidCommand{PlanID: plan.ID, PaymentID: plan.Payments[0].ID})
		require.NoError(t, err)

		_, err = h.Handle(ctx, MarkPaymentPaidCommand{PlanID: plan.ID, PaymentID: plan.Payments[0].ID})
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
		assert.Equal(t, "PAYMENT_ALREADY_PAID", domain.CodeOf(err))
	})

	t.Run("unknown plan", func(t *testing.T) {
		h, _, _, _ := newFixture()

		_, err := h.Handle(ctx, MarkPaymentPaidCommand{PlanID: uuid.New(), PaymentID: uuid.New()})
		require.Error(t, err)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("payment of another plan is not found", func(t *testing.T) {
		h, create, ledger, _ := newFixture()
		plan1 := createPlanForTest(t, create, ledger)
		plan2 := createPlanForTest(t, create, ledger)

		_, err := h.Handle(ctx, MarkPaymentPaidCommand{PlanID: plan1.ID, PaymentID: plan2.Payments[0].ID})
		require.Error(t, err)
		assert.Equal(t, "PAYMENT_NOT_FOUND", domain.CodeOf(err))
	})
}

func TestCancelPlanHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels and releases the transaction claims", func(t *testing.T) {
		create, ledger, repo := newCreateFixture()
		h := NewCancelPlanHandler(repo)

		accountID := ledger.addAccount(domain.AccountTypeCreditCard)
		txnID := ledger.addExpense(accountID, "1200000", "JPY")
		plan, err := create.Handle(ctx, CreatePlanCommand{
			TransactionIDs: []uuid.UUID{txnID},
			Parameters:     installmentParams(),
		})
		require.NoError(t, err)

		cancelled, err := h.Handle(ctx, CancelPlanCommand{PlanID: plan.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.PlanStatusCancelled, cancelled.Status)
		assert.Nil(t, cancelled.NextPaymentDate)

		// The transaction is plannable again
		_, err = create.Handle(ctx, CreatePlanCommand{
			TransactionIDs: []uuid.UUID{txnID},
			Parameters:     installmentParams(),
		})
		require.NoError(t, err)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		create, ledger, repo := newCreateFixture()
		h := NewCancelPlanHandler(repo)
		plan := createPlanForTest(t, create, ledger)

		_, err := h.Handle(ctx, CancelPlanCommand{PlanID: plan.ID})
		require.NoError(t, err)

		_, err = h.Handle(ctx, CancelPlanCommand{PlanID: plan.ID})
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, _, repo := newCreateFixture()
		h := NewCancelPlanHandler(repo)

		_, err := h.Handle(ctx, CancelPlanCommand{PlanID: uuid.New()})
		require.Error(t, err)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestSweepOverdueHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("marks past due payments and is idempotent", func(t *testing.T) {
		create, ledger, repo := newCreateFixture()
		plan := createPlanForTest(t, create, ledger)

		// One day past the second due date: two payments are past due
		sweepTime := plan.Payments[1].DueDate.AddDate(0, 0, 1)
		h := NewSweepOverdueHandler(repo, fixedClock{now: sweepTime})

		marked, err := h.Handle(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), marked)

		marked, err = h.Handle(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), marked)

		stored, err := repo.PlanByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusOverdue, stored.Payments[0].Status)
		assert.Equal(t, domain.PaymentStatusOverdue, stored.Payments[1].Status)
		assert.Equal(t, domain.PaymentStatusPending, stored.Payments[2].Status)
	})
}
