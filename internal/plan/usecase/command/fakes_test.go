package command

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// fixedClock pins the wall clock for deterministic schedules
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// memoryLedger is an in-memory LedgerDirectory
type memoryLedger struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]domain.TransactionInfo
	accounts     map[uuid.UUID]domain.AccountInfo
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		transactions: make(map[uuid.UUID]domain.TransactionInfo),
		accounts:     make(map[uuid.UUID]domain.AccountInfo),
	}
}

func (l *memoryLedger) addAccount(accountType domain.AccountType) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New()
	l.accounts[id] = domain.AccountInfo{ID: id, Type: accountType}
	return id
}

func (l *memoryLedger) addExpense(accountID uuid.UUID, amount, currency string) uuid.UUID {
	return l.addTransaction(accountID, amount, currency, domain.TransactionTypeExpense)
}

func (l *memoryLedger) addTransaction(accountID uuid.UUID, amount, currency string, txnType domain.TransactionType) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New()
	l.transactions[id] = domain.TransactionInfo{
		ID:        id,
		AccountID: accountID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  currency,
		Type:      txnType,
	}
	return id
}

func (l *memoryLedger) TransactionByID(_ context.Context, id uuid.UUID) (*domain.TransactionInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	txn, ok := l.transactions[id]
	if !ok {
		return nil, domain.NewNotFoundError("TRANSACTION_NOT_FOUND", "transaction not found")
	}
	return &txn, nil
}

func (l *memoryLedger) AccountByID(_ context.Context, id uuid.UUID) (*domain.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	account, ok := l.accounts[id]
	if !ok {
		return nil, domain.NewNotFoundError("ACCOUNT_NOT_FOUND", "account not found")
	}
	return &account, nil
}

// memoryPlanRepository is an in-memory PlanRepository sharing claim state
// with a memoryLedger. Safe for the bulk handler's concurrent writes.
type memoryPlanRepository struct {
	mu     sync.Mutex
	ledger *memoryLedger
	plans  map[uuid.UUID]*domain.PaymentPlan

	failCreates bool
}

func newMemoryPlanRepository(ledger *memoryLedger) *memoryPlanRepository {
	return &memoryPlanRepository{
		ledger: ledger,
		plans:  make(map[uuid.UUID]*domain.PaymentPlan),
	}
}

func (r *memoryPlanRepository) CreatePlanWithLinks(_ context.Context, plan *domain.PaymentPlan, transactionIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreates {
		return domain.NewInfrastructureError("STORAGE_WRITE_FAILED", "storage write failed", nil)
	}

	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, id := range transactionIDs {
		txn, ok := r.ledger.transactions[id]
		if !ok || txn.PlanID != nil {
			return domain.NewConflictError("TRANSACTION_ALREADY_PLANNED", "transaction is already linked to an active plan")
		}
	}
	for _, id := range transactionIDs {
		txn := r.ledger.transactions[id]
		planID := plan.ID
		txn.PlanID = &planID
		r.ledger.transactions[id] = txn
	}

	clone := *plan
	r.plans[plan.ID] = &clone
	return nil
}

func (r *memoryPlanRepository) PlanByID(_ context.Context, id uuid.UUID) (*domain.PaymentPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, domain.NewNotFoundError("PLAN_NOT_FOUND", "plan not found")
	}
	clone := *plan
	return &clone, nil
}

func (r *memoryPlanRepository) ListPlans(_ context.Context, filter domain.PlanFilter) ([]domain.PaymentPlan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var plans []domain.PaymentPlan
	for _, plan := range r.plans {
		if filter.Status != nil && plan.Status != *filter.Status {
			continue
		}
		plans = append(plans, *plan)
	}
	return plans, int64(len(plans)), nil
}

func (r *memoryPlanRepository) MutatePlan(_ context.Context, id uuid.UUID, mutate func(*domain.PaymentPlan) error) (*domain.PaymentPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, ok := r.plans[id]
	if !ok {
		return nil, domain.NewNotFoundError("PLAN_NOT_FOUND", "plan not found")
	}

	// Mutate a copy so a failed mutation leaves the stored plan untouched
	clone := *plan
	clone.Payments = append([]domain.PlanPayment(nil), plan.Payments...)
	wasActive := plan.Status == domain.PlanStatusActive

	if err := mutate(&clone); err != nil {
		return nil, err
	}
	clone.Version++
	r.plans[id] = &clone

	if wasActive && clone.Status == domain.PlanStatusCancelled {
		r.releaseClaims(id)
	}

	result := clone
	return &result, nil
}

func (r *memoryPlanRepository) releaseClaims(planID uuid.UUID) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for id, txn := range r.ledger.transactions {
		if txn.PlanID != nil && *txn.PlanID == planID {
			txn.PlanID = nil
			r.ledger.transactions[id] = txn
		}
	}
}

func (r *memoryPlanRepository) UpcomingPayments(_ context.Context, windowEnd time.Time) ([]domain.UpcomingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []domain.UpcomingPayment
	for _, plan := range r.plans {
		if plan.Status != domain.PlanStatusActive {
			continue
		}
		for _, payment := range plan.Payments {
			if !payment.Unpaid() || payment.DueDate.After(windowEnd) {
				continue
			}
			rows = append(rows, domain.UpcomingPayment{
				PlanID:        plan.ID,
				PaymentID:     payment.ID,
				AccountID:     plan.AccountID,
				PaymentNumber: payment.PaymentNumber,
				DueDate:       payment.DueDate,
				Amount:        payment.Total,
				Currency:      plan.Currency,
				Status:        payment.Status,
			})
		}
	}
	return rows, nil
}

func (r *memoryPlanRepository) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var marked int64
	cutoff := domain.DateOf(asOf)
	for _, plan := range r.plans {
		if plan.Status != domain.PlanStatusActive {
			continue
		}
		for i := range plan.Payments {
			payment := &plan.Payments[i]
			if payment.Status == domain.PaymentStatusPending && payment.DueDate.Before(cutoff) {
				payment.Status = domain.PaymentStatusOverdue
				marked++
			}
		}
	}
	return marked, nil
}
