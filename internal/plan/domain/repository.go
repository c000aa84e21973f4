package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanFilter narrows and pages plan listings
type PlanFilter struct {
	Status      *PlanStatus
	PaymentType *PaymentType
	AccountID   *uuid.UUID
	SortBy      string // created_at | start_date | next_payment_date | remaining_amount
	SortDesc    bool
	Limit       int
	Offset      int
}

// UpcomingPayment is the read model row of the cross-plan upcoming view
type UpcomingPayment struct {
	PlanID        uuid.UUID       `json:"plan_id"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	PaymentNumber int             `json:"payment_number"`
	DueDate       time.Time       `json:"due_date"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
}

// PlanRepository is the persistence contract for plans and their payments.
//
// MutatePlan must serialize concurrent mutations of the same plan
// (single-writer-per-plan): implementations lock the plan row, load its
// payments, run the mutation, and persist the result in one transaction.
type PlanRepository interface {
	// CreatePlanWithLinks persists the plan with its payments and link rows
	// and claims the funding transactions, all-or-nothing. A transaction
	// already claimed by another plan fails the whole write with CONFLICT.
	CreatePlanWithLinks(ctx context.Context, plan *PaymentPlan, transactionIDs []uuid.UUID) error

	// PlanByID loads a plan with payments ordered by payment number
	PlanByID(ctx context.Context, id uuid.UUID) (*PaymentPlan, error)

	// ListPlans returns a filtered page of plans plus the unpaged total
	ListPlans(ctx context.Context, filter PlanFilter) ([]PaymentPlan, int64, error)

	// MutatePlan applies mutate to the locked plan and persists the result.
	// A mutation error rolls the transaction back untouched. A transition
	// to CANCELLED releases the plan's transaction claims in the same
	// transaction.
	MutatePlan(ctx context.Context, id uuid.UUID, mutate func(*PaymentPlan) error) (*PaymentPlan, error)

	// UpcomingPayments returns unpaid payments of ACTIVE plans due on or
	// before windowEnd, ordered by (dueDate, planID, paymentNumber)
	UpcomingPayments(ctx context.Context, windowEnd time.Time) ([]UpcomingPayment, error)

	// MarkOverdue refreshes the cached OVERDUE projection for unpaid
	// payments of ACTIVE plans due before asOf. Idempotent.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}
