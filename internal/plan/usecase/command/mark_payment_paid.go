package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// MarkPaymentPaidCommand represents the command to settle one scheduled payment
type MarkPaymentPaidCommand struct {
	PlanID    uuid.UUID
	PaymentID uuid.UUID
	PaidAt    time.Time // zero value means now
}

// MarkPaymentPaidResult carries the settled payment and the plan state after
// the cascade (balance, counter, possible ACTIVE→COMPLETED transition)
type MarkPaymentPaidResult struct {
	Plan    *domain.PaymentPlan
	Payment *domain.PlanPayment
}

// MarkPaymentPaidHandler handles the mark payment paid command
type MarkPaymentPaidHandler struct {
	repo  domain.PlanRepository
	clock domain.Clock
}

// NewMarkPaymentPaidHandler creates a new mark payment paid handler
func NewMarkPaymentPaidHandler(repo domain.PlanRepository, clock domain.Clock) *MarkPaymentPaidHandler {
	return &MarkPaymentPaidHandler{repo: repo, clock: clock}
}

// Handle executes the command under the repository's per-plan lock, so two
// concurrent settlements of the same plan never race on the balance
func (h *MarkPaymentPaidHandler) Handle(ctx context.Context, cmd MarkPaymentPaidCommand) (*MarkPaymentPaidResult, error) {
	paidAt := cmd.PaidAt
	if paidAt.IsZero() {
		paidAt = h.clock.Now()
	}

	plan, err := h.repo.MutatePlan(ctx, cmd.PlanID, func(plan *domain.PaymentPlan) error {
		_, err := plan.ApplyPayment(cmd.PaymentID, paidAt)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &MarkPaymentPaidResult{
		Plan:    plan,
		Payment: plan.PaymentByID(cmd.PaymentID),
	}, nil
}
