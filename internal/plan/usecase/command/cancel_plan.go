package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// CancelPlanCommand represents the command to cancel a plan
type CancelPlanCommand struct {
	PlanID uuid.UUID
}

// CancelPlanHandler handles the cancel plan command. Cancellation is a
// business-state transition: the plan and its payments are retained for
// audit, and the funding transactions become plannable again.
type CancelPlanHandler struct {
	repo domain.PlanRepository
}

// NewCancelPlanHandler creates a new cancel plan handler
func NewCancelPlanHandler(repo domain.PlanRepository) *CancelPlanHandler {
	return &CancelPlanHandler{repo: repo}
}

// Handle executes the cancel plan command
func (h *CancelPlanHandler) Handle(ctx context.Context, cmd CancelPlanCommand) (*domain.PaymentPlan, error) {
	return h.repo.MutatePlan(ctx, cmd.PlanID, func(plan *domain.PaymentPlan) error {
		return plan.Cancel()
	})
}
