package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// GetPlanQuery represents the query to get a plan with its payments
type GetPlanQuery struct {
	ID uuid.UUID
}

// GetPlanHandler handles get plan queries
type GetPlanHandler struct {
	repo  domain.PlanRepository
	clock domain.Clock
}

// NewGetPlanHandler creates a new get plan handler
func NewGetPlanHandler(repo domain.PlanRepository, clock domain.Clock) *GetPlanHandler {
	return &GetPlanHandler{repo: repo, clock: clock}
}

// Handle executes the get plan query. Payment statuses are presented as
// observed at read time: a pending payment past its due date shows OVERDUE
// without any write.
func (h *GetPlanHandler) Handle(ctx context.Context, q GetPlanQuery) (*domain.PaymentPlan, error) {
	plan, err := h.repo.PlanByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	if plan.Status == domain.PlanStatusActive {
		now := h.clock.Now()
		for i := range plan.Payments {
			plan.Payments[i].Status = plan.Payments[i].ObservedStatus(now)
		}
	}
	return plan, nil
}
