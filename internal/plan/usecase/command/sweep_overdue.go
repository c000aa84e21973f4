package command

import (
	"context"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// SweepOverdueHandler refreshes the persisted OVERDUE projection for unpaid
// payments of active plans. The projection only serves reminder queries;
// read paths derive overdue-ness themselves, so the sweep can lag without
// affecting correctness. Idempotent.
type SweepOverdueHandler struct {
	repo  domain.PlanRepository
	clock domain.Clock
}

// NewSweepOverdueHandler creates a new sweep handler
func NewSweepOverdueHandler(repo domain.PlanRepository, clock domain.Clock) *SweepOverdueHandler {
	return &SweepOverdueHandler{repo: repo, clock: clock}
}

// Handle runs one sweep and returns the number of payments marked overdue
func (h *SweepOverdueHandler) Handle(ctx context.Context) (int64, error) {
	return h.repo.MarkOverdue(ctx, h.clock.Now())
}
