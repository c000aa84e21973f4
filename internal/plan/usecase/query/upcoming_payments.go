package query

import (
	"context"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

const maxWindowDays = 365

// UpcomingPaymentsQuery represents the query for the cross-plan reminder view
type UpcomingPaymentsQuery struct {
	WindowDays int
}

// UpcomingPaymentsHandler handles upcoming payments queries.
// Read-only: overdue-ness shown here is computed, never persisted by a read.
type UpcomingPaymentsHandler struct {
	repo  domain.PlanRepository
	clock domain.Clock
}

// NewUpcomingPaymentsHandler creates a new upcoming payments handler
func NewUpcomingPaymentsHandler(repo domain.PlanRepository, clock domain.Clock) *UpcomingPaymentsHandler {
	return &UpcomingPaymentsHandler{repo: repo, clock: clock}
}

// Handle returns unpaid payments of active plans due within the window.
// Already-overdue payments are always surfaced regardless of window size;
// they sit below today, which every window includes.
func (h *UpcomingPaymentsHandler) Handle(ctx context.Context, q UpcomingPaymentsQuery) ([]domain.UpcomingPayment, error) {
	if q.WindowDays < 0 {
		return nil, domain.NewValidationError("WINDOW_NEGATIVE", "window days must not be negative")
	}
	if q.WindowDays > maxWindowDays {
		return nil, domain.NewValidationError("WINDOW_TOO_LARGE", "window days must not exceed 365")
	}

	today := domain.DateOf(h.clock.Now())
	// Due dates are stored at midnight, so this bound is inclusive of the last day
	windowEnd := today.AddDate(0, 0, q.WindowDays)

	rows, err := h.repo.UpcomingPayments(ctx, windowEnd)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].DueDate.Before(today) {
			rows[i].Status = domain.PaymentStatusOverdue
		} else {
			rows[i].Status = domain.PaymentStatusPending
		}
	}
	return rows, nil
}
