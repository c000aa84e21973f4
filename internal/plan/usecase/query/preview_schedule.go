package query

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// PreviewScheduleQuery carries the inputs for a dry-run schedule computation.
// Nothing is persisted and no transactions are claimed.
type PreviewScheduleQuery struct {
	Principal  decimal.Decimal
	Currency   string
	Parameters domain.PlanParameters
	StartDate  time.Time
}

// PreviewScheduleHandler handles schedule preview queries
type PreviewScheduleHandler struct {
	clock domain.Clock
}

// NewPreviewScheduleHandler creates a new preview schedule handler
func NewPreviewScheduleHandler(clock domain.Clock) *PreviewScheduleHandler {
	return &PreviewScheduleHandler{clock: clock}
}

// Handle computes the schedule the same way plan creation does, so a
// preview always matches what a subsequent create persists.
func (h *PreviewScheduleHandler) Handle(_ context.Context, q PreviewScheduleQuery) (*domain.Schedule, error) {
	if !q.Principal.IsPositive() {
		return nil, domain.NewValidationError("PRINCIPAL_NOT_POSITIVE", "principal must be positive")
	}
	if q.Currency == "" {
		return nil, domain.NewValidationError("CURRENCY_REQUIRED", "currency is required")
	}
	if err := q.Parameters.Validate(); err != nil {
		return nil, err
	}

	startDate := q.StartDate
	if startDate.IsZero() {
		startDate = domain.DateOf(h.clock.Now())
	} else {
		startDate = domain.DateOf(startDate)
	}

	schedule, err := domain.BuildSchedule(q.Principal, q.Currency, q.Parameters, startDate)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}
