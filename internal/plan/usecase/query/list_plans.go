package query

import (
	"context"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListPlansQuery represents the query to list plans
type ListPlansQuery struct {
	Filter domain.PlanFilter
}

// PlanPage is one page of a plan listing
type PlanPage struct {
	Plans  []domain.PaymentPlan `json:"plans"`
	Total  int64                `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// ListPlansHandler handles list plans queries
type ListPlansHandler struct {
	repo domain.PlanRepository
}

// NewListPlansHandler creates a new list plans handler
func NewListPlansHandler(repo domain.PlanRepository) *ListPlansHandler {
	return &ListPlansHandler{repo: repo}
}

// Handle executes the list plans query
func (h *ListPlansHandler) Handle(ctx context.Context, q ListPlansQuery) (*PlanPage, error) {
	filter := q.Filter
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	plans, total, err := h.repo.ListPlans(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &PlanPage{
		Plans:  plans,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}
