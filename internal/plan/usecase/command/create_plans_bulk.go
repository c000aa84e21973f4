package command

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// defaultBulkWorkers bounds the fan-out of independent createPlan calls
const defaultBulkWorkers = 4

// CreatePlansBulkCommand applies the same plan parameters to a set of
// transactions, one plan per transaction
type CreatePlansBulkCommand struct {
	TransactionIDs []uuid.UUID
	Parameters     domain.PlanParameters
	StartDate      time.Time
}

// BulkItemError reports why one transaction of the batch failed
type BulkItemError struct {
	TransactionID uuid.UUID        `json:"transaction_id"`
	Kind          domain.ErrorKind `json:"kind"`
	Code          string           `json:"code"`
	Reason        string           `json:"reason"`
}

// BulkResult aggregates the per-item outcomes of a batch
type BulkResult struct {
	Succeeded   []*domain.PaymentPlan `json:"succeeded"`
	FailedCount int                   `json:"failed_count"`
	Errors      []BulkItemError       `json:"errors"`
}

// CreatePlansBulkHandler fans out independent createPlan calls and collects
// per-item success/failure. A failure on one transaction never aborts the
// batch; only malformed shared input or a systemic storage failure does.
type CreatePlansBulkHandler struct {
	create  *CreatePlanHandler
	workers int
}

// NewCreatePlansBulkHandler creates a new bulk handler
func NewCreatePlansBulkHandler(create *CreatePlanHandler) *CreatePlansBulkHandler {
	return &CreatePlansBulkHandler{create: create, workers: defaultBulkWorkers}
}

// Handle executes the bulk command. All workers are joined before returning.
func (h *CreatePlansBulkHandler) Handle(ctx context.Context, cmd CreatePlansBulkCommand) (*BulkResult, error) {
	if len(cmd.TransactionIDs) == 0 {
		return nil, domain.NewValidationError("EMPTY_BATCH", "at least one transaction is required")
	}
	// Shared parameters are validated once; a malformed set fails the
	// whole batch instead of repeating N identical item errors
	if err := cmd.Parameters.Validate(); err != nil {
		return nil, err
	}

	type itemOutcome struct {
		plan *domain.PaymentPlan
		err  error
	}
	outcomes := make([]itemOutcome, len(cmd.TransactionIDs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, h.workers)

	for i, txnID := range cmd.TransactionIDs {
		wg.Add(1)
		go func(i int, txnID uuid.UUID) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			plan, err := h.create.Handle(ctx, CreatePlanCommand{
				TransactionIDs: []uuid.UUID{txnID},
				Parameters:     cmd.Parameters,
				StartDate:      cmd.StartDate,
			})
			outcomes[i] = itemOutcome{plan: plan, err: err}
		}(i, txnID)
	}
	wg.Wait()

	result := &BulkResult{
		Succeeded: make([]*domain.PaymentPlan, 0, len(cmd.TransactionIDs)),
		Errors:    make([]BulkItemError, 0),
	}
	infrastructureFailures := 0

	for i, outcome := range outcomes {
		if outcome.err == nil {
			result.Succeeded = append(result.Succeeded, outcome.plan)
			continue
		}
		kind := domain.KindOf(outcome.err)
		if kind == domain.KindInfrastructure {
			infrastructureFailures++
		}
		result.FailedCount++
		result.Errors = append(result.Errors, BulkItemError{
			TransactionID: cmd.TransactionIDs[i],
			Kind:          kind,
			Code:          domain.CodeOf(outcome.err),
			Reason:        outcome.err.Error(),
		})
	}

	// Every item hitting infrastructure failure means storage itself is
	// down; propagate instead of reporting N unusable item errors
	if infrastructureFailures == len(cmd.TransactionIDs) {
		return nil, domain.NewInfrastructureError("BULK_STORAGE_FAILURE", "storage unavailable for the whole batch", nil)
	}
	return result, nil
}
