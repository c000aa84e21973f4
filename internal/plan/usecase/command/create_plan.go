package command

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// CreatePlanCommand represents the command to create a payment plan from
// one or more expense transactions
type CreatePlanCommand struct {
	TransactionIDs []uuid.UUID
	Parameters     domain.PlanParameters
	StartDate      time.Time // zero value means today
}

// CreatePlanHandler validates the funding transactions, generates the
// schedule and persists plan, payments and linkage atomically
type CreatePlanHandler struct {
	repo   domain.PlanRepository
	ledger domain.LedgerDirectory
	clock  domain.Clock
}

// NewCreatePlanHandler creates a new create plan handler
func NewCreatePlanHandler(repo domain.PlanRepository, ledger domain.LedgerDirectory, clock domain.Clock) *CreatePlanHandler {
	return &CreatePlanHandler{repo: repo, ledger: ledger, clock: clock}
}

// Handle executes the create plan command
func (h *CreatePlanHandler) Handle(ctx context.Context, cmd CreatePlanCommand) (*domain.PaymentPlan, error) {
	if len(cmd.TransactionIDs) == 0 {
		return nil, domain.NewValidationError("NO_TRANSACTIONS", "at least one transaction is required")
	}
	if err := cmd.Parameters.Validate(); err != nil {
		return nil, err
	}

	funding, err := h.loadFunding(ctx, cmd.TransactionIDs)
	if err != nil {
		return nil, err
	}

	account, err := h.ledger.AccountByID(ctx, funding[0].AccountID)
	if err != nil {
		return nil, err
	}
	if account.Type != domain.AccountTypeCreditCard {
		return nil, domain.NewConflictError("NOT_CREDIT_CARD_ACCOUNT", "plans can only be created for credit card accounts")
	}

	principal := decimal.Zero
	for _, txn := range funding {
		principal = principal.Add(txn.Amount)
	}

	startDate := cmd.StartDate
	if startDate.IsZero() {
		startDate = domain.DateOf(h.clock.Now())
	}

	currency := funding[0].Currency
	schedule, err := domain.BuildSchedule(principal, currency, cmd.Parameters, startDate)
	if err != nil {
		return nil, err
	}

	plan := domain.NewPaymentPlan(account.ID, currency, cmd.Parameters, principal, schedule, funding, startDate)

	if err := h.repo.CreatePlanWithLinks(ctx, plan, cmd.TransactionIDs); err != nil {
		return nil, err
	}
	return plan, nil
}

// loadFunding resolves and cross-checks the funding transactions: all must
// exist, be unplanned expenses, share one currency and one account
func (h *CreatePlanHandler) loadFunding(ctx context.Context, ids []uuid.UUID) ([]domain.TransactionInfo, error) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	funding := make([]domain.TransactionInfo, 0, len(ids))

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, domain.NewValidationError("DUPLICATE_TRANSACTION", "duplicate transaction id in request")
		}
		seen[id] = struct{}{}

		txn, err := h.ledger.TransactionByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if txn.Type != domain.TransactionTypeExpense {
			return nil, domain.NewConflictError("NOT_AN_EXPENSE", "only expense transactions can be planned")
		}
		if txn.AlreadyPlanned() {
			return nil, domain.NewConflictError("TRANSACTION_ALREADY_PLANNED", "transaction is already linked to an active plan")
		}
		if !txn.Amount.IsPositive() {
			return nil, domain.NewValidationError("TRANSACTION_AMOUNT_NOT_POSITIVE", "transaction amount must be positive")
		}
		if len(funding) > 0 {
			if txn.Currency != funding[0].Currency {
				return nil, domain.NewConflictError("MIXED_CURRENCIES", "all transactions must share one currency")
			}
			if txn.AccountID != funding[0].AccountID {
				return nil, domain.NewConflictError("MIXED_ACCOUNTS", "all transactions must belong to one account")
			}
		}
		funding = append(funding, *txn)
	}
	return funding, nil
}
