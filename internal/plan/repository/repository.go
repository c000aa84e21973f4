package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ledgerdomain "github.com/lienduong188/finance-tracker-sub000/internal/ledger/domain"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// sortColumns whitelists ListPlans sort keys
var sortColumns = map[string]string{
	"created_at":        "created_at",
	"start_date":        "start_date",
	"next_payment_date": "next_payment_date",
	"remaining_amount":  "remaining_amount",
}

// GormPlanRepository persists plans, payments and transaction claims
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new plan repository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

func (r *GormPlanRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.PaymentPlan{},
		&domain.PlanPayment{},
		&domain.PlanTransactionLink{},
	)
}

// CreatePlanWithLinks claims the funding transactions and inserts the plan,
// its payments and its link rows in one transaction. Any claim miss rolls
// everything back.
func (r *GormPlanRepository) CreatePlanWithLinks(ctx context.Context, plan *domain.PaymentPlan, transactionIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ledgerdomain.Transaction{}).
			Where("id IN ? AND plan_id IS NULL", transactionIDs).
			Update("plan_id", plan.ID)
		if res.Error != nil {
			return domain.NewInfrastructureError("CLAIM_FAILED", "failed to claim transactions", res.Error)
		}
		if res.RowsAffected != int64(len(transactionIDs)) {
			return domain.NewConflictError("TRANSACTION_ALREADY_PLANNED", "a transaction is already linked to an active plan")
		}

		if err := tx.Create(plan).Error; err != nil {
			return domain.NewInfrastructureError("PLAN_CREATE_FAILED", "failed to persist plan", err)
		}
		return nil
	})
	return err
}

// PlanByID loads a plan with its payments ordered by payment number
func (r *GormPlanRepository) PlanByID(ctx context.Context, id uuid.UUID) (*domain.PaymentPlan, error) {
	var plan domain.PaymentPlan
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_number ASC")
		}).
		Preload("Links").
		First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("PLAN_NOT_FOUND", "plan not found")
		}
		return nil, domain.NewInfrastructureError("PLAN_READ_FAILED", "failed to load plan", err)
	}
	return &plan, nil
}

// ListPlans returns a filtered page of plans plus the unpaged total
func (r *GormPlanRepository) ListPlans(ctx context.Context, filter domain.PlanFilter) ([]domain.PaymentPlan, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.PaymentPlan{})

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.PaymentType != nil {
		q = q.Where("payment_type = ?", *filter.PaymentType)
	}
	if filter.AccountID != nil {
		q = q.Where("account_id = ?", *filter.AccountID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, domain.NewInfrastructureError("PLAN_LIST_FAILED", "failed to count plans", err)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	var plans []domain.PaymentPlan
	err := q.Order(column + " " + direction).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&plans).Error
	if err != nil {
		return nil, 0, domain.NewInfrastructureError("PLAN_LIST_FAILED", "failed to list plans", err)
	}
	return plans, total, nil
}

// MutatePlan locks the plan row, loads its payments, applies mutate and
// persists the result. Mutation errors roll back untouched. A transition to
// CANCELLED releases the plan's transaction claims in the same transaction.
func (r *GormPlanRepository) MutatePlan(ctx context.Context, id uuid.UUID, mutate func(*domain.PaymentPlan) error) (*domain.PaymentPlan, error) {
	var result *domain.PaymentPlan

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.PaymentPlan{})
		// SQLite (tests) serializes writers on its own and rejects FOR UPDATE
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var plan domain.PaymentPlan
		if err := q.First(&plan, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("PLAN_NOT_FOUND", "plan not found")
			}
			return domain.NewInfrastructureError("PLAN_READ_FAILED", "failed to load plan", err)
		}

		if err := tx.Order("payment_number ASC").Find(&plan.Payments, "plan_id = ?", plan.ID).Error; err != nil {
			return domain.NewInfrastructureError("PLAN_READ_FAILED", "failed to load payments", err)
		}

		previousStatus := plan.Status
		if err := mutate(&plan); err != nil {
			return err
		}

		plan.Version++
		if err := tx.Omit("Payments", "Links").Save(&plan).Error; err != nil {
			return domain.NewInfrastructureError("PLAN_WRITE_FAILED", "failed to persist plan", err)
		}
		for i := range plan.Payments {
			if err := tx.Save(&plan.Payments[i]).Error; err != nil {
				return domain.NewInfrastructureError("PLAN_WRITE_FAILED", "failed to persist payment", err)
			}
		}

		if previousStatus != domain.PlanStatusCancelled && plan.Status == domain.PlanStatusCancelled {
			err := tx.Model(&ledgerdomain.Transaction{}).
				Where("plan_id = ?", plan.ID).
				Update("plan_id", nil).Error
			if err != nil {
				return domain.NewInfrastructureError("CLAIM_RELEASE_FAILED", "failed to release transaction claims", err)
			}
		}

		result = &plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpcomingPayments returns unpaid payments of ACTIVE plans due on or before
// windowEnd, ordered by (due date, plan id, payment number)
func (r *GormPlanRepository) UpcomingPayments(ctx context.Context, windowEnd time.Time) ([]domain.UpcomingPayment, error) {
	var rows []domain.UpcomingPayment
	err := r.db.WithContext(ctx).
		Table("plan_payments").
		Select("plan_payments.id AS payment_id, plan_payments.plan_id, payment_plans.account_id, " +
			"plan_payments.payment_number, plan_payments.due_date, plan_payments.total AS amount, " +
			"payment_plans.currency, plan_payments.status").
		Joins("JOIN payment_plans ON payment_plans.id = plan_payments.plan_id").
		Where("payment_plans.status = ?", domain.PlanStatusActive).
		Where("plan_payments.status IN ?", []domain.PaymentStatus{domain.PaymentStatusPending, domain.PaymentStatusOverdue}).
		Where("plan_payments.due_date <= ?", windowEnd).
		Order("plan_payments.due_date ASC, plan_payments.plan_id ASC, plan_payments.payment_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.NewInfrastructureError("UPCOMING_READ_FAILED", "failed to load upcoming payments", err)
	}
	return rows, nil
}

// MarkOverdue refreshes the cached OVERDUE projection. Idempotent: a second
// run with the same asOf affects zero rows.
func (r *GormPlanRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	activePlans := r.db.Model(&domain.PaymentPlan{}).
		Select("id").
		Where("status = ?", domain.PlanStatusActive)

	res := r.db.WithContext(ctx).Model(&domain.PlanPayment{}).
		Where("status = ?", domain.PaymentStatusPending).
		Where("due_date < ?", domain.DateOf(asOf)).
		Where("plan_id IN (?)", activePlans).
		Update("status", domain.PaymentStatusOverdue)
	if res.Error != nil {
		return 0, domain.NewInfrastructureError("SWEEP_FAILED", "failed to mark overdue payments", res.Error)
	}
	return res.RowsAffected, nil
}
