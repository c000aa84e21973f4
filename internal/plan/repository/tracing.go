package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

var tracer = otel.Tracer("plan-repository")

// GormPlanRepositoryWithTracing wraps GormPlanRepository with tracing
type GormPlanRepositoryWithTracing struct {
	*GormPlanRepository
}

// NewGormPlanRepositoryWithTracing creates a new repository with tracing
func NewGormPlanRepositoryWithTracing(db *gorm.DB) *GormPlanRepositoryWithTracing {
	return &GormPlanRepositoryWithTracing{
		GormPlanRepository: NewGormPlanRepository(db),
	}
}

// CreatePlanWithLinks with tracing
func (r *GormPlanRepositoryWithTracing) CreatePlanWithLinks(ctx context.Context, plan *domain.PaymentPlan, transactionIDs []uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "repository.CreatePlanWithLinks",
		trace.WithAttributes(
			attribute.String("plan.id", plan.ID.String()),
			attribute.String("plan.payment_type", string(plan.PaymentType)),
			attribute.Int("plan.transactions", len(transactionIDs)),
		),
	)
	defer span.End()

	err := r.GormPlanRepository.CreatePlanWithLinks(ctx, plan, transactionIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("plan.payments", len(plan.Payments)))
	return nil
}

// PlanByID with tracing
func (r *GormPlanRepositoryWithTracing) PlanByID(ctx context.Context, id uuid.UUID) (*domain.PaymentPlan, error) {
	ctx, span := tracer.Start(ctx, "repository.PlanByID",
		trace.WithAttributes(attribute.String("plan.id", id.String())),
	)
	defer span.End()

	plan, err := r.GormPlanRepository.PlanByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("plan.status", string(plan.Status)))
	return plan, nil
}

// ListPlans with tracing
func (r *GormPlanRepositoryWithTracing) ListPlans(ctx context.Context, filter domain.PlanFilter) ([]domain.PaymentPlan, int64, error) {
	ctx, span := tracer.Start(ctx, "repository.ListPlans")
	defer span.End()

	plans, total, err := r.GormPlanRepository.ListPlans(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(
		attribute.Int("plans.page_size", len(plans)),
		attribute.Int64("plans.total", total),
	)
	return plans, total, nil
}

// MutatePlan with tracing
func (r *GormPlanRepositoryWithTracing) MutatePlan(ctx context.Context, id uuid.UUID, mutate func(*domain.PaymentPlan) error) (*domain.PaymentPlan, error) {
	ctx, span := tracer.Start(ctx, "repository.MutatePlan",
		trace.WithAttributes(attribute.String("plan.id", id.String())),
	)
	defer span.End()

	plan, err := r.GormPlanRepository.MutatePlan(ctx, id, mutate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("plan.status", string(plan.Status)))
	return plan, nil
}

// UpcomingPayments with tracing
func (r *GormPlanRepositoryWithTracing) UpcomingPayments(ctx context.Context, windowEnd time.Time) ([]domain.UpcomingPayment, error) {
	ctx, span := tracer.Start(ctx, "repository.UpcomingPayments",
		trace.WithAttributes(attribute.String("window.end", windowEnd.Format(time.RFC3339))),
	)
	defer span.End()

	rows, err := r.GormPlanRepository.UpcomingPayments(ctx, windowEnd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("upcoming.count", len(rows)))
	return rows, nil
}

// MarkOverdue with tracing
func (r *GormPlanRepositoryWithTracing) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "repository.MarkOverdue",
		trace.WithAttributes(attribute.String("sweep.as_of", asOf.Format(time.RFC3339))),
	)
	defer span.End()

	count, err := r.GormPlanRepository.MarkOverdue(ctx, asOf)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("sweep.marked", count))
	return count, nil
}
