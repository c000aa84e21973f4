package plan

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	ledgerrepo "github.com/lienduong188/finance-tracker-sub000/internal/ledger/repository"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/repository"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/command"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/query"
)

// ProvidePlanRepository provides the plan repository with tracing
func ProvidePlanRepository(db *gorm.DB) domain.PlanRepository {
	return repository.NewGormPlanRepositoryWithTracing(db)
}

// ProvideLedgerDirectory provides the ledger lookup used for funding validation
func ProvideLedgerDirectory(db *gorm.DB) domain.LedgerDirectory {
	return ledgerrepo.NewGormLedgerDirectory(db)
}

// ProvideClock provides the wall clock
func ProvideClock() domain.Clock {
	return domain.SystemClock{}
}

// Command Handlers Providers
func ProvideCreatePlanHandler(repo domain.PlanRepository, ledger domain.LedgerDirectory, clock domain.Clock) *command.CreatePlanHandler {
	return command.NewCreatePlanHandler(repo, ledger, clock)
}

func ProvideCreatePlansBulkHandler(create *command.CreatePlanHandler) *command.CreatePlansBulkHandler {
	return command.NewCreatePlansBulkHandler(create)
}

func ProvideMarkPaymentPaidHandler(repo domain.PlanRepository, clock domain.Clock) *command.MarkPaymentPaidHandler {
	return command.NewMarkPaymentPaidHandler(repo, clock)
}

func ProvideCancelPlanHandler(repo domain.PlanRepository) *command.CancelPlanHandler {
	return command.NewCancelPlanHandler(repo)
}

func ProvideSweepOverdueHandler(repo domain.PlanRepository, clock domain.Clock) *command.SweepOverdueHandler {
	return command.NewSweepOverdueHandler(repo, clock)
}

// Query Handlers Providers
func ProvideGetPlanHandler(repo domain.PlanRepository, clock domain.Clock) *query.GetPlanHandler {
	return query.NewGetPlanHandler(repo, clock)
}

func ProvideListPlansHandler(repo domain.PlanRepository) *query.ListPlansHandler {
	return query.NewListPlansHandler(repo)
}

func ProvideUpcomingPaymentsHandler(repo domain.PlanRepository, clock domain.Clock) *query.UpcomingPaymentsHandler {
	return query.NewUpcomingPaymentsHandler(repo, clock)
}

func ProvidePreviewScheduleHandler(clock domain.Clock) *query.PreviewScheduleHandler {
	return query.NewPreviewScheduleHandler(clock)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvidePlanRepository,
	ProvideLedgerDirectory,
	ProvideClock,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreatePlanHandler,
	ProvideCreatePlansBulkHandler,
	ProvideMarkPaymentPaidHandler,
	ProvideCancelPlanHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetPlanHandler,
	ProvideListPlansHandler,
	ProvideUpcomingPaymentsHandler,
	ProvidePreviewScheduleHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)
