//go:build wireinject
// +build wireinject

package plan

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/handler"
	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/command"
	"github.com/lienduong188/finance-tracker-sub000/kafka"
)

// InitializeHandler initializes the plan handler with all dependencies
func InitializeHandler(db *gorm.DB, kafkaPublisher *kafka.Publisher) (*handler.PlanHandler, error) {
	wire.Build(
		AllHandlersSet,
		handler.NewPlanHandler,
	)
	return nil, nil
}

// InitializeSweepHandler initializes the standalone sweep command handler
func InitializeSweepHandler(db *gorm.DB) (*command.SweepOverdueHandler, error) {
	wire.Build(
		ProvidePlanRepository,
		ProvideClock,
		ProvideSweepOverdueHandler,
	)
	return nil, nil
}
