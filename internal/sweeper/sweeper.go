package sweeper

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/lienduong188/finance-tracker-sub000/internal/plan/usecase/command"
	"github.com/lienduong188/finance-tracker-sub000/kafka"
	"github.com/lienduong188/finance-tracker-sub000/pkg/logger"
)

const leaseKey = "plan-service:overdue-sweep:lease"

// Sweeper periodically refreshes the persisted OVERDUE status of
// pending payments whose due date has passed. Reads never depend on it;
// it exists so listings and dashboards match the derived state.
type Sweeper struct {
	sweep     *command.SweepOverdueHandler
	publisher *kafka.Publisher
	redis     *redis.Client
	lockTTL   time.Duration
	cron      *cron.Cron
}

// New creates a sweeper. The publisher and redis client may be nil;
// publishing and leasing are then skipped.
func New(sweep *command.SweepOverdueHandler, publisher *kafka.Publisher, redisClient *redis.Client, lockTTL time.Duration) *Sweeper {
	return &Sweeper{
		sweep:     sweep,
		publisher: publisher,
		redis:     redisClient,
		lockTTL:   lockTTL,
	}
}

// Start schedules recurring sweeps with the given cron spec
func (s *Sweeper) Start(cronSpec string) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			logger.Logger.Error().Err(err).Msg("Overdue sweep failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()

	logger.Logger.Info().
		Str("cron_spec", cronSpec).
		Msg("Overdue sweeper started")
	return nil
}

// Stop stops the cron schedule and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce executes a single sweep. With Redis configured, a short lease
// ensures only one instance sweeps at a time; losing the lease is not
// an error.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	if s.redis != nil {
		acquired, err := s.redis.SetNX(ctx, leaseKey, time.Now().Format(time.RFC3339), s.lockTTL).Result()
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Sweep lease check failed, sweeping anyway")
		} else if !acquired {
			logger.Logger.Debug().Msg("Sweep lease held elsewhere, skipping")
			return 0, nil
		} else {
			defer s.redis.Del(context.WithoutCancel(ctx), leaseKey)
		}
	}

	marked, err := s.sweep.Handle(ctx)
	if err != nil {
		return 0, err
	}

	if marked > 0 {
		logger.Logger.Info().
			Int64("marked_count", marked).
			Msg("Pending payments marked overdue")

		if s.publisher != nil {
			event := kafka.PaymentsOverdueEvent{
				MarkedCount: marked,
				AsOf:        time.Now(),
			}
			if err := s.publisher.PublishPaymentsOverdue(ctx, event); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to publish payments overdue event")
			}
		}
	}
	return marked, nil
}
