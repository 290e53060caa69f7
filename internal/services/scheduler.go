package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Scheduler runs periodic maintenance jobs
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler registers the quest expiry sweep at the given interval
func NewScheduler(questService *QuestService, interval time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := questService.ExpireQuests(ctx, time.Now().UTC()); err != nil {
				log.Error().Err(err).Msg("Failed to expire quests")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register quest expiry job: %w", err)
	}

	return &Scheduler{scheduler: s}, nil
}

// Start starts running jobs
func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Info().Msg("Scheduler started")
}

// Shutdown stops the scheduler and waits for running jobs
func (s *Scheduler) Shutdown() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	return nil
}
