package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"karwan-auliya/internal/config"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.WorkerConfig
}

func NewScheduler(opt asynq.RedisClientOpt, cfg config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		opt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		cfg:       cfg,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerRecountBooksJob()
}

// ================================================
// Recount category book counts
// ================================================
// book_count is denormalised on categories; the recount repairs drift
// left by books moving between categories or being deleted.
func (s *Scheduler) registerRecountBooksJob() error {
	payload, err := json.Marshal(RecountBooksPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeRecountBooks, payload)

	entryID, err := s.scheduler.Register(
		s.cfg.RecountSchedule,
		task,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register RecountBooks job")
		return err
	}

	log.Info().Str("entry_id", entryID).Str("schedule", s.cfg.RecountSchedule).Msg("✓ Registered RecountBooks")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
