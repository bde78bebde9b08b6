// Package job runs background work on Asynq: transactional emails enqueued
// by the services, and the periodic maintenance tasks registered with the
// scheduler.
package job

import (
	"time"

	"github.com/davranaff/coffee/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// JobService holds the Asynq client (enqueue), worker server and scheduler.
type JobService struct {
	Client    *asynq.Client
	server    *asynq.Server
	scheduler *asynq.Scheduler
	jobs      *config.JobsConfig
	logger    *zerolog.Logger

	deps Dependencies
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
		},
	)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	return &JobService{
		Client:    client,
		server:    server,
		scheduler: scheduler,
		jobs:      cfg.Jobs,
		logger:    logger,
	}
}

func (j *JobService) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskVerificationEmail, j.handleVerificationEmailTask)
	mux.HandleFunc(TaskOrderConfirmationEmail, j.handleOrderConfirmationEmailTask)
	mux.HandleFunc(TaskOrderStatusEmail, j.handleOrderStatusEmailTask)
	mux.HandleFunc(TaskCleanUnverifiedUsers, j.handleCleanUnverifiedUsersTask)
	mux.HandleFunc(TaskCancelAbandonedOrders, j.handleCancelAbandonedOrdersTask)
	return mux
}

// Start registers the periodic tasks and starts the workers and the
// scheduler. Neither call blocks. InitHandlers must have been called.
func (j *JobService) Start() error {
	if err := j.registerPeriodic(); err != nil {
		return err
	}

	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.mux()); err != nil {
		return err
	}

	if err := j.scheduler.Start(); err != nil {
		return err
	}

	return nil
}

func (j *JobService) registerPeriodic() error {
	entries := []struct {
		spec string
		task *asynq.Task
	}{
		{j.jobs.CleanUnverifiedCron, NewCleanUnverifiedUsersTask()},
		{j.jobs.CancelAbandonedCron, NewCancelAbandonedOrdersTask()},
	}

	for _, e := range entries {
		id, err := j.scheduler.Register(e.spec, e.task)
		if err != nil {
			return err
		}
		j.logger.Info().
			Str("task", e.task.Type()).
			Str("cron", e.spec).
			Str("entry_id", id).
			Msg("Registered periodic task")
	}
	return nil
}

// Stop shuts down the scheduler and workers (waiting for running tasks) and
// closes the enqueue client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.scheduler.Shutdown()
	j.server.Shutdown()
	j.Client.Close()
}
