package cron

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Scheduler runs the application's background jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *zap.SugaredLogger
	jobs      []Job
}

type Job struct {
	Name     string
	Schedule string
	Task     func()
	JobID    string
}

func NewScheduler(logger *zap.SugaredLogger, timezone string) (*Scheduler, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warnf("Failed to load timezone %s, using UTC: %v", timezone, err)
		location = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    logger,
		jobs:      make([]Job, 0),
	}, nil
}

// Start registers the queued jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.RegisterJobs()
	s.scheduler.Start()
	s.logger.Info("Scheduler started")
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		s.logger.Errorw("scheduler shutdown", "error", err)
	}
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) RegisterJobs() {
	for i, job := range s.jobs {
		s.logger.Infof("Registering job: %s with schedule %s", job.Name, job.Schedule)

		j, err := s.scheduler.NewJob(
			gocron.CronJob(job.Schedule, false),
			gocron.NewTask(s.wrap(job)),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			s.logger.Errorf("Failed to schedule job %s: %v", job.Name, err)
			continue
		}

		s.jobs[i].JobID = j.ID().String()
	}
}

func (s *Scheduler) wrap(job Job) func() {
	return func() {
		startTime := time.Now()

		defer func() {
			if r := recover(); r != nil {
				s.logger.Errorf("Job %s panicked: %v", job.Name, r)
			}
		}()

		job.Task()

		s.logger.Infow("job completed", "job", job.Name, "took", time.Since(startTime))
	}
}

// Custom queues a job on a five-field cron schedule.
func (s *Scheduler) Custom(name string, schedule string, task func()) {
	s.jobs = append(s.jobs, Job{
		Name:     name,
		Schedule: schedule,
		Task:     task,
	})
}

func (s *Scheduler) GetJobs() []Job {
	return s.jobs
}

// RunJobByName runs a queued job immediately in the caller's goroutine.
func (s *Scheduler) RunJobByName(name string) error {
	for _, job := range s.jobs {
		if job.Name == name {
			s.wrap(job)()
			return nil
		}
	}
	return fmt.Errorf("job not found: %s", name)
}
