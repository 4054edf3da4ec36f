package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"godsendjoseph.dev/r2-gateway/internal/gateway"
)

const probeTimeout = 10 * time.Second

type Notifier interface {
	NotifyWarning(title string, message string, context map[string]string) error
}

type JobManager struct {
	logger   *zap.SugaredLogger
	gateway  *gateway.Gateway
	notifier Notifier
}

func NewJobManager(logger *zap.SugaredLogger, gw *gateway.Gateway, notifier Notifier) *JobManager {
	return &JobManager{
		logger:   logger,
		gateway:  gw,
		notifier: notifier,
	}
}

// ProbeBucket lists a single key to check the bucket is reachable with the
// configured credentials.
func (j *JobManager) ProbeBucket() func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		if _, err := j.gateway.List(ctx, gateway.ListOptions{Limit: 1}); err != nil {
			j.logger.Errorw("bucket probe failed", "error", err)
			if nerr := j.notifier.NotifyWarning("Bucket probe failed", "The object storage bucket could not be listed.", map[string]string{
				"Error": err.Error(),
			}); nerr != nil {
				j.logger.Errorw("failed to send probe alert", "error", nerr)
			}
			return
		}

		j.logger.Debugw("bucket probe ok")
	}
}
