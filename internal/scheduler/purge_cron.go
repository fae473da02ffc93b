package cron

import (
	"context"
	"time"

	"github.com/Dias221467/cf_social/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const jobTimeout = 5 * time.Minute

// StartPurgeCronJobs schedules the recommendation purge. An empty schedule
// disables it and returns a nil scheduler.
func StartPurgeCronJobs(schedule string, purger *jobs.RecommendationPurger) (*cron.Cron, error) {
	if schedule == "" {
		logrus.Info("Recommendation purge disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := purger.Run(ctx); err != nil {
			logrus.WithError(err).Error("Recommendation purge failed")
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithField("schedule", schedule).Info("Recommendation purge scheduled")
	return c, nil
}
