package services

import (
	"context"
	"time"

	"github.com/Dias221467/cf_social/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type ActivityService struct {
	repo ActivityStore
}

func NewActivityService(repo ActivityStore) *ActivityService {
	return &ActivityService{repo: repo}
}

// LogActivity records a social-graph transition. Failures are logged and
// swallowed: the transition itself has already been applied.
func (s *ActivityService) LogActivity(ctx context.Context, username, actionType, target, message string) {
	if s == nil || s.repo == nil {
		return
	}

	activity := &models.Activity{
		Username:  username,
		Type:      actionType,
		Target:    target,
		Message:   message,
		Timestamp: time.Now(),
	}

	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		logrus.WithError(err).WithField("action_type", actionType).Warn("Failed to log activity")
		return
	}

	logrus.WithFields(logrus.Fields{
		"username":    username,
		"action_type": actionType,
	}).Debug("Activity logged")
}

// GetRecentActivities returns recent actions performed by a user, newest first.
func (s *ActivityService) GetRecentActivities(ctx context.Context, username string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	activities, err := s.repo.GetUserActivities(ctx, username, limit)
	if err != nil {
		return nil, storeError(err, "failed to fetch activities")
	}
	return activities, nil
}
