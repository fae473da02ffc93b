package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// StalePurger deletes cached recommendations older than a cutoff.
type StalePurger interface {
	PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type RecommendationPurger struct {
	Purger    StalePurger
	OlderThan time.Duration
}

// NewRecommendationPurger creates a new instance of RecommendationPurger
func NewRecommendationPurger(purger StalePurger, olderThan time.Duration) *RecommendationPurger {
	return &RecommendationPurger{
		Purger:    purger,
		OlderThan: olderThan,
	}
}

// Run drops recommendation rows nobody has refreshed within OlderThan.
// Users who come back get a fresh set on their next request.
func (p *RecommendationPurger) Run(ctx context.Context) error {
	removed, err := p.Purger.PurgeStale(ctx, p.OlderThan)
	if err != nil {
		return fmt.Errorf("failed to purge recommendations: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"removed":    removed,
		"older_than": p.OlderThan.String(),
	}).Info("Stale recommendations purged")
	return nil
}
